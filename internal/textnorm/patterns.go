package textnorm

import "regexp"

// Noise patterns shared by the field extractors. All are case-insensitive.
var (
	// NavigationNoise matches buttons and counters rendered around profile text.
	NavigationNoise = regexp.MustCompile(`(?i)\b(message|follow|more|endorsements?|connections?|save|report|view)\b`)

	// EmploymentType matches employment-type tags that must never be read as a title.
	EmploymentType = regexp.MustCompile(`(?i)\b(full[- ]?time|part[- ]?time|self[- ]?employed|contract|internship|intern|apprentice|trainee)\b`)

	// CompanyEmploymentType is the broader set used when splitting subtitle segments.
	CompanyEmploymentType = regexp.MustCompile(`(?i)\b(full[- ]?time|part[- ]?time|self[- ]?employed|freelance|contract|internship|apprenticeship|temporary|trainee)\b`)

	// DurationToken matches any tenure fragment such as "3 yrs" or "11 mos".
	DurationToken = regexp.MustCompile(`(?i)\d+\s*(yrs?|years?|mos?|months?)\b`)

	// CompanySuffix matches legal-entity suffixes.
	CompanySuffix = regexp.MustCompile(`(?i)\b(private limited|pvt|inc|llc|llp|ltd)\b`)
)

package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/dom"
	"github.com/jonathan/candidate-tracker/internal/duration"
	"github.com/jonathan/candidate-tracker/internal/textnorm"
)

const subComponentsSelector = ".pvs-entity__sub-components"

var nestedRoleSelector = strings.Join([]string{
	subComponentsSelector + " .pvs-entity",
	subComponentsSelector + ` [data-view-name="profile-component-entity"]`,
}, ", ")

var latestEntitySelectors = []string{
	`[data-view-name="profile-component-entity"]`,
	".pvs-list__paged-list-item .pvs-entity",
	"li.artdeco-list__item",
	".pvs-entity",
	".pvs-list > li, ul > li.pvs-list__item--line-separated",
}

var captionSelector = `.pvs-entity__caption-wrapper, span.t-14.t-normal.t-black--light span[aria-hidden="true"]`

var (
	presentMarker = regexp.MustCompile(`(?i)\bpresent\b`)

	internshipMarker = regexp.MustCompile(`(?i)\binternship\s*[·•\-]|[·•\-]\s*internship\b|\bemployment type:\s*internship|\bintern\s*[·•\-]|[·•]\s*intern\b`)
	partTimeMarker   = regexp.MustCompile(`(?i)\bpart[- ]?time\s*[·•\-]|[·•]\s*part[- ]?time\b`)

	subtitleSeparator = regexp.MustCompile(`[•·]|\s[-–]\s`)
	companySkipWord   = regexp.MustCompile(`(?i)^(at|location)$`)
	dateWord          = regexp.MustCompile(`(?i)\b(present|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b|\d{4}`)

	lineNoise   = regexp.MustCompile(`(?i)present|location|remote|hybrid|on-site|onsite`)
	fourDigits  = regexp.MustCompile(`\b\d{4}\b`)
	roleKeyword = regexp.MustCompile(`(?i)(engineer|manager|lead|director|architect|developer|designer|analyst|consultant|specialist|head|officer)`)
	sectionWord = regexp.MustCompile(`(?i)company|education`)
)

// ExperienceSummary is the correlated result of reading the experience section.
type ExperienceSummary struct {
	Title               string
	Company             string
	CurrentRoleDuration string
	TotalExperience     string
}

// LatestExperience reads the current title, employer and tenure figures.
func LatestExperience(page *Page) ExperienceSummary {
	section := ExperienceSection(page)
	if section == nil {
		return ExperienceSummary{}
	}
	summary := ExperienceSummary{TotalExperience: TotalExperience(section)}
	entity := LatestEntity(section)
	if entity == nil {
		return summary
	}
	summary.Company = CompanyFromEntity(entity)
	summary.Title = titleFromEntity(entity, summary.Company)
	summary.CurrentRoleDuration = CurrentRoleDuration(entity)
	return summary
}

// ExperienceSection locates the experience section of the page. On an
// experience details page the main content area is the section.
func ExperienceSection(page *Page) dom.Node {
	if page == nil || page.Root == nil {
		return nil
	}
	root := page.Root
	if strings.Contains(page.URL, "/details/experience") {
		for _, sel := range []string{".scaffold-layout__main, main, .pvs-list__container", `[class*="scaffold"]`, "body"} {
			if n := root.First(sel); n != nil {
				return n
			}
		}
		return root
	}
	if anchor := root.First("#experience"); anchor != nil {
		if section := anchor.Closest("section"); section != nil {
			return section
		}
	}
	return sectionWithHeader(root, "experience")
}

// LatestEntity returns the first experience entry of section.
func LatestEntity(section dom.Node) dom.Node {
	if section == nil {
		return nil
	}
	for _, sel := range latestEntitySelectors {
		if n := section.First(sel); n != nil {
			return n
		}
	}
	return nil
}

// CurrentRoleDuration returns the tenure of the role currently held. For an
// employer with several roles this is the role marked "Present", else the
// first listed role.
func CurrentRoleDuration(entry dom.Node) string {
	if entry == nil {
		return ""
	}
	roles := entry.Find(nestedRoleSelector)
	if len(roles) == 0 {
		return durationFromEntity(entry)
	}
	for _, role := range roles {
		if presentMarker.MatchString(role.InnerText()) {
			return durationFromEntity(role)
		}
	}
	return durationFromEntity(roles[0])
}

func durationFromEntity(entity dom.Node) string {
	for _, caption := range entity.Find(captionSelector) {
		if d, ok := duration.Parse(caption.InnerText()); ok {
			return d.String()
		}
	}
	for _, line := range textnorm.Lines(entity.InnerText()) {
		if d, ok := duration.Parse(line); ok {
			return d.String()
		}
	}
	return ""
}

// CompanyFromEntity resolves the employer of an experience entry, skipping
// employment-type and duration segments.
func CompanyFromEntity(entry dom.Node) string {
	if entry == nil {
		return ""
	}
	valid := func(s string) bool {
		return longerThan(s, 1) &&
			!textnorm.CompanyEmploymentType.MatchString(s) &&
			!companySkipWord.MatchString(s)
	}
	segment := func(s string) bool {
		return valid(s) && !textnorm.DurationToken.MatchString(s)
	}

	return cascade(valid,
		func() string {
			return renderedText(entry.First(`.pvs-entity__subtitle a[href*="company"] span[aria-hidden="true"]`))
		},
		func() string {
			return firstSegment(entry.First(".pvs-entity__subtitle"), segment)
		},
		func() string {
			sub := entry.First(".pvs-entity__subtitle")
			if sub == nil {
				return ""
			}
			for _, span := range sub.Find(`span[aria-hidden="true"]`) {
				if t := renderedText(span); segment(t) && !dateWord.MatchString(t) {
					return t
				}
			}
			return ""
		},
		func() string {
			return firstSegment(entry.First(`span.t-14.t-normal:not(.t-black--light) > span[aria-hidden="true"]`), segment)
		},
		func() string {
			return renderedText(entry.First(`.pvs-entity__secondary-title span[aria-hidden="true"]`))
		},
		func() string {
			for _, link := range entry.Find(`a[href*="/company/"]`) {
				if t := renderedText(link.First(`.t-bold span[aria-hidden="true"], .t-bold`)); segment(t) {
					return t
				}
			}
			return ""
		},
	)
}

// TitleFromEntity resolves the job title of an experience entry. The title
// never equals the entry's company.
func TitleFromEntity(entry dom.Node) string {
	if entry == nil {
		return ""
	}
	return titleFromEntity(entry, CompanyFromEntity(entry))
}

func titleFromEntity(entry dom.Node, company string) string {
	valid := func(s string) bool {
		if textnorm.EmploymentType.MatchString(s) || textnorm.DurationToken.MatchString(s) {
			return false
		}
		if textnorm.CompanySuffix.MatchString(s) {
			return false
		}
		return company == "" || !textnorm.EqualFold(s, company)
	}

	return cascade(valid,
		func() string {
			return renderedText(entry.First(`.pvs-entity__title span[aria-hidden="true"]`))
		},
		func() string {
			return renderedText(entry.First(`.pvs-entity__position-group-role-item__title span[aria-hidden="true"]`))
		},
		func() string {
			for _, bold := range entry.Find(".t-bold") {
				if t := renderedText(bold); t != "" && valid(t) {
					return t
				}
			}
			return ""
		},
		func() string {
			return renderedText(entry.First("h3, h4"))
		},
		func() string {
			return titleFromLines(entry, company)
		},
	)
}

// titleFromLines scans rendered lines for something shaped like a role,
// preferring lines with seniority or discipline keywords.
func titleFromLines(entry dom.Node, company string) string {
	fallback := ""
	for _, line := range textnorm.Lines(entry.InnerText()) {
		if company != "" && textnorm.EqualFold(line, company) {
			continue
		}
		if textnorm.EmploymentType.MatchString(line) || textnorm.DurationToken.MatchString(line) || lineNoise.MatchString(line) {
			continue
		}
		if fourDigits.MatchString(line) || textnorm.CompanySuffix.MatchString(line) {
			continue
		}
		if roleKeyword.MatchString(line) {
			return line
		}
		if fallback == "" && !sectionWord.MatchString(line) {
			fallback = line
		}
	}
	return fallback
}

// tenure is one counted duration fragment. Fragments are identified by value,
// offset and the text they were read from, so a literally repeated entry is
// counted once while distinct entries always count.
type tenure struct {
	years, months, pos int
	source             string
}

// TotalExperience sums the tenure of every top-level entry in section,
// excluding internships and part-time work. An employer's rolled-up duration
// is counted once; without a rollup each of its roles contributes its first
// duration.
func TotalExperience(section dom.Node) string {
	if section == nil {
		return ""
	}
	var total duration.Duration
	seen := make(map[tenure]bool)
	for _, entry := range topLevelEntries(section) {
		for _, t := range entryTenures(entry) {
			if seen[t] {
				continue
			}
			seen[t] = true
			total = total.Add(duration.Duration{Years: t.years, Months: t.months})
		}
	}
	return total.String()
}

func entryTenures(entry dom.Node) []tenure {
	roles := entry.Find(nestedRoleSelector)
	if len(roles) == 0 {
		text := entry.InnerText()
		if isExcludedEmployment(text) {
			return nil
		}
		if t, ok := firstTenure(text); ok {
			return []tenure{t}
		}
		return nil
	}

	header := entry.InnerTextExcluding(subComponentsSelector)
	if isExcludedEmployment(header) {
		return nil
	}
	if t, ok := firstTenure(header); ok {
		return []tenure{t}
	}
	var tenures []tenure
	for _, role := range roles {
		text := role.InnerText()
		if isExcludedEmployment(text) {
			continue
		}
		if t, ok := firstTenure(text); ok {
			tenures = append(tenures, t)
		}
	}
	return tenures
}

func firstTenure(text string) (tenure, bool) {
	d, pos, ok := duration.FirstMatch(text)
	if !ok {
		return tenure{}, false
	}
	return tenure{years: d.Years, months: d.Months, pos: pos, source: text}, true
}

// isExcludedEmployment reports whether text carries an internship or
// part-time employment-type tag. Title keywords alone do not count.
func isExcludedEmployment(text string) bool {
	return internshipMarker.MatchString(text) || partTimeMarker.MatchString(text)
}

// topLevelEntries lists experience entries, dropping any entry nested inside
// another listed entry.
func topLevelEntries(section dom.Node) []dom.Node {
	entries := directListItems(section)
	for _, sel := range []string{
		".pvs-list__paged-list-item",
		"li.artdeco-list__item",
		".pvs-list > li, ul > li.pvs-list__item--line-separated",
	} {
		if len(entries) > 0 {
			break
		}
		entries = section.Find(sel)
	}

	outer := make([]dom.Node, 0, len(entries))
	for _, n := range entries {
		nested := false
		for _, m := range entries {
			if m.Contains(n) {
				nested = true
				break
			}
		}
		if !nested {
			outer = append(outer, n)
		}
	}
	return outer
}

// directListItems returns section > div > ul > li.artdeco-list__item.
func directListItems(section dom.Node) []dom.Node {
	var items []dom.Node
	for _, div := range section.Children() {
		if !div.Is("div") {
			continue
		}
		for _, ul := range div.Children() {
			if !ul.Is("ul") {
				continue
			}
			for _, li := range ul.Children() {
				if li.Is("li.artdeco-list__item") {
					items = append(items, li)
				}
			}
		}
	}
	return items
}

func firstSegment(n dom.Node, valid func(string) bool) string {
	if n == nil {
		return ""
	}
	for _, part := range subtitleSeparator.Split(renderedText(n), -1) {
		if p := textnorm.Normalize(part); p != "" && valid(p) {
			return p
		}
	}
	return ""
}

// renderedText is the visible text of n on a single line.
func renderedText(n dom.Node) string {
	if n == nil {
		return ""
	}
	return textnorm.Normalize(n.InnerText())
}

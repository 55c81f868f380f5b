// Package types provides the data contracts shared by the extraction engine,
// the candidate stores and the REST API.
package types

import "time"

// UnknownCandidate is the name recorded when no name extractor succeeds.
const UnknownCandidate = "Unknown Candidate"

// DefaultStatus is the pipeline status given to newly tracked candidates.
const DefaultStatus = "NEW"

// CandidateProfile is one extraction result. Every string field is present;
// unavailable values are empty strings.
type CandidateProfile struct {
	MemberID         string     `json:"member_id"`
	FullName         string     `json:"full_name"`
	ProfileURL       string     `json:"profile_url"`
	Headline         string     `json:"headline"`
	Location         string     `json:"location"`
	Designation      string     `json:"designation"`
	CurrentTitle     string     `json:"current_title"`
	Industry         string     `json:"industry"`
	Education        Education  `json:"education"`
	Experience       Experience `json:"experience"`
	TopSkills        []string   `json:"top_skills"`
	ConnectionsCount string     `json:"connections_count"`
	ExtractedAt      time.Time  `json:"extracted_at"`
}

// Education is the most recent education entry.
type Education struct {
	School            string `json:"school"`
	Degree            string `json:"degree"`
	QualificationCode string `json:"qualification_code"`
	PassoutYear       string `json:"passout_year"`
}

// String renders the entry as "degree @ school", omitting missing parts.
func (e Education) String() string {
	switch {
	case e.Degree != "" && e.School != "":
		return e.Degree + " @ " + e.School
	case e.School != "":
		return e.School
	default:
		return e.Degree
	}
}

// Experience holds canonical duration strings such as "2 yrs 3 mos".
type Experience struct {
	CurrentRoleDuration string `json:"current_role_duration"`
	TotalExperience     string `json:"total_experience"`
}

// Candidate is a stored candidate row.
type Candidate struct {
	ID                  int64      `json:"id"`
	MemberID            string     `json:"member_id"`
	FullName            string     `json:"full_name"`
	ProfileURL          string     `json:"profile_url"`
	Headline            string     `json:"headline"`
	Location            string     `json:"location"`
	Designation         string     `json:"designation"`
	CurrentTitle        string     `json:"current_title"`
	Industry            string     `json:"industry"`
	School              string     `json:"school"`
	Degree              string     `json:"degree"`
	QualificationCode   string     `json:"qualification_code"`
	PassoutYear         string     `json:"passout_year"`
	CurrentRoleDuration string     `json:"current_role_duration"`
	TotalExperience     string     `json:"total_experience"`
	TopSkills           []string   `json:"top_skills"`
	ConnectionsCount    string     `json:"connections_count"`
	ProcessedBy         string     `json:"processed_by"`
	Notes               string     `json:"notes"`
	Status              string     `json:"status"`
	ExtractedAt         *time.Time `json:"extracted_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total rows split by limit.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, TotalCount: total, TotalPages: pages}
}

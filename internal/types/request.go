package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// UpsertCandidateRequest is the body of POST /api/candidates. Nil fields keep
// the stored value when the candidate already exists.
type UpsertCandidateRequest struct {
	MemberID         string            `json:"member_id" validate:"required,max=200"`
	FullName         string            `json:"full_name" validate:"required,max=300"`
	ProfileURL       string            `json:"profile_url" validate:"required,url"`
	Headline         *string           `json:"headline,omitempty"`
	Location         *string           `json:"location,omitempty"`
	Designation      *string           `json:"designation,omitempty"`
	CurrentTitle     *string           `json:"current_title,omitempty"`
	Industry         *string           `json:"industry,omitempty"`
	Education        *EducationUpdate  `json:"education,omitempty"`
	Experience       *ExperienceUpdate `json:"experience,omitempty"`
	TopSkills        []string          `json:"top_skills,omitempty" validate:"omitempty,max=5"`
	ConnectionsCount *string           `json:"connections_count,omitempty"`
	ProcessedBy      *string           `json:"processed_by,omitempty" validate:"omitempty,max=200"`
	Notes            *string           `json:"notes,omitempty"`
	Status           *string           `json:"status,omitempty" validate:"omitempty,max=50"`
	ExtractedAt      *time.Time        `json:"extracted_at,omitempty"`
}

// EducationUpdate carries optional education fields.
type EducationUpdate struct {
	School            *string `json:"school,omitempty"`
	Degree            *string `json:"degree,omitempty"`
	QualificationCode *string `json:"qualification_code,omitempty"`
	PassoutYear       *string `json:"passout_year,omitempty"`
}

// ExperienceUpdate carries optional experience fields.
type ExperienceUpdate struct {
	CurrentRoleDuration *string `json:"current_role_duration,omitempty"`
	TotalExperience     *string `json:"total_experience,omitempty"`
}

// Validate validates the UpsertCandidateRequest using the validator.
func (r *UpsertCandidateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// NewUpsertRequest converts an extracted profile into a request that sets
// every profile field.
func NewUpsertRequest(p *CandidateProfile) *UpsertCandidateRequest {
	extractedAt := p.ExtractedAt
	skills := p.TopSkills
	if skills == nil {
		skills = []string{}
	}
	return &UpsertCandidateRequest{
		MemberID:     p.MemberID,
		FullName:     p.FullName,
		ProfileURL:   p.ProfileURL,
		Headline:     ptr(p.Headline),
		Location:     ptr(p.Location),
		Designation:  ptr(p.Designation),
		CurrentTitle: ptr(p.CurrentTitle),
		Industry:     ptr(p.Industry),
		Education: &EducationUpdate{
			School:            ptr(p.Education.School),
			Degree:            ptr(p.Education.Degree),
			QualificationCode: ptr(p.Education.QualificationCode),
			PassoutYear:       ptr(p.Education.PassoutYear),
		},
		Experience: &ExperienceUpdate{
			CurrentRoleDuration: ptr(p.Experience.CurrentRoleDuration),
			TotalExperience:     ptr(p.Experience.TotalExperience),
		},
		TopSkills:        skills,
		ConnectionsCount: ptr(p.ConnectionsCount),
		ExtractedAt:      &extractedAt,
	}
}

// Apply merges the request into c. Required fields always overwrite; optional
// fields overwrite only when set.
func (c *Candidate) Apply(r *UpsertCandidateRequest) {
	c.MemberID = r.MemberID
	c.FullName = r.FullName
	c.ProfileURL = r.ProfileURL
	merge(&c.Headline, r.Headline)
	merge(&c.Location, r.Location)
	merge(&c.Designation, r.Designation)
	merge(&c.CurrentTitle, r.CurrentTitle)
	merge(&c.Industry, r.Industry)
	if e := r.Education; e != nil {
		merge(&c.School, e.School)
		merge(&c.Degree, e.Degree)
		merge(&c.QualificationCode, e.QualificationCode)
		merge(&c.PassoutYear, e.PassoutYear)
	}
	if x := r.Experience; x != nil {
		merge(&c.CurrentRoleDuration, x.CurrentRoleDuration)
		merge(&c.TotalExperience, x.TotalExperience)
	}
	if r.TopSkills != nil {
		c.TopSkills = append([]string(nil), r.TopSkills...)
	}
	merge(&c.ConnectionsCount, r.ConnectionsCount)
	merge(&c.ProcessedBy, r.ProcessedBy)
	merge(&c.Notes, r.Notes)
	merge(&c.Status, r.Status)
	if r.ExtractedAt != nil {
		t := *r.ExtractedAt
		c.ExtractedAt = &t
	}
	if c.Status == "" {
		c.Status = DefaultStatus
	}
	if c.TopSkills == nil {
		c.TopSkills = []string{}
	}
}

func merge(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func ptr(s string) *string {
	return &s
}

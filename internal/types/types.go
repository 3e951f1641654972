package types

import "encoding/json"

// ContentCategory identifies which kind of resume content a list of lines
// belongs to. Formalization rules and prompt hints vary per category.
type ContentCategory string

const (
	CategoryEducation      ContentCategory = "education"
	CategoryExperience     ContentCategory = "experience"
	CategorySkills         ContentCategory = "skills"
	CategoryCertifications ContentCategory = "certifications"
	CategoryHobbies        ContentCategory = "hobbies"
	CategorySummary        ContentCategory = "summary"
)

// EducationEntry is one education record from the intake form.
type EducationEntry struct {
	School          string `json:"school"`
	Degree          string `json:"degree"`
	Major           string `json:"major"`
	GraduationMonth string `json:"graduationMonth"`
	GraduationYear  string `json:"graduationYear"`
}

// UnmarshalJSON accepts the alias keys older clients send for the
// graduation fields (gradMonth/month, gradYear/year).
func (e *EducationEntry) UnmarshalJSON(data []byte) error {
	type raw struct {
		School          string `json:"school"`
		Degree          string `json:"degree"`
		Major           string `json:"major"`
		GraduationMonth string `json:"graduationMonth"`
		GradMonth       string `json:"gradMonth"`
		Month           string `json:"month"`
		GraduationYear  string `json:"graduationYear"`
		GradYear        string `json:"gradYear"`
		Year            string `json:"year"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	e.School = r.School
	e.Degree = r.Degree
	e.Major = r.Major
	e.GraduationMonth = firstNonEmpty(r.GraduationMonth, r.GradMonth, r.Month)
	e.GraduationYear = firstNonEmpty(r.GraduationYear, r.GradYear, r.Year)
	return nil
}

// IsBlank reports whether every field of the entry is empty.
func (e EducationEntry) IsBlank() bool {
	return e.School == "" && e.Degree == "" && e.Major == "" &&
		e.GraduationMonth == "" && e.GraduationYear == ""
}

// ExperienceEntry is one work-history record from the intake form.
type ExperienceEntry struct {
	Position string   `json:"position"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Bullets  []string `json:"bullets"`
}

// IsBlank reports whether every field of the entry is empty.
func (e ExperienceEntry) IsBlank() bool {
	return e.Position == "" && e.Company == "" && e.Location == "" &&
		e.Start == "" && e.End == "" && len(e.Bullets) == 0
}

// ResumeForm is the raw intake form for both resume and cover-letter
// generation. Field names match the JSON the web client sends.
type ResumeForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`

	Summary        string `json:"summary"`
	Experience     string `json:"experience"` // legacy clients put the summary here
	JobDescription string `json:"job_description"`

	Skills         []string          `json:"skills"`
	Certifications []string          `json:"certifications"`
	Hobbies        []string          `json:"hobbies"`
	Education      []EducationEntry  `json:"education"`
	ExperienceList []ExperienceEntry `json:"experienceList"`

	// Cover-letter fields.
	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipientName"`
	HiringManager string `json:"hiringManager"`
	ContactName   string `json:"contactName"`
	CompanyName   string `json:"companyName"`
	JobTitle      string `json:"job_title"`
	CompanyCity   string `json:"company_city"`
	CompanyState  string `json:"company_state"`
	Signoff       string `json:"signoff"`
	SignoffTone   string `json:"signoffTone"`

	Mode string `json:"mode"`
}

// BuildOptions carries per-request overrides alongside the form.
type BuildOptions struct {
	Signoff string `json:"signoff"`
}

// BuildRequest is the body of a generate call. FormData is preferred;
// older clients inline the form fields at the top level instead, which
// handlers resolve before building.
type BuildRequest struct {
	Type     string       `json:"type"`
	Mode     string       `json:"mode"`
	FormData *ResumeForm  `json:"formData"`
	Options  BuildOptions `json:"options"`
}

// BuildResult is the outcome of assembling a document.
type BuildResult struct {
	Output    string `json:"output"`
	HTML      string `json:"html"`
	PlainText string `json:"plain_text"`
	ATSScore  int    `json:"ats_score"`
	Error     string `json:"error,omitempty"`
}

// CoverBody is the structured cover-letter content the oracle returns.
type CoverBody struct {
	Opening string   `json:"opening"`
	Body    []string `json:"body"`
	Closing string   `json:"closing"`
}

// RewriteResult is the structured output of a rewrite operation.
type RewriteResult struct {
	Summary string   `json:"summary"`
	Bullets []string `json:"bullets"`
}

// GeneratedRole is one experience block in a generated resume.
type GeneratedRole struct {
	Header  string   `json:"header"`
	Bullets []string `json:"bullets"`
}

// GeneratedResume is the structured output of a full-resume generation.
type GeneratedResume struct {
	Summary        string          `json:"summary"`
	Education      []string        `json:"education"`
	Skills         []string        `json:"skills"`
	Certifications []string        `json:"certifications"`
	Hobbies        []string        `json:"hobbies"`
	Experience     []GeneratedRole `json:"experience"`
}

// FormalizeInput is the payload for a list-formalization call.
type FormalizeInput struct {
	Items     []string
	Category  ContentCategory
	UserCity  string
	UserState string
}

// CoverInput is the payload for a cover-letter body composition call.
type CoverInput struct {
	CandidateName   string
	TargetRole      string
	Company         string
	CompanyLocation string
	Recipient       string
	Highlights      string
	JobDescription  string
	Signoff         string
}

// RewriteInput is the payload for a conservative rewrite call. Either the
// summary or the bullet list may be empty; both are rewritten in place.
type RewriteInput struct {
	Summary string
	Bullets []string
}

// GenerateInput is the payload for a full resume-body generation call.
// Seed lines carry whatever the form provided so the oracle never has to
// invent employers, dates, or numbers.
type GenerateInput struct {
	CandidateRole     string
	TargetCompany     string
	JobDescription    string
	Summary           string
	Skills            []string
	Certifications    []string
	Hobbies           []string
	EducationLines    []string
	ExperienceHeaders []string
	ExperienceBullets [][]string
	MaxBulletsPerRole int
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

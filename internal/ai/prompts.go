package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/types"
)

// SystemPrompts contains all system-level instructions for oracle interactions
type SystemPrompts struct {
	Formalize string
	Cover     string
	Rewrite   string
	Generate  string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	Formalize: `You are an ATS-oriented resume normalizer. Rewrite each input item for clarity and consistency WITHOUT inventing facts.
Return ONLY a JSON array of strings, same length and order as input. No commentary, no code fences.

Global Rules:
1) Degrees: expand common degree abbreviations to their canonical long form ONCE per item, and avoid tautologies.
   - Examples:
     • "OD" → "Doctor of Optometry" (NOT "Doctor of Optometry in Optometry")
     • "BS, Microbiology" → "Bachelor of Science — Microbiology"
     • If both a degree and a field are present, join with an en dash "—" (not "in"): "Doctor of Medicine — Cardiology".
   - If the degree already contains the field, do NOT repeat the field.

2) Ubiquitous acronyms: KEEP the acronym primary for universally recognized items; long form optional in parentheses.
   - Examples: CPR, BLS, ACLS, PALS, HIPAA, OSHA, PMP, CISSP, CompTIA A+/Network+/Security+, AWS exam codes (e.g., SAA-C03).

3) Institutions: expand school names to their proper full names when unambiguous.

4) Experience headers: produce a clean, human-readable line. If dates/locations exist, preserve them and use an en dash (–) for ranges.

5) Bullets/Skills: action-led where applicable; concise; never first-person; do NOT fabricate numbers; keep existing numerals.

6) Casing & punctuation: sentence case for bullets; no trailing periods on short bullets; standard ASCII except en dashes as noted.

7) Never output duplicates like "Doctor of Optometry in Optometry".

8) Ambiguous abbreviations: do NOT guess expansions for location or org abbreviations unless context makes it obvious. Keep as-is if uncertain.`,

	Cover: `You are a precise cover-letter writing assistant. Follow instructions exactly and avoid fabrication.`,

	Rewrite: `You edit resume content conservatively. Tighten phrasing but never fabricate.`,

	Generate: `You are a resume builder. Output strictly JSON in UTF-8, no markdown, no code fences, no HTML. Never fabricate metrics, dates, or employers. If information is missing, leave fields empty or omit them.`,
}

// categoryHints carries the per-category instructions appended to the
// formalize system prompt.
var categoryHints = map[types.ContentCategory]string{
	types.CategoryEducation: `For EDUCATION items:
- Expand degrees (BS→Bachelor of Science, MS→Master of Science, OD→Doctor of Optometry, MD→Doctor of Medicine).
- Expand majors (Micro→Microbiology) when clear.
- If degree and field both appear, join with " — " and avoid repeating the embedded field.
- Expand institution names when unambiguous.`,
	types.CategoryExperience: `For EXPERIENCE items:
- Expand job titles (Mgr→Manager; Sr→Senior; Eng→Engineer) and departments when helpful.
- Preserve existing dates/locations; use "–" for ranges if shown.`,
	types.CategorySkills: `For SKILLS items:
- Standardize names; concise noun phrases (Title Case when appropriate).
- Expand obvious shorthand when unambiguous; do not add proficiency or invent details.
- Keep well-known acronyms as-is (AWS, CI/CD, SQL, HTML, CSS).
Examples:
  "js" → "JavaScript"
  "excel" → "Microsoft Excel"
  "photoshop" → "Adobe Photoshop"
  "jp" → "Japanese"`,
	types.CategoryCertifications: `For CERTIFICATIONS items:
- KEEP ubiquitous cert acronyms primary (PMP, CISSP, CPR, BLS, etc.); long form optional in parentheses.
- Do not expand to long-form-only if the acronym is widely recognized.`,
	types.CategoryHobbies: `For HOBBIES items:
- Normalize to a clean noun phrase in Title Case.
- Expand common shorthand when unambiguous (do not invent details).
- Keep each item short (1–4 words), no first-person.
Examples:
  "sax" → "Saxophone"
  "gtr" → "Guitar"
  "mtb" → "Mountain Biking"
  "bjj" → "Brazilian Jiu-Jitsu"
  "3d print" → "3D Printing"
  "pc build" → "PC Building"
  "road cycling" → "Road Cycling"`,
	types.CategorySummary: `For SUMMARY items:
- 1–3 concise sentences, third-person implied (no "I"), role-aligned, no fluff, no invented metrics.
- Keep nouns and proper names correctly capitalized; no emojis or special symbols.`,
}

const genericCategoryHint = `For generic items:
- Apply the global rules; improve clarity and consistency without inventing new content.`

// categoryHint returns the per-category addendum for the formalize prompt.
func categoryHint(category types.ContentCategory) string {
	if hint, ok := categoryHints[category]; ok {
		return hint
	}
	return genericCategoryHint
}

// buildFormalizeSystemPrompt composes the full formalize instruction:
// style guide, category hint, and the output-shape reminder.
func buildFormalizeSystemPrompt(styleGuide string, category types.ContentCategory) string {
	return styleGuide + "\n" + categoryHint(category) + "\nReturn a JSON array of strings only."
}

// buildFormalizeUserPrompt serializes the formalize payload the oracle sees.
func buildFormalizeUserPrompt(input types.FormalizeInput) string {
	payload := struct {
		Items     []string `json:"items"`
		UserCity  string   `json:"user_city"`
		UserState string   `json:"user_state"`
		Type      string   `json:"type"`
	}{
		Items:     input.Items,
		UserCity:  input.UserCity,
		UserState: input.UserState,
		Type:      string(input.Category),
	}
	return mustMarshal(payload)
}

// buildCoverUserPrompt assembles the cover-letter body request. The caller
// injects the salutation and sign-off itself, so the constraints forbid the
// oracle from emitting them.
func buildCoverUserPrompt(input types.CoverInput) string {
	signoff := input.Signoff
	if signoff == "" {
		signoff = "Sincerely"
	}

	constraints := []string{
		"Return STRICT JSON with keys: opening (string), body (array of 2–3 strings), closing (string).",
		"NO Markdown, NO code fences, NO HTML tags.",
		"Use ONLY the information provided; do NOT invent locations, titles, companies, metrics, or names.",
		"Mention the company name exactly as provided, if any.",
		"Do not include a salutation like “Dear …,” (server will inject it).",
		fmt.Sprintf("Do not include a sign-off like “%s” or the candidate’s name (server will inject it).", signoff),
		"Tone: professional, concise, tailored.",
		"Target length: ~220–350 words total.",
		"If you need location phrasing (e.g., “in …”), only use it when company_city or company_state is provided; never infer from the candidate’s home address.",
	}

	data := struct {
		CandidateName   string `json:"candidate_name"`
		TargetRole      string `json:"target_role"`
		Company         string `json:"company"`
		CompanyLocation string `json:"company_location"`
		Recipient       string `json:"recipient"`
		Highlights      string `json:"candidate_highlights"`
		JobDescription  string `json:"job_description"`
	}{
		CandidateName:   input.CandidateName,
		TargetRole:      input.TargetRole,
		Company:         input.Company,
		CompanyLocation: input.CompanyLocation,
		Recipient:       input.Recipient,
		Highlights:      input.Highlights,
		JobDescription:  input.JobDescription,
	}

	return strings.Join([]string{
		"Write a tailored cover-letter BODY (no header, no salutation, no sign-off).",
		"Constraints:\n- " + strings.Join(constraints, "\n- "),
		"Input JSON (context):",
		mustMarshal(data),
		"Your output must be a single JSON object with this shape:",
		`{
  "opening": "string - one paragraph that connects the candidate to the role/company without a salutation",
  "body": ["string", "string", "string"],
  "closing": "string - short wrap-up call-to-action, no sign-off"
}`,
	}, "\n\n")
}

// buildRewriteUserPrompt assembles the conservative-rewrite request.
func buildRewriteUserPrompt(input types.RewriteInput) string {
	rules := []string{
		"Do not invent facts, companies, titles, dates, or numbers.",
		"Preserve ALL existing numbers, units, and date ranges exactly.",
		"Bullets: keep the same count; begin with strong action verbs; concise, results-oriented.",
		"Tone: professional and specific; no fluff; no first-person pronouns.",
		"Output JSON only; no Markdown, no code fences, no HTML.",
	}

	bullets := input.Bullets
	if bullets == nil {
		bullets = []string{}
	}
	payload := struct {
		Summary string   `json:"summary"`
		Bullets []string `json:"bullets"`
	}{
		Summary: strings.TrimSpace(input.Summary),
		Bullets: bullets,
	}

	return strings.Join([]string{
		"Rewrite the provided content under these rules:",
		"- " + strings.Join(rules, "\n- "),
		"Return JSON with these keys:",
		`{
  "summary": "string (optional; omit or empty if no summary provided)",
  "bullets": ["string", "..."]
}`,
		"Content to rewrite:",
		mustMarshal(payload),
	}, "\n\n")
}

// buildGenerateUserPrompt assembles the full resume-body generation request.
func buildGenerateUserPrompt(input types.GenerateInput) string {
	maxBullets := input.MaxBulletsPerRole
	if maxBullets <= 0 {
		maxBullets = 4
	}

	rules := strings.Join([]string{
		"Return JSON only. No markdown, no code fences, no HTML.",
		"Do not include contact info (name, email, phone, address) in any field.",
		"Do not invent employers, job titles, dates, or numbers that were not provided.",
		"If a number/metric is not provided by the user input, do not add one.",
		"If bullets are missing for a role, you may add up to 2 neutral, responsibility-style bullets with no metrics.",
		fmt.Sprintf("Limit bullets per role to at most %d.", maxBullets),
		"Keep the summary concise (~40–60 words).",
		"If a field is unknown, leave it empty or omit it.",
	}, " ")

	schema := map[string]any{
		"summary": "<string, optional>",
		"experience": []map[string]any{
			{
				"header":  "<string, required; e.g. 'Title at Company — Location (Dates)'>",
				"bullets": []string{"<string bullet>", "..."},
			},
		},
		"skills":         []string{"<string>", "..."},
		"certifications": []string{"<string>", "..."},
		"education":      []string{"<string>", "..."},
		"hobbies":        []string{"<string>", "..."},
	}

	bullets := input.ExperienceBullets
	if bullets == nil {
		bullets = [][]string{}
	}
	payload := struct {
		CandidateRole     string     `json:"candidate_role"`
		TargetCompany     string     `json:"target_company"`
		JobDescription    string     `json:"job_description"`
		ProvidedSummary   string     `json:"provided_summary"`
		ProvidedSkills    []string   `json:"provided_skills"`
		ProvidedCerts     []string   `json:"provided_certifications"`
		ProvidedHobbies   []string   `json:"provided_hobbies"`
		EducationLines    []string   `json:"provided_education_lines"`
		ExperienceHeaders []string   `json:"provided_experience_headers"`
		ExperienceBullets [][]string `json:"provided_experience_bullets"`
		Rules             string     `json:"rules"`
		SchemaExample     any        `json:"output_schema_example"`
	}{
		CandidateRole:     input.CandidateRole,
		TargetCompany:     input.TargetCompany,
		JobDescription:    input.JobDescription,
		ProvidedSummary:   input.Summary,
		ProvidedSkills:    emptyIfNil(input.Skills),
		ProvidedCerts:     emptyIfNil(input.Certifications),
		ProvidedHobbies:   emptyIfNil(input.Hobbies),
		EducationLines:    emptyIfNil(input.EducationLines),
		ExperienceHeaders: emptyIfNil(input.ExperienceHeaders),
		ExperienceBullets: bullets,
		Rules:             rules,
		SchemaExample:     schema,
	}

	return "Using the user payload below, create a concise resume BODY (no contact info) in JSON. " +
		"Respect the rules and the output schema example.\n\n" + mustMarshal(payload)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mustMarshal pretty-prints a payload. Marshal of these plain structs
// cannot fail; the error branch exists to satisfy the compiler.
func mustMarshal(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

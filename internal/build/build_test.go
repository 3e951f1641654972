package build

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resumeforge/internal/ai"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/formalize"
	"resumeforge/internal/types"
)

// stubOracle scripts replies per operation. FormalizeList always errors
// so formalization takes the deterministic path and tests stay stable.
type stubOracle struct {
	coverReply     string
	coverErr       error
	rewriteReplies []string
	rewriteCalls   int
	generateReply  string
	generateErr    error
	generateCalls  int
}

func (s *stubOracle) FormalizeList(_ context.Context, _ types.FormalizeInput) (string, *ai.TokenUsage, error) {
	return "", nil, errors.New("formalize disabled in test")
}

func (s *stubOracle) ComposeCoverBody(_ context.Context, _ types.CoverInput) (string, *ai.TokenUsage, error) {
	return s.coverReply, nil, s.coverErr
}

func (s *stubOracle) RewriteContent(_ context.Context, _ types.RewriteInput) (string, *ai.TokenUsage, error) {
	reply := ""
	if s.rewriteCalls < len(s.rewriteReplies) {
		reply = s.rewriteReplies[s.rewriteCalls]
	}
	s.rewriteCalls++
	return reply, nil, nil
}

func (s *stubOracle) GenerateResume(_ context.Context, _ types.GenerateInput) (string, *ai.TokenUsage, error) {
	s.generateCalls++
	return s.generateReply, nil, s.generateErr
}

func (s *stubOracle) GetModelInfo(_ context.Context) *ai.ModelInfo { return &ai.ModelInfo{} }
func (s *stubOracle) Close() error                                 { return nil }

type stubMetrics struct {
	fallbacks []string
	built     []string
}

func (m *stubMetrics) RecordFallback(category, reason string) {
	m.fallbacks = append(m.fallbacks, category+"/"+reason)
}

func (m *stubMetrics) RecordDocumentBuilt(docType, mode string) {
	m.built = append(m.built, docType+"/"+mode)
}

func newTestLogger() *forgeErrors.Logger {
	logger, _ := forgeErrors.New("error")
	return logger
}

func newBuilder(oracle ai.Oracle, metrics MetricsRecorder) *Builder {
	return New(formalize.New(oracle, newTestLogger()), oracle, nil, metrics, newTestLogger())
}

func sampleForm() *types.ResumeForm {
	return &types.ResumeForm{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "5551234567",
		Address:   "1 Main St",
		City:      "Reno",
		State:     "NV",
		Zip:       "89501",
		Summary:   "Hardworking nurse with broad floor experience",
		Skills:    []string{"Triage", "Patient education"},
		Hobbies:   []string{"hiking"},
		Education: []types.EducationEntry{
			{Degree: "B.S.", Major: "Nursing", School: "State University", GraduationMonth: "May", GraduationYear: "2020"},
		},
		ExperienceList: []types.ExperienceEntry{
			{
				Position: "Charge Nurse", Company: "Mercy General", Location: "Reno, NV",
				Start: "June 2021", End: "August 2023",
				Bullets: []string{"Cut supply costs 10%", "Answered patient calls"},
			},
		},
	}
}

func TestBuildResumeFallback(t *testing.T) {
	metrics := &stubMetrics{}
	b := newBuilder(nil, metrics)

	result, err := b.BuildResume(context.Background(), sampleForm(), "")
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}

	for _, want := range []string{
		"<strong>SUMMARY</strong>",
		"<strong>EDUCATION</strong>",
		"<strong>WORK EXPERIENCE</strong>",
		"<strong>SKILLS</strong>",
		"<strong>HOBBIES</strong>",
		"Jane Doe",
		"(555) 123-4567",
		"B.S. in Nursing — State University, May, 2020",
		"Charge Nurse at Mercy General — Reno, NV (June, 2021 – August, 2023)",
		"<li>Cut supply costs 10%</li>",
	} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Hobbies get title-cased on the deterministic path.
	if !strings.Contains(result.Output, "<li>Hiking</li>") {
		t.Errorf("hobby not title-cased: %s", result.Output)
	}

	if result.ATSScore <= 0 {
		t.Errorf("expected positive ATS score, got %d", result.ATSScore)
	}
	if result.PlainText != "" {
		t.Errorf("fallback plain text should be empty, got %q", result.PlainText)
	}
	if len(metrics.built) != 1 || metrics.built[0] != "resume/fallback" {
		t.Errorf("built events = %v", metrics.built)
	}
}

func TestBuildResumeRewrite(t *testing.T) {
	oracle := &stubOracle{
		rewriteReplies: []string{
			`{"summary": "Dedicated nurse focused on patient outcomes."}`,
			`{"bullets": ["Reduced supply costs 10%", "Handled 75 patient calls daily"]}`,
		},
	}
	b := newBuilder(oracle, nil)

	result, err := b.BuildResume(context.Background(), sampleForm(), "")
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}

	if oracle.generateCalls != 0 {
		t.Error("auto mode with a summary must not generate")
	}
	if oracle.rewriteCalls != 2 {
		t.Errorf("expected 2 rewrite calls, got %d", oracle.rewriteCalls)
	}

	if !strings.Contains(result.Output, "Dedicated nurse focused on patient outcomes.") {
		t.Errorf("rewritten summary missing: %s", result.Output)
	}
	if !strings.Contains(result.Output, "Reduced supply costs 10%") {
		t.Errorf("rewritten bullet missing: %s", result.Output)
	}
	// "75" was not in the original bullet, so the guard strips it.
	if strings.Contains(result.Output, "75") {
		t.Errorf("invented number survived: %s", result.Output)
	}

	if result.PlainText == "" || !strings.Contains(result.PlainText, "Reduced supply costs 10%") {
		t.Errorf("plain text = %q", result.PlainText)
	}
}

func TestBuildResumeRewriteCountMismatchKeepsOriginals(t *testing.T) {
	oracle := &stubOracle{
		rewriteReplies: []string{
			`{"summary": ""}`,
			`{"bullets": ["only one back"]}`,
		},
	}
	b := newBuilder(oracle, nil)

	result, err := b.BuildResume(context.Background(), sampleForm(), ModeRewrite)
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}
	if !strings.Contains(result.Output, "Cut supply costs 10%") {
		t.Errorf("original bullets should be kept on count mismatch: %s", result.Output)
	}
}

func TestBuildResumeGenerate(t *testing.T) {
	oracle := &stubOracle{
		generateReply: `{
			"summary": "Driven professional ready for new challenges.",
			"education": ["B.S. in Nursing — State University, May, 2020"],
			"skills": ["Triage", "Scheduling"],
			"certifications": ["CPR"],
			"experience": [
				{"header": "RN at Community Clinic (May, 2020 – Present)",
				 "bullets": ["Led patient intake", "Managed medication records"]}
			]
		}`,
	}
	form := sampleForm()
	form.Summary = ""
	form.ExperienceList[0].Bullets = nil
	b := newBuilder(oracle, nil)

	result, err := b.BuildResume(context.Background(), form, "")
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}

	if oracle.generateCalls != 1 {
		t.Fatalf("auto mode with no bullets and no summary must generate, calls = %d", oracle.generateCalls)
	}
	for _, want := range []string{
		"Driven professional ready for new challenges.",
		"RN at Community Clinic (May, 2020 – Present)",
		"<li>Led patient intake</li>",
		"<strong>CERTIFICATIONS</strong>",
	} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if result.ATSScore <= 0 {
		t.Errorf("ATS score = %d", result.ATSScore)
	}
}

func TestBuildResumeGenerateOracleFailureDegrades(t *testing.T) {
	oracle := &stubOracle{generateErr: errors.New("boom")}
	metrics := &stubMetrics{}
	form := sampleForm()
	b := newBuilder(oracle, metrics)

	result, err := b.BuildResume(context.Background(), form, ModeGenerate)
	if err != nil {
		t.Fatalf("oracle failure must not fail the build: %v", err)
	}
	// Form content still assembled.
	if !strings.Contains(result.Output, "Charge Nurse at Mercy General") {
		t.Errorf("degraded output missing form content: %s", result.Output)
	}

	found := false
	for _, f := range metrics.fallbacks {
		if f == "generate/oracle call failed" {
			found = true
		}
	}
	if !found {
		t.Errorf("fallback not recorded: %v", metrics.fallbacks)
	}
}

func TestBuildCoverWithOracle(t *testing.T) {
	oracle := &stubOracle{
		coverReply: `{
			"opening": "I am excited to apply for the Charge Nurse role at Mercy General.",
			"body": ["My background covers triage and patient education."],
			"closing": "I would welcome the chance to talk."
		}`,
	}
	form := sampleForm()
	form.CompanyName = "Mercy General"
	form.JobTitle = "Charge Nurse"
	form.Signoff = "formal"
	b := newBuilder(oracle, nil)

	result, err := b.BuildCover(context.Background(), form, types.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildCover: %v", err)
	}

	for _, want := range []string{
		"Dear Hiring Manager,",
		"I am excited to apply for the Charge Nurse role at Mercy General.",
		"My background covers triage and patient education.",
		"Respectfully,<br/>Jane Doe",
	} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if result.ATSScore != 0 {
		t.Errorf("cover letters are not ATS scored, got %d", result.ATSScore)
	}
}

func TestBuildCoverRecipientAndStatic(t *testing.T) {
	form := sampleForm()
	form.HiringManager = "Dr. Smith"
	form.JobTitle = "Charge Nurse"
	form.CompanyName = "Mercy General"
	b := newBuilder(nil, nil)

	result, err := b.BuildCover(context.Background(), form, types.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildCover: %v", err)
	}

	if !strings.Contains(result.Output, "Dear Dr. Smith,") {
		t.Errorf("recipient salutation missing: %s", result.Output)
	}
	if !strings.Contains(result.Output, "interest in Charge Nurse at Mercy General.") {
		t.Errorf("static body missing: %s", result.Output)
	}
	if !strings.Contains(result.Output, "Sincerely,<br/>Jane Doe") {
		t.Errorf("default signoff missing: %s", result.Output)
	}
}

func TestBuildCoverScrubsHomeLocation(t *testing.T) {
	oracle := &stubOracle{
		coverReply: `{"opening": "I want to keep working in Reno, NV as a nurse.", "body": [], "closing": "Thanks."}`,
	}
	form := sampleForm() // no company location set
	b := newBuilder(oracle, nil)

	result, err := b.BuildCover(context.Background(), form, types.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildCover: %v", err)
	}
	if strings.Contains(result.Output, "Reno, NV as a nurse") {
		t.Errorf("home location not scrubbed: %s", result.Output)
	}
	if !strings.Contains(result.Output, "I want to keep working as a nurse.") {
		t.Errorf("scrubbed sentence malformed: %s", result.Output)
	}
}

func TestBuildCoverOracleFailureDegrades(t *testing.T) {
	oracle := &stubOracle{coverErr: errors.New("boom")}
	form := sampleForm()
	b := newBuilder(oracle, nil)

	result, err := b.BuildCover(context.Background(), form, types.BuildOptions{})
	if err != nil {
		t.Fatalf("oracle failure must not fail the build: %v", err)
	}
	if !strings.Contains(result.Output, "Thank you for your time and consideration.") {
		t.Errorf("static letter missing: %s", result.Output)
	}
}

func TestResolveForm(t *testing.T) {
	inline := &types.ResumeForm{FirstName: "Inline"}
	nested := &types.ResumeForm{FirstName: "Nested"}

	if got := ResolveForm(&types.BuildRequest{FormData: nested}, inline); got.FirstName != "Nested" {
		t.Errorf("formData should win, got %q", got.FirstName)
	}
	if got := ResolveForm(&types.BuildRequest{}, inline); got.FirstName != "Inline" {
		t.Errorf("inline form should be used, got %q", got.FirstName)
	}
	if got := ResolveForm(nil, nil); got == nil {
		t.Error("nil inputs should yield an empty form")
	}
}

func TestBuildResumeEmptyForm(t *testing.T) {
	b := newBuilder(nil, nil)
	result, err := b.BuildResume(context.Background(), &types.ResumeForm{}, "")
	if err != nil {
		t.Fatalf("BuildResume: %v", err)
	}
	if strings.Contains(result.Output, "<strong>SUMMARY</strong>") {
		t.Errorf("empty form should not emit sections: %s", result.Output)
	}
	if result.ATSScore != 0 {
		t.Errorf("ATS score = %d, want 0 for an empty form", result.ATSScore)
	}
}

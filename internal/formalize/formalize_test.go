package formalize

import (
	"context"
	"errors"
	"reflect"
	"testing"

	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/ai"
	"resumeforge/internal/types"
)

func TestLocalCleanup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "bachelor of science", input: "BS Micro", want: "B.S. Microbiology"},
		{name: "master of arts", input: "MA History", want: "M.A. History"},
		{name: "phd case insensitive", input: "phd in CS", want: "Ph.D. in Computer Science"},
		{name: "job title shorthand", input: "Sr Mgr, IT", want: "Senior Manager, Information Technology"},
		{name: "word boundaries respected", input: "ABSOLUTE MSRP", want: "ABSOLUTE MSRP"},
		{name: "whitespace trimmed", input: "  BA English  ", want: "B.A. English"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocalCleanup(tt.input); got != tt.want {
				t.Errorf("LocalCleanup(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanList(t *testing.T) {
	got := CleanList([]string{" first ", "", "  ", "second"})
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanList = %v, want %v", got, want)
	}
}

func TestCollapseDegreeTautology(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "doctor tautology collapses",
			input: "Doctor of Optometry in Optometry",
			want:  "Doctor of Optometry",
		},
		{
			name:  "multiword tautology collapses",
			input: "Doctor of Health Science in Health Science",
			want:  "Doctor of Health Science",
		},
		{
			name:  "distinct field joins with dash",
			input: "Bachelor of Science in Nursing",
			want:  "Bachelor of Science — Nursing",
		},
		{
			name:  "master distinct field",
			input: "Master of Arts in Teaching",
			want:  "Master of Arts — Teaching",
		},
		{
			name:  "no degree untouched",
			input: "Certificate in Welding",
			want:  "Certificate in Welding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collapseDegreeTautology(tt.input); got != tt.want {
				t.Errorf("collapseDegreeTautology(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommafyMonthYear(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Graduated May 2023", "Graduated May, 2023"},
		{"Jan 2020 – Mar 2022", "Jan, 2020 – Mar, 2022"},
		{"september 2019", "september, 2019"},
		{"Sept 2021", "Sept, 2021"},
		{"May, 2023 already done", "May, 2023 already done"},
		{"no dates here", "no dates here"},
		{"May 23 is not a year", "May 23 is not a year"},
	}

	for _, tt := range tests {
		if got := CommafyMonthYear(tt.input); got != tt.want {
			t.Errorf("CommafyMonthYear(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPostProcessIdempotent(t *testing.T) {
	inputs := []string{
		"Bachelor of Science in Microbiology",
		"Doctor of Optometry in Optometry",
		"Graduated May 2023",
		"Sept 2021 – Jan 2023",
		"Certified Nursing Assistant",
	}
	categories := []types.ContentCategory{
		types.CategoryEducation,
		types.CategoryExperience,
		types.CategorySkills,
		types.CategoryCertifications,
		types.CategoryHobbies,
	}

	for _, cat := range categories {
		once := PostProcess(inputs, cat)
		twice := PostProcess(once, cat)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("PostProcess not idempotent for %s: %v != %v", cat, once, twice)
		}
	}
}

func TestTitleCaseLite(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"mountain biking", "Mountain Biking"},
		{"pc building", "Pc Building"},
		{"ROCK CLIMBING", "Rock Climbing"},
		{"3d printing", "3d Printing"},
	}

	for _, tt := range tests {
		if got := TitleCaseLite(tt.input); got != tt.want {
			t.Errorf("TitleCaseLite(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "json fence", input: "```json\n[\"a\"]\n```", want: "[\"a\"]"},
		{name: "bare fence", input: "```\n[\"a\"]\n```", want: "[\"a\"]"},
		{name: "no fence", input: "[\"a\"]", want: "[\"a\"]"},
		{name: "uppercase fence tag", input: "```JSON\n{}\n```", want: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.input); got != tt.want {
				t.Errorf("StripFences = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStringArray(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		expectedLen int
		want        []string
		ok          bool
	}{
		{
			name:        "clean array",
			raw:         `["Bachelor of Science", "CPR"]`,
			expectedLen: 2,
			want:        []string{"Bachelor of Science", "CPR"},
			ok:          true,
		},
		{
			name:        "fenced array",
			raw:         "```json\n[\"one\"]\n```",
			expectedLen: 1,
			want:        []string{"one"},
			ok:          true,
		},
		{
			name:        "length mismatch rejected",
			raw:         `["only one"]`,
			expectedLen: 2,
			ok:          false,
		},
		{
			name:        "object rejected",
			raw:         `{"items": ["a"]}`,
			expectedLen: 1,
			ok:          false,
		},
		{
			name:        "prose rejected",
			raw:         "Here are your items: a, b",
			expectedLen: 2,
			ok:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStringArray(tt.raw, tt.expectedLen)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCoverBody(t *testing.T) {
	t.Run("direct json", func(t *testing.T) {
		body := ParseCoverBody(`{"opening": "Hello", "body": ["First", "Second"], "closing": "Bye"}`)
		if body.Opening != "Hello" || body.Closing != "Bye" || len(body.Body) != 2 {
			t.Errorf("unexpected body: %+v", body)
		}
	})

	t.Run("embedded object", func(t *testing.T) {
		body := ParseCoverBody("Sure! Here you go:\n{\"opening\": \"Hi\", \"body\": [], \"closing\": \"End\"}")
		if body.Opening != "Hi" || body.Closing != "End" {
			t.Errorf("unexpected body: %+v", body)
		}
	})

	t.Run("body capped at three", func(t *testing.T) {
		body := ParseCoverBody(`{"opening": "o", "body": ["1", "2", "3", "4", "5"], "closing": "c"}`)
		if len(body.Body) != 3 {
			t.Errorf("expected 3 body paragraphs, got %d", len(body.Body))
		}
	})

	t.Run("plain text paragraphs", func(t *testing.T) {
		body := ParseCoverBody("Opening paragraph here.\n\nMiddle thoughts.\n\nClosing remarks.")
		if body.Opening != "Opening paragraph here." {
			t.Errorf("unexpected opening: %q", body.Opening)
		}
		if body.Closing != "Closing remarks." {
			t.Errorf("unexpected closing: %q", body.Closing)
		}
		if len(body.Body) != 1 || body.Body[0] != "Middle thoughts." {
			t.Errorf("unexpected body: %v", body.Body)
		}
	})

	t.Run("single paragraph", func(t *testing.T) {
		body := ParseCoverBody("Just one paragraph.")
		if body.Opening != "Just one paragraph." || body.Closing != "" {
			t.Errorf("unexpected body: %+v", body)
		}
	})
}

func TestParseRewriteResult(t *testing.T) {
	t.Run("valid json", func(t *testing.T) {
		r := ParseRewriteResult(`{"summary": " Tight summary ", "bullets": ["Led team", " Shipped it "]}`)
		if r.Summary != "Tight summary" {
			t.Errorf("unexpected summary: %q", r.Summary)
		}
		if !reflect.DeepEqual(r.Bullets, []string{"Led team", "Shipped it"}) {
			t.Errorf("unexpected bullets: %v", r.Bullets)
		}
	})

	t.Run("empty bullets preserved in place", func(t *testing.T) {
		r := ParseRewriteResult(`{"bullets": ["kept", "", "also kept"]}`)
		if len(r.Bullets) != 3 {
			t.Errorf("expected 3 bullets (blanks kept), got %d", len(r.Bullets))
		}
	})

	t.Run("garbage returns neutral", func(t *testing.T) {
		r := ParseRewriteResult("I could not process that request.")
		if r.Summary != "" || len(r.Bullets) != 0 {
			t.Errorf("expected neutral result, got %+v", r)
		}
	})
}

func TestParseGeneratedResume(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		resume := ParseGeneratedResume(`{"summary": "S", "skills": ["Go"], "experience": [{"header": "H", "bullets": ["b"]}]}`)
		if resume == nil {
			t.Fatal("expected parsed resume")
		}
		if resume.Summary != "S" || len(resume.Experience) != 1 {
			t.Errorf("unexpected resume: %+v", resume)
		}
	})

	t.Run("fenced", func(t *testing.T) {
		if ParseGeneratedResume("```json\n{\"summary\": \"S\"}\n```") == nil {
			t.Error("expected fenced resume to parse")
		}
	})

	t.Run("unusable returns nil", func(t *testing.T) {
		if ParseGeneratedResume("no json at all") != nil {
			t.Error("expected nil for prose reply")
		}
	})
}

func TestNumberTokens(t *testing.T) {
	got := NumberTokens("Grew revenue 12% to $1,200.50 across 3 regions and 40k users")
	want := []string{"12%", "1,200.50", "3", "40k"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NumberTokens = %v, want %v", got, want)
	}
}

func TestGuardNumbers(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		rewritten string
		want      string
	}{
		{
			name:      "preserved numbers pass",
			original:  "Managed 12 staff across 3 sites",
			rewritten: "Led 12 staff spanning 3 locations",
			want:      "Led 12 staff spanning 3 locations",
		},
		{
			name:      "invented number stripped",
			original:  "Managed staff across sites",
			rewritten: "Led 25 staff across sites",
			want:      "Led  staff across sites",
		},
		{
			name:      "comma grouping matches bare digits",
			original:  "Processed 1200 claims",
			rewritten: "Processed 1,200 claims",
			want:      "Processed 1,200 claims",
		},
		{
			name:      "all stripped falls back to original",
			original:  "Did the work",
			rewritten: "99%",
			want:      "Did the work",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuardNumbers(tt.original, tt.rewritten); got != tt.want {
				t.Errorf("GuardNumbers = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGuardBullets(t *testing.T) {
	originals := []string{"Cut costs 10%", "Answered phones"}
	rewritten := []string{"Reduced spend 10%", ""}
	got := GuardBullets(originals, rewritten)
	want := []string{"Reduced spend 10%", "Answered phones"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GuardBullets = %v, want %v", got, want)
	}
}

// scriptedOracle returns canned replies for formalizer tests.
type scriptedOracle struct {
	reply string
	err   error
	calls int
}

func (s *scriptedOracle) FormalizeList(_ context.Context, _ types.FormalizeInput) (string, *ai.TokenUsage, error) {
	s.calls++
	return s.reply, nil, s.err
}

func (s *scriptedOracle) ComposeCoverBody(_ context.Context, _ types.CoverInput) (string, *ai.TokenUsage, error) {
	return s.reply, nil, s.err
}

func (s *scriptedOracle) RewriteContent(_ context.Context, _ types.RewriteInput) (string, *ai.TokenUsage, error) {
	return s.reply, nil, s.err
}

func (s *scriptedOracle) GenerateResume(_ context.Context, _ types.GenerateInput) (string, *ai.TokenUsage, error) {
	return s.reply, nil, s.err
}

func (s *scriptedOracle) GetModelInfo(_ context.Context) *ai.ModelInfo { return &ai.ModelInfo{} }
func (s *scriptedOracle) Close() error                                 { return nil }

func newTestLogger() *forgeErrors.Logger {
	logger, _ := forgeErrors.New("error")
	return logger
}

func TestFormalizeListOracleSuccess(t *testing.T) {
	oracle := &scriptedOracle{reply: `["Bachelor of Science — Microbiology", "Doctor of Optometry"]`}
	f := New(oracle, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"BS Micro", "OD"}, types.CategoryEducation, "", "")

	if out.Source != SourceOracle {
		t.Fatalf("expected oracle source, got %q (%s)", out.Source, out.Reason)
	}
	want := []string{"Bachelor of Science — Microbiology", "Doctor of Optometry"}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("Lines = %v, want %v", out.Lines, want)
	}
}

func TestFormalizeListOracleCasingPreserved(t *testing.T) {
	// Title-casing is a fallback-only touch. Oracle output keeps its casing.
	oracle := &scriptedOracle{reply: `["mountain biking", "chess"]`}
	f := New(oracle, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"mtb", "chess"}, types.CategoryHobbies, "", "")

	if out.Source != SourceOracle {
		t.Fatalf("expected oracle source, got %q (%s)", out.Source, out.Reason)
	}
	want := []string{"mountain biking", "chess"}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("Lines = %v, want %v", out.Lines, want)
	}
}

func TestFormalizeListOracleTautologyPostProcessed(t *testing.T) {
	// Even oracle output passes through the tautology collapse.
	oracle := &scriptedOracle{reply: `["Doctor of Optometry in Optometry"]`}
	f := New(oracle, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"OD"}, types.CategoryEducation, "", "")

	if out.Lines[0] != "Doctor of Optometry" {
		t.Errorf("expected tautology collapsed, got %q", out.Lines[0])
	}
}

func TestFormalizeListShapeMismatchFallsBack(t *testing.T) {
	oracle := &scriptedOracle{reply: "```json\n[\"only one line\"]\n```"}
	f := New(oracle, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"BS", "MS"}, types.CategoryEducation, "", "")

	if out.Source != SourceFallback {
		t.Fatalf("expected fallback on shape mismatch, got %q", out.Source)
	}
	want := []string{"B.S.", "M.S."}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("Lines = %v, want %v", out.Lines, want)
	}
}

func TestFormalizeListOracleErrorFallsBack(t *testing.T) {
	oracle := &scriptedOracle{err: errors.New("boom")}
	f := New(oracle, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"Sr Mgr"}, types.CategoryExperience, "", "")

	if out.Source != SourceFallback {
		t.Fatalf("expected fallback on oracle error, got %q", out.Source)
	}
	if out.Lines[0] != "Senior Manager" {
		t.Errorf("expected local cleanup, got %q", out.Lines[0])
	}
}

func TestFormalizeListNoOracle(t *testing.T) {
	f := New(nil, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"mtb", "sax"}, types.CategoryHobbies, "", "")

	if out.Source != SourceFallback {
		t.Fatalf("expected fallback without oracle, got %q", out.Source)
	}
	// Title-casing applies on the fallback path for hobbies.
	want := []string{"Mtb", "Sax"}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("Lines = %v, want %v", out.Lines, want)
	}
}

func TestFormalizeListEmptyInput(t *testing.T) {
	f := New(nil, newTestLogger())

	out := f.FormalizeList(context.Background(), []string{"", "   "}, types.CategorySkills, "", "")

	if len(out.Lines) != 0 {
		t.Errorf("expected no lines, got %v", out.Lines)
	}
}

func TestFormalizeListCardinalityInvariant(t *testing.T) {
	inputs := [][]string{
		{"a"},
		{"a", "", "b"},
		{"x", "y", "z", "w"},
	}
	f := New(&scriptedOracle{reply: "not json"}, newTestLogger())

	for _, items := range inputs {
		out := f.FormalizeList(context.Background(), items, types.CategorySkills, "", "")
		if len(out.Lines) != len(CleanList(items)) {
			t.Errorf("cardinality broken for %v: got %d lines", items, len(out.Lines))
		}
	}
}

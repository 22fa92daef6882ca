package planner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

var tripStart = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

type stubModel struct {
	text   string
	err    error
	prompt string
}

func (m *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

func TestDayCount(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same day", tripStart, tripStart, 1},
		{"three days", tripStart, tripStart.AddDate(0, 0, 2), 3},
		{"partial day floors", tripStart.Add(10 * time.Hour), tripStart.AddDate(0, 0, 2).Add(9 * time.Hour), 2},
		{"end before start", tripStart, tripStart.AddDate(0, 0, -1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayCount(tt.start, tt.end); got != tt.want {
				t.Errorf("DayCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	budget := 5000.0
	prompt := BuildPrompt(Request{
		Destination:   "Kyoto",
		StartDate:     tripStart,
		EndDate:       tripStart.AddDate(0, 0, 2),
		Budget:        &budget,
		TravelerCount: 2,
		Preferences: map[string]any{
			"interests":    []any{"temples", "food"},
			"travel_style": "relaxed",
		},
	})

	for _, want := range []string{
		"Destination: Kyoto",
		"(3 days)",
		"Budget: 5000.00 CNY",
		"Travelers: 2",
		"Interests: temples, food",
		"Travel style: relaxed",
		"Accommodation: no special preference",
		`"budget_breakdown"`,
		"Return valid JSON only",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptWithoutBudget(t *testing.T) {
	prompt := BuildPrompt(Request{Destination: "Oslo", StartDate: tripStart, EndDate: tripStart})
	if !strings.Contains(prompt, "Budget: unspecified") {
		t.Error("expected unspecified budget")
	}
	if !strings.Contains(prompt, "Interests: no special preference") {
		t.Error("expected no interests")
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("extracts embedded object", func(t *testing.T) {
		plan, err := ParseResponse(`Here you go: {"days":[{"day":1}]} thanks`, tripStart, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(plan.Days) != 1 {
			t.Fatalf("expected 1 day, got %d", len(plan.Days))
		}
		if plan.Days[0].Date != "2024-05-01T00:00:00Z" {
			t.Errorf("unexpected date %q", plan.Days[0].Date)
		}
	})

	t.Run("assigns dates and renumbers days", func(t *testing.T) {
		raw := `{"summary":"s","days":[{"day":7,"title":"a"},{"title":"b"},{"day":1}]}`
		plan, err := ParseResponse(raw, tripStart, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, d := range plan.Days {
			if d.Day == nil || *d.Day != i+1 {
				t.Errorf("day %d numbered %v", i, d.Day)
			}
			want := tripStart.AddDate(0, 0, i).Format(DateLayout)
			if d.Date != want {
				t.Errorf("day %d date = %q, want %q", i, d.Date, want)
			}
		}
	})

	t.Run("keeps optional activity fields absent", func(t *testing.T) {
		raw := `{"days":[{"activities":[{"name":"Walk"}]}]}`
		plan, err := ParseResponse(raw, tripStart, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a := plan.Days[0].Activities[0]
		if a.Duration != nil || a.Cost != nil || a.Type != "" {
			t.Errorf("expected absent fields, got %+v", a)
		}
	})

	failures := map[string]string{
		"no braces":       "sorry, I cannot help",
		"reversed braces": "} nothing {",
		"invalid json":    "{not json}",
		"wrong types":     `{"days":"many"}`,
		"day mismatch":    `{"days":[{"day":1}]}`,
		"missing days":    `{"summary":"x"}`,
	}
	for name, raw := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(raw, tripStart, 2)
			if !errors.Is(err, ErrUnparseableResponse) {
				t.Errorf("expected ErrUnparseableResponse, got %v", err)
			}
		})
	}
}

func TestParseResponseLenientNumbers(t *testing.T) {
	intPtr := func(n int) *int { return &n }
	floatPtr := func(f float64) *float64 { return &f }

	tests := []struct {
		name         string
		activity     string
		wantDuration *int
		wantCost     *float64
	}{
		{"numbers", `{"name":"a","duration":90,"cost":12.5}`, intPtr(90), floatPtr(12.5)},
		{"non numeric cost", `{"name":"a","cost":"free"}`, nil, nil},
		{"non numeric duration", `{"name":"a","duration":"2h"}`, nil, nil},
		{"quoted numbers", `{"name":"a","duration":"45","cost":" 30.5 "}`, intPtr(45), floatPtr(30.5)},
		{"whole float duration", `{"name":"a","duration":120.0}`, intPtr(120), nil},
		{"fractional duration", `{"name":"a","duration":1.5}`, nil, nil},
		{"null values", `{"name":"a","duration":null,"cost":null}`, nil, nil},
		{"object cost", `{"name":"a","cost":{"amount":3}}`, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"summary":"s","days":[{"day":1.0,"activities":[` + tt.activity + `]}]}`
			plan, err := ParseResponse(raw, tripStart, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			a := plan.Days[0].Activities[0]
			if a.Name != "a" {
				t.Errorf("unexpected name %q", a.Name)
			}
			if !equalPtr(a.Duration, tt.wantDuration) {
				t.Errorf("duration = %v, want %v", deref(a.Duration), deref(tt.wantDuration))
			}
			if !equalPtr(a.Cost, tt.wantCost) {
				t.Errorf("cost = %v, want %v", deref(a.Cost), deref(tt.wantCost))
			}
			if plan.Days[0].Day == nil || *plan.Days[0].Day != 1 {
				t.Errorf("unexpected day number %v", plan.Days[0].Day)
			}
		})
	}

	t.Run("day numbers of any shape", func(t *testing.T) {
		raw := `{"days":[{"day":"1"},{"day":2.0},{"day":"second"}]}`
		plan, err := ParseResponse(raw, tripStart, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, d := range plan.Days {
			if d.Day == nil || *d.Day != i+1 {
				t.Errorf("day %d numbered %v", i, d.Day)
			}
		}
	})

	t.Run("top level totals", func(t *testing.T) {
		raw := `{"total_estimated_cost":"3000","budget_breakdown":"see tips","days":[{}]}`
		plan, err := ParseResponse(raw, tripStart, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.TotalEstimatedCost != 3000 {
			t.Errorf("unexpected total %v", plan.TotalEstimatedCost)
		}
		if plan.BudgetBreakdown != (BudgetBreakdown{}) {
			t.Errorf("expected empty breakdown, got %+v", plan.BudgetBreakdown)
		}
	})
}

func TestParseResponseKeepsModelObject(t *testing.T) {
	raw := `{"summary":"s","hotel":"Ryokan Sawaya","days":[
		{"day":4,"date":"1999-01-01","activities":[{"name":"Walk","notes":"bring shoes","cost":"free"}]}
	]}`
	plan, err := ParseResponse(raw, tripStart, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blob, err := plan.Audit()
	if err != nil {
		t.Fatalf("Audit returned error: %v", err)
	}
	var doc struct {
		Hotel string `json:"hotel"`
		Days  []struct {
			Day        int    `json:"day"`
			Date       string `json:"date"`
			Activities []struct {
				Notes string `json:"notes"`
				Cost  string `json:"cost"`
			} `json:"activities"`
		} `json:"days"`
	}
	if err := json.Unmarshal(blob, &doc); err != nil {
		t.Fatalf("decode audit document: %v", err)
	}
	if doc.Hotel != "Ryokan Sawaya" {
		t.Errorf("top level key dropped: %s", blob)
	}
	if len(doc.Days) != 1 || doc.Days[0].Day != 1 || doc.Days[0].Date != "2024-05-01T00:00:00Z" {
		t.Errorf("days not normalized: %s", blob)
	}
	if len(doc.Days[0].Activities) != 1 || doc.Days[0].Activities[0].Notes != "bring shoes" || doc.Days[0].Activities[0].Cost != "free" {
		t.Errorf("activity keys dropped: %s", blob)
	}

	var reloaded Plan
	if err := json.Unmarshal(blob, &reloaded); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if reloaded.Summary != "s" || *reloaded.Days[0].Day != 1 || reloaded.Days[0].Activities[0].Cost != nil {
		t.Errorf("unexpected reloaded plan %+v", reloaded)
	}
}

func TestFallbackAuditIsPlan(t *testing.T) {
	plan := Fallback("Rome", tripStart, 2, nil)
	blob, err := plan.Audit()
	if err != nil {
		t.Fatalf("Audit returned error: %v", err)
	}
	want, _ := json.Marshal(plan)
	if string(blob) != string(want) {
		t.Errorf("audit document differs from plan encoding\n got: %s\nwant: %s", blob, want)
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestFallback(t *testing.T) {
	t.Run("structure", func(t *testing.T) {
		plan := Fallback("Lisbon", tripStart, 3, nil)
		if len(plan.Days) != 3 {
			t.Fatalf("expected 3 days, got %d", len(plan.Days))
		}
		if plan.Summary != "Lisbon 3-day basic itinerary" {
			t.Errorf("unexpected summary %q", plan.Summary)
		}
		if plan.TotalEstimatedCost != 1500 {
			t.Errorf("expected 1500, got %v", plan.TotalEstimatedCost)
		}
		day := plan.Days[1]
		if *day.Day != 2 || day.Title != "Day 2 - Lisbon exploration" {
			t.Errorf("unexpected day %+v", day)
		}
		if len(day.Activities) != 3 {
			t.Fatalf("expected 3 activities, got %d", len(day.Activities))
		}
		lunch := day.Activities[1]
		if lunch.Time != "12:00" || lunch.Type != "restaurant" || lunch.Duration != nil || *lunch.Cost != 80 {
			t.Errorf("unexpected lunch %+v", lunch)
		}
		if plan.BudgetBreakdown.Shopping != nil {
			t.Error("fallback breakdown must not include shopping")
		}
		if *plan.BudgetBreakdown.Accommodation != 450 || *plan.BudgetBreakdown.Other != 75 {
			t.Errorf("unexpected breakdown %+v", plan.BudgetBreakdown)
		}
		if len(plan.Tips) != 3 {
			t.Errorf("expected 3 tips, got %d", len(plan.Tips))
		}
	})

	t.Run("uses budget as total", func(t *testing.T) {
		budget := 2000.0
		plan := Fallback("Lisbon", tripStart, 3, &budget)
		if plan.TotalEstimatedCost != 2000 || *plan.BudgetBreakdown.Transport != 400 {
			t.Errorf("unexpected totals %v %+v", plan.TotalEstimatedCost, plan.BudgetBreakdown)
		}
	})

	t.Run("zero budget counts as unset", func(t *testing.T) {
		budget := 0.0
		plan := Fallback("Lisbon", tripStart, 2, &budget)
		if plan.TotalEstimatedCost != 1000 {
			t.Errorf("expected 1000, got %v", plan.TotalEstimatedCost)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := json.Marshal(Fallback("Rome", tripStart, 4, nil))
		b, _ := json.Marshal(Fallback("Rome", tripStart, 4, nil))
		if string(a) != string(b) {
			t.Error("fallback output differs between calls")
		}
	})
}

func TestPlannerPlan(t *testing.T) {
	req := Request{Destination: "Porto", StartDate: tripStart, EndDate: tripStart.AddDate(0, 0, 1), TravelerCount: 1}

	t.Run("model plan", func(t *testing.T) {
		model := &stubModel{text: "```json\n" + `{"summary":"ok","days":[{"title":"a"},{"title":"b"}]}` + "\n```"}
		res := New(model, zaptest.NewLogger(t)).Plan(context.Background(), req)
		if res.Source != SourceModel || res.Reason != nil {
			t.Fatalf("expected model source, got %s (%v)", res.Source, res.Reason)
		}
		if res.Plan.Summary != "ok" || len(res.Plan.Days) != 2 {
			t.Errorf("unexpected plan %+v", res.Plan)
		}
		if !strings.Contains(model.prompt, "Porto") {
			t.Error("prompt was not sent to the model")
		}
	})

	tests := []struct {
		name  string
		model Model
		want  error
	}{
		{"unavailable", &stubModel{err: ErrModelUnavailable}, ErrModelUnavailable},
		{"model error", &stubModel{err: ErrModelError}, ErrModelError},
		{"garbage", &stubModel{text: "no plan today"}, ErrUnparseableResponse},
		{"no model", nil, ErrModelUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.model, zaptest.NewLogger(t)).Plan(context.Background(), req)
			if res.Source != SourceFallback {
				t.Fatalf("expected fallback, got %s", res.Source)
			}
			if !errors.Is(res.Reason, tt.want) {
				t.Errorf("expected reason %v, got %v", tt.want, res.Reason)
			}
			if res.Plan.Summary != "Porto 2-day basic itinerary" {
				t.Errorf("unexpected summary %q", res.Plan.Summary)
			}
		})
	}
}

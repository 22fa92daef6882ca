package budget

import (
	"encoding/json"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		entries    []Entry
		budget     float64
		wantSpent  float64
		wantLeft   float64
		wantPct    float64
		wantStatus Status
	}{
		{
			name:       "on track",
			entries:    []Entry{{"food", 200}, {"transport", 300}},
			budget:     1000,
			wantSpent:  500,
			wantLeft:   500,
			wantPct:    50,
			wantStatus: StatusOnTrack,
		},
		{
			name:       "warning at ninety percent",
			entries:    []Entry{{"food", 900}},
			budget:     1000,
			wantSpent:  900,
			wantLeft:   100,
			wantPct:    90,
			wantStatus: StatusWarning,
		},
		{
			name:       "warning",
			entries:    []Entry{{"food", 950}},
			budget:     1000,
			wantSpent:  950,
			wantLeft:   50,
			wantPct:    95,
			wantStatus: StatusWarning,
		},
		{
			name:       "over budget",
			entries:    []Entry{{"food", 1200}},
			budget:     1000,
			wantSpent:  1200,
			wantLeft:   -200,
			wantPct:    120,
			wantStatus: StatusOverBudget,
		},
		{
			name:       "exactly on budget",
			entries:    []Entry{{"food", 1000}},
			budget:     1000,
			wantSpent:  1000,
			wantLeft:   0,
			wantPct:    100,
			wantStatus: StatusWarning,
		},
		{
			name:       "no expenses",
			budget:     1000,
			wantLeft:   1000,
			wantStatus: StatusOnTrack,
		},
		{
			name:       "zero budget",
			entries:    []Entry{{"food", 10}},
			budget:     0,
			wantSpent:  10,
			wantLeft:   -10,
			wantPct:    0,
			wantStatus: StatusOverBudget,
		},
		{
			name:       "decimal sums",
			entries:    []Entry{{"food", 0.1}, {"food", 0.2}},
			budget:     3,
			wantSpent:  0.3,
			wantLeft:   2.7,
			wantPct:    10,
			wantStatus: StatusOnTrack,
		},
		{
			name:       "percentage rounds to two places",
			entries:    []Entry{{"food", 1}},
			budget:     3,
			wantSpent:  1,
			wantLeft:   2,
			wantPct:    33.33,
			wantStatus: StatusOnTrack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.entries, tt.budget)
			if got.TotalSpent != tt.wantSpent {
				t.Errorf("TotalSpent = %v, want %v", got.TotalSpent, tt.wantSpent)
			}
			if got.Remaining != tt.wantLeft {
				t.Errorf("Remaining = %v, want %v", got.Remaining, tt.wantLeft)
			}
			if got.SpendingPercentage != tt.wantPct {
				t.Errorf("SpendingPercentage = %v, want %v", got.SpendingPercentage, tt.wantPct)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.TotalBudget != tt.budget {
				t.Errorf("TotalBudget = %v, want %v", got.TotalBudget, tt.budget)
			}
		})
	}
}

func TestBreakdown(t *testing.T) {
	got := Analyze([]Entry{
		{"transport", 100},
		{"", 5},
		{"food", 40},
		{"transport", 20},
	}, 1000)

	if len(got.CategoryBreakdown) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got.CategoryBreakdown))
	}
	if amount, _ := got.CategoryBreakdown.Amount("transport"); amount != 120 {
		t.Errorf("transport = %v, want 120", amount)
	}
	if amount, ok := got.CategoryBreakdown.Amount(DefaultCategory); !ok || amount != 5 {
		t.Errorf("other = %v (%v), want 5", amount, ok)
	}

	body, err := json.Marshal(got.CategoryBreakdown)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"transport":120,"other":5,"food":40}`
	if string(body) != want {
		t.Errorf("json = %s, want %s", body, want)
	}

	empty, _ := json.Marshal(Analyze(nil, 10).CategoryBreakdown)
	if string(empty) != "{}" {
		t.Errorf("empty breakdown = %s, want {}", empty)
	}
}

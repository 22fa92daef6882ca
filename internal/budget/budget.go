package budget

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOnTrack    Status = "on_track"
	StatusWarning    Status = "warning"
	StatusOverBudget Status = "over_budget"

	DefaultCategory = "other"
)

var warningThreshold = decimal.NewFromInt(90)

type Entry struct {
	Category string
	Amount   float64
}

type CategoryTotal struct {
	Category string
	Amount   float64
}

// Breakdown keeps categories in the order they were first seen. It encodes as
// a JSON object in that order.
type Breakdown []CategoryTotal

func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Amount returns the total for category and whether it was present.
func (b Breakdown) Amount(category string) (float64, bool) {
	for _, c := range b {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return 0, false
}

type Analysis struct {
	TotalBudget        float64   `json:"total_budget"`
	TotalSpent         float64   `json:"total_spent"`
	Remaining          float64   `json:"remaining"`
	SpendingPercentage float64   `json:"spending_percentage"`
	CategoryBreakdown  Breakdown `json:"category_breakdown"`
	Status             Status    `json:"status"`
}

// Analyze summarizes spending against budget. A budget of zero or less yields
// a spending percentage of 0.
func Analyze(entries []Entry, budget float64) Analysis {
	total := decimal.Zero
	sums := map[string]decimal.Decimal{}
	var order []string

	for _, e := range entries {
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = DefaultCategory
		}
		amount := decimal.NewFromFloat(e.Amount)
		if _, ok := sums[category]; !ok {
			order = append(order, category)
		}
		sums[category] = sums[category].Add(amount)
		total = total.Add(amount)
	}

	limit := decimal.NewFromFloat(budget)
	pct := decimal.Zero
	if limit.IsPositive() {
		pct = total.Div(limit).Mul(decimal.NewFromInt(100)).Round(2)
	}

	status := StatusOnTrack
	switch {
	case total.GreaterThan(limit):
		status = StatusOverBudget
	case pct.GreaterThanOrEqual(warningThreshold):
		status = StatusWarning
	}

	breakdown := make(Breakdown, 0, len(order))
	for _, category := range order {
		breakdown = append(breakdown, CategoryTotal{Category: category, Amount: sums[category].InexactFloat64()})
	}

	return Analysis{
		TotalBudget:        limit.InexactFloat64(),
		TotalSpent:         total.InexactFloat64(),
		Remaining:          limit.Sub(total).InexactFloat64(),
		SpendingPercentage: pct.InexactFloat64(),
		CategoryBreakdown:  breakdown,
		Status:             status,
	}
}

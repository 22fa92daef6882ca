package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrModelUnavailable covers network failures, timeouts and non-success responses.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrModelError means the model answered but produced nothing usable.
	ErrModelError          = errors.New("model error")
	ErrUnparseableResponse = errors.New("unparseable model response")
)

// Plan is the structured itinerary produced by the model or by Fallback.
// Optional fields are pointers so a missing value can be told apart from zero.
type Plan struct {
	Summary            string          `json:"summary"`
	TotalEstimatedCost float64         `json:"total_estimated_cost"`
	Days               []Day           `json:"days"`
	BudgetBreakdown    BudgetBreakdown `json:"budget_breakdown"`
	Tips               []string        `json:"tips"`

	// raw is the object the plan was decoded from, keys Plan has no field for
	// included.
	raw json.RawMessage
}

// Audit returns the document kept with a materialized trip: the decoded
// object when there is one, the encoded plan otherwise.
func (p *Plan) Audit() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	return json.Marshal(p)
}

// Models often quote numbers or write them as floats, so the numeric fields
// below decode leniently. A value that is not a number becomes absent.

func (p *Plan) UnmarshalJSON(data []byte) error {
	type plain Plan
	aux := struct {
		*plain
		TotalEstimatedCost json.RawMessage `json:"total_estimated_cost"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if cost, ok := number(aux.TotalEstimatedCost); ok {
		p.TotalEstimatedCost = cost
	}
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

type Day struct {
	Day         *int       `json:"day,omitempty"`
	Date        string     `json:"date"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Activities  []Activity `json:"activities"`
}

func (d *Day) UnmarshalJSON(data []byte) error {
	type plain Day
	aux := struct {
		*plain
		Day json.RawMessage `json:"day"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Day = wholeNumber(aux.Day)
	return nil
}

type Activity struct {
	Time        string   `json:"time,omitempty"`
	Type        string   `json:"type,omitempty"`
	Name        string   `json:"name,omitempty"`
	Location    string   `json:"location,omitempty"`
	Duration    *int     `json:"duration,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	type plain Activity
	aux := struct {
		*plain
		Duration json.RawMessage `json:"duration"`
		Cost     json.RawMessage `json:"cost"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Duration = wholeNumber(aux.Duration)
	a.Cost = numberPtr(aux.Cost)
	return nil
}

type BudgetBreakdown struct {
	Accommodation *float64 `json:"accommodation,omitempty"`
	Food          *float64 `json:"food,omitempty"`
	Transport     *float64 `json:"transport,omitempty"`
	Attraction    *float64 `json:"attraction,omitempty"`
	Shopping      *float64 `json:"shopping,omitempty"`
	Other         *float64 `json:"other,omitempty"`
}

// UnmarshalJSON ignores a breakdown that is not an object.
func (b *BudgetBreakdown) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*b = BudgetBreakdown{}
		return nil
	}
	*b = BudgetBreakdown{
		Accommodation: numberPtr(fields["accommodation"]),
		Food:          numberPtr(fields["food"]),
		Transport:     numberPtr(fields["transport"]),
		Attraction:    numberPtr(fields["attraction"]),
		Shopping:      numberPtr(fields["shopping"]),
		Other:         numberPtr(fields["other"]),
	}
	return nil
}

// number reads a JSON number or a string holding one.
func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberPtr(raw json.RawMessage) *float64 {
	f, ok := number(raw)
	if !ok {
		return nil
	}
	return &f
}

func wholeNumber(raw json.RawMessage) *int {
	f, ok := number(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

// Request carries the trip parameters a plan is generated for.
type Request struct {
	Destination   string
	StartDate     time.Time
	EndDate       time.Time
	Budget        *float64
	TravelerCount int
	Preferences   map[string]any
}

// DayCount returns the number of whole days between start and end, inclusive.
func DayCount(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

// DayDate is the calendar date of the i-th day (zero based) of a trip starting at start.
func DayDate(start time.Time, i int) time.Time {
	return start.AddDate(0, 0, i)
}

// DateLayout is the ISO-8601 form dates take inside a Plan.
const DateLayout = time.RFC3339

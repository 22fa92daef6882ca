package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ParseResponse extracts the JSON object embedded in raw model output and
// normalizes it into a Plan with one entry per trip day. Day i is dated
// start+i days and renumbered i+1 regardless of what the model wrote.
func ParseResponse(raw string, start time.Time, days int) (*Plan, error) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last <= first {
		return nil, fmt.Errorf("%w: no JSON object found", ErrUnparseableResponse)
	}
	obj := []byte(raw[first : last+1])

	var plan Plan
	if err := json.Unmarshal(obj, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	if len(plan.Days) != days {
		return nil, fmt.Errorf("%w: expected %d days, got %d", ErrUnparseableResponse, days, len(plan.Days))
	}

	// The stored copy keeps every key the model sent, numbers untouched.
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(obj))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	entries, _ := doc["days"].([]any)

	for i := range plan.Days {
		n := i + 1
		date := DayDate(start, i).Format(DateLayout)
		plan.Days[i].Day = &n
		plan.Days[i].Date = date
		if i < len(entries) {
			if entry, ok := entries[i].(map[string]any); ok {
				entry["day"] = n
				entry["date"] = date
			}
		}
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	plan.raw = normalized

	return &plan, nil
}

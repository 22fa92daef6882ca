package planner

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const noPreference = "no special preference"

const responseShape = `{
  "summary": "short overview of the trip",
  "total_estimated_cost": 0,
  "days": [
    {
      "day": 1,
      "title": "title of the day",
      "activities": [
        {
          "time": "09:00",
          "type": "attraction",
          "name": "activity name",
          "location": "address or area",
          "duration": 120,
          "cost": 100,
          "description": "what to do and practical advice"
        }
      ]
    }
  ],
  "budget_breakdown": {
    "accommodation": 0,
    "food": 0,
    "transport": 0,
    "attraction": 0,
    "shopping": 0,
    "other": 0
  },
  "tips": ["travel tip"]
}`

// BuildPrompt renders the instruction text sent to the model for req.
func BuildPrompt(req Request) string {
	days := DayCount(req.StartDate, req.EndDate)

	budget := "unspecified"
	if req.Budget != nil && *req.Budget > 0 {
		budget = decimal.NewFromFloat(*req.Budget).StringFixed(2) + " CNY"
	}

	var b strings.Builder
	b.WriteString("You are a professional travel planner. Create a detailed itinerary for the trip below.\n\n")
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Dates: %s to %s (%d days)\n",
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), days)
	fmt.Fprintf(&b, "Budget: %s\n", budget)
	fmt.Fprintf(&b, "Travelers: %d\n", max(req.TravelerCount, 1))
	fmt.Fprintf(&b, "Interests: %s\n", interests(req.Preferences))
	fmt.Fprintf(&b, "Travel style: %s\n", preference(req.Preferences, "travel_style"))
	fmt.Fprintf(&b, "Accommodation: %s\n", preference(req.Preferences, "accommodation_type"))
	fmt.Fprintf(&b, "\nPlan exactly %d days, with activities for every day in chronological order.\n", days)
	b.WriteString("Use 24-hour HH:MM times, durations in minutes and costs in CNY.\n")
	b.WriteString("Activity type is one of: attraction, restaurant, hotel, transport, shopping, other.\n\n")
	b.WriteString("Respond in this JSON format:\n")
	b.WriteString(responseShape)
	b.WriteString("\n\nReturn valid JSON only, without any other text.")
	return b.String()
}

func interests(prefs map[string]any) string {
	var names []string
	switch v := prefs["interests"].(type) {
	case []string:
		names = v
	case []any:
		names = lo.FilterMap(v, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			return s, ok && strings.TrimSpace(s) != ""
		})
	case string:
		names = []string{v}
	}
	names = lo.Filter(names, func(s string, _ int) bool { return strings.TrimSpace(s) != "" })
	if len(names) == 0 {
		return noPreference
	}
	return strings.Join(names, ", ")
}

func preference(prefs map[string]any, key string) string {
	if s, ok := prefs[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return noPreference
}

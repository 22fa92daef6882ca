package planner

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

const fallbackDailyCost = 500.0

// Fallback builds a deterministic template itinerary. It is used whenever the
// model cannot produce a usable plan, so it must never fail.
func Fallback(destination string, start time.Time, days int, budget *float64) *Plan {
	plan := &Plan{
		Summary: fmt.Sprintf("%s %d-day basic itinerary", destination, days),
		Days:    make([]Day, 0, days),
		Tips: []string{
			"This is a basic itinerary template, adjust it to your own needs",
			"Book accommodation and popular attraction tickets in advance",
			"Check the local weather forecast before you leave",
		},
	}

	for i := range days {
		n := i + 1
		plan.Days = append(plan.Days, Day{
			Day:   &n,
			Date:  DayDate(start, i).Format(DateLayout),
			Title: fmt.Sprintf("Day %d - %s exploration", n, destination),
			Activities: []Activity{
				{
					Time:        "09:00",
					Type:        "attraction",
					Name:        destination + " main attractions",
					Location:    destination,
					Duration:    lo.ToPtr(180),
					Cost:        lo.ToPtr(100.0),
					Description: "Check popular local attractions in advance",
				},
				{
					Time:        "12:00",
					Type:        "restaurant",
					Name:        "Local specialty restaurant",
					Location:    destination,
					Cost:        lo.ToPtr(80.0),
					Description: "Try the local cuisine",
				},
				{
					Time:        "14:00",
					Type:        "attraction",
					Name:        destination + " secondary attractions",
					Location:    destination,
					Duration:    lo.ToPtr(120),
					Cost:        lo.ToPtr(50.0),
					Description: "Explore more of the local culture",
				},
			},
		})
	}

	total := float64(days) * fallbackDailyCost
	if budget != nil && *budget > 0 {
		total = *budget
	}
	plan.TotalEstimatedCost = total

	share := func(pct float64) *float64 { return lo.ToPtr(total * pct / 100) }
	plan.BudgetBreakdown = BudgetBreakdown{
		Accommodation: share(30),
		Food:          share(30),
		Transport:     share(20),
		Attraction:    share(15),
		Other:         share(5),
	}

	return plan
}

// Package calendar renders stored itineraries as iCalendar documents.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gdg-garage/trip-planner-api/internal/models"
)

const productName = "trip-planner-api"

// Export renders trip as an iCalendar document. Every day becomes an all-day
// event and every scheduled activity becomes a timed event.
func Export(trip *models.Trip, now time.Time) string {
	cal := ics.NewCalendarFor(productName)
	cal.SetMethod(ics.MethodPublish)
	cal.SetName(trip.Title)
	cal.SetXWRCalName(trip.Title)
	if trip.Description != "" {
		cal.SetXWRCalDesc(trip.Description)
	}

	for _, day := range trip.Days {
		ev := cal.AddEvent(fmt.Sprintf("trip-%d-day-%d@%s", trip.ID, day.DayNumber, productName))
		ev.SetDtStampTime(now)
		ev.SetSummary(day.Title)
		ev.SetLocation(trip.Destination)
		if day.Description != "" {
			ev.SetDescription(day.Description)
		}
		ev.SetAllDayStartAt(day.Date)
		ev.SetAllDayEndAt(day.Date.AddDate(0, 0, 1))

		for _, act := range day.Activities {
			if !scheduled(day, act) {
				continue
			}
			ev := cal.AddEvent(fmt.Sprintf("activity-%d@%s", act.ID, productName))
			ev.SetDtStampTime(now)
			ev.SetSummary(act.Name)
			if act.Location != "" {
				ev.SetLocation(act.Location)
			}
			if act.Description != "" {
				ev.SetDescription(act.Description)
			}
			ev.SetStartAt(*act.StartTime)
			ev.SetEndAt(activityEnd(act))
		}
	}

	return cal.Serialize()
}

// scheduled reports whether act has a time of day. Activities without one
// are stored at the day's date with no end time.
func scheduled(day models.TripDay, act models.TripActivity) bool {
	if act.StartTime == nil {
		return false
	}
	return act.EndTime != nil || !act.StartTime.Equal(day.Date)
}

func activityEnd(act models.TripActivity) time.Time {
	if act.EndTime != nil {
		return *act.EndTime
	}
	if act.Duration != nil {
		return act.StartTime.Add(time.Duration(*act.Duration) * time.Minute)
	}
	return *act.StartTime
}

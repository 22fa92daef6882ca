package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"github.com/gdg-garage/trip-planner-api/internal/planner"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultActivityType     = "other"
	defaultActivityDuration = 60
)

// Materialize persists plan as a Trip with its days and activities in a single
// transaction. Identities are assigned before the transaction starts so the
// whole graph is staged up front and either commits together or not at all.
func (s *TripService) Materialize(ctx context.Context, ownerID uint, req planner.Request, plan *planner.Plan) (*models.Trip, error) {
	blob, err := plan.Audit()
	if err != nil {
		return nil, apperr.Persistence("failed to encode plan", err)
	}

	trip := &models.Trip{
		UserID:        ownerID,
		Title:         req.Destination + " trip",
		Destination:   req.Destination,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Budget:        req.Budget,
		TravelerCount: req.TravelerCount,
		Preferences:   datatypes.JSONMap(req.Preferences),
		Description:   plan.Summary,
		Status:        models.TripStatusPlanning,
		AIGenerated:   datatypes.JSON(blob),
	}
	trip.ID = s.ids.Next()

	for _, pd := range plan.Days {
		day := s.stageDay(trip.ID, req.StartDate, pd)
		trip.Days = append(trip.Days, day)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(trip).Error; err != nil {
			return fmt.Errorf("create trip: %w", err)
		}
		if len(trip.Days) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).Create(&trip.Days).Error; err != nil {
			return fmt.Errorf("create days: %w", err)
		}
		activities := lo.FlatMap(trip.Days, func(d models.TripDay, _ int) []models.TripActivity {
			return d.Activities
		})
		if len(activities) == 0 {
			return nil
		}
		if err := tx.Create(&activities).Error; err != nil {
			return fmt.Errorf("create activities: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence("failed to save generated trip", err)
	}

	return trip, nil
}

func (s *TripService) stageDay(tripID uint, start time.Time, pd planner.Day) models.TripDay {
	number := lo.FromPtrOr(pd.Day, 1)

	date, err := time.Parse(planner.DateLayout, pd.Date)
	if err != nil {
		date = planner.DayDate(start, number-1)
	}

	day := models.TripDay{
		TripID:      tripID,
		DayNumber:   number,
		Date:        date,
		Title:       lo.CoalesceOrEmpty(pd.Title, fmt.Sprintf("Day %d", number)),
		Description: pd.Description,
	}
	day.ID = s.ids.Next()

	for i, pa := range pd.Activities {
		activity := models.TripActivity{
			DayID:        day.ID,
			ActivityType: lo.CoalesceOrEmpty(normalizeLabel(pa.Type), defaultActivityType),
			Name:         pa.Name,
			Location:     pa.Location,
			Duration:     lo.ToPtr(lo.FromPtrOr(pa.Duration, defaultActivityDuration)),
			Cost:         lo.ToPtr(lo.FromPtrOr(pa.Cost, 0)),
			Description:  pa.Description,
			OrderIndex:   i,
		}
		activity.ID = s.ids.Next()

		start, timed := activityStart(date, pa.Time)
		activity.StartTime = &start
		if timed {
			end := start.Add(time.Duration(*activity.Duration) * time.Minute)
			activity.EndTime = &end
		}

		day.Activities = append(day.Activities, activity)
	}

	return day
}

// activityStart places an "HH:MM" time on date. Missing or malformed times
// fall back to the day's date itself and report false.
func activityStart(date time.Time, hhmm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location()), true
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"github.com/gdg-garage/trip-planner-api/internal/idgen"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"github.com/gdg-garage/trip-planner-api/internal/notifier"
	"github.com/gdg-garage/trip-planner-api/internal/planner"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TripService struct {
	db       *gorm.DB
	ids      *idgen.Generator
	planner  *planner.Planner
	notifier notifier.Notifier
	logger   *zap.Logger
}

// NewTripService wires the trip operations. notifier may be nil.
func NewTripService(db *gorm.DB, ids *idgen.Generator, p *planner.Planner, n notifier.Notifier, logger *zap.Logger) *TripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripService{db: db, ids: ids, planner: p, notifier: n, logger: logger.Named("trips")}
}

type TripInput struct {
	Title         string
	Destination   string
	StartDate     time.Time
	EndDate       time.Time
	Budget        *float64
	TravelerCount int
	Preferences   map[string]any
	Description   string
}

// TripPatch holds the fields of a partial update. Nil means unchanged.
type TripPatch struct {
	Title         *string
	Destination   *string
	StartDate     *time.Time
	EndDate       *time.Time
	Budget        *float64
	TravelerCount *int
	Preferences   map[string]any
	Description   *string
	Status        *string
}

// Generate runs the planning pipeline and persists the resulting itinerary.
// Model and parse failures never surface here; only validation and
// persistence errors do.
func (s *TripService) Generate(ctx context.Context, ownerID uint, req planner.Request) (*models.Trip, error) {
	req.Destination = strings.TrimSpace(req.Destination)
	if req.TravelerCount == 0 {
		req.TravelerCount = 1
	}
	if err := validateTrip(req.Destination+" trip", req.Destination, req.StartDate, req.EndDate, req.Budget, req.TravelerCount, models.TripStatusPlanning); err != nil {
		return nil, err
	}

	result := s.planner.Plan(ctx, req)

	trip, err := s.Materialize(ctx, ownerID, req, result.Plan)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Trip generated",
		zap.Uint("trip_id", trip.ID),
		zap.Uint("user_id", ownerID),
		zap.String("source", string(result.Source)),
		zap.Int("days", len(trip.Days)))

	s.notify(ctx, ownerID, *trip, result.Source)

	return trip, nil
}

func (s *TripService) notify(ctx context.Context, ownerID uint, trip models.Trip, source planner.Source) {
	if s.notifier == nil {
		return
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, ownerID).Error; err != nil {
		s.logger.Warn("Skipping trip notification, owner lookup failed", zap.Uint("user_id", ownerID), zap.Error(err))
		return
	}
	if err := s.notifier.NotifyTripGenerated(user, trip, string(source)); err != nil {
		s.logger.Warn("Trip notification failed", zap.Uint("trip_id", trip.ID), zap.Error(err))
	}
}

func (s *TripService) Create(ctx context.Context, ownerID uint, in TripInput) (*models.Trip, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Destination = strings.TrimSpace(in.Destination)
	if in.TravelerCount == 0 {
		in.TravelerCount = 1
	}
	if err := validateTrip(in.Title, in.Destination, in.StartDate, in.EndDate, in.Budget, in.TravelerCount, models.TripStatusPlanning); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		UserID:        ownerID,
		Title:         in.Title,
		Destination:   in.Destination,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Budget:        in.Budget,
		TravelerCount: in.TravelerCount,
		Preferences:   datatypes.JSONMap(in.Preferences),
		Description:   in.Description,
		Status:        models.TripStatusPlanning,
	}
	trip.ID = s.ids.Next()

	if err := s.db.WithContext(ctx).Create(trip).Error; err != nil {
		return nil, apperr.Persistence("failed to create trip", err)
	}
	return trip, nil
}

// Get loads a trip owned by ownerID with its days and activities in display order.
func (s *TripService) Get(ctx context.Context, ownerID, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := withItinerary(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&trip).Error
	if err != nil {
		return nil, lookupError(err, "trip", id)
	}
	return &trip, nil
}

func (s *TripService) List(ctx context.Context, ownerID uint, page Page) ([]models.Trip, error) {
	page = page.normalize()
	var trips []models.Trip
	err := withItinerary(s.db.WithContext(ctx)).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Skip).Limit(page.Limit).
		Find(&trips).Error
	if err != nil {
		return nil, apperr.Persistence("failed to list trips", err)
	}
	return trips, nil
}

func (s *TripService) Update(ctx context.Context, ownerID, id uint, patch TripPatch) (*models.Trip, error) {
	trip, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		trip.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Destination != nil {
		trip.Destination = strings.TrimSpace(*patch.Destination)
	}
	if patch.StartDate != nil {
		trip.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		trip.EndDate = *patch.EndDate
	}
	if patch.Budget != nil {
		trip.Budget = patch.Budget
	}
	if patch.TravelerCount != nil {
		trip.TravelerCount = *patch.TravelerCount
	}
	if patch.Preferences != nil {
		trip.Preferences = datatypes.JSONMap(patch.Preferences)
	}
	if patch.Description != nil {
		trip.Description = *patch.Description
	}
	if patch.Status != nil {
		trip.Status = normalizeLabel(*patch.Status)
	}

	if err := validateTrip(trip.Title, trip.Destination, trip.StartDate, trip.EndDate, trip.Budget, trip.TravelerCount, trip.Status); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(trip).Omit(clause.Associations).Select(
		"Title", "Destination", "StartDate", "EndDate", "Budget",
		"TravelerCount", "Preferences", "Description", "Status",
	).Updates(trip).Error
	if err != nil {
		return nil, apperr.Persistence("failed to update trip", err)
	}
	return trip, nil
}

// Delete removes a trip together with its days, their activities and the
// expenses recorded against it.
func (s *TripService) Delete(ctx context.Context, ownerID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&trip).Error; err != nil {
			return lookupError(err, "trip", id)
		}

		dayIDs := tx.Model(&models.TripDay{}).Select("id").Where("trip_id = ?", trip.ID)
		if err := tx.Where("day_id IN (?)", dayIDs).Delete(&models.TripActivity{}).Error; err != nil {
			return apperr.Persistence("failed to delete activities", err)
		}
		if err := tx.Where("trip_id = ?", trip.ID).Delete(&models.TripDay{}).Error; err != nil {
			return apperr.Persistence("failed to delete days", err)
		}
		if err := tx.Where("trip_id = ? AND user_id = ?", trip.ID, ownerID).Delete(&models.Expense{}).Error; err != nil {
			return apperr.Persistence("failed to delete expenses", err)
		}
		if err := tx.Delete(&trip).Error; err != nil {
			return apperr.Persistence("failed to delete trip", err)
		}
		return nil
	})
}

func withItinerary(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Days", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_number ASC")
		}).
		Preload("Days.Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
}

func validateTrip(title, destination string, start, end time.Time, budget *float64, travelers int, status string) error {
	switch {
	case title == "":
		return apperr.Validation("title is required")
	case destination == "":
		return apperr.Validation("destination is required")
	case start.IsZero() || end.IsZero():
		return apperr.Validation("start_date and end_date are required")
	case end.Before(start):
		return apperr.Validation("end_date cannot be before start_date")
	case budget != nil && *budget < 0:
		return apperr.Validation("budget cannot be negative")
	case travelers < 1:
		return apperr.Validation("traveler_count must be at least 1")
	case !models.ValidTripStatus(status):
		return apperr.Validation("unknown status %q", status)
	}
	return nil
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"github.com/gdg-garage/trip-planner-api/internal/auth"
	"github.com/gdg-garage/trip-planner-api/internal/calendar"
	"github.com/gdg-garage/trip-planner-api/internal/idgen"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"github.com/gdg-garage/trip-planner-api/internal/planner"
	"github.com/gdg-garage/trip-planner-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type TripHandler struct {
	trips       *service.TripService
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewTripHandler(trips *service.TripService, authHandler *auth.AuthHandler, logger *zap.Logger) *TripHandler {
	return &TripHandler{trips: trips, authHandler: authHandler, logger: logger.Named("trips")}
}

type ActivityResponse struct {
	ID           idgen.ID   `json:"id"`
	DayID        idgen.ID   `json:"day_id"`
	ActivityType string     `json:"activity_type"`
	Name         string     `json:"name"`
	Location     string     `json:"location,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Duration     *int       `json:"duration,omitempty" doc:"Minutes"`
	Cost         *float64   `json:"cost,omitempty"`
	Description  string     `json:"description,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	OrderIndex   int        `json:"order_index"`
}

type DayResponse struct {
	ID          idgen.ID           `json:"id"`
	TripID      idgen.ID           `json:"trip_id"`
	DayNumber   int                `json:"day_number"`
	Date        time.Time          `json:"date"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Activities  []ActivityResponse `json:"activities"`
}

type TripResponse struct {
	ID            idgen.ID       `json:"id"`
	UserID        idgen.ID       `json:"user_id"`
	Title         string         `json:"title"`
	Destination   string         `json:"destination"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	Budget        *float64       `json:"budget,omitempty"`
	TravelerCount int            `json:"traveler_count"`
	Preferences   map[string]any `json:"preferences,omitempty"`
	Description   string         `json:"description,omitempty"`
	Status        string         `json:"status"`
	AIGenerated   *planner.Plan  `json:"ai_generated,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Days          []DayResponse  `json:"days"`
}

func newTripResponse(t *models.Trip) TripResponse {
	resp := TripResponse{
		ID:            idgen.ID(t.ID),
		UserID:        idgen.ID(t.UserID),
		Title:         t.Title,
		Destination:   t.Destination,
		StartDate:     t.StartDate,
		EndDate:       t.EndDate,
		Budget:        t.Budget,
		TravelerCount: t.TravelerCount,
		Preferences:   t.Preferences,
		Description:   t.Description,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Days:          lo.Map(t.Days, func(d models.TripDay, _ int) DayResponse { return newDayResponse(d) }),
	}
	if len(t.AIGenerated) > 0 {
		var plan planner.Plan
		if err := json.Unmarshal(t.AIGenerated, &plan); err == nil {
			resp.AIGenerated = &plan
		}
	}
	return resp
}

func newDayResponse(d models.TripDay) DayResponse {
	return DayResponse{
		ID:          idgen.ID(d.ID),
		TripID:      idgen.ID(d.TripID),
		DayNumber:   d.DayNumber,
		Date:        d.Date,
		Title:       d.Title,
		Description: d.Description,
		Activities: lo.Map(d.Activities, func(a models.TripActivity, _ int) ActivityResponse {
			return ActivityResponse{
				ID:           idgen.ID(a.ID),
				DayID:        idgen.ID(a.DayID),
				ActivityType: a.ActivityType,
				Name:         a.Name,
				Location:     a.Location,
				StartTime:    a.StartTime,
				EndTime:      a.EndTime,
				Duration:     a.Duration,
				Cost:         a.Cost,
				Description:  a.Description,
				Notes:        a.Notes,
				OrderIndex:   a.OrderIndex,
			}
		}),
	}
}

type TripOutput struct {
	Body TripResponse
}

type GenerateTripInput struct {
	auth.AuthInput
	Body struct {
		Destination   string         `json:"destination" minLength:"1" maxLength:"255" doc:"Where to travel"`
		StartDate     time.Time      `json:"start_date" doc:"First day of the trip"`
		EndDate       time.Time      `json:"end_date" doc:"Last day of the trip"`
		Budget        *float64       `json:"budget,omitempty" minimum:"0" doc:"Total budget in CNY"`
		TravelerCount int            `json:"traveler_count,omitempty" minimum:"1" default:"1"`
		Preferences   map[string]any `json:"preferences,omitempty" doc:"interests, travel_style, accommodation_type"`
	}
}

func (h *TripHandler) HandleGenerate(ctx context.Context, input *GenerateTripInput) (*TripOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	trip, err := h.trips.Generate(ctx, userID, planner.Request{
		Destination:   input.Body.Destination,
		StartDate:     input.Body.StartDate,
		EndDate:       input.Body.EndDate,
		Budget:        input.Body.Budget,
		TravelerCount: input.Body.TravelerCount,
		Preferences:   input.Body.Preferences,
	})
	if err != nil {
		return nil, toHTTP(h.logger, "generate trip", err)
	}
	return &TripOutput{Body: newTripResponse(trip)}, nil
}

type CreateTripInput struct {
	auth.AuthInput
	Body struct {
		Title         string         `json:"title" minLength:"1" maxLength:"255"`
		Destination   string         `json:"destination" minLength:"1" maxLength:"255"`
		StartDate     time.Time      `json:"start_date"`
		EndDate       time.Time      `json:"end_date"`
		Budget        *float64       `json:"budget,omitempty" minimum:"0"`
		TravelerCount int            `json:"traveler_count,omitempty" minimum:"1" default:"1"`
		Preferences   map[string]any `json:"preferences,omitempty"`
		Description   string         `json:"description,omitempty"`
	}
}

func (h *TripHandler) HandleCreate(ctx context.Context, input *CreateTripInput) (*TripOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	trip, err := h.trips.Create(ctx, userID, service.TripInput{
		Title:         input.Body.Title,
		Destination:   input.Body.Destination,
		StartDate:     input.Body.StartDate,
		EndDate:       input.Body.EndDate,
		Budget:        input.Body.Budget,
		TravelerCount: input.Body.TravelerCount,
		Preferences:   input.Body.Preferences,
		Description:   input.Body.Description,
	})
	if err != nil {
		return nil, toHTTP(h.logger, "create trip", err)
	}
	return &TripOutput{Body: newTripResponse(trip)}, nil
}

type ListTripsInput struct {
	auth.AuthInput
	Skip  int `query:"skip" minimum:"0" default:"0"`
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"100"`
}

type ListTripsOutput struct {
	Body []TripResponse
}

func (h *TripHandler) HandleList(ctx context.Context, input *ListTripsInput) (*ListTripsOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	trips, err := h.trips.List(ctx, userID, service.Page{Skip: input.Skip, Limit: input.Limit})
	if err != nil {
		return nil, toHTTP(h.logger, "list trips", err)
	}
	return &ListTripsOutput{Body: lo.Map(trips, func(t models.Trip, _ int) TripResponse { return newTripResponse(&t) })}, nil
}

type TripIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *TripHandler) HandleGet(ctx context.Context, input *TripIDInput) (*TripOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	trip, err := h.trips.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, toHTTP(h.logger, "get trip", err)
	}
	return &TripOutput{Body: newTripResponse(trip)}, nil
}

type UpdateTripInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Title         *string        `json:"title,omitempty" minLength:"1" maxLength:"255"`
		Destination   *string        `json:"destination,omitempty" minLength:"1" maxLength:"255"`
		StartDate     *time.Time     `json:"start_date,omitempty"`
		EndDate       *time.Time     `json:"end_date,omitempty"`
		Budget        *float64       `json:"budget,omitempty" minimum:"0"`
		TravelerCount *int           `json:"traveler_count,omitempty" minimum:"1"`
		Preferences   map[string]any `json:"preferences,omitempty"`
		Description   *string        `json:"description,omitempty"`
		Status        *string        `json:"status,omitempty" enum:"planning,ongoing,completed,cancelled"`
	}
}

func (h *TripHandler) HandleUpdate(ctx context.Context, input *UpdateTripInput) (*TripOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	trip, err := h.trips.Update(ctx, userID, input.ID, service.TripPatch{
		Title:         input.Body.Title,
		Destination:   input.Body.Destination,
		StartDate:     input.Body.StartDate,
		EndDate:       input.Body.EndDate,
		Budget:        input.Body.Budget,
		TravelerCount: input.Body.TravelerCount,
		Preferences:   input.Body.Preferences,
		Description:   input.Body.Description,
		Status:        input.Body.Status,
	})
	if err != nil {
		return nil, toHTTP(h.logger, "update trip", err)
	}
	return &TripOutput{Body: newTripResponse(trip)}, nil
}

func (h *TripHandler) HandleDelete(ctx context.Context, input *TripIDInput) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.trips.Delete(ctx, userID, input.ID); err != nil {
		return nil, toHTTP(h.logger, "delete trip", err)
	}
	return nil, nil
}

// HandleCalendar serves the itinerary as an .ics file. It sits behind
// auth.Middleware so calendar clients can use the session cookie.
func (h *TripHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid trip id", http.StatusBadRequest)
		return
	}

	trip, err := h.trips.Get(r.Context(), userID, uint(id))
	if err != nil {
		h.logger.Debug("Calendar export failed", zap.Uint64("trip_id", id), zap.Error(err))
		status := apperr.Status(err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trip.ics"`)
	w.Write([]byte(calendar.Export(trip, time.Now())))
}

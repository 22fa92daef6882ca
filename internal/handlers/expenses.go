package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/trip-planner-api/internal/auth"
	"github.com/gdg-garage/trip-planner-api/internal/budget"
	"github.com/gdg-garage/trip-planner-api/internal/idgen"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"github.com/gdg-garage/trip-planner-api/internal/service"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenses    *service.ExpenseService
	authHandler *auth.AuthHandler
	logger      *zap.Logger
}

func NewExpenseHandler(expenses *service.ExpenseService, authHandler *auth.AuthHandler, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, authHandler: authHandler, logger: logger.Named("expenses")}
}

type ExpenseResponse struct {
	ID            idgen.ID  `json:"id"`
	UserID        idgen.ID  `json:"user_id"`
	TripID        *idgen.ID `json:"trip_id,omitempty"`
	Category      string    `json:"category"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description,omitempty"`
	ExpenseDate   time.Time `json:"expense_date"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:            idgen.ID(e.ID),
		UserID:        idgen.ID(e.UserID),
		TripID:        idgen.Wire(e.TripID),
		Category:      e.Category,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Description:   e.Description,
		ExpenseDate:   e.ExpenseDate,
		PaymentMethod: e.PaymentMethod,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
}

type ExpenseOutput struct {
	Body ExpenseResponse
}

type CreateExpenseInput struct {
	auth.AuthInput
	Body struct {
		TripID        *idgen.ID  `json:"trip_id,omitempty"`
		Category      string     `json:"category" minLength:"1" maxLength:"50" doc:"transport, accommodation, food, attraction, shopping or other"`
		Amount        float64    `json:"amount" minimum:"0"`
		Currency      string     `json:"currency,omitempty" maxLength:"10" default:"CNY"`
		Description   string     `json:"description,omitempty"`
		ExpenseDate   *time.Time `json:"expense_date,omitempty" doc:"Defaults to now"`
		PaymentMethod string     `json:"payment_method,omitempty" maxLength:"50"`
		Notes         string     `json:"notes,omitempty"`
	}
}

func (h *ExpenseHandler) HandleCreate(ctx context.Context, input *CreateExpenseInput) (*ExpenseOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	expense, err := h.expenses.Create(ctx, userID, service.ExpenseInput{
		TripID:        idgen.Stored(input.Body.TripID),
		Category:      input.Body.Category,
		Amount:        input.Body.Amount,
		Currency:      input.Body.Currency,
		Description:   input.Body.Description,
		ExpenseDate:   input.Body.ExpenseDate,
		PaymentMethod: input.Body.PaymentMethod,
		Notes:         input.Body.Notes,
	})
	if err != nil {
		return nil, toHTTP(h.logger, "create expense", err)
	}
	return &ExpenseOutput{Body: newExpenseResponse(expense)}, nil
}

type ListExpensesInput struct {
	auth.AuthInput
	TripID uint `query:"trip_id" doc:"Only expenses of this trip"`
	Skip   int  `query:"skip" minimum:"0" default:"0"`
	Limit  int  `query:"limit" minimum:"1" maximum:"100" default:"100"`
}

type ListExpensesOutput struct {
	Body []ExpenseResponse
}

func (h *ExpenseHandler) HandleList(ctx context.Context, input *ListExpensesInput) (*ListExpensesOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	filter := service.ExpenseFilter{Page: service.Page{Skip: input.Skip, Limit: input.Limit}}
	if input.TripID != 0 {
		filter.TripID = &input.TripID
	}

	expenses, err := h.expenses.List(ctx, userID, filter)
	if err != nil {
		return nil, toHTTP(h.logger, "list expenses", err)
	}
	return &ListExpensesOutput{Body: lo.Map(expenses, func(e models.Expense, _ int) ExpenseResponse { return newExpenseResponse(&e) })}, nil
}

type ExpenseIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *ExpenseHandler) HandleGet(ctx context.Context, input *ExpenseIDInput) (*ExpenseOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	expense, err := h.expenses.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, toHTTP(h.logger, "get expense", err)
	}
	return &ExpenseOutput{Body: newExpenseResponse(expense)}, nil
}

type UpdateExpenseInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		TripID        *idgen.ID  `json:"trip_id,omitempty"`
		ClearTrip     bool       `json:"clear_trip,omitempty" doc:"Detach the expense from its trip"`
		Category      *string    `json:"category,omitempty" minLength:"1" maxLength:"50"`
		Amount        *float64   `json:"amount,omitempty" minimum:"0"`
		Currency      *string    `json:"currency,omitempty" maxLength:"10"`
		Description   *string    `json:"description,omitempty"`
		ExpenseDate   *time.Time `json:"expense_date,omitempty"`
		PaymentMethod *string    `json:"payment_method,omitempty" maxLength:"50"`
		Notes         *string    `json:"notes,omitempty"`
	}
}

func (h *ExpenseHandler) HandleUpdate(ctx context.Context, input *UpdateExpenseInput) (*ExpenseOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	expense, err := h.expenses.Update(ctx, userID, input.ID, service.ExpensePatch{
		TripID:        idgen.Stored(input.Body.TripID),
		ClearTrip:     input.Body.ClearTrip,
		Category:      input.Body.Category,
		Amount:        input.Body.Amount,
		Currency:      input.Body.Currency,
		Description:   input.Body.Description,
		ExpenseDate:   input.Body.ExpenseDate,
		PaymentMethod: input.Body.PaymentMethod,
		Notes:         input.Body.Notes,
	})
	if err != nil {
		return nil, toHTTP(h.logger, "update expense", err)
	}
	return &ExpenseOutput{Body: newExpenseResponse(expense)}, nil
}

func (h *ExpenseHandler) HandleDelete(ctx context.Context, input *ExpenseIDInput) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := h.expenses.Delete(ctx, userID, input.ID); err != nil {
		return nil, toHTTP(h.logger, "delete expense", err)
	}
	return nil, nil
}

// categoryBreakdown documents budget.Breakdown as the JSON object it encodes to.
type categoryBreakdown struct {
	budget.Breakdown
}

func (categoryBreakdown) Schema(r huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:                 huma.TypeObject,
		Description:          "Spent amount per category, in order of first expense",
		AdditionalProperties: &huma.Schema{Type: huma.TypeNumber},
	}
}

type BudgetAnalysisResponse struct {
	TotalBudget        float64           `json:"total_budget"`
	TotalSpent         float64           `json:"total_spent"`
	Remaining          float64           `json:"remaining"`
	SpendingPercentage float64           `json:"spending_percentage"`
	CategoryBreakdown  categoryBreakdown `json:"category_breakdown"`
	Status             budget.Status     `json:"status" enum:"on_track,warning,over_budget"`
}

type AnalyzeBudgetInput struct {
	auth.AuthInput
	TripID uint `path:"trip_id"`
}

type AnalyzeBudgetOutput struct {
	Body BudgetAnalysisResponse
}

func (h *ExpenseHandler) HandleAnalyze(ctx context.Context, input *AnalyzeBudgetInput) (*AnalyzeBudgetOutput, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	a, err := h.expenses.AnalyzeBudget(ctx, userID, input.TripID)
	if err != nil {
		return nil, toHTTP(h.logger, "analyze budget", err)
	}
	return &AnalyzeBudgetOutput{Body: BudgetAnalysisResponse{
		TotalBudget:        a.TotalBudget,
		TotalSpent:         a.TotalSpent,
		Remaining:          a.Remaining,
		SpendingPercentage: a.SpendingPercentage,
		CategoryBreakdown:  categoryBreakdown{a.CategoryBreakdown},
		Status:             a.Status,
	}}, nil
}

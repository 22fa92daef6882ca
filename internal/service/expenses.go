package service

import (
	"context"
	"strings"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"github.com/gdg-garage/trip-planner-api/internal/budget"
	"github.com/gdg-garage/trip-planner-api/internal/idgen"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExpenseService struct {
	db     *gorm.DB
	ids    *idgen.Generator
	logger *zap.Logger
	now    func() time.Time
}

func NewExpenseService(db *gorm.DB, ids *idgen.Generator, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{db: db, ids: ids, logger: logger.Named("expenses"), now: time.Now}
}

type ExpenseInput struct {
	TripID        *uint
	Category      string
	Amount        float64
	Currency      string
	Description   string
	ExpenseDate   *time.Time
	PaymentMethod string
	Notes         string
}

type ExpensePatch struct {
	TripID        *uint
	ClearTrip     bool // detach from the trip, not combinable with TripID
	Category      *string
	Amount        *float64
	Currency      *string
	Description   *string
	ExpenseDate   *time.Time
	PaymentMethod *string
	Notes         *string
}

type ExpenseFilter struct {
	TripID *uint
	Page
}

func (s *ExpenseService) Create(ctx context.Context, ownerID uint, in ExpenseInput) (*models.Expense, error) {
	expense := &models.Expense{
		UserID:        ownerID,
		TripID:        in.TripID,
		Category:      normalizeLabel(in.Category),
		Amount:        in.Amount,
		Currency:      lo.CoalesceOrEmpty(strings.ToUpper(strings.TrimSpace(in.Currency)), models.DefaultCurrency),
		Description:   in.Description,
		ExpenseDate:   lo.FromPtrOr(in.ExpenseDate, s.now()),
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	if err := s.checkTrip(ctx, ownerID, expense.TripID); err != nil {
		return nil, err
	}

	expense.ID = s.ids.Next()
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, apperr.Persistence("failed to create expense", err)
	}
	return expense, nil
}

// List returns the owner's expenses, newest expense date first.
func (s *ExpenseService) List(ctx context.Context, ownerID uint, filter ExpenseFilter) ([]models.Expense, error) {
	page := filter.Page.normalize()
	q := s.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if filter.TripID != nil {
		q = q.Where("trip_id = ?", *filter.TripID)
	}

	var expenses []models.Expense
	err := q.Order("expense_date DESC").Order("id DESC").
		Offset(page.Skip).Limit(page.Limit).
		Find(&expenses).Error
	if err != nil {
		return nil, apperr.Persistence("failed to list expenses", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Get(ctx context.Context, ownerID, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&expense).Error; err != nil {
		return nil, lookupError(err, "expense", id)
	}
	return &expense, nil
}

func (s *ExpenseService) Update(ctx context.Context, ownerID, id uint, patch ExpensePatch) (*models.Expense, error) {
	expense, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.ClearTrip && patch.TripID != nil {
		return nil, apperr.Validation("trip_id and clear_trip are mutually exclusive")
	}
	if patch.TripID != nil {
		expense.TripID = patch.TripID
	}
	if patch.ClearTrip {
		expense.TripID = nil
	}
	if patch.Category != nil {
		expense.Category = normalizeLabel(*patch.Category)
	}
	if patch.Amount != nil {
		expense.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		expense.Currency = lo.CoalesceOrEmpty(strings.ToUpper(strings.TrimSpace(*patch.Currency)), models.DefaultCurrency)
	}
	if patch.Description != nil {
		expense.Description = *patch.Description
	}
	if patch.ExpenseDate != nil {
		expense.ExpenseDate = *patch.ExpenseDate
	}
	if patch.PaymentMethod != nil {
		expense.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Notes != nil {
		expense.Notes = *patch.Notes
	}

	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	if patch.TripID != nil {
		if err := s.checkTrip(ctx, ownerID, expense.TripID); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Model(expense).Select(
		"TripID", "Category", "Amount", "Currency", "Description",
		"ExpenseDate", "PaymentMethod", "Notes",
	).Updates(expense).Error
	if err != nil {
		return nil, apperr.Persistence("failed to update expense", err)
	}
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, ownerID, id uint) error {
	expense, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(expense).Error; err != nil {
		return apperr.Persistence("failed to delete expense", err)
	}
	return nil
}

// AnalyzeBudget compares the owner's expenses for a trip against its budget.
func (s *ExpenseService) AnalyzeBudget(ctx context.Context, ownerID, tripID uint) (*budget.Analysis, error) {
	var trip models.Trip
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", tripID, ownerID).First(&trip).Error; err != nil {
		return nil, lookupError(err, "trip", tripID)
	}

	var expenses []models.Expense
	err := s.db.WithContext(ctx).
		Where("trip_id = ? AND user_id = ?", tripID, ownerID).
		Order("expense_date ASC").Order("id ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, apperr.Persistence("failed to load expenses", err)
	}

	entries := lo.Map(expenses, func(e models.Expense, _ int) budget.Entry {
		return budget.Entry{Category: e.Category, Amount: e.Amount}
	})
	analysis := budget.Analyze(entries, lo.FromPtrOr(trip.Budget, 0))
	return &analysis, nil
}

func (s *ExpenseService) checkTrip(ctx context.Context, ownerID uint, tripID *uint) error {
	if tripID == nil {
		return nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Trip{}).
		Where("id = ? AND user_id = ?", *tripID, ownerID).
		Count(&count).Error
	if err != nil {
		return apperr.Persistence("failed to check trip", err)
	}
	if count == 0 {
		return apperr.NotFound("trip %d not found", *tripID)
	}
	return nil
}

func validateExpense(e *models.Expense) error {
	switch {
	case e.Category == "":
		return apperr.Validation("category is required")
	case e.Amount < 0:
		return apperr.Validation("amount cannot be negative")
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdg-garage/trip-planner-api/internal/apperr"
	"github.com/gdg-garage/trip-planner-api/internal/budget"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"github.com/samber/lo"
)

func TestExpenseCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	trips := newTripService(t, db, nil, nil)
	svc := NewExpenseService(db, newTestIDs(t), nil)
	fixedNow := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixedNow }

	trip, err := trips.Create(ctx, 1, TripInput{Title: "t", Destination: "d", StartDate: tripStart, EndDate: tripStart})
	if err != nil {
		t.Fatalf("Create trip returned error: %v", err)
	}

	expense, err := svc.Create(ctx, 1, ExpenseInput{TripID: &trip.ID, Category: " Food ", Amount: 12.5})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	t.Run("defaults", func(t *testing.T) {
		if expense.Category != "food" {
			t.Errorf("expected normalized category, got %q", expense.Category)
		}
		if expense.Currency != models.DefaultCurrency {
			t.Errorf("expected default currency, got %q", expense.Currency)
		}
		if !expense.ExpenseDate.Equal(fixedNow) {
			t.Errorf("expected expense date to default to now, got %v", expense.ExpenseDate)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := svc.Create(ctx, 1, ExpenseInput{Category: "food", Amount: -1}); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error for amount, got %v", err)
		}
		if _, err := svc.Create(ctx, 1, ExpenseInput{Category: "  ", Amount: 1}); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error for category, got %v", err)
		}
		if _, err := svc.Create(ctx, 2, ExpenseInput{TripID: &trip.ID, Category: "food", Amount: 1}); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found for foreign trip, got %v", err)
		}
	})

	t.Run("unknown category accepted", func(t *testing.T) {
		e, err := svc.Create(ctx, 1, ExpenseInput{Category: "Souvenirs", Amount: 3, Currency: "eur"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if e.Category != "souvenirs" || e.Currency != "EUR" {
			t.Errorf("unexpected expense %+v", e)
		}
	})

	t.Run("get and update scoped to owner", func(t *testing.T) {
		if _, err := svc.Get(ctx, 2, expense.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
		updated, err := svc.Update(ctx, 1, expense.ID, ExpensePatch{Amount: lo.ToPtr(20.0), Notes: lo.ToPtr("taxi")})
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if updated.Amount != 20 || updated.Notes != "taxi" || updated.Category != "food" {
			t.Errorf("unexpected update result %+v", updated)
		}
		reloaded, _ := svc.Get(ctx, 1, expense.ID)
		if reloaded.Amount != 20 {
			t.Errorf("update not persisted, amount %v", reloaded.Amount)
		}
		if _, err := svc.Update(ctx, 1, expense.ID, ExpensePatch{Amount: lo.ToPtr(-5.0)}); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.Delete(ctx, 2, expense.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
		if err := svc.Delete(ctx, 1, expense.ID); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if _, err := svc.Get(ctx, 1, expense.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected deleted expense to be gone, got %v", err)
		}
	})
}

func TestListExpenses(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	trips := newTripService(t, db, nil, nil)
	svc := NewExpenseService(db, newTestIDs(t), nil)

	trip, _ := trips.Create(ctx, 1, TripInput{Title: "t", Destination: "d", StartDate: tripStart, EndDate: tripStart})
	for i := range 4 {
		date := tripStart.AddDate(0, 0, i)
		in := ExpenseInput{Category: "food", Amount: float64(i), ExpenseDate: &date}
		if i%2 == 0 {
			in.TripID = &trip.ID
		}
		if _, err := svc.Create(ctx, 1, in); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}
	svc.Create(ctx, 2, ExpenseInput{Category: "food", Amount: 99})

	all, err := svc.List(ctx, 1, ExpenseFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	amounts := lo.Map(all, func(e models.Expense, _ int) float64 { return e.Amount })
	if len(amounts) != 4 || amounts[0] != 3 || amounts[3] != 0 {
		t.Errorf("expected newest expense date first, got %v", amounts)
	}

	forTrip, _ := svc.List(ctx, 1, ExpenseFilter{TripID: &trip.ID})
	if len(forTrip) != 2 || forTrip[0].Amount != 2 {
		t.Errorf("unexpected trip filter result %v", lo.Map(forTrip, func(e models.Expense, _ int) float64 { return e.Amount }))
	}

	paged, _ := svc.List(ctx, 1, ExpenseFilter{Page: Page{Skip: 1, Limit: 2}})
	if len(paged) != 2 || paged[0].Amount != 2 || paged[1].Amount != 1 {
		t.Errorf("unexpected page %v", lo.Map(paged, func(e models.Expense, _ int) float64 { return e.Amount }))
	}
}

func TestAnalyzeBudget(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	trips := newTripService(t, db, nil, nil)
	svc := NewExpenseService(db, newTestIDs(t), nil)

	trip, _ := trips.Create(ctx, 1, TripInput{Title: "t", Destination: "d", StartDate: tripStart, EndDate: tripStart, Budget: lo.ToPtr(1000.0)})
	noBudget, _ := trips.Create(ctx, 1, TripInput{Title: "n", Destination: "d", StartDate: tripStart, EndDate: tripStart})

	svc.Create(ctx, 1, ExpenseInput{TripID: &trip.ID, Category: "food", Amount: 700})
	svc.Create(ctx, 1, ExpenseInput{TripID: &trip.ID, Category: "food", Amount: 500})
	svc.Create(ctx, 1, ExpenseInput{Category: "food", Amount: 1})
	svc.Create(ctx, 1, ExpenseInput{TripID: &noBudget.ID, Category: "transport", Amount: 10})

	t.Run("over budget", func(t *testing.T) {
		a, err := svc.AnalyzeBudget(ctx, 1, trip.ID)
		if err != nil {
			t.Fatalf("AnalyzeBudget returned error: %v", err)
		}
		if a.Status != budget.StatusOverBudget || a.Remaining != -200 || a.TotalSpent != 1200 {
			t.Errorf("unexpected analysis %+v", a)
		}
		if food, _ := a.CategoryBreakdown.Amount("food"); food != 1200 || len(a.CategoryBreakdown) != 1 {
			t.Errorf("unexpected breakdown %+v", a.CategoryBreakdown)
		}
	})

	t.Run("no budget", func(t *testing.T) {
		a, err := svc.AnalyzeBudget(ctx, 1, noBudget.ID)
		if err != nil {
			t.Fatalf("AnalyzeBudget returned error: %v", err)
		}
		if a.SpendingPercentage != 0 || a.Status != budget.StatusOverBudget {
			t.Errorf("unexpected analysis %+v", a)
		}
	})

	t.Run("not owned", func(t *testing.T) {
		if _, err := svc.AnalyzeBudget(ctx, 2, trip.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestUpdateExpenseClearsTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	trips := newTripService(t, db, nil, nil)
	svc := NewExpenseService(db, newTestIDs(t), nil)

	trip, _ := trips.Create(ctx, 1, TripInput{Title: "t", Destination: "d", StartDate: tripStart, EndDate: tripStart})
	expense, err := svc.Create(ctx, 1, ExpenseInput{TripID: &trip.ID, Category: "food", Amount: 10})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Update(ctx, 1, expense.ID, ExpensePatch{TripID: &trip.ID, ClearTrip: true}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for conflicting patch, got %v", err)
	}

	updated, err := svc.Update(ctx, 1, expense.ID, ExpensePatch{ClearTrip: true})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.TripID != nil {
		t.Errorf("expected trip reference cleared, got %v", *updated.TripID)
	}

	reloaded, err := svc.Get(ctx, 1, expense.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if reloaded.TripID != nil {
		t.Errorf("cleared trip reference not persisted, got %v", *reloaded.TripID)
	}
	if forTrip, _ := svc.List(ctx, 1, ExpenseFilter{TripID: &trip.ID}); len(forTrip) != 0 {
		t.Errorf("expected no expenses left on the trip, got %d", len(forTrip))
	}
}

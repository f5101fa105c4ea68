package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dime/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTestUser(t *testing.T, repo *Repository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Email:             email,
		Name:              "Test User",
		PasswordHash:      "$2a$10$fakehashfakehashfakehash",
		PreferredCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return u
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	createTestUser(t, repo, "dup@example.com")

	_, err := repo.CreateUser(context.Background(), core.User{
		Email:             "dup@example.com",
		Name:              "Other",
		PasswordHash:      "hash",
		PreferredCurrency: "EUR",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("CreateUser() error = %v, want ErrEmailTaken", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	repo := newTestRepository(t)
	created := createTestUser(t, repo, "lookup@example.com")

	got, err := repo.GetUserByEmail(context.Background(), "lookup@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if got.ID != created.ID || got.PreferredCurrency != "USD" {
		t.Fatalf("GetUserByEmail() = %+v, want id %d", got, created.ID)
	}

	if _, err := repo.GetUserByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "tx@example.com")
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:   user.ID,
		Title:    "Groceries",
		Amount:   core.Money{Cents: 4250},
		Currency: "USD",
		Kind:     core.Expense,
		Date:     core.NewDate(2026, 8, 15),
		Priority: core.PriorityMedium,
		Notes:    "weekly shop",
	})
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateTransaction() returned zero ID")
	}

	got, err := repo.GetTransaction(ctx, user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() failed: %v", err)
	}
	if got.Title != "Groceries" || got.Amount.Cents != 4250 || got.Date.String() != "2026-08-15" {
		t.Fatalf("GetTransaction() = %+v", got)
	}

	got.Title = "Groceries and household"
	got.Amount = core.Money{Cents: 5000}
	updated, err := repo.UpdateTransaction(ctx, got)
	if err != nil {
		t.Fatalf("UpdateTransaction() failed: %v", err)
	}
	if updated.Title != "Groceries and household" || updated.Amount.Cents != 5000 {
		t.Fatalf("UpdateTransaction() = %+v", updated)
	}

	if err := repo.DeleteTransaction(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("DeleteTransaction() failed: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, user.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTransaction() after delete = %v, want ErrNotFound", err)
	}
}

func TestTransactionOwnershipScoping(t *testing.T) {
	repo := newTestRepository(t)
	owner := createTestUser(t, repo, "owner@example.com")
	intruder := createTestUser(t, repo, "intruder@example.com")
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:   owner.ID,
		Title:    "Salary",
		Amount:   core.Money{Cents: 300000},
		Currency: "USD",
		Kind:     core.Income,
		Date:     core.NewDate(2026, 8, 1),
		Priority: core.PriorityLow,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}

	if _, err := repo.GetTransaction(ctx, intruder.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign GetTransaction() = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, intruder.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign DeleteTransaction() = %v, want ErrNotFound", err)
	}

	created.UserID = intruder.ID
	if _, err := repo.UpdateTransaction(ctx, created); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign UpdateTransaction() = %v, want ErrNotFound", err)
	}

	// the row is untouched after the foreign attempts
	if _, err := repo.GetTransaction(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("owner GetTransaction() failed: %v", err)
	}

	list, err := repo.ListTransactions(ctx, intruder.ID, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("foreign ListTransactions() returned %d rows, want 0", len(list))
	}
}

func TestListTransactionsFilter(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "filter@example.com")
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		UserID: user.ID, Name: "Food", Kind: core.Expense, Color: "#22c55e",
	})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}

	seed := []core.Transaction{
		{Title: "Lunch", Kind: core.Expense, CategoryID: &cat.ID, Date: core.NewDate(2026, 8, 10), Amount: core.Money{Cents: 1200}},
		{Title: "Dinner", Kind: core.Expense, CategoryID: &cat.ID, Date: core.NewDate(2026, 8, 20), Amount: core.Money{Cents: 3000}},
		{Title: "Salary", Kind: core.Income, Date: core.NewDate(2026, 8, 1), Amount: core.Money{Cents: 300000}},
		{Title: "Old rent", Kind: core.Expense, Date: core.NewDate(2026, 7, 1), Amount: core.Money{Cents: 90000}},
	}
	for _, tx := range seed {
		tx.UserID = user.ID
		tx.Currency = "USD"
		tx.Priority = core.PriorityMedium
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction(%s) failed: %v", tx.Title, err)
		}
	}

	byKind, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Kind: core.Income})
	if err != nil {
		t.Fatalf("ListTransactions(kind) failed: %v", err)
	}
	if len(byKind) != 1 || byKind[0].Title != "Salary" {
		t.Fatalf("kind filter = %+v, want only Salary", byKind)
	}

	byCategory, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("ListTransactions(category) failed: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("category filter returned %d rows, want 2", len(byCategory))
	}

	byRange, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{
		From: core.NewDate(2026, 8, 1),
		To:   core.NewDate(2026, 8, 15),
	})
	if err != nil {
		t.Fatalf("ListTransactions(range) failed: %v", err)
	}
	if len(byRange) != 2 {
		t.Fatalf("date range filter returned %d rows, want 2", len(byRange))
	}

	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: user.ID, Title: "Car repair", Kind: core.Expense, Currency: "USD",
		Priority: core.PriorityHigh, Date: core.NewDate(2026, 7, 15), Amount: core.Money{Cents: 45000},
	}); err != nil {
		t.Fatalf("CreateTransaction(Car repair) failed: %v", err)
	}

	byPriority, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Priority: core.PriorityHigh})
	if err != nil {
		t.Fatalf("ListTransactions(priority) failed: %v", err)
	}
	if len(byPriority) != 1 || byPriority[0].Title != "Car repair" {
		t.Fatalf("priority filter = %+v, want only Car repair", byPriority)
	}

	bySearch, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Search: "lun"})
	if err != nil {
		t.Fatalf("ListTransactions(search) failed: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Title != "Lunch" {
		t.Fatalf("search filter = %+v, want only Lunch", bySearch)
	}

	escaped, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("ListTransactions(escaped search) failed: %v", err)
	}
	if len(escaped) != 0 {
		t.Fatalf("escaped search matched %d rows, want 0 (wildcards are literal)", len(escaped))
	}

	limited, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListTransactions(limit) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit filter returned %d rows, want 2", len(limited))
	}
	// newest first
	if limited[0].Title != "Dinner" {
		t.Fatalf("first row = %s, want Dinner", limited[0].Title)
	}
}

// Rows sharing a date come back in the order they were inserted.
func TestListTransactionsSameDateOrder(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "ties@example.com")
	ctx := context.Background()

	day := core.NewDate(2026, 8, 15)
	for _, title := range []string{"Coffee", "Bus ticket", "Groceries"} {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: user.ID, Title: title, Amount: core.Money{Cents: 500},
			Currency: "USD", Kind: core.Expense, Date: day, Priority: core.PriorityLow,
		})
		if err != nil {
			t.Fatalf("CreateTransaction(%s) failed: %v", title, err)
		}
	}

	got, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() failed: %v", err)
	}
	want := []string{"Coffee", "Bus ticket", "Groceries"}
	if len(got) != len(want) {
		t.Fatalf("ListTransactions() returned %d rows, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("row %d = %s, want %s", i, got[i].Title, title)
		}
	}
}

func TestDeleteCategoryNullsReferences(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "cat@example.com")
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		UserID: user.ID, Name: "Subscriptions", Kind: core.Expense, Color: "#a855f7",
	})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: user.ID, CategoryID: &cat.ID, Title: "Netflix",
		Amount: core.Money{Cents: 1500}, Currency: "USD", Kind: core.Expense,
		Date: core.NewDate(2026, 8, 5), Priority: core.PriorityLow,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}

	payment, err := repo.CreateRecurringPayment(ctx, core.RecurringPayment{
		UserID: user.ID, CategoryID: &cat.ID, Title: "Netflix",
		Amount: core.Money{Cents: 1500}, Currency: "USD", Frequency: core.Monthly,
		StartDate:       core.NewDate(2026, 1, 5),
		NextPaymentDate: core.NewDate(2026, 9, 5),
		Status:          core.PaymentActive,
	})
	if err != nil {
		t.Fatalf("CreateRecurringPayment() failed: %v", err)
	}

	if err := repo.DeleteCategory(ctx, user.ID, cat.ID); err != nil {
		t.Fatalf("DeleteCategory() failed: %v", err)
	}

	gotTx, err := repo.GetTransaction(ctx, user.ID, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction() failed: %v", err)
	}
	if gotTx.CategoryID != nil {
		t.Fatalf("transaction category after delete = %v, want nil", *gotTx.CategoryID)
	}

	gotPayment, err := repo.GetRecurringPayment(ctx, user.ID, payment.ID)
	if err != nil {
		t.Fatalf("GetRecurringPayment() failed: %v", err)
	}
	if gotPayment.CategoryID != nil {
		t.Fatalf("payment category after delete = %v, want nil", *gotPayment.CategoryID)
	}
}

// Foreign-key enforcement has to hold on every pooled connection, not just
// the one that opened the database. Holding one connection forces the delete
// onto a second one.
func TestDeleteCategoryNullsReferencesOnPooledConnection(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "pool@example.com")
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{
		UserID: user.ID, Name: "Streaming", Kind: core.Expense, Color: "#0ea5e9",
	})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: user.ID, CategoryID: &cat.ID, Title: "Spotify",
		Amount: core.Money{Cents: 999}, Currency: "USD", Kind: core.Expense,
		Date: core.NewDate(2026, 8, 1), Priority: core.PriorityLow,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}

	held, err := repo.DB().Conn(ctx)
	if err != nil {
		t.Fatalf("Conn() failed: %v", err)
	}
	defer held.Close()

	if err := repo.DeleteCategory(ctx, user.ID, cat.ID); err != nil {
		t.Fatalf("DeleteCategory() failed: %v", err)
	}

	got, err := repo.GetTransaction(ctx, user.ID, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction() failed: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("transaction category after delete = %v, want nil", *got.CategoryID)
	}
}

func TestDuplicateCategoryName(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "dupcat@example.com")
	other := createTestUser(t, repo, "othercat@example.com")
	ctx := context.Background()

	if _, err := repo.CreateCategory(ctx, core.Category{UserID: user.ID, Name: "Food", Kind: core.Expense, Color: "#111111"}); err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, core.Category{UserID: user.ID, Name: "Food", Kind: core.Income, Color: "#222222"}); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("duplicate CreateCategory() = %v, want ErrDuplicateCategory", err)
	}
	// uniqueness is per user
	if _, err := repo.CreateCategory(ctx, core.Category{UserID: other.ID, Name: "Food", Kind: core.Expense, Color: "#333333"}); err != nil {
		t.Fatalf("other user CreateCategory() failed: %v", err)
	}
}

func TestListDuePayments(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "due@example.com")
	ctx := context.Background()

	seed := []core.RecurringPayment{
		{Title: "Due yesterday", NextPaymentDate: core.NewDate(2026, 8, 29), Status: core.PaymentActive},
		{Title: "Due today", NextPaymentDate: core.NewDate(2026, 8, 30), Status: core.PaymentActive},
		{Title: "Due tomorrow", NextPaymentDate: core.NewDate(2026, 8, 31), Status: core.PaymentActive},
		{Title: "Paused", NextPaymentDate: core.NewDate(2026, 8, 29), Status: core.PaymentPaused},
	}
	for _, p := range seed {
		p.UserID = user.ID
		p.Amount = core.Money{Cents: 1000}
		p.Currency = "USD"
		p.Frequency = core.Monthly
		p.StartDate = core.NewDate(2026, 1, 1)
		if _, err := repo.CreateRecurringPayment(ctx, p); err != nil {
			t.Fatalf("CreateRecurringPayment(%s) failed: %v", p.Title, err)
		}
	}

	due, err := repo.ListDuePayments(ctx, core.NewDate(2026, 8, 30))
	if err != nil {
		t.Fatalf("ListDuePayments() failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("ListDuePayments() returned %d rows, want 2: %+v", len(due), due)
	}
	if due[0].Title != "Due yesterday" || due[1].Title != "Due today" {
		t.Fatalf("ListDuePayments() order = [%s %s]", due[0].Title, due[1].Title)
	}
}

func TestGoalCRUD(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "goal@example.com")
	ctx := context.Background()

	created, err := repo.CreateGoal(ctx, core.FinancialGoal{
		UserID:       user.ID,
		Title:        "Emergency fund",
		TargetAmount: core.Money{Cents: 500000},
		TargetDate:   core.NewDate(2027, 1, 1),
		Status:       core.GoalActive,
		Priority:     core.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("CreateGoal() failed: %v", err)
	}

	created.CurrentAmount = core.Money{Cents: 100000}
	updated, err := repo.UpdateGoal(ctx, created)
	if err != nil {
		t.Fatalf("UpdateGoal() failed: %v", err)
	}
	if updated.CurrentAmount.Cents != 100000 {
		t.Fatalf("UpdateGoal() current = %d, want 100000", updated.CurrentAmount.Cents)
	}

	list, err := repo.ListGoals(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListGoals() failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("ListGoals() = %+v", list)
	}

	if err := repo.DeleteGoal(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("DeleteGoal() failed: %v", err)
	}
	if _, err := repo.GetGoal(ctx, user.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetGoal() after delete = %v, want ErrNotFound", err)
	}
}

func TestRecurringPaymentEndDateRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	user := createTestUser(t, repo, "enddate@example.com")
	ctx := context.Background()

	open, err := repo.CreateRecurringPayment(ctx, core.RecurringPayment{
		UserID: user.ID, Title: "Open ended",
		Amount: core.Money{Cents: 1000}, Currency: "USD", Frequency: core.Monthly,
		StartDate:       core.NewDate(2026, 1, 1),
		NextPaymentDate: core.NewDate(2026, 9, 1),
		Status:          core.PaymentActive,
	})
	if err != nil {
		t.Fatalf("CreateRecurringPayment() failed: %v", err)
	}
	if !open.EndDate.IsZero() {
		t.Fatalf("open-ended payment end date = %v, want zero", open.EndDate)
	}

	bounded, err := repo.CreateRecurringPayment(ctx, core.RecurringPayment{
		UserID: user.ID, Title: "Bounded",
		Amount: core.Money{Cents: 1000}, Currency: "USD", Frequency: core.Monthly,
		StartDate:       core.NewDate(2026, 1, 1),
		NextPaymentDate: core.NewDate(2026, 9, 1),
		EndDate:         core.NewDate(2026, 12, 31),
		Status:          core.PaymentActive,
	})
	if err != nil {
		t.Fatalf("CreateRecurringPayment() failed: %v", err)
	}
	if bounded.EndDate.String() != "2026-12-31" {
		t.Fatalf("bounded payment end date = %v, want 2026-12-31", bounded.EndDate)
	}
}

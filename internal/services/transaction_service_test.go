package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"dime/internal/amqp"
	"dime/internal/core"
	"dime/internal/log"
	"dime/internal/storage"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

type fakeTransactionStore struct {
	created   []core.Transaction
	updated   []core.Transaction
	deleted   []int64
	createErr error
	deleteErr error
	nextID    int64
}

func (f *fakeTransactionStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	f.nextID++
	t.ID = f.nextID
	f.created = append(f.created, t)
	return t, nil
}

func (f *fakeTransactionStore) GetTransaction(_ context.Context, _, _ int64) (core.Transaction, error) {
	return core.Transaction{}, storage.ErrNotFound
}

func (f *fakeTransactionStore) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	f.updated = append(f.updated, t)
	return t, nil
}

func (f *fakeTransactionStore) DeleteTransaction(_ context.Context, _, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTransactionStore) ListTransactions(_ context.Context, _ int64, _ storage.TransactionFilter) ([]core.Transaction, error) {
	return nil, nil
}

type fakePublisher struct {
	messages []*amqp.ExportMessage
	err      error
}

func (f *fakePublisher) PublishExport(_ context.Context, msg *amqp.ExportMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type fakeInvalidator struct {
	users []int64
}

func (f *fakeInvalidator) Invalidate(userID int64) {
	f.users = append(f.users, userID)
}

func validServiceTransaction() core.Transaction {
	return core.Transaction{
		UserID:   7,
		Title:    "Coffee",
		Amount:   core.Money{Cents: 450},
		Currency: "USD",
		Kind:     core.Expense,
		Date:     core.NewDate(2026, 8, 30),
		Priority: core.PriorityLow,
	}
}

func TestTransactionService_CreatePublishesSync(t *testing.T) {
	store := &fakeTransactionStore{}
	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	svc := NewTransactionService(store, pub, inv, testLogger())

	created, err := svc.Create(context.Background(), validServiceTransaction())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected created transaction to carry an ID")
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Type != amqp.TypeSync {
		t.Errorf("message type = %q, want %q", msg.Type, amqp.TypeSync)
	}
	if msg.ID != created.ID || msg.UserID != created.UserID {
		t.Errorf("message ids = (%d, %d), want (%d, %d)", msg.ID, msg.UserID, created.ID, created.UserID)
	}
	if len(inv.users) != 1 || inv.users[0] != 7 {
		t.Errorf("expected cache invalidation for user 7, got %v", inv.users)
	}
}

func TestTransactionService_CreateRejectsInvalid(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, nil, nil, testLogger())

	bad := validServiceTransaction()
	bad.Title = ""
	if _, err := svc.Create(context.Background(), bad); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if len(store.created) != 0 {
		t.Error("invalid transaction must not reach storage")
	}
}

func TestTransactionService_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := &fakeTransactionStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub, nil, testLogger())

	if _, err := svc.Create(context.Background(), validServiceTransaction()); err != nil {
		t.Fatalf("Create must succeed when publish fails: %v", err)
	}
	if len(store.created) != 1 {
		t.Errorf("expected 1 stored transaction, got %d", len(store.created))
	}
}

func TestTransactionService_NilPublisherAndInvalidator(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, nil, nil, testLogger())

	if _, err := svc.Create(context.Background(), validServiceTransaction()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), 7, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestTransactionService_DeletePublishesDelete(t *testing.T) {
	store := &fakeTransactionStore{}
	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	svc := NewTransactionService(store, pub, inv, testLogger())

	if err := svc.Delete(context.Background(), 7, 42); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(pub.messages) != 1 || pub.messages[0].Type != amqp.TypeDelete || pub.messages[0].ID != 42 {
		t.Fatalf("expected one delete message for id 42, got %+v", pub.messages)
	}
	if len(inv.users) != 1 {
		t.Errorf("expected cache invalidation after delete, got %v", inv.users)
	}
}

func TestTransactionService_DeleteNotFoundSkipsPublish(t *testing.T) {
	store := &fakeTransactionStore{deleteErr: storage.ErrNotFound}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil, testLogger())

	if err := svc.Delete(context.Background(), 7, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.messages) != 0 {
		t.Error("failed delete must not publish")
	}
}

func TestTransactionService_UpdatePublishesSync(t *testing.T) {
	store := &fakeTransactionStore{}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub, nil, testLogger())

	tx := validServiceTransaction()
	tx.ID = 9
	if _, err := svc.Update(context.Background(), tx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(pub.messages) != 1 || pub.messages[0].Type != amqp.TypeSync || pub.messages[0].ID != 9 {
		t.Fatalf("expected one sync message for id 9, got %+v", pub.messages)
	}
}

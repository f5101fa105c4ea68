// Package services provides business logic and orchestration between
// storage, the message broker, and the dashboard aggregation.
package services

import (
	"context"
	"fmt"

	"dime/internal/amqp"
	"dime/internal/core"
	"dime/internal/log"
	"dime/internal/storage"
)

// TransactionStore is the persistence surface the transaction service needs.
// *storage.Repository satisfies it.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	ListTransactions(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error)
}

// ExportPublisher publishes spreadsheet export messages. *amqp.Client
// satisfies it.
type ExportPublisher interface {
	PublishExport(ctx context.Context, msg *amqp.ExportMessage) error
}

// DashboardInvalidator drops a user's cached dashboard after a write.
type DashboardInvalidator interface {
	Invalidate(userID int64)
}

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// The publisher and invalidator are optional; a nil value disables that
// concern without failing requests.
type TransactionService struct {
	store       TransactionStore
	publisher   ExportPublisher
	invalidator DashboardInvalidator
	logger      *log.Logger
}

func NewTransactionService(store TransactionStore, publisher ExportPublisher, invalidator DashboardInvalidator, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentTransaction),
	}
}

// Create saves a transaction locally, then publishes an async sync message.
// Publish failures are logged, not returned, because the local save already
// succeeded.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.invalidate(created.UserID)
	s.publish(ctx, amqp.NewSyncMessage(created.ID, created.UserID))
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, filter)
}

// Update replaces a transaction's mutable fields and re-publishes a sync
// message so the exported copy converges on the new values.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.invalidate(updated.UserID)
	s.publish(ctx, amqp.NewSyncMessage(updated.ID, updated.UserID))
	return updated, nil
}

// Delete removes a transaction locally and publishes a delete message for the
// exported copy.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.invalidate(userID)
	s.publish(ctx, amqp.NewDeleteMessage(id, userID))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, msg *amqp.ExportMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExport(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish export message",
			"type", msg.Type,
			log.FieldTransactionID, msg.ID,
			log.FieldUserID, msg.UserID,
			log.FieldError, err.Error())
	}
}

func (s *TransactionService) invalidate(userID int64) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
}

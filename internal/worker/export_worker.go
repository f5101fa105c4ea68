// Package worker consumes export messages and mirrors transactions into a
// spreadsheet backend.
package worker

import (
	"context"
	"errors"
	"fmt"

	"dime/internal/amqp"
	"dime/internal/core"
	"dime/internal/log"
	"dime/internal/sheets"
	"dime/internal/storage"
)

// ExportStore is the read surface the worker needs. *storage.Repository
// satisfies it.
type ExportStore interface {
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
}

// ExportWorker applies sync and delete messages against the spreadsheet.
// Messages carry only identifiers; the worker re-reads the row at consume
// time so a stale message never exports stale data.
type ExportWorker struct {
	store   ExportStore
	writer  sheets.TransactionWriter
	deleter sheets.TransactionDeleter
	logger  *log.Logger
}

func NewExportWorker(store ExportStore, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		store:   store,
		writer:  writer,
		deleter: deleter,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// Handle dispatches one export message. A nil return acknowledges the
// message; an error requeues it.
func (w *ExportWorker) Handle(ctx context.Context, msg *amqp.ExportMessage) error {
	switch msg.Type {
	case amqp.TypeSync:
		return w.handleSync(ctx, msg)
	case amqp.TypeDelete:
		return w.handleDelete(ctx, msg)
	default:
		// Unknown types are dropped, requeueing would loop forever.
		w.logger.WarnContext(ctx, "dropping export message with unknown type",
			"type", msg.Type, log.FieldTransactionID, msg.ID)
		return nil
	}
}

func (w *ExportWorker) handleSync(ctx context.Context, msg *amqp.ExportMessage) error {
	tx, err := w.store.GetTransaction(ctx, msg.UserID, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted after the sync was queued; the delete message that
		// follows cleans up the sheet.
		w.logger.WarnContext(ctx, "transaction gone, skipping sync",
			log.FieldTransactionID, msg.ID, log.FieldUserID, msg.UserID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", msg.ID, err)
	}

	categoryName := ""
	if tx.CategoryID != nil {
		cat, err := w.store.GetCategory(ctx, tx.UserID, *tx.CategoryID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Category deleted since; export uncategorized.
		case err != nil:
			return fmt.Errorf("get category %d: %w", *tx.CategoryID, err)
		default:
			categoryName = cat.Name
		}
	}

	ref, err := w.writer.Append(ctx, tx, categoryName)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	w.logger.InfoContext(ctx, "exported transaction",
		log.FieldTransactionID, tx.ID,
		log.FieldUserID, tx.UserID,
		log.FieldSheetsRef, ref)
	return nil
}

func (w *ExportWorker) handleDelete(ctx context.Context, msg *amqp.ExportMessage) error {
	if w.deleter == nil {
		w.logger.WarnContext(ctx, "no deleter configured, skipping delete",
			log.FieldTransactionID, msg.ID)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete from sheet: %w", err)
	}

	w.logger.InfoContext(ctx, "removed exported transaction",
		log.FieldTransactionID, msg.ID,
		log.FieldUserID, msg.UserID)
	return nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"dime/internal/core"
	"dime/internal/log"
)

// maxCatchUpPerPayment bounds how many missed occurrences a single run
// materializes for one payment, so a long-paused worker cannot flood a user
// with years of backfill in one pass.
const maxCatchUpPerPayment = 36

// RecurringStore is the persistence surface the processor needs.
// *storage.Repository satisfies it.
type RecurringStore interface {
	ListDuePayments(ctx context.Context, due core.Date) ([]core.RecurringPayment, error)
	UpdateRecurringPayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error)
}

// TransactionCreator materializes a transaction from a due payment.
// *TransactionService satisfies it, so created transactions flow through the
// same export pipeline as manual ones.
type TransactionCreator interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// RecurringProcessor materializes due recurring payments into transactions
// and advances their schedules.
type RecurringProcessor struct {
	payments     RecurringStore
	transactions TransactionCreator
	logger       *log.Logger
}

func NewRecurringProcessor(payments RecurringStore, transactions TransactionCreator, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		payments:     payments,
		transactions: transactions,
		logger:       logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDuePayments finds every active payment due on or before now, creates
// one transaction per missed occurrence, and advances each schedule. An error
// on one payment is logged and skipped so the remaining payments still
// process. Returns the number of transactions created.
func (p *RecurringProcessor) ProcessDuePayments(ctx context.Context, now time.Time) (int, error) {
	today := core.DateOf(now)

	due, err := p.payments.ListDuePayments(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due payments: %w", err)
	}

	processed := 0
	for _, payment := range due {
		n, err := p.processPayment(ctx, payment, today)
		processed += n
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to process recurring payment",
				log.FieldPaymentID, payment.ID,
				log.FieldUserID, payment.UserID,
				log.FieldTitle, payment.Title,
				log.FieldError, err.Error())
			continue
		}
		if n > 0 {
			p.logger.InfoContext(ctx, "processed recurring payment",
				log.FieldPaymentID, payment.ID,
				log.FieldUserID, payment.UserID,
				log.FieldTitle, payment.Title,
				"occurrences", n)
		}
	}

	if processed > 0 {
		p.logger.InfoContext(ctx, "recurring run complete",
			log.FieldOperation, log.OpProcess,
			"payments", len(due),
			"transactions", processed)
	}
	return processed, nil
}

// processPayment walks one payment's schedule up to today. The schedule is
// persisted after each occurrence, so a mid-loop failure never replays an
// already-created transaction.
func (p *RecurringProcessor) processPayment(ctx context.Context, payment core.RecurringPayment, today core.Date) (int, error) {
	created := 0
	for i := 0; i < maxCatchUpPerPayment; i++ {
		if payment.Status != core.PaymentActive || payment.NextPaymentDate.After(today.Time) {
			break
		}

		occurrence := payment.NextPaymentDate
		if _, err := p.transactions.Create(ctx, transactionFor(payment, occurrence)); err != nil {
			return created, fmt.Errorf("create transaction for occurrence %s: %w", occurrence.Format("2006-01-02"), err)
		}
		created++

		payment.NextPaymentDate = NextOccurrence(occurrence, payment.Frequency, payment.StartDate.Day())
		if !payment.EndDate.IsZero() && payment.NextPaymentDate.After(payment.EndDate.Time) {
			payment.Status = core.PaymentCompleted
		}

		var err error
		payment, err = p.payments.UpdateRecurringPayment(ctx, payment)
		if err != nil {
			return created, fmt.Errorf("advance schedule: %w", err)
		}
	}
	return created, nil
}

func transactionFor(payment core.RecurringPayment, occurrence core.Date) core.Transaction {
	return core.Transaction{
		UserID:     payment.UserID,
		CategoryID: payment.CategoryID,
		Title:      payment.Title,
		Amount:     payment.Amount,
		Currency:   payment.Currency,
		Kind:       core.Expense,
		Date:       occurrence,
		Priority:   core.PriorityMedium,
		Notes:      payment.Notes,
		Recurring:  true,
	}
}

// NextOccurrence advances a schedule date by one period. Monthly and yearly
// schedules re-anchor on the start date's day of month, clamped to the target
// month's length, so a payment anchored on the 31st lands on Feb 28 and
// returns to the 31st in March.
func NextOccurrence(d core.Date, freq core.Frequency, anchorDay int) core.Date {
	switch freq {
	case core.Daily:
		return core.DateOf(d.AddDate(0, 0, 1))
	case core.Weekly:
		return core.DateOf(d.AddDate(0, 0, 7))
	case core.Yearly:
		return anchoredDate(d.Year()+1, d.Month(), anchorDay)
	default: // monthly
		y, m := d.Year(), d.Month()+1
		if m > time.December {
			y, m = y+1, time.January
		}
		return anchoredDate(y, m, anchorDay)
	}
}

func anchoredDate(year int, month time.Month, day int) core.Date {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return core.NewDate(year, int(month), day)
}

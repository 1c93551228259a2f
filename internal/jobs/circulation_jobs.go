package jobs

import (
	"context"
	"fmt"
	"time"

	"libcirc-backend/internal/domain"
	"libcirc-backend/internal/logger"
	"libcirc-backend/internal/metrics"
	"libcirc-backend/internal/utils"
)

// MarkOverdueLoans flags every overdue open loan: it updates the overdue
// gauge and records a notification row per loan so the borrower sees the
// flag next time they check in, independent of email delivery.
func (jr *JobRunner) MarkOverdueLoans() {
	jr.runWithRecovery("MarkOverdueLoans", func() {
		ctx := context.Background()
		now := time.Now()

		overdue, err := jr.services.Reporting.OverdueLoans(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}
		metrics.OverdueLoans.Set(float64(len(overdue)))

		flagged := 0
		for _, loan := range overdue {
			daysLate := utils.DaysLate(loan.DueAt, now)
			note := &domain.Notification{
				BorrowerType: loan.BorrowerType,
				BorrowerID:   loan.BorrowerID,
				Title:        "Item overdue",
				Message: fmt.Sprintf("'%s' was due on %s and is %d day(s) overdue.",
					loan.ItemTitle, loan.DueAt.Format("2006-01-02"), daysLate),
				Attributes: map[string]string{"type": "LOAN_OVERDUE", "loan_ref": loan.LoanRef},
			}
			if err := jr.store.NotificationRepository.Create(ctx, note); err != nil {
				logger.Error("Failed to flag overdue loan",
					"error", err, "loan_ref", loan.LoanRef, "borrower_id", loan.BorrowerID)
				continue
			}
			flagged++
		}
		logger.Info("Overdue loans flagged", "overdue_loans", len(overdue), "loans_flagged", flagged)
	})
}

// SendOverdueReminders emails every borrower holding an overdue open loan.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := time.Now()

		overdue, err := jr.services.Reporting.OverdueLoans(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}

		rate := jr.config.Circulation.FineRatePerDay
		sent := 0
		for _, loan := range overdue {
			if loan.BorrowerEmail == "" {
				logger.Debug("Skipping reminder, borrower has no email",
					"borrower_type", loan.BorrowerType, "borrower_id", loan.BorrowerID)
				continue
			}
			daysLate := utils.DaysLate(loan.DueAt, now)
			accrued := utils.ComputeFine(loan.DueAt, now, rate)
			if err := jr.services.Email.SendOverdueReminder(ctx, loan.BorrowerEmail, loan.BorrowerName, loan.ItemTitle, loan.DueAt, daysLate, accrued); err != nil {
				logger.Error("Failed to send overdue reminder",
					"error", err, "loan_ref", loan.LoanRef, "borrower_id", loan.BorrowerID)
				continue
			}
			sent++
		}
		logger.Info("Overdue reminders sent", "overdue_loans", len(overdue), "emails_sent", sent)
	})
}

// AuditStockConsistency recomputes each item's expected availability from
// its open loans and logs any drift. It never repairs silently: drift means
// a write path bypassed the engine and needs investigation.
func (jr *JobRunner) AuditStockConsistency() {
	jr.runWithRecovery("AuditStockConsistency", func() {
		ctx := context.Background()

		query := `
			SELECT i.id, i.accession_no, i.total_quantity, i.available_quantity,
			       count(l.id) FILTER (WHERE l.state = 'OPEN') AS open_loans
			FROM items i
			LEFT JOIN loans l ON l.item_id = i.id
			GROUP BY i.id, i.accession_no, i.total_quantity, i.available_quantity
		`

		rows, err := jr.db.QueryContext(ctx, query)
		if err != nil {
			logger.Error("Failed to audit stock consistency", "error", err)
			return
		}
		defer rows.Close()

		audited, drifted := 0, 0
		for rows.Next() {
			var (
				id          int32
				accessionNo string
				total       int32
				available   int32
				openLoans   int32
			)
			if err := rows.Scan(&id, &accessionNo, &total, &available, &openLoans); err != nil {
				logger.Error("Failed to scan stock audit row", "error", err)
				continue
			}
			audited++

			expected := total - openLoans
			if available != expected || available < 0 || available > total {
				drifted++
				logger.Error("Stock drift detected",
					"item_id", id, "accession_no", accessionNo,
					"total", total, "available", available,
					"open_loans", openLoans, "expected_available", expected)
			}
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating stock audit rows", "error", err)
			return
		}

		logger.Info("Stock consistency audit finished", "items_audited", audited, "items_with_drift", drifted)
	})
}

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ozytarget/invozy-backend/internal/db"
	"github.com/ozytarget/invozy-backend/internal/domain"
)

type PaymentRepository struct {
	DB *db.Postgres
}

// ErrNoPayments is returned by RevertLast when the invoice has none.
var ErrNoPayments = errors.New("no payments to revert")

// Record inserts the payment and rewrites the invoice status from the full
// payment sum, in one transaction. The invoice row is locked first so
// concurrent recordings serialize on it.
func (r PaymentRepository) Record(ctx context.Context, p *domain.Payment) (domain.DocStatus, error) {
	var status domain.DocStatus
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		amount, signed, err := lockInvoice(ctx, tx, p.OwnerUserID, p.InvoiceID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO payments (invoice_id, owner_user_id, amount, paid_at, method, created_at)
			VALUES ($1,$2,$3,$4,$5, now())
			RETURNING id, created_at
		`, p.InvoiceID, p.OwnerUserID, p.Amount, p.PaidAt, p.Method).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return err
		}

		status, err = recomputeStatus(ctx, tx, p.InvoiceID, amount, signed)
		return err
	})
	return status, err
}

// RevertLast deletes the most recently created payment for the invoice and
// recomputes the status from the remainder.
func (r PaymentRepository) RevertLast(ctx context.Context, ownerUserID, invoiceID int64) (*domain.Payment, domain.DocStatus, error) {
	var (
		deleted domain.Payment
		status  domain.DocStatus
	)
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		amount, signed, err := lockInvoice(ctx, tx, ownerUserID, invoiceID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
			DELETE FROM payments
			WHERE id = (
				SELECT id FROM payments
				WHERE invoice_id=$1 AND owner_user_id=$2
				ORDER BY created_at DESC, id DESC
				LIMIT 1
			)
			RETURNING id, invoice_id, owner_user_id, amount, paid_at, method, created_at
		`, invoiceID, ownerUserID).Scan(
			&deleted.ID, &deleted.InvoiceID, &deleted.OwnerUserID,
			&deleted.Amount, &deleted.PaidAt, &deleted.Method, &deleted.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNoPayments
			}
			return err
		}

		status, err = recomputeStatus(ctx, tx, invoiceID, amount, signed)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return &deleted, status, nil
}

func (r PaymentRepository) ListByInvoice(ctx context.Context, ownerUserID, invoiceID int64) ([]domain.Payment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, invoice_id, owner_user_id, amount, paid_at, method, created_at
		FROM payments
		WHERE invoice_id=$1 AND owner_user_id=$2
		ORDER BY created_at DESC, id DESC
	`, invoiceID, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.OwnerUserID, &p.Amount, &p.PaidAt, &p.Method, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func lockInvoice(ctx context.Context, tx pgx.Tx, ownerUserID, invoiceID int64) (amount int64, signed bool, err error) {
	err = tx.QueryRow(ctx, `
		SELECT amount, signed FROM documents
		WHERE id=$1 AND owner_user_id=$2 AND doc_type=$3
		FOR UPDATE
	`, invoiceID, ownerUserID, domain.DocTypeInvoice).Scan(&amount, &signed)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
	}
	return amount, signed, err
}

func recomputeStatus(ctx context.Context, tx pgx.Tx, invoiceID, amount int64, signed bool) (domain.DocStatus, error) {
	var total int64
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id=$1
	`, invoiceID).Scan(&total)
	if err != nil {
		return "", err
	}

	status := domain.StatusForPaidTotal(total, amount, signed)
	_, err = tx.Exec(ctx, `
		UPDATE documents SET status=$1, updated_at=now() WHERE id=$2
	`, status, invoiceID)
	if err != nil {
		return "", err
	}
	return status, nil
}

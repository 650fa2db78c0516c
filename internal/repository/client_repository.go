package repository

import (
	"context"

	"github.com/ozytarget/invozy-backend/internal/db"
	"github.com/ozytarget/invozy-backend/internal/domain"
)

type ClientRepository struct {
	DB *db.Postgres
}

func (r ClientRepository) List(ctx context.Context, ownerUserID int64, limit int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM clients
		WHERE owner_user_id=$1
		ORDER BY name ASC
		LIMIT $2
	`, ownerUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Stored = true
		items = append(items, c)
	}
	return items, rows.Err()
}

// Insert stores an explicit client record. The email is normalized before
// writing; a duplicate (owner, email) pair surfaces as a unique violation.
func (r ClientRepository) Insert(ctx context.Context, ownerUserID int64, c domain.Client) (*domain.Client, error) {
	out := c
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO clients (owner_user_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING id, created_at, updated_at
	`, ownerUserID, c.Name, domain.NormalizeEmail(c.Email), c.Phone, c.Address).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	out.Email = domain.NormalizeEmail(c.Email)
	out.Stored = true
	return &out, nil
}

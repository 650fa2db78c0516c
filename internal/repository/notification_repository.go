package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ozytarget/invozy-backend/internal/db"
	"github.com/ozytarget/invozy-backend/internal/domain"
)

type NotificationRepository struct {
	DB *db.Postgres
}

type CreateNotificationInput struct {
	OwnerUserID int64
	Title       string
	Message     string
	Type        domain.NotificationType
	Created     time.Time
}

func (r NotificationRepository) Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	var n domain.Notification
	var ownerID pgtype.Int8
	createdAt := in.Created
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO notifications (owner_user_id, title, message, type, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, owner_user_id, title, message, type, created_at, read_at
	`, in.OwnerUserID, in.Title, in.Message, string(in.Type), createdAt).Scan(
		&n.ID, &ownerID, &n.Title, &n.Message, (*string)(&n.Type), &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		n.OwnerUserID = &ownerID.Int64
	}
	return &n, nil
}

func (r NotificationRepository) List(ctx context.Context, ownerUserID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, owner_user_id, title, message, type, created_at, read_at
		FROM notifications
		WHERE owner_user_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, ownerUserID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var ownerID pgtype.Int8
		if err := rows.Scan(&n.ID, &ownerID, &n.Title, &n.Message, (*string)(&n.Type), &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, err
		}
		if ownerID.Valid {
			n.OwnerUserID = &ownerID.Int64
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r NotificationRepository) MarkRead(ctx context.Context, ownerUserID, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET read_at=now()
		WHERE id=$1 AND owner_user_id=$2 AND read_at IS NULL
	`, id, ownerUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

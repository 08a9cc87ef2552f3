package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
)

// PgStore implements Store on Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

var _ Store = (*PgStore)(nil)

func (s *PgStore) Create(ctx context.Context, n Notification) (*Notification, error) {
	n.ID = ulid.Make().String()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messaging.notification (id, recipient_id, sender_id, category, body, target_ref, created_at)
		VALUES ($1, $2::uuid, $3::uuid, $4, $5, $6, now())
		RETURNING created_at
	`, n.ID, n.RecipientID, n.SenderID, n.Category, n.Message, n.TargetRef).Scan(&n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *PgStore) ListRecent(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipient_id::text, sender_id::text, category, body, target_ref, is_read, read_at, created_at
		FROM messaging.notification
		WHERE recipient_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Category, &n.Message, &n.TargetRef, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (s *PgStore) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM messaging.notification
		WHERE recipient_id = $1::uuid AND is_read = FALSE
	`, recipientID).Scan(&count)
	return count, err
}

func (s *PgStore) MarkRead(ctx context.Context, id, recipientID string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE messaging.notification
		SET is_read = TRUE, read_at = now()
		WHERE id = $1 AND recipient_id = $2::uuid AND is_read = FALSE
	`, id, recipientID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// Either missing or already read; distinguish for the caller.
		var exists bool
		if err := s.pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM messaging.notification WHERE id = $1 AND recipient_id = $2::uuid)
		`, id, recipientID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Resource: "notification"}
		}
	}
	return nil
}

func (s *PgStore) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE messaging.notification
		SET is_read = TRUE, read_at = now()
		WHERE recipient_id = $1::uuid AND is_read = FALSE
	`, recipientID)
	return err
}

func (s *PgStore) Delete(ctx context.Context, id, recipientID string) error {
	ct, err := s.pool.Exec(ctx, `
		DELETE FROM messaging.notification WHERE id = $1 AND recipient_id = $2::uuid
	`, id, recipientID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "notification"}
	}
	return nil
}

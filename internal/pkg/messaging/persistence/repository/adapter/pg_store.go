package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// PgConversationStore implements port.ConversationStore on Postgres.
// Message and request ids are ULIDs assigned here, so creation order and
// lexical id order agree; timestamps come from the store's clock. Every
// call runs under callTimeout so a stalled pool surfaces as a context
// deadline instead of wedging the session that issued it.
type PgConversationStore struct {
	pool        *pgxpool.Pool
	callTimeout time.Duration
}

func NewPgConversationStore(pool *pgxpool.Pool, callTimeout time.Duration) *PgConversationStore {
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	return &PgConversationStore{pool: pool, callTimeout: callTimeout}
}

var _ port.ConversationStore = (*PgConversationStore)(nil)

func (r *PgConversationStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.callTimeout)
}

func (r *PgConversationStore) CreateConversation(ctx context.Context, c domain.Conversation) (string, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO messaging.conversation (id, title, image_url, is_group, is_active, fanclub_owner_id, created_at)
		VALUES ($1::uuid, $2, $3, $4, TRUE, $5::uuid, now())
	`, id, c.Title, c.ImageURL, c.IsGroup, c.FanclubOwnerID)
	if err != nil {
		return "", err
	}

	for _, userID := range c.ParticipantIDs {
		if userID == "" {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO messaging.conversation_participant (conversation_id, user_id, joined_at)
			VALUES ($1::uuid, $2::uuid, now())
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, id, userID)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var c domain.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, title, image_url, is_group, is_active, fanclub_owner_id::text, created_at, last_activity_at
		FROM messaging.conversation
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.Title, &c.ImageURL, &c.IsGroup, &c.IsActive, &c.FanclubOwnerID, &c.CreatedAt, &c.LastActivityAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "conversation"}
	}
	if err != nil {
		return nil, err
	}

	c.ParticipantIDs, err = r.participantIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgConversationStore) FindDirectConversation(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT c.id::text
		FROM messaging.conversation c
		JOIN messaging.conversation_participant pa ON pa.conversation_id = c.id AND pa.user_id = $1::uuid
		JOIN messaging.conversation_participant pb ON pb.conversation_id = c.id AND pb.user_id = $2::uuid
		WHERE c.is_group = FALSE
		LIMIT 1
	`, userA, userB).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "conversation"}
	}
	if err != nil {
		return nil, err
	}
	return r.GetConversation(ctx, id)
}

func (r *PgConversationStore) SaveMessage(ctx context.Context, conversationID, senderID, content string, attachmentURL *string) (*domain.Message, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	msg := domain.Message{
		ID:             ulid.Make().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		AttachmentURL:  attachmentURL,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO messaging.message (id, conversation_id, sender_id, content, attachment_url, created_at)
		VALUES ($1, $2::uuid, $3::uuid, $4, $5, now())
		RETURNING created_at
	`, msg.ID, conversationID, senderID, content, attachmentURL).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE messaging.conversation SET last_activity_at = $2 WHERE id = $1::uuid
	`, conversationID, msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &msg, nil
}

const messageColumns = `id, conversation_id::text, sender_id::text, content, attachment_url,
	is_read, read_at, is_deleted, deleted_at, edited_at, created_at`

func (r *PgConversationStore) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM messaging.message WHERE id = $1
	`, messageColumns), messageID)

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "message"}
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *PgConversationStore) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM messaging.message
		WHERE conversation_id = $1::uuid AND is_deleted = FALSE
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, messageColumns), conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

func (r *PgConversationStore) MarkMessagesRead(ctx context.Context, conversationID, readerID string, messageIDs []string) ([]string, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if len(messageIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		UPDATE messaging.message
		SET is_read = TRUE, read_at = now()
		WHERE id = ANY($1)
		  AND conversation_id = $2::uuid
		  AND sender_id <> $3::uuid
		  AND is_read = FALSE
		  AND is_deleted = FALSE
		RETURNING id
	`, messageIDs, conversationID, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marked []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		marked = append(marked, id)
	}
	return marked, rows.Err()
}

func (r *PgConversationStore) EditMessage(ctx context.Context, conversationID, messageID, senderID, newContent string) (*domain.Message, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE messaging.message
		SET content = $4, edited_at = now()
		WHERE id = $1 AND conversation_id = $2::uuid AND sender_id = $3::uuid AND is_deleted = FALSE
		RETURNING %s
	`, messageColumns), messageID, conversationID, senderID, newContent)

	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "message"}
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *PgConversationStore) DeleteMessage(ctx context.Context, conversationID, messageID, senderID string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `
		UPDATE messaging.message
		SET is_deleted = TRUE, deleted_at = now()
		WHERE id = $1 AND conversation_id = $2::uuid AND sender_id = $3::uuid AND is_deleted = FALSE
	`, messageID, conversationID, senderID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "message"}
	}
	return nil
}

func (r *PgConversationStore) CountUnreadMessages(ctx context.Context, userID string) (int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM messaging.message m
		JOIN messaging.conversation c ON c.id = m.conversation_id AND c.is_active = TRUE
		JOIN messaging.conversation_participant p ON p.conversation_id = m.conversation_id AND p.user_id = $1::uuid
		WHERE m.sender_id <> $1::uuid
		  AND m.is_read = FALSE
		  AND m.is_deleted = FALSE
	`, userID).Scan(&count)
	return count, err
}

func (r *PgConversationStore) CreateMessageRequest(ctx context.Context, req domain.MessageRequest) (string, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	id := ulid.Make().String()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messaging.message_request (id, from_user_id, to_user_id, body, status, created_at)
		VALUES ($1, $2::uuid, $3::uuid, $4, $5, now())
	`, id, req.FromUserID, req.ToUserID, req.Body, domain.RequestPending)
	if err != nil {
		return "", err
	}
	return id, nil
}

const requestColumns = `id, from_user_id::text, to_user_id::text, body, status, created_at, responded_at`

func (r *PgConversationStore) GetMessageRequest(ctx context.Context, id string) (*domain.MessageRequest, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM messaging.message_request WHERE id = $1
	`, requestColumns), id)
	return scanRequest(row)
}

func (r *PgConversationStore) FindRequestBetween(ctx context.Context, fromUserID, toUserID string) (*domain.MessageRequest, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM messaging.message_request
		WHERE from_user_id = $1::uuid AND to_user_id = $2::uuid
	`, requestColumns), fromUserID, toUserID)
	return scanRequest(row)
}

func (r *PgConversationStore) SetRequestStatus(ctx context.Context, id string, status domain.RequestStatus, at time.Time) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	ct, err := r.pool.Exec(ctx, `
		UPDATE messaging.message_request
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = $4
	`, id, status, at, domain.RequestPending)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "message request"}
	}
	return nil
}

func (r *PgConversationStore) CountPendingRequests(ctx context.Context, userID string) (int, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM messaging.message_request
		WHERE to_user_id = $1::uuid AND status = $2
	`, userID, domain.RequestPending).Scan(&count)
	return count, err
}

func (r *PgConversationStore) participantIDs(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id::text FROM messaging.conversation_participant
		WHERE conversation_id = $1::uuid
		ORDER BY joined_at
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.AttachmentURL,
		&m.IsRead, &m.ReadAt, &m.IsDeleted, &m.DeletedAt, &m.EditedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanRequest(row rowScanner) (*domain.MessageRequest, error) {
	var req domain.MessageRequest
	err := row.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Body, &req.Status, &req.CreatedAt, &req.RespondedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "message request"}
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

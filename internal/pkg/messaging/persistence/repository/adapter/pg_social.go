package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// PgSocialGraph reads follow edges and user fields owned by the accounts
// subsystem. The messaging core never writes through this adapter.
type PgSocialGraph struct {
	pool *pgxpool.Pool
}

func NewPgSocialGraph(pool *pgxpool.Pool) *PgSocialGraph {
	return &PgSocialGraph{pool: pool}
}

var _ port.SocialGraph = (*PgSocialGraph)(nil)

func (g *PgSocialGraph) Follows(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := g.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts.user_follow
			WHERE follower_id = $1::uuid AND following_id = $2::uuid AND is_active = TRUE
		)
	`, followerID, followingID).Scan(&exists)
	return exists, err
}

func (g *PgSocialGraph) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := g.pool.Query(ctx, `
		SELECT following_id::text FROM accounts.user_follow
		WHERE follower_id = $1::uuid AND is_active = TRUE
		UNION
		SELECT follower_id::text FROM accounts.user_follow
		WHERE following_id = $1::uuid AND is_active = TRUE
	`, userID)
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

func (g *PgSocialGraph) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	var p domain.UserProfile
	err := g.pool.QueryRow(ctx, `
		SELECT id::text, username, coalesce(full_name, username), avatar_url, is_verified, user_type
		FROM accounts.app_user
		WHERE id = $1::uuid
	`, userID).Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.IsVerified, &p.UserType)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, &domain.NotFoundError{Resource: "user"}
	}
	return p, err
}

func (g *PgSocialGraph) MessagingPreference(ctx context.Context, userID string) (string, error) {
	var pref string
	err := g.pool.QueryRow(ctx, `
		SELECT coalesce(messaging_pref, 'anyone') FROM accounts.app_user WHERE id = $1::uuid
	`, userID).Scan(&pref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &domain.NotFoundError{Resource: "user"}
	}
	return pref, err
}

// PgPresenceStore owns the two persisted presence fields on the user
// record.
type PgPresenceStore struct {
	pool *pgxpool.Pool
}

func NewPgPresenceStore(pool *pgxpool.Pool) *PgPresenceStore {
	return &PgPresenceStore{pool: pool}
}

var _ port.PresenceStore = (*PgPresenceStore)(nil)

func (s *PgPresenceStore) SetOnline(ctx context.Context, userID string, online bool, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE accounts.app_user SET is_online = $2, last_seen = $3 WHERE id = $1::uuid
	`, userID, online, at)
	return err
}

func (s *PgPresenceStore) TouchLastSeen(ctx context.Context, userID string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE accounts.app_user SET last_seen = $2 WHERE id = $1::uuid
	`, userID, at)
	return err
}

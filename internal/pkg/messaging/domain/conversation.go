package domain

import "time"

// Conversation groups a set of participants and their messages. Direct
// conversations have exactly two participants; group conversations have two
// or more. A conversation with FanclubOwnerID set is a fan-club chat where
// only that user may post. Conversations are never hard-deleted by the
// core; IsActive soft-deactivates them.
type Conversation struct {
	ID             string     `db:"id"`
	Title          string     `db:"title"`
	ImageURL       *string    `db:"image_url"`
	IsGroup        bool       `db:"is_group"`
	IsActive       bool       `db:"is_active"`
	FanclubOwnerID *string    `db:"fanclub_owner_id"`
	ParticipantIDs []string   `db:"-"`
	CreatedAt      time.Time  `db:"created_at"`
	LastActivityAt *time.Time `db:"last_activity_at"`
}

// IsFanclub reports whether posting is restricted to a single owner.
func (c *Conversation) IsFanclub() bool {
	return c.FanclubOwnerID != nil && *c.FanclubOwnerID != ""
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the peer in a direct conversation, or "" for
// group conversations.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.IsGroup {
		return ""
	}
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// UserProfile carries the display fields hydrated onto outbound message
// events. The accounts subsystem owns the rest of the user record.
type UserProfile struct {
	ID         string  `db:"id"`
	Username   string  `db:"username"`
	FullName   string  `db:"full_name"`
	AvatarURL  *string `db:"avatar_url"`
	IsVerified bool    `db:"is_verified"`
	UserType   string  `db:"user_type"` // "fan" or "celebrity"
}

// IsCelebrity reports whether the privileged-sender override applies.
func (p UserProfile) IsCelebrity() bool { return p.UserType == "celebrity" }

// Messaging preference values on the user record.
const (
	PrefAnyone = "anyone"
	PrefMutual = "mutual"
	PrefNobody = "nobody"
)

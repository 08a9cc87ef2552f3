package domain

import "time"

// RequestStatus is the lifecycle state of a MessageRequest.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// MessageRequest is a one-time proposal from a non-mutual follower to a
// recipient whose preference restricts messaging. Accepting one synthesizes
// a direct conversation between the two users. At most one request may
// exist per (from, to) pair.
type MessageRequest struct {
	ID          string        `db:"id"`
	FromUserID  string        `db:"from_user_id"`
	ToUserID    string        `db:"to_user_id"`
	Body        string        `db:"body"`
	Status      RequestStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	RespondedAt *time.Time    `db:"responded_at"`
}

// MaxRequestBodyLength bounds the introductory text on a message request.
const MaxRequestBodyLength = 500

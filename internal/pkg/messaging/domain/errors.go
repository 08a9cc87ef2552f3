package domain

import (
	"fmt"
	"strings"
)

// The messaging core classifies every failure into one of five kinds so
// callers (socket sessions, HTTP controllers, queue handlers) can map them
// onto wire frames and retry policy without inspecting error strings.

// ValidationError rejects malformed input. No state was changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// AuthorizationError rejects an action the access policy denied. No state
// was changed; the connection may remain open.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return "authorization: " + e.Reason }

// Authorization denial reasons surfaced to callers.
const (
	ReasonNotParticipant       = "not a participant in this conversation"
	ReasonNotMutual            = "users must follow each other to exchange messages"
	ReasonAcceptsNobody        = "recipient does not accept messages"
	ReasonNotFanclubOwner      = "only the celebrity can post in this fan club"
	ReasonInactiveConversation = "conversation is no longer active"
)

// ModerationError rejects toxic content. Nothing was persisted and nothing
// was broadcast.
type ModerationError struct {
	ToxicTerms []string
}

func (e *ModerationError) Error() string {
	if len(e.ToxicTerms) == 0 {
		return "moderation: message contains inappropriate content"
	}
	return "moderation: message contains inappropriate content: " + strings.Join(e.ToxicTerms, ", ")
}

// NotFoundError reports an operation on a missing, deleted, or
// foreign-owned record.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// TransientError wraps a store or collaborator timeout/unavailability.
// Callers may retry with backoff; it must never be treated as success or
// as a moderation verdict.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient: %s: %v", e.Op, e.Err) }

func (e *TransientError) Unwrap() error { return e.Err }

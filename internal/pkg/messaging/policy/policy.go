// Package policy holds the pure access decisions for conversations: who may
// join a conversation's broadcast group and who may post into it. Nothing
// here performs I/O or mutates state; callers hydrate the conversation and
// the relationship facts, then reject the action with the reason carried on
// the returned error.
package policy

import (
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
)

// Relationship carries the social-graph facts a posting decision depends
// on, resolved for (sender, other participant) by the caller.
type Relationship struct {
	SenderFollowsOther bool
	OtherFollowsSender bool
	OtherPreference    string // domain.PrefAnyone, PrefMutual, PrefNobody
	SenderIsCelebrity  bool
}

// Mutual reports whether both follow edges exist.
func (r Relationship) Mutual() bool {
	return r.SenderFollowsOther && r.OtherFollowsSender
}

// CanJoin decides whether userID has standing to join the conversation's
// broadcast group. Reading requires participancy and nothing more: fan-club
// members may always read even though only the owner posts.
func CanJoin(userID string, conv *domain.Conversation) error {
	if !conv.IsActive {
		return &domain.AuthorizationError{Reason: domain.ReasonInactiveConversation}
	}
	if !conv.HasParticipant(userID) {
		return &domain.AuthorizationError{Reason: domain.ReasonNotParticipant}
	}
	return nil
}

// CanPost decides whether userID may send a message into the conversation.
// rel is consulted only for direct conversations; group and fan-club rules
// do not depend on the social graph.
func CanPost(userID string, conv *domain.Conversation, rel Relationship) error {
	if err := CanJoin(userID, conv); err != nil {
		return err
	}

	if conv.IsFanclub() {
		if *conv.FanclubOwnerID != userID {
			return &domain.AuthorizationError{Reason: domain.ReasonNotFanclubOwner}
		}
		return nil
	}

	if conv.IsGroup {
		// Regular group chats: every member may post.
		return nil
	}

	switch rel.OtherPreference {
	case domain.PrefNobody:
		return &domain.AuthorizationError{Reason: domain.ReasonAcceptsNobody}
	case domain.PrefMutual:
		// Verified celebrities may always message their fans.
		if rel.SenderIsCelebrity {
			return nil
		}
		if !rel.Mutual() {
			return &domain.AuthorizationError{Reason: domain.ReasonNotMutual}
		}
	}
	return nil
}

package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

func newRequestFixture() (*MessageRequestUseCase, *fakeStore, *fakeGraph, *fakeNotifier, *fakeInvalidator) {
	store := newFakeStore()
	graph := newFakeGraph()
	notifier := &fakeNotifier{}
	inv := &fakeInvalidator{}
	uc := NewMessageRequestUseCase(store, graph, notifier, inv, zerolog.Nop())
	return uc, store, graph, notifier, inv
}

func TestSendRequestNotifiesRecipient(t *testing.T) {
	uc, _, graph, notifier, inv := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)

	req, err := uc.Send(context.Background(), SendRequestInput{
		FromUserID: "fan",
		ToUserID:   "star",
		Body:       "big fan, would love to chat",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "star", notifier.calls[0].RecipientID)
	assert.Equal(t, notifications.CategoryMessageRequest, notifier.calls[0].Category)
	assert.Equal(t, []string{"star"}, inv.users)
}

func TestSendRequestDuplicateGuard(t *testing.T) {
	uc, _, graph, notifier, _ := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)

	first, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	require.NoError(t, err)

	// Re-sending while pending returns the existing request without a
	// second notification.
	again, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, notifier.calls, 1)
}

func TestSendRequestRejectedRequesterCannotRetry(t *testing.T) {
	uc, _, graph, _, _ := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)

	req, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	require.NoError(t, err)

	conv, err := uc.Respond(context.Background(), req.ID, "star", false)
	require.NoError(t, err)
	assert.Nil(t, conv)

	_, err = uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestRespondAcceptSynthesizesConversation(t *testing.T) {
	uc, store, graph, notifier, inv := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)

	req, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	require.NoError(t, err)

	conv, err := uc.Respond(context.Background(), req.ID, "star", true)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.True(t, conv.HasParticipant("fan"))
	assert.True(t, conv.HasParticipant("star"))
	assert.True(t, conv.IsActive)

	stored, err := store.GetMessageRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, stored.Status)
	require.NotNil(t, stored.RespondedAt)

	// Requester hears about the acceptance; the responder's summary drops
	// its pending count.
	require.Len(t, notifier.calls, 2)
	assert.Equal(t, "fan", notifier.calls[1].RecipientID)
	assert.Equal(t, notifications.CategoryRequestAccepted, notifier.calls[1].Category)
	assert.Contains(t, inv.users, "star")
}

func TestRespondOnlyRecipientMayAnswer(t *testing.T) {
	uc, _, graph, _, _ := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)

	req, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	require.NoError(t, err)

	_, err = uc.Respond(context.Background(), req.ID, "fan", true)
	var authErr *domain.AuthorizationError
	require.ErrorAs(t, err, &authErr)

	_, err = uc.Respond(context.Background(), req.ID, "intruder", true)
	require.ErrorAs(t, err, &authErr)
}

func TestRespondTwiceFails(t *testing.T) {
	uc, _, graph, _, _ := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)

	req, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	require.NoError(t, err)

	_, err = uc.Respond(context.Background(), req.ID, "star", true)
	require.NoError(t, err)

	_, err = uc.Respond(context.Background(), req.ID, "star", false)
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestSendRequestExistingConversationRejected(t *testing.T) {
	uc, store, graph, _, _ := newRequestFixture()
	graph.user("fan", "fan", domain.PrefAnyone)
	graph.user("star", "celebrity", domain.PrefMutual)
	store.addConversation(domain.Conversation{
		IsActive:       true,
		ParticipantIDs: []string{"fan", "star"},
	})

	_, err := uc.Send(context.Background(), SendRequestInput{FromUserID: "fan", ToUserID: "star"})
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

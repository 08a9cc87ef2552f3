package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
)

func TestCreateDirectConversationGetOrCreate(t *testing.T) {
	store := newFakeStore()
	graph := newFakeGraph()
	graph.user("alice", "fan", domain.PrefAnyone)
	graph.user("bob", "fan", domain.PrefAnyone)
	uc := NewCreateConversationUseCase(store, graph)

	first, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ParticipantIDs: []string{"bob"},
	})
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "bob",
		ParticipantIDs: []string{"alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "either side resolves to the same conversation")
	assert.Len(t, store.conversations, 1)
}

func TestCreateDirectConversationPreferenceGate(t *testing.T) {
	tests := []struct {
		name       string
		pref       string
		mutual     bool
		celebrity  bool
		wantReason string
	}{
		{"accepts nobody", domain.PrefNobody, true, false, domain.ReasonAcceptsNobody},
		{"mutual required, one-way", domain.PrefMutual, false, false, domain.ReasonNotMutual},
		{"mutual satisfied", domain.PrefMutual, true, false, ""},
		{"celebrity bypasses mutual", domain.PrefMutual, false, true, ""},
		{"anyone", domain.PrefAnyone, false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			graph := newFakeGraph()
			creatorType := "fan"
			if tt.celebrity {
				creatorType = "celebrity"
			}
			graph.user("alice", creatorType, domain.PrefAnyone)
			graph.user("bob", "fan", tt.pref)
			graph.follow("alice", "bob")
			if tt.mutual {
				graph.follow("bob", "alice")
			}
			uc := NewCreateConversationUseCase(store, graph)

			conv, err := uc.Execute(context.Background(), CreateConversationInput{
				CreatorID:      "alice",
				ParticipantIDs: []string{"bob"},
			})
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.True(t, conv.IsActive)
				return
			}
			var authErr *domain.AuthorizationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantReason, authErr.Reason)
			assert.Empty(t, store.conversations, "no shell conversation on denial")
		})
	}
}

func TestCreateGroupConversation(t *testing.T) {
	store := newFakeStore()
	graph := newFakeGraph()
	uc := NewCreateConversationUseCase(store, graph)

	conv, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ParticipantIDs: []string{"bob", "carol", "bob"},
		Title:          "weekend plans",
		IsGroup:        true,
	})
	require.NoError(t, err)
	assert.True(t, conv.IsGroup)
	assert.False(t, conv.IsFanclub())
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, conv.ParticipantIDs)
}

func TestCreateFanclubConversation(t *testing.T) {
	store := newFakeStore()
	graph := newFakeGraph()
	uc := NewCreateConversationUseCase(store, graph)

	conv, err := uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "star",
		ParticipantIDs: []string{"fan1", "fan2"},
		Title:          "star's club",
		Fanclub:        true,
	})
	require.NoError(t, err)
	assert.True(t, conv.IsGroup)
	require.True(t, conv.IsFanclub())
	assert.Equal(t, "star", *conv.FanclubOwnerID)
}

func TestCreateConversationValidation(t *testing.T) {
	uc := NewCreateConversationUseCase(newFakeStore(), newFakeGraph())

	_, err := uc.Execute(context.Background(), CreateConversationInput{CreatorID: "alice"})
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)

	_, err = uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ParticipantIDs: []string{"alice"},
	})
	assert.ErrorAs(t, err, &valErr)

	_, err = uc.Execute(context.Background(), CreateConversationInput{
		CreatorID:      "alice",
		ParticipantIDs: []string{"bob", "carol"},
	})
	assert.ErrorAs(t, err, &valErr, "three participants cannot be direct")
}

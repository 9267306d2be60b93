package services

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkmatch/app/models"
	apperrors "talkmatch/pkg/errors"
)

func newTestRequestService() (*RequestService, *memStore, *memConversations, *memDirectory) {
	store := newMemStore()
	conversations := newMemConversations()
	directory := newMemDirectory()
	matchmaking := NewMatchmakingService(store, conversations, directory, nil)
	return NewRequestService(store, directory, matchmaking), store, conversations, directory
}

func TestSubmitCreatesWaitingRequest(t *testing.T) {
	service, store, _, directory := newTestRequestService()
	directory.prefs["alice"] = &models.UserPreferences{Language: "vi", Timezone: "UTC+7", Topics: []string{"work"}}

	request, result, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{
		Intent: "VENT",
		Mood:   "SAD",
	})
	require.NoError(t, err)
	assert.Nil(t, result, "an empty pool cannot produce a pairing")

	require.NotNil(t, request)
	assert.Equal(t, models.StatusWaiting, request.Status)
	assert.Equal(t, models.IntentVent, request.Intent)
	assert.Equal(t, models.MoodSad, request.Mood)
	assert.Equal(t, "vi", request.Language, "language comes from stored preferences")
	assert.Equal(t, "UTC+7", request.Timezone)
	assert.Equal(t, []string{"work"}, request.Topics, "topics fall back to stored preferences")

	stored, err := store.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusWaiting, stored.Status)
}

func TestSubmitDefaultsMoodToNeutral(t *testing.T) {
	service, _, _, _ := newTestRequestService()

	request, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT"})
	require.NoError(t, err)
	assert.Equal(t, models.MoodNeutral, request.Mood)
}

func TestSubmitRejectsBannedRequester(t *testing.T) {
	service, _, _, directory := newTestRequestService()
	directory.banned["alice"] = true

	_, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))
}

func TestSubmitRejectsInvalidIntentAndMood(t *testing.T) {
	service, _, _, _ := newTestRequestService()

	_, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "SHOUT"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, _, err = service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "FURIOUS"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestSubmitRejectsDuplicateActiveRequest(t *testing.T) {
	service, _, _, _ := newTestRequestService()

	_, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "SAD"})
	require.NoError(t, err)

	_, _, err = service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "SAD"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAlreadyExists, apperrors.CodeOf(err))
}

func TestSubmitPairsImmediatelyWhenPossible(t *testing.T) {
	service, store, conversations, _ := newTestRequestService()

	seedWaiting(t, store, "bob", models.IntentJustListen, models.MoodHopeful, time.Now())

	request, result, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{
		Intent: "VENT",
		Mood:   "SAD",
		Topics: []string{"grief"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.ElementsMatch(t, []string{"alice", "bob"}, result.Participants())
	assert.Equal(t, models.StatusMatched, request.Status)
	assert.Equal(t, "bob", request.PairedWith)
	assert.Equal(t, result.ConversationID, request.ConversationID)
	assert.Equal(t, 1, conversations.count())
}

func TestCancelWaitingRequest(t *testing.T) {
	service, store, _, _ := newTestRequestService()

	request, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "SAD"})
	require.NoError(t, err)

	require.NoError(t, service.Cancel(context.Background(), "alice", request.ID))
	assert.Equal(t, models.StatusCancelled, store.statusOf(request.ID))

	// The active slot is free again, so resubmitting succeeds.
	_, _, err = service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "SAD"})
	require.NoError(t, err)
}

func TestCancelUnknownRequest(t *testing.T) {
	service, _, _, _ := newTestRequestService()

	err := service.Cancel(context.Background(), "alice", gocql.TimeUUID())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestCancelRejectsNonOwner(t *testing.T) {
	service, _, _, _ := newTestRequestService()

	request, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "SAD"})
	require.NoError(t, err)

	err = service.Cancel(context.Background(), "mallory", request.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err), "foreign requests look like missing requests")
}

func TestCancelRejectsNonWaitingRequest(t *testing.T) {
	service, store, _, _ := newTestRequestService()

	seedWaiting(t, store, "bob", models.IntentJustListen, models.MoodHopeful, time.Now())
	request, result, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{
		Intent: "VENT",
		Mood:   "SAD",
		Topics: []string{"grief"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	err = service.Cancel(context.Background(), "alice", request.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
	assert.Equal(t, models.StatusMatched, store.statusOf(request.ID))
}

func TestGetActive(t *testing.T) {
	service, _, _, _ := newTestRequestService()

	request, err := service.GetActive(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, request)

	submitted, _, err := service.Submit(context.Background(), "alice", &models.CreateMatchRequestRequest{Intent: "VENT", Mood: "SAD"})
	require.NoError(t, err)

	request, err = service.GetActive(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, submitted.ID, request.ID)
}

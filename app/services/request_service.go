package services

import (
	"context"
	"log"
	"time"

	"github.com/gocql/gocql"

	"talkmatch/app/models"
	apperrors "talkmatch/pkg/errors"
)

// RequestService owns the lifecycle of match requests: submission,
// cancellation and the active-request lookup. One requester may hold at most
// one WAITING or MATCHED request at a time.
type RequestService struct {
	store       MatchRequestStore
	users       UserDirectory
	matchmaking *MatchmakingService
}

func NewRequestService(store MatchRequestStore, users UserDirectory, matchmaking *MatchmakingService) *RequestService {
	return &RequestService{
		store:       store,
		users:       users,
		matchmaking: matchmaking,
	}
}

// Submit validates and persists a new match request, then immediately tries
// to pair it. The returned PairingResult is nil when the request stays in the
// waiting pool.
func (s *RequestService) Submit(ctx context.Context, requesterID string, req *models.CreateMatchRequestRequest) (*models.MatchRequest, *models.PairingResult, error) {
	banned, err := s.users.IsBanned(ctx, requesterID)
	if err != nil {
		return nil, nil, apperrors.ErrSubmitFailed(err)
	}
	if banned {
		return nil, nil, apperrors.ErrRequesterBanned
	}

	intent, ok := models.ParseIntent(req.Intent)
	if !ok {
		return nil, nil, apperrors.ErrInvalidIntent
	}
	mood := models.MoodNeutral
	if req.Mood != "" {
		mood, ok = models.ParseMood(req.Mood)
		if !ok {
			return nil, nil, apperrors.ErrInvalidMood
		}
	}

	prefs, err := s.users.Preferences(ctx, requesterID)
	if err != nil {
		return nil, nil, apperrors.ErrSubmitFailed(err)
	}

	topics := req.Topics
	if len(topics) == 0 {
		topics = prefs.Topics
	}

	now := time.Now()
	request := &models.MatchRequest{
		ID:              gocql.TimeUUID(),
		RequesterID:     requesterID,
		Intent:          intent,
		Mood:            mood,
		Language:        prefs.Language,
		Timezone:        prefs.Timezone,
		Topics:          topics,
		Status:          models.StatusWaiting,
		OriginSessionID: req.OriginSessionID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	claimed, err := s.store.ClaimActive(ctx, requesterID, request.ID)
	if err != nil {
		return nil, nil, apperrors.ErrSubmitFailed(err)
	}
	if !claimed {
		return nil, nil, apperrors.ErrRequestAlreadyActive
	}

	if err := s.store.Insert(ctx, request); err != nil {
		if releaseErr := s.store.ReleaseActive(ctx, requesterID); releaseErr != nil {
			log.Printf("❌ Failed to release claim after insert failure for %s: %v", requesterID, releaseErr)
		}
		return nil, nil, apperrors.ErrSubmitFailed(err)
	}

	log.Printf("📥 Match request %s submitted by %s (intent %s, mood %s)", request.ID, requesterID, intent, mood)

	result, err := s.matchmaking.AttemptMatch(ctx, request)
	if err != nil {
		log.Printf("⚠️ Immediate match attempt failed for %s: %v", request.ID, err)
	}
	if result != nil {
		request.Status = models.StatusMatched
		request.ConversationID = result.ConversationID
		if result.RequesterA == requesterID {
			request.PairedWith = result.RequesterB
		} else {
			request.PairedWith = result.RequesterA
		}
	}

	return request, result, nil
}

// Cancel withdraws a WAITING request. Only the request's owner may cancel it,
// and a request that already left the waiting pool cannot be cancelled.
func (s *RequestService) Cancel(ctx context.Context, requesterID string, requestID gocql.UUID) error {
	request, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return apperrors.ErrCancelFailed(err)
	}
	if request == nil {
		return apperrors.ErrRequestNotFound
	}
	if request.RequesterID != requesterID {
		// Do not reveal other requesters' requests
		return apperrors.ErrRequestNotFound
	}
	if request.Status != models.StatusWaiting {
		return apperrors.ErrRequestNotWaiting
	}

	ok, err := s.store.CompareAndSetStatus(ctx, requestID, models.StatusWaiting, models.StatusCancelled, "", gocql.UUID{})
	if err != nil {
		return apperrors.ErrCancelFailed(err)
	}
	if !ok {
		// Lost the race to the matcher or the sweeper.
		return apperrors.ErrRequestNotWaiting
	}

	if err := s.store.ReleaseActive(ctx, requesterID); err != nil {
		log.Printf("⚠️ Failed to release active claim for %s after cancel: %v", requesterID, err)
	}

	log.Printf("🚫 Match request %s cancelled by %s", requestID, requesterID)
	return nil
}

// GetActive returns the requester's current WAITING request, or nil when the
// requester has none.
func (s *RequestService) GetActive(ctx context.Context, requesterID string) (*models.MatchRequest, error) {
	return s.store.GetWaitingByRequester(ctx, requesterID)
}

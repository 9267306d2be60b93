package services

import (
	"context"
	"log"
	"time"

	"github.com/gocql/gocql"

	"talkmatch/app/models"
	redisservice "talkmatch/redis"
)

// MinMatchScore is the lowest compatibility score at which two waiting
// requests may be paired. Anything below it keeps both requests waiting.
const MinMatchScore = 30

const matchedCounterKey = "matchmaking:matched_total"

// MatchmakingService pairs waiting match requests. Pairing is atomic: a pair
// is formed only when both requests transition WAITING -> MATCHED through
// conditional writes, so a request can never end up in two conversations.
type MatchmakingService struct {
	store         MatchRequestStore
	conversations ConversationStore
	users         UserDirectory
	redisService  *redisservice.Service
}

func NewMatchmakingService(store MatchRequestStore, conversations ConversationStore, users UserDirectory, redisService *redisservice.Service) *MatchmakingService {
	return &MatchmakingService{
		store:         store,
		conversations: conversations,
		users:         users,
		redisService:  redisService,
	}
}

// FindBestCandidate scans the waiting pool for the best partner for seeker.
// Candidates below MinMatchScore, the seeker itself, other requests from the
// same requester and anyone in blocked are skipped. Ties on score go to the
// candidate who has been waiting longest.
func (s *MatchmakingService) FindBestCandidate(seeker *models.MatchRequest, pool []*models.MatchRequest, blocked map[string]struct{}) (*models.MatchRequest, int) {
	var best *models.MatchRequest
	bestScore := 0

	for _, candidate := range pool {
		if candidate.ID == seeker.ID {
			continue
		}
		if candidate.RequesterID == seeker.RequesterID {
			continue
		}
		if candidate.Status != models.StatusWaiting {
			continue
		}
		if _, isBlocked := blocked[candidate.RequesterID]; isBlocked {
			continue
		}

		score := CompatibilityScore(seeker, candidate)
		if score < MinMatchScore {
			continue
		}
		if score > bestScore || (score == bestScore && best != nil && candidate.CreatedAt.Before(best.CreatedAt)) {
			best = candidate
			bestScore = score
		}
	}

	return best, bestScore
}

// AttemptMatch tries to pair the seeker with the best waiting candidate. It
// returns (nil, nil) when no viable partner exists; the request simply keeps
// waiting. Internal failures are logged and also leave the seeker waiting
// rather than surfacing an error to the submit path.
func (s *MatchmakingService) AttemptMatch(ctx context.Context, seeker *models.MatchRequest) (*models.PairingResult, error) {
	if seeker == nil || seeker.Status != models.StatusWaiting {
		return nil, nil
	}

	blocked, err := s.users.BlockedUserIDs(ctx, seeker.RequesterID)
	if err != nil {
		log.Printf("⚠️ Matchmaking: block lookup failed for %s, skipping attempt: %v", seeker.RequesterID, err)
		return nil, nil
	}

	pool, err := s.store.ListWaiting(ctx)
	if err != nil {
		log.Printf("⚠️ Matchmaking: waiting pool scan failed: %v", err)
		return nil, nil
	}

	candidate, score := s.FindBestCandidate(seeker, pool, blocked)
	if candidate == nil {
		return nil, nil
	}

	conversationID := gocql.TimeUUID()

	claimed, err := s.store.CompareAndSetStatus(ctx, seeker.ID, models.StatusWaiting, models.StatusMatched, candidate.RequesterID, conversationID)
	if err != nil {
		log.Printf("❌ Matchmaking: seeker transition failed for %s: %v", seeker.ID, err)
		return nil, nil
	}
	if !claimed {
		// Someone else already took the seeker out of the pool.
		return nil, nil
	}

	claimed, err = s.store.CompareAndSetStatus(ctx, candidate.ID, models.StatusWaiting, models.StatusMatched, seeker.RequesterID, conversationID)
	if err != nil || !claimed {
		if err != nil {
			log.Printf("❌ Matchmaking: candidate transition failed for %s: %v", candidate.ID, err)
		}
		s.rollbackToWaiting(ctx, seeker.ID)
		return nil, nil
	}

	conversation := &models.Conversation{
		ID:              conversationID,
		ParticipantA:    seeker.RequesterID,
		ParticipantB:    candidate.RequesterID,
		MatchScore:      score,
		Intent:          seeker.Intent,
		OriginSessionID: seeker.OriginSessionID,
		CreatedAt:       time.Now(),
	}
	if err := s.conversations.Insert(ctx, conversation); err != nil {
		log.Printf("❌ Matchmaking: conversation insert failed, rolling back pair %s/%s: %v", seeker.ID, candidate.ID, err)
		s.rollbackToWaiting(ctx, seeker.ID)
		s.rollbackToWaiting(ctx, candidate.ID)
		return nil, nil
	}

	s.releaseClaim(ctx, seeker.RequesterID)
	s.releaseClaim(ctx, candidate.RequesterID)

	if s.redisService != nil {
		if _, err := s.redisService.IncrementCounter(matchedCounterKey); err != nil {
			log.Printf("⚠️ Matchmaking: counter increment failed: %v", err)
		}
	}

	log.Printf("✅ Matched %s with %s (score %d, conversation %s)", seeker.RequesterID, candidate.RequesterID, score, conversationID)

	return &models.PairingResult{
		ConversationID: conversationID,
		RequesterA:     seeker.RequesterID,
		RequesterB:     candidate.RequesterID,
		Score:          score,
		Intent:         seeker.Intent,
	}, nil
}

func (s *MatchmakingService) rollbackToWaiting(ctx context.Context, id gocql.UUID) {
	ok, err := s.store.CompareAndSetStatus(ctx, id, models.StatusMatched, models.StatusWaiting, "", gocql.UUID{})
	if err != nil || !ok {
		log.Printf("❌ Matchmaking: rollback to WAITING failed for %s: %v", id, err)
	}
}

func (s *MatchmakingService) releaseClaim(ctx context.Context, requesterID string) {
	if err := s.store.ReleaseActive(ctx, requesterID); err != nil {
		log.Printf("⚠️ Matchmaking: failed to release active claim for %s: %v", requesterID, err)
	}
}

// MatchStats is the snapshot served by the stats endpoint.
type MatchStats struct {
	WaitingCount     int   `json:"waiting_count"`
	MatchedTotal     int64 `json:"matched_total"`
	ConnectedSockets int64 `json:"connected_sockets"`
}

// Stats reports the current waiting-pool size, the lifetime matched counter
// and how many sockets are registered right now.
func (s *MatchmakingService) Stats(ctx context.Context) (*MatchStats, error) {
	pool, err := s.store.ListWaiting(ctx)
	if err != nil {
		return nil, err
	}

	stats := &MatchStats{WaitingCount: len(pool)}

	if s.redisService != nil {
		if total, err := s.redisService.GetCounter(matchedCounterKey); err == nil {
			stats.MatchedTotal = total
		}
		if count, err := s.redisService.GetConnectionCount(); err == nil {
			stats.ConnectedSockets = count
		}
	}

	return stats, nil
}

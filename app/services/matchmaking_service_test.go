package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkmatch/app/models"
)

func newTestMatchmaking(store *memStore, conversations *memConversations, directory *memDirectory) *MatchmakingService {
	return NewMatchmakingService(store, conversations, directory, nil)
}

func TestFindBestCandidateThreshold(t *testing.T) {
	store := newMemStore()
	directory := newMemDirectory()
	service := newTestMatchmaking(store, newMemConversations(), directory)

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())

	// Incompatible on every dimension except the mood baseline, so the best
	// possible score stays below the acceptance threshold.
	weak := seedWaiting(t, store, "weak", models.IntentAdvice, models.MoodExcited, time.Now())
	weak.Language = "vi"
	weak.Timezone = "UTC+9"
	weak.Topics = []string{"music"}

	candidate, _ := service.FindBestCandidate(seeker, []*models.MatchRequest{weak}, nil)
	assert.Nil(t, candidate, "candidates below the acceptance threshold must never be returned")
}

func TestFindBestCandidateSkipsSelfAndBlocked(t *testing.T) {
	store := newMemStore()
	directory := newMemDirectory()
	service := newTestMatchmaking(store, newMemConversations(), directory)

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())
	blockedCandidate := seedWaiting(t, store, "blocked-user", models.IntentJustListen, models.MoodHopeful, time.Now())

	pool := []*models.MatchRequest{seeker, blockedCandidate}

	blocked := map[string]struct{}{"blocked-user": {}}
	candidate, _ := service.FindBestCandidate(seeker, pool, blocked)
	assert.Nil(t, candidate, "blocked candidates must be excluded")

	candidate, score := service.FindBestCandidate(seeker, pool, nil)
	require.NotNil(t, candidate)
	assert.Equal(t, "blocked-user", candidate.RequesterID)
	assert.GreaterOrEqual(t, score, MinMatchScore)
}

func TestFindBestCandidatePrefersHigherScore(t *testing.T) {
	store := newMemStore()
	service := newTestMatchmaking(store, newMemConversations(), newMemDirectory())

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())

	// Partial intent overlap only.
	okCandidate := seedWaiting(t, store, "partial", models.IntentAdvice, models.MoodSad, time.Now().Add(-time.Hour))
	// Compatible intent and the best mood pairing.
	strongCandidate := seedWaiting(t, store, "strong", models.IntentJustListen, models.MoodHopeful, time.Now())

	candidate, score := service.FindBestCandidate(seeker, []*models.MatchRequest{okCandidate, strongCandidate}, nil)
	require.NotNil(t, candidate)
	assert.Equal(t, "strong", candidate.RequesterID)
	assert.Equal(t, 90, score)
}

func TestFindBestCandidateTieBreakEarliestCreated(t *testing.T) {
	store := newMemStore()
	service := newTestMatchmaking(store, newMemConversations(), newMemDirectory())

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())

	later := seedWaiting(t, store, "later", models.IntentJustListen, models.MoodHopeful, time.Now())
	earlier := seedWaiting(t, store, "earlier", models.IntentJustListen, models.MoodHopeful, time.Now().Add(-10*time.Minute))

	// Same profile, same score; the longer-waiting candidate wins regardless
	// of pool order.
	candidate, _ := service.FindBestCandidate(seeker, []*models.MatchRequest{later, earlier}, nil)
	require.NotNil(t, candidate)
	assert.Equal(t, "earlier", candidate.RequesterID)

	candidate, _ = service.FindBestCandidate(seeker, []*models.MatchRequest{earlier, later}, nil)
	require.NotNil(t, candidate)
	assert.Equal(t, "earlier", candidate.RequesterID)
}

func TestAttemptMatchPairsAndCreatesConversation(t *testing.T) {
	store := newMemStore()
	conversations := newMemConversations()
	service := newTestMatchmaking(store, conversations, newMemDirectory())

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())
	candidate := seedWaiting(t, store, "candidate", models.IntentJustListen, models.MoodHopeful, time.Now())

	result, err := service.AttemptMatch(context.Background(), seeker)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.ElementsMatch(t, []string{"seeker", "candidate"}, result.Participants())
	assert.Equal(t, 90, result.Score)
	assert.Equal(t, models.IntentVent, result.Intent)

	assert.Equal(t, models.StatusMatched, store.statusOf(seeker.ID))
	assert.Equal(t, models.StatusMatched, store.statusOf(candidate.ID))

	conversation, err := conversations.GetByID(context.Background(), result.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, conversation)
	assert.True(t, conversation.HasParticipant("seeker"))
	assert.True(t, conversation.HasParticipant("candidate"))
	assert.Equal(t, 90, conversation.MatchScore)

	// Both active claims were released, so both users may submit again.
	ok, err := store.ClaimActive(context.Background(), "seeker", seeker.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttemptMatchNoCandidateLeavesSeekerWaiting(t *testing.T) {
	store := newMemStore()
	service := newTestMatchmaking(store, newMemConversations(), newMemDirectory())

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())

	result, err := service.AttemptMatch(context.Background(), seeker)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, models.StatusWaiting, store.statusOf(seeker.ID))
}

func TestAttemptMatchRollsBackWhenCandidateAlreadyClaimed(t *testing.T) {
	store := newMemStore()
	conversations := newMemConversations()
	service := newTestMatchmaking(store, conversations, newMemDirectory())

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())
	candidate := seedWaiting(t, store, "candidate", models.IntentJustListen, models.MoodHopeful, time.Now())

	// The candidate is taken between pool listing and the conditional write.
	ok, err := store.CompareAndSetStatus(context.Background(), candidate.ID, models.StatusWaiting, models.StatusMatched, "someone-else", candidate.ID)
	require.NoError(t, err)
	require.True(t, ok)

	result, err := service.AttemptMatch(context.Background(), seeker)
	require.NoError(t, err)
	assert.Nil(t, result)

	// The seeker must be rolled back into the pool, not stranded as MATCHED.
	assert.Equal(t, models.StatusWaiting, store.statusOf(seeker.ID))
	assert.Zero(t, conversations.count())
}

func TestAttemptMatchRollsBackBothOnConversationFailure(t *testing.T) {
	store := newMemStore()
	conversations := newMemConversations()
	conversations.insertErr = errors.New("cassandra write timeout")
	service := newTestMatchmaking(store, conversations, newMemDirectory())

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())
	candidate := seedWaiting(t, store, "candidate", models.IntentJustListen, models.MoodHopeful, time.Now())

	result, err := service.AttemptMatch(context.Background(), seeker)
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.Equal(t, models.StatusWaiting, store.statusOf(seeker.ID))
	assert.Equal(t, models.StatusWaiting, store.statusOf(candidate.ID))
}

func TestAttemptMatchExcludesBlockedPairsBothDirections(t *testing.T) {
	store := newMemStore()
	directory := newMemDirectory()
	service := newTestMatchmaking(store, newMemConversations(), directory)

	seeker := seedWaiting(t, store, "seeker", models.IntentVent, models.MoodSad, time.Now())
	seedWaiting(t, store, "other", models.IntentJustListen, models.MoodHopeful, time.Now())

	// Block in the reverse direction: the candidate blocked the seeker.
	directory.block("other", "seeker")

	result, err := service.AttemptMatch(context.Background(), seeker)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, models.StatusWaiting, store.statusOf(seeker.ID))
}

func TestAttemptMatchConcurrentSeekersNeverDoubleBook(t *testing.T) {
	store := newMemStore()
	conversations := newMemConversations()
	directory := newMemDirectory()
	service := newTestMatchmaking(store, conversations, directory)

	// Every seeker blocks every other seeker, so the lone candidate is the
	// only viable partner for all of them.
	const seekers = 8
	requests := make([]*models.MatchRequest, 0, seekers)
	for i := 0; i < seekers; i++ {
		id := string(rune('a'+i)) + "-seeker"
		requests = append(requests, seedWaiting(t, store, id, models.IntentVent, models.MoodSad, time.Now()))
	}
	for i := 0; i < seekers; i++ {
		for j := i + 1; j < seekers; j++ {
			directory.block(requests[i].RequesterID, requests[j].RequesterID)
		}
	}
	candidate := seedWaiting(t, store, "candidate", models.IntentJustListen, models.MoodHopeful, time.Now())

	var wg sync.WaitGroup
	results := make([]*models.PairingResult, seekers)
	for i := 0; i < seekers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := service.AttemptMatch(context.Background(), requests[i])
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	paired := 0
	for _, result := range results {
		if result != nil {
			paired++
		}
	}
	assert.Equal(t, 1, paired, "exactly one seeker may claim the candidate")
	assert.Equal(t, models.StatusMatched, store.statusOf(candidate.ID))
	assert.Equal(t, 1, conversations.count())

	// Every loser must be back in the pool.
	waiting, err := store.ListWaiting(context.Background())
	require.NoError(t, err)
	assert.Len(t, waiting, seekers-1)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"talkmatch/app/models"
)

// MatchRequestStore persists match requests. Every status transition is a
// conditional write guarded by the expected prior status; the store never
// exposes a plain "set status" operation.
type MatchRequestStore interface {
	Insert(ctx context.Context, req *models.MatchRequest) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.MatchRequest, error)
	GetWaitingByRequester(ctx context.Context, requesterID string) (*models.MatchRequest, error)
	ListWaiting(ctx context.Context) ([]*models.MatchRequest, error)
	ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]*models.MatchRequest, error)

	// CompareAndSetStatus transitions a request from expected to next only if
	// the row's status still equals expected at write time. Returns whether
	// the write was applied.
	CompareAndSetStatus(ctx context.Context, id gocql.UUID, expected, next models.RequestStatus, pairedWith string, conversationID gocql.UUID) (bool, error)

	// ClaimActive atomically claims the one-waiting-request-per-requester
	// slot. Returns false when the requester already holds a claim.
	ClaimActive(ctx context.Context, requesterID string, requestID gocql.UUID) (bool, error)
	ReleaseActive(ctx context.Context, requesterID string) error
}

// ConversationStore persists conversations created by successful pairings
type ConversationStore interface {
	Insert(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.Conversation, error)
}

const matchRequestColumns = "id, requester_id, intent, mood, language, timezone, topics, status, paired_with, conversation_id, origin_session_id, created_at, updated_at"

// CassandraMatchRequestStore is the Cassandra-backed MatchRequestStore.
// Conditional writes use lightweight transactions (IF clauses), which is what
// makes concurrent pairing attempts race-free across process instances.
type CassandraMatchRequestStore struct {
	session *gocql.Session
}

// NewCassandraMatchRequestStore creates a Cassandra-backed request store
func NewCassandraMatchRequestStore(session *gocql.Session) *CassandraMatchRequestStore {
	return &CassandraMatchRequestStore{session: session}
}

// Insert stores a new match request row
func (s *CassandraMatchRequestStore) Insert(ctx context.Context, req *models.MatchRequest) error {
	err := s.session.Query(`
		INSERT INTO match_requests (`+matchRequestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.ID, req.RequesterID, string(req.Intent), string(req.Mood), req.Language, req.Timezone,
		req.Topics, string(req.Status), req.PairedWith, req.ConversationID, req.OriginSessionID,
		req.CreatedAt, req.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to insert match request: %v", err)
	}
	return nil
}

func (s *CassandraMatchRequestStore) scanRequest(scanner interface {
	Scan(...interface{}) error
}) (*models.MatchRequest, error) {
	var req models.MatchRequest
	var intent, mood, status string
	err := scanner.Scan(&req.ID, &req.RequesterID, &intent, &mood, &req.Language, &req.Timezone,
		&req.Topics, &status, &req.PairedWith, &req.ConversationID, &req.OriginSessionID,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	req.Intent = models.Intent(intent)
	req.Mood = models.Mood(mood)
	req.Status = models.RequestStatus(status)
	return &req, nil
}

// GetByID retrieves a request by id; (nil, nil) when absent
func (s *CassandraMatchRequestStore) GetByID(ctx context.Context, id gocql.UUID) (*models.MatchRequest, error) {
	q := s.session.Query(`
		SELECT `+matchRequestColumns+`
		FROM match_requests WHERE id = ?
	`, id).WithContext(ctx)

	req, err := s.scanRequest(q)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match request %s: %v", id, err)
	}
	return req, nil
}

// GetWaitingByRequester finds the requester's WAITING request, if any
func (s *CassandraMatchRequestStore) GetWaitingByRequester(ctx context.Context, requesterID string) (*models.MatchRequest, error) {
	q := s.session.Query(`
		SELECT `+matchRequestColumns+`
		FROM match_requests WHERE requester_id = ? AND status = ? LIMIT 1 ALLOW FILTERING
	`, requesterID, string(models.StatusWaiting)).WithContext(ctx)

	req, err := s.scanRequest(q)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting request for %s: %v", requesterID, err)
	}
	return req, nil
}

func (s *CassandraMatchRequestStore) listWaiting(ctx context.Context, query string, bind ...interface{}) ([]*models.MatchRequest, error) {
	iter := s.session.Query(query, bind...).WithContext(ctx).Iter()

	var requests []*models.MatchRequest
	for {
		var req models.MatchRequest
		var intent, mood, status string
		ok := iter.Scan(&req.ID, &req.RequesterID, &intent, &mood, &req.Language, &req.Timezone,
			&req.Topics, &status, &req.PairedWith, &req.ConversationID, &req.OriginSessionID,
			&req.CreatedAt, &req.UpdatedAt)
		if !ok {
			break
		}
		req.Intent = models.Intent(intent)
		req.Mood = models.Mood(mood)
		req.Status = models.RequestStatus(status)
		requests = append(requests, &req)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list waiting requests: %v", err)
	}
	return requests, nil
}

// ListWaiting returns the full waiting pool
func (s *CassandraMatchRequestStore) ListWaiting(ctx context.Context) ([]*models.MatchRequest, error) {
	return s.listWaiting(ctx, `
		SELECT `+matchRequestColumns+`
		FROM match_requests WHERE status = ? ALLOW FILTERING
	`, string(models.StatusWaiting))
}

// ListWaitingBefore returns waiting requests created before the cutoff
func (s *CassandraMatchRequestStore) ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]*models.MatchRequest, error) {
	return s.listWaiting(ctx, `
		SELECT `+matchRequestColumns+`
		FROM match_requests WHERE status = ? AND created_at < ? ALLOW FILTERING
	`, string(models.StatusWaiting), cutoff)
}

// CompareAndSetStatus performs the conditional status transition as a
// lightweight transaction
func (s *CassandraMatchRequestStore) CompareAndSetStatus(ctx context.Context, id gocql.UUID, expected, next models.RequestStatus, pairedWith string, conversationID gocql.UUID) (bool, error) {
	applied, err := s.session.Query(`
		UPDATE match_requests
		SET status = ?, paired_with = ?, conversation_id = ?, updated_at = ?
		WHERE id = ? IF status = ?
	`, string(next), pairedWith, conversationID, time.Now().UTC(), id, string(expected)).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, fmt.Errorf("failed to CAS match request %s %s->%s: %v", id, expected, next, err)
	}
	return applied, nil
}

// ClaimActive enforces the at-most-one-WAITING-request invariant with an
// INSERT ... IF NOT EXISTS
func (s *CassandraMatchRequestStore) ClaimActive(ctx context.Context, requesterID string, requestID gocql.UUID) (bool, error) {
	applied, err := s.session.Query(`
		INSERT INTO active_match_requests (requester_id, request_id)
		VALUES (?, ?) IF NOT EXISTS
	`, requesterID, requestID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, fmt.Errorf("failed to claim active slot for %s: %v", requesterID, err)
	}
	return applied, nil
}

// ReleaseActive frees the requester's active slot
func (s *CassandraMatchRequestStore) ReleaseActive(ctx context.Context, requesterID string) error {
	err := s.session.Query(`
		DELETE FROM active_match_requests WHERE requester_id = ?
	`, requesterID).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to release active slot for %s: %v", requesterID, err)
	}
	return nil
}

// CassandraConversationStore is the Cassandra-backed ConversationStore
type CassandraConversationStore struct {
	session *gocql.Session
}

// NewCassandraConversationStore creates a Cassandra-backed conversation store
func NewCassandraConversationStore(session *gocql.Session) *CassandraConversationStore {
	return &CassandraConversationStore{session: session}
}

// Insert stores a conversation row
func (s *CassandraConversationStore) Insert(ctx context.Context, conv *models.Conversation) error {
	err := s.session.Query(`
		INSERT INTO conversations (id, participant_a, participant_b, match_score, intent, origin_session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, conv.ID, conv.ParticipantA, conv.ParticipantB, conv.MatchScore, string(conv.Intent),
		conv.OriginSessionID, conv.CreatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %v", err)
	}
	return nil
}

// GetByID retrieves a conversation; (nil, nil) when absent
func (s *CassandraConversationStore) GetByID(ctx context.Context, id gocql.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	var intent string
	err := s.session.Query(`
		SELECT id, participant_a, participant_b, match_score, intent, origin_session_id, created_at
		FROM conversations WHERE id = ?
	`, id).WithContext(ctx).Scan(&conv.ID, &conv.ParticipantA, &conv.ParticipantB,
		&conv.MatchScore, &intent, &conv.OriginSessionID, &conv.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %v", id, err)
	}
	conv.Intent = models.Intent(intent)
	return &conv, nil
}

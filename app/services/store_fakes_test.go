package services

import (
	"context"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"talkmatch/app/models"
)

// memStore is an in-memory MatchRequestStore with the same conditional-write
// semantics as the Cassandra store. All mutations happen under one mutex so
// concurrent pairing attempts race exactly like competing lightweight
// transactions do.
type memStore struct {
	mu        sync.Mutex
	requests  map[gocql.UUID]*models.MatchRequest
	claims    map[string]gocql.UUID
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		requests: make(map[gocql.UUID]*models.MatchRequest),
		claims:   make(map[string]gocql.UUID),
	}
}

func (s *memStore) Insert(ctx context.Context, request *models.MatchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	clone := *request
	s.requests[request.ID] = &clone
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id gocql.UUID) (*models.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *request
	return &clone, nil
}

func (s *memStore) GetWaitingByRequester(ctx context.Context, requesterID string) (*models.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, request := range s.requests {
		if request.RequesterID == requesterID && request.Status == models.StatusWaiting {
			clone := *request
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListWaiting(ctx context.Context) ([]*models.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var waiting []*models.MatchRequest
	for _, request := range s.requests {
		if request.Status == models.StatusWaiting {
			clone := *request
			waiting = append(waiting, &clone)
		}
	}
	return waiting, nil
}

func (s *memStore) ListWaitingBefore(ctx context.Context, cutoff time.Time) ([]*models.MatchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []*models.MatchRequest
	for _, request := range s.requests {
		if request.Status == models.StatusWaiting && request.CreatedAt.Before(cutoff) {
			clone := *request
			stale = append(stale, &clone)
		}
	}
	return stale, nil
}

func (s *memStore) CompareAndSetStatus(ctx context.Context, id gocql.UUID, expected, next models.RequestStatus, pairedWith string, conversationID gocql.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok || request.Status != expected {
		return false, nil
	}
	request.Status = next
	request.PairedWith = pairedWith
	request.ConversationID = conversationID
	request.UpdatedAt = time.Now()
	return true, nil
}

func (s *memStore) ClaimActive(ctx context.Context, requesterID string, requestID gocql.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.claims[requesterID]; taken {
		return false, nil
	}
	s.claims[requesterID] = requestID
	return true, nil
}

func (s *memStore) ReleaseActive(ctx context.Context, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, requesterID)
	return nil
}

func (s *memStore) statusOf(id gocql.UUID) models.RequestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if request, ok := s.requests[id]; ok {
		return request.Status
	}
	return ""
}

// memConversations is an in-memory ConversationStore.
type memConversations struct {
	mu            sync.Mutex
	conversations map[gocql.UUID]*models.Conversation
	insertErr     error
}

func newMemConversations() *memConversations {
	return &memConversations{conversations: make(map[gocql.UUID]*models.Conversation)}
}

func (s *memConversations) Insert(ctx context.Context, conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	clone := *conversation
	s.conversations[conversation.ID] = &clone
	return nil
}

func (s *memConversations) GetByID(ctx context.Context, id gocql.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	clone := *conversation
	return &clone, nil
}

func (s *memConversations) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// memDirectory is an in-memory UserDirectory.
type memDirectory struct {
	mu     sync.Mutex
	banned map[string]bool
	prefs  map[string]*models.UserPreferences
	blocks map[string]map[string]struct{}
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		banned: make(map[string]bool),
		prefs:  make(map[string]*models.UserPreferences),
		blocks: make(map[string]map[string]struct{}),
	}
}

func (d *memDirectory) IsBanned(ctx context.Context, requesterID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.banned[requesterID], nil
}

func (d *memDirectory) Preferences(ctx context.Context, requesterID string) (*models.UserPreferences, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prefs, ok := d.prefs[requesterID]; ok {
		clone := *prefs
		return &clone, nil
	}
	return &models.UserPreferences{Language: "en", Timezone: "UTC"}, nil
}

func (d *memDirectory) BlockedUserIDs(ctx context.Context, requesterID string) (map[string]struct{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	blocked := make(map[string]struct{})
	for other := range d.blocks[requesterID] {
		blocked[other] = struct{}{}
	}
	for blocker, targets := range d.blocks {
		if _, ok := targets[requesterID]; ok {
			blocked[blocker] = struct{}{}
		}
	}
	return blocked, nil
}

func (d *memDirectory) block(blocker, blocked string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.blocks[blocker] == nil {
		d.blocks[blocker] = make(map[string]struct{})
	}
	d.blocks[blocker][blocked] = struct{}{}
}

func seedWaiting(t interface{ Fatalf(string, ...interface{}) }, store *memStore, requesterID string, intent models.Intent, mood models.Mood, createdAt time.Time) *models.MatchRequest {
	request := &models.MatchRequest{
		ID:          gocql.TimeUUID(),
		RequesterID: requesterID,
		Intent:      intent,
		Mood:        mood,
		Language:    "en",
		Timezone:    "UTC+0",
		Topics:      []string{"grief"},
		Status:      models.StatusWaiting,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if ok, err := store.ClaimActive(context.Background(), requesterID, request.ID); err != nil || !ok {
		t.Fatalf("failed to claim active slot for %s: %v", requesterID, err)
	}
	if err := store.Insert(context.Background(), request); err != nil {
		t.Fatalf("failed to seed request for %s: %v", requesterID, err)
	}
	return request
}

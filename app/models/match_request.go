package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
)

// Intent is the stated reason a requester wants to talk
type Intent string

const (
	IntentVent       Intent = "VENT"
	IntentCasualChat Intent = "CASUAL_CHAT"
	IntentDeepTalk   Intent = "DEEP_TALK"
	IntentAdvice     Intent = "ADVICE"
	IntentJustListen Intent = "JUST_LISTEN"
)

// ParseIntent validates and normalizes an intent string
func ParseIntent(s string) (Intent, bool) {
	intent := Intent(strings.ToUpper(strings.TrimSpace(s)))
	switch intent {
	case IntentVent, IntentCasualChat, IntentDeepTalk, IntentAdvice, IntentJustListen:
		return intent, true
	}
	return "", false
}

// Mood is the requester's self-reported mood at submit time
type Mood string

const (
	MoodHappy       Mood = "HAPPY"
	MoodSad         Mood = "SAD"
	MoodAnxious     Mood = "ANXIOUS"
	MoodLonely      Mood = "LONELY"
	MoodAngry       Mood = "ANGRY"
	MoodNeutral     Mood = "NEUTRAL"
	MoodExcited     Mood = "EXCITED"
	MoodTired       Mood = "TIRED"
	MoodOverwhelmed Mood = "OVERWHELMED"
	MoodHopeful     Mood = "HOPEFUL"
)

// ParseMood validates and normalizes a mood string
func ParseMood(s string) (Mood, bool) {
	mood := Mood(strings.ToUpper(strings.TrimSpace(s)))
	switch mood {
	case MoodHappy, MoodSad, MoodAnxious, MoodLonely, MoodAngry,
		MoodNeutral, MoodExcited, MoodTired, MoodOverwhelmed, MoodHopeful:
		return mood, true
	}
	return "", false
}

// RequestStatus is the lifecycle state of a match request.
// Transitions are one-way: WAITING -> MATCHED | EXPIRED | CANCELLED.
type RequestStatus string

const (
	StatusWaiting   RequestStatus = "WAITING"
	StatusMatched   RequestStatus = "MATCHED"
	StatusExpired   RequestStatus = "EXPIRED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// MatchRequest represents one pending or resolved request to be paired
type MatchRequest struct {
	ID              gocql.UUID    `json:"id" cql:"id"`
	RequesterID     string        `json:"requester_id" cql:"requester_id"`
	Intent          Intent        `json:"intent" cql:"intent"`
	Mood            Mood          `json:"mood" cql:"mood"`
	Language        string        `json:"language" cql:"language"`
	Timezone        string        `json:"timezone" cql:"timezone"`
	Topics          []string      `json:"topics" cql:"topics"`
	Status          RequestStatus `json:"status" cql:"status"`
	PairedWith      string        `json:"paired_with,omitempty" cql:"paired_with"`
	ConversationID  gocql.UUID    `json:"conversation_id,omitempty" cql:"conversation_id"`
	OriginSessionID string        `json:"origin_session_id,omitempty" cql:"origin_session_id"`
	CreatedAt       time.Time     `json:"created_at" cql:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" cql:"updated_at"`
}

// CreateMatchRequestRequest represents the submit-request payload
type CreateMatchRequestRequest struct {
	Intent          string   `json:"intent"`
	Mood            string   `json:"mood,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	OriginSessionID string   `json:"origin_session_id,omitempty"`
}

// PairingResult is the outcome of a successful pairing transaction
type PairingResult struct {
	ConversationID gocql.UUID `json:"conversation_id"`
	RequesterA     string     `json:"requester_a"`
	RequesterB     string     `json:"requester_b"`
	Score          int        `json:"score"`
	Intent         Intent     `json:"intent"`
}

// Participants returns both requester ids of a pairing
func (p *PairingResult) Participants() []string {
	return []string{p.RequesterA, p.RequesterB}
}

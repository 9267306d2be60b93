package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Conversation is the two-participant chat record created by a successful
// pairing. The match score and originating intent are kept as metadata so
// downstream collaborators can open the channel with context.
type Conversation struct {
	ID              gocql.UUID `json:"id" cql:"id"`
	ParticipantA    string     `json:"participant_a" cql:"participant_a"`
	ParticipantB    string     `json:"participant_b" cql:"participant_b"`
	MatchScore      int        `json:"match_score" cql:"match_score"`
	Intent          Intent     `json:"intent" cql:"intent"`
	OriginSessionID string     `json:"origin_session_id,omitempty" cql:"origin_session_id"`
	CreatedAt       time.Time  `json:"created_at" cql:"created_at"`
}

// HasParticipant reports whether the given requester is part of the conversation
func (c *Conversation) HasParticipant(requesterID string) bool {
	return c.ParticipantA == requesterID || c.ParticipantB == requesterID
}

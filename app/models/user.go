package models

import "time"

// User statuses as stored by the accounts collaborator
const (
	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

// User is the slice of the accounts record the matching engine reads:
// ban state and saved matching preferences. Accounts themselves are managed
// by an external system; this service never writes users.
type User struct {
	UserID       string     `bson:"user_id" json:"user_id"`
	Status       string     `bson:"status" json:"status"`
	BanExpiresAt *time.Time `bson:"ban_expires_at,omitempty" json:"ban_expires_at,omitempty"`
	Language     string     `bson:"language,omitempty" json:"language,omitempty"`
	Timezone     string     `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Topics       []string   `bson:"topics,omitempty" json:"topics,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// Banned reports whether the user is currently banned. A temporary ban with
// an expiry in the past no longer counts.
func (u *User) Banned(now time.Time) bool {
	if u.Status != UserStatusBanned {
		return false
	}
	if u.BanExpiresAt == nil {
		return true
	}
	return now.Before(*u.BanExpiresAt)
}

// UserPreferences are the saved defaults applied to a match request when the
// submit payload leaves them out
type UserPreferences struct {
	Language string   `json:"language"`
	Timezone string   `json:"timezone"`
	Topics   []string `json:"topics"`
}

// Block is an asymmetric "blocker blocks blocked" edge. The matcher excludes
// candidates connected to the seeker by a block edge in either direction.
type Block struct {
	BlockerID string    `bson:"blocker_id" json:"blocker_id"`
	BlockedID string    `bson:"blocked_id" json:"blocked_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

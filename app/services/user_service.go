package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"talkmatch/app/models"
)

// UserDirectory answers the questions the pairing flow asks about users:
// standing, stored preferences and block relationships.
type UserDirectory interface {
	IsBanned(ctx context.Context, requesterID string) (bool, error)
	Preferences(ctx context.Context, requesterID string) (*models.UserPreferences, error)
	BlockedUserIDs(ctx context.Context, requesterID string) (map[string]struct{}, error)
}

// UserService reads user standing and preferences from MongoDB.
type UserService struct {
	users  *mongo.Collection
	blocks *mongo.Collection
}

func NewUserService(users, blocks *mongo.Collection) *UserService {
	return &UserService{
		users:  users,
		blocks: blocks,
	}
}

// IsBanned reports whether the requester is currently banned. A ban with an
// expiry in the past no longer counts. Unknown users are not banned.
func (s *UserService) IsBanned(ctx context.Context, requesterID string) (bool, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"user_id": requesterID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		log.Printf("❌ Failed to load user %s: %v", requesterID, err)
		return false, err
	}

	return user.Banned(time.Now()), nil
}

// Preferences returns the requester's stored matching preferences. Users
// without a profile get the defaults.
func (s *UserService) Preferences(ctx context.Context, requesterID string) (*models.UserPreferences, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"user_id": requesterID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return defaultPreferences(), nil
	}
	if err != nil {
		log.Printf("❌ Failed to load preferences for %s: %v", requesterID, err)
		return nil, err
	}

	prefs := &models.UserPreferences{
		Language: user.Language,
		Timezone: user.Timezone,
		Topics:   user.Topics,
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}
	if prefs.Timezone == "" {
		prefs.Timezone = "UTC"
	}
	return prefs, nil
}

// BlockedUserIDs returns every user the requester has blocked plus every user
// who has blocked the requester. Blocks exclude pairing in both directions.
func (s *UserService) BlockedUserIDs(ctx context.Context, requesterID string) (map[string]struct{}, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"blocker_id": requesterID},
			{"blocked_id": requesterID},
		},
	}

	cursor, err := s.blocks.Find(ctx, filter)
	if err != nil {
		log.Printf("❌ Failed to load blocks for %s: %v", requesterID, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	blocked := make(map[string]struct{})
	for cursor.Next(ctx) {
		var block models.Block
		if err := cursor.Decode(&block); err != nil {
			log.Printf("⚠️ Skipping undecodable block row for %s: %v", requesterID, err)
			continue
		}
		if block.BlockerID == requesterID {
			blocked[block.BlockedID] = struct{}{}
		} else {
			blocked[block.BlockerID] = struct{}{}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return blocked, nil
}

func defaultPreferences() *models.UserPreferences {
	return &models.UserPreferences{
		Language: "en",
		Timezone: "UTC",
	}
}

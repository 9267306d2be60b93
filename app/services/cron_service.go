package services

import (
	"context"
	"log"
	"time"

	"github.com/gocql/gocql"

	"talkmatch/app/models"
)

// CronService expires match requests that waited too long. Each expired
// request is moved WAITING -> EXPIRED through a conditional write, so a
// request matched or cancelled mid-sweep is left alone.
type CronService struct {
	store     MatchRequestStore
	ttl       time.Duration
	stopChan  chan bool
	isRunning bool
}

// NewCronService creates a new cron service instance
func NewCronService(store MatchRequestStore, ttl time.Duration) *CronService {
	return &CronService{
		store:    store,
		ttl:      ttl,
		stopChan: make(chan bool),
	}
}

// StartExpirySweeper starts the background expiry sweep loop
func (c *CronService) StartExpirySweeper(interval time.Duration) {
	if c.isRunning {
		log.Println("⚠️ Expiry sweeper is already running")
		return
	}

	c.isRunning = true
	log.Printf("🚀 Starting expiry sweeper (interval: %v, ttl: %v)", interval, c.ttl)

	go func() {
		for {
			if expired, err := c.SweepOnce(context.Background()); err != nil {
				log.Printf("❌ Expiry sweep failed: %v", err)
			} else if expired > 0 {
				log.Printf("⏰ Expired %d stale match requests", expired)
			}

			select {
			case <-c.stopChan:
				log.Println("🛑 Stopping expiry sweeper")
				return
			case <-time.After(interval):
				// Loop continues
			}
		}
	}()
}

// StopExpirySweeper stops the background sweep loop
func (c *CronService) StopExpirySweeper() {
	if !c.isRunning {
		log.Println("⚠️ Expiry sweeper is not running")
		return
	}

	c.isRunning = false
	c.stopChan <- true
	log.Println("🛑 Expiry sweeper stopped")
}

// SweepOnce expires every WAITING request older than the TTL and returns how
// many it expired. Per-request failures are logged and skipped so one bad row
// cannot stall the sweep.
func (c *CronService) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-c.ttl)

	stale, err := c.store.ListWaitingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, request := range stale {
		ok, err := c.store.CompareAndSetStatus(ctx, request.ID, models.StatusWaiting, models.StatusExpired, "", gocql.UUID{})
		if err != nil {
			log.Printf("⚠️ Failed to expire request %s: %v", request.ID, err)
			continue
		}
		if !ok {
			// Matched or cancelled since we listed it.
			continue
		}
		if err := c.store.ReleaseActive(ctx, request.RequesterID); err != nil {
			log.Printf("⚠️ Failed to release active claim for %s after expiry: %v", request.RequesterID, err)
		}
		expired++
	}

	return expired, nil
}

package services

import (
	"log"
	"time"
)

// ReservationSweeper periodically expires held reservations that were never
// confirmed within the hold TTL. Expiry reuses the same cancellation path as
// everything else, so swept holds keep their audit fields.
type ReservationSweeper struct {
	availability *AvailabilityService
	interval     time.Duration
	ttl          time.Duration
	stop         chan struct{}
	done         chan struct{}
}

func NewReservationSweeper(availability *AvailabilityService, interval, ttl time.Duration) *ReservationSweeper {
	return &ReservationSweeper{
		availability: availability,
		interval:     interval,
		ttl:          ttl,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine.
func (s *ReservationSweeper) Start() {
	log.Printf("Starting reservation sweeper: interval %s, hold TTL %s", s.interval, s.ttl)
	go s.loop()
}

// Stop shuts the loop down and waits for the in-flight sweep to finish.
func (s *ReservationSweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *ReservationSweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := s.availability.ExpireStaleHolds(s.ttl)
			if err != nil {
				log.Printf("Reservation sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("Expired %d stale reservation holds", expired)
			}
		case <-s.stop:
			return
		}
	}
}

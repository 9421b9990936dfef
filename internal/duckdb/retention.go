package duckdb

import (
	"log"
	"sync"
	"time"
)

const retentionInterval = time.Hour

// RetentionConfig holds configuration for the retention cleaner.
type RetentionConfig struct {
	// RetentionDays is how long superseded snapshots are kept.
	RetentionDays int
	// Interval between sweeps; defaults to one hour.
	Interval time.Duration
}

type pruner interface {
	DeleteBefore(cutoff time.Time) (int64, error)
}

// RetentionCleaner periodically deletes superseded snapshots older than the
// retention period. The newest snapshot of every slide is never deleted.
type RetentionCleaner struct {
	store  pruner
	keep   time.Duration
	every  time.Duration
	now    func() time.Time
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	pruned int64
	mu     sync.Mutex
}

// NewRetentionCleaner starts a cleaner and sweeps once immediately. It
// returns nil when retention is disabled.
func NewRetentionCleaner(store *Store, conf RetentionConfig) *RetentionCleaner {
	if store == nil {
		return nil
	}
	return startCleaner(store, conf, time.Now)
}

func startCleaner(store pruner, conf RetentionConfig, now func() time.Time) *RetentionCleaner {
	if conf.RetentionDays <= 0 {
		return nil
	}
	if conf.Interval <= 0 {
		conf.Interval = retentionInterval
	}

	rc := &RetentionCleaner{
		store: store,
		keep:  time.Duration(conf.RetentionDays) * 24 * time.Hour,
		every: conf.Interval,
		now:   now,
		done:  make(chan struct{}),
	}
	rc.sweep()

	rc.wg.Add(1)
	go rc.loop()
	return rc
}

func (rc *RetentionCleaner) loop() {
	defer rc.wg.Done()
	ticker := time.NewTicker(rc.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.sweep()
		case <-rc.done:
			return
		}
	}
}

func (rc *RetentionCleaner) sweep() {
	rows, err := rc.store.DeleteBefore(rc.now().Add(-rc.keep))
	if err != nil {
		log.Printf("duckdb: snapshot retention error: %v", err)
		return
	}
	if rows == 0 {
		return
	}
	rc.mu.Lock()
	rc.pruned += rows
	rc.mu.Unlock()
	log.Printf("duckdb: pruned %d superseded snapshots older than %s", rows, rc.keep)
}

// Pruned returns how many snapshots the cleaner has deleted so far.
func (rc *RetentionCleaner) Pruned() int64 {
	if rc == nil {
		return 0
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.pruned
}

// Stop ends the sweep loop and waits for it. It is safe on a nil cleaner.
func (rc *RetentionCleaner) Stop() {
	if rc == nil {
		return
	}
	rc.once.Do(func() { close(rc.done) })
	rc.wg.Wait()
}

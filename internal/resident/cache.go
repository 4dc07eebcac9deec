package resident

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Cache holds the last roster loaded from a Provider. Readers always get
// their own copy, so a refresh never changes a roster already handed out.
type Cache struct {
	source Provider
	log    *slog.Logger

	mu       sync.RWMutex
	roster   []Resident
	loadedAt time.Time

	refreshTimeout time.Duration
	cron           *cron.Cron
}

// CacheInfo describes the cached roster.
type CacheInfo struct {
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
}

func NewCache(source Provider, log *slog.Logger) *Cache {
	return &Cache{
		source:         source,
		log:            log,
		refreshTimeout: 30 * time.Second,
	}
}

// Refresh reloads the roster. On failure the previous roster is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	roster, err := c.source.Residents(ctx)
	if err != nil {
		return fmt.Errorf("refresh roster: %w", err)
	}
	c.mu.Lock()
	c.roster = roster
	c.loadedAt = time.Now()
	c.mu.Unlock()
	c.log.Info("roster refreshed", "residents", len(roster))
	return nil
}

// Residents returns a copy of the cached roster, loading it on first use.
func (c *Cache) Residents(ctx context.Context) ([]Resident, error) {
	c.mu.RLock()
	loaded := !c.loadedAt.IsZero()
	c.mu.RUnlock()
	if !loaded {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resident, len(c.roster))
	copy(out, c.roster)
	return out, nil
}

func (c *Cache) Info() CacheInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheInfo{Count: len(c.roster), LoadedAt: c.loadedAt}
}

// Schedule refreshes the roster on a cron spec such as "@every 5m" or
// "0 */6 * * *".
func (c *Cache) Schedule(spec string) error {
	logger := cron.PrintfLogger(slog.NewLogLogger(c.log.Handler(), slog.LevelDebug))
	sched := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	_, err := sched.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			c.log.Warn("scheduled roster refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule roster refresh %q: %w", spec, err)
	}
	c.cron = sched
	sched.Start()
	return nil
}

// Stop halts scheduled refreshes and waits for a running one to finish.
func (c *Cache) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
}

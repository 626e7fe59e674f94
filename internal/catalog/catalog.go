// Package catalog caches the champion list the validator checks picks
// against. A refresh failure keeps the last good copy; until a first
// successful load every identifier is treated as valid so a catalog
// outage never blocks a draft.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type Champion struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type payload struct {
	Data map[string]Champion `json:"data"`
}

type Client struct {
	url  string
	http *http.Client
	log  *zap.Logger

	mu     sync.RWMutex
	champs map[string]Champion
	loaded bool
}

func New(url string, log *zap.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    log,
		champs: make(map[string]Champion),
	}
}

// Refresh fetches the catalog and swaps the cache on success.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch: status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return fmt.Errorf("catalog decode: %w", err)
	}
	if len(p.Data) == 0 {
		return fmt.Errorf("catalog decode: empty champion list")
	}

	c.mu.Lock()
	c.champs = p.Data
	c.loaded = true
	c.mu.Unlock()

	c.log.Info("champion catalog refreshed", zap.Int("champions", len(p.Data)))
	return nil
}

// Valid reports whether id names a known champion. Degrades open until
// the first successful refresh.
func (c *Client) Valid(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return true
	}
	_, ok := c.champs[id]
	return ok
}

// Len returns the cached catalog size.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.champs)
}

// StartRefresher schedules periodic refreshes. Failures are logged and
// retried on the next run, never surfaced to draft participants.
func StartRefresher(ctx context.Context, c *Client, every time.Duration, log *zap.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("catalog scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if err := c.Refresh(ctx); err != nil {
				log.Warn("champion catalog refresh failed", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog job: %w", err)
	}
	s.Start()
	return s, nil
}

// Package ledger talks to the authoritative record store: draining its
// paginated tables into an in-memory snapshot, fuzzy-matching resolved
// events against it, and (behind an explicit flag) writing new entries.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"runledger/internal/cache"
	"runledger/internal/model"
)

const fetchMaxRetries = 3

// fetchSleepFunc is the sleep used between retries (injectable for tests).
var fetchSleepFunc = time.Sleep

// Record is one raw record-store row.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// page is the record store's list response shape.
type page struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

// Client is a read/write record-store client. Reads are rate limited and
// retried; any unrecoverable failure is fatal to the caller's run, never
// silently partial.
type Client struct {
	httpClient *http.Client
	baseURL    string
	baseID     string
	token      string
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewClient creates a client for the configured base. A nil snapshot
// cache disables caching.
func NewClient(cfg model.LedgerConfig, snapshots cache.Cache) *Client {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 4
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		baseID:     cfg.BaseID,
		token:      cfg.Token,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		cache:      snapshots,
		cacheTTL:   0, // Cache default
	}
}

// FetchTable drains every page of one table. The pagination cursor loop
// runs to completion or fails the whole fetch: matching against a
// partially drained table would silently corrupt the diff.
func (c *Client) FetchTable(ctx context.Context, table string) ([]Record, error) {
	key := cache.TableKey(c.baseID, table)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			var records []Record
			if err := json.Unmarshal(data, &records); err == nil {
				return records, nil
			}
			_ = c.cache.Delete(key)
		}
	}

	var records []Record
	offset := ""
	for {
		p, err := c.fetchPage(ctx, table, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", table, err)
		}
		records = append(records, p.Records...)
		if p.Offset == "" {
			break
		}
		offset = p.Offset
	}

	if c.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			_ = c.cache.Set(key, data, c.cacheTTL)
		}
	}
	return records, nil
}

// fetchPage fetches one page with retry on throttling and server errors.
func (c *Client) fetchPage(ctx context.Context, table, offset string) (*page, error) {
	var lastErr error
	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(time.Duration(attempt) * 500 * time.Millisecond)
		}

		p, retryable, err := c.fetchPageOnce(ctx, table, offset)
		if err == nil {
			return p, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchPageOnce(ctx context.Context, table, offset string) (*page, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
	if offset != "" {
		u += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("decode page: %w", err)
	}
	return &p, false, nil
}

// CreateRecord writes one record. Writes are never cached and never
// retried: a duplicate write is worse than a reported failure.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create %s record: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("create %s record: status %d: %s", table, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode created record: %w", err)
	}
	return &rec, nil
}

// Field helpers: record-store fields arrive as loosely typed JSON.

func fieldString(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

func fieldStrings(f map[string]any, key string) []string {
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

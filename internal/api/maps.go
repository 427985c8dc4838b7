package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/danmuck/megaverse/internal/observability"
)

// GoalGrid returns the target grid, served from cache while younger than GoalTTL.
func (c *Client) GoalGrid(ctx context.Context) (megaverse.GoalGrid, error) {
	c.mu.Lock()
	if c.goal.isFresh(c.clock.Now(), c.cfg.GoalTTL) {
		grid := c.goal.data.Goal
		c.mu.Unlock()
		observability.RecordCacheLookup("goal", true)
		return grid, nil
	}
	c.mu.Unlock()
	observability.RecordCacheLookup("goal", false)

	path := "/map/" + url.PathEscape(c.cfg.CandidateID) + "/goal"
	raw, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var resp megaverse.GoalResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, malformed(path, raw, err)
	}
	if resp.Goal == nil {
		return nil, malformed(path, raw, errMissingKey("goal"))
	}

	c.mu.Lock()
	c.goal.store(resp, c.clock.Now())
	c.mu.Unlock()
	return resp.Goal, nil
}

// CurrentGrid returns the present grid, served from cache while younger than CurrentTTL
// and not invalidated by a mutation.
func (c *Client) CurrentGrid(ctx context.Context) (megaverse.CurrentGrid, error) {
	c.mu.Lock()
	if c.current.isFresh(c.clock.Now(), c.cfg.CurrentTTL) {
		grid := c.current.data.Map.Content
		c.mu.Unlock()
		observability.RecordCacheLookup("current", true)
		return grid, nil
	}
	c.mu.Unlock()
	observability.RecordCacheLookup("current", false)

	path := "/map/" + url.PathEscape(c.cfg.CandidateID)
	raw, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	var resp megaverse.MapResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, malformed(path, raw, err)
	}
	if resp.Map.Content == nil {
		return nil, malformed(path, raw, errMissingKey("map.content"))
	}

	c.mu.Lock()
	c.current.store(resp, c.clock.Now())
	c.mu.Unlock()
	return resp.Map.Content, nil
}

// InvalidateCurrent drops the current-map cache; the goal cache is untouched.
func (c *Client) InvalidateCurrent() {
	c.mu.Lock()
	c.current.clear()
	c.mu.Unlock()
}

type errMissingKey string

func (e errMissingKey) Error() string {
	return "response missing " + string(e)
}

func malformed(path string, raw []byte, cause error) error {
	return &APIError{
		Method: http.MethodGet,
		Path:   path,
		Body:   truncateBody(raw),
		Err:    ErrMalformedResponse,
		Cause:  cause,
	}
}

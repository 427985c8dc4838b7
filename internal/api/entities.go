package api

import (
	"context"
	"fmt"

	"github.com/danmuck/megaverse/internal/megaverse"
)

const (
	polyanetsPath = "/polyanets"
	soloonsPath   = "/soloons"
	comethsPath   = "/comeths"
)

func validatePosition(pos megaverse.Position) error {
	return pos.Validate()
}

func positionBody(pos megaverse.Position) map[string]any {
	return map[string]any{
		"row":    pos.Row,
		"column": pos.Column,
	}
}

// mutate sends a create/delete call and drops the current-map cache once it succeeds.
func (c *Client) mutate(ctx context.Context, method, path string, body map[string]any) error {
	if _, err := c.Request(ctx, method, path, body, nil); err != nil {
		return err
	}
	c.InvalidateCurrent()
	return nil
}

// CreateEntity places e at pos. A nil entity (SPACE) has nothing to create.
func (c *Client) CreateEntity(ctx context.Context, pos megaverse.Position, e megaverse.Entity) error {
	switch v := e.(type) {
	case nil:
		return nil
	case megaverse.Polyanet:
		return c.CreatePolyanet(ctx, pos)
	case megaverse.Soloon:
		return c.CreateSoloon(ctx, pos, v.Color)
	case megaverse.Cometh:
		return c.CreateCometh(ctx, pos, v.Direction)
	default:
		return megaverse.Invalid("entity", "unsupported entity %T", e)
	}
}

// DeleteEntity removes the entity of e's kind at pos.
func (c *Client) DeleteEntity(ctx context.Context, pos megaverse.Position, e megaverse.Entity) error {
	switch e.(type) {
	case nil:
		return megaverse.Invalid("entity", "cannot delete space at %s", pos)
	case megaverse.Polyanet:
		return c.DeletePolyanet(ctx, pos)
	case megaverse.Soloon:
		return c.DeleteSoloon(ctx, pos)
	case megaverse.Cometh:
		return c.DeleteCometh(ctx, pos)
	default:
		return megaverse.Invalid("entity", "unsupported entity %T", e)
	}
}

func describe(kind megaverse.Kind, pos megaverse.Position) string {
	return fmt.Sprintf("%s at %s", kind, pos)
}

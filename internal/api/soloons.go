package api

import (
	"context"
	"net/http"

	"github.com/danmuck/megaverse/internal/megaverse"
)

func (c *Client) CreateSoloon(ctx context.Context, pos megaverse.Position, color megaverse.Color) error {
	if err := validatePosition(pos); err != nil {
		return err
	}
	if !color.Valid() {
		return megaverse.Invalid("color", "unknown soloon color %q", color)
	}
	body := positionBody(pos)
	body["color"] = string(color)
	c.logger.Debug().Str("entity", describe(megaverse.KindSoloon, pos)).Str("color", string(color)).Msg("create")
	return c.mutate(ctx, http.MethodPost, soloonsPath, body)
}

func (c *Client) DeleteSoloon(ctx context.Context, pos megaverse.Position) error {
	if err := validatePosition(pos); err != nil {
		return err
	}
	c.logger.Debug().Str("entity", describe(megaverse.KindSoloon, pos)).Msg("delete")
	return c.mutate(ctx, http.MethodDelete, soloonsPath, positionBody(pos))
}

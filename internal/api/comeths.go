package api

import (
	"context"
	"net/http"

	"github.com/danmuck/megaverse/internal/megaverse"
)

func (c *Client) CreateCometh(ctx context.Context, pos megaverse.Position, direction megaverse.Direction) error {
	if err := validatePosition(pos); err != nil {
		return err
	}
	if !direction.Valid() {
		return megaverse.Invalid("direction", "unknown cometh direction %q", direction)
	}
	body := positionBody(pos)
	body["direction"] = string(direction)
	c.logger.Debug().Str("entity", describe(megaverse.KindCometh, pos)).Str("direction", string(direction)).Msg("create")
	return c.mutate(ctx, http.MethodPost, comethsPath, body)
}

func (c *Client) DeleteCometh(ctx context.Context, pos megaverse.Position) error {
	if err := validatePosition(pos); err != nil {
		return err
	}
	c.logger.Debug().Str("entity", describe(megaverse.KindCometh, pos)).Msg("delete")
	return c.mutate(ctx, http.MethodDelete, comethsPath, positionBody(pos))
}

package api

import (
	"context"
	"net/http"

	"github.com/danmuck/megaverse/internal/megaverse"
)

func (c *Client) CreatePolyanet(ctx context.Context, pos megaverse.Position) error {
	if err := validatePosition(pos); err != nil {
		return err
	}
	c.logger.Debug().Str("entity", describe(megaverse.KindPolyanet, pos)).Msg("create")
	return c.mutate(ctx, http.MethodPost, polyanetsPath, positionBody(pos))
}

func (c *Client) DeletePolyanet(ctx context.Context, pos megaverse.Position) error {
	if err := validatePosition(pos); err != nil {
		return err
	}
	c.logger.Debug().Str("entity", describe(megaverse.KindPolyanet, pos)).Msg("delete")
	return c.mutate(ctx, http.MethodDelete, polyanetsPath, positionBody(pos))
}

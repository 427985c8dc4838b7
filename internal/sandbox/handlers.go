package sandbox

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/gin-gonic/gin"
)

type entityRoute struct {
	path string
	kind megaverse.Kind
	// attr is the extra body field a create requires, empty for polyanets.
	attr string
}

var entityRoutes = []entityRoute{
	{path: "/polyanets", kind: megaverse.KindPolyanet},
	{path: "/soloons", kind: megaverse.KindSoloon, attr: "color"},
	{path: "/comeths", kind: megaverse.KindCometh, attr: "direction"},
}

// entityRequest is a validated create/delete body.
type entityRequest struct {
	CandidateID string
	Position    megaverse.Position
	Attr        string
}

func (s *Server) handleGoal(c *gin.Context) {
	c.JSON(http.StatusOK, megaverse.GoalResponse{Goal: s.store.Goal()})
}

func (s *Server) handleMap(c *gin.Context) {
	c.JSON(http.StatusOK, megaverse.MapResponse{Map: s.store.Snapshot(c.Param("candidateId"))})
}

// handleReset empties the candidate's universe. The remote API has no such route.
func (s *Server) handleReset(c *gin.Context) {
	candidate := c.Param("candidateId")
	s.store.Reset(candidate)
	s.logger.Info().Str("candidate", candidate).Msg("universe reset")
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) handleCreate(route entityRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := decodeEntityRequest(c.Request, route.attr)
		if err != nil {
			badRequest(c, err)
			return
		}
		e, err := entityFor(route.kind, req.Attr)
		if err != nil {
			badRequest(c, err)
			return
		}
		if err := s.store.Place(req.CandidateID, req.Position, e); err != nil {
			badRequest(c, err)
			return
		}
		s.logger.Debug().
			Str("candidate", req.CandidateID).
			Str("entity", string(megaverse.LabelFor(e))).
			Int("row", req.Position.Row).
			Int("column", req.Position.Column).
			Msg("entity placed")
		c.JSON(http.StatusOK, gin.H{})
	}
}

func (s *Server) handleDelete(route entityRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := decodeEntityRequest(c.Request, "")
		if err != nil {
			badRequest(c, err)
			return
		}
		removed, err := s.store.Remove(req.CandidateID, req.Position, route.kind)
		if err != nil {
			badRequest(c, err)
			return
		}
		s.logger.Debug().
			Str("candidate", req.CandidateID).
			Str("kind", route.kind.String()).
			Int("row", req.Position.Row).
			Int("column", req.Position.Column).
			Bool("removed", removed).
			Msg("entity removed")
		c.JSON(http.StatusOK, gin.H{})
	}
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// decodeEntityRequest reads the JSON body keeping numbers exact so 1.5 and "1" are rejected.
func decodeEntityRequest(r *http.Request, attr string) (entityRequest, error) {
	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return entityRequest{}, megaverse.Invalid("body", "expected a JSON object: %v", err)
	}

	var req entityRequest
	candidate, ok := body["candidateId"].(string)
	if !ok || strings.TrimSpace(candidate) == "" {
		return entityRequest{}, megaverse.Invalid("candidateId", "is required")
	}
	req.CandidateID = candidate

	row, err := coordinate(body, "row")
	if err != nil {
		return entityRequest{}, err
	}
	col, err := coordinate(body, "column")
	if err != nil {
		return entityRequest{}, err
	}
	req.Position = megaverse.Position{Row: row, Column: col}

	if attr != "" {
		value, ok := body[attr].(string)
		if !ok || value == "" {
			return entityRequest{}, megaverse.Invalid(attr, "is required")
		}
		req.Attr = value
	}
	return req, nil
}

func coordinate(body map[string]any, field string) (int, error) {
	raw, present := body[field]
	if !present {
		return 0, megaverse.Invalid(field, "is required")
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, megaverse.Invalid(field, "must be an integer, got %T", raw)
	}
	v, err := num.Int64()
	if err != nil {
		return 0, megaverse.Invalid(field, "must be an integer, got %s", num)
	}
	if v < 0 {
		return 0, megaverse.Invalid(field, "must be non-negative, got %d", v)
	}
	return int(v), nil
}

func entityFor(kind megaverse.Kind, attr string) (megaverse.Entity, error) {
	switch kind {
	case megaverse.KindPolyanet:
		return megaverse.Polyanet{}, nil
	case megaverse.KindSoloon:
		color := megaverse.Color(attr)
		if !color.Valid() {
			return nil, &megaverse.CellError{Field: "color", Value: attr, Err: megaverse.ErrUnknownAttribute}
		}
		return megaverse.Soloon{Color: color}, nil
	case megaverse.KindCometh:
		direction := megaverse.Direction(attr)
		if !direction.Valid() {
			return nil, &megaverse.CellError{Field: "direction", Value: attr, Err: megaverse.ErrUnknownAttribute}
		}
		return megaverse.Cometh{Direction: direction}, nil
	default:
		return nil, fmt.Errorf("sandbox: no route for %s", kind)
	}
}

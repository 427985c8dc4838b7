package sandbox

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/megaverse/internal/megaverse"
	"github.com/danmuck/megaverse/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newTestSandbox(t *testing.T, cfg Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := NewStore(megaverse.GoalGrid{
		{megaverse.LabelPolyanet, megaverse.LabelSpace},
		{megaverse.LabelSpace, megaverse.LabelUpCometh},
	}, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return New(store, cfg, zerolog.Nop())
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestGoalRouteServesGoal(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{})

	rr := serve(s, http.MethodGet, "/api/map/cand-1/goal", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp megaverse.GoalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rows, cols := resp.Goal.Dimensions(); rows != 2 || cols != 2 || resp.Goal[1][1] != megaverse.LabelUpCometh {
		t.Fatalf("unexpected goal %#v", resp.Goal)
	}
}

func TestCreateThenMapReflectsEntity(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{})

	rr := serve(s, http.MethodPost, "/api/soloons", `{"candidateId":"cand-1","row":0,"column":1,"color":"purple"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = serve(s, http.MethodGet, "/api/map/cand-1", "")
	var resp megaverse.MapResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Map.CandidateID != "cand-1" || resp.Map.ID == "" || resp.Map.Phase != 1 {
		t.Fatalf("unexpected map metadata %+v", resp.Map)
	}
	label, err := megaverse.LabelForCell(resp.Map.Content[0][1])
	if err != nil || label != megaverse.LabelPurpleSoloon {
		t.Fatalf("expected PURPLE_SOLOON, got %s err=%v", label, err)
	}

	// Other candidates are isolated.
	rr = serve(s, http.MethodGet, "/api/map/cand-2", "")
	var other megaverse.MapResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &other); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if other.Map.Content[0][1] != nil {
		t.Fatalf("expected empty universe for cand-2, got %+v", other.Map.Content[0][1])
	}
}

func TestDeleteRequiresMatchingKind(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{})
	serve(s, http.MethodPost, "/api/polyanets", `{"candidateId":"c","row":0,"column":0}`)

	rr := serve(s, http.MethodDelete, "/api/comeths", `{"candidateId":"c","row":0,"column":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cell := s.Store().Snapshot("c").Content[0][0]; cell == nil {
		t.Fatalf("comet delete removed a polyanet")
	}

	serve(s, http.MethodDelete, "/api/polyanets", `{"candidateId":"c","row":0,"column":0}`)
	if cell := s.Store().Snapshot("c").Content[0][0]; cell != nil {
		t.Fatalf("expected cell cleared, got %+v", cell)
	}
}

func TestResetRouteEmptiesUniverse(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{})
	serve(s, http.MethodPost, "/api/polyanets", `{"candidateId":"c","row":1,"column":1}`)

	if rr := serve(s, http.MethodDelete, "/api/map/c", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cell := s.Store().Snapshot("c").Content[1][1]; cell != nil {
		t.Fatalf("expected empty universe after reset, got %+v", cell)
	}
}

func TestEntityBodyValidation(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{})
	cases := map[string]struct {
		path string
		body string
	}{
		"not json":          {path: "/api/polyanets", body: `row=1`},
		"missing candidate": {path: "/api/polyanets", body: `{"row":0,"column":0}`},
		"fractional row":    {path: "/api/polyanets", body: `{"candidateId":"c","row":1.5,"column":0}`},
		"string column":     {path: "/api/polyanets", body: `{"candidateId":"c","row":0,"column":"1"}`},
		"negative row":      {path: "/api/polyanets", body: `{"candidateId":"c","row":-1,"column":0}`},
		"out of bounds":     {path: "/api/polyanets", body: `{"candidateId":"c","row":5,"column":0}`},
		"missing color":     {path: "/api/soloons", body: `{"candidateId":"c","row":0,"column":0}`},
		"unknown color":     {path: "/api/soloons", body: `{"candidateId":"c","row":0,"column":0,"color":"green"}`},
		"unknown direction": {path: "/api/comeths", body: `{"candidateId":"c","row":0,"column":0,"direction":"sideways"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr := serve(s, http.MethodPost, tc.path, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected error body, got %s", rr.Body.String())
			}
		})
	}
	if got := s.Store().Snapshot("c").Content; got[0][0] != nil {
		t.Fatalf("rejected requests mutated the store: %+v", got[0][0])
	}
}

func TestThrottleAnswers429(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{RequestsPerSecond: 0.001, Burst: 1})

	if rr := serve(s, http.MethodGet, "/api/map/c/goal", ""); rr.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rr.Code)
	}
	if rr := serve(s, http.MethodGet, "/api/map/c/goal", ""); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rr.Code)
	}
	// Health is outside the throttled group.
	if rr := serve(s, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rr.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	testlog.Start(t)
	s := newTestSandbox(t, Config{})
	serve(s, http.MethodGet, "/api/map/c", "")

	rr := serve(s, http.MethodGet, "/health", "")
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["candidates"] != float64(1) {
		t.Fatalf("unexpected health body %#v", body)
	}

	rr = serve(s, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "megaverse_http_requests_total") {
		t.Fatalf("expected sandbox metrics, got %d", rr.Code)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{BasePath: "v1/"}.WithDefaults()
	if cfg.Addr != DefaultAddr || cfg.BasePath != "/v1" || cfg.Burst != 1 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if got := (Config{}).WithDefaults().BasePath; got != DefaultBasePath {
		t.Fatalf("expected %s, got %s", DefaultBasePath, got)
	}
}

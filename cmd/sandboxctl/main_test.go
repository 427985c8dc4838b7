package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/megaverse/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestBuildFromFixtureAndFlags(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	goalPath := filepath.Join(dir, "goal.yaml")
	if err := os.WriteFile(goalPath, []byte("phase: 3\ngoal:\n  - [POLYANET, SPACE]\n"), 0o644); err != nil {
		t.Fatalf("write goal: %v", err)
	}

	cmd := newRootCommand(zerolog.Nop())
	if err := cmd.ParseFlags([]string{"--goal", goalPath, "--addr", "127.0.0.1:0"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd, options{goal: goalPath, addr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:0" || cfg.GoalFile != goalPath {
		t.Fatalf("flags not applied: %+v", cfg)
	}

	srv, err := build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if snap := srv.Store().Snapshot("c"); snap.Phase != 3 || len(snap.Content) != 1 || len(snap.Content[0]) != 2 {
		t.Fatalf("unexpected universe %+v", snap)
	}

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/map/c/goal", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestBuildDefaultCross(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	cmd := newRootCommand(zerolog.Nop())
	cfg, err := resolveConfig(cmd, options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	srv, err := build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if goal := srv.Store().Goal(); len(goal) != 11 || goal[2][2] != "POLYANET" {
		t.Fatalf("unexpected default goal %v", goal)
	}
}

func TestRejectsMissingFixture(t *testing.T) {
	testlog.Start(t)
	cfg, err := resolveConfig(newRootCommand(zerolog.Nop()), options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cfg.GoalFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := build(cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected missing fixture error")
	}
}

func TestExampleConfigAndFixture(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	cfg, err := resolveConfig(newRootCommand(zerolog.Nop()), options{configFile: "ex.config.toml"})
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	srv, err := build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rows, cols := srv.Store().Goal().Dimensions(); rows != 5 || cols != 5 {
		t.Fatalf("unexpected example goal %dx%d", rows, cols)
	}
}

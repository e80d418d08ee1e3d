package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/catalog"
	"github.com/youssefsiam38/volumetric/session"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	reg := volumetric.NewRegistry()
	catalog.MustRegister(reg)
	host, err := volumetric.NewHost(reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewManager(host, nil)
	t.Cleanup(sessions.Close)
	d, err := volumetric.NewDispatcher(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = d.Stop(context.Background()) })
	return Deps{Host: host, Sessions: sessions, Dispatcher: d}
}

func TestHandler_Mounts(t *testing.T) {
	h := Handler(testDeps(t), nil)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/api/templates", "application/json"},
		{"/api/health", "application/json"},
		{"/s/default", "text/html; charset=utf-8"},
		{"/s/default/panel", "text/html; charset=utf-8"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", tt.path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
			t.Errorf("GET %s Content-Type = %q, want %q", tt.path, ct, tt.contentType)
		}
	}
}

func TestHandler_SharedActionBudget(t *testing.T) {
	h := Handler(testDeps(t), &Config{ActionRate: 0.001, ActionBurst: 1})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/s/default/action", strings.NewReader("phrase=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("frontend action status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/actions", strings.NewReader(`{"text":"again"}`)))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("api action status = %d, want 429 from the shared budget", rec.Code)
	}
}

func TestHandler_InvalidConfigPanics(t *testing.T) {
	tests := []struct {
		name string
		deps func(t *testing.T) Deps
		cfg  *Config
	}{
		{"missing deps", func(t *testing.T) Deps { return Deps{} }, nil},
		{"keep-alive too short", testDeps, &Config{KeepAlive: 1}},
		{"bad api prefix", testDeps, &Config{APIPrefix: "api"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := tt.deps(t)
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			Handler(deps, tt.cfg)
		})
	}
}

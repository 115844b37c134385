package cduclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/cdusync/internal/api"
	"github.com/hyperengineering/cdusync/internal/engine"
	"github.com/hyperengineering/cdusync/internal/snapshot"
)

const apiKey = "client-test-key"

// newServer starts the admin API over a local-mode engine.
func newServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	feed := engine.NewFeed(0)
	e := engine.New(engine.Options{
		Cache:    snapshot.NewFileCache(filepath.Join(t.TempDir(), "cdu_data.json")),
		Notifier: feed,
	})
	e.Start(context.Background())

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(e, feed, apiKey, "test")))
	t.Cleanup(srv.Close)
	return srv, e
}

func newClient(t *testing.T, url, key string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: url + "/", APIKey: key})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() error = nil, want error for empty BaseURL")
	}
}

func TestClient_HealthAndStatus(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv.URL, apiKey)
	ctx := context.Background()

	h, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.Status != "healthy" || h.Mode != "local" {
		t.Errorf("Health() = %+v", h)
	}

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Mode != "local" || st.HasUnsavedChanges {
		t.Errorf("Status() = %+v", st)
	}
}

func TestClient_ImportExportSave(t *testing.T) {
	// Given: a fresh local-mode server
	srv, e := newServer(t)
	c := newClient(t, srv.URL, apiKey)
	ctx := context.Background()
	doc := []byte(`{"userName":"Caio","noticeData":[{"id":"n1","title":"Plantão","content":"x","date":"01/02/2026"}]}`)

	// When: importing a document
	res, err := c.Import(ctx, doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	// Then: the tree carries it and the change is unsaved until Save
	if !res.Imported || res.Bytes != len(doc) {
		t.Errorf("Import() = %+v", res)
	}
	if e.Snapshot().UserName != "Caio" {
		t.Errorf("UserName = %q", e.Snapshot().UserName)
	}
	st, _ := c.Status(ctx)
	if !st.HasUnsavedChanges {
		t.Error("hasUnsavedChanges = false after import")
	}
	if err := c.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if st, _ := c.Status(ctx); st.HasUnsavedChanges {
		t.Error("hasUnsavedChanges = true after save")
	}

	exported, err := c.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(string(exported), `"Plantão"`) {
		t.Error("export does not contain the imported notice")
	}
}

func TestClient_ImportValidationError(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv.URL, apiKey)

	_, err := c.Import(context.Background(), []byte(`{"scriptCategories":{"A B":[]}}`))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Import() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d, want 422", apiErr.StatusCode)
	}
	if len(apiErr.Errors) == 0 {
		t.Error("no field errors decoded")
	}
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv.URL, "wrong")

	_, err := c.Tree(context.Background())

	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Tree() error = %v, want ErrUnauthorized", err)
	}
}

func TestClient_ReloadAndNotifications(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv.URL, apiKey)
	ctx := context.Background()

	r, err := c.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if r.Source != "initial" {
		t.Errorf("Source = %q, want initial (empty cache)", r.Source)
	}

	c.Save(ctx)
	ns, err := c.Notifications(ctx, 0)
	if err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if len(ns) == 0 || ns[len(ns)-1].Level != "success" {
		t.Fatalf("Notifications() = %+v, want a trailing success", ns)
	}
	if ns[len(ns)-1].RequestID == "" {
		t.Error("save notification carries no request id")
	}
}

func TestAPIError_MatchesSentinels(t *testing.T) {
	tests := []struct {
		status int
		target error
		want   bool
	}{
		{http.StatusUnauthorized, ErrUnauthorized, true},
		{http.StatusConflict, ErrLoadInProgress, true},
		{http.StatusConflict, ErrUnauthorized, false},
		{http.StatusBadGateway, ErrLoadInProgress, false},
	}
	for _, tt := range tests {
		err := error(&APIError{StatusCode: tt.status})
		if got := errors.Is(err, tt.target); got != tt.want {
			t.Errorf("errors.Is(%d, %v) = %v, want %v", tt.status, tt.target, got, tt.want)
		}
	}
}

package search

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/dss/dsstest"
)

func newInstance(t *testing.T) *dsstest.Server {
	t.Helper()
	srv := dsstest.New(t)
	srv.JSON("GET /projects/", []any{
		map[string]any{"projectKey": "SALES"},
		map[string]any{"projectKey": "LOCKED"},
		map[string]any{"projectKey": "MKT"},
	})
	srv.JSON("GET /projects/SALES/datasets/", []any{
		map[string]any{"name": "Customers_raw", "type": "PostgreSQL"},
		map[string]any{"name": "orders", "type": "Snowflake"},
	})
	srv.JSON("GET /projects/MKT/datasets/", []any{
		map[string]any{"name": "customers_web", "type": "postgresql"},
	})
	srv.JSON("GET /projects/SALES/datasets/Customers_raw", map[string]any{"params": map[string]any{"connection": "pg", "table": "CUSTOMERS"}})
	srv.JSON("GET /projects/SALES/datasets/orders", map[string]any{"params": map[string]any{"connection": "sf", "table": "ORDERS"}})
	srv.JSON("GET /projects/MKT/datasets/customers_web", map[string]any{"params": map[string]any{"connection": "pg", "path": "/web"}})
	return srv
}

func TestFindDatasetsAcrossProjects(t *testing.T) {
	srv := newInstance(t)
	out, err := FindDatasets(context.Background(), srv.Client(t), "^customers", "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 matches, got %+v", out)
	}
	if out[0].ProjectKey != "SALES" || out[0].Name != "Customers_raw" || out[1].ProjectKey != "MKT" {
		t.Fatalf("unexpected matches %+v", out)
	}
}

func TestSkippedProjectLoggedThroughClient(t *testing.T) {
	srv := newInstance(t)
	var logs bytes.Buffer
	c, err := dss.New(dss.Options{
		URL:    srv.URL,
		APIKey: "test-key",
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err := FindDatasets(context.Background(), c, "^customers", ""); err != nil {
		t.Fatalf("find: %v", err)
	}
	if !strings.Contains(logs.String(), "search skipped project") || !strings.Contains(logs.String(), "project=LOCKED") {
		t.Fatalf("skip not logged: %s", logs.String())
	}
}

func TestFindDatasetsScoped(t *testing.T) {
	srv := newInstance(t)
	out, err := FindDatasets(context.Background(), srv.Client(t), "customers", "MKT")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 1 || out[0].Name != "customers_web" {
		t.Fatalf("unexpected matches %+v", out)
	}
	if srv.Count("GET /projects/") != 0 {
		t.Fatal("scoped search must not list projects")
	}
}

func TestFindDatasetsInvalidPattern(t *testing.T) {
	srv := newInstance(t)
	if _, err := FindDatasets(context.Background(), srv.Client(t), "(", ""); err == nil {
		t.Fatal("expected pattern error")
	}
}

func TestFindByConnection(t *testing.T) {
	srv := newInstance(t)
	out, err := FindByConnection(context.Background(), srv.Client(t), "pg")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 2 || out[0].Path != "CUSTOMERS" || out[1].Path != "/web" {
		t.Fatalf("unexpected matches %+v", out)
	}
}

func TestFindByType(t *testing.T) {
	srv := newInstance(t)
	out, err := FindByType(context.Background(), srv.Client(t), "PostgreSQL", "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 2 || out[1].Connection != "pg" {
		t.Fatalf("unexpected matches %+v", out)
	}
}

func TestFindScenariosMatchesID(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/scenarios/", []any{
		map[string]any{"id": "NIGHTLY_BUILD", "name": "Rebuild everything"},
		map[string]any{"id": "OTHER", "name": "Other"},
	})
	out, err := FindScenarios(context.Background(), srv.Client(t), "nightly", "P")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 1 || out[0].ID != "NIGHTLY_BUILD" {
		t.Fatalf("unexpected matches %+v", out)
	}
}

func TestFindRecipesNoMatch(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/recipes/", []any{map[string]any{"name": "join_a", "type": "join"}})
	out, err := FindRecipes(context.Background(), srv.Client(t), "^prep", "P")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", out)
	}
}

func TestFindUsers(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /admin/users/", []any{
		map[string]any{"login": "jdoe", "displayName": "Jane Doe", "groups": []any{"data"}},
		map[string]any{"login": "admin", "displayName": "Administrator"},
	})
	out, err := FindUsers(context.Background(), srv.Client(t), "jane")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 1 || out[0].Login != "jdoe" || len(out[0].Groups) != 1 {
		t.Fatalf("unexpected users %+v", out)
	}
}

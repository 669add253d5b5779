package datasets

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JedIV/dataiku-chat-control/internal/dss"
	"github.com/JedIV/dataiku-chat-control/internal/dss/dsstest"
	"github.com/JedIV/dataiku-chat-control/internal/wait"
)

func TestCreateFromCSVReplacesExisting(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/datasets/", []any{map[string]any{"name": "sales"}})
	srv.Handle("DELETE /projects/P/datasets/sales", func(w http.ResponseWriter, _ *http.Request) {})
	srv.Handle("POST /projects/P/datasets/", func(w http.ResponseWriter, _ *http.Request) {})
	srv.Handle("POST /projects/P/datasets/sales/uploaded/files", func(w http.ResponseWriter, _ *http.Request) {})

	err := CreateFromCSV(context.Background(), srv.Client(t), "P", "sales", "id\n1\n", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reqs := srv.Requests()
	var order []string
	for _, r := range reqs {
		order = append(order, r.Method+" "+r.Path)
	}
	want := []string{
		"GET /projects/P/datasets/",
		"DELETE /projects/P/datasets/sales",
		"POST /projects/P/datasets/",
		"POST /projects/P/datasets/sales/uploaded/files",
	}
	if strings.Join(order, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected calls %v", order)
	}
	if !strings.Contains(reqs[2].Body, `"uploadConnection":"filesystem_managed"`) || !strings.Contains(reqs[2].Body, `"type":"UploadedFiles"`) {
		t.Fatalf("unexpected create body %s", reqs[2].Body)
	}
	if !strings.Contains(reqs[3].Body, "id\n1\n") || !strings.Contains(reqs[3].Body, `filename="sales.csv"`) {
		t.Fatalf("unexpected upload body %s", reqs[3].Body)
	}
}

func TestProgressLoggedThroughClient(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/datasets/", []any{})
	srv.Handle("POST /projects/P/datasets/", func(w http.ResponseWriter, _ *http.Request) {})
	srv.Handle("POST /projects/P/datasets/sales/uploaded/files", func(w http.ResponseWriter, _ *http.Request) {})

	var logs bytes.Buffer
	c, err := dss.New(dss.Options{URL: srv.URL, APIKey: "test-key", Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := CreateFromCSV(context.Background(), c, "P", "sales", "id\n1\n", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(logs.String(), "created dataset") || !strings.Contains(logs.String(), "dataset=sales") {
		t.Fatalf("progress not logged: %s", logs.String())
	}
}

func TestCreateFromRecords(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/datasets/", []any{})
	srv.Handle("POST /projects/P/datasets/", func(w http.ResponseWriter, _ *http.Request) {})
	srv.Handle("POST /projects/P/datasets/people/uploaded/files", func(w http.ResponseWriter, _ *http.Request) {})

	records := []map[string]any{
		{"name": "ann", "age": 31},
		{"name": "bo, jr"},
	}
	if err := CreateFromRecords(context.Background(), srv.Client(t), "P", "people", records, "s3"); err != nil {
		t.Fatalf("create: %v", err)
	}
	reqs := srv.Requests()
	upload := reqs[len(reqs)-1].Body
	if !strings.Contains(upload, "age,name\n31,ann\n,\"bo, jr\"\n") {
		t.Fatalf("unexpected csv in upload %q", upload)
	}
	if !strings.Contains(reqs[1].Body, `"uploadConnection":"s3"`) {
		t.Fatalf("connection not forwarded: %s", reqs[1].Body)
	}
}

func TestCreateFromRecordsEmpty(t *testing.T) {
	srv := dsstest.New(t)
	err := CreateFromRecords(context.Background(), srv.Client(t), "P", "x", nil, "")
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Fatal("no request expected")
	}
}

func TestListSchemasUsesFirstProject(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/", []any{map[string]any{"projectKey": "FIRST"}, map[string]any{"projectKey": "SECOND"}})
	srv.JSON("GET /projects/FIRST/datasets/tables-import/actions/list-schemas", []string{"crm", "public", "crm"})

	schemas, err := ListSchemas(context.Background(), srv.Client(t), "pg", "")
	if err != nil {
		t.Fatalf("list schemas: %v", err)
	}
	if strings.Join(schemas, ",") != "crm,public" {
		t.Fatalf("unexpected schemas %v", schemas)
	}
}

func TestListTables(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/datasets/tables-import/actions/list-tables", []any{
		map[string]any{"table": "customers"},
		map[string]any{"table": "orders"},
	})
	tables, err := ListTables(context.Background(), srv.Client(t), "pg", "crm", "P")
	if err != nil || strings.Join(tables, ",") != "customers,orders" {
		t.Fatalf("unexpected tables %v %v", tables, err)
	}
}

func TestImportTable(t *testing.T) {
	srv := dsstest.New(t)
	base := "/projects/P/datasets/tables-import/actions/"
	srv.JSON("POST "+base+"prepare-from-keys", map[string]any{
		"sqlImportCandidates": []any{map[string]any{"table": "CUSTOMERS", "datasetName": "CUSTOMERS", "checked": false}},
	})
	srv.JSON("POST "+base+"execute-from-candidates", map[string]any{"jobId": "f1"})
	srv.Sequence("GET /futures/f1",
		map[string]any{"alive": true, "hasResult": false},
		map[string]any{"alive": false, "hasResult": true},
	)

	prev := wait.Default()
	wait.SetDefault(wait.New(nil, map[wait.Kind]wait.Defaults{wait.KindFuture: {PollInterval: 1}}))
	t.Cleanup(func() { wait.SetDefault(prev) })

	res, err := ImportTable(context.Background(), srv.Client(t), "P", "pg", "crm", "CUSTOMERS", "customers")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Dataset != "customers" || !res.Wait.Success {
		t.Fatalf("unexpected result %+v", res)
	}

	var execBody string
	for _, r := range srv.Requests() {
		if r.Path == base+"execute-from-candidates" {
			execBody = r.Body
		}
	}
	if !strings.Contains(execBody, `"checked":true`) || !strings.Contains(execBody, `"datasetName":"customers"`) {
		t.Fatalf("candidate not checked and renamed: %s", execBody)
	}
}

func TestImportTableNoCandidates(t *testing.T) {
	srv := dsstest.New(t)
	srv.JSON("POST /projects/P/datasets/tables-import/actions/prepare-from-keys", map[string]any{"sqlImportCandidates": []any{}})
	if _, err := ImportTable(context.Background(), srv.Client(t), "P", "pg", "crm", "X", ""); err == nil {
		t.Fatal("expected error without candidates")
	}
}

package export

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/JedIV/dataiku-chat-control/internal/dss/dsstest"
)

func newDataset(t *testing.T) *dsstest.Server {
	t.Helper()
	srv := dsstest.New(t)
	srv.JSON("GET /projects/P/datasets/scores/schema", map[string]any{"columns": []any{
		map[string]any{"name": "name", "type": "string"},
		map[string]any{"name": "score", "type": "double"},
	}})
	srv.Handle("GET /projects/P/datasets/scores/data/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ann\t10\nbo\t20\ncy\t\nann\t30\n"))
	})
	return srv
}

func TestToRecordsAndSample(t *testing.T) {
	srv := newDataset(t)
	c := srv.Client(t)

	recs, err := ToRecords(context.Background(), c, "P", "scores", 2)
	if err != nil {
		t.Fatalf("to records: %v", err)
	}
	if len(recs) != 2 || recs[1]["name"] != "bo" || recs[1]["score"] != "20" {
		t.Fatalf("unexpected records %v", recs)
	}

	sample, err := Sample(context.Background(), c, "P", "scores", 0)
	if err != nil || len(sample) != 4 {
		t.Fatalf("unexpected sample %v %v", sample, err)
	}
}

func TestGetColumnNames(t *testing.T) {
	srv := newDataset(t)
	names, err := GetColumnNames(context.Background(), srv.Client(t), "P", "scores")
	if err != nil || strings.Join(names, ",") != "name,score" {
		t.Fatalf("unexpected names %v %v", names, err)
	}
}

func TestHead(t *testing.T) {
	srv := newDataset(t)
	out, err := Head(context.Background(), srv.Client(t), "P", "scores", 2)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	want := "name  score\nann   10\nbo    20\n"
	if out != want {
		t.Fatalf("unexpected head:\n%q\nwant\n%q", out, want)
	}
}

func TestCountRows(t *testing.T) {
	t.Run("from metric", func(t *testing.T) {
		srv := newDataset(t)
		srv.JSON("GET /projects/P/datasets/scores/metrics/last/NP", map[string]any{"metrics": []any{
			map[string]any{"metricId": "records:COUNT_RECORDS", "lastValues": []any{map[string]any{"value": "1234"}}},
		}})
		n, err := CountRows(context.Background(), srv.Client(t), "P", "scores")
		if err != nil || n != 1234 {
			t.Fatalf("unexpected count %d %v", n, err)
		}
		if srv.Count("GET /projects/P/datasets/scores/data/") != 0 {
			t.Fatal("rows should not be streamed when the metric exists")
		}
	})

	t.Run("by streaming", func(t *testing.T) {
		srv := newDataset(t)
		n, err := CountRows(context.Background(), srv.Client(t), "P", "scores")
		if err != nil || n != 4 {
			t.Fatalf("unexpected count %d %v", n, err)
		}
	})
}

func TestDescribe(t *testing.T) {
	srv := newDataset(t)
	desc, err := Describe(context.Background(), srv.Client(t), "P", "scores")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if desc.Rows != 4 || len(desc.Columns) != 2 {
		t.Fatalf("unexpected description %+v", desc)
	}
	name := desc.Columns[0]
	if name.Count != 4 || name.Distinct != 3 || name.Mean != nil {
		t.Fatalf("unexpected name stats %+v", name)
	}
	score := desc.Columns[1]
	if score.Count != 3 || score.Missing != 1 || *score.Min != 10 || *score.Max != 30 || *score.Mean != 20 {
		t.Fatalf("unexpected score stats %+v", score)
	}
}

func TestToCSVString(t *testing.T) {
	srv := newDataset(t)
	out, err := ToCSVString(context.Background(), srv.Client(t), "P", "scores", 2)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if out != "name,score\nann,10\nbo,20\n" {
		t.Fatalf("unexpected csv %q", out)
	}
}

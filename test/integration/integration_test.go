package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/internal/cache"
	"github.com/iwvelando/safety-dashboard/internal/config"
	"github.com/iwvelando/safety-dashboard/internal/dashboard"
	"github.com/iwvelando/safety-dashboard/internal/server"
	"github.com/iwvelando/safety-dashboard/pkg/output"
	"go.uber.org/zap"
)

func loadTestConfig(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return conf
}

func newSnapshot(conf *config.Configuration) *cache.Snapshot[*accidents.Dataset] {
	opts := conf.LoaderOptions()
	return cache.New[*accidents.Dataset](func(path string) (*accidents.Dataset, error) {
		return accidents.Load(path, opts)
	}, conf.Data.Invalidation, zap.NewNop())
}

// TestSummaryPipeline loads the fixture exactly as the command does in
// summary mode and checks the rendered summary.
func TestSummaryPipeline(t *testing.T) {
	conf := loadTestConfig(t)

	ds, err := newSnapshot(conf).Get(conf.Data.Path)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ds.Len() != 5 {
		t.Fatalf("expected 5 records, got %d", ds.Len())
	}

	page := dashboard.Build(ds, dashboard.Options{TopK: conf.Data.TopK, Mode: conf.Data.Mode})

	chart, ok := page.Chart(dashboard.ChartAccidentType)
	if !ok {
		t.Fatal("expected accident type chart")
	}
	if got := strings.Join(chart.Labels, ","); got != "Queda,Corte" {
		t.Errorf("topK 2 accident types = %s, want Queda,Corte", got)
	}

	functions, ok := page.Chart(dashboard.ChartJobFunction)
	if !ok {
		t.Fatal("expected job function chart")
	}
	if got := strings.Join(functions.Labels, ","); got != "Gari,Motorista" {
		t.Errorf("topK 2 job functions = %s, want Gari,Motorista", got)
	}

	var buf bytes.Buffer
	if err := output.PrettySummary(&buf, page); err != nil {
		t.Fatalf("PrettySummary() error = %v", err)
	}
	for _, want := range []string{"Total de Acidentes   | 5", "R$ 11.335,00", "2024-03 | 1"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, buf.String())
		}
	}
}

// TestServerEndToEnd serves the fixture over a real listener.
func TestServerEndToEnd(t *testing.T) {
	conf := loadTestConfig(t)
	snapshot := newSnapshot(conf)

	handler, err := server.NewHandler(zap.NewNop(), snapshot, server.Options{
		DataPath: conf.Data.Path,
		TopK:     conf.Data.TopK,
		Mode:     conf.Data.Mode,
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/dashboard")
	if err != nil {
		t.Fatalf("GET /api/dashboard error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var page dashboard.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Source != "acidentes_teste.csv" {
		t.Errorf("unexpected source %q", page.Source)
	}
	if len(page.Warnings) != 1 {
		t.Errorf("expected one substitution warning, got %v", page.Warnings)
	}

	for _, path := range []string{"/", "/riscos", "/api/records.csv", "/healthz"} {
		r, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		_ = r.Body.Close()
		if r.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", path, r.StatusCode)
		}
	}

	if loads := snapshot.Loads(); loads != 1 {
		t.Errorf("expected the fixture to be loaded once, got %d", loads)
	}
}

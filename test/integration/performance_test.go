package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/internal/dashboard"
	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/iwvelando/safety-dashboard/pkg/testutil"
)

var (
	perfTypes       = []string{"Queda", "Corte", "Choque", "Queimadura", "Contusão", "Torção"}
	perfShifts      = []string{"Matutino", "Vespertino", "Noturno", "Integral"}
	perfDepartments = []string{"SEMUSB", "SEMED", "SEMOB", "SEMSA", "SEMAD"}
)

func writeLargeCSV(tb testing.TB, rows int) string {
	tb.Helper()

	var b strings.Builder
	b.WriteString(testutil.SampleHeader)
	b.WriteByte('\n')
	for i := 0; i < rows; i++ {
		day := i%28 + 1
		month := i%12 + 1
		fmt.Fprintf(&b, "%02d/%02d/2023,%s,Típico,%s,%s,Função %d,%s,\"R$ %d.%03d,%02d\",%d,%d\n",
			day, month,
			perfTypes[i%len(perfTypes)],
			[]string{"Feminino", "Masculino"}[i%2],
			perfShifts[i%len(perfShifts)],
			i%40,
			perfDepartments[i%len(perfDepartments)],
			i%9+1, i%1000, i%100,
			i%15,
			2023000000+i,
		)
	}

	path := filepath.Join(tb.TempDir(), "acidentes.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		tb.Fatalf("failed to write large CSV: %v", err)
	}
	return path
}

// TestPerformance checks that a realistic yearly spreadsheet loads and
// aggregates quickly.
func TestPerformance(t *testing.T) {
	path := writeLargeCSV(t, 20000)

	start := time.Now()
	ds, err := accidents.Load(path, accidents.Options{Mode: constants.ModeStrict})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	page := dashboard.Build(ds, dashboard.Options{})
	buildTime := time.Since(start)

	t.Logf("Performance results: load=%v build=%v records=%d", loadTime, buildTime, ds.Len())

	if ds.Len() != 20000 {
		t.Errorf("expected 20000 records, got %d", ds.Len())
	}
	monthly, ok := page.Chart(dashboard.ChartMonthly)
	if !ok || len(monthly.Labels) != 12 {
		t.Errorf("expected 12 months, got %v", monthly.Labels)
	}
	if total := loadTime + buildTime; total > 10*time.Second {
		t.Errorf("pipeline took %v, expected under 10s", total)
	}
}

func BenchmarkBuild(b *testing.B) {
	ds, err := accidents.Load(writeLargeCSV(b, 5000), accidents.Options{})
	if err != nil {
		b.Fatalf("Load() error = %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = dashboard.Build(ds, dashboard.Options{})
	}
}

func BenchmarkLoad(b *testing.B) {
	path := writeLargeCSV(b, 5000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := accidents.Load(path, accidents.Options{}); err != nil {
			b.Fatalf("Load() error = %v", err)
		}
	}
}

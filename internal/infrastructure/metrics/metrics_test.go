package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.TransactionsApplied == nil || m.AccountsCreated == nil || m.QueueDepth == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.TransactionsApplied.WithLabelValues("deposit").Inc()
	m.TransactionsRejected.WithLabelValues("withdrawal", "insufficient_funds").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.TransactionsApplied.WithLabelValues("deposit")); got != 1 {
		t.Fatalf("expected 1 applied deposit, got %v", got)
	}
}

func TestNewOnSeparateRegistries(t *testing.T) {
	// Each registry gets its own collectors, so repeated construction is safe.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

func TestWriteTextfile(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	m.AccountsCreated.Add(3)

	path := filepath.Join(t.TempDir(), "txengine.prom")
	if err := WriteTextfile(path, registry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}

	if !strings.Contains(string(data), "txengine_accounts_created_total 3") {
		t.Fatalf("expected accounts counter in output, got:\n%s", data)
	}
}

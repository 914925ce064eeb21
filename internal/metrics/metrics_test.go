package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/cwygoda/jobtrack/internal/domain"
)

func TestObserveSubmission(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSubmission(ResultInserted)
	m.ObserveSubmission(ResultDuplicate)
	m.ObserveSubmission(ResultDuplicate)

	require.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(ResultInserted)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues(ResultDuplicate)))
	require.Equal(t, 0.0, testutil.ToFloat64(m.submissions.WithLabelValues(ResultFailed)))
}

func TestObserveExtractionAndFetch(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveExtraction(domain.OutcomeStructured)
	m.ObserveExtraction(domain.OutcomeFallback)
	m.ObserveFetch(150*time.Millisecond, nil)
	m.ObserveFetch(time.Second, errors.New("timeout"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("structured")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.extractions.WithLabelValues("fallback")))
	require.Equal(t, 2, testutil.CollectAndCount(m.fetchSeconds))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveSubmission(ResultInserted)
		m.ObserveExtraction(domain.OutcomeEmpty)
		m.ObserveFetch(time.Second, nil)
	})
	require.NoError(t, m.WriteTextfile("/should/not/be/written"))
	require.Nil(t, m.Registry())
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveSubmission(ResultInserted)

	path := filepath.Join(t.TempDir(), "jobtrack.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `jobtrack_submissions_total{result="inserted"} 1`), string(data))
}

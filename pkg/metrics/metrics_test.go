package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCommandsIssuedIncrementsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CommandsIssued.WithLabelValues("remote_control").Inc()
	m.CommandsIssued.WithLabelValues("remote_control").Inc()
	m.CommandsIssued.WithLabelValues("start_title").Inc()

	var metric dto.Metric
	require.NoError(t, m.CommandsIssued.WithLabelValues("remote_control").Write(&metric))
	require.Equal(t, float64(2), metric.GetCounter().GetValue())

	metric = dto.Metric{}
	require.NoError(t, m.CommandsIssued.WithLabelValues("start_title").Write(&metric))
	require.Equal(t, float64(1), metric.GetCounter().GetValue())
}

func TestLoginResultsPartitionsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LoginResults.WithLabelValues("success").Inc()
	m.LoginResults.WithLabelValues("failure").Inc()
	m.LoginResults.WithLabelValues("failure").Inc()

	var metric dto.Metric
	require.NoError(t, m.LoginResults.WithLabelValues("failure").Write(&metric))
	require.Equal(t, float64(2), metric.GetCounter().GetValue())
}

package sim

import (
	"github.com/votegrid/votegrid/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("votegrid/sim")
var metrics = struct {
	steps     metric.Int64Counter
	ticks     metric.Int64Counter
	batchRuns metric.Int64Counter
}{
	steps: measurements.Must(meter.Int64Counter("votegrid_sim_steps",
		metric.WithDescription("Number of simulation steps taken."))),
	ticks: measurements.Must(meter.Int64Counter("votegrid_sim_player_ticks",
		metric.WithDescription("Number of clock ticks handled by players."))),
	batchRuns: measurements.Must(meter.Int64Counter("votegrid_sim_batch_runs",
		metric.WithDescription("Number of simulations run to completion in batches."))),
}

package catalog

import (
	"github.com/votegrid/votegrid/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("votegrid/catalog")
var metrics = struct {
	plansStored   metric.Int64Counter
	plansImported metric.Int64Counter
}{
	plansStored: measurements.Must(meter.Int64Counter("votegrid_catalog_plans_stored",
		metric.WithDescription("Number of plans stored in the catalog."))),
	plansImported: measurements.Must(meter.Int64Counter("votegrid_catalog_plans_imported",
		metric.WithDescription("Number of plans imported from snapshots."))),
}

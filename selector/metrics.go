package selector

import (
	"github.com/votegrid/votegrid/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrKind     = attribute.Key("kind")
	attrKindGrid = attrKind.String("grid")
	attrKindMap  = attrKind.String("map")
)

var meter = otel.Meter("votegrid/selector")
var metrics = struct {
	updates     metric.Int64Counter
	entities    metric.Int64Histogram
	activeIndex metric.Int64Gauge
}{
	updates: measurements.Must(meter.Int64Counter("votegrid_selector_updates",
		metric.WithDescription("Number of selector updates labelled by kind."))),
	entities: measurements.Must(meter.Int64Histogram("votegrid_selector_entities",
		metric.WithDescription("Number of voters or precincts published per update, labelled by kind."))),
	activeIndex: measurements.Must(meter.Int64Gauge("votegrid_selector_active_index",
		metric.WithDescription("Index of the active configuration, labelled by kind."))),
}

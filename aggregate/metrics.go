package aggregate

import (
	"github.com/votegrid/votegrid/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrKind       = attribute.Key("kind")
	attrKindGrid   = attrKind.String("grid")
	attrKindMap    = attrKind.String("map")
	attrKindFocus  = attrKind.String("focus")
	attrHoverEvent = attribute.Key("hover")
)

var meter = otel.Meter("votegrid/aggregate")
var metrics = struct {
	results        metric.Int64Counter
	votesTabulated metric.Int64Counter
	districts      metric.Int64Gauge
	hovers         metric.Int64Counter
}{
	results: measurements.Must(meter.Int64Counter("votegrid_aggregate_results",
		metric.WithDescription("Number of result events emitted, labelled by kind."))),
	votesTabulated: measurements.Must(meter.Int64Counter("votegrid_aggregate_votes_tabulated",
		metric.WithDescription("Number of votes tabulated by grid result aggregators."))),
	districts: measurements.Must(meter.Int64Gauge("votegrid_aggregate_districts",
		metric.WithDescription("Number of districts in the latest result, labelled by kind."))),
	hovers: measurements.Must(meter.Int64Counter("votegrid_aggregate_hovers",
		metric.WithDescription("Number of hover events received by district aggregators, labelled by hover kind."))),
}

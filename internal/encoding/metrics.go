package encoding

import (
	"github.com/votegrid/votegrid/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrCodec        = attribute.Key("codec")
	attrCodecCbor    = attrCodec.String("cbor")
	attrCodecZstd    = attrCodec.String("zstd")
	attrAction       = attribute.Key("action")
	attrActionEncode = attrAction.String("encode")
	attrActionDecode = attrAction.String("decode")

	meter = otel.Meter("votegrid/internal/encoding")

	metrics = struct {
		codecTime   metric.Float64Histogram
		encodedSize metric.Int64Histogram
		ratio       metric.Float64Histogram
	}{
		codecTime: measurements.Must(meter.Float64Histogram(
			"votegrid_encoding_time",
			metric.WithDescription("Time spent encoding or decoding a value."),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5),
		)),
		encodedSize: measurements.Must(meter.Int64Histogram(
			"votegrid_encoding_size",
			metric.WithDescription("Size of encoded values."),
			metric.WithUnit("By"),
			metric.WithExplicitBucketBoundaries(64, 256, 1<<10, 4<<10, 16<<10, 64<<10, 256<<10, 1<<20),
		)),
		ratio: measurements.Must(meter.Float64Histogram(
			"votegrid_encoding_zstd_ratio",
			metric.WithDescription("Compressed size over CBOR size of zstd-encoded values."),
			metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 0.75, 1.0, 1.5),
		)),
	}
)

func attrSuccess(err error) attribute.KeyValue {
	return attribute.Bool("success", err == nil)
}

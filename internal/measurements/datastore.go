package measurements

import (
	"context"
	"time"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	_ datastore.Datastore = (*MeteredDatastore)(nil)

	attrOperation       = attribute.Key("operation")
	attrOperationGet    = attrOperation.String("get")
	attrOperationHas    = attrOperation.String("has")
	attrOperationSize   = attrOperation.String("get-size")
	attrOperationQuery  = attrOperation.String("query")
	attrOperationPut    = attrOperation.String("put")
	attrOperationDelete = attrOperation.String("delete")
	attrOperationSync   = attrOperation.String("sync")
	attrOperationClose  = attrOperation.String("close")
)

// MeteredDatastore wraps a datastore, recording the latency of every
// operation and the bytes moved by reads and writes.
type MeteredDatastore struct {
	delegate datastore.Datastore
	store    attribute.KeyValue

	latency metric.Float64Histogram
	bytes   metric.Int64Histogram
}

// NewMeteredDatastore wraps delegate. Measurements are labelled with the given
// store name so that several stores may share the same instruments.
func NewMeteredDatastore(meter metric.Meter, store string, delegate datastore.Datastore) *MeteredDatastore {
	return &MeteredDatastore{
		delegate: delegate,
		store:    attribute.String("store", store),
		latency: Must(meter.Float64Histogram("votegrid_datastore_latency",
			metric.WithDescription("The datastore latency labelled by store, operation and status."),
			metric.WithUnit("s"))),
		bytes: Must(meter.Int64Histogram("votegrid_datastore_bytes",
			metric.WithDescription("The bytes read or written labelled by store, operation and status."),
			metric.WithUnit("By"))),
	}
}

func (m *MeteredDatastore) Get(ctx context.Context, key datastore.Key) (_value []byte, _err error) {
	defer m.observe(ctx, attrOperationGet, time.Now(), func() int { return len(_value) }, &_err)
	return m.delegate.Get(ctx, key)
}

func (m *MeteredDatastore) Has(ctx context.Context, key datastore.Key) (_ bool, _err error) {
	defer m.observe(ctx, attrOperationHas, time.Now(), nil, &_err)
	return m.delegate.Has(ctx, key)
}

func (m *MeteredDatastore) GetSize(ctx context.Context, key datastore.Key) (_size int, _err error) {
	defer m.observe(ctx, attrOperationSize, time.Now(), nil, &_err)
	return m.delegate.GetSize(ctx, key)
}

func (m *MeteredDatastore) Query(ctx context.Context, q query.Query) (_ query.Results, _err error) {
	defer m.observe(ctx, attrOperationQuery, time.Now(), nil, &_err)
	return m.delegate.Query(ctx, q)
}

func (m *MeteredDatastore) Put(ctx context.Context, key datastore.Key, value []byte) (_err error) {
	defer m.observe(ctx, attrOperationPut, time.Now(), func() int { return len(value) }, &_err)
	return m.delegate.Put(ctx, key, value)
}

func (m *MeteredDatastore) Delete(ctx context.Context, key datastore.Key) (_err error) {
	defer m.observe(ctx, attrOperationDelete, time.Now(), nil, &_err)
	return m.delegate.Delete(ctx, key)
}

func (m *MeteredDatastore) Sync(ctx context.Context, prefix datastore.Key) (_err error) {
	defer m.observe(ctx, attrOperationSync, time.Now(), nil, &_err)
	return m.delegate.Sync(ctx, prefix)
}

func (m *MeteredDatastore) Close() (_err error) {
	defer m.observe(context.Background(), attrOperationClose, time.Now(), nil, &_err)
	return m.delegate.Close()
}

func (m *MeteredDatastore) observe(ctx context.Context, operation attribute.KeyValue, start time.Time, size func() int, err *error) {
	attributes := metric.WithAttributes(m.store, operation, Status(ctx, *err))
	m.latency.Record(ctx, time.Since(start).Seconds(), attributes)
	if size != nil {
		m.bytes.Record(ctx, int64(size()), attributes)
	}
}

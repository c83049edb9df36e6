// Package encoding provides the codecs used to persist values that implement
// CBOR marshalling.
package encoding

import (
	"bytes"
	"context"
	"time"

	"github.com/klauspost/compress/zstd"
	cbg "github.com/whyrusleeping/cbor-gen"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// maxDecompressedSize bounds the memory allocated by the zstd decoder, and so
// the size of any single encoded value. A 1MiB limit fits a plan of roughly
// half a million cells.
const maxDecompressedSize = 1 << 20

type CBORMarshalUnmarshaler interface {
	cbg.CBORMarshaler
	cbg.CBORUnmarshaler
}

// EncodeDecoder converts values of type T to and from bytes.
type EncodeDecoder[T CBORMarshalUnmarshaler] interface {
	Encode(v T) ([]byte, error)
	Decode([]byte, T) error
}

var (
	_ EncodeDecoder[CBORMarshalUnmarshaler] = (*CBOR[CBORMarshalUnmarshaler])(nil)
	_ EncodeDecoder[CBORMarshalUnmarshaler] = (*ZSTD[CBORMarshalUnmarshaler])(nil)
)

// CBOR encodes values as plain CBOR.
type CBOR[T CBORMarshalUnmarshaler] struct{}

func NewCBOR[T CBORMarshalUnmarshaler]() *CBOR[T] {
	return &CBOR[T]{}
}

func (c *CBOR[T]) Encode(m T) (_ []byte, _err error) {
	defer recordTime(attrCodecCbor, attrActionEncode, time.Now(), &_err)
	var buf bytes.Buffer
	if err := m.MarshalCBOR(&buf); err != nil {
		return nil, err
	}
	metrics.encodedSize.Record(context.Background(), int64(buf.Len()), metric.WithAttributes(attrCodecCbor))
	return buf.Bytes(), nil
}

func (c *CBOR[T]) Decode(v []byte, t T) (_err error) {
	defer recordTime(attrCodecCbor, attrActionDecode, time.Now(), &_err)
	return t.UnmarshalCBOR(bytes.NewReader(v))
}

// ZSTD encodes values as zstd-compressed CBOR.
type ZSTD[T CBORMarshalUnmarshaler] struct {
	cborEncoding *CBOR[T]
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

func NewZSTD[T CBORMarshalUnmarshaler]() (*ZSTD[T], error) {
	writer, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	reader, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecompressedSize))
	if err != nil {
		return nil, err
	}
	return &ZSTD[T]{
		cborEncoding: &CBOR[T]{},
		compressor:   writer,
		decompressor: reader,
	}, nil
}

func (c *ZSTD[T]) Encode(m T) (_ []byte, _err error) {
	defer recordTime(attrCodecZstd, attrActionEncode, time.Now(), &_err)
	cborEncoded, err := c.cborEncoding.Encode(m)
	if err != nil {
		return nil, err
	}
	if len(cborEncoded) > maxDecompressedSize {
		// Anything larger could not be decoded again.
		return nil, xerrors.Errorf("encoded value cannot exceed maximum size: %d > %d", len(cborEncoded), maxDecompressedSize)
	}
	compressed := c.compressor.EncodeAll(cborEncoded, make([]byte, 0, len(cborEncoded)))
	ctx := context.Background()
	metrics.encodedSize.Record(ctx, int64(len(compressed)), metric.WithAttributes(attrCodecZstd))
	if len(cborEncoded) > 0 {
		metrics.ratio.Record(ctx, float64(len(compressed))/float64(len(cborEncoded)))
	}
	return compressed, nil
}

func (c *ZSTD[T]) Decode(v []byte, t T) (_err error) {
	defer recordTime(attrCodecZstd, attrActionDecode, time.Now(), &_err)
	cborEncoded, err := c.decompressor.DecodeAll(v, make([]byte, 0, len(v)))
	if err != nil {
		return err
	}
	return c.cborEncoding.Decode(cborEncoded, t)
}

func recordTime(codec, action attribute.KeyValue, start time.Time, err *error) {
	metrics.codecTime.Record(context.Background(), time.Since(start).Seconds(),
		metric.WithAttributes(codec, action, attrSuccess(*err)))
}

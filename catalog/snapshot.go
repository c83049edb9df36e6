package catalog

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/autobatch"
	"github.com/multiformats/go-multihash"
	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/crypto/blake2b"
)

// SnapshotVersion is the version of the snapshot format written by Export.
const SnapshotVersion = 1

// ErrPlanCountMismatch signals that a snapshot held a different number of
// plans than its header announced.
var ErrPlanCountMismatch = errors.New("snapshot plan count mismatch")

// SnapshotHeader is the first block of a snapshot.
type SnapshotHeader struct {
	Version uint64
	Plans   uint64
}

// Export writes every plan in the catalog, in name order, to writer. The
// snapshot is a sequence of blocks, each a varint length followed by CBOR: a
// header, then one block per plan. It returns the CID of the whole snapshot.
func (s *Store) Export(ctx context.Context, writer io.Writer) (cid.Cid, *SnapshotHeader, error) {
	names, err := s.List(ctx)
	if err != nil {
		return cid.Undef, nil, err
	}
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return cid.Undef, nil, err
	}
	hw := hashWriter{hasher, writer}
	header := SnapshotHeader{Version: SnapshotVersion, Plans: uint64(len(names))}
	if _, err := writeSnapshotBlock(hw, &header); err != nil {
		return cid.Undef, nil, fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for _, name := range names {
		p, err := s.Get(ctx, name)
		if err != nil {
			return cid.Undef, nil, err
		}
		if _, err := writeSnapshotBlock(hw, p); err != nil {
			return cid.Undef, nil, fmt.Errorf("failed to write plan %q: %w", name, err)
		}
	}
	mh, err := multihash.Encode(hw.hasher.Sum(nil), multihash.BLAKE2B_MIN+31)
	if err != nil {
		return cid.Undef, nil, err
	}
	return cid.NewCidV1(cid.Raw, mh), &header, nil
}

type hashWriter struct {
	hasher hash.Hash
	writer io.Writer
}

func (w hashWriter) Write(p []byte) (n int, err error) {
	if _, err := w.hasher.Write(p); err != nil {
		return 0, err
	}
	return w.writer.Write(p)
}

// SnapshotReader is the input ImportSnapshot reads blocks from.
type SnapshotReader interface {
	io.Reader
	io.ByteReader
}

// ImportSnapshot reads a snapshot written by Export and stores its plans in
// ds, batching the writes. Every block is decoded and validated before the
// first write, so a snapshot that fails to import leaves ds untouched.
func ImportSnapshot(ctx context.Context, snapshot SnapshotReader, ds datastore.Batching) error {
	headerBytes, err := readSnapshotBlock(snapshot)
	if err != nil {
		return fmt.Errorf("failed to read snapshot header: %w", err)
	}
	var header SnapshotHeader
	if err := header.UnmarshalCBOR(bytes.NewReader(headerBytes)); err != nil {
		return fmt.Errorf("failed to decode snapshot header: %w", err)
	}
	if header.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	var plans []*Plan
	for {
		planBytes, err := readSnapshotBlock(snapshot)
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("failed to read plan %d: %w", len(plans), err)
		}
		var p Plan
		if err := p.UnmarshalCBOR(bytes.NewReader(planBytes)); err != nil {
			return fmt.Errorf("failed to decode plan %d: %w", len(plans), err)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("plan %d: %w", len(plans), err)
		}
		plans = append(plans, &p)
	}
	if uint64(len(plans)) != header.Plans {
		return fmt.Errorf("snapshot holds %d plans, header announced %d: %w", len(plans), header.Plans, ErrPlanCountMismatch)
	}

	dsb := autobatch.NewAutoBatching(ds, 1000)
	store, err := NewStore(dsb)
	if err != nil {
		return err
	}
	for _, p := range plans {
		if _, err := store.Put(ctx, p); err != nil {
			return err
		}
	}
	if err := dsb.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush imported plans: %w", err)
	}
	metrics.plansImported.Add(ctx, int64(len(plans)))
	log.Infow("Imported snapshot", "plans", len(plans))
	return nil
}

func (h *SnapshotHeader) MarshalCBOR(w io.Writer) error {
	for _, header := range [][]byte{
		cbg.CborEncodeMajorType(cbg.MajArray, 2),
		cbg.CborEncodeMajorType(cbg.MajUnsignedInt, h.Version),
		cbg.CborEncodeMajorType(cbg.MajUnsignedInt, h.Plans),
	} {
		if _, err := w.Write(header); err != nil {
			return err
		}
	}
	return nil
}

func (h *SnapshotHeader) UnmarshalCBOR(r io.Reader) error {
	*h = SnapshotHeader{}
	maj, extra, err := cbg.CborReadHeader(r)
	if err != nil {
		return err
	}
	if maj != cbg.MajArray || extra != 2 {
		return fmt.Errorf("cbor input for snapshot header was not a two element array (%x, %d)", maj, extra)
	}
	for _, field := range []*uint64{&h.Version, &h.Plans} {
		maj, extra, err := cbg.CborReadHeader(r)
		if err != nil {
			return err
		}
		if maj != cbg.MajUnsignedInt {
			return fmt.Errorf("cbor input for snapshot header field was not an unsigned integer (%x)", maj)
		}
		*field = extra
	}
	return nil
}

// writeSnapshotBlock writes a CBOR-encoded block with a varint-encoded length
// prefix.
func writeSnapshotBlock(writer io.Writer, block cbg.CBORMarshaler) (int64, error) {
	var buffer bytes.Buffer
	if err := block.MarshalCBOR(&buffer); err != nil {
		return 0, err
	}
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, uint64(buffer.Len()))
	len1, err := writer.Write(buf[:n])
	if err != nil {
		return 0, err
	}
	len2, err := buffer.WriteTo(writer)
	if err != nil {
		return 0, err
	}
	return int64(len1) + len2, nil
}

// maxSnapshotBlock bounds the size of a single block read from a snapshot.
const maxSnapshotBlock = 16 << 20

func readSnapshotBlock(reader SnapshotReader) ([]byte, error) {
	n, err := binary.ReadUvarint(reader)
	if err != nil {
		return nil, err
	}
	if n > maxSnapshotBlock {
		return nil, fmt.Errorf("snapshot block of %d bytes exceeds limit of %d", n, maxSnapshotBlock)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, fmt.Errorf("incomplete block, %d bytes expected: %w", n, err)
	}
	return buf, nil
}

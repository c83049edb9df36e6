// Package catalog stores named districting plans in a datastore, encoded as
// zstd-compressed CBOR and identified by content.
package catalog

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/Kubuxu/go-broadcast"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"
	logging "github.com/ipfs/go-log/v2"
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/internal/encoding"
	"github.com/votegrid/votegrid/internal/measurements"
	"golang.org/x/xerrors"
)

var log = logging.Logger("votegrid/catalog")

// ErrPlanNotFound signals that no plan is stored under the requested name.
var ErrPlanNotFound = errors.New("plan not found")

var plansNamespace = datastore.NewKey("/plans")

// Store is a catalog of plans and a relay for newly stored ones.
type Store struct {
	writeLk  sync.Mutex
	ds       datastore.Datastore
	codec    *encoding.ZSTD[*Plan]
	busPlans broadcast.Channel[*Plan]
}

// NewStore opens a catalog in ds. The passed Datastore has to be thread safe.
func NewStore(ds datastore.Datastore) (*Store, error) {
	codec, err := encoding.NewZSTD[*Plan]()
	if err != nil {
		return nil, xerrors.Errorf("creating plan codec: %w", err)
	}
	metered := measurements.NewMeteredDatastore(meter, "catalog", ds)
	return &Store{
		ds:    namespace.Wrap(metered, plansNamespace),
		codec: codec,
	}, nil
}

func keyForPlan(name string) datastore.Key {
	// Escaped so that slashes in a name do not nest keys.
	return datastore.RawKey("/" + url.PathEscape(name))
}

func nameFromKey(key string) (string, error) {
	return url.PathUnescape(strings.TrimPrefix(key, "/"))
}

// Put stores p under its name, replacing any plan stored there, and notifies
// subscribers. It returns the plan's CID.
func (s *Store) Put(ctx context.Context, p *Plan) (cid.Cid, error) {
	if err := p.Validate(); err != nil {
		return cid.Undef, err
	}
	id, err := p.CID()
	if err != nil {
		return cid.Undef, xerrors.Errorf("computing CID of plan %q: %w", p.Name, err)
	}
	encoded, err := s.codec.Encode(p)
	if err != nil {
		return cid.Undef, xerrors.Errorf("encoding plan %q: %w", p.Name, err)
	}

	s.writeLk.Lock()
	defer s.writeLk.Unlock()
	if err := s.ds.Put(ctx, keyForPlan(p.Name), encoded); err != nil {
		return cid.Undef, xerrors.Errorf("putting plan %q: %w", p.Name, err)
	}
	s.busPlans.Publish(p) // Publish within the lock to ensure ordering
	metrics.plansStored.Add(ctx, 1)
	log.Debugw("Stored plan", "name", p.Name, "cid", id, "bytes", len(encoded))
	return id, nil
}

// Get returns the plan stored under name.
func (s *Store) Get(ctx context.Context, name string) (*Plan, error) {
	b, err := s.ds.Get(ctx, keyForPlan(name))
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, xerrors.Errorf("plan %q: %w", name, ErrPlanNotFound)
	}
	if err != nil {
		return nil, xerrors.Errorf("accessing plan %q in datastore: %w", name, err)
	}
	var p Plan
	if err := s.codec.Decode(b, &p); err != nil {
		return nil, xerrors.Errorf("decoding plan %q: %w", name, err)
	}
	return &p, nil
}

// Has checks whether a plan is stored under name.
func (s *Store) Has(ctx context.Context, name string) (bool, error) {
	return s.ds.Has(ctx, keyForPlan(name))
}

// Delete removes the plan stored under name. Deleting a missing plan is not
// an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.writeLk.Lock()
	defer s.writeLk.Unlock()
	return s.ds.Delete(ctx, keyForPlan(name))
}

// List returns the names of all stored plans in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	res, err := s.ds.Query(ctx, query.Query{KeysOnly: true})
	if err != nil {
		return nil, xerrors.Errorf("querying plans: %w", err)
	}
	defer res.Close()
	var names []string
	for r := range res.Next() {
		if r.Error != nil {
			return nil, xerrors.Errorf("listing plans: %w", r.Error)
		}
		name, err := nameFromKey(r.Key)
		if err != nil {
			return nil, xerrors.Errorf("decoding plan key %q: %w", r.Key, err)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Grid lays the plan stored under name over a width x height domain.
func (s *Store) Grid(ctx context.Context, name string, width, height float64) (*grid.Grid, error) {
	p, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return p.Grid(width, height)
}

// Latest returns the most recently stored plan, or nil if none has been
// stored since the catalog was opened.
func (s *Store) Latest() *Plan {
	return s.busPlans.Last()
}

// SubscribeForNewPlans is used to subscribe to the broadcast channel.
// If the passed channel is full at any point, it will be dropped from
// subscription and closed. To stop subscribing, either the closer function can
// be used or the channel can be abandoned. Passing a channel multiple times to
// the Subscribe function will result in a panic.
func (s *Store) SubscribeForNewPlans(ch chan<- *Plan) (last *Plan, closer func()) {
	return s.busPlans.Subscribe(ch)
}

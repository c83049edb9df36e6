package aggregate

import (
	"github.com/votegrid/votegrid/grid"
	"github.com/votegrid/votegrid/model"
	"github.com/votegrid/votegrid/producer"
	"golang.org/x/xerrors"
)

// Hover channel names.
const (
	ChannelMouseOver = "MouseOver"
	ChannelMouseMove = "MouseMove"
	ChannelMouseOut  = "MouseOut"
)

// HoverEvent reports the pointer at X, Y over District.
type HoverEvent struct {
	X, Y     float64
	District model.District
}

// HoverSource is a keyed producer of hover events.
type HoverSource interface {
	Subscribe(channel string, id producer.ID, callback func(HoverEvent)) error
	Unsubscribe(channel string, id producer.ID) error
}

var _ HoverSource = (*HoverFeed)(nil)

// HoverFeed is a HoverSource driven directly by a view layer.
type HoverFeed struct {
	producer.Keyed[HoverEvent]
}

// NewHoverFeed returns a feed with the mouse channels registered.
func NewHoverFeed() *HoverFeed {
	f := &HoverFeed{}
	f.RegisterEventKey(ChannelMouseOver)
	f.RegisterEventKey(ChannelMouseMove)
	f.RegisterEventKey(ChannelMouseOut)
	return f
}

// MouseOver publishes e on ChannelMouseOver.
func (f *HoverFeed) MouseOver(e HoverEvent) { f.send(ChannelMouseOver, e) }

// MouseMove publishes e on ChannelMouseMove.
func (f *HoverFeed) MouseMove(e HoverEvent) { f.send(ChannelMouseMove, e) }

// MouseOut publishes e on ChannelMouseOut.
func (f *HoverFeed) MouseOut(e HoverEvent) { f.send(ChannelMouseOut, e) }

// MoveOver resolves the district under x, y in g and publishes it on
// ChannelMouseMove.
func (f *HoverFeed) MoveOver(g *grid.Grid, x, y float64) error {
	cell, err := g.ComputeCell(x, y)
	if err != nil {
		return xerrors.Errorf("locating hover: %w", err)
	}
	f.MouseMove(HoverEvent{X: x, Y: y, District: cell.District})
	return nil
}

func (f *HoverFeed) send(channel string, e HoverEvent) {
	if err := f.SendEvent(channel, e); err != nil {
		log.Errorw("Failed to publish hover", "channel", channel, "err", err)
	}
}

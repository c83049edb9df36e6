package aggregate

import (
	"github.com/Kubuxu/go-broadcast"
	"github.com/votegrid/votegrid/producer"
	"github.com/votegrid/votegrid/selector"
)

// EventSource is a keyed producer of selector events, typically a
// GridSelector or a MapSelector.
type EventSource interface {
	Subscribe(channel string, id producer.ID, callback func(selector.Event)) error
	Unsubscribe(channel string, id producer.ID) error
}

// ResultSource is a producer of result events, typically a result aggregator.
type ResultSource interface {
	Subscribe(id producer.ID, callback func(*ResultEvent))
	Unsubscribe(id producer.ID)
}

var (
	_ ResultSource = (*GridResultAggregator)(nil)
	_ ResultSource = (*MapResultAggregator)(nil)
)

// resultPublisher delivers result events synchronously to subscribers, and
// asynchronously to channels registered with SubscribeForResults.
type resultPublisher struct {
	producer.Producer[*ResultEvent]
	bus broadcast.Channel[*ResultEvent]
}

func (p *resultPublisher) publish(e *ResultEvent) {
	p.bus.Publish(e)
	p.Send(e)
}

// Latest returns the most recently published result, or nil if none has been
// published yet.
func (p *resultPublisher) Latest() *ResultEvent { return p.bus.Last() }

// SubscribeForResults registers ch to receive every subsequent result. If ch is
// full at any point it is dropped from the subscription and closed. To stop
// receiving, call closer or abandon the channel. Passing the same channel twice
// panics.
func (p *resultPublisher) SubscribeForResults(ch chan<- *ResultEvent) (last *ResultEvent, closer func()) {
	return p.bus.Subscribe(ch)
}

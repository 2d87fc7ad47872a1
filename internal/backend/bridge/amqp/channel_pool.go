package amqp

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

var errClosed = errors.New("pool is closed")

// pool keeps a set of open channels on a single connection. Channels are
// borrowed with get and returned by closing the poolChannel.
type pool struct {
	mu    sync.RWMutex
	chans chan *amqp.Channel
	conn  *amqp.Connection
}

type poolChannel struct {
	mu       sync.RWMutex
	ch       *amqp.Channel
	p        *pool
	unusable bool
}

func newPool(size int, url string) (*pool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp server error")
	}

	p := pool{
		chans: make(chan *amqp.Channel, size),
		conn:  conn,
	}

	for i := 0; i < size; i++ {
		ch, err := conn.Channel()
		if err != nil {
			p.close()
			return nil, errors.Wrap(err, "open channel error")
		}
		p.chans <- ch
	}

	return &p, nil
}

func (p *pool) get() (*poolChannel, error) {
	p.mu.RLock()
	chans, conn := p.chans, p.conn
	p.mu.RUnlock()

	if chans == nil {
		return nil, errClosed
	}

	select {
	case ch := <-chans:
		if ch == nil {
			return nil, errClosed
		}
		return &poolChannel{ch: ch, p: p}, nil
	default:
		ch, err := conn.Channel()
		if err != nil {
			return nil, errors.Wrap(err, "open channel error")
		}
		return &poolChannel{ch: ch, p: p}, nil
	}
}

func (p *pool) put(ch *amqp.Channel) error {
	if ch == nil {
		return errors.New("channel is nil, rejecting")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.chans == nil {
		return ch.Close()
	}

	select {
	case p.chans <- ch:
		return nil
	default:
		return ch.Close()
	}
}

func (p *pool) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chans == nil
}

func (p *pool) close() error {
	p.mu.Lock()
	chans, conn := p.chans, p.conn
	p.chans = nil
	p.conn = nil
	p.mu.Unlock()

	if chans == nil {
		return nil
	}

	close(chans)
	for ch := range chans {
		ch.Close()
	}

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// close returns the channel to the pool, or closes it when it was marked
// unusable.
func (pc *poolChannel) close() error {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.unusable {
		return pc.ch.Close()
	}
	return pc.p.put(pc.ch)
}

func (pc *poolChannel) markUnusable() {
	pc.mu.Lock()
	pc.unusable = true
	pc.mu.Unlock()
}

package worker

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// InProcBus is a channel-backed mailbox for single-process deployments:
// CLI one-shots and tests. It carries the same envelopes as the Redis bus,
// so a producer cannot tell the transports apart.
type InProcBus struct {
	requests chan *model.WorkRequest
	done     chan struct{}

	mutex   sync.Mutex
	waiters map[types.WorkID]chan *model.WorkResponse
	closed  bool
}

// NewInProcBus creates a mailbox with the given queue depth
func NewInProcBus(depth int) *InProcBus {
	if depth <= 0 {
		depth = 64
	}
	return &InProcBus{
		requests: make(chan *model.WorkRequest, depth),
		done:     make(chan struct{}),
		waiters:  map[types.WorkID]chan *model.WorkResponse{},
	}
}

// Submit enqueues a request. The requests channel itself is never closed;
// shutdown is signalled through done, so a Submit racing Close cannot send
// on a closed channel.
func (b *InProcBus) Submit(ctx context.Context, req *model.WorkRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	select {
	case <-b.done:
		return goerr.New("bus is closed")
	default:
	}
	select {
	case b.requests <- req:
		return nil
	case <-b.done:
		return goerr.New("bus is closed")
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "submit cancelled")
	}
}

// Receive blocks until a request is available
func (b *InProcBus) Receive(ctx context.Context) (*model.WorkRequest, error) {
	select {
	case req := <-b.requests:
		return req, nil
	case <-b.done:
		// Drain what was accepted before the close
		select {
		case req := <-b.requests:
			return req, nil
		default:
			return nil, goerr.New("bus is closed")
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await registers interest in a response before the request is submitted
func (b *InProcBus) Await(ctx context.Context, id types.WorkID) (<-chan *model.WorkResponse, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil, goerr.New("bus is closed")
	}
	ch := make(chan *model.WorkResponse, 1)
	b.waiters[id] = ch
	return ch, nil
}

// Respond delivers the response to the registered waiter. A response
// nobody awaits is dropped, matching fire-and-forget producers.
func (b *InProcBus) Respond(ctx context.Context, resp *model.WorkResponse) error {
	b.mutex.Lock()
	ch, ok := b.waiters[resp.ID]
	if ok {
		delete(b.waiters, resp.ID)
	}
	b.mutex.Unlock()

	if ok {
		ch <- resp
	}
	return nil
}

// Close shuts the mailbox down
func (b *InProcBus) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	return nil
}

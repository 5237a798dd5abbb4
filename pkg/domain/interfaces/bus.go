package interfaces

import (
	"context"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// Bus is the transport carrying work envelopes between producers and the
// worker supervisor. Implementations are an in-process mailbox (tests, CLI
// one-shots) and a Redis queue (external producers in other processes).
type Bus interface {
	// Submit enqueues a request for the workers
	Submit(ctx context.Context, req *model.WorkRequest) error

	// Receive blocks until a request is available or the context ends
	Receive(ctx context.Context) (*model.WorkRequest, error)

	// Respond publishes the response for a completed request
	Respond(ctx context.Context, resp *model.WorkResponse) error

	// Await returns a channel delivering the response for the given
	// request id. Must be called before Submit to avoid a lost wakeup.
	Await(ctx context.Context, id types.WorkID) (<-chan *model.WorkResponse, error)

	// Close releases transport resources
	Close() error
}

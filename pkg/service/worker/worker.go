package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/usecase"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// Payload shapes for operations whose input is not already a shared type

// ReadPayload addresses one event file
type ReadPayload struct {
	Path string `json:"path"`
}

// SearchPayload is a substring search request
type SearchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// StatusPayload names the index model to introspect
type StatusPayload struct {
	Model string `json:"model"`
}

// EmbedPayload is a raw embedding request
type EmbedPayload struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Text     string `json:"text"`
}

// Actor executes work requests against the use case surface. It holds no
// state beyond what each request supplies; everything profile-specific
// travels in the envelope. Errors and panics never cross the worker
// boundary raw: every outcome becomes a structured response.
type Actor struct {
	uc *usecase.UseCases
}

// NewActor creates an actor over the use case surface
func NewActor(uc *usecase.UseCases) *Actor {
	return &Actor{uc: uc}
}

// Handle executes one request and always returns a response, converting
// errors to the taxonomy kind and recovering panics
func (a *Actor) Handle(ctx context.Context, req *model.WorkRequest) (resp *model.WorkResponse) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in worker handler",
				"op", req.Op.String(), "panic", r)
			resp = model.NewWorkErrorResponse(req.ID,
				goerr.New("internal worker failure", goerr.V("panic", r)))
		}
	}()

	if err := req.Validate(); err != nil {
		return model.NewWorkErrorResponse(req.ID, err)
	}

	result, err := a.dispatch(ctx, req)
	if err != nil {
		return model.NewWorkErrorResponse(req.ID, err)
	}

	resp, err = model.NewWorkResponse(req.ID, result)
	if err != nil {
		return model.NewWorkErrorResponse(req.ID,
			goerr.Wrap(err, "failed to encode result"))
	}
	return resp
}

func decode[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, goerr.Wrap(types.ErrBadRequest, "unparsable payload")
	}
	return payload, nil
}

func (a *Actor) dispatch(ctx context.Context, req *model.WorkRequest) (any, error) {
	switch req.Op {
	case types.OpEventWrite:
		input, err := decode[interfaces.EventInput](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.WriteEvent(ctx, req.Username, input)

	case types.OpEventRead:
		p, err := decode[ReadPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.ReadEvent(ctx, req.Username, p.Path)

	case types.OpEventSearch:
		p, err := decode[SearchPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.SearchEvents(ctx, req.Username, p.Query, p.Limit)

	case types.OpEventList:
		filter, err := decode[interfaces.ListFilter](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.ListEvents(ctx, req.Username, filter)

	case types.OpIndexBuild:
		input, err := decode[interfaces.BuildInput](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.BuildIndex(ctx, req.Username, input)

	case types.OpIndexQuery:
		input, err := decode[interfaces.QueryInput](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.QueryIndex(ctx, req.Username, input)

	case types.OpIndexAppend:
		input, err := decode[interfaces.AppendInput](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.AppendToIndex(ctx, req.Username, input)

	case types.OpIndexStatus:
		p, err := decode[StatusPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.IndexStatus(ctx, req.Username, p.Model)

	case types.OpIndexEmbed:
		p, err := decode[EmbedPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return a.uc.Embed(ctx, p.Provider, p.Model, p.Text)

	case types.OpStorageStatus:
		return a.uc.StorageStatus(ctx, req.Username)

	default:
		return nil, goerr.Wrap(types.ErrBadRequest, "unknown operation",
			goerr.V("op", req.Op.String()))
	}
}

// DefaultWorkers is the supervisor's worker count unless configured
const DefaultWorkers = 4

// Supervisor runs N workers consuming from the bus. Stopping closes the
// intake but lets in-flight operations run to completion: dispatched work
// is never cancelled.
type Supervisor struct {
	bus     interfaces.Bus
	actor   *Actor
	workers int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSupervisor creates a supervisor with the given worker count
func NewSupervisor(bus interfaces.Bus, actor *Actor, workers int) *Supervisor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Supervisor{bus: bus, actor: actor, workers: workers}
}

// Start launches the worker goroutines
func (s *Supervisor) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	logging.From(ctx).Info("memory workers starting", "workers", s.workers)

	for i := range s.workers {
		s.wg.Add(1)
		go s.run(runCtx, i)
	}
}

func (s *Supervisor) run(ctx context.Context, id int) {
	defer s.wg.Done()
	logger := logging.From(ctx).With("worker", id)

	for {
		req, err := s.bus.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to receive work", "error", err)
			// Back off briefly so a broken transport does not spin
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if req == nil {
			continue
		}

		// The handler context carries the logger but not the run
		// context's cancellation: dispatched work runs to completion
		handleCtx := logging.With(context.Background(), logger)
		resp := s.actor.Handle(handleCtx, req)
		if err := s.bus.Respond(handleCtx, resp); err != nil {
			logger.Error("failed to publish response",
				"request_id", req.ID.String(), "error", err)
		}
	}
}

// Stop stops receiving and waits for in-flight work to finish
func (s *Supervisor) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

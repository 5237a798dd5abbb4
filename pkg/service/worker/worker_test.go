package worker_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/embedding"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/episodic"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/keyring"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/vector"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/worker"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/usecase"
)

type stubProfiles struct{}

func (stubProfiles) StorageConfig(ctx context.Context, username string) (*model.StorageProfile, error) {
	return nil, nil
}

type nopSink struct{}

func (nopSink) Emit(ctx context.Context, rec *model.AuditRecord) {}

func newActor(t *testing.T) *worker.Actor {
	t.Helper()
	router := storage.New(t.TempDir(), stubProfiles{}, keyring.NewCache(),
		storage.WithAuditSink(nopSink{}))
	factory := embedding.NewFactory()
	uc := usecase.New(router, episodic.New(router), vector.New(router, factory), factory)
	return worker.NewActor(uc)
}

func request(t *testing.T, op types.WorkOp, username string, payload any) *model.WorkRequest {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		gt.NoError(t, err).Required()
		raw = data
	}
	return &model.WorkRequest{
		ID:       types.NewWorkID(),
		Op:       op,
		Username: username,
		Payload:  raw,
	}
}

func TestActorHandlesEventWrite(t *testing.T) {
	ctx := context.Background()
	actor := newActor(t)

	req := request(t, types.OpEventWrite, "greg", map[string]any{
		"content": "wrote from a worker",
		"type":    "note",
	})
	resp := actor.Handle(ctx, req)
	gt.Bool(t, resp.Success).True()
	gt.Value(t, resp.ID).Equal(req.ID)

	var out usecase.EventWriteOutput
	gt.NoError(t, json.Unmarshal(resp.Result, &out)).Required()
	gt.Value(t, out.Event.Content).Equal("wrote from a worker")
	gt.Value(t, out.Path).NotEqual("")
}

func TestActorConvertsErrorsToKinds(t *testing.T) {
	ctx := context.Background()
	actor := newActor(t)

	cases := []struct {
		name string
		req  *model.WorkRequest
		kind types.ErrorKind
	}{
		{
			name: "missing index is not_found",
			req: request(t, types.OpIndexQuery, "greg", map[string]any{
				"model": "mock-256", "text": "x",
			}),
			kind: types.KindNotFound,
		},
		{
			name: "empty content is configuration",
			req:  request(t, types.OpEventWrite, "greg", map[string]any{"type": "note"}),
			kind: types.KindConfiguration,
		},
		{
			name: "unknown provider is configuration",
			req: request(t, types.OpIndexEmbed, "greg", map[string]any{
				"provider": "nope", "model": "m", "text": "x",
			}),
			kind: types.KindConfiguration,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := actor.Handle(ctx, tc.req)
			gt.Bool(t, resp.Success).False()
			gt.Value(t, resp.Error.Kind).Equal(tc.kind)
			gt.Value(t, resp.Error.Message).NotEqual("")
		})
	}
}

func TestActorRejectsInvalidEnvelope(t *testing.T) {
	ctx := context.Background()
	actor := newActor(t)

	resp := actor.Handle(ctx, &model.WorkRequest{
		ID: types.NewWorkID(),
		Op: types.WorkOp("bogus.op"),
	})
	gt.Bool(t, resp.Success).False()
	gt.Value(t, resp.Error.Kind).Equal(types.KindConfiguration)
}

func TestSupervisorRoundTrip(t *testing.T) {
	ctx := context.Background()
	actor := newActor(t)
	bus := worker.NewInProcBus(8)
	defer bus.Close()

	sup := worker.NewSupervisor(bus, actor, 2)
	sup.Start(ctx)
	defer sup.Stop()

	resp, err := worker.Call(ctx, bus, types.OpEventWrite, "greg", map[string]any{
		"content": "through the bus",
		"type":    "note",
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, resp.Success).True()

	// Follow-up search flows through the same path
	resp, err = worker.Call(ctx, bus, types.OpEventSearch, "greg", worker.SearchPayload{
		Query: "through the BUS", Limit: 5,
	})
	gt.NoError(t, err).Required()
	gt.Bool(t, resp.Success).True()

	var events []*model.Event
	gt.NoError(t, json.Unmarshal(resp.Result, &events)).Required()
	gt.Array(t, events).Length(1)
}

func TestSupervisorStopDrains(t *testing.T) {
	ctx := context.Background()
	actor := newActor(t)
	bus := worker.NewInProcBus(8)
	defer bus.Close()

	sup := worker.NewSupervisor(bus, actor, 1)
	sup.Start(ctx)

	responses, err := bus.Await(ctx, types.WorkID("never-submitted"))
	gt.NoError(t, err).Required()
	_ = responses

	done := make(chan struct{})
	go func() {
		sup.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestInProcBusSubmitAfterClose(t *testing.T) {
	ctx := context.Background()
	bus := worker.NewInProcBus(8)
	gt.NoError(t, bus.Close()).Required()

	err := bus.Submit(ctx, request(t, types.OpStorageStatus, "greg", nil))
	gt.Error(t, err)

	_, err = bus.Receive(ctx)
	gt.Error(t, err)
}

func TestInProcBusCloseDuringSubmit(t *testing.T) {
	ctx := context.Background()
	bus := worker.NewInProcBus(1)

	// Saturate the buffer so concurrent submits block in the send path
	gt.NoError(t, bus.Submit(ctx, request(t, types.OpStorageStatus, "greg", nil))).Required()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either outcome is fine; sending must never panic
			_ = bus.Submit(ctx, request(t, types.OpStorageStatus, "greg", nil))
		}()
	}

	time.Sleep(10 * time.Millisecond)
	gt.NoError(t, bus.Close()).Required()
	wg.Wait()
}

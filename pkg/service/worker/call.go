package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// Call submits one request and waits for its response, the complete
// producer-side round trip over any bus
func Call(ctx context.Context, bus interfaces.Bus, op types.WorkOp, username string, payload any) (*model.WorkResponse, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to marshal payload")
		}
		raw = data
	}

	req := &model.WorkRequest{
		ID:          types.NewWorkID(),
		Op:          op,
		Username:    username,
		Payload:     raw,
		SubmittedAt: time.Now().UTC(),
	}

	responses, err := bus.Await(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := bus.Submit(ctx, req); err != nil {
		return nil, err
	}

	select {
	case resp, ok := <-responses:
		if !ok || resp == nil {
			return nil, goerr.New("response channel closed",
				goerr.V("request_id", req.ID.String()))
		}
		return resp, nil
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "work call cancelled",
			goerr.V("request_id", req.ID.String()))
	}
}

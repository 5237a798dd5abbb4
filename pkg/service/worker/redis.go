package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/async"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/safe"
)

const (
	redisRequestQueue   = "mnemo:requests"
	redisResponsePrefix = "mnemo:responses:"
)

// RedisBus carries work envelopes over a Redis list (requests) and pub/sub
// channels (responses), so producers in other processes, typically the
// front end that owns sessions and profile unlocking, can drive the
// memory workers.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus connects to Redis and verifies the connection
func NewRedisBus(ctx context.Context, url string) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid redis URL")
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis")
	}

	return &RedisBus{client: client}, nil
}

// Submit pushes the request onto the shared queue
func (b *RedisBus) Submit(ctx context.Context, req *model.WorkRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal work request")
	}
	if err := b.client.LPush(ctx, redisRequestQueue, data).Err(); err != nil {
		return goerr.Wrap(err, "failed to push work request")
	}
	return nil
}

// Receive blocks on the queue until a request arrives
func (b *RedisBus) Receive(ctx context.Context) (*model.WorkRequest, error) {
	result, err := b.client.BRPop(ctx, 0, redisRequestQueue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to pop work request")
	}
	if len(result) != 2 {
		return nil, goerr.New("unexpected BRPOP shape", goerr.V("len", len(result)))
	}

	var req model.WorkRequest
	if err := json.Unmarshal([]byte(result[1]), &req); err != nil {
		return nil, goerr.Wrap(err, "unparsable work request")
	}
	return &req, nil
}

// Respond publishes the response on the request's private channel
func (b *RedisBus) Respond(ctx context.Context, resp *model.WorkResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal work response")
	}
	channel := redisResponsePrefix + resp.ID.String()
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return goerr.Wrap(err, "failed to publish work response")
	}
	return nil
}

// Await subscribes to the request's response channel. Call before Submit so
// the subscription exists when the worker publishes.
func (b *RedisBus) Await(ctx context.Context, id types.WorkID) (<-chan *model.WorkResponse, error) {
	pubsub := b.client.Subscribe(ctx, redisResponsePrefix+id.String())
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to subscribe for response")
	}

	out := make(chan *model.WorkResponse, 1)
	waitCtx := ctx
	async.Dispatch(ctx, func(ctx context.Context) error {
		defer close(out)
		defer safe.Close(ctx, pubsub)

		select {
		case <-waitCtx.Done():
			return nil
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return nil
			}
			var resp model.WorkResponse
			if err := json.Unmarshal([]byte(msg.Payload), &resp); err != nil {
				return goerr.Wrap(err, "unparsable work response",
					goerr.V("request_id", id.String()))
			}
			out <- &resp
		}
		return nil
	})
	return out, nil
}

// Close closes the Redis connection
func (b *RedisBus) Close() error {
	return b.client.Close()
}

package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/embedding"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/episodic"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/keyring"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/vector"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/usecase"
)

type stubProfiles struct{}

func (stubProfiles) StorageConfig(ctx context.Context, username string) (*model.StorageProfile, error) {
	return nil, nil
}

type nopSink struct{}

func (nopSink) Emit(ctx context.Context, rec *model.AuditRecord) {}

func newUseCases(t *testing.T) *usecase.UseCases {
	t.Helper()
	router := storage.New(t.TempDir(), stubProfiles{}, keyring.NewCache(),
		storage.WithAuditSink(nopSink{}))
	factory := embedding.NewFactory()
	return usecase.New(router, episodic.New(router), vector.New(router, factory), factory)
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t)

	out, err := uc.WriteEvent(ctx, "greg", interfaces.EventInput{
		Content: "met the neighbor's dog",
		Type:    "note",
		Tags:    []string{"walk"},
	})
	gt.NoError(t, err).Required()

	event, err := uc.ReadEvent(ctx, "greg", out.Path)
	gt.NoError(t, err).Required()
	gt.Value(t, event.ID).Equal(out.Event.ID)

	matches, err := uc.SearchEvents(ctx, "greg", "neighbor", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(1)

	files, err := uc.ListEvents(ctx, "greg", interfaces.ListFilter{})
	gt.NoError(t, err).Required()
	gt.Array(t, files).Length(1)
}

func TestValidationErrors(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t)

	_, err := uc.WriteEvent(ctx, "", interfaces.EventInput{Content: "x", Type: "note"})
	gt.Error(t, err).Is(types.ErrBadRequest)

	_, err = uc.ReadEvent(ctx, "greg", "")
	gt.Error(t, err).Is(types.ErrBadRequest)

	_, err = uc.SearchEvents(ctx, "greg", "", 10)
	gt.Error(t, err).Is(types.ErrBadRequest)

	_, err = uc.IndexStatus(ctx, "greg", "")
	gt.Error(t, err).Is(types.ErrBadRequest)

	_, err = uc.QueryIndex(ctx, "greg", interfaces.QueryInput{Model: "mock-256"})
	gt.Error(t, err).Is(types.ErrBadRequest)

	_, err = uc.Embed(ctx, "mock", "mock-256", "")
	gt.Error(t, err).Is(types.ErrBadRequest)
}

func TestIndexLifecycle(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t)

	for _, content := range []string{"sailing lesson", "grocery run"} {
		_, err := uc.WriteEvent(ctx, "greg", interfaces.EventInput{
			Content: content, Type: "note",
		})
		gt.NoError(t, err).Required()
	}

	// Build with no include flags defaults to everything
	status, err := uc.BuildIndex(ctx, "greg", interfaces.BuildInput{
		Model: "mock-256", Provider: "mock",
	})
	gt.NoError(t, err).Required()
	gt.Number(t, status.ItemCount).Equal(2)

	hits, err := uc.QueryIndex(ctx, "greg", interfaces.QueryInput{
		Model: "mock-256", Text: "sailing lesson", TopK: 1,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1)
	gt.Value(t, hits[0].Text).Equal("sailing lesson")

	result, err := uc.AppendToIndex(ctx, "greg", interfaces.AppendInput{
		Model:   "mock-256",
		EventID: types.NewEventID(),
		Content: "harbor at dusk",
	})
	gt.NoError(t, err).Required()
	gt.Number(t, result.ItemCount).Equal(3)
}

func TestEmbedDirect(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t)

	out, err := uc.Embed(ctx, "mock", "mock-256", "standalone embedding")
	gt.NoError(t, err).Required()
	gt.Value(t, out.Provider).Equal("mock")
	gt.Number(t, out.Dimension).Equal(embedding.MockDimension)
	gt.Array(t, out.Vector).Length(embedding.MockDimension)
}

func TestStorageStatus(t *testing.T) {
	ctx := context.Background()
	uc := newUseCases(t)

	status, err := uc.StorageStatus(ctx, "greg")
	gt.NoError(t, err).Required()
	gt.Value(t, status.StorageType).Equal(types.StorageInternal)
	gt.Bool(t, status.Unlocked).True()
}

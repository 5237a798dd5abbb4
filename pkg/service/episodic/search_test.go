package episodic_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

func TestSearchCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	for _, content := range []string{
		"Saw a HERON by the river",
		"bought groceries",
		"the heron came back today",
	} {
		_, _, err := fx.store.Write(ctx, "greg", interfaces.EventInput{
			Content: content, Type: "note",
		})
		gt.NoError(t, err).Required()
	}

	matches, err := fx.store.Search(ctx, "greg", "heron", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(2)

	matches, err = fx.store.Search(ctx, "greg", "GROCERIES", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(1)
	gt.Value(t, matches[0].Content).Equal("bought groceries")
}

func TestSearchStopsAtLimit(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	for i := range 10 {
		_, _, err := fx.store.Write(ctx, "greg", interfaces.EventInput{
			Content: fmt.Sprintf("entry %d about tea", i), Type: "note",
		})
		gt.NoError(t, err).Required()
	}

	matches, err := fx.store.Search(ctx, "greg", "tea", 3)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(3)
}

func TestSearchSkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	var paths []string
	for i := range 100 {
		_, relPath, err := fx.store.Write(ctx, "greg", interfaces.EventInput{
			Content: fmt.Sprintf("memory %d mentions lighthouse", i), Type: "note",
		})
		gt.NoError(t, err).Required()
		paths = append(paths, relPath)
	}

	// Corrupt three files in place
	for _, relPath := range paths[:3] {
		abs := filepath.Join(fx.root, "profiles", "greg", "memories", filepath.FromSlash(relPath))
		gt.NoError(t, os.WriteFile(abs, []byte("\x00garbage"), 0o600)).Required()
	}

	matches, err := fx.store.Search(ctx, "greg", "lighthouse", 200)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(97)
}

func TestSearchSkipsLockedFiles(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, map[string]*model.StorageProfile{
		"greg": {Username: "greg", Encryption: types.EncryptionPerFileAES},
	})

	fx.keys.Unlock("greg", testKey(t), 0)
	_, _, err := fx.store.Write(ctx, "greg", interfaces.EventInput{
		Content: "encrypted secret", Type: "note",
	})
	gt.NoError(t, err).Required()
	fx.keys.Lock("greg")

	// Locked profile: encrypted files are skipped, not fatal
	matches, err := fx.store.Search(ctx, "greg", "secret", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(0)
}

func TestSearchEmptyStore(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, nil)

	matches, err := fx.store.Search(ctx, "greg", "anything", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, matches).Length(0)
}

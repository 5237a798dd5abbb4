package vector

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/storage"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/utils/logging"
)

// DefaultEmbedConcurrency bounds parallel embedding calls during a build
const DefaultEmbedConcurrency = 4

// Service is the semantic retrieval layer over the event store's on-disk
// layout. It is the sole writer of index artifacts; a per-(profile, model)
// mutex serializes every read-modify-write so concurrent builds and appends
// cannot lose updates.
type Service struct {
	router      *storage.Router
	factory     interfaces.EmbedderFactory
	concurrency int

	mutex sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures the Service
type Option func(*Service)

// WithConcurrency bounds parallel embedding calls during builds
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a vector index service
func New(router *storage.Router, factory interfaces.EmbedderFactory, opts ...Option) *Service {
	s := &Service{
		router:      router,
		factory:     factory,
		concurrency: DefaultEmbedConcurrency,
		locks:       map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock returns the single-writer mutex for one (profile, model) artifact
func (s *Service) lock(username, indexModel string) *sync.Mutex {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := username + "\x00" + indexModel
	mu, ok := s.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[key] = mu
	}
	return mu
}

// Status reads the artifact header. A missing artifact reports Exists
// false; an unparsable one reports Corrupt so the data-loss signal is not
// hidden behind "not built yet".
func (s *Service) Status(ctx context.Context, username, indexModel string) (*model.IndexStatus, error) {
	data, err := s.router.Read(ctx, artifactRef(username, indexModel))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return &model.IndexStatus{Model: indexModel}, nil
		}
		return nil, err
	}

	var header struct {
		Meta model.IndexMeta `json:"meta"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return &model.IndexStatus{Exists: true, Corrupt: true, Model: indexModel}, nil
	}

	return &model.IndexStatus{
		Exists:    true,
		Model:     header.Meta.Model,
		Provider:  header.Meta.Provider,
		ItemCount: header.Meta.Items,
		CreatedAt: header.Meta.CreatedAt,
	}, nil
}

// document is one embeddable candidate collected by the walk
type document struct {
	id        types.EventID
	path      string
	docType   string
	timestamp *time.Time
	text      string
}

// Build rebuilds the whole artifact from the event store and the task
// directory. Unreadable or minimally-invalid documents are skipped;
// embedding failures abort the build and propagate as-is.
func (s *Service) Build(ctx context.Context, username string, input interfaces.BuildInput) (*model.IndexStatus, error) {
	if input.Model == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "embedding model is required")
	}
	embedder, err := s.factory.Embedder(input.Provider, input.Model)
	if err != nil {
		return nil, err
	}

	mu := s.lock(username, input.Model)
	mu.Lock()
	defer mu.Unlock()

	var docs []document
	if input.Episodic {
		events, err := s.collectEvents(ctx, username)
		if err != nil {
			return nil, err
		}
		docs = append(docs, events...)
	}
	if input.Tasks {
		tasks, err := s.collectTasks(ctx, username)
		if err != nil {
			return nil, err
		}
		docs = append(docs, tasks...)
	}

	items := make([]model.IndexItem, len(docs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, doc := range docs {
		eg.Go(func() error {
			vec, err := embedder.Embed(egCtx, doc.text)
			if err != nil {
				return err
			}
			items[i] = model.IndexItem{
				ID:        doc.id,
				Path:      doc.path,
				Type:      doc.docType,
				Timestamp: doc.timestamp,
				Text:      doc.text,
				Vector:    vec,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	idx := &model.VectorIndex{
		Meta: model.IndexMeta{
			Model:     input.Model,
			Provider:  embedder.Name(),
			CreatedAt: time.Now().UTC(),
		},
		Data: items,
	}
	if err := s.saveIndex(ctx, username, input.Model, idx); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("vector index built",
		"username", username,
		"model", input.Model,
		"provider", embedder.Name(),
		"items", len(items))

	return &model.IndexStatus{
		Exists:    true,
		Model:     idx.Meta.Model,
		Provider:  idx.Meta.Provider,
		ItemCount: len(items),
		CreatedAt: idx.Meta.CreatedAt,
	}, nil
}

// collectEvents walks the event tree and gathers every decodable event
// carrying content. Walk order is deterministic (lexical), so item order in
// the artifact is stable across rebuilds of identical trees.
func (s *Service) collectEvents(ctx context.Context, username string) ([]document, error) {
	root, err := s.router.ResolvePath(ctx, model.PathRef{
		Username: username,
		Category: types.CategoryMemory,
	})
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	var docs []document

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return fs.SkipAll
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := s.router.ReadResolved(ctx, username, path)
		if err != nil {
			logger.Debug("skipping unreadable event", "path", path, "error", err)
			return nil
		}
		var event model.Event
		if err := json.Unmarshal(data, &event); err != nil || event.ID == "" || event.Content == "" {
			logger.Debug("skipping non-indexable document", "path", path)
			return nil
		}

		docType := event.Type
		if docType == "" {
			docType = "episodic"
		}
		ts := event.Timestamp
		docs = append(docs, document{
			id:        event.ID,
			path:      path,
			docType:   docType,
			timestamp: &ts,
			text:      model.CompositeText(event.Content, event.Tags, event.Entities),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// collectTasks reads task documents under state/tasks. Title is the
// minimal required field.
func (s *Service) collectTasks(ctx context.Context, username string) ([]document, error) {
	root, err := s.router.ResolvePath(ctx, model.PathRef{
		Username:    username,
		Category:    types.CategoryState,
		Subcategory: "tasks",
	})
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	var docs []document

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return fs.SkipAll
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := s.router.ReadResolved(ctx, username, path)
		if err != nil {
			logger.Debug("skipping unreadable task", "path", path, "error", err)
			return nil
		}
		var task model.Task
		if err := json.Unmarshal(data, &task); err != nil || task.ID == "" || task.Title == "" {
			logger.Debug("skipping non-indexable task", "path", path)
			return nil
		}

		doc := document{
			id:      types.EventID(task.ID),
			path:    path,
			docType: "task",
			text:    model.CompositeText(task.Title, task.Tags, task.Entities),
		}
		if !task.CreatedAt.IsZero() {
			ts := task.CreatedAt
			doc.timestamp = &ts
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Query embeds the text with the provider recorded in the artifact and
// returns the topK most similar items, filters applied after scoring.
// Querying a profile with no index is a not-found error, never an empty
// result, so callers can distinguish "nothing similar" from "no index yet".
func (s *Service) Query(ctx context.Context, username string, input interfaces.QueryInput) ([]model.QueryHit, error) {
	idx, err := s.loadIndex(ctx, username, input.Model)
	if err != nil {
		return nil, err
	}

	embedder, err := s.factory.Embedder(idx.Meta.Provider, idx.Meta.Model)
	if err != nil {
		return nil, err
	}
	queryVec, err := embedder.Embed(ctx, input.Text)
	if err != nil {
		return nil, err
	}

	topK := input.TopK
	if topK <= 0 {
		topK = 10
	}

	hits := make([]model.QueryHit, 0, len(idx.Data))
	for _, item := range idx.Data {
		if input.TypeFilter != "" && item.Type != input.TypeFilter {
			continue
		}
		if !input.Range.IsZero() {
			if item.Timestamp == nil || !input.Range.Contains(*item.Timestamp) {
				continue
			}
		}
		hits = append(hits, model.QueryHit{
			ID:        item.ID,
			Path:      item.Path,
			Text:      item.Text,
			Score:     Cosine(queryVec, item.Vector),
			Type:      item.Type,
			Timestamp: item.Timestamp,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Append adds one event to an existing artifact, idempotently by event id.
// The embedding uses the provider recorded in the artifact, not whatever
// the caller currently prefers, so all vectors in one index stay
// comparable.
func (s *Service) Append(ctx context.Context, username string, input interfaces.AppendInput) (*interfaces.AppendResult, error) {
	if input.EventID == "" {
		return nil, goerr.Wrap(types.ErrBadRequest, "event id is required")
	}

	mu := s.lock(username, input.Model)
	mu.Lock()
	defer mu.Unlock()

	idx, err := s.loadIndex(ctx, username, input.Model)
	if err != nil {
		return nil, err
	}

	if idx.Find(input.EventID) != nil {
		return &interfaces.AppendResult{ItemCount: len(idx.Data), Appended: false}, nil
	}

	embedder, err := s.factory.Embedder(idx.Meta.Provider, idx.Meta.Model)
	if err != nil {
		return nil, err
	}

	text := model.CompositeText(input.Content, input.Tags, input.Entities)
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	docType := "episodic"
	idx.Data = append(idx.Data, model.IndexItem{
		ID:        input.EventID,
		Path:      input.FilePath,
		Type:      docType,
		Timestamp: input.Timestamp,
		Text:      text,
		Vector:    vec,
	})
	if err := s.saveIndex(ctx, username, input.Model, idx); err != nil {
		return nil, err
	}

	return &interfaces.AppendResult{ItemCount: len(idx.Data), Appended: true}, nil
}

package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/agenthands/finsage/internal/core/model"
	"google.golang.org/api/googleapi"
)

const maxBucketWriteAttempts = 5

// BucketStore keeps the whole container as a single Cloud Storage object.
// Writes carry a generation precondition and are retried when another
// writer got there first.
type BucketStore struct {
	client *storage.Client
	object *storage.ObjectHandle
	mu     sync.Mutex
}

func NewBucketStore(ctx context.Context, bucket, object string) (*BucketStore, error) {
	if bucket == "" {
		return nil, errors.New("memory bucket name is empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &BucketStore{
		client: client,
		object: client.Bucket(bucket).Object(object),
	}, nil
}

func (s *BucketStore) Append(ctx context.Context, key string, entry model.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxBucketWriteAttempts; attempt++ {
		c, gen, err := s.load(ctx)
		if err != nil {
			return persistErr(OpAppend, key, err)
		}
		c[key] = append(c[key], entry)

		err = s.write(ctx, c, gen)
		if err == nil {
			return nil
		}
		if !isPreconditionFailed(err) {
			return persistErr(OpAppend, key, err)
		}
		lastErr = err
	}
	return persistErr(OpAppend, key, fmt.Errorf("gave up after %d conflicting writes: %w", maxBucketWriteAttempts, lastErr))
}

func (s *BucketStore) ReadAll(ctx context.Context, key string) ([]model.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, err := s.load(ctx)
	if err != nil {
		return nil, persistErr(OpRead, key, err)
	}
	if c[key] == nil {
		return []model.MemoryEntry{}, nil
	}
	return c[key], nil
}

func (s *BucketStore) Close(ctx context.Context) error {
	return s.client.Close()
}

// load returns the container and the generation it was read at; 0 means the
// object does not exist yet.
func (s *BucketStore) load(ctx context.Context) (Container, int64, error) {
	r, err := s.object.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return Container{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	c, err := decodeContainer(data)
	if err != nil {
		return nil, 0, err
	}
	return c, r.Attrs.Generation, nil
}

func (s *BucketStore) write(ctx context.Context, c Container, gen int64) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	cond := storage.Conditions{GenerationMatch: gen}
	if gen == 0 {
		cond = storage.Conditions{DoesNotExist: true}
	}

	w := s.object.If(cond).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func isPreconditionFailed(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed
}

package replication

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hindinews/pkg/db"
	"hindinews/pkg/domain"
)

func seed(t *testing.T, store *db.MemoryStore, n int) {
	t.Helper()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Insert(context.Background(), domain.ArticleRecord{
			ID:        fmt.Sprintf("id-%d", i),
			Title:     fmt.Sprintf("खबर %d", i),
			Slug:      fmt.Sprintf("khabar-%d", i),
			SourceURL: fmt.Sprintf("https://example.com/news/%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestReplicate_CopiesMissingRecords(t *testing.T) {
	source := db.NewMemoryStore()
	seed(t, source, 250)

	target := db.NewMemoryStore()
	seed(t, target, 40) // first 40 already present

	r, err := NewReplicator(Config{Source: source, Target: target, BatchSize: 30, Workers: 3})
	require.NoError(t, err)

	res, err := r.Replicate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, res.Processed)
	assert.Equal(t, 210, res.Inserted)
	assert.Equal(t, 40, res.Skipped)

	n, err := target.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(250), n)

	rec, ok := target.Get("https://example.com/news/249")
	require.True(t, ok)
	assert.Equal(t, "khabar-249", rec.Slug)
}

func TestReplicate_IsIdempotent(t *testing.T) {
	source := db.NewMemoryStore()
	seed(t, source, 10)
	target := db.NewMemoryStore()

	r, err := NewReplicator(Config{Source: source, Target: target})
	require.NoError(t, err)

	_, err = r.Replicate(context.Background())
	require.NoError(t, err)
	res, err := r.Replicate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 10, res.Skipped)
}

type brokenTarget struct {
	*db.MemoryStore
}

func (b brokenTarget) Insert(ctx context.Context, rec domain.ArticleRecord) error {
	return errors.New("connection reset")
}

func TestReplicate_StopsOnTargetError(t *testing.T) {
	source := db.NewMemoryStore()
	seed(t, source, 5)

	r, err := NewReplicator(Config{Source: source, Target: brokenTarget{db.NewMemoryStore()}})
	require.NoError(t, err)

	_, err = r.Replicate(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestNewReplicator_RequiresStores(t *testing.T) {
	_, err := NewReplicator(Config{Target: db.NewMemoryStore()})
	assert.Error(t, err)

	_, err = NewReplicator(Config{Source: db.NewMemoryStore()})
	assert.Error(t, err)
}

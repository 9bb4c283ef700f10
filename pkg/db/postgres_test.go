package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hindinews/pkg/domain"
)

func TestExistsQuery(t *testing.T) {
	query, args, err := existsQuery("articles", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, `SELECT 1 FROM "articles" WHERE source_url = $1 LIMIT 1`, query)
	assert.Equal(t, []any{"https://example.com/a"}, args)
}

func TestInsertQuery(t *testing.T) {
	id := uuid.New()
	rec := domain.ArticleRecord{
		ID:        id.String(),
		Title:     "शीर्षक",
		Slug:      "shirshak-1",
		SourceURL: "https://example.com/a",
		Region:    domain.RegionUttarakhand,
		Genre:     domain.GenreWeather,
		CreatedAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Meta:      domain.Meta{AIProvider: "groq", WordCount: 350},
	}

	query, args, err := insertQuery("articles", rec)
	require.NoError(t, err)

	assert.Contains(t, query, `INSERT INTO "articles" (id,title,slug,source_url,`)
	assert.Contains(t, query, "$12")
	require.Len(t, args, 12)
	assert.Equal(t, id, args[0])
	assert.Equal(t, "uttarakhand", args[8])
	assert.Equal(t, "Weather", args[9])

	var meta domain.Meta
	require.NoError(t, json.Unmarshal(args[11].([]byte), &meta))
	assert.Equal(t, "groq", meta.AIProvider)
}

func TestInsertQuery_GeneratesIDWhenInvalid(t *testing.T) {
	_, args, err := insertQuery("articles", domain.ArticleRecord{ID: "not-a-uuid"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, args[0])
	assert.False(t, args[10].(time.Time).IsZero())
}

func TestSchemaSQL_QuotesTable(t *testing.T) {
	sql := schemaSQL(`news"; drop`)
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "news""; drop"`)
}

func TestIsDuplicateMessage(t *testing.T) {
	assert.True(t, isDuplicateMessage(`(23505) duplicate key value violates unique constraint "articles_source_url_key"`))
	assert.False(t, isDuplicateMessage("connection refused"))
}

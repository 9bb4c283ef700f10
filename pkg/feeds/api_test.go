package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hindinews/pkg/sources"
)

func TestFetchNewsData(t *testing.T) {
	var query map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"apikey":   r.URL.Query().Get("apikey"),
			"language": r.URL.Query().Get("language"),
			"q":        r.URL.Query().Get("q"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","totalResults":2,"results":[
			{"title":"देहरादून में बारिश","link":"https://example.com/1","description":"<b>भारी</b> बारिश","pubDate":"2025-03-10 06:30:00","image_url":"https://img.example.com/1.jpg"},
			{"title":"no link"}
		]}`))
	}))
	defer server.Close()

	src := sources.Source{Key: "nd", Kind: sources.KindNewsData, URL: server.URL, Language: "hi", Query: "uttarakhand", APIKey: "k"}
	items := testFetcher().Fetch(context.Background(), src)

	require.Len(t, items, 1)
	assert.Equal(t, "देहरादून में बारिश", items[0].Title)
	assert.Equal(t, "भारी बारिश", items[0].Description)
	assert.Equal(t, "https://img.example.com/1.jpg", items[0].Image)
	assert.Equal(t, time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC), items[0].PublishedAt)
	assert.Equal(t, map[string]string{"apikey": "k", "language": "hi", "q": "uttarakhand"}, query)
}

func TestFetchNewsData_StatusNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","results":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	src := sources.Source{Key: "nd", Kind: sources.KindNewsData, URL: server.URL, APIKey: "k"}
	assert.Empty(t, testFetcher().Fetch(context.Background(), src))
}

func TestFetchAPI_WithoutKeyMakesNoRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	f := testFetcher()
	assert.Empty(t, f.Fetch(context.Background(), sources.Source{Key: "nd", Kind: sources.KindNewsData, URL: server.URL}))
	assert.Empty(t, f.Fetch(context.Background(), sources.Source{Key: "gn", Kind: sources.KindGNews, URL: server.URL}))
	assert.False(t, called)
}

func TestFetchGNews(t *testing.T) {
	var max string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		max = r.URL.Query().Get("max")
		_, _ = w.Write([]byte(`{"totalArticles":1,"articles":[
			{"title":"Budget 2025","description":"Finance minister","url":"https://example.com/g","image":"https://img.example.com/g.jpg","publishedAt":"2025-03-10T05:00:00Z"}
		]}`))
	}))
	defer server.Close()

	src := sources.Source{Key: "gn", Kind: sources.KindGNews, URL: server.URL, ItemCap: 7, APIKey: "k"}
	items := testFetcher().Fetch(context.Background(), src)

	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/g", items[0].URL)
	assert.Equal(t, "7", max)
}

func TestFetchGNews_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":["You did not provide an API key."]}`))
	}))
	defer server.Close()

	src := sources.Source{Key: "gn", Kind: sources.KindGNews, URL: server.URL, APIKey: "k"}
	assert.Empty(t, testFetcher().Fetch(context.Background(), src))
}

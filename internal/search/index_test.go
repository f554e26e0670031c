package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
)

type fakeES struct {
	mu    sync.Mutex
	calls []string
	last  map[string]any
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)
	if len(body) > 0 {
		f.last = map[string]any{}
		_ = json.Unmarshal(body, &f.last)
	}

	switch {
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"title":"Linen Shirt","price":25}}]}}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		_, _ = io.WriteString(w, `{"acknowledged":true,"result":"created"}`)
	}
}

func newTestIndex(t *testing.T) (*Index, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(es, "products"), fake
}

func TestIndexLifecycle(t *testing.T) {
	t.Parallel()
	ix, fake := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.EnsureIndex(ctx))

	p := models.Product{ID: uuid.New(), Title: "Linen Shirt", Price: 25, Category: &models.Category{Title: "x"}}
	require.NoError(t, ix.IndexProduct(ctx, p))
	assert.Nil(t, fake.last["category"])
	assert.Equal(t, "Linen Shirt", fake.last["title"])

	require.NoError(t, ix.DeleteProduct(ctx, p.ID))

	assert.Equal(t, "HEAD /products", fake.calls[0])
	assert.Equal(t, "PUT /products", fake.calls[1])
	assert.Equal(t, "PUT /products/_doc/"+p.ID.String(), fake.calls[2])
	assert.Equal(t, "DELETE /products/_doc/"+p.ID.String(), fake.calls[3])
}

func TestSearch(t *testing.T) {
	t.Parallel()
	ix, fake := newTestIndex(t)

	body, err := catalog.Build(catalog.Filter{MinPrice: 10, Limit: 5}).SearchBody("linen")
	require.NoError(t, err)
	total, items, err := ix.Search(context.Background(), body)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Linen Shirt", items[0].Title)
	assert.EqualValues(t, 5, fake.last["size"])
}

package es

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

func stubCluster(t *testing.T, status int) *Indexer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &Indexer{Client: client, Index: "product"}
}

func TestIndexProduct(t *testing.T) {
	ix := stubCluster(t, http.StatusOK)
	err := ix.IndexProduct(context.Background(), &models.Product{ID: 1, Name: "Gold Ring"})
	require.NoError(t, err)

	ix = stubCluster(t, http.StatusInternalServerError)
	err = ix.IndexProduct(context.Background(), &models.Product{ID: 1, Name: "Gold Ring"})
	require.Error(t, err)
}

func TestDeleteProduct(t *testing.T) {
	ix := stubCluster(t, http.StatusOK)
	require.NoError(t, ix.DeleteProduct(context.Background(), 1))

	// Deleting a never-indexed product is not a failure.
	ix = stubCluster(t, http.StatusNotFound)
	require.NoError(t, ix.DeleteProduct(context.Background(), 1))

	ix = stubCluster(t, http.StatusInternalServerError)
	require.Error(t, ix.DeleteProduct(context.Background(), 1))
}

func TestNilIndexerIsNoOp(t *testing.T) {
	var ix *Indexer
	require.NoError(t, ix.IndexProduct(context.Background(), &models.Product{ID: 1}))
	require.NoError(t, ix.DeleteProduct(context.Background(), 1))

	empty := &Indexer{}
	require.NoError(t, empty.IndexProduct(context.Background(), &models.Product{ID: 1}))
	require.NoError(t, empty.DeleteProduct(context.Background(), 1))
}

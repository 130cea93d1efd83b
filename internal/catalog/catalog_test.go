package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

func TestDBResolver(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	product := models.Product{
		Name:   "Gold Ring",
		Price:  120,
		Images: models.ImageList{"ring.jpg"},
	}
	require.NoError(t, db.Create(&product).Error)

	r := NewDBResolver(db)
	ctx := context.Background()

	res := r.Resolve(ctx, product.ID)
	require.True(t, res.OK)
	require.Equal(t, "Gold Ring", res.Data.Name)
	require.Equal(t, 120.0, res.Data.Price)
	require.Equal(t, models.ImageList{"ring.jpg"}, res.Data.Images)

	res = r.Resolve(ctx, 999)
	require.False(t, res.OK)
	require.Equal(t, ErrNotFound, res.Err)
}

func TestClientResolveOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/products/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"Gold Ring","price":120,"images":["ring.jpg"]}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Resolve(context.Background(), 1)
	require.True(t, res.OK)
	require.Equal(t, uint(1), res.Data.ID)
	require.Equal(t, "Gold Ring", res.Data.Name)
}

func TestClientResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Resolve(context.Background(), 42)
	require.False(t, res.OK)
	require.Equal(t, ErrNotFound, res.Err)
}

func TestClientResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Resolve(context.Background(), 1)
	require.False(t, res.OK)
	require.Equal(t, ErrUnavailable, res.Err)
}

func TestClientResolveBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Resolve(context.Background(), 1)
	require.False(t, res.OK)
	require.Equal(t, ErrDecode, res.Err)
}

func TestClientResolveUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	res := NewClient(srv.URL).Resolve(context.Background(), 1)
	require.False(t, res.OK)
	require.Equal(t, ErrUnavailable, res.Err)
}

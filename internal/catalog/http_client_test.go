package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"title":"Tenis de Caminhada","price":179.9,"image":"https://cdn/1.jpg"},{"id":2,"title":"Tenis VR","price":139.9,"image":"https://cdn/2.jpg"}]`))
	})
	mux.HandleFunc("/stock", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"amount":3},{"id":2,"amount":5}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_Products(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewHTTPClient(srv.URL+"/", time.Second)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Tenis de Caminhada", products[0].Title)
	assert.Equal(t, 179.9, products[0].Price)
	assert.Equal(t, "https://cdn/1.jpg", products[0].Image)
}

func TestHTTPClient_Stock(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewHTTPClient(srv.URL, time.Second)

	stock, err := client.Stock(context.Background())
	require.NoError(t, err)
	require.Len(t, stock, 2)
	assert.Equal(t, int64(2), stock[1].ID)
	assert.Equal(t, 5, stock[1].Amount)
}

func TestHTTPClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.Products(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.Stock(context.Background())
	require.ErrorContains(t, err, "decode stock")
}

func TestHTTPClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	for i := 0; i < 3; i++ {
		_, err := client.Products(context.Background())
		require.ErrorIs(t, err, ErrUnexpectedStatus)
	}

	_, err := client.Products(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	srv := newCatalogServer(t)
	client := NewHTTPClient(srv.URL, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Products(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

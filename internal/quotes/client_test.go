package quotes

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", nil, slog.Default())
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stock/AAPL/quote", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"aapl","companyName":"Apple Inc","latestPrice":187.42}`))
	})

	q, err := client.Lookup(context.Background(), " aapl ")
	require.NoError(t, err)
	require.Equal(t, "AAPL", q.Symbol)
	require.Equal(t, "Apple Inc", q.Name)
	require.InDelta(t, 187.42, q.Price, 1e-9)
}

func TestLookupUnknownSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unknown symbol", http.StatusNotFound)
	})

	_, err := client.Lookup(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestLookupEmptySymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty symbol")
	})

	_, err := client.Lookup(context.Background(), "   ")
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestLookupRejectsEmptyQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.Lookup(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestLookupServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Lookup(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrUnavailable)
}

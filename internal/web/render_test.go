package web

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{9500, "$9,500.00"},
		{1500.5, "$1,500.50"},
		{1234567.89, "$1,234,567.89"},
		{187.42, "$187.42"},
		{-42.5, "-$42.50"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, usd(tt.in))
	}
}

func TestApologyRendersCodeAndMessage(t *testing.T) {
	renderer, err := NewRenderer(slog.Default())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	renderer.Apology(rec, http.StatusBadRequest, "invalid symbol")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "400")
	require.Contains(t, rec.Body.String(), "invalid symbol")
}

func TestRendererParsesAllPages(t *testing.T) {
	renderer, err := NewRenderer(slog.Default())
	require.NoError(t, err)

	for _, page := range []string{
		"index.html", "buy.html", "sell.html", "quote.html", "quoted.html",
		"history.html", "login.html", "register.html", "add_cash.html", "apology.html",
	} {
		require.Contains(t, renderer.pages, page)
	}
}

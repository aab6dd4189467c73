package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "vocabaudio", r.Header.Get("User-Agent"))
		w.Write([]byte("ID3 audio bytes"))
	}))
	defer srv.Close()

	tr := NewHTTP(DefaultOptions(), nil)
	resp := tr.Get(context.Background(), srv.URL+"/cat.mp3")

	require.NoError(t, resp.Err)
	require.True(t, resp.OK())
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, "ID3 audio bytes", string(resp.Body))
}

func TestGetNotFoundIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	opts := DefaultOptions()
	opts.MaxFailures = 1
	tr := NewHTTP(opts, nil)

	for i := 0; i < 3; i++ {
		resp := tr.Get(context.Background(), srv.URL)
		require.NoError(t, resp.Err)
		require.False(t, resp.OK())
		require.Equal(t, http.StatusNotFound, resp.Status)
	}
	require.Equal(t, gobreaker.StateClosed, tr.State())
}

func TestGetServerErrorsTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MaxFailures = 2
	opts.OpenTimeout = time.Hour
	tr := NewHTTP(opts, nil)

	for i := 0; i < 2; i++ {
		resp := tr.Get(context.Background(), srv.URL)
		require.NoError(t, resp.Err)
		require.Equal(t, http.StatusBadGateway, resp.Status)
	}
	require.Equal(t, gobreaker.StateOpen, tr.State())

	resp := tr.Get(context.Background(), srv.URL)
	require.True(t, errors.Is(resp.Err, gobreaker.ErrOpenState))
	require.False(t, resp.OK())
	require.Equal(t, int32(2), hits.Load())
}

func TestGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	resp := NewHTTP(DefaultOptions(), nil).Get(context.Background(), url)
	require.Error(t, resp.Err)
	require.Zero(t, resp.Status)
	require.False(t, resp.OK())
}

func TestGetBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MaxBodyBytes = 16
	resp := NewHTTP(opts, nil).Get(context.Background(), srv.URL)

	require.Error(t, resp.Err)
	require.Contains(t, resp.Err.Error(), "maximum size")
}

func TestGetCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := NewHTTP(DefaultOptions(), nil).Get(ctx, srv.URL)
	require.Error(t, resp.Err)
}

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	grp, ctx := errgroup.WithContext(ctx)
	logger := slog.New(slog.DiscardHandler)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	addr, err := Start(ctx, grp, logger, "test", "127.0.0.1:0", handler)
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://"+addr+"/", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	cancel()
	require.NoError(t, grp.Wait())
}

func TestStart_Disabled(t *testing.T) {
	t.Parallel()

	grp, ctx := errgroup.WithContext(t.Context())
	addr, err := Start(ctx, grp, slog.New(slog.DiscardHandler), "test", "", http.NotFoundHandler())
	require.NoError(t, err)
	assert.Empty(t, addr)
	require.NoError(t, grp.Wait())
}

// Package uitest provides UI testing utilities using Rod.
package uitest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/tally/internal/app"
	"github.com/stolasapp/tally/internal/config"
	"github.com/stolasapp/tally/internal/invoices"
	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/seed"
	"github.com/stolasapp/tally/internal/server"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/viewcache"
)

// TestSeed is the fixed seed used for reproducible test data.
const TestSeed uint64 = 12345

// Server is a test server that runs the app in dev mode.
type Server struct {
	baseURL string
	cancel  context.CancelFunc
	grp     *errgroup.Group
	store   storage.Store
}

// newTestServer creates, seeds and starts a new test server. It is shut
// down when the test completes.
func newTestServer(tb testing.TB) *Server {
	tb.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	grp, ctx := errgroup.WithContext(ctx)

	logger := slog.New(slog.DiscardHandler)

	cfg := testConfig(tb.TempDir())
	store, err := storage.NewDB(ctx, cfg, logger)
	if err != nil {
		cancel()
		require.NoError(tb, err, "failed to create storage")
	}
	srv := &Server{
		cancel: cancel,
		grp:    grp,
		store:  store,
	}
	tb.Cleanup(srv.Close)

	require.NoError(tb, seed.Run(ctx, store, logger, TestSeed), "failed to seed storage")

	views := viewcache.New(cfg.ViewCache.MaxBytes, cfg.ViewCache.MaxAge, logger)
	svc := invoices.New(store, views, logger)
	appServer := app.New(cfg, logger, sec.NewAuthenticator(store, logger), svc, views)

	addr, err := server.Start(ctx, grp, logger, "app", "127.0.0.1:0", appServer)
	require.NoError(tb, err, "failed to start app server")
	srv.baseURL = "http://" + addr
	return srv
}

// BaseURL returns the base URL of the test server.
func (s *Server) BaseURL() string {
	return s.baseURL
}

// Close shuts down the test server.
// Errors are ignored since this runs during test cleanup where failures
// are typically unrecoverable and already logged by the errgroup.
func (s *Server) Close() {
	s.cancel()
	_ = s.grp.Wait()
	_ = s.store.Close()
}

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.LogLevel = config.LogLevelDebug
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DSN = filepath.Join(dir, "db.sqlite")
	cfg.DevMode = true
	return cfg
}

// URL constructs a full URL from the server base URL and a path.
func (s *Server) URL(path string) string {
	return fmt.Sprintf("%s%s", s.baseURL, path)
}

// InvoiceCount returns the number of stored invoices matching query.
func (s *Server) InvoiceCount(ctx context.Context, query string) (int, error) {
	return s.store.CountInvoices(ctx, query)
}

package seed

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/tally/internal/config"
	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/storage/db"
)

func TestInvoices(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	first := Invoices(42, now)
	assert.Equal(t, first, Invoices(42, now), "same seed, same invoices")
	assert.NotEqual(t, first, Invoices(43, now))

	require.GreaterOrEqual(t, len(first), minInvoices)
	require.Less(t, len(first), minInvoices+maxExtraInvoices)

	earliest := now.AddDate(-1, 0, 0).Format(time.DateOnly)
	latest := now.Format(time.DateOnly)
	for _, inv := range first {
		assert.Empty(t, inv.ID)
		assert.NotEmpty(t, inv.CustomerID)
		assert.GreaterOrEqual(t, inv.Amount, int64(minCents))
		assert.Contains(t, []string{db.StatusPending, db.StatusPaid}, inv.Status)
		assert.GreaterOrEqual(t, inv.Date, earliest)
		assert.LessOrEqual(t, inv.Date, latest)
	}
}

func TestSeed_Env(t *testing.T) {
	t.Setenv(EnvSeed, "1234")
	assert.Equal(t, uint64(1234), Seed())
}

func TestRun(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "db.sqlite")
	store, err := storage.NewDB(t.Context(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, Run(t.Context(), store, logger, 7))
	count, err := store.CountInvoices(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, Invoices(7, time.Now()), count)

	user, err := store.GetUserByEmail(t.Context(), DemoEmail)
	require.NoError(t, err)
	assert.Equal(t, DemoName, user.Name)
	require.NoError(t, sec.ComparePassword(DemoPassword, user.PasswordHash))

	// a second run changes nothing
	require.NoError(t, Run(t.Context(), store, logger, 8))
	again, err := store.CountInvoices(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, count, again)
	same, err := store.GetUserByEmail(t.Context(), DemoEmail)
	require.NoError(t, err)
	assert.Equal(t, user.ID, same.ID)
}

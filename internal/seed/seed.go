// Package seed fills an empty store with fake invoices and a demo user for
// development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/stolasapp/tally/internal/sec"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/storage/db"
)

// Demo account credentials.
const (
	DemoName     = "User"
	DemoEmail    = "user@nextmail.com"
	DemoPassword = "123456"
)

// EnvSeed names the environment variable that fixes the generator seed.
const EnvSeed = "TALLY_SEED"

// Generation constants.
const (
	minCustomers       = 6
	maxExtraCustomers  = 4 // 6-9 customers total
	minInvoices        = 13
	maxExtraInvoices   = 12 // 13-24 invoices total (ensures pagination with 6/page)
	minCents           = 100
	maxExtraCents      = 250_000
	pendingProbability = 0.4
)

// Store is the subset of [storage.Store] used for seeding.
type Store interface {
	CreateInvoice(ctx context.Context, invoice db.Invoice) (string, error)
	CountInvoices(ctx context.Context, query string) (int, error)
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	UpsertUser(ctx context.Context, user db.User) (db.User, error)
}

// Seed returns the seed from the TALLY_SEED environment variable, or a
// random value if not set.
func Seed() uint64 {
	if env := os.Getenv(EnvSeed); env != "" {
		if seed, err := strconv.ParseUint(env, 10, 64); err == nil {
			return seed
		}
	}
	return rand.Uint64() //nolint:gosec // intentionally weak random for test data
}

// Invoices generates a deterministic set of invoices for seed, dated within
// the year before now. IDs are left for the store to assign.
func Invoices(seed uint64, now time.Time) []db.Invoice {
	faker := gofakeit.New(seed)

	customers := make([]string, minCustomers+faker.IntN(maxExtraCustomers))
	for i := range customers {
		customers[i] = faker.UUID()
	}

	out := make([]db.Invoice, minInvoices+faker.IntN(maxExtraInvoices))
	for i := range out {
		status := db.StatusPaid
		if faker.Float64() < pendingProbability {
			status = db.StatusPending
		}
		out[i] = db.Invoice{
			CustomerID: customers[faker.IntN(len(customers))],
			Amount:     int64(minCents + faker.IntN(maxExtraCents)),
			Status:     status,
			Date:       faker.DateRange(now.AddDate(-1, 0, 0), now).UTC().Format(time.DateOnly),
		}
	}
	return out
}

// Run seeds store. Invoices are only generated when the store has none, and
// the demo user is only created when missing, so Run may be repeated.
func Run(ctx context.Context, store Store, logger *slog.Logger, seed uint64) error {
	count, err := store.CountInvoices(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to count invoices: %w", err)
	}
	if count == 0 {
		generated := Invoices(seed, time.Now())
		for _, inv := range generated {
			if _, err = store.CreateInvoice(ctx, inv); err != nil {
				return fmt.Errorf("failed to seed invoice: %w", err)
			}
		}
		logger.InfoContext(ctx, "seeded invoices",
			slog.Int("count", len(generated)),
			slog.Uint64("seed", seed),
		)
	}

	_, err = store.GetUserByEmail(ctx, DemoEmail)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("failed to fetch demo user: %w", err)
	}

	hash, err := sec.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	if _, err = store.UpsertUser(ctx, db.User{
		Name:         DemoName,
		Email:        DemoEmail,
		PasswordHash: hash,
	}); err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}
	logger.InfoContext(ctx, "created demo user", slog.String("email", DemoEmail))
	return nil
}

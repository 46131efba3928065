package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stolasapp/tally/internal/config"
	"github.com/stolasapp/tally/internal/storage/db"
)

var validate = validator.New()

// validateEmail reports whether email is a well-formed address.
func validateEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// DB is a [Store] backed by a SQL database.
type DB struct {
	ids     func() string
	db      *sql.DB
	queries *db.Queries
}

// NewDB initializes a DB with the given config and logger.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	dialect := db.Dialect(cfg.Database.Driver)
	handle, err := db.Open(ctx, logger, dialect, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	return &DB{
		ids:     uuid.NewString,
		db:      handle,
		queries: db.New(handle, dialect),
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// CreateInvoice satisfies the [Invoices] interface.
func (d *DB) CreateInvoice(ctx context.Context, invoice db.Invoice) (string, error) {
	id := d.ids()
	err := d.queries.CreateInvoice(ctx, db.CreateInvoiceParams{
		ID:         id,
		CustomerID: invoice.CustomerID,
		Amount:     invoice.Amount,
		Status:     invoice.Status,
		Date:       invoice.Date,
	})
	if err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}
	return id, nil
}

// UpdateInvoice satisfies the [Invoices] interface.
func (d *DB) UpdateInvoice(ctx context.Context, invoice db.Invoice) error {
	err := d.queries.UpdateInvoice(ctx, db.UpdateInvoiceParams{
		CustomerID: invoice.CustomerID,
		Amount:     invoice.Amount,
		Status:     invoice.Status,
		ID:         invoice.ID,
	})
	if err != nil {
		return fmt.Errorf("update invoice %s: %w", invoice.ID, err)
	}
	return nil
}

// DeleteInvoice satisfies the [Invoices] interface.
func (d *DB) DeleteInvoice(ctx context.Context, id string) error {
	if err := d.queries.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}
	return nil
}

// GetInvoice satisfies the [Invoices] interface.
func (d *DB) GetInvoice(ctx context.Context, id string) (db.Invoice, error) {
	inv, err := d.queries.GetInvoice(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return inv, ErrNotFound
	}
	return inv, err
}

// ListInvoices satisfies the [Invoices] interface.
func (d *DB) ListInvoices(ctx context.Context, query string, limit, offset int) ([]db.Invoice, error) {
	return d.queries.ListInvoices(ctx, db.ListInvoicesParams{
		Query:  query,
		Limit:  int64(limit),
		Offset: int64(offset),
	})
}

// CountInvoices satisfies the [Invoices] interface.
func (d *DB) CountInvoices(ctx context.Context, query string) (int, error) {
	count, err := d.queries.CountInvoices(ctx, query)
	return int(count), err
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID string) (db.User, error) {
	user, err := d.queries.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByEmail satisfies the [Users] interface.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (db.User, error) {
	user, err := d.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// UpsertUser satisfies the [Users] interface.
func (d *DB) UpsertUser(ctx context.Context, user db.User) (db.User, error) {
	if !validateEmail(user.Email) {
		return user, ErrInvalidEmail
	}
	if user.ID == "" {
		user.ID = d.ids()
	}
	switch _, err := d.queries.UpsertUser(ctx, db.UpsertUserParams(user)); {
	case errors.Is(err, sql.ErrNoRows):
		return user, ErrAlreadyExists
	default:
		return user, err
	}
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID string) error {
	return d.queries.DeleteUser(ctx, userID)
}

var _ Store = (*DB)(nil)

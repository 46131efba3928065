// Package storage provides the state management for invoices and users.
package storage

import (
	"context"

	"github.com/stolasapp/tally/internal/storage/db"
)

const (
	// ErrNotFound is returned when an invoice or user cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidEmail is returned when a user's email fails validation.
	ErrInvalidEmail Error = "email must be a valid address"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Invoices are the methods on a storage implementation that are responsible
// for accessing and modifying invoices. Each method issues a single
// statement.
type Invoices interface {
	// CreateInvoice inserts the invoice, assigning it a new ID which is
	// returned.
	CreateInvoice(ctx context.Context, invoice db.Invoice) (string, error)
	// UpdateInvoice overwrites the customer, amount and status of the invoice
	// with a matching ID. The date is left untouched. Updating an unknown ID is
	// not an error.
	UpdateInvoice(ctx context.Context, invoice db.Invoice) error
	// DeleteInvoice removes the invoice. Deleting an unknown ID is not an
	// error.
	DeleteInvoice(ctx context.Context, id string) error
	// GetInvoice returns a single invoice. An [ErrNotFound] is returned if the
	// ID does not exist.
	GetInvoice(ctx context.Context, id string) (db.Invoice, error)
	// ListInvoices returns invoices matching the free-text query, newest
	// first, skipping offset records and returning at most limit.
	ListInvoices(ctx context.Context, query string, limit, offset int) ([]db.Invoice, error)
	// CountInvoices returns the number of invoices matching the query.
	CountInvoices(ctx context.Context, query string) (int, error)
}

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying users.
type Users interface {
	// GetUser returns a single user with the specified ID. An [ErrNotFound] is
	// returned if the user ID does not exist.
	GetUser(ctx context.Context, userID string) (db.User, error)
	// GetUserByEmail returns a single user with the specified email. An
	// [ErrNotFound] is returned if the email does not exist.
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	// UpsertUser creates or updates the user. This is a full PUT-style upsert.
	// An [ErrAlreadyExists] error is returned if the email is already in use
	// by another user.
	UpsertUser(ctx context.Context, user db.User) (db.User, error)
	// DeleteUser removes a user. Note that this is a hard delete; data is not
	// recoverable.
	DeleteUser(ctx context.Context, userID string) error
}

// Store is the combination interface for [Invoices] and [Users].
type Store interface {
	Invoices
	Users
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}

// Package invoices implements the validated invoice mutations behind the
// dashboard forms.
//
// Every mutation validates its raw form input before touching the store,
// issues a single statement, and on success tells the [ViewInvalidator] that
// the invoice listing is stale. Navigation is left to the caller: the
// returned [Result] carries the redirect target instead of performing one.
package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stolasapp/tally/internal/pagination"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/storage/db"
)

// ListingPath is the logical path of the invoice listing view.
const ListingPath = "/dashboard/invoices"

// Summary messages reported in a [Result].
const (
	MsgCreateInvalid = "Missing Fields. Failed to Create Invoice."
	MsgCreateFailed  = "Database Error: Failed to Create Invoice."
	MsgUpdateFailed  = "Database Error: Failed to Update Invoice."
	MsgDeleteFailed  = "Database Error: Failed to Delete Invoice."
	MsgDeleted       = "Deleted Invoice."
)

// Outcome classifies a [Result].
type Outcome int

// Mutation outcomes.
const (
	Succeeded Outcome = iota
	ValidationFailed
	PersistenceFailed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case ValidationFailed:
		return "validation failed"
	case PersistenceFailed:
		return "persistence failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a mutation.
type Result struct {
	Outcome Outcome
	// Errors holds per-field messages when validation failed.
	Errors FieldErrors
	// Message is a human-readable summary; empty on create and update success.
	Message string
	// Redirect is where the caller should navigate after success. Empty when
	// the caller should stay where it is.
	Redirect string
	// ID is the identifier of the affected invoice.
	ID string
}

// FormState is the state returned to a form after a failed submission.
type FormState struct {
	Errors  FieldErrors `json:"errors,omitempty"`
	Message string      `json:"message,omitempty"`
}

// State returns the form state for r.
func (r Result) State() FormState {
	return FormState{Errors: r.Errors, Message: r.Message}
}

// ViewInvalidator drops cached renderings of a view.
type ViewInvalidator interface {
	Revalidate(path string)
}

// Service performs invoice mutations and queries.
type Service struct {
	store  storage.Invoices
	views  ViewInvalidator
	logger *slog.Logger
	now    func() time.Time
}

// New creates a [Service].
func New(store storage.Invoices, views ViewInvalidator, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		views:  views,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates in and inserts a new invoice dated today (UTC). Invalid
// input is reported in the [Result] without touching the store.
func (s *Service) Create(ctx context.Context, in CreateInput) Result {
	f, errs := in.validate()
	if errs != nil {
		return Result{
			Outcome: ValidationFailed,
			Errors:  errs,
			Message: MsgCreateInvalid,
		}
	}

	id, err := s.store.CreateInvoice(ctx, db.Invoice{
		CustomerID: f.CustomerID,
		Amount:     f.Cents,
		Status:     f.Status,
		Date:       s.now().UTC().Format(time.DateOnly),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create invoice", slog.Any("error", err))
		return Result{Outcome: PersistenceFailed, Message: MsgCreateFailed}
	}

	s.views.Revalidate(ListingPath)
	return Result{Outcome: Succeeded, Redirect: ListingPath, ID: id}
}

// Update validates in and overwrites the invoice's customer, amount and
// status. Unlike [Service.Create], malformed input is a hard failure: an
// [*InputError] is returned and no [Result] is produced.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Result, error) {
	inv, err := in.validate()
	if err != nil {
		return Result{}, err
	}

	if err = s.store.UpdateInvoice(ctx, inv); err != nil {
		s.logger.ErrorContext(ctx, "failed to update invoice",
			slog.String("id", inv.ID),
			slog.Any("error", err),
		)
		return Result{Outcome: PersistenceFailed, Message: MsgUpdateFailed, ID: inv.ID}, nil
	}

	s.views.Revalidate(ListingPath)
	return Result{Outcome: Succeeded, Redirect: ListingPath, ID: inv.ID}, nil
}

// Delete removes the invoice. A missing invoice is not an error.
func (s *Service) Delete(ctx context.Context, in DeleteInput) Result {
	if err := s.store.DeleteInvoice(ctx, in.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete invoice",
			slog.String("id", in.ID),
			slog.Any("error", err),
		)
		return Result{Outcome: PersistenceFailed, Message: MsgDeleteFailed, ID: in.ID}
	}

	s.views.Revalidate(ListingPath)
	return Result{Outcome: Succeeded, Message: MsgDeleted, ID: in.ID}
}

// Get returns a single invoice, for populating the edit form.
func (s *Service) Get(ctx context.Context, id string) (db.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

// Page is one page of the invoice listing.
type Page struct {
	Invoices   []db.Invoice
	Query      string
	Number     int
	TotalPages int
}

// List returns the requested page of invoices matching query.
func (s *Service) List(ctx context.Context, query string, page pagination.Page) (Page, error) {
	count, err := s.store.CountInvoices(ctx, query)
	if err != nil {
		return Page{}, fmt.Errorf("failed to count invoices: %w", err)
	}
	total := pagination.TotalPages(count, page.Size)
	// past the end shows the last page
	page = page.Clamp(total)
	items, err := s.store.ListInvoices(ctx, query, page.Size, page.Offset())
	if err != nil {
		return Page{}, fmt.Errorf("failed to list invoices: %w", err)
	}
	return Page{
		Invoices:   items,
		Query:      query,
		Number:     page.Number,
		TotalPages: total,
	}, nil
}

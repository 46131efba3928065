package db

import (
	"context"
	"strings"
)

const createInvoice = `INSERT INTO invoices (id, customer_id, amount, status, date) VALUES (?, ?, ?, ?, ?)`

// CreateInvoiceParams are the values bound by [Queries.CreateInvoice].
type CreateInvoiceParams struct {
	ID         string
	CustomerID string
	Amount     int64
	Status     string
	Date       string
}

// CreateInvoice inserts a single invoice row.
func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(createInvoice),
		arg.ID,
		arg.CustomerID,
		arg.Amount,
		arg.Status,
		arg.Date,
	)
	return err
}

const updateInvoice = `UPDATE invoices SET customer_id = ?, amount = ?, status = ? WHERE id = ?`

// UpdateInvoiceParams are the values bound by [Queries.UpdateInvoice].
type UpdateInvoiceParams struct {
	CustomerID string
	Amount     int64
	Status     string
	ID         string
}

// UpdateInvoice rewrites every column of an invoice except its date.
func (q *Queries) UpdateInvoice(ctx context.Context, arg UpdateInvoiceParams) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(updateInvoice),
		arg.CustomerID,
		arg.Amount,
		arg.Status,
		arg.ID,
	)
	return err
}

const deleteInvoice = `DELETE FROM invoices WHERE id = ?`

// DeleteInvoice removes the invoice with the given id, if any.
func (q *Queries) DeleteInvoice(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteInvoice), id)
	return err
}

const getInvoice = `SELECT id, customer_id, amount, status, date FROM invoices WHERE id = ?`

// GetInvoice returns a single invoice.
func (q *Queries) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(getInvoice), id)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.Amount,
		&i.Status,
		&i.Date,
	)
	return i, err
}

const listInvoices = `SELECT id, customer_id, amount, status, date FROM invoices
WHERE LOWER(customer_id) LIKE ? OR LOWER(status) LIKE ? OR date LIKE ?
ORDER BY date DESC, id
LIMIT ? OFFSET ?`

// ListInvoicesParams are the values bound by [Queries.ListInvoices].
type ListInvoicesParams struct {
	Query  string
	Limit  int64
	Offset int64
}

// ListInvoices returns a page of invoices matching the query, newest first.
func (q *Queries) ListInvoices(ctx context.Context, arg ListInvoicesParams) ([]Invoice, error) {
	pattern := likePattern(arg.Query)
	rows, err := q.db.QueryContext(ctx, q.dialect.rebind(listInvoices),
		pattern,
		pattern,
		pattern,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Invoice
	for rows.Next() {
		var i Invoice
		if err := rows.Scan(
			&i.ID,
			&i.CustomerID,
			&i.Amount,
			&i.Status,
			&i.Date,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countInvoices = `SELECT COUNT(*) FROM invoices
WHERE LOWER(customer_id) LIKE ? OR LOWER(status) LIKE ? OR date LIKE ?`

// CountInvoices returns the number of invoices matching the query.
func (q *Queries) CountInvoices(ctx context.Context, query string) (int64, error) {
	pattern := likePattern(query)
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(countInvoices), pattern, pattern, pattern)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getUser = `SELECT id, name, email, password FROM users WHERE id = ?`

// GetUser returns the user with the given id.
func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, q.dialect.rebind(getUser), id))
}

const getUserByEmail = `SELECT id, name, email, password FROM users WHERE email = ?`

// GetUserByEmail returns the user with the given email address.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, q.dialect.rebind(getUserByEmail), email))
}

func (q *Queries) scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var (
		u    User
		hash string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&hash,
	)
	u.PasswordHash = []byte(hash)
	return u, err
}

const upsertUser = `INSERT INTO users (id, name, email, password) VALUES (?, ?, ?, ?)
ON CONFLICT (email) DO UPDATE SET name = excluded.name, password = excluded.password
WHERE users.id = excluded.id
RETURNING id`

// UpsertUserParams are the values bound by [Queries.UpsertUser].
type UpsertUserParams struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
}

// UpsertUser creates or fully replaces a user. If the email belongs to a
// different user, no row is returned and [sql.ErrNoRows] is reported.
func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (string, error) {
	row := q.db.QueryRowContext(ctx, q.dialect.rebind(upsertUser),
		arg.ID,
		arg.Name,
		arg.Email,
		string(arg.PasswordHash),
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes the user with the given id, if any.
func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(deleteUser), id)
	return err
}

// likePattern turns a free-text search into a case-insensitive LIKE pattern.
// LIKE wildcards typed by the user are dropped.
func likePattern(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	query = strings.NewReplacer("%", "", "_", "").Replace(query)
	return "%" + query + "%"
}

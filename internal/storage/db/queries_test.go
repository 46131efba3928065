package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T, dialect Dialect) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	handle, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = handle.Close()
	})
	return New(handle, dialect), mock
}

func TestDialect_Rebind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "sqlite untouched",
			dialect: DialectSQLite,
			query:   deleteInvoice,
			want:    "DELETE FROM invoices WHERE id = ?",
		},
		{
			name:    "postgres numbered",
			dialect: DialectPostgres,
			query:   updateInvoice,
			want:    "UPDATE invoices SET customer_id = $1, amount = $2, status = $3 WHERE id = $4",
		},
		{
			name:    "postgres past nine",
			dialect: DialectPostgres,
			query:   "?,?,?,?,?,?,?,?,?,?,?",
			want:    "$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11",
		},
		{
			name:    "no binds",
			dialect: DialectPostgres,
			query:   "SELECT 1",
			want:    "SELECT 1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.want, test.dialect.rebind(test.query))
		})
	}
}

func TestQueries_Postgres(t *testing.T) {
	t.Parallel()

	t.Run("CreateInvoice", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		mock.ExpectExec(
			"INSERT INTO invoices (id, customer_id, amount, status, date) VALUES ($1, $2, $3, $4, $5)",
		).WithArgs("inv-1", "c1", int64(1550), StatusPending, "2024-03-01").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := q.CreateInvoice(t.Context(), CreateInvoiceParams{
			ID:         "inv-1",
			CustomerID: "c1",
			Amount:     1550,
			Status:     StatusPending,
			Date:       "2024-03-01",
		})
		require.NoError(t, err)
	})

	t.Run("UpdateInvoice", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		mock.ExpectExec(
			"UPDATE invoices SET customer_id = $1, amount = $2, status = $3 WHERE id = $4",
		).WithArgs("c2", int64(200), StatusPaid, "inv-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := q.UpdateInvoice(t.Context(), UpdateInvoiceParams{
			CustomerID: "c2",
			Amount:     200,
			Status:     StatusPaid,
			ID:         "inv-1",
		})
		require.NoError(t, err)
	})

	t.Run("DeleteInvoice propagates driver errors", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		driverErr := errors.New("connection reset")
		mock.ExpectExec("DELETE FROM invoices WHERE id = $1").
			WithArgs("inv-1").
			WillReturnError(driverErr)

		err := q.DeleteInvoice(t.Context(), "inv-1")
		require.ErrorIs(t, err, driverErr)
	})

	t.Run("ListInvoices", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		mock.ExpectQuery(DialectPostgres.rebind(listInvoices)).
			WithArgs("%paid%", "%paid%", "%paid%", int64(6), int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status", "date"}).
				AddRow("inv-1", "c1", int64(100), StatusPaid, "2024-03-02").
				AddRow("inv-2", "c2", int64(250), StatusPaid, "2024-03-01"))

		items, err := q.ListInvoices(t.Context(), ListInvoicesParams{
			Query:  "  PAID ",
			Limit:  6,
			Offset: 12,
		})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, Invoice{
			ID:         "inv-1",
			CustomerID: "c1",
			Amount:     100,
			Status:     StatusPaid,
			Date:       "2024-03-02",
		}, items[0])
	})

	t.Run("CountInvoices", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		mock.ExpectQuery(DialectPostgres.rebind(countInvoices)).
			WithArgs("%%", "%%", "%%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(14)))

		count, err := q.CountInvoices(t.Context(), "")
		require.NoError(t, err)
		assert.Equal(t, int64(14), count)
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		mock.ExpectQuery("SELECT id, name, email, password FROM users WHERE email = $1").
			WithArgs("user@nextmail.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).
				AddRow("u1", "User", "user@nextmail.com", "$2a$10$hash"))

		user, err := q.GetUserByEmail(t.Context(), "user@nextmail.com")
		require.NoError(t, err)
		assert.Equal(t, User{
			ID:           "u1",
			Name:         "User",
			Email:        "user@nextmail.com",
			PasswordHash: []byte("$2a$10$hash"),
		}, user)
	})

	t.Run("UpsertUser conflict", func(t *testing.T) {
		t.Parallel()
		q, mock := newMock(t, DialectPostgres)
		mock.ExpectQuery(DialectPostgres.rebind(upsertUser)).
			WithArgs("u2", "Other", "user@nextmail.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := q.UpsertUser(t.Context(), UpsertUserParams{
			ID:           "u2",
			Name:         "Other",
			Email:        "user@nextmail.com",
			PasswordHash: []byte("hash"),
		})
		require.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestInvoice_FormattedAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$15.50", Invoice{Amount: 1550}.FormattedAmount())
	assert.Equal(t, "$0.05", Invoice{Amount: 5}.FormattedAmount())
	assert.Equal(t, "-$1.00", Invoice{Amount: -100}.FormattedAmount())
}

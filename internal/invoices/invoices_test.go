package invoices

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stolasapp/tally/internal/pagination"
	"github.com/stolasapp/tally/internal/storage"
	"github.com/stolasapp/tally/internal/storage/db"
)

type fakeStore struct {
	mu       sync.Mutex
	err      error
	invoices map[string]db.Invoice
	created  []db.Invoice
	updated  []db.Invoice
	deleted  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{invoices: map[string]db.Invoice{}}
}

func (f *fakeStore) CreateInvoice(_ context.Context, inv db.Invoice) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, inv)
	if f.err != nil {
		return "", f.err
	}
	inv.ID = "inv-" + strconv.Itoa(len(f.created))
	f.invoices[inv.ID] = inv
	return inv.ID, nil
}

func (f *fakeStore) UpdateInvoice(_ context.Context, inv db.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, inv)
	return f.err
}

func (f *fakeStore) DeleteInvoice(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	if f.err != nil {
		return f.err
	}
	delete(f.invoices, id)
	return nil
}

func (f *fakeStore) GetInvoice(_ context.Context, id string) (db.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return inv, storage.ErrNotFound
	}
	return inv, nil
}

func (f *fakeStore) ListInvoices(_ context.Context, _ string, limit, offset int) ([]db.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []db.Invoice
	for i := offset; i < len(f.created) && len(out) < limit; i++ {
		out = append(out, f.created[i])
	}
	return out, nil
}

func (f *fakeStore) CountInvoices(context.Context, string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created), f.err
}

type fakeViews struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeViews) Revalidate(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

var testNow = time.Date(2024, time.March, 1, 23, 30, 0, 0, time.FixedZone("PST", -8*60*60))

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeViews) {
	t.Helper()
	store := newFakeStore()
	views := &fakeViews{}
	svc := New(store, views, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return testNow }
	return svc, store, views
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("stores cents and today's date", func(t *testing.T) {
		t.Parallel()
		svc, store, views := newTestService(t)

		res := svc.Create(t.Context(), CreateInput{
			CustomerID: "c1",
			Amount:     "15.50",
			Status:     "pending",
		})
		assert.Equal(t, Succeeded, res.Outcome)
		assert.Equal(t, ListingPath, res.Redirect)
		assert.NotEmpty(t, res.ID)
		assert.Empty(t, res.Errors)

		require.Len(t, store.created, 1)
		assert.Equal(t, db.Invoice{
			CustomerID: "c1",
			Amount:     1550,
			Status:     db.StatusPending,
			Date:       "2024-03-02", // UTC
		}, store.created[0])
		assert.Equal(t, []string{ListingPath}, views.paths)
	})

	t.Run("amount times one hundred", func(t *testing.T) {
		t.Parallel()
		faker := gofakeit.New(42)
		statuses := []string{db.StatusPending, db.StatusPaid}
		for range 25 {
			svc, store, _ := newTestService(t)
			cents := int64(1 + faker.IntN(10_000_000))
			amount := strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)

			res := svc.Create(t.Context(), CreateInput{
				CustomerID: faker.UUID(),
				Amount:     amount,
				Status:     statuses[faker.IntN(len(statuses))],
			})
			require.Equal(t, Succeeded, res.Outcome, amount)
			require.Len(t, store.created, 1)
			assert.Equal(t, cents, store.created[0].Amount, amount)
		}
	})

	t.Run("non-positive amounts are rejected before the store", func(t *testing.T) {
		t.Parallel()
		for _, amount := range []string{"0", "-1", "-0.01", "", "  ", "0.00", "0.004", "-0.004"} {
			svc, store, views := newTestService(t)
			res := svc.Create(t.Context(), CreateInput{
				CustomerID: "c1",
				Amount:     amount,
				Status:     "paid",
			})
			assert.Equal(t, ValidationFailed, res.Outcome, amount)
			assert.Equal(t, MsgCreateInvalid, res.Message)
			assert.Equal(t, FieldErrors{FieldAmount: {errMsgAmount}}, res.Errors, amount)
			assert.Empty(t, store.created)
			assert.Empty(t, views.paths)
		}
	})

	t.Run("non-numeric amount", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newTestService(t)
		res := svc.Create(t.Context(), CreateInput{
			CustomerID: "c1",
			Amount:     "twelve",
			Status:     "paid",
		})
		assert.Equal(t, ValidationFailed, res.Outcome)
		assert.Equal(t, FieldErrors{FieldAmount: {errMsgNaN}}, res.Errors)
		assert.Empty(t, store.created)
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()
		for _, status := range []string{"", "overdue", "PAID", "pending "} {
			svc, store, _ := newTestService(t)
			res := svc.Create(t.Context(), CreateInput{
				CustomerID: "c1",
				Amount:     "10",
				Status:     status,
			})
			assert.Equal(t, ValidationFailed, res.Outcome, status)
			assert.Equal(t, FieldErrors{FieldStatus: {errMsgStatus}}, res.Errors, status)
			assert.Empty(t, store.created)
		}
	})

	t.Run("every field reported", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newTestService(t)
		res := svc.Create(t.Context(), CreateInput{})
		assert.Equal(t, ValidationFailed, res.Outcome)
		assert.Equal(t, FieldErrors{
			FieldCustomerID: {errMsgCustomer},
			FieldAmount:     {errMsgAmount},
			FieldStatus:     {errMsgStatus},
		}, res.Errors)
		assert.Equal(t, FormState{Errors: res.Errors, Message: MsgCreateInvalid}, res.State())
	})

	t.Run("database failure", func(t *testing.T) {
		t.Parallel()
		svc, store, views := newTestService(t)
		store.err = errors.New("disk full")

		res := svc.Create(t.Context(), CreateInput{
			CustomerID: "c1",
			Amount:     "1",
			Status:     "paid",
		})
		assert.Equal(t, PersistenceFailed, res.Outcome)
		assert.Equal(t, MsgCreateFailed, res.Message)
		assert.Empty(t, res.Redirect)
		assert.Empty(t, views.paths)
	})
}

func TestService_Update(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, store, views := newTestService(t)

		res, err := svc.Update(t.Context(), UpdateInput{
			ID:         "inv-1",
			CustomerID: "c2",
			Amount:     "0.29",
			Status:     "paid",
		})
		require.NoError(t, err)
		assert.Equal(t, Succeeded, res.Outcome)
		assert.Equal(t, ListingPath, res.Redirect)
		require.Len(t, store.updated, 1)
		assert.Equal(t, db.Invoice{
			ID:         "inv-1",
			CustomerID: "c2",
			Amount:     29,
			Status:     db.StatusPaid,
		}, store.updated[0])
		assert.Equal(t, []string{ListingPath}, views.paths)
	})

	t.Run("invalid input is a hard failure", func(t *testing.T) {
		t.Parallel()
		for _, amount := range []string{"0", "-5", "abc"} {
			svc, store, views := newTestService(t)
			res, err := svc.Update(t.Context(), UpdateInput{
				ID:         "inv-1",
				CustomerID: "c2",
				Amount:     amount,
				Status:     "paid",
			})
			require.ErrorIs(t, err, ErrInvalidInput, amount)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Contains(t, inputErr.Errors, FieldAmount)
			assert.Equal(t, Result{}, res)
			assert.Empty(t, store.updated)
			assert.Empty(t, views.paths)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		svc, store, _ := newTestService(t)
		_, err := svc.Update(t.Context(), UpdateInput{
			CustomerID: "c2",
			Amount:     "1",
			Status:     "paid",
		})
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.EqualError(t, err, "invalid invoice input: id: "+errMsgID)
		assert.Empty(t, store.updated)
	})

	t.Run("database failure", func(t *testing.T) {
		t.Parallel()
		svc, store, views := newTestService(t)
		store.err = errors.New("disk full")
		res, err := svc.Update(t.Context(), UpdateInput{
			ID:         "inv-1",
			CustomerID: "c2",
			Amount:     "1",
			Status:     "paid",
		})
		require.NoError(t, err)
		assert.Equal(t, PersistenceFailed, res.Outcome)
		assert.Equal(t, MsgUpdateFailed, res.Message)
		assert.Empty(t, views.paths)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("unknown id still succeeds", func(t *testing.T) {
		t.Parallel()
		svc, store, views := newTestService(t)
		res := svc.Delete(t.Context(), DeleteInput{ID: "does-not-exist"})
		assert.Equal(t, Succeeded, res.Outcome)
		assert.Equal(t, MsgDeleted, res.Message)
		assert.Empty(t, res.Redirect)
		assert.Equal(t, []string{"does-not-exist"}, store.deleted)
		assert.Equal(t, []string{ListingPath}, views.paths)
	})

	t.Run("database failure", func(t *testing.T) {
		t.Parallel()
		svc, store, views := newTestService(t)
		store.err = errors.New("disk full")
		res := svc.Delete(t.Context(), DeleteInput{ID: "inv-1"})
		assert.Equal(t, PersistenceFailed, res.Outcome)
		assert.Equal(t, MsgDeleteFailed, res.Message)
		assert.Empty(t, views.paths)
	})
}

func TestService_List(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	page, err := svc.List(t.Context(), "", pagination.Parse("5", 6))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Zero(t, page.TotalPages)
	assert.Empty(t, page.Invoices)

	for i := range 8 {
		res := svc.Create(t.Context(), CreateInput{
			CustomerID: "c" + strconv.Itoa(i),
			Amount:     "1",
			Status:     "paid",
		})
		require.Equal(t, Succeeded, res.Outcome)
	}

	page, err = svc.List(t.Context(), "", pagination.Parse("2", 6))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Invoices, 2)

	// past the end shows the last page
	page, err = svc.List(t.Context(), "", pagination.Page{Number: math.MaxInt, Size: 6})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Invoices, 2)

	inv, err := svc.Get(t.Context(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "c0", inv.CustomerID)

	_, err = svc.Get(t.Context(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	store.err = errors.New("disk full")
	_, err = svc.List(t.Context(), "", pagination.Parse("", 6))
	require.ErrorIs(t, err, store.err)
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "15.50", want: 15.5},
		{raw: " 7 ", want: 7},
		{raw: "", want: 0},
		{raw: "-3", want: -3},
		{raw: "1e2", want: 100},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
		{raw: "12abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestToCents(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1550), ToCents(15.50))
	assert.Equal(t, int64(29), ToCents(0.29))
	assert.Equal(t, int64(1), ToCents(0.005))
	assert.Equal(t, int64(100), ToCents(1))
}

func TestCreateInput_TooLarge(t *testing.T) {
	t.Parallel()

	_, errs := CreateInput{CustomerID: "c1", Amount: "1e17", Status: "paid"}.validate()
	assert.Equal(t, FieldErrors{FieldAmount: {errMsgTooLarge}}, errs)
}

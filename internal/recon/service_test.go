package recon

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/model"
	"github.com/ofisler/mutabakat/internal/storage"
)

func setupService(t *testing.T) (*Service, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return New(store), store
}

func draft(day int, description, amount string, direction model.Direction) model.TransactionDraft {
	return model.TransactionDraft{
		Date:        time.Date(2026, time.February, day, 0, 0, 0, 0, time.UTC),
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Direction:   direction,
	}
}

func TestService_IngestAndAutoMatch(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	account := &model.BankAccount{Name: "Operating", Bank: "ziraat"}
	require.NoError(t, store.CreateAccount(ctx, account))

	acme := &model.Customer{Name: "Acme Ofis Ltd."}
	require.NoError(t, store.CreateCustomer(ctx, acme))
	planet := &model.Customer{Name: "Planet Danışmanlık Hizmetleri"}
	require.NoError(t, store.CreateCustomer(ctx, planet))

	drafts := []model.TransactionDraft{
		draft(10, "EFT GELEN ACME OFIS LTD. kira", "2500.00", model.DirectionIncoming),
		draft(11, "PLANET DANISMANLIK odeme", "1800.00", model.DirectionIncoming),
		draft(12, "ELEKTRIK FATURASI", "320.75", model.DirectionOutgoing),
	}
	result, err := svc.Ingest(ctx, account.ID, drafts, "subat.xlsx")
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Inserted: 3, Skipped: 0}, result)

	// Dry run scores but writes nothing.
	dry, err := svc.AutoMatch(ctx, &account.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, dry.Examined)
	assert.Zero(t, dry.Matched)
	assert.Len(t, dry.Suggestions, 2)

	unmatched := model.StatusUnmatched
	after, err := store.ListTransactions(ctx, storage.ListTransactionsOptions{Status: &unmatched})
	require.NoError(t, err)
	assert.Len(t, after, 3, "dry run must not change state")

	// Real pass: the exact-name hit applies, the partial hit stays a
	// suggestion for the operator.
	pass, err := svc.AutoMatch(ctx, &account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, pass.Matched)
	assert.Zero(t, pass.Failed)
	require.Len(t, pass.Suggestions, 1)
	assert.Equal(t, planet.ID, pass.Suggestions[0].Customer.ID)

	matched := model.StatusMatched
	got, err := store.ListTransactions(ctx, storage.ListTransactionsOptions{Status: &matched})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Ofis Ltd.", got[0].CustomerName)
	require.NotNil(t, got[0].PaymentID)

	payment, err := store.GetPayment(ctx, *got[0].PaymentID)
	require.NoError(t, err)
	assert.Equal(t, acme.ID, payment.CustomerID)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("2500.00")))

	// A second pass sees only what is still unmatched.
	again, err := svc.AutoMatch(ctx, &account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Examined)
	assert.Zero(t, again.Matched)
}

func TestService_IngestAtLeastOnce(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	account := &model.BankAccount{Name: "Operating", Bank: "isbank"}
	require.NoError(t, store.CreateAccount(ctx, account))

	// Rows that look identical are kept: they may be distinct real
	// transactions, and a re-run of the same file must never silently
	// drop one.
	drafts := []model.TransactionDraft{
		draft(1, "HAVALE GELEN KIRA", "100.00", model.DirectionIncoming),
		draft(1, "HAVALE GELEN KIRA", "100.00", model.DirectionIncoming),
	}
	first, err := svc.Ingest(ctx, account.ID, drafts, "ocak.csv")
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Inserted: 2, Skipped: 0}, first)

	second, err := svc.Ingest(ctx, account.ID, drafts[:1], "ocak.csv")
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Inserted: 1, Skipped: 0}, second)

	transactions, err := store.ListTransactions(ctx, storage.ListTransactionsOptions{AccountID: &account.ID})
	require.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestService_IngestDropsUnusableDrafts(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	account := &model.BankAccount{Name: "Operating", Bank: "ziraat"}
	require.NoError(t, store.CreateAccount(ctx, account))

	drafts := []model.TransactionDraft{
		{Description: "NO DATE", Amount: decimal.RequireFromString("10.00"), Direction: model.DirectionIncoming},
		draft(2, "ZERO AMOUNT", "0", model.DirectionIncoming),
		{
			// Direction left empty: defaults to incoming.
			Date:        time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
			Description: "NO DIRECTION",
			Amount:      decimal.RequireFromString("55.00"),
		},
	}
	result, err := svc.Ingest(ctx, account.ID, drafts, "bozuk.csv")
	require.NoError(t, err)
	assert.Equal(t, IngestResult{Inserted: 1, Skipped: 2}, result)

	transactions, err := store.ListTransactions(ctx, storage.ListTransactionsOptions{AccountID: &account.ID})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, model.DirectionIncoming, transactions[0].Direction)
}

func TestService_IngestInactiveAccount(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	account := &model.BankAccount{Name: "Closed", Bank: "garanti"}
	require.NoError(t, store.CreateAccount(ctx, account))
	require.NoError(t, store.DeactivateAccount(ctx, account.ID))

	_, err := svc.Ingest(ctx, account.ID, []model.TransactionDraft{
		draft(1, "HAVALE", "100.00", model.DirectionIncoming),
	}, "ocak.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAccountInactive)

	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr), "inactive account should surface a user error")
}

func TestService_ApplyAndUndoMatch(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()

	account := &model.BankAccount{Name: "Operating", Bank: "ziraat"}
	require.NoError(t, store.CreateAccount(ctx, account))
	customer := &model.Customer{Name: "Mehmet Yılmaz"}
	require.NoError(t, store.CreateCustomer(ctx, customer))

	drafts := []model.TransactionDraft{
		draft(5, "FAST GELEN", "750.00", model.DirectionIncoming),
		draft(6, "KIRA ODEMESI", "4000.00", model.DirectionOutgoing),
	}
	_, err := svc.Ingest(ctx, account.ID, drafts, "test.csv")
	require.NoError(t, err)
	transactions, err := store.ListTransactions(ctx, storage.ListTransactionsOptions{AccountID: &account.ID})
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	incoming, outgoing := transactions[0], transactions[1]

	paymentID, err := svc.ApplyMatch(ctx, incoming.ID, customer.ID)
	require.NoError(t, err)
	assert.Positive(t, paymentID)

	// Matching twice and matching an expense both fail as user errors.
	_, err = svc.ApplyMatch(ctx, incoming.ID, customer.ID)
	assert.ErrorIs(t, err, common.ErrAlreadyMatched)
	_, err = svc.ApplyMatch(ctx, outgoing.ID, customer.ID)
	assert.ErrorIs(t, err, common.ErrNotReceivable)

	require.NoError(t, svc.UndoMatch(ctx, incoming.ID))
	err = svc.UndoMatch(ctx, incoming.ID)
	assert.ErrorIs(t, err, common.ErrNotMatched)

	_, err = store.GetPayment(ctx, paymentID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlite/internal/domain"
)

func TestTransactionRepository_AddAndByID_RoundTripsPostings(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountRepository(db)
	txns := NewTransactionRepository(db)
	ctx := context.Background()

	checking, err := domain.NewAccount("Assets:Bank:Checking", "Checking", domain.AccountAsset, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, checking))
	groceries, err := domain.NewAccount("Expenses:Groceries", "Groceries", domain.AccountExpense, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, groceries))

	txn, err := domain.NewTransaction(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "Market",
		[]domain.Posting{
			{AccountID: groceries.ID, Amount: mustMoney(t, "42.50")},
			{AccountID: checking.ID, Amount: mustMoney(t, "-42.50")},
		}, []string{"grocery"}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, txns.Add(ctx, txn))

	fetched, err := txns.ByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "Market", fetched.Description)
	assert.Equal(t, []string{"grocery"}, fetched.Tags)
	require.Len(t, fetched.Postings, 2)
	assert.Equal(t, groceries.ID, fetched.Postings[0].AccountID)
	assert.Equal(t, mustMoney(t, "42.50").StringFixed(domain.MoneyScale), fetched.Postings[0].Amount.StringFixed(domain.MoneyScale))
}

func TestTransactionRepository_ByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	txns := NewTransactionRepository(db)

	_, err := txns.ByID(context.Background(), uuidNew(t))
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionRepository_ByDateRange_FiltersByDateAndAccount(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountRepository(db)
	txns := NewTransactionRepository(db)
	ctx := context.Background()

	checking, err := domain.NewAccount("Assets:Bank:Checking", "Checking", domain.AccountAsset, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, checking))
	groceries, err := domain.NewAccount("Expenses:Groceries", "Groceries", domain.AccountExpense, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, groceries))
	salary, err := domain.NewAccount("Income:Salary", "Salary", domain.AccountIncome, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, salary))

	inRange, err := domain.NewTransaction(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "Market",
		[]domain.Posting{
			{AccountID: groceries.ID, Amount: mustMoney(t, "10.00")},
			{AccountID: checking.ID, Amount: mustMoney(t, "-10.00")},
		}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, txns.Add(ctx, inRange))

	outOfRange, err := domain.NewTransaction(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "Payday",
		[]domain.Posting{
			{AccountID: checking.ID, Amount: mustMoney(t, "3000.00")},
			{AccountID: salary.ID, Amount: mustMoney(t, "-3000.00")},
		}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, txns.Add(ctx, outOfRange))

	results, err := txns.ByDateRange(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Market", results[0].Description)

	filteredByAccount, err := txns.ByDateRange(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), &salary.ID)
	require.NoError(t, err)
	require.Len(t, filteredByAccount, 1)
	assert.Equal(t, "Payday", filteredByAccount[0].Description)
}

func TestTransactionRepository_ByImportBatch(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountRepository(db)
	importBatches := NewImportBatchRepository(db)
	txns := NewTransactionRepository(db)
	ctx := context.Background()

	checking, err := domain.NewAccount("Assets:Bank:Checking", "Checking", domain.AccountAsset, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, checking))
	groceries, err := domain.NewAccount("Expenses:Groceries", "Groceries", domain.AccountExpense, "USD", nil)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, groceries))

	batch := domain.NewImportBatch(domain.SourceNubankCSV, "statement.csv", "deadbeef", nil)
	require.NoError(t, importBatches.Add(ctx, batch))

	txn, err := domain.NewTransaction(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "Market",
		[]domain.Posting{
			{AccountID: groceries.ID, Amount: mustMoney(t, "10.00")},
			{AccountID: checking.ID, Amount: mustMoney(t, "-10.00")},
		}, nil, nil, &batch.ID)
	require.NoError(t, err)
	require.NoError(t, txns.Add(ctx, txn))

	results, err := txns.ByImportBatch(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, txn.ID, results[0].ID)
}

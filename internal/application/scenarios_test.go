package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlite/internal/domain"
)

// TestScenarioA_SalaryImportAndPost exercises the full ingest -> classify ->
// post pipeline for a single salary deposit and checks the resulting
// balance sheet, mirroring a typical first-week usage session.
func TestScenarioA_SalaryImportAndPost(t *testing.T) {
	uow, reportSvc := newTestUnitOfWorkWithReporting(t)
	dataDir := t.TempDir()
	ctx := context.Background()

	accounts := NewAccountService(uow)
	checking, err := accounts.Create(ctx, "Assets:Bank:Checking", "Checking", domain.AccountAsset, "BRL", nil)
	require.NoError(t, err)
	_, err = accounts.Create(ctx, "Income:Salary", "Salary", domain.AccountIncome, "BRL", nil)
	require.NoError(t, err)

	writeRules(t, dataDir, `{"rules":[{"pattern":"salario","account":"Income:Salary","type":"income"}]}`)

	csv := "date,description,amount,id\n2025-08-01,Salario Empresa,5000.00,TXN-1\n"
	ingestion := NewIngestionService(uow, newTestBus())
	batch, err := ingestion.Import(ctx, ImportRequest{
		Source: domain.SourceNubankCSV, Filename: "salary.csv", Data: []byte(csv), DefaultCurrency: "BRL",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchCompleted, batch.Status)

	classification := NewClassificationService(uow, newTestBus(), dataDir)
	applyResult, err := classification.Apply(ctx, &batch.ID, false, true)
	require.NoError(t, err)
	assert.True(t, applyResult.Applied)

	posting := NewPostingService(uow, newTestBus())
	postResult, err := posting.PostPending(ctx, &batch.ID, checking.Code, false)
	require.NoError(t, err)
	require.Len(t, postResult.Posted, 1)

	session, err := uow.Begin(ctx)
	require.NoError(t, err)
	txn, err := session.Transactions.ByID(ctx, postResult.Posted[0].TransactionID)
	require.NoError(t, err)
	session.Rollback()

	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), txn.Date)
	require.Len(t, txn.Postings, 2)

	sheet, err := reportSvc.BalanceSheet(ctx, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), "BRL")
	require.NoError(t, err)
	assert.Equal(t, "5000.00", sheet.Assets)
	assert.Equal(t, "0.00", sheet.Equity)
	assert.Equal(t, "5000.00", sheet.NetWorth)
}

// TestScenarioB_DuplicateImport checks that importing identical bytes twice
// raises DuplicateImportError and leaves the entry count untouched.
func TestScenarioB_DuplicateImport(t *testing.T) {
	uow := newTestUnitOfWork(t)
	ctx := context.Background()
	ingestion := NewIngestionService(uow, newTestBus())

	first, err := ingestion.Import(ctx, ImportRequest{
		Source: domain.SourceNubankCSV, Filename: "statement.csv", Data: []byte(sampleCSV), DefaultCurrency: "USD",
	})
	require.NoError(t, err)

	session, err := uow.Begin(ctx)
	require.NoError(t, err)
	before, err := session.StatementEntries.ByBatch(ctx, first.ID)
	require.NoError(t, err)
	session.Rollback()

	_, err = ingestion.Import(ctx, ImportRequest{
		Source: domain.SourceNubankCSV, Filename: "statement-dup.csv", Data: []byte(sampleCSV), DefaultCurrency: "USD",
	})
	require.Error(t, err)
	var dupErr *domain.DuplicateImportError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, first.ID.String(), dupErr.ExistingBatchID)

	session, err = uow.Begin(ctx)
	require.NoError(t, err)
	after, err := session.StatementEntries.ByBatch(ctx, first.ID)
	require.NoError(t, err)
	session.Rollback()
	assert.Equal(t, len(before), len(after))
}

// TestScenarioD_TransferDoesNotAffectCashflow moves money between two asset
// accounts and checks the cashflow report stays at zero while the balance
// sheet reflects the transfer.
func TestScenarioD_TransferDoesNotAffectCashflow(t *testing.T) {
	uow, reportSvc := newTestUnitOfWorkWithReporting(t)
	ctx := context.Background()
	accounts := NewAccountService(uow)

	checking, err := accounts.Create(ctx, "Assets:Bank:Checking", "Checking", domain.AccountAsset, "USD", nil)
	require.NoError(t, err)
	savings, err := accounts.Create(ctx, "Assets:Bank:Savings", "Savings", domain.AccountAsset, "USD", nil)
	require.NoError(t, err)

	session, err := uow.Begin(ctx)
	require.NoError(t, err)
	credit, err := domain.ParseMoney("-500.00", "USD")
	require.NoError(t, err)
	debit, err := domain.ParseMoney("500.00", "USD")
	require.NoError(t, err)
	txn, err := domain.NewTransaction(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "Transfer to savings",
		[]domain.Posting{{AccountID: checking.ID, Amount: credit}, {AccountID: savings.ID, Amount: debit}}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, session.Transactions.Add(ctx, txn))
	require.NoError(t, session.Commit())

	cashflow, err := reportSvc.Cashflow(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.00", cashflow.TotalIncome)
	assert.Equal(t, "0.00", cashflow.TotalExpenses)
	assert.Equal(t, "0.00", cashflow.Net)
}

// TestScenarioE_UnbalancedTransactionRejected confirms constructing an
// unbalanced transaction fails before any row is written.
func TestScenarioE_UnbalancedTransactionRejected(t *testing.T) {
	checking, err := domain.ParseMoney("100.00", "USD")
	require.NoError(t, err)
	savings, err := domain.ParseMoney("-50.00", "USD")
	require.NoError(t, err)

	_, err = domain.NewTransaction(time.Now(), "Bad transfer",
		[]domain.Posting{{AccountID: uuid.New(), Amount: checking}, {AccountID: uuid.New(), Amount: savings}}, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrUnbalancedTxn)
}

// TestScenarioF_CashflowAggregation reproduces the two-transaction monthly
// aggregation example, checking category breakdowns as well as totals.
func TestScenarioF_CashflowAggregation(t *testing.T) {
	uow, reportSvc := newTestUnitOfWorkWithReporting(t)
	ctx := context.Background()
	accounts := NewAccountService(uow)

	checking, err := accounts.Create(ctx, "Assets:Bank:Checking", "Checking", domain.AccountAsset, "BRL", nil)
	require.NoError(t, err)
	salary, err := accounts.Create(ctx, "Income:Salary", "Salary", domain.AccountIncome, "BRL", nil)
	require.NoError(t, err)
	groceries, err := accounts.Create(ctx, "Expenses:Food", "Food", domain.AccountExpense, "BRL", nil)
	require.NoError(t, err)

	session, err := uow.Begin(ctx)
	require.NoError(t, err)

	salaryCredit, err := domain.ParseMoney("1000.00", "BRL")
	require.NoError(t, err)
	salaryDebit, err := domain.ParseMoney("-1000.00", "BRL")
	require.NoError(t, err)
	salaryTxn, err := domain.NewTransaction(time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), "Payday",
		[]domain.Posting{{AccountID: checking.ID, Amount: salaryCredit}, {AccountID: salary.ID, Amount: salaryDebit}}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, session.Transactions.Add(ctx, salaryTxn))

	groceryDebit, err := domain.ParseMoney("-200.00", "BRL")
	require.NoError(t, err)
	groceryCredit, err := domain.ParseMoney("200.00", "BRL")
	require.NoError(t, err)
	groceryTxn, err := domain.NewTransaction(time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), "Market",
		[]domain.Posting{{AccountID: checking.ID, Amount: groceryDebit}, {AccountID: groceries.ID, Amount: groceryCredit}}, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, session.Transactions.Add(ctx, groceryTxn))
	require.NoError(t, session.Commit())

	report, err := reportSvc.Cashflow(ctx, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), "BRL")
	require.NoError(t, err)

	assert.Equal(t, "1000.00", report.TotalIncome)
	assert.Equal(t, "200.00", report.TotalExpenses)
	assert.Equal(t, "800.00", report.Net)

	require.Len(t, report.IncomeCategories, 1)
	assert.Equal(t, "Income:Salary", report.IncomeCategories[0].Code)
	assert.Equal(t, "1000.00", report.IncomeCategories[0].Amount)

	require.Len(t, report.ExpenseCategories, 1)
	assert.Equal(t, "Expenses:Food", report.ExpenseCategories[0].Code)
	assert.Equal(t, "200.00", report.ExpenseCategories[0].Amount)
}

// TestScenarioC_RegexRuleWithAmountFilter checks that a regex rule bounded
// by max_amount only matches entries under the threshold, leaving larger
// rides in the same merchant family unclassified.
func TestScenarioC_RegexRuleWithAmountFilter(t *testing.T) {
	uow := newTestUnitOfWork(t)
	dataDir := t.TempDir()
	ctx := context.Background()

	accounts := NewAccountService(uow)
	_, err := accounts.Create(ctx, "Expenses:Transport", "Transport", domain.AccountExpense, "USD", nil)
	require.NoError(t, err)

	writeRules(t, dataDir, `{"rules":[{"pattern":"uber","regex":true,"account":"Expenses:Transport","type":"expense","max_amount":100}]}`)

	csv := "date,description,amount,id\n2026-02-01,UBER TRIP,-45.10,TXN-1\n2026-02-02,UBER TRIP,-250.00,TXN-2\n"
	ingestion := NewIngestionService(uow, newTestBus())
	batch, err := ingestion.Import(ctx, ImportRequest{
		Source: domain.SourceNubankCSV, Filename: "rides.csv", Data: []byte(csv), DefaultCurrency: "USD",
	})
	require.NoError(t, err)

	classification := NewClassificationService(uow, newTestBus(), dataDir)
	result, err := classification.Apply(ctx, &batch.ID, false, true)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)

	session, err := uow.Begin(ctx)
	require.NoError(t, err)
	defer session.Rollback()
	entries, err := session.StatementEntries.ByBatch(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byAmount := map[string]domain.EntryStatus{}
	for _, e := range entries {
		byAmount[e.Amount.StringFixed(domain.MoneyScale)] = e.Status
	}
	assert.Equal(t, domain.EntryMatched, byAmount["-45.1000"])
	assert.Equal(t, domain.EntryImported, byAmount["-250.0000"])
}

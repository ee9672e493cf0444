// Package reporting computes read-only aggregations over posted
// transactions: cashflow summaries and balance sheets. It never mutates
// the ledger.
package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

// reportScale is the fractional-digit scale every reporting figure is
// rounded to on output, independent of Money's internal storage scale.
const reportScale = 2

// CategoryAmount is one line of a cashflow or balance-sheet category
// breakdown.
type CategoryAmount struct {
	AccountID uuid.UUID
	Code      string
	Amount    string
}

// Cashflow is the result of a cashflow report over a date range.
type Cashflow struct {
	From             time.Time
	To               time.Time
	Currency         string
	IncomeCategories []CategoryAmount
	ExpenseCategories []CategoryAmount
	AssetBalances    []CategoryAmount
	TotalIncome      string
	TotalExpenses    string
	Net              string
}

// AccountLookup is the narrow capability the reporting package needs from
// the account store: enough to classify a posting's account by type.
type AccountLookup interface {
	ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// TransactionRange is the narrow capability the reporting package needs
// from the transaction store.
type TransactionRange interface {
	ByDateRange(ctx context.Context, from, to time.Time, accountID *uuid.UUID) ([]*domain.Transaction, error)
}

// Cashflow computes the cashflow report for [from, to] (inclusive) in a
// single currency. Postings in other currencies are skipped silently, as
// this is a single-currency report. Income postings are reported with
// their sign inverted (a credit becomes a positive receipt); expense
// postings keep their sign (a debit is positive); asset postings are
// reported raw. Categories are sorted by absolute amount, descending.
func Cashflow(ctx context.Context, accounts AccountLookup, transactions TransactionRange, from, to time.Time, currency string) (*Cashflow, error) {
	txns, err := transactions.ByDateRange(ctx, from, to, nil)
	if err != nil {
		return nil, err
	}

	income := map[uuid.UUID]domain.Money{}
	expense := map[uuid.UUID]domain.Money{}
	asset := map[uuid.UUID]domain.Money{}
	accountCache := map[uuid.UUID]*domain.Account{}

	resolve := func(id uuid.UUID) (*domain.Account, error) {
		if acc, ok := accountCache[id]; ok {
			return acc, nil
		}
		acc, err := accounts.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		accountCache[id] = acc
		return acc, nil
	}

	for _, txn := range txns {
		for _, p := range txn.Postings {
			if p.Amount.Currency() != currency {
				continue
			}
			acc, err := resolve(p.AccountID)
			if err != nil {
				return nil, err
			}
			switch acc.Type {
			case domain.AccountIncome:
				accumulate(income, acc.ID, p.Amount.Neg(), currency)
			case domain.AccountExpense:
				accumulate(expense, acc.ID, p.Amount, currency)
			case domain.AccountAsset:
				accumulate(asset, acc.ID, p.Amount, currency)
			}
		}
	}

	totalIncome := domain.ZeroMoney(currency)
	totalExpenses := domain.ZeroMoney(currency)
	for _, v := range income {
		totalIncome, _ = totalIncome.Add(v.Abs())
	}
	for _, v := range expense {
		totalExpenses, _ = totalExpenses.Add(v.Abs())
	}
	net, _ := totalIncome.Sub(totalExpenses)

	report := &Cashflow{
		From:              from,
		To:                to,
		Currency:          currency,
		IncomeCategories:  toSortedCategories(income, accountCache),
		ExpenseCategories: toSortedCategories(expense, accountCache),
		AssetBalances:     toSortedCategories(asset, accountCache),
		TotalIncome:       totalIncome.StringFixed(reportScale),
		TotalExpenses:     totalExpenses.StringFixed(reportScale),
		Net:               net.StringFixed(reportScale),
	}
	return report, nil
}

func accumulate(m map[uuid.UUID]domain.Money, id uuid.UUID, amount domain.Money, currency string) {
	if existing, ok := m[id]; ok {
		sum, err := existing.Add(amount)
		if err == nil {
			m[id] = sum
			return
		}
	}
	m[id] = amount
}

func toSortedCategories(m map[uuid.UUID]domain.Money, accounts map[uuid.UUID]*domain.Account) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for id, amount := range m {
		code := ""
		if acc, ok := accounts[id]; ok {
			code = acc.Code
		}
		out = append(out, CategoryAmount{AccountID: id, Code: code, Amount: amount.StringFixed(reportScale)})
	}
	sort.Slice(out, func(i, j int) bool {
		return absLess(out[j].Amount, out[i].Amount)
	})
	return out
}

// absLess compares two fixed-point decimal strings by absolute magnitude.
// Both inputs come from Money.StringFixed at a shared scale, so a direct
// byte comparison after stripping the sign is sufficient: equal-length,
// equal-scale numeric strings compare lexically the same as numerically.
func absLess(a, b string) bool {
	a = stripSign(a)
	b = stripSign(b)
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func stripSign(s string) string {
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		return s[1:]
	}
	return s
}

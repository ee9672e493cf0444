package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

// BalanceSheet is the result of a balance-sheet report as of a date.
type BalanceSheet struct {
	At            time.Time
	Currency      string
	Assets        string
	Liabilities   string
	Equity        string
	NetWorth      string
}

// BalanceSheetAt sums postings of ASSET, LIABILITY, and EQUITY accounts
// across all transactions with date <= at, in a single currency.
// Liabilities are reported sign-flipped (positive), so that
// net worth = assets - liabilities reads naturally.
func BalanceSheetAt(ctx context.Context, accounts AccountLookup, transactions TransactionRange, at time.Time, currency string) (*BalanceSheet, error) {
	epoch := time.Time{}
	txns, err := transactions.ByDateRange(ctx, epoch, at, nil)
	if err != nil {
		return nil, err
	}

	assets := domain.ZeroMoney(currency)
	liabilities := domain.ZeroMoney(currency)
	equity := domain.ZeroMoney(currency)
	accountCache := map[uuid.UUID]*domain.Account{}

	for _, txn := range txns {
		for _, p := range txn.Postings {
			if p.Amount.Currency() != currency {
				continue
			}
			acc, ok := accountCache[p.AccountID]
			if !ok {
				fetched, err := accounts.ByID(ctx, p.AccountID)
				if err != nil {
					return nil, err
				}
				accountCache[p.AccountID] = fetched
				acc = fetched
			}
			switch acc.Type {
			case domain.AccountAsset:
				assets, _ = assets.Add(p.Amount)
			case domain.AccountLiability:
				liabilities, _ = liabilities.Add(p.Amount)
			case domain.AccountEquity:
				equity, _ = equity.Add(p.Amount)
			}
		}
	}

	liabilitiesReported := liabilities.Neg()
	netWorth, _ := assets.Sub(liabilitiesReported)

	return &BalanceSheet{
		At:          at,
		Currency:    currency,
		Assets:      assets.StringFixed(reportScale),
		Liabilities: liabilitiesReported.StringFixed(reportScale),
		Equity:      equity.StringFixed(reportScale),
		NetWorth:    netWorth.StringFixed(reportScale),
	}, nil
}

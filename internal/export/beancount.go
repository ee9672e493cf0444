// Package export renders the ledger as a deterministic Beancount journal.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"finlite/internal/domain"
)

const journalScale = 4
const accountColumnWidth = 40

// AccountLookup is the narrow capability the exporter needs from the
// account store.
type AccountLookup interface {
	ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// TransactionLister is the narrow capability the exporter needs from the
// transaction store: every transaction in the ledger, in no particular
// order (the exporter imposes (date, id) ordering itself).
type TransactionLister interface {
	ByDateRange(ctx context.Context, from, to time.Time, accountID *uuid.UUID) ([]*domain.Transaction, error)
}

// Beancount writes the full ledger to w as a Beancount journal. Account
// codes are used directly as Beancount account names, since this ledger's
// hierarchical "Assets:Bank:Checking" code convention already matches
// Beancount's own naming scheme.
func Beancount(ctx context.Context, accounts AccountLookup, transactions TransactionLister, w io.Writer, operatingCurrency string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "option \"title\" \"Finlite Ledger\"\n")
	fmt.Fprintf(bw, "option \"operating_currency\" \"%s\"\n\n", operatingCurrency)

	txns, err := transactions.ByDateRange(ctx, time.Time{}, farFuture(), nil)
	if err != nil {
		return err
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID.String() < txns[j].ID.String()
	})

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
		if err := writeTransaction(bw, txn, resolve); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeTransaction(bw *bufio.Writer, txn *domain.Transaction, resolve func(uuid.UUID) (*domain.Account, error)) error {
	header := fmt.Sprintf("%s * \"%s\"", txn.Date.Format("2006-01-02"), txn.Description)
	if ref, ok := findRefTag(txn.Tags); ok {
		header += " ; ref:" + ref
	}
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return err
	}

	for _, p := range txn.Postings {
		acc, err := resolve(p.AccountID)
		if err != nil {
			return err
		}
		amountText := formatJournalAmount(p.Amount)
		line := "  " + padRight(acc.Code, accountColumnWidth) + " " + amountText + " " + p.Amount.Currency()
		if p.Notes != nil && *p.Notes != "" {
			line += " ; " + *p.Notes
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}

	for _, line := range metadataLines(txn.Tags) {
		if _, err := fmt.Fprintln(bw, "  ; "+line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(bw)
	return err
}

// formatJournalAmount renders at MoneyScale then trims trailing fractional
// zeros, dropping the decimal point too when no fractional digits remain, per
// spec.md's "right-padded numeric amount... with trailing zeros trimmed".
func formatJournalAmount(m domain.Money) string {
	text := m.StringFixed(journalScale)
	if strings.Contains(text, ".") {
		text = strings.TrimRight(text, "0")
		text = strings.TrimRight(text, ".")
	}
	if text == "" || text == "-" {
		text = "0"
	}
	return text
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// findRefTag looks for a tag of the form "ref:<value>" among a
// transaction's tags, the convention this ledger uses to carry a Beancount
// reference comment without adding a dedicated field to the aggregate.
func findRefTag(tags []string) (string, bool) {
	for _, t := range tags {
		if strings.HasPrefix(t, "ref:") {
			return strings.TrimPrefix(t, "ref:"), true
		}
	}
	return "", false
}

// metadataLines extracts "key:value"-shaped tags (e.g. "batch:<uuid>") as
// export metadata comment lines, sorted alphabetically by key, matching
// spec.md's per-key metadata comment requirement for a data model that
// otherwise only carries an ordered tag list.
func metadataLines(tags []string) []string {
	var lines []string
	for _, t := range tags {
		idx := strings.Index(t, ":")
		if idx <= 0 || strings.HasPrefix(t, "ref:") {
			continue
		}
		lines = append(lines, t[:idx]+": "+t[idx+1:])
	}
	sort.Strings(lines)
	return lines
}

func farFuture() time.Time {
	return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}

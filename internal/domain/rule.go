package domain

import "github.com/shopspring/decimal"

// RuleKind distinguishes whether a matched entry is classified as an
// expense or income posting.
type RuleKind string

const (
	RuleExpense RuleKind = "expense"
	RuleIncome  RuleKind = "income"
)

// Rule is one row of the classification rule set, evaluated in document
// order against a StatementEntry's payee/memo text. The first rule whose
// filters all pass wins; there is no scoring or overlap resolution.
type Rule struct {
	Pattern   string
	Regex     bool
	Account   string
	Kind      RuleKind
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	HourStart *int
	HourEnd   *int
}

package rules

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finlite/internal/domain"
)

// Match returns the first rule in ruleSet whose type, text pattern, amount
// bounds, and hour-of-day window all agree with the given entry. Rules are
// evaluated strictly in slice order — there is no scoring, and an earlier
// rule wins even if a later one would be a tighter fit. A regex pattern
// that fails to compile falls back to a case-insensitive substring match
// against the same pattern text, so a typo in a regex rule degrades
// gracefully instead of disabling the rule.
func Match(ruleSet []domain.Rule, text string, kind domain.RuleKind, amount *decimal.Decimal, occurredAt *time.Time) (*domain.Rule, bool) {
	normalized := strings.ToLower(text)

	for i := range ruleSet {
		rule := &ruleSet[i]
		if rule.Kind != kind {
			continue
		}
		if !textMatches(rule, text, normalized) {
			continue
		}
		if !amountMatches(rule, amount) {
			continue
		}
		if !hourMatches(rule, occurredAt) {
			continue
		}
		return rule, true
	}
	return nil, false
}

func textMatches(rule *domain.Rule, text, normalized string) bool {
	if !rule.Regex {
		return strings.Contains(normalized, strings.ToLower(rule.Pattern))
	}
	re, err := regexp.Compile("(?i)" + rule.Pattern)
	if err != nil {
		return strings.Contains(normalized, strings.ToLower(rule.Pattern))
	}
	return re.MatchString(text)
}

func amountMatches(rule *domain.Rule, amount *decimal.Decimal) bool {
	if amount == nil {
		return true
	}
	abs := amount.Abs()
	if rule.MinAmount != nil && abs.LessThan(*rule.MinAmount) {
		return false
	}
	if rule.MaxAmount != nil && abs.GreaterThan(*rule.MaxAmount) {
		return false
	}
	return true
}

func hourMatches(rule *domain.Rule, occurredAt *time.Time) bool {
	if occurredAt == nil || rule.HourStart == nil || rule.HourEnd == nil {
		return true
	}
	hour := occurredAt.Hour()
	return hour >= *rule.HourStart && hour <= *rule.HourEnd
}

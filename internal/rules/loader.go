// Package rules loads and evaluates the classification rule set that maps
// statement entries to suggested accounts.
package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"finlite/internal/domain"
)

// ruleFile mirrors the on-disk JSON schema: {"rules": [...]}.
type ruleFile struct {
	Rules []ruleDocument `json:"rules"`
}

type ruleDocument struct {
	Pattern   string   `json:"pattern"`
	Account   string   `json:"account"`
	Type      string   `json:"type"`
	Regex     bool     `json:"regex"`
	MinAmount *float64 `json:"min_amount"`
	MaxAmount *float64 `json:"max_amount"`
	HourStart *int     `json:"hour_start"`
	HourEnd   *int     `json:"hour_end"`
}

// fileName is the rule set's fixed filename under the configured data
// directory, matching the layout of other finlite data files.
const fileName = "category_map.json"

// Load reads the rule set from <dataDir>/category_map.json. A missing file
// is not an error: it yields an empty rule set, matching the bootstrap
// experience of a fresh install with no rules configured yet. A malformed
// file is also tolerated and yields an empty set, so a hand-edited rules
// file never takes classification down.
func Load(dataDir string) ([]domain.Rule, error) {
	path := filepath.Join(dataDir, fileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, nil
	}

	var doc ruleFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil
	}

	rules := make([]domain.Rule, 0, len(doc.Rules))
	for _, item := range doc.Rules {
		kind := strings.ToLower(item.Type)
		if item.Pattern == "" || item.Account == "" || (kind != "expense" && kind != "income") {
			continue
		}
		rule := domain.Rule{
			Pattern: item.Pattern,
			Account: item.Account,
			Kind:    domain.RuleKind(kind),
			Regex:   item.Regex,
		}
		if item.MinAmount != nil {
			d := decimal.NewFromFloat(*item.MinAmount)
			rule.MinAmount = &d
		}
		if item.MaxAmount != nil {
			d := decimal.NewFromFloat(*item.MaxAmount)
			rule.MaxAmount = &d
		}
		rule.HourStart = item.HourStart
		rule.HourEnd = item.HourEnd
		rules = append(rules, rule)
	}
	return rules, nil
}

// Save writes the rule set back to <dataDir>/category_map.json, creating
// the directory if needed.
func Save(dataDir string, ruleSet []domain.Rule) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	docs := make([]ruleDocument, 0, len(ruleSet))
	for _, r := range ruleSet {
		doc := ruleDocument{
			Pattern: r.Pattern,
			Account: r.Account,
			Type:    string(r.Kind),
			Regex:   r.Regex,
		}
		if r.MinAmount != nil {
			f, _ := r.MinAmount.Float64()
			doc.MinAmount = &f
		}
		if r.MaxAmount != nil {
			f, _ := r.MaxAmount.Float64()
			doc.MaxAmount = &f
		}
		doc.HourStart = r.HourStart
		doc.HourEnd = r.HourEnd
		docs = append(docs, doc)
	}
	raw, err := json.MarshalIndent(ruleFile{Rules: docs}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, fileName), raw, 0o644)
}

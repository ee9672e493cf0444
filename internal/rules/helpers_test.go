package rules

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

func mustDecimal(t *testing.T, text string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(text)
	require.NoError(t, err)
	return d
}

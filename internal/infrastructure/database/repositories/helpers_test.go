package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"finlite/internal/domain"
)

func uuidNew(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func nowUTC() time.Time {
	return time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
}

func mustMoney(t *testing.T, text string) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(text, "USD")
	require.NoError(t, err)
	return m
}

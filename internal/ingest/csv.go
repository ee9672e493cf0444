package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
)

// csvAliases maps a logical column to the set of header spellings (Nubank's
// Portuguese exports and plain English ones) that may carry it.
var csvAliases = map[string][]string{
	"date":        {"data", "date"},
	"description": {"descricao", "descrição", "description"},
	"amount":      {"valor", "amount"},
	"id":          {"id", "identificador", "external_id"},
	"currency":    {"moeda", "currency"},
}

// ParseNubankCSV reads a Nubank-style CSV export. Column names are matched
// case-insensitively against csvAliases, so "Data", "data", and "date" are
// all accepted for the date column. A row with more fields than the header
// is assumed to be a decimal-comma amount that the CSV reader split on the
// comma (e.g. "-123,45" read as two fields "-123" and "45"); the extra
// fields are rejoined onto the amount column with a comma before further
// parsing. Missing dates fail with the caller's own validation, not here:
// this function only lays out ParsedEntry; it does not parse the amount
// text into a decimal.
func ParseNubankCSV(r io.Reader, filename string) ([]ParsedEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rawHeader, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	header := make([]string, len(rawHeader))
	for i, h := range rawHeader {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[h] = i
	}

	lookup := func(alias string) (int, bool) {
		for _, candidate := range csvAliases[alias] {
			if idx, ok := colIndex[candidate]; ok {
				return idx, true
			}
		}
		return -1, false
	}

	dateIdx, _ := lookup("date")
	descIdx, _ := lookup("description")
	amountIdx, hasAmount := lookup("amount")
	idIdx, hasID := lookup("id")
	currencyIdx, hasCurrency := lookup("currency")

	var entries []ParsedEntry
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rowNum++

		if hasAmount && len(row) > len(header) {
			extra := row[len(header):]
			row = row[:len(header)]
			row[amountIdx] = row[amountIdx] + "," + strings.Join(extra, ",")
		}

		field := func(idx int, ok bool) string {
			if !ok || idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		dateStr := field(dateIdx, dateIdx >= 0)
		desc := field(descIdx, descIdx >= 0)
		amountText := field(amountIdx, hasAmount)
		if amountText == "" {
			amountText = "0"
		}
		externalID := field(idIdx, hasID)
		if externalID == "" {
			externalID = filename + ":row:" + strconv.Itoa(rowNum)
		}
		currency := field(currencyIdx, hasCurrency)

		occurredAt := parseCSVDate(dateStr)

		entries = append(entries, ParsedEntry{
			ExternalID: externalID,
			Payee:      "",
			Memo:       desc,
			AmountText: amountText,
			Currency:   strings.ToUpper(currency),
			OccurredAt: occurredAt,
		})
	}
	return entries, nil
}

// parseCSVDate tries ISO-8601 first, then Brazilian DD/MM/YYYY, matching
// the two formats Nubank's own CSV exports have used over time.
func parseCSVDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

package ratings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// csvTable maps header names to column positions so rows can be read by name.
type csvTable struct {
	columns map[string]int
}

func (t csvTable) get(record []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// readCSV walks a header-first CSV document and hands each data row to fn.
// Blank rows are skipped and rows may carry fewer or more fields than the header.
func readCSV(r io.Reader, fn func(t csvTable, record []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read csv header: %w", err)
	}

	table := csvTable{columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		table.columns[name] = i
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read csv row: %w", err)
		}
		if blank(record) {
			continue
		}
		if err := fn(table, record); err != nil {
			return err
		}
	}
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func parseEventSummary(r io.Reader) ([]EventSummaryRow, error) {
	var rows []EventSummaryRow
	err := readCSV(r, func(t csvTable, rec []string) error {
		row := EventSummaryRow{
			PlayerID:      ParseID(t.get(rec, "PlayerID")),
			PlayerName:    t.get(rec, "PlayerName"),
			PlayerCountry: t.get(rec, "PlayerCountry"),
			InitialMean:   ParseInt(t.get(rec, "InitialMean")),
			InitialStDev:  ParseInt(t.get(rec, "InitialStDev")),
			PointChange:   ParseInt(t.get(rec, "PointChange")),
			FinalMean:     ParseInt(t.get(rec, "FinalMean")),
			FinalStDev:    ParseInt(t.get(rec, "FinalStDev")),
		}
		if row.PlayerID != 0 {
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

func parseEventDetail(r io.Reader) ([]EventDetailRow, error) {
	var rows []EventDetailRow
	err := readCSV(r, func(t csvTable, rec []string) error {
		row := EventDetailRow{
			WinnerID:          ParseID(t.get(rec, "WinnerID")),
			LoserID:           ParseID(t.get(rec, "LoserID")),
			Score:             t.get(rec, "Score"),
			WinnerDelta:       ParseInt(t.get(rec, "WinnerDelta")),
			WinnerOppMean:     ParseInt(t.get(rec, "WinnerOpponentMean")),
			WinnerOppStDev:    ParseInt(t.get(rec, "WinnerOpponentStDev")),
			LoserDelta:        ParseInt(t.get(rec, "LoserDelta")),
			LoserOppMean:      ParseInt(t.get(rec, "LoserOpponentMean")),
			LoserOppStDev:     ParseInt(t.get(rec, "LoserOpponentStDev")),
			MatchesPairPlayed: ParseInt(t.get(rec, "MatchesPairPlayed")),
		}
		if row.WinnerID != 0 || row.LoserID != 0 {
			rows = append(rows, row)
		}
		return nil
	})
	return rows, err
}

func parsePlayerHistory(r io.Reader) ([]PlayerHistoryRow, error) {
	var rows []PlayerHistoryRow
	err := readCSV(r, func(t csvTable, rec []string) error {
		eventID := ParseID(t.get(rec, "EventID"))
		if eventID == 0 {
			return nil
		}
		raw := t.get(rec, "EventDate")
		date, err := ParseDate(raw)
		if err != nil {
			return &ParseError{Field: "EventDate", Value: raw, Err: err}
		}
		rows = append(rows, PlayerHistoryRow{
			EventID:      eventID,
			EventDate:    date,
			EventName:    t.get(rec, "EventName"),
			InitialMean:  ParseInt(t.get(rec, "InitialMean")),
			InitialStDev: ParseInt(t.get(rec, "InitialStDev")),
			PointChange:  ParseInt(t.get(rec, "PointChange")),
			FinalMean:    ParseInt(t.get(rec, "FinalMean")),
			FinalStDev:   ParseInt(t.get(rec, "FinalStDev")),
		})
		return nil
	})
	return rows, err
}

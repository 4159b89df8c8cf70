package sources

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFeed loads every record from the feed file. Rows are projected through
// the feed's field mapping but otherwise untouched; the normalizer decides
// which records survive.
func ReadFeed(feed Feed) ([]Record, error) {
	file, err := os.Open(feed.Path)
	if err != nil {
		return nil, fmt.Errorf("open feed %s: %w", feed.ID, err)
	}
	defer file.Close()

	switch strings.ToLower(strings.TrimSpace(feed.Format)) {
	case "csv", "":
		return readCSV(feed, file)
	case "json":
		return readJSON(feed, file)
	default:
		return nil, fmt.Errorf("feed %s: unsupported format %q", feed.ID, feed.Format)
	}
}

func readCSV(feed Feed, file *os.File) ([]Record, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("feed %s: read header: %w", feed.ID, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	pick := func(row []string, column string) string {
		if column == "" {
			return ""
		}
		idx, ok := columns[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("feed %s: read row: %w", feed.ID, err)
		}
		records = append(records, Record{
			Feed:         feed.ID,
			Kind:         feed.Kind,
			Name:         pick(row, feed.Fields.Name),
			Website:      pick(row, feed.Fields.Website),
			Location:     pick(row, feed.Fields.Location),
			CategoryHint: pick(row, feed.Fields.Category),
			CorpType:     pick(row, feed.Fields.CorpType),
			Filter:       feed.FilterCooperative,
		})
	}
	return records, nil
}

func readJSON(feed Feed, file *os.File) ([]Record, error) {
	var rows []map[string]any
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("feed %s: decode json: %w", feed.ID, err)
	}

	pick := func(row map[string]any, column string) string {
		if column == "" {
			return ""
		}
		value, ok := row[column]
		if !ok || value == nil {
			return ""
		}
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		default:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			Feed:         feed.ID,
			Kind:         feed.Kind,
			Name:         pick(row, feed.Fields.Name),
			Website:      pick(row, feed.Fields.Website),
			Location:     pick(row, feed.Fields.Location),
			CategoryHint: pick(row, feed.Fields.Category),
			CorpType:     pick(row, feed.Fields.CorpType),
			Filter:       feed.FilterCooperative,
		})
	}
	return records, nil
}

package parsers

import (
	"context"
	"encoding/csv"
	"strings"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

// CSV parses comma separated data. The first row names the columns; body is a
// list of row maps keyed by column name.
type CSV struct {
	// Comma overrides the field delimiter; zero means ','.
	Comma rune
}

func (CSV) Name() string { return "csv" }

func (c CSV) Parse(_ context.Context, id, raw string) (content.Parsed, error) {
	r := csv.NewReader(strings.NewReader(raw))
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, parseError(err, c.Name(), id, "invalid csv")
	}

	rows := make([]map[string]any, 0)
	if len(records) > 0 {
		header := records[0]
		for _, rec := range records[1:] {
			row := make(map[string]any, len(header))
			for i, col := range header {
				if i < len(rec) {
					row[col] = rec[i]
				}
			}
			rows = append(rows, row)
		}
	}
	return content.Parsed{
		content.KeyID:   id,
		content.KeyBody: rows,
	}, nil
}

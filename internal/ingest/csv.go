package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rashup198/merchant-mailer/internal/domain"
)

// ReadCSV parses a header-rowed CSV stream into string-keyed rows, skipping
// fully empty lines. Column order is free; the header defines the keys.
// Short rows are tolerated: columns past the row's last field come back
// empty and fall to the validator.
func ReadCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, domain.ErrEmptyBatch
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV header: %v", domain.ErrValidation, err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	rows := make([]map[string]string, 0)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse CSV row: %v", domain.ErrValidation, err)
		}

		row := make(map[string]string, len(columns))
		empty := true
		for i, column := range columns {
			value := ""
			if i < len(fields) {
				value = strings.TrimSpace(fields[i])
			}
			if value != "" {
				empty = false
			}
			row[column] = value
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

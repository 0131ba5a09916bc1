package transport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvColumns is the canonical header for both import and export.
var csvColumns = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk",
	"purpose", "budgetMin", "budgetMax", "timeline", "source",
	"notes", "tags", "status",
}

// CSVBuyerRow is one raw record from an import file. Values are untyped
// strings; the import path is deliberately best-effort and does not run the
// single-record validation rules.
type CSVBuyerRow struct {
	FullName     string
	Email        string
	Phone        string
	City         string
	PropertyType string
	BHK          string
	Purpose      string
	BudgetMin    string
	BudgetMax    string
	Timeline     string
	Source       string
	Notes        string
	Tags         string
	Status       string
}

// ParseCSV reads a headered CSV file into raw buyer rows. Column order is
// taken from the header; unknown columns are ignored, blank lines skipped.
func ParseCSV(r io.Reader) ([]CSVBuyerRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var rows []CSVBuyerRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := CSVBuyerRow{
			FullName:     field("fullName"),
			Email:        field("email"),
			Phone:        field("phone"),
			City:         field("city"),
			PropertyType: field("propertyType"),
			BHK:          field("bhk"),
			Purpose:      field("purpose"),
			BudgetMin:    field("budgetMin"),
			BudgetMax:    field("budgetMax"),
			Timeline:     field("timeline"),
			Source:       field("source"),
			Notes:        field("notes"),
			Tags:         field("tags"),
			Status:       field("status"),
		}
		if row == (CSVBuyerRow{}) {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteCSV streams buyers as a headered CSV document. Tags are re-joined
// with commas inside a single quoted cell.
func WriteCSV(w io.Writer, buyers []BuyerResponse) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, b := range buyers {
		record := []string{
			b.FullName,
			deref(b.Email),
			b.Phone,
			b.City,
			b.PropertyType,
			deref(b.BHK),
			b.Purpose,
			deref(b.BudgetMin),
			deref(b.BudgetMax),
			b.Timeline,
			b.Source,
			deref(b.Notes),
			strings.Join(b.Tags, ","),
			b.Status,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

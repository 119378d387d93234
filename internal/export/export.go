// Package export serializes contact records for download.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cardscan-go/internal/types"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	contactsSheet = "Contacts"
)

// Format is a download file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeJSON
}

// FileName is the attachment name offered to the browser.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// WriteRecord writes one record in the given format.
func WriteRecord(w io.Writer, f Format, rec types.ContactRecord) error {
	if f == FormatXLSX {
		return WriteXLSX(w, []types.ContactRecord{rec})
	}
	return WriteJSON(w, rec)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

func header() []interface{} {
	row := make([]interface{}, len(types.FieldKeys))
	for i, k := range types.FieldKeys {
		row[i] = string(k)
	}
	return row
}

func recordRow(rec types.ContactRecord) []interface{} {
	row := make([]interface{}, len(types.FieldKeys))
	for i, k := range types.FieldKeys {
		row[i] = rec.Get(k)
	}
	return row
}

// WriteXLSX writes one row per record under a field-name header.
func WriteXLSX(w io.Writer, records []types.ContactRecord) error {
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = recordRow(r)
	}
	return writeSheet(w, header(), rows)
}

// WriteBatchXLSX writes batch results with their source row and error.
func WriteBatchXLSX(w io.Writer, results []types.BatchResult) error {
	head := append([]interface{}{"row_id", "source"}, header()...)
	head = append(head, "error")
	rows := make([][]interface{}, len(results))
	for i, r := range results {
		row := append([]interface{}{r.RowID, r.Source}, recordRow(r.Record)...)
		rows[i] = append(row, r.Error)
	}
	return writeSheet(w, head, rows)
}

func writeSheet(w io.Writer, head []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contactsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(contactsSheet, "A1", &head); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(contactsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(contactsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(head))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(contactsSheet, "A", lastCol, 24); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

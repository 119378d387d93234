package main

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"cardscan-go/internal/types"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	results := []types.BatchResult{{
		TranscriptRow: types.TranscriptRow{RowID: "7", Source: "cards.xlsx"},
		Record:        types.ContactRecord{Email: "a@b.io"},
	}}
	path := filepath.Join(dir, "out.xlsx")
	if err := writeReport(path, results); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Contacts", "G2")
	if err != nil {
		t.Fatal(err)
	}
	if v != "a@b.io" {
		t.Fatalf("email cell = %q", v)
	}
	if err := writeReport(filepath.Join(dir, "out.csv"), results); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

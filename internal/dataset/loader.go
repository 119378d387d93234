package dataset

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cardscan-go/internal/logger"
	"cardscan-go/internal/types"
)

// Load reads transcripts from the first sheet of an XLSX file.
func Load(path string) ([]types.TranscriptRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return load(f, filepath.Base(path))
}

// LoadReader is Load for an uploaded workbook.
func LoadReader(r io.Reader, source string) ([]types.TranscriptRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return load(f, source)
}

// load auto-detects the transcript and id columns by header heuristics
func load(f *excelize.File, source string) ([]types.TranscriptRow, error) {
	log := logger.New().Component("dataset").With("source", source)
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}
	header := rows[0]
	textIdx := -1
	idIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "transcript") || strings.Contains(l, "ocr") || strings.Contains(l, "text"):
			if textIdx == -1 {
				textIdx = i
			}
		case l == "id" || strings.Contains(l, "card id") || strings.Contains(l, "cardid") || strings.HasSuffix(l, "_id"):
			if idIdx == -1 {
				idIdx = i
			}
		}
	}
	// fallback: a single-column sheet is the transcript column
	if textIdx == -1 {
		if len(header) != 1 {
			return nil, fmt.Errorf("no transcript column in header %q", header)
		}
		textIdx = 0
	}
	log.WithField("text_idx", textIdx).WithField("id_idx", idIdx).Debug("detected columns")

	var out []types.TranscriptRow
	for i, r := range rows {
		if i == 0 {
			continue
		}
		row := types.TranscriptRow{RowID: strconv.Itoa(i + 1), Source: source}
		if idIdx >= 0 && idIdx < len(r) && strings.TrimSpace(r[idIdx]) != "" {
			row.RowID = strings.TrimSpace(r[idIdx])
		}
		if textIdx < len(r) {
			row.Transcript = r[textIdx]
		}
		// skip fully empty rows quietly
		if strings.TrimSpace(row.Transcript) == "" && (idIdx < 0 || idIdx >= len(r) || r[idIdx] == "") {
			continue
		}
		out = append(out, row)
	}
	log.WithField("rows", len(out)).Info("transcripts loaded")
	return out, nil
}

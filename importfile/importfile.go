// Package importfile reads question files for bulk import. TSV, JSON and
// XLSX are accepted; TSV and XLSX use a header row naming the columns.
package importfile

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/quiz-backend/rpc"
)

var ErrUnsupported = errors.New("unsupported file type")

// Load picks a parser from the file extension.
func Load(path string) ([]rpc.ImportQuestion, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseTSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseJSON(f)
	case ".xlsx":
		return ParseXLSX(path, "")
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

func ParseJSON(r io.Reader) ([]rpc.ImportQuestion, error) {
	var out []rpc.ImportQuestion
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("json must be an array of question objects: %w", err)
	}
	return out, nil
}

func ParseTSV(r io.Reader) ([]rpc.ImportQuestion, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return fromRecords(records)
}

// ParseXLSX reads the named sheet, or the first one when sheet is empty.
func ParseXLSX(path, sheet string) ([]rpc.ImportQuestion, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) ([]rpc.ImportQuestion, error) {
	if len(records) == 0 {
		return nil, nil
	}
	header := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		header[strings.TrimSpace(strings.ToLower(h))] = i
	}

	out := make([]rpc.ImportQuestion, 0, len(records)-1)
	for n, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		get := func(name string) string {
			if i, ok := header[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		q := rpc.ImportQuestion{
			QuestionID:    get("question_id"),
			Subject:       get("subject"),
			GenreID:       get("genre_id"),
			GenreName:     get("genre_name"),
			QuestionText:  get("question_text"),
			CorrectAnswer: get("correct_answer"),
			Hint:          get("hint"),
			Difficulty:    get("difficulty"),
		}
		if raw := get("choices"); raw != "" {
			q.Choices = ParseChoices(raw)
		}
		if raw := get("correct_index"); raw != "" {
			idx, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: correct_index %q is not a number", n+2, raw)
			}
			q.CorrectIndex = &idx
		}
		out = append(out, q)
	}
	return out, nil
}

// ParseChoices accepts a JSON array or a comma separated list.
func ParseChoices(raw string) []string {
	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return arr
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

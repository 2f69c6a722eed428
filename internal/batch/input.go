package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/minseo/saju-reporter/internal/saju"
)

// Defaults applied to rows with missing birth fields.
const (
	defaultBirthYear  = 1990
	defaultBirthMonth = 1
	defaultBirthDay   = 1
)

// RowError records one malformed input row that was skipped.
type RowError struct {
	Line   int
	Reason string
}

// ParseJobs reads a tabular batch input file into customer jobs. Rows are
// name, year, month, day and optionally email and note. Spreadsheets
// (.xlsx) and delimited text (.csv, .txt) are both accepted; a header row is
// detected and skipped. Malformed rows are returned as RowErrors, never as
// a hard failure.
func ParseJobs(path string) ([]CustomerJob, []RowError, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return parseXLSX(path)
	default:
		return parseCSV(path)
	}
}

func parseXLSX(path string) ([]CustomerJob, []RowError, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("spreadsheet has no sheets: %s", path)
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rowsToJobs(rows), rowErrors(rows), nil
}

func parseCSV(path string) ([]CustomerJob, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open batch input: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse batch input: %w", err)
	}
	return rowsToJobs(rows), rowErrors(rows), nil
}

// rowsToJobs converts every parseable row; rowErrors reports the rest. The
// two are split so both scan the same data with one shared row parser.
func rowsToJobs(rows [][]string) []CustomerJob {
	var jobs []CustomerJob
	for i, row := range rows {
		job, _, ok := parseRow(i+1, row)
		if ok {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func rowErrors(rows [][]string) []RowError {
	var errs []RowError
	for i, row := range rows {
		_, rowErr, ok := parseRow(i+1, row)
		if !ok && rowErr != nil {
			errs = append(errs, *rowErr)
		}
	}
	return errs
}

// parseRow converts one input row. A header row or blank row returns
// (_, nil, false); a malformed row returns its RowError.
func parseRow(line int, row []string) (CustomerJob, *RowError, bool) {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = strings.TrimSpace(cell)
	}

	if len(cells) == 0 || cells[0] == "" {
		return CustomerJob{}, nil, false
	}
	// Line 1 is a header when its second cell is non-numeric, or when its
	// only cell is a known column label.
	if line == 1 {
		if len(cells) > 1 {
			if _, err := strconv.Atoi(cells[1]); err != nil {
				return CustomerJob{}, nil, false
			}
		} else if isHeaderToken(cells[0]) {
			return CustomerJob{}, nil, false
		}
	}

	job := CustomerJob{
		Name: cells[0],
		Birth: saju.BirthRecord{
			Year:  defaultBirthYear,
			Month: defaultBirthMonth,
			Day:   defaultBirthDay,
		},
	}

	for i, field := range []*int{&job.Birth.Year, &job.Birth.Month, &job.Birth.Day} {
		idx := i + 1
		if idx >= len(cells) || cells[idx] == "" {
			continue
		}
		value, err := strconv.Atoi(cells[idx])
		if err != nil {
			return CustomerJob{}, &RowError{
				Line:   line,
				Reason: fmt.Sprintf("birth field %d is not a number: %q", idx, cells[idx]),
			}, false
		}
		*field = value
	}

	if len(cells) > 4 {
		job.Email = cells[4]
	}
	if len(cells) > 5 {
		job.Note = cells[5]
	}
	return job, nil, true
}

func isHeaderToken(cell string) bool {
	switch strings.ToLower(cell) {
	case "name", "customer", "customer_name", "고객명", "이름", "성명":
		return true
	}
	return false
}

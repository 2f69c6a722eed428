package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseJobs_CSV(t *testing.T) {
	path := writeTempCSV(t, "name,year,month,day,email\n김철수,1990,3,15,kim@example.com\n이영희,2000,1,1\n")

	jobs, rowErrs, err := ParseJobs(path)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, jobs, 2)

	assert.Equal(t, "김철수", jobs[0].Name)
	assert.Equal(t, 1990, jobs[0].Birth.Year)
	assert.Equal(t, 3, jobs[0].Birth.Month)
	assert.Equal(t, 15, jobs[0].Birth.Day)
	assert.Equal(t, "kim@example.com", jobs[0].Email)

	assert.Equal(t, "이영희", jobs[1].Name)
	assert.Equal(t, "2000-01-01", jobs[1].Birth.String())
}

func TestParseJobs_DefaultsMissingBirthFields(t *testing.T) {
	path := writeTempCSV(t, "박민수\n")

	jobs, rowErrs, err := ParseJobs(path)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "1990-01-01", jobs[0].Birth.String())
}

func TestParseJobs_SingleColumnHeaderIsSkipped(t *testing.T) {
	path := writeTempCSV(t, "name\n강하늘\n")

	jobs, rowErrs, err := ParseJobs(path)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "강하늘", jobs[0].Name)

	// Korean column labels are headers too.
	path = writeTempCSV(t, "고객명\n나윤서\n")
	jobs, _, err = ParseJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "나윤서", jobs[0].Name)
}

func TestParseJobs_MalformedRowBecomesRowError(t *testing.T) {
	path := writeTempCSV(t, "name,year,month,day\n정수진,1985,7,22\n최지우,abcd,5,9\n한가람,1992,11,3\n")

	jobs, rowErrs, err := ParseJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "정수진", jobs[0].Name)
	assert.Equal(t, "한가람", jobs[1].Name)

	require.Len(t, rowErrs, 1)
	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Reason, "abcd")
}

func TestParseJobs_SkipsBlankRows(t *testing.T) {
	path := writeTempCSV(t, "오세훈,1978,2,14\n,,,\n유나래,1995,6,30\n")

	jobs, rowErrs, err := ParseJobs(path)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, jobs, 2)
}

func TestParseJobs_XLSX(t *testing.T) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	require.NoError(t, file.SetSheetRow(sheet, "A1", &[]interface{}{"name", "year", "month", "day"}))
	require.NoError(t, file.SetSheetRow(sheet, "A2", &[]interface{}{"서지호", 1988, 12, 25}))
	require.NoError(t, file.SetSheetRow(sheet, "A3", &[]interface{}{"문채원", 2001, 4, 8}))

	path := filepath.Join(t.TempDir(), "customers.xlsx")
	require.NoError(t, file.SaveAs(path))
	require.NoError(t, file.Close())

	jobs, rowErrs, err := ParseJobs(path)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, jobs, 2)
	assert.Equal(t, "서지호", jobs[0].Name)
	assert.Equal(t, "1988-12-25", jobs[0].Birth.String())
	assert.Equal(t, "문채원", jobs[1].Name)
}

func TestParseJobs_MissingFile(t *testing.T) {
	_, _, err := ParseJobs(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

// Package saju computes the sexagenary (four pillars) calendar encoding and
// five-element score distribution for a solar birth date.
package saju

import "fmt"

// BirthRecord is a solar calendar birth date.
type BirthRecord struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// ErrorEncoding is the sentinel returned when a birth date cannot be
// converted to a sexagenary encoding. Callers treat it as a soft failure.
const ErrorEncoding = "date error"

// Supported conversion range. Dates outside it produce the error sentinel.
const (
	minYear = 1900
	maxYear = 2100
)

var (
	stems    = []rune("甲乙丙丁戊己庚辛壬癸")
	branches = []rune("子丑寅卯辰巳午未申酉戌亥")
)

// jieDay approximates, per solar month, the day the sexagenary month turns
// over (the "jie" solar term). Index 1-12.
var jieDay = [13]int{0, 6, 4, 6, 5, 6, 6, 7, 8, 8, 8, 7, 7}

// daysInMonth returns the day count of a solar month, accounting for leap years.
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
	return 0
}

// Valid reports whether the record is a real calendar date inside the
// supported conversion range.
func (b BirthRecord) Valid() bool {
	if b.Year < minYear || b.Year > maxYear {
		return false
	}
	if b.Month < 1 || b.Month > 12 {
		return false
	}
	return b.Day >= 1 && b.Day <= daysInMonth(b.Year, b.Month)
}

// String formats the record as YYYY-MM-DD.
func (b BirthRecord) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", b.Year, b.Month, b.Day)
}

// julianDayNumber converts a Gregorian date to its Julian day number.
func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// pillar is a stem/branch pair expressed as indexes into stems and branches.
type pillar struct {
	stem   int
	branch int
}

func (p pillar) String() string {
	return string(stems[p.stem]) + string(branches[p.branch])
}

// encode derives the four pillars for a valid birth record. The hour pillar
// is computed for noon: batch input rows carry no birth time.
func encode(b BirthRecord) string {
	// Before the ipchun boundary (approximated as Feb 4) the date still
	// belongs to the previous sexagenary year.
	effYear := b.Year
	if b.Month == 1 || (b.Month == 2 && b.Day < 4) {
		effYear--
	}
	year := pillar{stem: (effYear - 4) % 10, branch: (effYear - 4) % 12}

	// Months count from the tiger month, which opens at ipchun.
	monthsSinceTiger := b.Month - 2
	if b.Day < jieDay[b.Month] {
		monthsSinceTiger--
	}
	monthsSinceTiger = ((monthsSinceTiger % 12) + 12) % 12
	// Five tigers rule: the first month's stem follows from the year stem.
	firstStem := (year.stem%5)*2 + 2
	month := pillar{
		stem:   (firstStem + monthsSinceTiger) % 10,
		branch: (monthsSinceTiger + 2) % 12,
	}

	dayIndex := (julianDayNumber(b.Year, b.Month, b.Day) + 49) % 60
	day := pillar{stem: dayIndex % 10, branch: dayIndex % 12}

	// Five rats rule, evaluated at the noon (horse) hour.
	const noonBranch = 6
	hour := pillar{
		stem:   ((day.stem%5)*2 + noonBranch) % 10,
		branch: noonBranch,
	}

	return year.String() + " " + month.String() + " " + day.String() + " " + hour.String()
}

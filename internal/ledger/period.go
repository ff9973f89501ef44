package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// QuartersPerYear is the number of quarters in an academic year.
const QuartersPerYear = 4

// AcademicYearStartMonth is the first month of every academic year.
const AcademicYearStartMonth = time.April

var academicYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// QuarterOf maps a calendar date to its academic quarter:
// Apr-Jun 1, Jul-Sep 2, Oct-Dec 3, Jan-Mar 4.
func QuarterOf(t time.Time) int {
	switch m := t.Month(); {
	case m >= time.April && m <= time.June:
		return 1
	case m >= time.July && m <= time.September:
		return 2
	case m >= time.October:
		return 3
	default:
		return 4
	}
}

// AcademicYearOf returns the "YYYY-YY" label of the academic year containing t.
func AcademicYearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < AcademicYearStartMonth {
		start--
	}
	return FormatAcademicYear(start)
}

// FormatAcademicYear renders the label for the academic year starting in April of startYear.
func FormatAcademicYear(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// ValidAcademicYear reports whether s has the "YYYY-YY" shape.
func ValidAcademicYear(s string) bool {
	return academicYearPattern.MatchString(s)
}

// ValidQuarter reports whether q is one of 1..4.
func ValidQuarter(q int) bool {
	return q >= 1 && q <= QuartersPerYear
}

// QuarterStart returns the first day (UTC) of the given quarter of an academic year.
func QuarterStart(academicYear string, quarter int) (time.Time, error) {
	if !ValidAcademicYear(academicYear) {
		return time.Time{}, fmt.Errorf("invalid academic year %q", academicYear)
	}
	if !ValidQuarter(quarter) {
		return time.Time{}, fmt.Errorf("invalid quarter %d", quarter)
	}
	startYear, err := strconv.Atoi(academicYear[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid academic year %q: %w", academicYear, err)
	}
	month := AcademicYearStartMonth + time.Month((quarter-1)*MonthsPerQuarter)
	year := startYear
	if month > time.December {
		month -= 12
		year++
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// QuartersStarted counts the quarters of academicYear that have begun by asOf.
func QuartersStarted(academicYear string, asOf time.Time) int {
	started := 0
	for q := 1; q <= QuartersPerYear; q++ {
		start, err := QuarterStart(academicYear, q)
		if err != nil {
			return 0
		}
		if !asOf.Before(start) {
			started = q
		}
	}
	return started
}

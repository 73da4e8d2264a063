package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MinYear is the first year covered by the ISTAT revaluation series.
const MinYear = 1947

var monthNames = [12]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

var periodPattern = regexp.MustCompile(`^(\d{2})\.(\d{4})$`)

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidPeriod = errors.New("invalid period format")
)

// Period is one calendar month. The zero value is not a valid Period;
// build one with NewPeriod or ParsePeriod.
type Period struct {
	month int // 0..11
	year  int
}

// NewPeriod returns the Period for a zero-based month index and a year.
func NewPeriod(monthIndex, year int) (Period, error) {
	if monthIndex < 0 || monthIndex > 11 {
		return Period{}, fmt.Errorf("%w: month index %d out of range 0..11", ErrInvalidMonth, monthIndex)
	}
	if year < MinYear {
		return Period{}, fmt.Errorf("%w: %d is before %d", ErrInvalidYear, year, MinYear)
	}
	return Period{month: monthIndex, year: year}, nil
}

// ParsePeriod parses the MM.YYYY form, e.g. "01.2000" for January 2000.
func ParsePeriod(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(s)
	if m == nil {
		return Period{}, fmt.Errorf("%w: %q, want MM.YYYY", ErrInvalidPeriod, s)
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month must be between 01 and 12", ErrInvalidMonth)
	}
	return NewPeriod(month-1, year)
}

// MonthIndex returns the zero-based month (0 = January).
func (p Period) MonthIndex() int { return p.month }

func (p Period) Year() int { return p.year }

// MonthName returns the Italian month name used by the ISTAT forms.
func (p Period) MonthName() string { return monthNames[p.month] }

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.year)
}

// Compare returns -1, 0 or +1 ordering by year, then month.
func (p Period) Compare(other Period) int {
	switch {
	case p.year < other.year:
		return -1
	case p.year > other.year:
		return 1
	case p.month < other.month:
		return -1
	case p.month > other.month:
		return 1
	}
	return 0
}

func (p Period) Before(other Period) bool { return p.Compare(other) < 0 }

func (p Period) After(other Period) bool { return p.Compare(other) > 0 }

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.month == 11 {
		return Period{month: 0, year: p.year + 1}
	}
	return Period{month: p.month + 1, year: p.year}
}

package core

import (
	"errors"
	"fmt"
)

var ErrInvalidRange = errors.New("invalid range")

// MonthsBetween returns how many periods lie in [start, end], both included.
// The result is zero or negative when end is before start.
func MonthsBetween(start, end Period) int {
	return (end.year-start.year)*12 + (end.month - start.month) + 1
}

// Enumerate returns every period from start through end inclusive, one
// calendar month apart, in ascending order.
func Enumerate(start, end Period) ([]Period, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}

	periods := make([]Period, 0, MonthsBetween(start, end))
	for p := start; !p.After(end); p = p.Next() {
		periods = append(periods, p)
	}
	return periods, nil
}

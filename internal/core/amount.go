package core

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a positive whole number of currency units, sent to ISTAT as-is.
type Amount int64

// NewAmount validates n as a revaluable amount.
func NewAmount(n int64) (Amount, error) {
	a := Amount(n)
	if err := a.Validate(); err != nil {
		return 0, err
	}
	return a, nil
}

// ParseAmount accepts only plain positive integers ("100", not "100.00" or "1e2").
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return NewAmount(n)
}

func (a Amount) Validate() error {
	if a <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

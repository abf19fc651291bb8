package service

import (
	"fmt"
	"strconv"
	"strings"

	"expense_tracker/internal/repository"
)

// monthRange turns a month/year pair into [first of month, first of next month).
// It returns nil when either value is missing; a single value never filters.
func monthRange(f ListFilter) (*repository.DateRange, error) {
	ms, ys := strings.TrimSpace(f.Month), strings.TrimSpace(f.Year)
	if ms == "" || ys == "" {
		return nil, nil
	}

	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return nil, invalid(MsgInvalidPeriod)
	}
	year, err := strconv.Atoi(ys)
	if err != nil || year < 1 || year > 9999 {
		return nil, invalid(MsgInvalidPeriod)
	}

	r := &repository.DateRange{From: fmt.Sprintf("%04d-%02d-01", year, month)}
	if month == 12 {
		r.To = fmt.Sprintf("%04d-01-01", year+1)
	} else {
		r.To = fmt.Sprintf("%04d-%02d-01", year, month+1)
	}
	return r, nil
}

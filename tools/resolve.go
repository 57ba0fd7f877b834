/*
resolve.go - Shared reference and shape parsing for tool parameters

PURPOSE:
  Drivers hand the tool layer loose strings: a project that may be an
  opaque id or a display name typed by a human, ISO dates, month tokens,
  and declarative ranges. This file is the single place those strings
  become typed ledger values or a ValidationError/NotFoundError.
*/
package tools

import (
	"context"
	"fmt"

	"github.com/warp/ledger-engine/ledger"
)

// resolveProject accepts an opaque project id or a case-insensitive
// display name and returns the project, or a NotFoundError naming the
// reference as given.
func resolveProject(ctx context.Context, store ledger.Store, ref string) (*ledger.Project, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: a project id or name is required", ledger.ErrValidation)
	}

	p, err := store.GetProject(ctx, ledger.ProjectID(ref))
	if err != nil {
		return nil, err
	}
	if p == nil {
		p, err = store.GetProjectByName(ctx, ref)
		if err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, &ledger.NotFoundError{Kind: "project", Ref: ref}
	}
	return p, nil
}

func requireEmployee(id string) (ledger.EmployeeID, error) {
	if id == "" {
		return "", fmt.Errorf("%w: employeeId is required", ledger.ErrValidation)
	}
	return ledger.EmployeeID(id), nil
}

func parseDate(s, field string) (ledger.Day, error) {
	if s == "" {
		return ledger.Day{}, fmt.Errorf("%w: %s is required", ledger.ErrValidation, field)
	}
	return ledger.ParseDay(s)
}

func parseOptionalDate(s string) (*ledger.Day, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ledger.ParseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseOptionalMonth(s string) (*ledger.Month, error) {
	if s == "" {
		return nil, nil
	}
	m, err := ledger.ParseMonth(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// parseRangeSpec assembles a declarative RangeSpec from the loose string
// fields every bulk parameter record carries. Resolve() on the returned
// spec enforces that exactly one range form was supplied.
func parseRangeSpec(startDate, endDate, month, monthEnd string) (ledger.RangeSpec, error) {
	var spec ledger.RangeSpec
	var err error

	if spec.Start, err = parseOptionalDate(startDate); err != nil {
		return spec, err
	}
	if spec.End, err = parseOptionalDate(endDate); err != nil {
		return spec, err
	}
	if spec.Month, err = parseOptionalMonth(month); err != nil {
		return spec, err
	}
	if spec.MonthEnd, err = parseOptionalMonth(monthEnd); err != nil {
		return spec, err
	}
	return spec, nil
}

// hasRange reports whether any range field was supplied at all, for the
// operations where the range itself is optional.
func hasRange(startDate, endDate, month string) bool {
	return startDate != "" || endDate != "" || month != ""
}

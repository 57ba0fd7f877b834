/*
Package tools is the contract layer between the ledger core and an
external driver (a human UI or an LLM agent).

PURPOSE:
  One entry point per capability: record work, record vacation, update,
  delete, bulk-add, bulk-update, bulk-delete, list-recent, deduplicate,
  clear-all. Every entry point validates its input, resolves project
  references (opaque id or case-insensitive display name), runs the
  confirmation gate where relevant, delegates to the ledger service, and
  returns a tagged Outcome.

OUTCOME TAGS:
  success               - the operation executed
  conflict              - an existing entry occupies the key; the driver
                          must pick a conflict action and resubmit
  requiresConfirmation  - the gate blocked the write; the driver must
                          resubmit the identical call with confirmed=true
  error                 - validation, authorization, not-found, or storage

MESSAGES:
  Outcome.Message is shown VERBATIM by the driver, so it is short,
  declarative, and states exactly what happened or what confirming would
  do. No internal identifiers or stack traces.

THIS FILE (contract.go):
  The Outcome shape and the typed parameter record for each operation.
  Parameters are deliberately operation-specific records, not a shared
  loosely-typed bag: the compiler catches a missing field, not the driver.

SEE ALSO:
  - toolset.go: the operations themselves and the Invoke registry
  - resolve.go: project reference resolution
*/
package tools

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/ledger-engine/ledger"
)

// =============================================================================
// OUTCOME
// =============================================================================

type Status string

const (
	StatusSuccess              Status = "success"
	StatusConflict             Status = "conflict"
	StatusRequiresConfirmation Status = "requiresConfirmation"
	StatusError                Status = "error"
)

// Outcome is the structured result of every tool operation. Message is
// always set; the remaining fields are populated where meaningful.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message"`

	// EntryID identifies the entry a single-entry write produced or changed.
	EntryID string `json:"entryId,omitempty"`

	// ExistingID and ExistingHours describe the occupying entry on conflict.
	ExistingID    string           `json:"existingId,omitempty"`
	ExistingHours *decimal.Decimal `json:"existingHours,omitempty"`

	// Bulk counters.
	Created int `json:"created,omitempty"`
	Skipped int `json:"skipped,omitempty"`
	Updated int `json:"updated,omitempty"`
	Deleted int `json:"deleted,omitempty"`

	// Entries carries the listing for listRecentWork.
	Entries []WorkEntry `json:"entries,omitempty"`
}

// WorkEntry is the driver-facing view of a work log row.
type WorkEntry struct {
	ID      string          `json:"id"`
	Project string          `json:"project"`
	Date    string          `json:"date"`
	Hours   decimal.Decimal `json:"hours"`
}

func success(format string, args ...any) Outcome {
	return Outcome{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

// failure maps a ledger error onto an error outcome. Storage internals are
// not leaked to the driver.
func failure(err error) Outcome {
	msg := err.Error()
	if errors.Is(err, ledger.ErrPersistence) {
		msg = "a storage error occurred - nothing was changed"
	}
	return Outcome{Status: StatusError, Message: msg}
}

func confirmationRequired(d ledger.Decision) Outcome {
	return Outcome{Status: StatusRequiresConfirmation, Message: d.Message}
}

// =============================================================================
// PARAMETER RECORDS - One per operation
// =============================================================================

// RecordWorkParams records hours for one employee/project/day.
type RecordWorkParams struct {
	EmployeeID string          `json:"employeeId"`
	Project    string          `json:"project"`
	Date       string          `json:"date"`
	Hours      decimal.Decimal `json:"hours"`

	Confirmed      bool   `json:"confirmed,omitempty"`
	ConflictAction string `json:"conflictAction,omitempty"`
}

// RecordVacationParams records one vacation day.
type RecordVacationParams struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`

	Confirmed      bool   `json:"confirmed,omitempty"`
	ConflictAction string `json:"conflictAction,omitempty"`
}

// BulkRecordWorkParams creates one entry per candidate day in a range.
// Supply either startDate+endDate or month (optionally monthEnd).
type BulkRecordWorkParams struct {
	EmployeeID  string          `json:"employeeId"`
	Project     string          `json:"project"`
	HoursPerDay decimal.Decimal `json:"hoursPerDay"`

	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Month     string `json:"month,omitempty"`
	MonthEnd  string `json:"monthEnd,omitempty"`

	// SkipWeekends defaults to true when absent.
	SkipWeekends *bool `json:"skipWeekends,omitempty"`
	Confirmed    bool  `json:"confirmed,omitempty"`
}

// UpdateWorkParams changes an entry addressed by logId, or by date+project
// when the id is unknown.
type UpdateWorkParams struct {
	EmployeeID string `json:"employeeId"`
	LogID      string `json:"logId,omitempty"`
	Project    string `json:"project,omitempty"`
	Date       string `json:"date,omitempty"`

	Hours   *decimal.Decimal `json:"hours,omitempty"`
	NewDate string           `json:"newDate,omitempty"`
}

// BulkUpdateWorkParams sets the hours on every entry matching the
// optional project/range narrowing.
type BulkUpdateWorkParams struct {
	EmployeeID string          `json:"employeeId"`
	Hours      decimal.Decimal `json:"hours"`

	Project   string `json:"project,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Month     string `json:"month,omitempty"`
	MonthEnd  string `json:"monthEnd,omitempty"`
}

// DeleteWorkParams deletes an entry addressed like UpdateWorkParams.
type DeleteWorkParams struct {
	EmployeeID string `json:"employeeId"`
	LogID      string `json:"logId,omitempty"`
	Project    string `json:"project,omitempty"`
	Date       string `json:"date,omitempty"`
}

// BulkDeleteWorkParams deletes every work entry in a range, optionally
// narrowed to one project. Always gated.
type BulkDeleteWorkParams struct {
	EmployeeID string `json:"employeeId"`
	Project    string `json:"project,omitempty"`

	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Month     string `json:"month,omitempty"`
	MonthEnd  string `json:"monthEnd,omitempty"`

	Confirmed bool `json:"confirmed,omitempty"`
}

// DeleteVacationParams removes the vacation entry (or entries) on a day
// and refunds the balance accordingly.
type DeleteVacationParams struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
}

// BulkDeleteVacationParams removes every vacation entry in a range and
// refunds the balance by the count removed. Always gated.
type BulkDeleteVacationParams struct {
	EmployeeID string `json:"employeeId"`

	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Month     string `json:"month,omitempty"`
	MonthEnd  string `json:"monthEnd,omitempty"`

	Confirmed bool `json:"confirmed,omitempty"`
}

// DeduplicateWorkParams sweeps duplicate work entries in an optional range.
type DeduplicateWorkParams struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
}

// ClearAllLogsParams wipes every entry for the employee. Requires an
// explicit confirm=true in the same call.
type ClearAllLogsParams struct {
	EmployeeID string `json:"employeeId"`
	Confirm    bool   `json:"confirm"`
}

// ListRecentWorkParams lists the employee's newest work entries.
type ListRecentWorkParams struct {
	EmployeeID string `json:"employeeId"`
	Limit      int    `json:"limit,omitempty"`
}

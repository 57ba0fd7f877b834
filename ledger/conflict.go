/*
conflict.go - Explicit policies for duplicate ledger entries

PURPOSE:
  Uniqueness of (employee, project, date) for work and (employee, date) for
  vacation is a POLICY, not a hard constraint. When a record operation
  finds an existing entry at the same natural key, the conflict is made
  explicit and externally observable instead of silently overwriting or
  silently duplicating.

POLICIES:
  reject (default) - return the conflict with the existing hours, write
                     nothing, and let the caller ask the end user
  merge            - add the new hours onto the existing entry (work only;
                     merging vacation days is not meaningful)
  ignore           - discard the new request, report a no-op success
  add              - insert a second independent entry (accepted duplication)

SEE ALSO:
  - service.go: applies these policies inside record operations
  - dedup.go: after-the-fact cleanup of accepted duplicates
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFLICT ACTION
// =============================================================================

type ConflictAction string

const (
	// ConflictReject is the default when no action is supplied.
	ConflictReject ConflictAction = ""
	ConflictMerge  ConflictAction = "merge"
	ConflictIgnore ConflictAction = "ignore"
	ConflictAdd    ConflictAction = "add"
)

// ParseConflictAction validates a caller-supplied action string.
// forVacation excludes merge, which has no meaning for vacation days.
func ParseConflictAction(s string, forVacation bool) (ConflictAction, error) {
	switch ConflictAction(s) {
	case ConflictReject, ConflictIgnore, ConflictAdd:
		return ConflictAction(s), nil
	case ConflictMerge:
		if forVacation {
			return "", fmt.Errorf("%w: merge is not available for vacation entries", ErrValidation)
		}
		return ConflictMerge, nil
	default:
		return "", fmt.Errorf("%w: unknown conflict action %q (use merge, ignore, or add)", ErrValidation, s)
	}
}

// =============================================================================
// CONFLICT - A normal structured outcome, not an error
// =============================================================================

// Conflict describes an existing entry found at the natural key of an
// attempted write. It is returned alongside a nil error: the caller is
// expected to ask the end user which policy to apply and resubmit.
type Conflict struct {
	// ExistingID is the entry already occupying the key.
	ExistingID EntryID

	// ExistingHours is set for work conflicts (zero for vacation).
	ExistingHours decimal.Decimal

	Date Day
}

func (c *Conflict) Message(kind string) string {
	if c.ExistingHours.IsPositive() {
		return fmt.Sprintf("a %s of %sh already exists on %s - choose merge, ignore, or add", kind, c.ExistingHours, c.Date)
	}
	return fmt.Sprintf("a %s already exists on %s - choose ignore or add", kind, c.Date)
}

/*
gate.go - Stateless confirmation protocol for irregular and destructive writes

PURPOSE:
  Some writes should not happen on the first ask: logging on a weekend,
  bulk ranges that include weekends the caller chose not to skip, and any
  bulk delete. The gate evaluates such an operation and, unless the caller
  passed confirmed=true, returns a decision describing exactly what would
  happen - without performing the write.

STATELESS BY DESIGN:
  The gate holds NO pending state between calls. The caller re-invokes the
  identical operation with confirmed=true and the full original parameter
  set. No server-side session remembers the pending action, which keeps the
  protocol request-idempotent.

MESSAGES:
  Decision messages are shown verbatim to the end user by the driver, so
  they are short, declarative, and state exactly what confirming will do.
*/
package ledger

import "fmt"

// =============================================================================
// GATE DECISION
// =============================================================================

// Decision is the gate's verdict. When RequiresConfirmation is true the
// operation must not execute; Message describes what confirming would do.
type Decision struct {
	RequiresConfirmation bool
	Message              string
}

var pass = Decision{}

// =============================================================================
// CHECKS
// =============================================================================

// CheckSingleDate gates a single-date write (work or vacation) that lands
// on a Saturday or Sunday.
func CheckSingleDate(kind string, date Day, confirmed bool) Decision {
	if confirmed || !date.IsWeekend() {
		return pass
	}
	return Decision{
		RequiresConfirmation: true,
		Message: fmt.Sprintf("%s is a %s - confirm to record %s on a weekend",
			date, date.Weekday(), kind),
	}
}

// CheckBulkWrite gates a bulk creation over a range whose candidate set
// still contains weekend dates (skipWeekends was explicitly false).
func CheckBulkWrite(r DateRange, weekends []Day, skipWeekends, confirmed bool) Decision {
	if confirmed || skipWeekends || len(weekends) == 0 {
		return pass
	}
	return Decision{
		RequiresConfirmation: true,
		Message: fmt.Sprintf("the range %s includes %d weekend day(s) starting %s - confirm to write on weekends too",
			r, len(weekends), weekends[0]),
	}
}

// CheckBulkDelete gates any bulk delete. what names the entries at stake,
// e.g. "all work logs for project Atlas".
func CheckBulkDelete(what string, r DateRange, confirmed bool) Decision {
	if confirmed {
		return pass
	}
	return Decision{
		RequiresConfirmation: true,
		Message:              fmt.Sprintf("this will delete %s in %s - confirm to proceed", what, r),
	}
}

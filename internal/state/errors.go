// Package state implements the client-side state components backing the
// views: project list, document set, chat transcript, quiz session, and
// song library. Components own their state exclusively; cross-view
// consistency is refetch-based, never shared mutation.
package state

import (
	"fmt"
	"strings"
)

// ValidationError is a client-side precondition failure. When one is
// returned, no network call was issued for the failing item.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ErrLastDocument rejects deleting a project's only document.
var ErrLastDocument = &ValidationError{Msg: "cannot delete the last document of a project"}

// PartialError reports that some members of a fan-out failed while the
// rest succeeded and their results were applied.
type PartialError struct {
	Op     string
	Failed []string
	Errs   []error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s failed for %s", e.Op, strings.Join(e.Failed, ", "))
}

func (e *PartialError) Unwrap() []error { return e.Errs }

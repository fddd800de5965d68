package lineage

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrCycle indicates the graph is not acyclic after a build or correction.
	ErrCycle = errors.New("dependency cycle")

	// ErrNotFound indicates a correction referenced a node or edge that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTimestampParse indicates a malformed timestamp in a correction or
	// adapter input.
	ErrTimestampParse = errors.New("timestamp parse error")

	// ErrMissingTiming indicates an adapter could not find execution
	// start/end timing for a task.
	ErrMissingTiming = errors.New("missing timing")
)

// CycleError reports the cycle that left the graph non-acyclic.
type CycleError struct {
	Cycle []string // node ids along the cycle, in forward order
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "graph is not a DAG"
	}
	return fmt.Sprintf("graph is not a DAG: cycle %s", strings.Join(e.Cycle, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// NotFoundError reports a correction that targeted a missing node or edge.
type NotFoundError struct {
	Kind string // "node" or "edge"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.ID, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TimestampParseError reports a malformed timestamp value.
type TimestampParseError struct {
	Field string // which field held the bad value
	Value string
	Err   error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrTimestampParse.Error(), e.Field, e.Value, e.Err)
}

func (e *TimestampParseError) Unwrap() error { return ErrTimestampParse }

// MissingTimingError reports a task without a recorded execution interval.
type MissingTimingError struct {
	TaskID string
}

func (e *MissingTimingError) Error() string {
	return fmt.Sprintf("the start/end of %s is missing and the weight couldn't be calculated", e.TaskID)
}

func (e *MissingTimingError) Unwrap() error { return ErrMissingTiming }

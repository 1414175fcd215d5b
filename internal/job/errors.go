package job

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates no job exists for the requested program or id.
var ErrNotFound = errors.New("generation job not found")

// ErrJobTerminal indicates an update tried to overwrite a record that
// already reached Completed or Failed. Terminal records never change
// again; a superseded pipeline publishing from a stale snapshot gets
// this error instead of resurrecting the record.
var ErrJobTerminal = errors.New("generation job is already in a terminal state")

// ActiveJobError indicates the program already has a pending or
// processing job. A program holds at most one generation slot; callers
// must either wait or pass Force to supersede the running job.
type ActiveJobError struct {
	ProgramID string
}

func (e *ActiveJobError) Error() string {
	return fmt.Sprintf("program %s already has an active generation job", e.ProgramID)
}

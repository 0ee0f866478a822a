package app

import "time"

const opIDLayout = "20060102T150405Z"

// Operation is one CLI invocation. Its ID tags every log line written while
// it runs.
type Operation struct {
	ID      string
	Name    string
	Started time.Time
	Status  string // "running", "success" or "error"
}

// NewOperation starts an operation at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:      now.UTC().Format(opIDLayout),
		Name:    name,
		Started: now,
		Status:  "running",
	}
}

// Finish records the outcome and returns the elapsed time.
func (op *Operation) Finish(err error, now time.Time) time.Duration {
	op.Status = "success"
	if err != nil {
		op.Status = "error"
	}
	return now.Sub(op.Started)
}

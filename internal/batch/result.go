package batch

import "time"

// Failure records one file that did not convert.
type Failure struct {
	Path    string
	Message string
	Err     error
}

// Result is the outcome of a batch. Succeeded+len(Failures) == Total.
type Result struct {
	BatchID   string
	Mode      Mode
	Succeeded int
	Total     int
	Failures  []Failure
	OutputDir string
	Duration  time.Duration
	// Cancelled is set when the context ended before every file ran.
	Cancelled bool
}

func (r *Result) succeed() { r.Succeeded++ }

func (r *Result) fail(path string, err error) {
	r.Failures = append(r.Failures, Failure{Path: path, Message: err.Error(), Err: err})
}

// OK reports whether every file converted.
func (r Result) OK() bool { return len(r.Failures) == 0 && !r.Cancelled }

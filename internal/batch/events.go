package batch

// Event is published by a running batch: one Progress per file, in input
// order, then exactly one Complete.
type Event interface {
	event()
}

// Progress announces that the file at Index is about to be converted.
type Progress struct {
	Index   int
	Total   int
	Path    string
	Message string
}

// Complete carries the final tally.
type Complete struct {
	Result Result
}

func (Progress) event() {}
func (Complete) event() {}

package domain

// Batch is an ordered group of entries committed to a backend as one write.
type Batch struct {
	// Destination identifies the backend target (table, key, topic, ...).
	Destination string

	// Seq is the 1-based ordinal of this write within the current pipeline
	// cycle. It restarts at 1 after a reset.
	Seq int

	// Run identifies the pipeline cycle that produced the batch. Together
	// with Seq it is unique across pipelines and resets.
	Run string

	// Entries holds the records in the order they were posted.
	Entries []Entry
}

// NewBatch creates a batch for the given destination and sequence number.
func NewBatch(destination string, seq int, entries []Entry) Batch {
	return Batch{
		Destination: destination,
		Seq:         seq,
		Entries:     entries,
	}
}

// Size returns the number of entries in the batch.
func (b Batch) Size() int {
	return len(b.Entries)
}

// Empty returns true if the batch has no entries.
func (b Batch) Empty() bool {
	return len(b.Entries) == 0
}

package domain

// Entry is a single raw record produced by an import.
// Its shape is owned by the source that produced it; the pipeline treats it
// as an opaque value and adapters serialize it as a JSON object.
type Entry map[string]interface{}

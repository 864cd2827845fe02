package ports

// Monitor observes a pipeline.
// Calls are fire-and-forget and happen on the goroutine that called into
// the pipeline; implementations should return quickly.
type Monitor interface {
	// OnProgress reports percent (0..100) and a human-readable message.
	OnProgress(percent int, message string)

	// OnError reports a backend failure, unmodified.
	OnError(err error)

	// OnComplete reports that posting finished, normally or by abort.
	OnComplete(message string)
}

package ports

// MetricsRecorder receives registry operation outcomes.
type MetricsRecorder interface {
	ObserveOperation(operation string, err error)
	IncVersionAllocationRetry()
}

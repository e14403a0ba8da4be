package services

import "experiment-model-registry/internal/core/ports/output"

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, error) {}
func (nopRecorder) IncVersionAllocationRetry()     {}

func recorderOrNop(r ports.MetricsRecorder) ports.MetricsRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

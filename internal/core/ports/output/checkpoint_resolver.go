package ports

import "context"

// CheckpointResolver answers whether a checkpoint reference exists in the
// external checkpoint store. The registry never looks inside checkpoints.
type CheckpointResolver interface {
	Resolve(ctx context.Context, ref string) (bool, error)
}

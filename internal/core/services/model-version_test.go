package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"experiment-model-registry/internal/core/domain"
	"experiment-model-registry/internal/testutil"
)

type versionFixture struct {
	versionRepo *testutil.MockModelVersionRepo
	modelRepo   *testutil.MockRegisteredModelRepo
	checkpoints *testutil.MockCheckpointResolver
	svc         *ModelVersionService
}

func newVersionFixture(maxAttempts int) *versionFixture {
	f := &versionFixture{
		versionRepo: new(testutil.MockModelVersionRepo),
		modelRepo:   new(testutil.MockRegisteredModelRepo),
		checkpoints: new(testutil.MockCheckpointResolver),
	}
	f.svc = NewModelVersionService(f.versionRepo, f.modelRepo, f.checkpoints, nil, maxAttempts)
	return f
}

func assignVersion(n int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(1).(*domain.ModelVersion).Version = n
	}
}

func TestModelVersionService_Register(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID, Name: "m1"}, nil)
	f.checkpoints.On("Resolve", mock.Anything, "ckpt-1").Return(true, nil)
	f.versionRepo.On("Register", mock.Anything, mock.AnythingOfType("*domain.ModelVersion")).
		Run(assignVersion(1)).Return(nil)

	version, err := f.svc.Register(context.Background(), RegisterVersionInput{
		ModelID:       modelID,
		CheckpointRef: "ckpt-1",
		Name:          "first",
		Owner:         "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, version.Version)
	assert.Equal(t, "ckpt-1", version.CheckpointRef)
	assert.Equal(t, "m1", version.ModelName)
	assert.Equal(t, "alice", version.Owner)
	assert.Equal(t, version.CreatedAt, version.UpdatedAt)
	f.versionRepo.AssertExpectations(t)
}

func TestModelVersionService_Register_ModelNotFound(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(nil, domain.ErrModelNotFound)

	_, err := f.svc.Register(context.Background(), RegisterVersionInput{ModelID: modelID, CheckpointRef: "ckpt"})
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	f.checkpoints.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestModelVersionService_Register_EmptyCheckpoint(t *testing.T) {
	f := newVersionFixture(0)

	_, err := f.svc.Register(context.Background(), RegisterVersionInput{ModelID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrInvalidCheckpointRef)
	f.modelRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestModelVersionService_Register_CheckpointNotFound(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.checkpoints.On("Resolve", mock.Anything, "nope").Return(false, nil)

	_, err := f.svc.Register(context.Background(), RegisterVersionInput{ModelID: modelID, CheckpointRef: "nope"})
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)
	assert.ErrorIs(t, err, domain.ErrUnresolvable)
	f.versionRepo.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestModelVersionService_Register_ResolverError(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	boom := errors.New("connection refused")
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.checkpoints.On("Resolve", mock.Anything, "ckpt").Return(false, boom)

	_, err := f.svc.Register(context.Background(), RegisterVersionInput{ModelID: modelID, CheckpointRef: "ckpt"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrUnresolvable)
}

func TestModelVersionService_Register_RetriesTakenNumber(t *testing.T) {
	f := newVersionFixture(3)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.checkpoints.On("Resolve", mock.Anything, "ckpt").Return(true, nil)
	f.versionRepo.On("Register", mock.Anything, mock.Anything).Return(domain.ErrVersionNumberTaken).Twice()
	f.versionRepo.On("Register", mock.Anything, mock.Anything).Run(assignVersion(7)).Return(nil).Once()

	version, err := f.svc.Register(context.Background(), RegisterVersionInput{ModelID: modelID, CheckpointRef: "ckpt"})
	require.NoError(t, err)
	assert.Equal(t, 7, version.Version)
	f.versionRepo.AssertNumberOfCalls(t, "Register", 3)
}

func TestModelVersionService_Register_ExhaustsAttempts(t *testing.T) {
	f := newVersionFixture(2)
	recorder := new(testutil.MockMetricsRecorder)
	f.svc = NewModelVersionService(f.versionRepo, f.modelRepo, f.checkpoints, recorder, 2)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.checkpoints.On("Resolve", mock.Anything, "ckpt").Return(true, nil)
	f.versionRepo.On("Register", mock.Anything, mock.Anything).Return(domain.ErrVersionNumberTaken)
	recorder.On("IncVersionAllocationRetry").Return()
	recorder.On("ObserveOperation", "register_version", domain.ErrVersionConflict).Return()

	_, err := f.svc.Register(context.Background(), RegisterVersionInput{ModelID: modelID, CheckpointRef: "ckpt"})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.versionRepo.AssertNumberOfCalls(t, "Register", 2)
	recorder.AssertNumberOfCalls(t, "IncVersionAllocationRetry", 1)
	recorder.AssertExpectations(t)
}

func TestModelVersionService_Get(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	expected := &domain.ModelVersion{RegisteredModelID: modelID, Version: 2}
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.versionRepo.On("Get", mock.Anything, modelID, 2).Return(expected, nil)

	version, err := f.svc.Get(context.Background(), modelID, 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, version.Version)
}

func TestModelVersionService_Get_InvalidNumber(t *testing.T) {
	f := newVersionFixture(0)

	for _, n := range []int{0, -1} {
		_, err := f.svc.Get(context.Background(), uuid.New(), n)
		assert.ErrorIs(t, err, domain.ErrInvalidVersionNumber)
	}
}

func TestModelVersionService_Get_ModelNotFound(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(nil, domain.ErrModelNotFound)

	_, err := f.svc.Get(context.Background(), modelID, 1)
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestModelVersionService_Latest(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.versionRepo.On("Latest", mock.Anything, modelID).Return(&domain.ModelVersion{Version: 4}, nil)

	version, err := f.svc.Latest(context.Background(), modelID)
	require.NoError(t, err)
	assert.Equal(t, 4, version.Version)
}

func TestModelVersionService_Latest_NoVersions(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.versionRepo.On("Latest", mock.Anything, modelID).Return(nil, domain.ErrVersionNotFound)

	version, err := f.svc.Latest(context.Background(), modelID)
	assert.NoError(t, err)
	assert.Nil(t, version)
}

func TestModelVersionService_ListByModel(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	versions := []*domain.ModelVersion{{Version: 2}, {Version: 1}}
	f.modelRepo.On("GetByID", mock.Anything, modelID).Return(&domain.RegisteredModel{ID: modelID}, nil)
	f.versionRepo.On("ListByModel", mock.Anything, modelID).Return(versions, nil)

	result, err := f.svc.ListByModel(context.Background(), modelID)
	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestModelVersionService_Update(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	notes := "retrained"
	patch := domain.VersionPatch{Notes: &notes}
	f.versionRepo.On("Update", mock.Anything, modelID, 1, patch).
		Return(&domain.ModelVersion{Version: 1, Notes: notes}, nil)

	updated, err := f.svc.Update(context.Background(), modelID, 1, patch)
	assert.NoError(t, err)
	assert.Equal(t, "retrained", updated.Notes)
}

func TestModelVersionService_Delete(t *testing.T) {
	f := newVersionFixture(0)

	modelID := uuid.New()
	f.versionRepo.On("Delete", mock.Anything, modelID, 3).Return(nil)

	assert.NoError(t, f.svc.Delete(context.Background(), modelID, 3))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), modelID, 0), domain.ErrInvalidVersionNumber)
}

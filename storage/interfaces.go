package storage

import (
	"context"
	"errors"

	"basic-cleaning/models"
)

// ErrArtifactNotFound is returned when a reference resolves to nothing.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore is the interface any artifact tracking backend must satisfy.
// It keeps the cleaning logic free of any particular storage service.
type ArtifactStore interface {
	// StartRun persists a new run record.
	StartRun(ctx context.Context, run *models.Run) error
	// UseArtifact resolves ref to a local file and records it as an input of run.
	UseArtifact(ctx context.Context, run *models.Run, ref string) (string, error)
	// LogArtifact registers a.File as the next version of a.Name and records
	// it as an output of run.
	LogArtifact(ctx context.Context, run *models.Run, a *models.Artifact) (*models.Artifact, error)
	// FinishRun persists the final state of run.
	FinishRun(ctx context.Context, run *models.Run) error
	Close() error
}

package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Outcome int

const (
	Uploaded Outcome = iota
	AlreadyStored
)

func (o Outcome) String() string {
	switch o {
	case Uploaded:
		return "uploaded"
	case AlreadyStored:
		return "already stored"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// UploadResult reports what Upload did. StorageClass is the class that was
// requested for the upload, empty when the object was already stored.
type UploadResult struct {
	Outcome      Outcome
	Staged       StagedFile
	StorageClass string
}

// UploadGate stages a file and uploads it unless an object already exists
// at its key.
type UploadGate struct {
	Staging      PhotoStaging
	Store        ObjectStore
	StorageClass string
	Log          *zap.Logger
}

func (g *UploadGate) Upload(ctx context.Context, src, key string) (UploadResult, error) {
	staged, err := g.Staging.Stage(src, key)
	if err != nil {
		return UploadResult{}, fmt.Errorf("stage %s: %w", key, err)
	}

	if g.exists(ctx, key) {
		return UploadResult{Outcome: AlreadyStored, Staged: staged}, nil
	}

	err = g.Store.Put(ctx, key, staged.Path, PutOptions{
		StorageClass: g.StorageClass,
		Checksum:     staged.Checksum,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return UploadResult{Outcome: Uploaded, Staged: staged, StorageClass: g.StorageClass}, nil
}

// exists asks the store at most twice. An unanswered check counts as
// absent, so the file is uploaded again rather than left out.
func (g *UploadGate) exists(ctx context.Context, key string) bool {
	found, err := g.Store.Exists(ctx, key)
	if err == nil {
		return found
	}
	g.logger().Warn("existence check failed, retrying", zap.String("key", key), zap.Error(err))

	found, err = g.Store.Exists(ctx, key)
	if err == nil {
		return found
	}
	g.logger().Warn("existence unknown, uploading anyway", zap.String("key", key), zap.Error(err))
	return false
}

func (g *UploadGate) logger() *zap.Logger {
	if g.Log == nil {
		return zap.NewNop()
	}
	return g.Log
}

package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"photo-archive/metadata"
	"photo-archive/model"
	"photo-archive/storage"
)

// IsImage reports whether path has a .jpg, .jpeg or .png extension, in any
// letter case.
func IsImage(path string) bool {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return false
	}
	return f == imaging.JPEG || f == imaging.PNG
}

type MetadataReader interface {
	Read(path string) (model.ImageMetadata, error)
}

type Uploader interface {
	Upload(ctx context.Context, src, key string) (storage.UploadResult, error)
}

// Stats counts what happened to the files seen during a run.
type Stats struct {
	Found      int // image files reaching the pipeline
	Uploaded   int
	Skipped    int // already present in the store
	Unreadable int // unreadable or not an image
	Failed     int
	Ignored    int // files with other extensions
}

// Walker backs up every image under a root folder, one file at a time.
type Walker struct {
	Reader  MetadataReader
	Geo     *GeoResolver
	Gate    Uploader
	Catalog storage.Catalog
	Bucket  string
	RunID   string
	Log     *zap.Logger
}

// Run walks root recursively. Failures on individual files are logged and
// counted; only a cancelled context or an unreadable root stop the walk.
func (w *Walker) Run(ctx context.Context, root string) (Stats, error) {
	var stats Stats
	log := w.logger()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("cannot access path, skipping", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if !IsImage(path) {
			stats.Ignored++
			log.Debug("ignoring non-image file", zap.String("file", path))
			return nil
		}

		stats.Found++
		w.process(ctx, path, &stats)
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return stats, nil
}

func (w *Walker) process(ctx context.Context, path string, stats *Stats) {
	log := w.logger().With(zap.String("file", path))

	defer func() {
		if r := recover(); r != nil {
			stats.Failed++
			log.Error("panic recovered while processing file", zap.Any("error", r))
		}
	}()

	res, err := w.processFile(ctx, path, log)
	var skip *skipError
	switch {
	case errors.As(err, &skip):
		stats.Unreadable++
		log.Warn("skipping file", zap.Error(skip.err))
	case err != nil:
		stats.Failed++
		log.Error("backup failed", zap.Error(err))
	case res.Outcome == storage.AlreadyStored:
		stats.Skipped++
	default:
		stats.Uploaded++
	}
}

type skipError struct {
	err error
}

func (e *skipError) Error() string { return e.err.Error() }
func (e *skipError) Unwrap() error { return e.err }

func (w *Walker) processFile(ctx context.Context, path string, log *zap.Logger) (storage.UploadResult, error) {
	md, err := w.Reader.Read(path)
	if err != nil {
		return storage.UploadResult{}, &skipError{err: err}
	}

	date, source, err := metadata.ResolveDate(md, path)
	if err != nil {
		return storage.UploadResult{}, err
	}

	var (
		coord *model.GeoCoordinate
		place string
	)
	if w.Geo != nil {
		coord, place = w.Geo.Resolve(ctx, md, path)
	}

	key := PlanPath(date, place, filepath.Base(path))
	res, err := w.Gate.Upload(ctx, path, key)
	if err != nil {
		return res, err
	}

	log.Info("file processed",
		zap.String("key", key),
		zap.String("date_source", string(source)),
		zap.String("place", place),
		zap.Stringer("outcome", res.Outcome),
	)

	if res.Outcome == storage.Uploaded {
		w.record(ctx, path, key, date, coord, place, res, log)
	}
	return res, nil
}

func (w *Walker) record(ctx context.Context, src, key string, date model.CaptureDate, coord *model.GeoCoordinate, place string, res storage.UploadResult, log *zap.Logger) {
	if w.Catalog == nil {
		return
	}
	rec := model.BackupRecord{
		Key:          key,
		Bucket:       w.Bucket,
		SourcePath:   src,
		TakenOn:      date,
		Place:        place,
		Size:         res.Staged.Size,
		Checksum:     res.Staged.Checksum,
		StorageClass: res.StorageClass,
		RunID:        w.RunID,
		UploadedAt:   time.Now().UTC(),
	}
	if coord != nil {
		rec.LonLat = model.NewGeoPoint(*coord)
	}

	// The object is already stored; a catalog miss does not fail the file.
	if err := w.Catalog.RecordUpload(ctx, rec); err != nil {
		log.Warn("catalog update failed", zap.String("key", key), zap.Error(err))
	}
}

func (w *Walker) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

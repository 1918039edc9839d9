package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"photo-archive/backup"
	"photo-archive/config"
	"photo-archive/geocode"
	"photo-archive/metadata"
	"photo-archive/storage"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("photo-archive", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: photo-archive <source-folder>")
		fmt.Fprintln(os.Stderr, "Copies .jpg, .jpeg and .png files into YYYY/MM/DD[/Place]/ keys in an S3 bucket.")
		fmt.Fprintln(os.Stderr, "Settings are read from the environment and an optional .env file.")
	}
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 1
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 1
	}

	root := flags.Arg(0)
	info, err := os.Stat(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "source folder: %v\n", err)
		return 1
	}
	if !info.IsDir() {
		fmt.Fprintf(os.Stderr, "source folder: %s is not a directory\n", root)
		return 1
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewS3Store(ctx, cfg.Region, cfg.AccessKey, cfg.SecretKey, cfg.Bucket)
	if err != nil {
		logger.Error("failed to create S3 client", zap.Error(err))
		return 1
	}

	var catalog storage.Catalog = storage.NopCatalog{}
	if cfg.CatalogEnabled() {
		mongodb := &storage.MongoCatalog{Log: logger}
		if err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection); err != nil {
			logger.Error("failed to connect to MongoDB", zap.Error(err))
			return 1
		}
		defer mongodb.Close()
		if err := mongodb.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create catalog indexes", zap.Error(err))
		}
		catalog = mongodb
	}

	walker := &backup.Walker{
		Reader: &metadata.Reader{Log: logger},
		Geo: &backup.GeoResolver{
			Geocoder: geocode.NewClient(cfg.GeocodeURL, cfg.GeocodeAPIKey, cfg.GeocodeTimeout),
			Log:      logger,
		},
		Gate: &storage.UploadGate{
			Staging:      &storage.LocalStaging{Directory: cfg.StagingDir},
			Store:        store,
			StorageClass: cfg.StorageClass,
			Log:          logger,
		},
		Catalog: catalog,
		Bucket:  cfg.Bucket,
		RunID:   runID,
		Log:     logger,
	}

	logger.Info("starting backup",
		zap.String("source", root),
		zap.String("bucket", cfg.Bucket),
		zap.String("storage_class", cfg.StorageClass),
		zap.String("staging_dir", cfg.StagingDir),
	)

	stats, err := walker.Run(ctx, root)
	logger.Info("backup finished",
		zap.Int("found", stats.Found),
		zap.Int("uploaded", stats.Uploaded),
		zap.Int("already_stored", stats.Skipped),
		zap.Int("unreadable", stats.Unreadable),
		zap.Int("failed", stats.Failed),
		zap.Int("ignored", stats.Ignored),
	)
	if err != nil {
		logger.Error("backup interrupted", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

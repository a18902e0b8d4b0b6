package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earthborne-tracker/catalog"
	"earthborne-tracker/config"
	"earthborne-tracker/database"
	"earthborne-tracker/handlers"
	"earthborne-tracker/utils"
	"earthborne-tracker/workers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the snapshot scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.ServiceToken == "" {
		return errors.New("TRACKER_SERVICE_TOKEN is not set; the service cannot authenticate the gateway")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Postgres(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := catalog.Seed(db, logger); err != nil {
		return err
	}
	cat, err := catalog.Load(db)
	if err != nil {
		return err
	}

	api := handlers.NewAPI(db, cat, logger)
	app := handlers.NewApp(api, handlers.AppOptions{
		ServiceToken: cfg.ServiceToken,
		Origins:      cfg.Origins(),
		BodyLimit:    cfg.BodyLimit,
	})

	if cfg.Snapshot.Interval > 0 {
		archive, err := openArchive(ctx, cfg.Snapshot)
		if err != nil {
			return err
		}
		worker := workers.NewSnapshotWorker(api.Campaigns, api.Snapshots, archive, cfg.Snapshot.Concurrency, logger)
		if _, err := workers.StartSnapshotScheduler(ctx, worker, cfg.Snapshot.Interval, logger); err != nil {
			return err
		}
	} else {
		logger.Info("[serve] campaign snapshots disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()
	logger.Info("[serve] listening",
		zap.String("addr", cfg.ListenAddr), zap.String("origins", cfg.Origins()), zap.Int("cards", cat.Len()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[serve] shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// openArchive prefers R2 when a bucket is configured.
func openArchive(ctx context.Context, sc config.Snapshot) (utils.Archive, error) {
	if sc.R2.Enabled() {
		logger.Info("[serve] snapshots go to R2", zap.String("bucket", sc.R2.BucketName))
		return utils.NewR2Archive(ctx, utils.R2Options{
			AccountID:       sc.R2.AccountID,
			AccessKeyID:     sc.R2.AccessKeyID,
			AccessKeySecret: sc.R2.AccessKeySecret,
			Bucket:          sc.R2.BucketName,
			Prefix:          sc.R2.Prefix,
		})
	}
	logger.Info("[serve] snapshots go to local dir", zap.String("dir", sc.LocalDir))
	return utils.NewDirArchive(sc.LocalDir)
}

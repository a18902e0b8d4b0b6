package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"earthborne-tracker/metrics"
	"earthborne-tracker/services"
	"earthborne-tracker/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SnapshotWorker exports every active campaign to an archive.
type SnapshotWorker struct {
	campaigns   *services.CampaignService
	snapshots   *services.SnapshotService
	archive     utils.Archive
	concurrency int
	log         *zap.Logger
	now         func() time.Time
}

func NewSnapshotWorker(campaigns *services.CampaignService, snapshots *services.SnapshotService,
	archive utils.Archive, concurrency int, log *zap.Logger) *SnapshotWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SnapshotWorker{
		campaigns:   campaigns,
		snapshots:   snapshots,
		archive:     archive,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// RunOnce writes one snapshot per active campaign under a shared timestamp
// folder. A failing campaign does not stop the others; the run reports how
// many failed.
func (w *SnapshotWorker) RunOnce(ctx context.Context) error {
	start := w.now()
	defer func() { metrics.SnapshotDuration.Observe(time.Since(start).Seconds()) }()

	ids, err := w.campaigns.ActiveCampaignIDs()
	if err != nil {
		return err
	}
	folder := start.UTC().Format("20060102T150405Z")

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key, err := w.snapshot(gctx, folder, id)
			if err != nil {
				failed.Add(1)
				metrics.SnapshotsWritten.WithLabelValues("error").Inc()
				w.log.Warn("[snapshot] campaign failed", zap.String("campaign_id", id), zap.Error(err))
				return nil
			}
			metrics.SnapshotsWritten.WithLabelValues("ok").Inc()
			w.log.Debug("[snapshot] written", zap.String("campaign_id", id), zap.String("key", key))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w.log.Info("[snapshot] run finished",
		zap.Int("campaigns", len(ids)), zap.Int64("failed", failed.Load()), zap.String("folder", folder))
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d campaign snapshots failed", n, len(ids))
	}
	return nil
}

func (w *SnapshotWorker) snapshot(ctx context.Context, folder, campaignID string) (string, error) {
	snap, err := w.snapshots.Export(campaignID)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	key := folder + "/" + campaignID + "-" + services.SnapshotFilename(snap.Campaign.Name)
	if err := w.archive.Put(ctx, key, body); err != nil {
		return "", err
	}
	return key, nil
}

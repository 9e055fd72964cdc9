// Package maintenance runs the startup housekeeping of the local database.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"voiceguide/pkg/db"
)

// Run prunes cache rows older than ttl. A zero ttl keeps everything.
// Failures are logged; they never block startup.
func Run(ctx context.Context, d *db.DB, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := ctx.Err(); err != nil {
		return
	}
	slog.Info("Starting database maintenance...", "cache_ttl", ttl)

	n, err := d.PruneCache(ttl)
	if err != nil {
		slog.Error("Cache pruning failed", "error", err)
		return
	}
	slog.Info("Cache pruning completed", "removed", n)
}

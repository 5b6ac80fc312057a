// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/chikahq/partnerhub/internal/app/system/partner"
	"github.com/chikahq/partnerhub/internal/app/system/tasks"
	"github.com/chikahq/partnerhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shared between Startup, BuildHandler, and Shutdown. WAFFLE calls these
// hooks sequentially from one goroutine, so plain package vars are safe.
var (
	engine    *partner.Service
	jobRunner *workers.Runner
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It
// builds the matching engine and starts the scheduled jobs: the expiry
// sweep, the weekly allocation pass, and the supplementation sweep.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	engine = partner.NewService(deps.MongoClient, deps.MongoDatabase, logger, partner.Config{
		GroupDuration:     appCfg.GroupDuration,
		PoolReadLimit:     int64(appCfg.PoolReadLimit),
		BatchCandidateCap: appCfg.BatchCandidateCap,
		LockTTL:           appCfg.LockTTL,
	})

	jobRunner = workers.NewRunner(logger,
		tasks.GroupExpiryJob(engine, logger),
		tasks.WeeklyMatchingJob(engine, logger),
		tasks.SupplementationJob(engine, appCfg.SupplementInterval, logger),
	)
	jobRunner.Start()

	return nil
}

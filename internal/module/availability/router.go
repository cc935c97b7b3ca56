package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"slurm-eta/internal/snapshot"
)

// SnapshotReader 读取指定集群的快照, snapshot.Pool 实现了该接口.
type SnapshotReader interface {
	Read(ctx context.Context, cluster string, opts snapshot.Options) (*snapshot.Snapshot, error)
}

type Router struct {
	snapshots SnapshotReader
	logger    *slog.Logger
	now       func() time.Time
}

func NewRouter(snapshots SnapshotReader, logger *slog.Logger) *Router {
	return &Router{
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

func (rt *Router) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1/")
	{
		g := v1.Group("/:cluster/availability")
		g.GET("/nodes", rt.HandlerGetNodes) // GET /api/v1/{cluster}/availability/nodes
		g.GET("/gpus", rt.HandlerGetGPUs)   // GET /api/v1/{cluster}/availability/gpus
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"slurm-eta/internal/estimator"
	"slurm-eta/internal/pkg/client/exec"
	"slurm-eta/internal/report"
	"slurm-eta/internal/snapshot"
)

func runEstimate(logger *slog.Logger, o estimateOptions, stdout, stderr io.Writer) int {
	client := exec.New(logger).SetBinDir(o.binDir)
	reader := snapshot.NewReader(snapshot.NewCommandSource(client, logger), logger)
	return estimate(context.Background(), logger, reader, o, stdout, stderr)
}

// estimate 读取快照并输出结论, 返回进程退出码.
func estimate(ctx context.Context, logger *slog.Logger, reader *snapshot.Reader, o estimateOptions, stdout, stderr io.Writer) int {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	snap, err := reader.Read(ctx, snapshot.Options{
		Partition:         o.partition,
		Exclude:           o.exclude,
		IncludeCompleting: o.includeCompleting,
	})
	if err != nil {
		if errors.Is(err, snapshot.ErrNoNodes) {
			fmt.Fprintf(stdout, "No nodes found (%v). Check --partition and --exclude.\n", err)
			return report.ExitNoNodes
		}
		logger.Error("unable to query slurm", slog.Any("err", err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return report.ExitQueryFailed
	}
	logger.Debug("snapshot read", slog.Int("nodes", snap.Inventory.Len()), slog.Int("jobs", len(snap.Jobs)))

	q := estimator.NodesQuery(o.nodes)
	if o.gpus > 0 {
		q = estimator.GPUsQuery(o.gpus)
	}
	res, err := estimator.Estimate(q, snap.Jobs, snap.Inventory)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return report.ExitQueryFailed
	}
	report.Record(res)

	if o.output == "json" {
		code, err := report.JSON(stdout, res, time.Now(), o.maxDetails)
		if err != nil {
			logger.Error("unable to write report", slog.Any("err", err))
		}
		return code
	}
	return report.Text(stdout, res, o.maxDetails)
}

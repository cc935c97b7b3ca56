package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"slurm-eta/internal/estimator"
	"slurm-eta/internal/pkg/common/slurm"
	slurmtime "slurm-eta/internal/pkg/common/time"
	"slurm-eta/internal/pkg/metrics"
)

var detailFieldRE = map[string]*regexp.Regexp{
	"Gres":    regexp.MustCompile(`(?:^|\s)Gres=(\S+)`),
	"CfgTRES": regexp.MustCompile(`(?:^|\s)CfgTRES=(\S+)`),
}

// Options 控制一次快照读取.
type Options struct {
	// Partition 非空时只保留属于该分区的节点.
	Partition string
	// Exclude 为需要排除的节点, 支持节点列表写法 (node[01-03]).
	Exclude []string
	// IncludeCompleting 将 CG 状态的作业也视为占用资源.
	IncludeCompleting bool
}

// Snapshot 为一次查询得到的节点容量表和运行中作业.
type Snapshot struct {
	Inventory *estimator.NodeInventory
	Jobs      []estimator.RunningJob
}

type Reader struct {
	src    Source
	logger *slog.Logger
}

func NewReader(src Source, logger *slog.Logger) *Reader {
	return &Reader{src: src, logger: logger}
}

// Read 并行读取节点容量表和作业列表, 任一失败则整体失败.
func (r *Reader) Read(ctx context.Context, opts Options) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		inv, err := r.Inventory(gctx, opts.Partition, opts.Exclude)
		snap.Inventory = inv
		return err
	})
	g.Go(func() error {
		jobs, err := r.RunningJobs(gctx, opts.IncludeCompleting)
		snap.Jobs = jobs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Inventory 构建节点 GPU 容量表. GRES 中没有 GPU 的节点会再查询节点详情,
// 详情查询失败时该节点按 0 张 GPU 处理.
func (r *Reader) Inventory(ctx context.Context, partition string, exclude []string) (*estimator.NodeInventory, error) {
	records, err := r.src.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	excluded := make(map[string]struct{})
	for _, e := range exclude {
		for _, h := range slurm.ExpandNodelist(e) {
			excluded[h] = struct{}{}
		}
	}

	inv := estimator.NewNodeInventory()
	resolved := make(map[string]int)
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		if _, skip := excluded[rec.Name]; skip {
			continue
		}
		node := estimator.Node{Name: rec.Name, Partitions: estimator.ParsePartitions(rec.Partition)}
		if partition != "" && !node.InPartition(partition) {
			continue
		}
		if n, ok := resolved[rec.Name]; ok {
			node.GPUs = n
		} else {
			node.GPUs = slurm.GPUCount(rec.Gres)
			if node.GPUs == 0 {
				n, err := r.fallbackGPUs(ctx, rec.Name)
				if err != nil {
					r.logger.Debug("no gpu count from node detail", "node", rec.Name, "err", err)
				}
				node.GPUs = n
			}
			resolved[rec.Name] = node.GPUs
		}
		inv.Add(node)
	}

	metrics.SetInventoryNodes(r.src.Name(), inv.Len())
	if inv.Len() == 0 {
		if partition != "" {
			return nil, fmt.Errorf("%w in partition %q", ErrNoNodes, partition)
		}
		return nil, ErrNoNodes
	}
	return inv, nil
}

// fallbackGPUs 依次尝试节点详情中的 Gres 和 CfgTRES 字段.
func (r *Reader) fallbackGPUs(ctx context.Context, node string) (int, error) {
	detail, err := r.src.NodeDetail(ctx, node)
	if err != nil {
		return 0, err
	}
	var merr *multierror.Error
	for _, key := range []string{"Gres", "CfgTRES"} {
		m := detailFieldRE[key].FindStringSubmatch(detail)
		if m == nil {
			merr = multierror.Append(merr, fmt.Errorf("%s not present", key))
			continue
		}
		if n := slurm.GPUCount(m[1]); n > 0 {
			return n, nil
		}
		merr = multierror.Append(merr, fmt.Errorf("%s=%s has no gpu entry", key, m[1]))
	}
	return 0, merr.ErrorOrNil()
}

// RunningJobs 返回占用资源的作业: 默认只有 R, includeCompleting 时加上 CG.
func (r *Reader) RunningJobs(ctx context.Context, includeCompleting bool) ([]estimator.RunningJob, error) {
	records, err := r.src.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]estimator.RunningJob, 0, len(records))
	for _, rec := range records {
		state := slurm.ParseJobState(rec.State)
		if !state.HoldsResources(includeCompleting) {
			continue
		}
		jobs = append(jobs, estimator.RunningJob{
			ID:          rec.ID,
			State:       state,
			Elapsed:     slurmtime.ParseSlurm(rec.Elapsed),
			Limit:       slurmtime.ParseSlurm(rec.Limit),
			Hosts:       uniqueHosts(slurm.ExpandNodelist(rec.Nodelist)),
			GPUsPerNode: slurm.GPUCount(rec.Gres),
		})
	}
	r.logger.Debug("read running jobs", "source", r.src.Name(), "total", len(records), "holding", len(jobs))
	return jobs, nil
}

func uniqueHosts(hosts []string) []string {
	seen := make(map[string]struct{}, len(hosts))
	out := hosts[:0]
	for _, h := range hosts {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

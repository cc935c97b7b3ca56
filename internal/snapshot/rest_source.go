package snapshot

import (
	"context"
	"fmt"
	"strings"

	"slurm-eta/internal/pkg/client/slurmrest"
)

const restJobsPageSize = 500

// RestSource 通过定制版 slurmrestd 读取集群状态.
type RestSource struct {
	client *slurmrest.Client
	addr   string
}

func NewRestSource(client *slurmrest.Client, addr string) *RestSource {
	return &RestSource{client: client, addr: addr}
}

func (s *RestSource) Name() string { return "slurmrest" }

func (s *RestSource) Nodes(ctx context.Context) ([]NodeRecord, error) {
	nodes, err := s.client.GetNodes(ctx, s.addr, "", nil, nil)
	if err != nil {
		return nil, err
	}
	records := make([]NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		records = append(records, NodeRecord{Name: n.Name, Gres: n.GPU, Partition: strings.Join(n.Partition, ",")})
	}
	return records, nil
}

// NodeDetail 将单节点查询结果渲染成 scontrol 风格的键值文本.
func (s *RestSource) NodeDetail(ctx context.Context, node string) (string, error) {
	nodes, err := s.client.GetNodes(ctx, s.addr, node, nil, nil)
	if err != nil {
		return "", err
	}
	for _, n := range nodes {
		if n != nil && n.Name == node {
			return fmt.Sprintf("NodeName=%s Gres=%s CfgTRES=%s", n.Name, n.GPU, n.CfgTRES), nil
		}
	}
	return "", fmt.Errorf("node %s not found in slurmrestd response", node)
}

func (s *RestSource) Jobs(ctx context.Context) ([]JobRecord, error) {
	records := make([]JobRecord, 0)
	for page := 1; ; page++ {
		jobs, count, err := s.client.GetSchedulingJobs(ctx, s.addr, nil, page, restJobsPageSize)
		if err != nil {
			return nil, err
		}
		for _, j := range jobs {
			records = append(records, JobRecord{
				ID:       j.Jobid,
				State:    j.State,
				Elapsed:  j.Time,
				Limit:    j.TimeLimit,
				Nodelist: j.Nodelist,
				Gres:     j.TresPerNode,
			})
		}
		if len(jobs) == 0 || len(records) >= count {
			return records, nil
		}
	}
}

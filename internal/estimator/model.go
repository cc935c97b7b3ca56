// Package estimator 根据运行中作业的剩余时间估算整节点或单节点 GPU 何时可用.
// 这里的函数只依赖传入的快照, 不做任何 I/O.
package estimator

import (
	"fmt"
	"strings"

	"slurm-eta/internal/pkg/common/slurm"
	slurmtime "slurm-eta/internal/pkg/common/time"
)

// Partition 为节点所属分区. sinfo 以 "*" 后缀标记默认分区.
type Partition struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// ParsePartitions 解析 sinfo %P 字段, 例如 "gpu*,debug".
func ParsePartitions(s string) []Partition {
	parts := make([]Partition, 0)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts = append(parts, Partition{Name: strings.TrimSuffix(p, "*"), Default: strings.HasSuffix(p, "*")})
	}
	return parts
}

// Node 描述一个节点的静态容量.
type Node struct {
	Name       string      `json:"name"`
	GPUs       int         `json:"gpus"`
	Partitions []Partition `json:"partitions"`
}

// InPartition reports whether the node advertises partition name.
func (n Node) InPartition(name string) bool {
	name = strings.TrimSuffix(name, "*")
	for _, p := range n.Partitions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// NodeInventory 为按发现顺序排列的节点容量表. 零值可直接使用.
type NodeInventory struct {
	nodes []Node
	index map[string]int
}

func NewNodeInventory(nodes ...Node) *NodeInventory {
	inv := &NodeInventory{}
	for _, n := range nodes {
		inv.Add(n)
	}
	return inv
}

// Add 加入节点. 同名节点只保留首次出现的位置, 分区集合合并, GPU 数取较大值.
func (inv *NodeInventory) Add(n Node) {
	if inv.index == nil {
		inv.index = make(map[string]int)
	}
	i, ok := inv.index[n.Name]
	if !ok {
		n.Partitions = append([]Partition(nil), n.Partitions...)
		inv.index[n.Name] = len(inv.nodes)
		inv.nodes = append(inv.nodes, n)
		return
	}
	cur := &inv.nodes[i]
	if n.GPUs > cur.GPUs {
		cur.GPUs = n.GPUs
	}
	for _, p := range n.Partitions {
		if !cur.InPartition(p.Name) {
			cur.Partitions = append(cur.Partitions, p)
		}
	}
}

// Nodes returns the nodes in discovery order. The slice must not be modified.
func (inv *NodeInventory) Nodes() []Node {
	if inv == nil {
		return nil
	}
	return inv.nodes
}

func (inv *NodeInventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.nodes)
}

func (inv *NodeInventory) Get(name string) (Node, bool) {
	if inv == nil {
		return Node{}, false
	}
	i, ok := inv.index[name]
	if !ok {
		return Node{}, false
	}
	return inv.nodes[i], true
}

func (inv *NodeInventory) Has(name string) bool {
	_, ok := inv.Get(name)
	return ok
}

// MaxGPUs 返回单节点最大 GPU 总数.
func (inv *NodeInventory) MaxGPUs() int {
	m := 0
	for _, n := range inv.Nodes() {
		if n.GPUs > m {
			m = n.GPUs
		}
	}
	return m
}

// RunningJob 为一次查询时刻的运行中作业快照.
type RunningJob struct {
	ID      string             `json:"id"`
	State   slurm.JobState     `json:"state"`
	Elapsed slurmtime.Duration `json:"elapsed"`
	Limit   slurmtime.Duration `json:"limit"`
	Hosts   []string           `json:"hosts"`
	// GPUsPerNode 对作业占用的每个节点相同, Slurm 只报告每节点的 GPU 数.
	GPUsPerNode int `json:"gpus_per_node"`
}

// Remaining is max(limit - elapsed, 0); Unbounded when the limit is unlimited.
func (j RunningJob) Remaining() slurmtime.Duration {
	return j.Limit.Sub(j.Elapsed)
}

// Mode 为请求形态, 每次查询只处理一种.
type Mode int

const (
	ModeNodes Mode = iota + 1
	ModeGPUs
)

func (m Mode) String() string {
	switch m {
	case ModeNodes:
		return "nodes"
	case ModeGPUs:
		return "gpus"
	default:
		return "unknown"
	}
}

// Query 为一次可用性请求.
type Query struct {
	Mode  Mode `json:"-"`
	Count int  `json:"count"`
}

func NodesQuery(n int) Query { return Query{Mode: ModeNodes, Count: n} }

func GPUsQuery(g int) Query { return Query{Mode: ModeGPUs, Count: g} }

func (q Query) Validate() error {
	if q.Mode != ModeNodes && q.Mode != ModeGPUs {
		return fmt.Errorf("unknown query mode %d", q.Mode)
	}
	if q.Count < 1 {
		return fmt.Errorf("requested %s count must be at least 1, got %d", q.Mode, q.Count)
	}
	return nil
}

// Reason explains an infeasible result.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonInsufficientNodes   Reason = "insufficient_nodes"
	ReasonExceedsNodeCapacity Reason = "exceeds_node_capacity"
	ReasonUnsatisfiable       Reason = "unsatisfiable"
)

// Detail 为满足请求的节点及其可用时刻.
type Detail struct {
	Host string             `json:"host"`
	At   slurmtime.Duration `json:"at"`
	// GPUs 为 GPU 模式下该节点在 At 时刻空闲的 GPU 数, 节点模式下为 0.
	GPUs int `json:"gpus,omitempty"`
}

// ReleaseEvent 表示某节点在 At 时刻释放 GPUs 张 GPU.
type ReleaseEvent struct {
	At   slurmtime.Duration `json:"at"`
	GPUs int                `json:"gpus"`
}

// Result 为估算结果. Deadline 为 0 表示立即可用, Unbounded 表示在当前库存下不可满足.
type Result struct {
	Query    Query                     `json:"query"`
	Deadline slurmtime.Duration        `json:"deadline"`
	Reason   Reason                    `json:"reason,omitempty"`
	Details  []Detail                  `json:"details"`
	Events   map[string][]ReleaseEvent `json:"events,omitempty"`
	// MaxGPUsPerNode 仅在 GPU 模式下填充.
	MaxGPUsPerNode int `json:"max_gpus_per_node,omitempty"`
}

func (r Result) AvailableNow() bool { return r.Deadline.IsZero() }

func (r Result) Feasible() bool { return !r.Deadline.IsUnbounded() }

func infeasible(q Query, reason Reason) Result {
	return Result{Query: q, Deadline: slurmtime.Unbounded, Reason: reason, Details: []Detail{}}
}

// Package snapshot 读取集群的节点容量表和运行中作业, 供 estimator 使用.
package snapshot

import (
	"context"
	"errors"
)

// ErrNoNodes 表示没有发现任何节点 (集群为空或分区过滤后无匹配).
var ErrNoNodes = errors.New("no nodes found")

// NodeRecord 为 sinfo -N 的一行: 节点名, GRES, 分区.
type NodeRecord struct {
	Name      string
	Gres      string
	Partition string
}

// JobRecord 为 squeue 的一行, 字段保持原始文本.
type JobRecord struct {
	ID       string
	State    string
	Elapsed  string
	Limit    string
	Nodelist string
	Gres     string
}

// Source 为集群状态的只读来源.
type Source interface {
	// Nodes 返回逐节点的行, 同一节点可能因多个分区出现多次.
	Nodes(ctx context.Context) ([]NodeRecord, error)
	// NodeDetail 返回单个节点的详细文本, 包含 Gres=... 和/或 CfgTRES=... 键值.
	NodeDetail(ctx context.Context, node string) (string, error)
	// Jobs 返回当前所有作业, 状态过滤由 Reader 完成.
	Jobs(ctx context.Context) ([]JobRecord, error)
	// Name identifies the source in logs and metrics.
	Name() string
}

package model

type Node struct {
	Name      string   `json:"name"`      // 节点名称
	State     string   `json:"state"`     // 节点状态
	Partition []string `json:"partition"` // 分区名称, 默认分区带 "*" 后缀
	GPU       string   `json:"gpu"`       // GRES 字符串, 对应 sinfo %G
	CfgTRES   string   `json:"cfg_tres"`  // 对应 scontrol show node 的 CfgTRES
}

type Nodes []*Node

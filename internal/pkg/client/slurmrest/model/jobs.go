package model

type JobsInScheduling []JobInScheduling

// JobInScheduling 对应 squeue 中的一行, 时间字段保持 squeue 的文本格式.
type JobInScheduling struct {
	Jobid       string `json:"jobid"`         // 作业ID
	State       string `json:"state"`         // 状态, 紧凑码 (R, CG, PD)
	Time        string `json:"time"`          // 已运行时间, 对应 %M
	TimeLimit   string `json:"time_limit"`    // 时间上限, 对应 %l
	Nodelist    string `json:"nodelist"`      // 节点列表
	TresPerNode string `json:"tres_per_node"` // 每节点 GRES, 对应 %b
	Partition   string `json:"partition"`     // 分区
}

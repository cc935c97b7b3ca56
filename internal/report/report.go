// Package report 将估算结果渲染为文本或 JSON, 并给出进程退出码.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-openapi/strfmt"

	"slurm-eta/internal/estimator"
	slurmtime "slurm-eta/internal/pkg/common/time"
	"slurm-eta/internal/pkg/metrics"
)

// 退出码.
const (
	ExitAvailable   = 0 // 资源当前可用 (或给出了等待时间)
	ExitInfeasible  = 1 // 当前库存/作业下不可满足
	ExitQueryFailed = 2 // 上游查询命令失败
	ExitNoNodes     = 3 // 没有发现节点或分区无匹配
)

// DefaultMaxDetails 为文本输出中列出的节点数上限.
const DefaultMaxDetails = 10

type Outcome string

const (
	OutcomeAvailable  Outcome = "available"
	OutcomeWait       Outcome = "wait"
	OutcomeInfeasible Outcome = "infeasible"
)

func OutcomeOf(res estimator.Result) Outcome {
	switch {
	case !res.Feasible():
		return OutcomeInfeasible
	case res.AvailableNow():
		return OutcomeAvailable
	default:
		return OutcomeWait
	}
}

// ExitCode: 可用或需等待时为 0, 不可满足时为 1.
func ExitCode(res estimator.Result) int {
	if OutcomeOf(res) == OutcomeInfeasible {
		return ExitInfeasible
	}
	return ExitAvailable
}

// Record 将结果计入 estimates_total 指标.
func Record(res estimator.Result) {
	metrics.RecordEstimate(res.Query.Mode.String(), string(OutcomeOf(res)))
}

// Forecast 为面向看板/API 的结果文档.
type Forecast struct {
	Mode           string             `json:"mode"`
	Count          int                `json:"count"`
	Outcome        Outcome            `json:"outcome"`
	WaitSeconds    slurmtime.Duration `json:"wait_seconds" swaggertype:"integer"`
	Wait           string             `json:"wait"`
	ETA            *strfmt.DateTime   `json:"eta,omitempty" swaggertype:"string"`
	Reason         estimator.Reason   `json:"reason,omitempty"`
	MaxGPUsPerNode int                `json:"max_gpus_per_node,omitempty"`
	Details        []estimator.Detail `json:"details"`
}

// NewForecast 以 now 为基准计算 ETA. maxDetails <= 0 表示不截断.
func NewForecast(res estimator.Result, now time.Time, maxDetails int) Forecast {
	f := Forecast{
		Mode:           res.Query.Mode.String(),
		Count:          res.Query.Count,
		Outcome:        OutcomeOf(res),
		WaitSeconds:    res.Deadline,
		Wait:           slurmtime.Format(res.Deadline),
		Reason:         res.Reason,
		MaxGPUsPerNode: res.MaxGPUsPerNode,
		Details:        SortedDetails(res, maxDetails),
	}
	if res.Feasible() {
		eta := strfmt.DateTime(now.Add(time.Duration(res.Deadline.Seconds()) * time.Second).UTC())
		f.ETA = &eta
	}
	return f
}

// SortedDetails 按可用时刻、节点名排序, 并截断到 limit 条.
func SortedDetails(res estimator.Result, limit int) []estimator.Detail {
	details := append([]estimator.Detail{}, res.Details...)
	sort.SliceStable(details, func(i, j int) bool {
		if c := details[i].At.Compare(details[j].At); c != 0 {
			return c < 0
		}
		return details[i].Host < details[j].Host
	})
	if limit > 0 && len(details) > limit {
		details = details[:limit]
	}
	return details
}

// JSON 输出 Forecast 文档并返回退出码.
func JSON(w io.Writer, res estimator.Result, now time.Time, maxDetails int) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewForecast(res, now, maxDetails)); err != nil {
		return ExitInfeasible, err
	}
	return ExitCode(res), nil
}

// Text 输出人类可读的结论并返回退出码.
func Text(w io.Writer, res estimator.Result, maxDetails int) int {
	n := res.Query.Count
	switch res.Query.Mode {
	case estimator.ModeNodes:
		switch OutcomeOf(res) {
		case OutcomeAvailable:
			fmt.Fprintf(w, "✅ %d node(s) are available now.\n", n)
		case OutcomeInfeasible:
			if res.Reason == estimator.ReasonUnsatisfiable {
				fmt.Fprintln(w, "❌ Not enough nodes will be released to satisfy the request (remaining nodes run jobs without a time limit).")
			} else {
				fmt.Fprintln(w, "❌ Not enough nodes in this partition to satisfy the request.")
			}
		default:
			fmt.Fprintf(w, "⏳ Estimated wait for %d free node(s): %s\n", n, slurmtime.Format(res.Deadline))
			fmt.Fprintln(w, "Details (first nodes to free):")
			for _, d := range SortedDetails(res, maxDetails) {
				fmt.Fprintf(w, "  - %s: %s\n", d.Host, slurmtime.Format(d.At))
			}
		}
	case estimator.ModeGPUs:
		switch OutcomeOf(res) {
		case OutcomeAvailable:
			host := ""
			if len(res.Details) > 0 {
				host = res.Details[0].Host
			}
			fmt.Fprintf(w, "✅ %d GPU(s) are available now on %s.\n", n, host)
		case OutcomeInfeasible:
			if res.Reason == estimator.ReasonExceedsNodeCapacity {
				fmt.Fprintf(w, "❌ Request exceeds maximum GPUs on any single node (requested %d, max per node %d).\n", n, res.MaxGPUsPerNode)
			} else {
				fmt.Fprintln(w, "❌ Not enough GPUs will be free on any single node to satisfy the request (given current jobs/time limits).")
			}
		default:
			fmt.Fprintf(w, "⏳ Estimated wait for %d free GPU(s) on a single node: %s\n", n, slurmtime.Format(res.Deadline))
			if details := SortedDetails(res, maxDetails); len(details) > 0 {
				fmt.Fprintln(w, "Nodes that may meet the target by the ETA:")
				for _, d := range details {
					fmt.Fprintf(w, "  - %s (%d GPU(s) free)\n", d.Host, d.GPUs)
				}
			}
		}
	}
	return ExitCode(res)
}

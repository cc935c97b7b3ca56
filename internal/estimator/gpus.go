package estimator

import (
	"sort"

	slurmtime "slurm-eta/internal/pkg/common/time"
)

// EarliestTimeForGPUs 估算单个节点上同时有 g 张空闲 GPU 的最早时刻, 不跨节点累加.
//
// 请求超过任一节点的 GPU 总数时直接判定不可满足, 与作业状态无关.
// 否则先检查当前空闲, 再对每个节点按时间顺序回放作业释放事件, 取最早达到目标的节点.
// 时间上限为 UNLIMITED 的作业不会在模型内释放 GPU.
func EarliestTimeForGPUs(g int, jobs []RunningJob, inv *NodeInventory) Result {
	q := GPUsQuery(g)
	maxPerNode := inv.MaxGPUs()
	if g > maxPerNode {
		r := infeasible(q, ReasonExceedsNodeCapacity)
		r.MaxGPUsPerNode = maxPerNode
		return r
	}

	used := make(map[string]int, inv.Len())
	events := make(map[string][]ReleaseEvent, inv.Len())
	for _, j := range jobs {
		remaining := j.Remaining()
		for _, h := range j.Hosts {
			if !inv.Has(h) {
				continue
			}
			used[h] += j.GPUsPerNode
			if j.GPUsPerNode > 0 {
				events[h] = append(events[h], ReleaseEvent{At: remaining, GPUs: j.GPUsPerNode})
			}
		}
	}
	for h := range events {
		sortEvents(events[h])
	}

	for _, node := range inv.Nodes() {
		if free := freeNow(node, used); free >= g {
			return Result{
				Query:          q,
				Deadline:       slurmtime.Finite(0),
				Details:        []Detail{{Host: node.Name, At: slurmtime.Finite(0), GPUs: free}},
				Events:         map[string][]ReleaseEvent{node.Name: {{At: slurmtime.Finite(0), GPUs: free}}},
				MaxGPUsPerNode: maxPerNode,
			}
		}
	}

	best := slurmtime.Unbounded
	candidates := make([]Detail, 0)
	for _, node := range inv.Nodes() {
		at, gpus, ok := reachTarget(freeNow(node, used), g, events[node.Name])
		if !ok {
			continue
		}
		switch at.Compare(best) {
		case -1:
			best = at
			candidates = append(candidates[:0], Detail{Host: node.Name, At: at, GPUs: gpus})
		case 0:
			candidates = append(candidates, Detail{Host: node.Name, At: at, GPUs: gpus})
		}
	}

	if best.IsUnbounded() {
		r := infeasible(q, ReasonUnsatisfiable)
		r.Events = events
		r.MaxGPUsPerNode = maxPerNode
		return r
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Host < candidates[j].Host })
	return Result{Query: q, Deadline: best, Details: candidates, Events: events, MaxGPUsPerNode: maxPerNode}
}

func freeNow(node Node, used map[string]int) int {
	return max(node.GPUs-used[node.Name], 0)
}

// reachTarget walks time-ordered release events and returns the first time at
// which free+released reaches target, together with the free GPU count then.
func reachTarget(free, target int, events []ReleaseEvent) (slurmtime.Duration, int, bool) {
	released := 0
	for _, ev := range events {
		if ev.At.IsUnbounded() {
			return slurmtime.Unbounded, 0, false
		}
		released += ev.GPUs
		if free+released >= target {
			return ev.At, free + released, true
		}
	}
	return slurmtime.Unbounded, 0, false
}

func sortEvents(evs []ReleaseEvent) {
	sort.Slice(evs, func(i, j int) bool {
		if c := evs[i].At.Compare(evs[j].At); c != 0 {
			return c < 0
		}
		return evs[i].GPUs < evs[j].GPUs
	})
}

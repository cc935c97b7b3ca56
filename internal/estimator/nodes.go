package estimator

import (
	"sort"

	slurmtime "slurm-eta/internal/pkg/common/time"
)

// EarliestTimeForNodes 估算 n 个整节点同时空闲的最早时刻.
//
// 无作业的节点立即可用. 有作业的节点在其上所有作业结束时释放, 即剩余时间的最大值.
// 按释放时间升序选取缺少的 k 个节点, 截止时间为其中最晚释放的那个.
func EarliestTimeForNodes(n int, jobs []RunningJob, inv *NodeInventory) Result {
	q := NodesQuery(n)
	occupancy := hostReleaseTimes(jobs, inv)

	free := make([]string, 0)
	for _, node := range inv.Nodes() {
		if _, busy := occupancy[node.Name]; !busy {
			free = append(free, node.Name)
		}
	}
	if len(free) >= n {
		details := make([]Detail, 0, max(n, 0))
		for _, h := range free[:max(n, 0)] {
			details = append(details, Detail{Host: h, At: slurmtime.Finite(0)})
		}
		return Result{Query: q, Deadline: slurmtime.Finite(0), Details: details}
	}

	occupied := make([]Detail, 0, len(occupancy))
	for _, node := range inv.Nodes() {
		if at, busy := occupancy[node.Name]; busy {
			occupied = append(occupied, Detail{Host: node.Name, At: at})
		}
	}
	sort.SliceStable(occupied, func(i, j int) bool { return occupied[i].At.Less(occupied[j].At) })

	k := n - len(free)
	if k > len(occupied) {
		return infeasible(q, ReasonInsufficientNodes)
	}
	deadline := occupied[k-1].At
	if deadline.IsUnbounded() {
		return infeasible(q, ReasonUnsatisfiable)
	}

	details := make([]Detail, 0, n)
	for _, h := range free {
		details = append(details, Detail{Host: h, At: slurmtime.Finite(0)})
	}
	details = append(details, occupied[:k]...)
	return Result{Query: q, Deadline: deadline, Details: details}
}

// hostReleaseTimes maps every inventory host that carries at least one job to
// the time its last job ends.
func hostReleaseTimes(jobs []RunningJob, inv *NodeInventory) map[string]slurmtime.Duration {
	release := make(map[string]slurmtime.Duration)
	for _, j := range jobs {
		remaining := j.Remaining()
		for _, h := range j.Hosts {
			if !inv.Has(h) {
				continue
			}
			if cur, ok := release[h]; ok {
				release[h] = slurmtime.Max(cur, remaining)
			} else {
				release[h] = remaining
			}
		}
	}
	return release
}

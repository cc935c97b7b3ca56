package estimator

// Estimate dispatches q to the matching algorithm.
func Estimate(q Query, jobs []RunningJob, inv *NodeInventory) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	if q.Mode == ModeNodes {
		return EarliestTimeForNodes(q.Count, jobs, inv), nil
	}
	return EarliestTimeForGPUs(q.Count, jobs, inv), nil
}

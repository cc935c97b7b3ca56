package slurm

import "strings"

// JobState 为 squeue %t 输出的紧凑状态码.
type JobState string

const (
	JobPending     JobState = "PD" // queued waiting for initiation
	JobRunning     JobState = "R"  // allocated resources and executing
	JobSuspended   JobState = "S"  // allocated resources, execution suspended
	JobCompleting  JobState = "CG" // waiting for epilog completion
	JobCompleted   JobState = "CD" // completed execution successfully
	JobConfiguring JobState = "CF" // allocated nodes booting
	JobCancelled   JobState = "CA" // cancelled by user
	JobFailed      JobState = "F"  // completed execution unsuccessfully
	JobTimeout     JobState = "TO" // terminated on reaching time limit
	JobPreempted   JobState = "PR" // terminated due to preemption
	JobNodeFail    JobState = "NF" // terminated on node failure
	JobBootFail    JobState = "BF" // terminated due to node boot failure
	JobDeadline    JobState = "DL" // terminated on deadline
	JobOOM         JobState = "OOM"
	JobRequeued    JobState = "RQ"
	JobResizing    JobState = "RS"
	JobRevoked     JobState = "RV"
	JobSignaling   JobState = "SI"
	JobSpecialExit JobState = "SE"
	JobStageOut    JobState = "SO"
	JobStopped     JobState = "ST"
)

var jobStateNames = map[JobState]string{
	JobPending:     "PENDING",
	JobRunning:     "RUNNING",
	JobSuspended:   "SUSPENDED",
	JobCompleting:  "COMPLETING",
	JobCompleted:   "COMPLETED",
	JobConfiguring: "CONFIGURING",
	JobCancelled:   "CANCELLED",
	JobFailed:      "FAILED",
	JobTimeout:     "TIMEOUT",
	JobPreempted:   "PREEMPTED",
	JobNodeFail:    "NODE_FAIL",
	JobBootFail:    "BOOT_FAIL",
	JobDeadline:    "DEADLINE",
	JobOOM:         "OUT_OF_MEMORY",
	JobRequeued:    "REQUEUED",
	JobResizing:    "RESIZING",
	JobRevoked:     "REVOKED",
	JobSignaling:   "SIGNALING",
	JobSpecialExit: "SPECIAL_EXIT",
	JobStageOut:    "STAGE_OUT",
	JobStopped:     "STOPPED",
}

// ParseJobState 接受紧凑码 (R, CG) 或完整名称 (RUNNING, COMPLETING), 不识别的值原样保留.
func ParseJobState(s string) JobState {
	s = strings.ToUpper(strings.TrimSpace(s))
	if _, ok := jobStateNames[JobState(s)]; ok {
		return JobState(s)
	}
	for code, name := range jobStateNames {
		if name == s {
			return code
		}
	}
	return JobState(s)
}

// String 返回状态的完整名称, 未知状态返回 "?".
func (s JobState) String() string {
	if name, ok := jobStateNames[s]; ok {
		return name
	}
	return "?"
}

// HoldsResources reports whether a job in this state is counted as occupying
// its nodes. Completing jobs only count when includeCompleting is set.
func (s JobState) HoldsResources(includeCompleting bool) bool {
	switch s {
	case JobRunning:
		return true
	case JobCompleting:
		return includeCompleting
	default:
		return false
	}
}

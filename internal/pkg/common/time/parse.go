package time

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// squeue %M / %l 的输出形如 M:SS, H:MM:SS, HH:MM:SS, D-HH:MM:SS.
var slurmTimeRE = regexp.MustCompile(`^(?:(\d+)-)?(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ParseSlurm 将 squeue 的时间字符串转换为 Duration, 从不返回错误.
//   - "UNLIMITED", "INFINITE", "N/A" (不区分大小写) -> Unbounded
//   - 空串或无法解析 -> 0
//   - 只有一个冒号且没有天数前缀时按 M:SS 解释 (squeue 对一小时以内作业的输出格式)
//   - 纯数字按秒解释
func ParseSlurm(s string) Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}
	}
	switch strings.ToUpper(s) {
	case "UNLIMITED", "INFINITE", "N/A":
		return Unbounded
	}

	m := slurmTimeRE.FindStringSubmatch(s)
	if m == nil {
		n, err := strconv.ParseInt(s, 10, 64)
		switch {
		case err == nil:
			return Finite(n)
		case errors.Is(err, strconv.ErrRange):
			return Unbounded
		}
		return Duration{}
	}

	days := atoi(m[1])
	first := atoi(m[2])
	second := atoi(m[3])
	third := atoi(m[4])

	if strings.Count(s, ":") == 1 && m[1] == "" {
		return scale(first, 60).Add(Finite(second))
	}
	return scale(days, 86400).Add(scale(first, 3600)).Add(scale(second, 60)).Add(Finite(third))
}

// scale 返回 n*unit 秒, 溢出时为 Unbounded.
func scale(n, unit int64) Duration {
	if n > math.MaxInt64/unit {
		return Unbounded
	}
	return Finite(n * unit)
}

// atoi 解析十进制数字串, 超出 int64 范围时取 math.MaxInt64.
func atoi(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64
	}
	if err != nil {
		return 0
	}
	return n
}

// Format 输出紧凑形式, 例如 "1d 2h 3m 4s". 较大单位出现后其后各单位都会输出, 秒总是输出.
func Format(d Duration) string {
	if d.unbounded {
		return "unlimited"
	}
	if d.seconds <= 0 {
		return "0s"
	}
	days, h, m, s := split(d.seconds)
	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if h > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || h > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}

// FormatSlurm renders d the way squeue prints elapsed times, so that
// ParseSlurm(FormatSlurm(d)) == d for every finite d.
func FormatSlurm(d Duration) string {
	if d.unbounded {
		return "UNLIMITED"
	}
	days, h, m, s := split(d.seconds)
	switch {
	case days > 0:
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, h, m, s)
	case h > 0:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	default:
		return fmt.Sprintf("%d:%02d", m, s)
	}
}

func split(total int64) (days, h, m, s int64) {
	mins, s := total/60, total%60
	hrs, m := mins/60, mins%60
	days, h = hrs/24, hrs%24
	return days, h, m, s
}

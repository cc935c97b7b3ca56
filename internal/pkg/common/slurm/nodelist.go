package slurm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hostRangeRE = regexp.MustCompile(`^(.*)\[([^\]]+)\](.*)$`)
	subRangeRE  = regexp.MustCompile(`^(\d+)(?:-(\d+))?$`)
)

// ExpandNodelist 展开 Slurm 紧凑节点列表, 例如 node[01-03,05] -> node01 node02 node03 node05.
//   - 空串或以 "(" 开头的占位 (待调度作业的原因, 如 "(Resources)") 返回空列表
//   - 顶层逗号分隔多个组: a[1-2],b07
//   - 数字补零宽度取区间起止文本宽度的较大者
//   - 不符合区间语法的片段原样拼接前缀
func ExpandNodelist(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "(") {
		return []string{}
	}
	// 容忍多余的右括号, 例如 "gpu[01-03,05])".
	for strings.HasSuffix(s, ")") && strings.Count(s, ")") > strings.Count(s, "(") {
		s = strings.TrimSuffix(s, ")")
	}

	hosts := make([]string, 0)
	for _, group := range splitTopLevel(s, '[', ']') {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		hosts = append(hosts, expandGroup(group)...)
	}
	return hosts
}

func expandGroup(group string) []string {
	m := hostRangeRE.FindStringSubmatch(group)
	if m == nil {
		return []string{group}
	}
	prefix, body, suffix := m[1], m[2], m[3]

	out := make([]string, 0)
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		r := subRangeRE.FindStringSubmatch(part)
		if r == nil {
			out = append(out, prefix+part+suffix)
			continue
		}
		start, err := strconv.Atoi(r[1])
		if err != nil {
			out = append(out, prefix+part+suffix)
			continue
		}
		endText := r[2]
		if endText == "" {
			endText = r[1]
		}
		end, err := strconv.Atoi(endText)
		if err != nil {
			out = append(out, prefix+part+suffix)
			continue
		}
		width := max(len(r[1]), len(endText))
		for i := start; i <= end; i++ {
			out = append(out, fmt.Sprintf("%s%0*d%s", prefix, width, i, suffix))
		}
	}
	return out
}

// splitTopLevel splits s on commas that are not enclosed by open/close.
func splitTopLevel(s string, open, close byte) []string {
	parts := make([]string, 0, 1)
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

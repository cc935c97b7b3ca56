package slurm

import (
	"strconv"
	"strings"
)

// GPUCount 从 GRES/TRES 字符串中统计 GPU 总数, 多个 gpu 条目求和. 接受的形式:
//
//	gpu:8
//	gpu:h200:8
//	gpu:h200:8(S:0-1)
//	gres:gpu:h200:8
//	gres/gpu:h200:8       (squeue %b)
//	gres/gpu=8            (CfgTRES)
//	gres/gpu:h100=8       (CfgTRES)
//
// 无法解析的条目计为 0. CfgTRES 对带型号的 GPU 同时列出总数 gres/gpu=N 和
// 分型号的 gres/gpu:<type>=N, 出现不带型号的 "=" 条目时只取它, 忽略分型号条目.
func GPUCount(gres string) int {
	total, tresTotal := 0, 0
	hasTresTotal := false
	for _, tok := range splitTopLevel(gres, '(', ')') {
		n, untypedTRES := gpuTokenCount(tok)
		if untypedTRES {
			tresTotal += n
			hasTresTotal = true
			continue
		}
		total += n
	}
	if hasTresTotal {
		return tresTotal
	}
	return total
}

// gpuTokenCount 返回单个条目的 GPU 数, untypedTRES 表示条目为 gpu=N 形式.
func gpuTokenCount(tok string) (n int, untypedTRES bool) {
	tok = strings.TrimSpace(tok)
	if i := strings.IndexByte(tok, '('); i >= 0 {
		tok = tok[:i]
	}
	tok = strings.TrimPrefix(tok, "gres/")
	tok = strings.TrimPrefix(tok, "gres:")
	if tok == "" {
		return 0, false
	}

	count := ""
	hasEq := false
	if i := strings.LastIndexByte(tok, '='); i >= 0 {
		count = tok[i+1:]
		tok = tok[:i]
		hasEq = true
	}
	fields := strings.Split(tok, ":")
	if fields[0] != "gpu" {
		return 0, false
	}
	if !hasEq {
		if len(fields) < 2 {
			return 0, false
		}
		count = fields[len(fields)-1]
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, hasEq && len(fields) == 1
}

package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"strings"
)

// SlurmCommands 为 exec.Client 提供的查询命令.
type SlurmCommands interface {
	Squeue(ctx context.Context) ([]byte, error)
	Sinfo(ctx context.Context) ([]byte, error)
	ScontrolShowNode(ctx context.Context, node string) ([]byte, error)
}

// CommandSource 通过本机 Slurm 命令读取集群状态.
type CommandSource struct {
	cmds   SlurmCommands
	logger *slog.Logger
}

func NewCommandSource(cmds SlurmCommands, logger *slog.Logger) *CommandSource {
	return &CommandSource{cmds: cmds, logger: logger}
}

func (s *CommandSource) Name() string { return "exec" }

func (s *CommandSource) Nodes(ctx context.Context) ([]NodeRecord, error) {
	out, err := s.cmds.Sinfo(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]NodeRecord, 0)
	for _, fields := range s.splitLines(out, 3, "sinfo") {
		records = append(records, NodeRecord{Name: fields[0], Gres: fields[1], Partition: fields[2]})
	}
	return records, nil
}

func (s *CommandSource) NodeDetail(ctx context.Context, node string) (string, error) {
	out, err := s.cmds.ScontrolShowNode(ctx, node)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *CommandSource) Jobs(ctx context.Context) ([]JobRecord, error) {
	out, err := s.cmds.Squeue(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]JobRecord, 0)
	for _, f := range s.splitLines(out, 6, "squeue") {
		records = append(records, JobRecord{ID: f[0], State: f[1], Elapsed: f[2], Limit: f[3], Nodelist: f[4], Gres: f[5]})
	}
	return records, nil
}

// splitLines 按 '|' 切分每行, 字段数不符的行被跳过.
func (s *CommandSource) splitLines(content []byte, n int, what string) [][]string {
	rows := make([][]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) != n {
			s.logger.Debug("skipping malformed line", "source", what, "line", line, "fields", len(fields))
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, fields)
	}
	return rows
}

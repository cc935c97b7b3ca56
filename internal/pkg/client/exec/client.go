package exec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"slurm-eta/internal/pkg/metrics"
)

type ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// squeue / sinfo 输出格式, 以 '|' 分隔, 无表头.
const (
	SqueueFormat = "%i|%t|%M|%l|%N|%b"
	SinfoFormat  = "%N|%G|%P"
)

// QueryError 表示 Slurm 查询命令执行失败 (非零退出或无法启动).
type QueryError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client 通过本机的 squeue, sinfo, scontrol 查询集群状态.
type Client struct {
	execCommand ExecCommandFunc
	binDir      string
	logger      *slog.Logger
}

func (c *Client) Set(exec ExecCommandFunc, logger *slog.Logger) *Client {
	c.execCommand = exec
	c.logger = logger
	return c
}

// SetBinDir 指定 Slurm 命令所在目录, 为空时从 PATH 查找.
func (c *Client) SetBinDir(dir string) *Client {
	c.binDir = dir
	return c
}

// New 返回使用 exec.CommandContext 的客户端.
func New(logger *slog.Logger) *Client {
	return (&Client{}).Set(exec.CommandContext, logger)
}

// Squeue 返回所有作业的 "id|state|elapsed|limit|nodelist|gres" 行.
func (c *Client) Squeue(ctx context.Context) ([]byte, error) {
	return c.run(ctx, "squeue", "-h", "-o", SqueueFormat)
}

// Sinfo 返回逐节点的 "name|gres|partition" 行. 节点属于多个分区时会出现多行.
func (c *Client) Sinfo(ctx context.Context) ([]byte, error) {
	return c.run(ctx, "sinfo", "-h", "-N", "-o", SinfoFormat)
}

// ScontrolShowNode 返回 scontrol show node 的原始文本.
func (c *Client) ScontrolShowNode(ctx context.Context, node string) ([]byte, error) {
	return c.run(ctx, "scontrol", "show", "node", node)
}

func (c *Client) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	bin := name
	if c.binDir != "" {
		bin = filepath.Join(c.binDir, name)
	}
	cmd := c.execCommand(ctx, bin, args...)
	start := time.Now()
	output, err := cmd.Output()
	metrics.ObserveQuery(name, time.Since(start), err)
	c.logger.Debug("slurm query", "cmd", cmd.String(), "bytes", len(output), "took", time.Since(start))
	if err != nil {
		qe := &QueryError{Command: strings.Join(append([]string{name}, args...), " "), Err: err}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			qe.Stderr = strings.TrimSpace(string(ee.Stderr))
		}
		// 同批查询中其他命令失败时 ctx 会被取消, 这类失败不是根因.
		if ctx.Err() != nil {
			c.logger.Debug("slurm query cancelled", "cmd", cmd.String(), "err", err)
			return nil, qe
		}
		c.logger.Error("unable to execute command", "cmd", cmd.String(), "stderr", qe.Stderr, "err", err)
		return nil, qe
	}
	return output, nil
}

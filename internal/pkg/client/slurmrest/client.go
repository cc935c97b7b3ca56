package slurmrest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"slurm-eta/internal/pkg/client/slurmrest/model"
	"slurm-eta/internal/pkg/metrics"
)

// Doer 抽象 http.Client 的 Do 方法，便于在测试中用 mock 实现替换。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client 简单的 slurmrestd(定制版) HTTP 客户端封装。
// 仅保留最小必要字段，侧重可测试性与可注入性。
type Client struct {
	client  Doer
	timeout time.Duration
	logger  *slog.Logger
}

func New(client Doer, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// GetNodes 获取节点信息
// 支持过滤参数：重复传递 partition/state 以及单个 node
//   - partition: ?partition=p1&partition=p2
//   - state: ?state=idle&state=alloc
//   - node: ?node=cn001
func (sc *Client) GetNodes(ctx context.Context, addr, node string, partitions []string, state []string) (model.Nodes, error) {
	u, _ := url.Parse(fmt.Sprintf("http://%s/api/v1/slurm/nodes", addr))
	q := u.Query()
	if node != "" {
		q.Set("node", node)
	}
	for _, p := range partitions {
		if p != "" {
			q.Add("partition", p)
		}
	}
	for _, s := range state {
		if s != "" {
			q.Add("state", s)
		}
	}
	u.RawQuery = q.Encode()

	data := struct {
		Results model.Nodes `json:"results"`
		Detail  string      `json:"detail"`
	}{}
	if err := sc.get(ctx, "nodes", u, &data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

// GetSchedulingJobs 分页获取调度中的作业, states 为空时返回全部状态.
// 返回值 count 为过滤后的作业总数.
func (sc *Client) GetSchedulingJobs(ctx context.Context, addr string, states []string, page, pageSize int) (model.JobsInScheduling, int, error) {
	u, _ := url.Parse(fmt.Sprintf("http://%s/api/v1/slurm/scheduling/jobs", addr))
	q := u.Query()
	for _, s := range states {
		if s != "" {
			q.Add("state", s)
		}
	}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	u.RawQuery = q.Encode()

	data := struct {
		Count   int                    `json:"count"`
		Results model.JobsInScheduling `json:"results"`
		Detail  string                 `json:"detail"`
	}{}
	if err := sc.get(ctx, "jobs", u, &data); err != nil {
		return nil, 0, err
	}
	return data.Results, data.Count, nil
}

func (sc *Client) get(ctx context.Context, query string, u *url.URL, out any) (err error) {
	if sc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { metrics.ObserveQuery("slurmrestd_"+query, time.Since(start), err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		sc.logger.Error("unable to create request for slurmrestd", "err", err.Error(), "url", u.String())
		return fmt.Errorf("unable to create request for slurmrestd: %w", err)
	}

	resp, err := sc.client.Do(req)
	if err != nil {
		sc.logger.Error("unable to do request for slurmrestd", "err", err.Error(), "url", u.String())
		return fmt.Errorf("unable to do request for slurmrestd: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		sc.logger.Error("unexcepted status code", "code", resp.StatusCode, "url", u.String())
		return fmt.Errorf("unexcepted status code from slurmrestd: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		sc.logger.Error("unable to decode slurmrestd response", "err", err.Error(), "url", u.String())
		return fmt.Errorf("unable to decode slurmrestd response: %w", err)
	}
	return nil
}

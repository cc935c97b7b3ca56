package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	oaerrors "github.com/go-openapi/errors"

	"slurm-eta/internal/estimator"
	"slurm-eta/internal/pkg/common/paging"
	"slurm-eta/internal/pkg/options"
	"slurm-eta/internal/pkg/response"
	"slurm-eta/internal/report"
	"slurm-eta/internal/snapshot"
	apierrors "slurm-eta/pkg/errors"
)

// Filter 为两个接口共用的查询参数.
type Filter struct {
	Partition  string   `form:"partition"`
	Exclude    []string `form:"exclude"`
	Completing bool     `form:"completing"`
}

// HandlerGetNodes 估算 N 个节点同时空闲的最早时间.
// @Summary 估算整节点可用时间
// @Description 根据当前运行作业的时间上限, 估算 count 个节点同时空闲的最早时间. 空闲节点立即可用, 其余节点按释放时间排序.
// @Tags 资源可用性
// @Produce json
// @Param cluster path string true "集群名称" example("test")
// @Param count query int true "需要的节点数" minimum(1)
// @Param partition query string false "分区名称"
// @Param exclude query []string false "排除的节点, 支持 node[01-03] 写法" collectionFormat(multi)
// @Param completing query bool false "CG 状态的作业是否视为占用资源" default(false)
// @Param paging query bool false "是否对 details 分页" default(false)
// @Param page query int false "页号(从1开始)" default(1) minimum(1)
// @Param page_size query int false "每页数量" default(20) minimum(1) maximum(100)
// @Success 200 {object} response.Response{results=report.Forecast}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /{cluster}/availability/nodes [get]
func (rt *Router) HandlerGetNodes(c *gin.Context) {
	rt.handle(c, estimator.ModeNodes)
}

// HandlerGetGPUs 估算单个节点上 G 张 GPU 空闲的最早时间.
// @Summary 估算单节点 GPU 可用时间
// @Description 估算某一个节点上至少 count 张 GPU 同时空闲的最早时间, 不跨节点累加.
// @Tags 资源可用性
// @Produce json
// @Param cluster path string true "集群名称" example("test")
// @Param count query int true "需要的 GPU 数" minimum(1)
// @Param partition query string false "分区名称"
// @Param exclude query []string false "排除的节点, 支持 node[01-03] 写法" collectionFormat(multi)
// @Param completing query bool false "CG 状态的作业是否视为占用资源" default(false)
// @Param paging query bool false "是否对 details 分页" default(false)
// @Param page query int false "页号(从1开始)" default(1) minimum(1)
// @Param page_size query int false "每页数量" default(20) minimum(1) maximum(100)
// @Success 200 {object} response.Response{results=report.Forecast}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /{cluster}/availability/gpus [get]
func (rt *Router) HandlerGetGPUs(c *gin.Context) {
	rt.handle(c, estimator.ModeGPUs)
}

func (rt *Router) handle(c *gin.Context, mode estimator.Mode) {
	cluster := c.Param("cluster")
	count, err := parseCount(c.Query("count"))
	if err != nil {
		apierrors.ServeError(c.Writer, c.Request, err)
		return
	}

	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		apierrors.ServeError(c.Writer, c.Request, oaerrors.New(http.StatusBadRequest, "invalid query: %v", err))
		return
	}
	var pq paging.Query
	_ = c.ShouldBindQuery(&pq)
	pq.SetDefaults(1, 20, 100)

	snap, err := rt.snapshots.Read(c.Request.Context(), cluster, snapshot.Options{
		Partition:         f.Partition,
		Exclude:           f.Exclude,
		IncludeCompleting: f.Completing,
	})
	if err != nil {
		rt.logger.Error("unable to read cluster snapshot", slog.String("cluster", cluster), slog.Any("err", err))
		apierrors.ServeError(c.Writer, c.Request, snapshotError(cluster, err))
		return
	}

	res, err := estimator.Estimate(estimator.Query{Mode: mode, Count: count}, snap.Jobs, snap.Inventory)
	if err != nil {
		apierrors.ServeError(c.Writer, c.Request, oaerrors.New(http.StatusBadRequest, "%v", err))
		return
	}
	report.Record(res)

	forecast := report.NewForecast(res, rt.now(), 0)
	total := len(forecast.Details)
	forecast.Details = paging.Slice(forecast.Details, pq)

	var prevURL, nextURL url.URL
	if pq.Paging {
		prevURL, nextURL = response.BuildPageLinks(c.Request.URL, pq.Page, pq.PageSize, total)
	}
	c.JSON(http.StatusOK, response.Response{Count: total, Previous: prevURL, Next: nextURL, Results: forecast})
}

func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, oaerrors.Required("count", "query", nil)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, oaerrors.InvalidType("count", "query", "integer", raw)
	}
	if n < 1 {
		return 0, oaerrors.ExceedsMinimumInt("count", "query", 1, false, n)
	}
	return n, nil
}

// snapshotError 将快照读取错误映射为 HTTP 错误.
func snapshotError(cluster string, err error) error {
	switch {
	case errors.Is(err, options.ErrUnknownCluster):
		return oaerrors.NotFound("%s", err.Error())
	case errors.Is(err, snapshot.ErrNoNodes):
		return oaerrors.NotFound("%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return oaerrors.New(http.StatusGatewayTimeout, "querying cluster %s timed out", cluster)
	default:
		return oaerrors.New(http.StatusBadGateway, "unable to query cluster %s: %v", cluster, err)
	}
}

package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"slurm-eta/internal/pkg/options"
)

// Resolver 根据集群名称查询其读取方式 (配置文件或数据库).
type Resolver interface {
	Resolve(ctx context.Context, cluster string) (options.Cluster, error)
}

// Factory 根据集群配置创建 Source.
type Factory func(c options.Cluster) (Source, error)

// Pool 按集群缓存 Source, 并合并同一时刻相同参数的快照读取. 快照本身不缓存.
type Pool struct {
	resolver Resolver
	factory  Factory
	readers  func(Source) *Reader

	mu    sync.RWMutex
	g     singleflight.Group
	reads singleflight.Group
	pool  map[string]Source
}

func NewPool(resolver Resolver, factory Factory, newReader func(Source) *Reader) *Pool {
	return &Pool{
		resolver: resolver,
		factory:  factory,
		readers:  newReader,
		pool:     make(map[string]Source),
	}
}

// FetchOrCreate 获取集群对应的 Source, 不存在则创建.
// 该函数为并发安全：
// - 使用读写锁保护对内部 map 的访问；
// - 使用 singleflight 保证同一集群的创建只会执行一次。
func (p *Pool) FetchOrCreate(ctx context.Context, cluster string) (Source, error) {
	p.mu.RLock()
	if src, ok := p.pool[cluster]; ok {
		p.mu.RUnlock()
		return src, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.g.Do(cluster, func() (any, error) {
		// 双检，避免等待期间已被其他协程创建
		p.mu.RLock()
		if src, ok := p.pool[cluster]; ok {
			p.mu.RUnlock()
			return src, nil
		}
		p.mu.RUnlock()

		conf, err := p.resolver.Resolve(ctx, cluster)
		if err != nil {
			return nil, err
		}
		src, err := p.factory(conf)
		if err != nil {
			return nil, fmt.Errorf("unable to create source for cluster %s: %w", cluster, err)
		}

		p.mu.Lock()
		p.pool[cluster] = src
		p.mu.Unlock()
		return src, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Source), nil
}

// Read 读取集群快照. 参数相同的并发请求共享同一次读取.
func (p *Pool) Read(ctx context.Context, cluster string, opts Options) (*Snapshot, error) {
	src, err := p.FetchOrCreate(ctx, cluster)
	if err != nil {
		return nil, err
	}
	v, err, _ := p.reads.Do(readKey(cluster, opts), func() (any, error) {
		return p.readers(src).Read(ctx, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func readKey(cluster string, opts Options) string {
	exclude := append([]string(nil), opts.Exclude...)
	sort.Strings(exclude)
	return fmt.Sprintf("%s|%s|%s|%t", cluster, opts.Partition, strings.Join(exclude, ","), opts.IncludeCompleting)
}

package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownCluster 表示集群不在注册表中.
var ErrUnknownCluster = errors.New("unknown cluster")

// 集群状态来源类型.
const (
	SourceExec      = "exec"
	SourceSlurmrest = "slurmrest"
)

// Config 为 serve 模式的配置文件.
//
//	postgres:
//	  dsn: postgres://user:pass@db:5432/monitor?sslmode=disable
//	clusters:
//	  - name: hpc1
//	    source: slurmrest
//	    address: 10.0.0.1:39999
//	  - name: local
//	    source: exec
type Config struct {
	Postgres Postgres  `yaml:"postgres"`
	Clusters []Cluster `yaml:"clusters"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

// Cluster 描述如何读取某集群的状态.
type Cluster struct {
	Name    string `yaml:"name" json:"name"`
	Source  string `yaml:"source" json:"source"`
	Address string `yaml:"address" json:"address"` // slurmrestd 地址, host:port
}

func (c Cluster) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("cluster name must not be empty")
	}
	switch c.Source {
	case SourceExec:
	case SourceSlurmrest:
		if c.Address == "" {
			return fmt.Errorf("cluster %q: slurmrest source requires an address", c.Name)
		}
	default:
		return fmt.Errorf("cluster %q: unsupported source %q", c.Name, c.Source)
	}
	return nil
}

// Load 读取并校验 YAML 配置文件.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file(%s): %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file(%s): %w", path, err)
	}
	seen := make(map[string]struct{}, len(cfg.Clusters))
	for i := range cfg.Clusters {
		c := &cfg.Clusters[i]
		c.Source = strings.ToLower(strings.TrimSpace(c.Source))
		if c.Source == "" {
			c.Source = SourceExec
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("cluster %q defined twice", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return &cfg, nil
}

// StaticRegistry 为配置文件中的集群表.
type StaticRegistry map[string]Cluster

func NewStaticRegistry(clusters []Cluster) StaticRegistry {
	r := make(StaticRegistry, len(clusters))
	for _, c := range clusters {
		r[c.Name] = c
	}
	return r
}

func (r StaticRegistry) Resolve(_ context.Context, cluster string) (Cluster, error) {
	c, ok := r[cluster]
	if !ok {
		return Cluster{}, fmt.Errorf("%w: %s", ErrUnknownCluster, cluster)
	}
	return c, nil
}

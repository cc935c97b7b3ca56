package options

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, `
postgres:
  dsn: postgres://u:p@db:5432/monitor
clusters:
  - name: hpc1
    source: SlurmRest
    address: 10.0.0.1:39999
  - name: local
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/monitor", cfg.Postgres.DSN)
	require.Len(t, cfg.Clusters, 2)
	assert.Equal(t, SourceSlurmrest, cfg.Clusters[0].Source)
	assert.Equal(t, SourceExec, cfg.Clusters[1].Source)

	reg := NewStaticRegistry(cfg.Clusters)
	c, err := reg.Resolve(context.Background(), "hpc1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:39999", c.Address)

	_, err = reg.Resolve(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrUnknownCluster))
}

func TestLoadRejectsInvalidClusters(t *testing.T) {
	for name, content := range map[string]string{
		"bad source":     "clusters:\n  - name: a\n    source: ssh\n",
		"no address":     "clusters:\n  - name: a\n    source: slurmrest\n",
		"no name":        "clusters:\n  - source: exec\n",
		"duplicate name": "clusters:\n  - name: a\n  - name: a\n",
		"not yaml":       "clusters: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/releaseplan/internal/devops"
	"github.com/alexanderramin/releaseplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs and
// clears every variable the loader reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"AZURE_DEVOPS_ORG", "AZURE_DEVOPS_PROJECT", "AZURE_DEVOPS_PAT",
		"RELEASEPLAN_DEVOPS_COLLECTION", "RELEASEPLAN_DEVOPS_PROJECT", "RELEASEPLAN_DEVOPS_TOKEN",
		"RELEASEPLAN_SERVER_ADDR", "RELEASEPLAN_AGGREGATION_POLICY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "releaseplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
devops:
  collection: acme
  project: Shop
  token: file-token
`

func TestLoad_FileWithDefaults(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "dev.azure.com", cfg.DevOps.Instance)
	assert.Equal(t, "https", cfg.DevOps.Scheme)
	assert.Equal(t, "acme", cfg.DevOps.Collection)
	assert.Equal(t, "Shop", cfg.DevOps.Project)
	assert.Equal(t, 15*time.Second, cfg.DevOps.Timeout)
	assert.Equal(t, 1, cfg.DevOps.MaxRetries)
	assert.Equal(t, filepath.Join(home, ".releaseplan", "releaseplan.db"), cfg.DB.Path)
	assert.Equal(t, 4, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, domain.PolicyDegrade, cfg.FetchPolicy())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "releaseplan", cfg.Metrics.Namespace)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, minimalYAML+`
server:
  addr: ":7000"
`)
	t.Setenv("RELEASEPLAN_DEVOPS_TOKEN", "env-token")
	t.Setenv("RELEASEPLAN_SERVER_ADDR", ":8080")
	t.Setenv("RELEASEPLAN_AGGREGATION_POLICY", "strict")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.DevOps.Token)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, domain.PolicyStrict, cfg.FetchPolicy())
}

func TestLoad_LegacyEnvironmentOnly(t *testing.T) {
	isolate(t)
	t.Setenv("AZURE_DEVOPS_ORG", "legacy-org")
	t.Setenv("AZURE_DEVOPS_PROJECT", "Legacy")
	t.Setenv("AZURE_DEVOPS_PAT", "legacy-pat")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "legacy-org", cfg.DevOps.Collection)
	assert.Equal(t, "Legacy", cfg.DevOps.Project)
	assert.Equal(t, "legacy-pat", cfg.DevOps.Token)
}

func TestLoad_FindsFileInWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(fileName, []byte(minimalYAML), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, fileName, cfg.File)
	assert.Equal(t, "acme", cfg.DevOps.Collection)
}

func TestLoad_MissingRequiredKeysNamed(t *testing.T) {
	isolate(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devops.collection is required")
	assert.Contains(t, err.Error(), "devops.token is required")
	assert.Contains(t, err.Error(), "devops.project is required")
}

func TestLoad_InvalidPolicy(t *testing.T) {
	isolate(t)
	path := writeConfig(t, minimalYAML+`
aggregation:
  policy: sometimes
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregation.policy must be one of")
}

func TestLoad_UnknownOperationTimeout(t *testing.T) {
	isolate(t)
	path := writeConfig(t, minimalYAML+`  timeouts:
    delete_everything: 5s
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devops.timeouts[delete_everything] must be one of")
}

func TestLoad_IdleConnectionsMustBePositive(t *testing.T) {
	isolate(t)
	path := writeConfig(t, minimalYAML+`
db:
  max_idle_conns: 0
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.max_idle_conns failed min=1")
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestConfig_Conversions(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
devops:
  collection: acme
  project: Shop
  token: file-token
  scheme: http
  instance: localhost:8081
  timeout: 3s
  max_retries: 2
  timeouts:
    get_work_items: 30s
db:
  path: ~/plans.db
  max_open_conns: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	dc := cfg.DevOpsClient()
	assert.Equal(t, "http://localhost:8081/acme", dc.BaseURL())
	assert.Equal(t, 3*time.Second, dc.Timeout)
	assert.Equal(t, 2, dc.MaxRetries)
	assert.Equal(t, 30*time.Second, dc.OperationTimeout(devops.OpGetWorkItems))
	assert.Equal(t, 3*time.Second, dc.OperationTimeout(devops.OpListIterations))
	assert.Equal(t, "file-token", dc.Token)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "plans.db"), cfg.DB.Path)
	assert.Equal(t, 8, cfg.Pool().MaxOpenConns)
}

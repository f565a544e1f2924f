package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConfigLoader_Load_FileNotExists(t *testing.T) {
	loader := NewConfigLoader()
	cfg, err := loader.Load("/nonexistent/config.yaml")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, cfg.Output.ColorEnabled())
}

func Test_ConfigLoader_Load_EmptyPath(t *testing.T) {
	cfg, err := NewConfigLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output.Format)
}

func Test_ConfigLoader_Load_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yaml := `
profiles:
  - lab.yaml
  - /etc/qmcchain/site.yaml
output:
  format: json
  indent: true
  color: false
`
	err := os.WriteFile(configPath, []byte(yaml), 0600)
	require.NoError(t, err)

	cfg, err := NewConfigLoader().Load(configPath)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tmpDir, "lab.yaml"), "/etc/qmcchain/site.yaml"}, cfg.Profiles)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Indent)
	assert.False(t, cfg.Output.ColorEnabled())
	assert.Equal(t, "info", cfg.Logging.Level, "unset fields keep their defaults")
}

func Test_ConfigLoader_Load_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("profiles: [unclosed"), 0600))

	_, err := NewConfigLoader().Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse system config")
}

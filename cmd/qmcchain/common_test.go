package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/infrastructure/system"
)

func Test_CommonOptions_ApplyToContext(t *testing.T) {
	t.Run("with timeout", func(t *testing.T) {
		opts := CommonOptions{Timeout: 100 * time.Millisecond}
		ctx, cancel := opts.ApplyToContext(context.Background())
		defer cancel()

		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(100*time.Millisecond), deadline, 50*time.Millisecond)
	})

	t.Run("no timeout", func(t *testing.T) {
		opts := CommonOptions{Timeout: 0}
		ctx, cancel := opts.ApplyToContext(context.Background())
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
	})
}

func Test_CommonOptions_ValidateFlags(t *testing.T) {
	formats := []string{"table", "json"}
	tests := []struct {
		name    string
		opts    CommonOptions
		wantErr string
	}{
		{name: "valid", opts: CommonOptions{Format: "json"}},
		{name: "unknown format", opts: CommonOptions{Format: "sarif"}, wantErr: "invalid format: sarif"},
		{name: "negative timeout", opts: CommonOptions{Format: "table", Timeout: -time.Second}, wantErr: "--timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateFlags(formats)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func newOptionsCommand(opts *CommonOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	opts.RegisterFlags(cmd, []string{"table", "json"})
	return cmd
}

func Test_CommonOptions_Resolve(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetDefault("output.format", "table")
	viper.Set("output.format", "yaml")
	t.Setenv(EnvPrefix+"_PROFILES", "env-a.yaml"+string(os.PathListSeparator)+"env-b.yaml")

	opts := DefaultCommonOptions()
	cmd := newOptionsCommand(&opts)
	require.NoError(t, cmd.Flags().Parse([]string{"-p", "flag.yaml"}))

	opts.Resolve(cmd, &system.Config{Profiles: []string{"/etc/site.yaml"}})
	assert.Equal(t, "yaml", opts.Format)
	assert.Equal(t, []string{"/etc/site.yaml", "env-a.yaml", "env-b.yaml", "flag.yaml"}, opts.Profiles)
}

func Test_CommonOptions_Resolve_FlagWins(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("output.format", "yaml")

	opts := DefaultCommonOptions()
	cmd := newOptionsCommand(&opts)
	require.NoError(t, cmd.Flags().Parse([]string{"--format", "json"}))

	opts.Resolve(cmd, nil)
	assert.Equal(t, "json", opts.Format)
}

func Test_CommonOptions_OpenWriter(t *testing.T) {
	var stdout bytes.Buffer
	w, closeFn, err := (&CommonOptions{}).OpenWriter(&stdout)
	require.NoError(t, err)
	assert.Same(t, &stdout, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "out.json")
	w, closeFn, err = (&CommonOptions{OutFile: path}).OpenWriter(&stdout)
	require.NoError(t, err)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func Test_ParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "INFO", parseLevel("nonsense").String())
}

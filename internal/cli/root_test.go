package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoscribe-dev/autoscribe/internal/build"
	clierrors "github.com/autoscribe-dev/autoscribe/internal/errors"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "autoscribe", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.NotEmpty(t, rootCmd.Example)
	assert.True(t, rootCmd.SilenceErrors)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		flagName  string
		shorthand string
	}{
		"config":   {flagName: "config", shorthand: "c"},
		"verbose":  {flagName: "verbose", shorthand: "v"},
		"no-color": {flagName: "no-color"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			flag := rootCmd.PersistentFlags().Lookup(tt.flagName)
			require.NotNil(t, flag, "Flag %s should exist", tt.flagName)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		group string
		flags []string
	}{
		"init":     {group: GroupGettingStarted, flags: []string{"force", "output"}},
		"version":  {group: GroupGettingStarted, flags: []string{"plain", "yaml"}},
		"generate": {group: GroupChangelog, flags: []string{"version", "output", "ai", "no-ai", "github-release", "no-github-release", "draft", "prerelease", "force", "tag", "push", "dry-run"}},
		"show":     {group: GroupChangelog, flags: []string{"format", "plain", "all", "output"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			require.Equal(t, name, cmd.Name())
			assert.Equal(t, tt.group, cmd.GroupID)
			for _, f := range tt.flags {
				assert.NotNil(t, cmd.Flags().Lookup(f), "%s should have --%s", name, f)
			}
		})
	}
}

func TestBoolOverride(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args     []string
		want     *bool
		wantCode int
	}{
		"neither":     {args: nil},
		"on":          {args: []string{"--ai"}, want: boolPtr(true)},
		"off":         {args: []string{"--no-ai"}, want: boolPtr(false)},
		"on false":    {args: []string{"--ai=false"}, want: boolPtr(false)},
		"off false":   {args: []string{"--no-ai=false"}, want: boolPtr(true)},
		"conflicting": {args: []string{"--ai", "--no-ai"}, wantCode: clierrors.ExitInvalidArguments},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{Use: "x"}
			cmd.Flags().Bool("ai", false, "")
			cmd.Flags().Bool("no-ai", false, "")
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := boolOverride(cmd, "ai")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, clierrors.ExitCodeFor(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgsValidators(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "show [version]"}

	assert.NoError(t, noArgs(cmd, nil))
	err := noArgs(cmd, []string{"extra"})
	require.Error(t, err)
	assert.Equal(t, clierrors.ExitInvalidArguments, clierrors.ExitCodeFor(err))

	assert.NoError(t, maxOneArg(cmd, []string{"1.0.0"}))
	err = maxOneArg(cmd, []string{"1.0.0", "2.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received 2")
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	info := build.Info{
		Version:   "1.2.3",
		Commit:    "abc1234",
		BuildDate: "2026-01-01",
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
	}

	tests := map[string]struct {
		plain    bool
		yaml     bool
		contains []string
	}{
		"pretty": {contains: []string{"autoscribe", "1.2.3", "abc1234", SourceURL}},
		"plain": {
			plain:    true,
			contains: []string{"autoscribe 1.2.3 (commit abc1234, built 2026-01-01, go1.24.0 linux/amd64)\n"},
		},
		"yaml": {
			yaml:     true,
			contains: []string{"version: 1.2.3\n", "commit: abc1234\n", "platform: linux/amd64\n"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printVersion(&buf, info, tt.plain, tt.yaml))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "catalog dev")
}

func TestSubcommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "migrate", "stats", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestMissingConfigFileFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	for _, sub := range []string{"migrate", "stats", "serve"} {
		t.Run(sub, func(t *testing.T) {
			_, err := execute(t, sub, "--config", missing)

			assert.ErrorContains(t, err, "failed to read config file")
		})
	}
}

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"auth", "login"}, {"auth", "logout"}, {"auth", "me"},
		{"feed", "recent"}, {"feed", "community"}, {"feed", "show"}, {"feed", "browse"},
		{"post", "create"}, {"post", "like"}, {"post", "delete"},
		{"comment", "add"}, {"comment", "reply"}, {"comment", "like"},
		{"settings", "show"}, {"settings", "set"},
		{"version"}, {"completion"},
	} {
		found, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version", "--config", t.TempDir() + "/config.toml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "TATHYA CLI v"+Version+"\n", buf.String())
}

func TestInvalidOutputFormat(t *testing.T) {
	rootCmd.SetArgs([]string{"version", "--output", "xml", "--config", t.TempDir() + "/config.toml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}

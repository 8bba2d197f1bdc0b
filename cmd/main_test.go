package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestExecute_MissingConfigFileReportsError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.yml")
	code := execute(context.Background(), []string{"--config", missing}, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "CONFIG_ERROR")
	require.Contains(t, stderr.String(), missing)
}

func TestExecute_UnknownFlagReportsError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stderr bytes.Buffer
	code := execute(context.Background(), []string{"--no-such-flag"}, &stderr)

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "no-such-flag")
}

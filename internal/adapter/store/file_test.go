package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
)

func newMemFileStore(t *testing.T, path string) (*FileWatermarkStore, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	s, err := NewFileWatermarkStore(testLogger{}, fsys, FileConfig{Path: path}, nil)
	require.NoError(t, err)
	return s, fsys
}

func TestNewFileWatermarkStore_InvalidConfig(t *testing.T) {
	_, err := NewFileWatermarkStore(testLogger{}, afero.NewMemMapFs(), FileConfig{}, nil)
	var cfgErr *apperr.ConfigErr
	require.ErrorAs(t, err, &cfgErr)
}

func TestFileWatermarkStore_ReadMissing(t *testing.T) {
	s, _ := newMemFileStore(t, "latest_block.txt")

	h, ok, err := s.Read(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, h)
}

func TestFileWatermarkStore_Read(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    uint64
		wantErr bool
	}{
		{name: "plain", content: "100", want: 100},
		{name: "trailing newline", content: "105\n", want: 105},
		{name: "surrounding spaces", content: "  7 \t\n", want: 7},
		{name: "empty", content: "", wantErr: true},
		{name: "garbage", content: "abc", wantErr: true},
		{name: "negative", content: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fsys := newMemFileStore(t, "latest_block.txt")
			require.NoError(t, afero.WriteFile(fsys, "latest_block.txt", []byte(tt.content), 0o644))

			h, ok, err := s.Read(context.Background())
			if tt.wantErr {
				var wmErr *apperr.WatermarkStoreErr
				require.ErrorAs(t, err, &wmErr)
				require.False(t, ok)
				return
			}
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, tt.want, h)
		})
	}
}

func TestFileWatermarkStore_WriteReplacesAtomically(t *testing.T) {
	s, fsys := newMemFileStore(t, "/state/latest_block.txt")
	require.NoError(t, fsys.MkdirAll("/state", 0o755))
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, 100))
	require.NoError(t, s.Write(ctx, 105))

	data, err := afero.ReadFile(fsys, "/state/latest_block.txt")
	require.NoError(t, err)
	require.Equal(t, "105", string(data))

	entries, err := afero.ReadDir(fsys, "/state")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	h, ok, err := s.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(105), h)
}

func TestFileWatermarkStore_WriteFailure(t *testing.T) {
	s, err := NewFileWatermarkStore(testLogger{}, afero.NewReadOnlyFs(afero.NewMemMapFs()), FileConfig{Path: "latest_block.txt"}, nil)
	require.NoError(t, err)

	err = s.Write(context.Background(), 1)
	var wmErr *apperr.WatermarkStoreErr
	require.ErrorAs(t, err, &wmErr)
}

func TestFileWatermarkStore_SurvivesReopenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_block.txt")
	ctx := context.Background()

	s1, err := NewFileWatermarkStore(testLogger{}, afero.NewOsFs(), FileConfig{Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Write(ctx, 42))

	s2, err := NewFileWatermarkStore(testLogger{}, afero.NewOsFs(), FileConfig{Path: path}, nil)
	require.NoError(t, err)
	h, ok, err := s2.Read(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), h)
}

func TestFileWatermarkStore_WriteLeavesFileReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest_block.txt")
	s, err := NewFileWatermarkStore(testLogger{}, afero.NewOsFs(), FileConfig{Path: path}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), 7))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"speedlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVStore_LoadMissingFile(t *testing.T) {
	st := NewCSVStore(filepath.Join(t.TempDir(), "metrics.csv"), DefaultSchema())
	rows, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCSVStore_AppendLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "metrics.csv")
	st := NewCSVStore(path, DefaultSchema())

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	const n = 4
	for i := 0; i < n; i++ {
		row := sampleRow(start.Add(time.Duration(i) * time.Hour))
		row.PacketsOut = uint64(i)
		require.NoError(t, st.Append(ctx, row))
	}

	rows, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, n)
	for i, row := range rows {
		assert.Equal(t, uint64(i), row.PacketsOut)
		assert.True(t, start.Add(time.Duration(i)*time.Hour).Equal(row.Datetime))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestCSVStore_HeaderOnlyFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(DefaultSchema().Header(), ",")+"\n"), 0600))

	st := NewCSVStore(path, DefaultSchema())
	rows, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, st.Append(ctx, sampleRow(time.Now())))
	rows, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCSVStore_KeepsExistingColumnOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.csv")
	existing := "Datetime,Download speed,Upload speed,Packages out,Packages in,Errors in,Errors out," +
		"Drop in,Drop out,CPU perc use,Average load,Free memory (bytes),Percent free memory\n" +
		"2024-01-01 10:00:00.000000,50.0,5.0,1.0,2.0,0.0,0.0,0.0,0.0,3.1,0.2,1000.0,0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	st := NewCSVStore(path, DefaultSchema())
	require.NoError(t, st.Append(ctx, sampleRow(time.Date(2024, 1, 1, 11, 0, 0, 0, time.Local))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Datetime,"))
	assert.True(t, strings.HasPrefix(lines[2], "2024-01-01 11:00:00.000000,1200,"))

	rows, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 50.0, rows[0].DownloadMbps)
	assert.Equal(t, uint64(1000), rows[0].FreeMemoryBytes)
}

func TestCSVStore_SchemaMismatchWritesNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metrics.csv")
	existing := []byte("Download speed,Upload speed,Datetime\n1,2,2024-01-01 10:00:00\n")
	require.NoError(t, os.WriteFile(path, existing, 0644))

	st := NewCSVStore(path, DefaultSchema())
	err := st.Append(ctx, sampleRow(time.Now()))
	assert.ErrorIs(t, err, models.ErrSchemaMismatch)

	_, err = st.Load(ctx)
	assert.ErrorIs(t, err, models.ErrSchemaMismatch)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, existing, after)
}

func TestCSVStore_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	st := NewCSVStore(path, DefaultSchema())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, st.Append(ctx, sampleRow(time.Now())))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erinpentecost/ddsconvert/internal/backend"
)

func TestPlannerPaths(t *testing.T) {
	p := NewPlanner("/out", fixedNow, "")

	require.Equal(t, filepath.Join("/out", "DDS", fixedStamp), p.Root(backend.PNGToDDS))
	require.Equal(t, filepath.Join("/out", "PNG", fixedStamp), p.Root(backend.DDSToPNG))

	tests := []struct {
		dir  backend.Direction
		src  string
		want string
	}{
		{backend.PNGToDDS, "/in/rock.png", filepath.Join("/out", "DDS", fixedStamp, "rock.dds")},
		{backend.DDSToPNG, "/in/rock.dds", filepath.Join("/out", "PNG", fixedStamp, "rock.png")},
		{backend.PNGToDDS, "/in/sub/archive.tar.png", filepath.Join("/out", "DDS", fixedStamp, "archive.tar.dds")},
		{backend.DDSToPNG, "/in/UPPER.DDS", filepath.Join("/out", "PNG", fixedStamp, "UPPER.png")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, tt.want, p.OutputPath(tt.dir, tt.src))
		})
	}
}

func TestPlannerOutputDir(t *testing.T) {
	p := NewPlanner("/out", fixedNow, "")
	require.Equal(t, p.Root(backend.PNGToDDS), p.OutputDir(PngToDds))
	require.Equal(t, p.Root(backend.DDSToPNG), p.OutputDir(DdsToPng))
	require.Equal(t, "/out", p.OutputDir(Auto))
}

func TestPlannerCustomLayout(t *testing.T) {
	p := NewPlanner("/out", fixedNow, "20060102")
	require.Equal(t, filepath.Join("/out", "PNG", "20240506"), p.Root(backend.DDSToPNG))
}

func TestPlannerPrepareCreatesOnlyNeededRoots(t *testing.T) {
	base := t.TempDir()
	p := NewPlanner(base, fixedNow, "")
	require.NoError(t, p.Prepare(DdsToPng))
	t.Cleanup(func() { _ = p.Release() })

	require.DirExists(t, p.Root(backend.DDSToPNG))
	require.NoDirExists(t, filepath.Join(base, "DDS"))
	require.FileExists(t, filepath.Join(base, LockFileName))
}

func TestPlannerReleaseRemovesLockFile(t *testing.T) {
	base := t.TempDir()
	p := NewPlanner(base, fixedNow, "")
	require.NoError(t, p.Prepare(PngToDds))
	require.FileExists(t, filepath.Join(base, LockFileName))

	require.NoError(t, p.Release())
	require.NoFileExists(t, filepath.Join(base, LockFileName))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "DDS", entries[0].Name())
}

func TestPlannerPrepareIsIdempotent(t *testing.T) {
	base := t.TempDir()
	p := NewPlanner(base, fixedNow, "")
	require.NoError(t, p.Prepare(Auto))
	require.NoError(t, os.WriteFile(filepath.Join(p.Root(backend.PNGToDDS), "keep.dds"), nil, 0o644))
	require.NoError(t, p.Release())

	again := NewPlanner(base, fixedNow, "")
	require.NoError(t, again.Prepare(Auto))
	require.NoError(t, again.Release())
	require.FileExists(t, filepath.Join(p.Root(backend.PNGToDDS), "keep.dds"))

	require.NoError(t, again.Release())
}

func TestPlannerPrepareFailure(t *testing.T) {
	base := t.TempDir()
	p := NewPlanner(base, fixedNow, "")
	// A file where the DDS directory should go.
	require.NoError(t, os.WriteFile(filepath.Join(base, "DDS"), nil, 0o644))

	err := p.Prepare(Auto)
	require.ErrorIs(t, err, ErrPrepare)
	require.NoFileExists(t, filepath.Join(base, LockFileName))

	// The lock must not stay held after a failed prepare.
	other := NewPlanner(base, fixedNow, "")
	require.NoError(t, other.Prepare(DdsToPng))
	require.NoError(t, other.Release())
}

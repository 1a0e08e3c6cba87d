package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimg/internal/loop"
	"github.com/zjrosen/vimg/internal/worker"
)

type externalFixture struct {
	external *External
	pool     *worker.Pool
	loop     *loop.Loop
	opened   [][]string
}

func newExternalFixture(t *testing.T) *externalFixture {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
	f := &externalFixture{
		pool: worker.New(worker.Config{Name: "external", MaxWorkers: 2}),
		loop: loop.New(),
	}
	f.external = NewExternal(ExternalConfig{
		Shell: "/bin/sh",
		Pool:  f.pool,
		Loop:  f.loop,
		Open: func(paths []string) error {
			f.opened = append(f.opened, paths)
			return nil
		},
	})
	t.Cleanup(f.external.Close)
	t.Cleanup(func() { _ = f.pool.Shutdown(time.Second) })
	return f
}

// finish waits for every job and then runs what they posted to the loop.
func (f *externalFixture) finish(t *testing.T) {
	t.Helper()
	f.pool.Wait()
	f.loop.Drain()
}

func TestExternal_PipeOpensExistingPaths(t *testing.T) {
	f := newExternalFixture(t)
	dir := t.TempDir()
	img := filepath.Join(dir, "a b.jpg")
	require.NoError(t, os.WriteFile(img, []byte("x"), 0o600))
	missing := filepath.Join(dir, "missing.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outputs := f.external.Subscribe(ctx)

	cmd := "!printf '%s\\n' " + shellquote.Join(img, missing) + " |"
	require.NoError(t, f.external.Run(cmd))
	f.finish(t)

	require.Equal(t, [][]string{{img}}, f.opened)
	select {
	case event := <-outputs:
		require.Contains(t, event.Payload.Stdout, img)
		require.NotEmpty(t, event.Payload.JobID)
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for pipe output")
	}
}

func TestExternal_PipeWithoutPathsWarns(t *testing.T) {
	buf := captureLog(t)
	f := newExternalFixture(t)

	require.NoError(t, f.external.Run("!echo /definitely/not/here |"))
	f.finish(t)

	require.Empty(t, f.opened)
	require.Contains(t, buf.String(), "[WARN] [external] echo /definitely/not/here: No paths from pipe")
}

func TestExternal_NonZeroExitLogsCode(t *testing.T) {
	buf := captureLog(t)
	f := newExternalFixture(t)

	require.NoError(t, f.external.Run("!echo oops >&2; exit 3"))
	f.finish(t)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [external] Error running shell command")
	require.Contains(t, out, "code=3")
	require.Contains(t, out, "stderr=oops")
	require.Zero(t, f.loop.Pending())
}

func TestExternal_WithoutPipeOpensNothing(t *testing.T) {
	f := newExternalFixture(t)
	require.NoError(t, f.external.Run("!true"))
	f.finish(t)
	require.Empty(t, f.opened)
}

func TestExternal_ClosedPool(t *testing.T) {
	f := newExternalFixture(t)
	require.NoError(t, f.pool.Shutdown(time.Second))
	require.ErrorIs(t, f.external.Run("!true"), worker.ErrPoolClosed)
}

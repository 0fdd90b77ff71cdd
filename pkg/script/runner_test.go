package script

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_CapturesStdout(t *testing.T) {
	r := NewExecRunner("", 5*time.Second)
	res, err := r.Run(context.Background(), "sh", "-c", `printf '%s|%s' "$0" "$1"`, "Hi there", "C1,C2")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "Hi there|C1,C2", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	r := NewExecRunner("", 5*time.Second)
	res, err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "boom", strings.TrimSpace(res.Stderr))
}

func TestExecRunner_Timeout(t *testing.T) {
	r := NewExecRunner("", 100*time.Millisecond)
	start := time.Now()
	res, err := r.Run(context.Background(), "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner("", time.Second)
	res, err := r.Run(context.Background(), "definitely-not-a-real-binary-tigersai")
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestExecRunner_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := NewExecRunner(dir, time.Second)
	res, err := r.Run(context.Background(), "pwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), filepath.Base(strings.TrimSpace(res.Stdout)))
}

// Package script 以子进程方式执行外部脚本，并收集 stdout/stderr 与退出码。
package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimeout 表示子进程因超时被终止。
var ErrTimeout = errors.New("script: timed out")

// Result 记录一次执行的输出。
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner 抽象了子进程调用，测试中用假实现替换。
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner 基于 os/exec 的真实实现。Timeout 大于 0 时为每次调用加上截止时间。
type ExecRunner struct {
	Dir     string
	Timeout time.Duration
}

// NewExecRunner 创建一个 ExecRunner。
func NewExecRunner(dir string, timeout time.Duration) *ExecRunner {
	return &ExecRunner{Dir: dir, Timeout: timeout}
}

// Run 执行命令。非零退出码不视为错误，由调用方根据 ExitCode 判断；
// 启动失败或超时返回 error。
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	// 子进程被杀掉后不再等待其遗留的管道
	cmd.WaitDelay = time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	runErr := cmd.Run()
	result := Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		return result, fmt.Errorf("%s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("%s: %w", name, runErr)
	}
	return result, nil
}

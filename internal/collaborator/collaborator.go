// Package collaborator 把外部 Python 脚本包装成可注入的接口。
package collaborator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"tigersai/internal/config"
	"tigersai/pkg/log"
	"tigersai/pkg/script"
)

var (
	// ErrNonZeroExit 脚本以非零状态退出。
	ErrNonZeroExit = errors.New("collaborator exited with non-zero status")
	// ErrStderr 子网脚本在 stderr 上输出了内容。
	ErrStderr = errors.New("collaborator wrote to stderr")
	// ErrMalformedOutput 子网脚本的 stdout 不是 JSON 对象。
	ErrMalformedOutput = errors.New("collaborator output is not a JSON object")
)

// Request 是发给 NLP 脚本的一次提问。
type Request struct {
	Message string
	Courses []string
	Token   string
}

// Responder 根据用户提问返回一段纯文本回答。
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// Family 区分 IPv4 与 IPv6 计算脚本。
type Family string

const (
	IPv4 Family = "ipv4"
	IPv6 Family = "ipv6"
)

// SubnetCalculator 计算子网信息，返回脚本输出的 JSON 对象原文。
type SubnetCalculator interface {
	Calculate(ctx context.Context, family Family, address, mask string) (json.RawMessage, error)
}

// ScriptResponder 通过 `python <chat_script> <message> <courses> <token>` 获得回答。
type ScriptResponder struct {
	runner script.Runner
	python string
	path   string
}

// NewScriptResponder 创建 ScriptResponder。
func NewScriptResponder(runner script.Runner, cfg config.CollaboratorConfig) *ScriptResponder {
	return &ScriptResponder{
		runner: runner,
		python: cfg.Python,
		path:   filepath.Join(cfg.ScriptsDir, cfg.ChatScript),
	}
}

// Respond 返回 stdout 去除首尾空白后的内容。空回答由调用方判断。
func (r *ScriptResponder) Respond(ctx context.Context, req Request) (string, error) {
	res, err := r.runner.Run(ctx, r.python, r.path, req.Message, strings.Join(req.Courses, ","), req.Token)
	if err != nil {
		return "", err
	}
	if res.Stderr != "" {
		log.Warnw("NLP 脚本输出了 stderr", "stderr", res.Stderr)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: exit code %d", ErrNonZeroExit, res.ExitCode)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ScriptSubnetCalculator 通过 `python <ipvX_script> <address> <mask>` 计算子网。
type ScriptSubnetCalculator struct {
	runner  script.Runner
	python  string
	scripts map[Family]string
}

// NewScriptSubnetCalculator 创建 ScriptSubnetCalculator。
func NewScriptSubnetCalculator(runner script.Runner, cfg config.CollaboratorConfig) *ScriptSubnetCalculator {
	return &ScriptSubnetCalculator{
		runner: runner,
		python: cfg.Python,
		scripts: map[Family]string{
			IPv4: filepath.Join(cfg.ScriptsDir, cfg.IPv4Script),
			IPv6: filepath.Join(cfg.ScriptsDir, cfg.IPv6Script),
		},
	}
}

// Calculate 执行对应脚本。非零退出、任何 stderr 输出或非 JSON 对象的 stdout 都视为失败。
func (c *ScriptSubnetCalculator) Calculate(ctx context.Context, family Family, address, mask string) (json.RawMessage, error) {
	path, ok := c.scripts[family]
	if !ok {
		return nil, fmt.Errorf("unknown address family %q", family)
	}
	res, err := c.runner.Run(ctx, c.python, path, address, mask)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: exit code %d: %s", ErrNonZeroExit, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	if strings.TrimSpace(res.Stderr) != "" {
		return nil, fmt.Errorf("%w: %s", ErrStderr, strings.TrimSpace(res.Stderr))
	}

	out := json.RawMessage(strings.TrimSpace(res.Stdout))
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(out, &obj); err != nil || obj == nil {
		return nil, ErrMalformedOutput
	}
	return out, nil
}

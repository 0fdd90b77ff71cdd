package service

import (
	"errors"

	"tigersai/internal/policy"
)

// 业务层的哨兵错误，HTTP 层统一通过 errors.Is 映射状态码。
var (
	// 认证 (401)
	ErrInvalidCredentials     = errors.New("Invalid credentials. Please try again.")
	ErrAuthenticationRequired = policy.ErrAuthenticationRequired

	// 授权 (403)
	ErrUnauthorizedRole    = policy.ErrUnauthorizedRole
	ErrForbidden           = errors.New("forbidden")
	ErrNoAuthorizedCourses = errors.New("Unauthorized. Please log in.")

	// 参数校验 (400)
	ErrValidation     = errors.New("validation failed")
	ErrTargetRequired = policy.ErrTargetRequired
	ErrEmptyMessage   = errors.New("Message is required")
	ErrUsernameTaken  = errors.New("Username already exists")

	// 外部脚本与存储 (500)
	ErrCollaboratorFailed = errors.New("collaborator failed")
	ErrEmptyResponse      = errors.New("Bot response is empty")
	ErrStorage            = errors.New("storage failure")

	// 可选组件未配置 (503)
	ErrUnavailable = errors.New("feature not configured")
)

// ClientError 附带一段可以原样返回给调用方的提示语。
type ClientError struct {
	Kind    error
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func (e *ClientError) Unwrap() error { return e.Kind }

func clientError(kind error, msg string) error {
	return &ClientError{Kind: kind, Message: msg}
}

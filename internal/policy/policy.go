// Package policy 决定调用者可以查询哪个用户的对话记录。
//
// 所有判断都是纯函数：调用方显式传入 SessionContext，不读取任何请求级的全局状态。
package policy

import (
	"errors"

	"tigersai/internal/model"
)

var (
	// ErrAuthenticationRequired 调用者不存在（未登录或会话已过期）。
	ErrAuthenticationRequired = errors.New("must authenticate")
	// ErrTargetRequired 管理员查询时没有指定用户。
	ErrTargetRequired = errors.New("admin must select a user")
	// ErrUnauthorizedRole 调用者的角色不在已知枚举中。
	ErrUnauthorizedRole = errors.New("unauthorized role")
)

// ResolveQueryTarget 返回本次查询应当使用的 owner ID。
//
//	student: 始终为自己，忽略 explicitTarget
//	teacher: explicitTarget 或自己
//	admin:   必须提供 explicitTarget
//
// teacher 可以查询任意 student 的记录，这里不校验双方是否共享课程。
func ResolveQueryTarget(caller *model.SessionContext, explicitTarget *uint) (uint, error) {
	if caller == nil {
		return 0, ErrAuthenticationRequired
	}
	switch caller.Role {
	case model.RoleStudent:
		return caller.UserID, nil
	case model.RoleTeacher:
		if explicitTarget != nil {
			return *explicitTarget, nil
		}
		return caller.UserID, nil
	case model.RoleAdmin:
		if explicitTarget == nil {
			return 0, ErrTargetRequired
		}
		return *explicitTarget, nil
	default:
		return 0, ErrUnauthorizedRole
	}
}

// TargetParam 返回该角色用来指定查询对象的请求参数名；student 没有此参数。
func TargetParam(role model.Role) string {
	switch role {
	case model.RoleTeacher:
		return "student_id"
	case model.RoleAdmin:
		return "user_id"
	}
	return ""
}

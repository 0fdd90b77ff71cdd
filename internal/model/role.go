package model

import (
	"fmt"
	"strings"
)

// Role 是封闭的角色枚举，只允许 admin / teacher / student。
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid 判断角色是否属于已知枚举。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole 将外部输入（数据库、命令行参数）转换为 Role，未知值直接拒绝。
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

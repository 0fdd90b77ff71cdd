// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"tigersai/internal/model"
	"tigersai/internal/repository"
	"tigersai/pkg/hash"
	"tigersai/pkg/log"
)

// UserService 接口定义了登录、登出以及教师的学生列表。
type UserService interface {
	Login(ctx context.Context, username, password string) (*model.SessionContext, error)
	Logout(ctx context.Context, sessionID string) error
	ListStudentsForTeacher(ctx context.Context, caller *model.SessionContext) ([]model.User, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo repository.UserRepository
	sessions SessionManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, sessions SessionManager) UserService {
	return &userService{userRepo: userRepo, sessions: sessions}
}

// Login 校验用户名和密码并创建会话。
// 用户不存在与密码错误返回同一个错误，不暴露具体是哪一项出错。
func (s *userService) Login(ctx context.Context, username, password string) (*model.SessionContext, error) {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Errorf("查询用户失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !hash.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Role.Valid() {
		log.Warnw("用户角色不在已知枚举中", "username", user.Username, "role", user.Role)
		return nil, ErrUnauthorizedRole
	}

	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	log.Infow("用户登录成功", "username", user.Username, "role", user.Role)
	return session, nil
}

// Logout 销毁会话。
func (s *userService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

// ListStudentsForTeacher 返回与教师至少共享一门课程的学生。
// 课程以数据库中的记录为准，而不是会话里的快照。
func (s *userService) ListStudentsForTeacher(ctx context.Context, caller *model.SessionContext) ([]model.User, error) {
	if caller == nil {
		return nil, ErrAuthenticationRequired
	}
	teacher, err := s.userRepo.FindByID(caller.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && teacher.Role != model.RoleTeacher) {
		return nil, clientError(ErrForbidden, "Unauthorized: Only teachers can access this feature.")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	courses := teacher.CourseIDs()
	if len(courses) == 0 {
		return nil, clientError(ErrValidation, "Teacher has no associated courses.")
	}
	students, err := s.userRepo.FindStudentsSharingCourses(courses)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return students, nil
}

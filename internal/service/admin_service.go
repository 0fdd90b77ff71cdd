package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"tigersai/internal/model"
	"tigersai/internal/repository"
	"tigersai/pkg/hash"
	"tigersai/pkg/log"
)

// AdminService 定义了用户目录的管理操作。
// CreateUser / AssignCourses 只由运维命令行调用，HTTP 上不开放注册。
type AdminService interface {
	ListAllUsers(ctx context.Context, caller *model.SessionContext) ([]model.User, error)
	CreateUser(ctx context.Context, username, password string, role model.Role, externalToken string, courses []string) (*model.User, error)
	AssignCourses(ctx context.Context, username string, courses []string) (*model.User, error)
}

type adminService struct {
	userRepo repository.UserRepository
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

// ListAllUsers 返回全部用户，仅管理员可用。
func (s *adminService) ListAllUsers(ctx context.Context, caller *model.SessionContext) ([]model.User, error) {
	if caller == nil {
		return nil, ErrAuthenticationRequired
	}
	if caller.Role != model.RoleAdmin {
		return nil, clientError(ErrForbidden, "Unauthorized: Only admins can access this feature.")
	}
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return users, nil
}

// CreateUser 创建用户并写入授权课程。用户名重复时返回 ErrUsernameTaken。
func (s *adminService) CreateUser(ctx context.Context, username, password string, role model.Role, externalToken string, courses []string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, clientError(ErrValidation, "username and password are required")
	}
	if !role.Valid() {
		return nil, clientError(ErrValidation, fmt.Sprintf("unknown role %q", role))
	}

	// 1. 检查用户名是否已存在
	_, err := s.userRepo.FindByUsername(username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// 2. 对密码进行哈希处理
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:      username,
		Password:      hashed,
		Role:          role,
		ExternalToken: externalToken,
	}
	// 3. 用户与授权课程一起写入
	courses = normalizeCourses(courses)
	if err := s.userRepo.Create(user, courses); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	log.Infow("用户已创建", "username", username, "role", role, "courses", len(courses))
	return user, nil
}

// AssignCourses 用新的课程列表覆盖用户当前的授权课程。
func (s *adminService) AssignCourses(ctx context.Context, username string, courses []string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, clientError(ErrValidation, fmt.Sprintf("user %q not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	courses = normalizeCourses(courses)
	if err := s.userRepo.ReplaceCourses(user.ID, courses); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	user.Courses = make([]model.UserCourse, 0, len(courses))
	for _, c := range courses {
		user.Courses = append(user.Courses, model.UserCourse{UserID: user.ID, CourseID: c})
	}
	return user, nil
}

// normalizeCourses 去掉空白与重复的课程 ID，保持原有顺序。
func normalizeCourses(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

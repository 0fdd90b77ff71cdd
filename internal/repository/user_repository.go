// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"
	"tigersai/internal/model"
)

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(user *model.User, courseIDs []string) error
	FindByUsername(username string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	FindAll() ([]model.User, error)
	FindStudentsSharingCourses(courseIDs []string) ([]model.User, error)
	ReplaceCourses(userID uint, courseIDs []string) error
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 在一个事务中写入用户及其授权课程，任一步失败都不会留下用户记录。
// 用户名唯一由唯一索引保证。
func (r *userRepository) Create(user *model.User, courseIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Courses").Create(user).Error; err != nil {
			return err
		}
		if len(courseIDs) == 0 {
			return nil
		}
		rows := make([]model.UserCourse, 0, len(courseIDs))
		for _, id := range courseIDs {
			rows = append(rows, model.UserCourse{UserID: user.ID, CourseID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		user.Courses = rows
		return nil
	})
}

// FindByUsername 根据用户名查找用户，并加载其授权课程。
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Preload("Courses").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 根据用户 ID 查找用户，并加载其授权课程。
func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	err := r.db.Preload("Courses").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 按 ID 顺序检索所有用户记录。
func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("id").Find(&users).Error
	return users, err
}

// FindStudentsSharingCourses 查找至少选了其中一门课程的学生。
func (r *userRepository) FindStudentsSharingCourses(courseIDs []string) ([]model.User, error) {
	users := []model.User{}
	if len(courseIDs) == 0 {
		return users, nil
	}
	sub := r.db.Model(&model.UserCourse{}).Select("user_id").Where("course_id IN ?", courseIDs)
	err := r.db.Where("role = ? AND id IN (?)", model.RoleStudent, sub).Order("id").Find(&users).Error
	return users, err
}

// ReplaceCourses 在一个事务中用 courseIDs 覆盖用户的授权课程。
func (r *userRepository) ReplaceCourses(userID uint, courseIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserCourse{}).Error; err != nil {
			return err
		}
		if len(courseIDs) == 0 {
			return nil
		}
		rows := make([]model.UserCourse, 0, len(courseIDs))
		for _, id := range courseIDs {
			rows = append(rows, model.UserCourse{UserID: userID, CourseID: id})
		}
		return tx.Create(&rows).Error
	})
}

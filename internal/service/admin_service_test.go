package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"tigersai/internal/model"
	"tigersai/pkg/hash"
)

func TestListAllUsers(t *testing.T) {
	repo := newMemUserRepo(
		&model.User{ID: 1, Username: "root", Role: model.RoleAdmin},
		&model.User{ID: 2, Username: "bob", Role: model.RoleTeacher},
		&model.User{ID: 3, Username: "alice", Role: model.RoleStudent},
	)
	svc := NewAdminService(repo)

	got, err := svc.ListAllUsers(context.Background(), sessionFor(1, "root", model.RoleAdmin))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "root", got[0].Username)

	_, err = svc.ListAllUsers(context.Background(), sessionFor(2, "bob", model.RoleTeacher))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.EqualError(t, err, "Unauthorized: Only admins can access this feature.")

	_, err = svc.ListAllUsers(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestCreateUser(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewAdminService(repo)

	u, err := svc.CreateUser(context.Background(), " alice ", "secret", model.RoleStudent, "tok", []string{"C1", " C2", "C1", ""})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret", u.Password)
	assert.True(t, hash.CheckPasswordHash("secret", u.Password))
	assert.Equal(t, []string{"C1", "C2"}, u.CourseIDs())

	stored, err := repo.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, stored.CourseIDs())
}

func TestCreateUser_Rejections(t *testing.T) {
	repo := newMemUserRepo(&model.User{ID: 1, Username: "alice", Role: model.RoleStudent})
	svc := NewAdminService(repo)

	_, err := svc.CreateUser(context.Background(), "alice", "pw", model.RoleStudent, "", nil)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.CreateUser(context.Background(), "carol", "pw", "guest", "", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateUser(context.Background(), "  ", "pw", model.RoleStudent, "", nil)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, repo.created)
}

func TestCreateUser_StorageFailureLeavesNoUser(t *testing.T) {
	repo := newMemUserRepo()
	repo.createErr = errDB
	svc := NewAdminService(repo)

	_, err := svc.CreateUser(context.Background(), "alice", "secret", model.RoleStudent, "", []string{"C1"})
	assert.ErrorIs(t, err, ErrStorage)

	_, err = repo.FindByUsername("alice")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAssignCourses_ReplacesSet(t *testing.T) {
	repo := newMemUserRepo(&model.User{ID: 5, Username: "bob", Role: model.RoleTeacher, Courses: userCourses(5, "C1")})
	svc := NewAdminService(repo)

	u, err := svc.AssignCourses(context.Background(), "bob", []string{"C2", "C3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "C3"}, u.CourseIDs())

	stored, _ := repo.FindByUsername("bob")
	assert.Equal(t, []string{"C2", "C3"}, stored.CourseIDs())

	_, err = svc.AssignCourses(context.Background(), "nobody", []string{"C1"})
	assert.ErrorIs(t, err, ErrValidation)
}

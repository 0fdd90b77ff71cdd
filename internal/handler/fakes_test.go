package handler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"tigersai/internal/collaborator"
	"tigersai/internal/middleware"
	"tigersai/internal/model"
	"tigersai/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withSession 模拟 RequireSession，把固定会话放进上下文。
func withSession(s *model.SessionContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Set(middleware.ContextSessionKey, s)
		}
		c.Next()
	}
}

func student(id uint, name string, courses ...string) *model.SessionContext {
	return &model.SessionContext{ID: "sid-" + name, UserID: id, Username: name, Role: model.RoleStudent, Courses: courses}
}

func teacher(id uint, name string) *model.SessionContext {
	return &model.SessionContext{ID: "sid-" + name, UserID: id, Username: name, Role: model.RoleTeacher, Courses: []string{"C1"}}
}

func admin(id uint, name string) *model.SessionContext {
	return &model.SessionContext{ID: "sid-" + name, UserID: id, Username: name, Role: model.RoleAdmin}
}

type fakeUserService struct {
	session   *model.SessionContext
	loginErr  error
	loggedOut []string
	students  []model.User
	listErr   error
}

func (f *fakeUserService) Login(_ context.Context, _, _ string) (*model.SessionContext, error) {
	return f.session, f.loginErr
}

func (f *fakeUserService) Logout(_ context.Context, id string) error {
	f.loggedOut = append(f.loggedOut, id)
	return nil
}

func (f *fakeUserService) ListStudentsForTeacher(context.Context, *model.SessionContext) ([]model.User, error) {
	return f.students, f.listErr
}

type fakeAdminService struct {
	users []model.User
	err   error
}

func (f *fakeAdminService) ListAllUsers(context.Context, *model.SessionContext) ([]model.User, error) {
	return f.users, f.err
}

func (f *fakeAdminService) CreateUser(context.Context, string, string, model.Role, string, []string) (*model.User, error) {
	return nil, nil
}

func (f *fakeAdminService) AssignCourses(context.Context, string, []string) (*model.User, error) {
	return nil, nil
}

type fakeChatService struct {
	mu       sync.Mutex
	err      error
	messages []string
}

func (f *fakeChatService) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeChatService) Ask(_ context.Context, caller *model.SessionContext, message string) (*model.ConversationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	if f.err != nil {
		return nil, f.err
	}
	return &model.ConversationEntry{OwnerID: caller.UserID, UserMessage: message, BotResponse: "echo: " + message}, nil
}

// fakeSessionManager 只支持 Get，用于 WebSocket 每条消息的会话校验。
type fakeSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*model.SessionContext
}

func (f *fakeSessionManager) Create(context.Context, *model.User) (*model.SessionContext, error) {
	return nil, nil
}

func (f *fakeSessionManager) Get(_ context.Context, id string) (*model.SessionContext, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, service.ErrAuthenticationRequired
}

func (f *fakeSessionManager) Destroy(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionManager) IdleTimeout() time.Duration { return time.Hour }

type conversationCall struct {
	when   time.Time
	target *uint
}

type fakeConversationService struct {
	entries []model.ConversationEntry
	err     error
	calls   []conversationCall
}

func (f *fakeConversationService) QueryByOwnerAndRange(context.Context, uint, time.Time, time.Time) ([]model.ConversationEntry, error) {
	return f.entries, f.err
}

func (f *fakeConversationService) ConversationsByMonth(_ context.Context, caller *model.SessionContext, month time.Time, target *uint) ([]model.ConversationEntry, error) {
	f.calls = append(f.calls, conversationCall{when: month, target: target})
	if f.err != nil {
		return nil, f.err
	}
	if _, err := service.ResolveMonthOwner(caller, target); err != nil {
		return nil, err
	}
	return f.entries, nil
}

func (f *fakeConversationService) ConversationsByDay(_ context.Context, caller *model.SessionContext, day time.Time, target *uint) ([]model.ConversationEntry, error) {
	f.calls = append(f.calls, conversationCall{when: day, target: target})
	if f.err != nil {
		return nil, f.err
	}
	if caller.Role == model.RoleAdmin && target == nil {
		return nil, service.ErrTargetRequired
	}
	return f.entries, nil
}

type fakeExportService struct {
	url string
	err error
}

func (f *fakeExportService) ExportMonth(context.Context, *model.SessionContext, time.Time, *uint) (string, error) {
	return f.url, f.err
}

type fakeSearchService struct {
	hits   []model.SearchHit
	err    error
	query  string
	target *uint
}

func (f *fakeSearchService) Search(_ context.Context, _ *model.SessionContext, query string, target *uint) ([]model.SearchHit, error) {
	f.query, f.target = query, target
	return f.hits, f.err
}

type fakeSubnetService struct {
	out    json.RawMessage
	err    error
	family collaborator.Family
}

func (f *fakeSubnetService) Calculate(_ context.Context, caller *model.SessionContext, family collaborator.Family, address, mask string) (json.RawMessage, error) {
	f.family = family
	if f.err != nil {
		return nil, f.err
	}
	if address == "" || mask == "" {
		return nil, &service.ClientError{Kind: service.ErrValidation, Message: "Missing IP address or subnet mask."}
	}
	return f.out, nil
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

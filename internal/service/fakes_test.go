package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"tigersai/internal/collaborator"
	"tigersai/internal/model"
	"tigersai/internal/repository"
	"tigersai/pkg/events"
)

var errDB = errors.New("db down")

// memConversationRepo 是只追加的内存对话日志。
type memConversationRepo struct {
	mu        sync.Mutex
	entries   []model.ConversationEntry
	appendErr error
	findErr   error
	finds     int
}

func (r *memConversationRepo) Append(_ context.Context, e *model.ConversationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	e.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memConversationRepo) FindByOwnerAndRange(_ context.Context, owner uint, start, end time.Time) ([]model.ConversationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := []model.ConversationEntry{}
	for _, e := range r.entries {
		if e.OwnerID == owner && !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *memConversationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// memUserRepo 是内存中的身份存储。
type memUserRepo struct {
	users   map[string]*model.User
	nextID  uint
	findErr   error
	createErr error
	created   int
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*model.User{}, nextID: 100}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *memUserRepo) Create(u *model.User, courses []string) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	u.ID = r.nextID
	u.Courses = nil
	for _, c := range courses {
		u.Courses = append(u.Courses, model.UserCourse{UserID: u.ID, CourseID: c})
	}
	cp := *u
	r.users[u.Username] = &cp
	r.created++
	return nil
}

func (r *memUserRepo) FindByUsername(name string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByID(id uint) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindAll() ([]model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUserRepo) FindStudentsSharingCourses(courses []string) ([]model.User, error) {
	want := map[string]bool{}
	for _, c := range courses {
		want[c] = true
	}
	out := []model.User{}
	all, _ := r.FindAll()
	for _, u := range all {
		if u.Role != model.RoleStudent {
			continue
		}
		for _, c := range u.CourseIDs() {
			if want[c] {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (r *memUserRepo) ReplaceCourses(id uint, courses []string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Courses = nil
			for _, c := range courses {
				u.Courses = append(u.Courses, model.UserCourse{UserID: id, CourseID: c})
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// memSessionRepo 是内存中的会话存储，记录最后一次写入的 TTL。
type memSessionRepo struct {
	sessions map[string]model.SessionContext
	lastTTL  time.Duration
	saveErr  error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]model.SessionContext{}}
}

func (r *memSessionRepo) Save(_ context.Context, s *model.SessionContext, ttl time.Duration) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions[s.ID] = *s
	r.lastTTL = ttl
	return nil
}

func (r *memSessionRepo) Get(_ context.Context, id string) (*model.SessionContext, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

// fakeResponder 返回预设回答并记录请求。
type fakeResponder struct {
	answer   string
	err      error
	requests []collaborator.Request
	deadline bool
}

func (f *fakeResponder) Respond(ctx context.Context, req collaborator.Request) (string, error) {
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	return f.answer, f.err
}

type fakePublisher struct {
	events []events.ConversationLogged
	err    error
}

func (p *fakePublisher) PublishConversationLogged(_ context.Context, e events.ConversationLogged) error {
	p.events = append(p.events, e)
	return p.err
}

type fakeSubnet struct {
	out   json.RawMessage
	err   error
	calls int
}

func (f *fakeSubnet) Calculate(context.Context, collaborator.Family, string, string) (json.RawMessage, error) {
	f.calls++
	return f.out, f.err
}

func sessionFor(id uint, name string, role model.Role, courses ...string) *model.SessionContext {
	return &model.SessionContext{ID: "sid-" + name, UserID: id, Username: name, Role: role, ExternalToken: "tok-" + name, Courses: courses}
}

func uptr(v uint) *uint { return &v }

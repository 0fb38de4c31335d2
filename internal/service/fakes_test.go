package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"

	"github.com/google/uuid"
)

var utc8 = time.FixedZone("UTC+8", 8*3600)

func at(day, hour int) time.Time {
	return time.Date(2026, time.October, day, hour, 0, 0, 0, utc8)
}

// clock 可调的测试时钟
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

// memStore 内存实现所有存储接口
type memStore struct {
	mu          sync.Mutex
	users       map[string]*model.User
	assessments []*model.Assessment
	assignments []*model.Assignment
	logins      []model.LoginEvent
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*model.User)}
}

func (m *memStore) addUser(u *model.User) *model.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addAssignment(workerID, date string, due time.Time) *model.Assignment {
	a := &model.Assignment{WorkerID: workerID, AssignedDate: date, DueTime: due, Status: model.AssignmentPending}
	a.ID = uuid.NewString()
	m.assignments = append(m.assignments, a)
	return a
}

func (m *memStore) GetWorkerByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, util.ErrWorkerNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (m *memStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLogin = at
	}
	return nil
}

func (m *memStore) FindTeamWorkers(ctx context.Context, teamLeaderID string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		if u.IsWorker() && u.TeamLeaderID != nil && *u.TeamLeaderID == teamLeaderID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetLatestAssessment(ctx context.Context, workerID string) (*model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Assessment
	for _, a := range m.assessments {
		if a.WorkerID == workerID && (latest == nil || a.SubmittedAt.After(latest.SubmittedAt)) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) GetAssessmentForDate(ctx context.Context, workerID, date string) (*model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assessments {
		if a.WorkerID == workerID && a.SubmissionDate == date {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetAssessmentsForWorker(ctx context.Context, workerID string, dr readiness.DateRange) ([]model.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assessment
	for _, a := range m.assessments {
		if a.WorkerID == workerID && dr.Contains(a.SubmissionDate) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) CreateAssessment(ctx context.Context, a *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.assessments {
		if x.WorkerID == a.WorkerID && x.SubmissionDate == a.SubmissionDate {
			return util.ErrAlreadySubmittedToday
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	m.assessments = append(m.assessments, &cp)
	return nil
}

func (m *memStore) UpdateAssessment(ctx context.Context, id string, a *model.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.assessments {
		if x.ID == id {
			x.ReadinessLevel = a.ReadinessLevel
			x.FatigueLevel = a.FatigueLevel
			x.PainDiscomfort = a.PainDiscomfort
			x.PainAreas = a.PainAreas
			x.Mood = a.Mood
			x.Notes = a.Notes
			x.SubmittedAt = a.SubmittedAt
			return nil
		}
	}
	return util.ErrNotFound
}

func (m *memStore) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.assignments {
		if x.WorkerID == a.WorkerID && x.AssignedDate == a.AssignedDate {
			return util.ErrAlreadyAssigned
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	cp := *a
	m.assignments = append(m.assignments, &cp)
	return nil
}

func (m *memStore) GetAssignmentsForWorker(ctx context.Context, workerID string, dr readiness.DateRange) ([]model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assignment
	for _, a := range m.assignments {
		if a.WorkerID == workerID && dr.Contains(a.AssignedDate) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) GetActiveAssignmentForDate(ctx context.Context, workerID, date string) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.WorkerID == workerID && a.AssignedDate == date && a.IsOpen() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkAssignmentCompleted(ctx context.Context, id, assessmentID string, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ID == id && a.IsOpen() {
			a.Status = model.AssignmentCompleted
			t := completedAt
			a.CompletedAt = &t
			a.AssessmentID = &assessmentID
			return nil
		}
	}
	return util.ErrNoActiveAssignment
}

func (m *memStore) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.assignments {
		if a.Status == model.AssignmentPending && a.DueTime.Before(now) {
			a.Status = model.AssignmentOverdue
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetLastSuccessfulLogin(ctx context.Context, workerID string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *time.Time
	for i := range m.logins {
		e := m.logins[i]
		if e.WorkerID == workerID && e.Success && (last == nil || e.Timestamp.After(*last)) {
			ts := e.Timestamp
			last = &ts
		}
	}
	return last, nil
}

func (m *memStore) RecordLogin(ctx context.Context, e *model.LoginEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, *e)
	return nil
}

// memCache 记录失效次数的 KPI 缓存
type memCache struct {
	data        map[string]interface{}
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]interface{})}
}

func (c *memCache) Get(ctx context.Context, workerID, month string, dest interface{}) (bool, error) {
	v, ok := c.data[workerID+":"+month]
	if !ok {
		return false, nil
	}
	*(dest.(*MonthlyKPI)) = *(v.(*MonthlyKPI))
	return true, nil
}

func (c *memCache) Set(ctx context.Context, workerID, month string, value interface{}) error {
	c.data[workerID+":"+month] = value
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, workerID, month string) error {
	delete(c.data, workerID+":"+month)
	c.invalidated = append(c.invalidated, workerID+":"+month)
	return nil
}

type recordingNotifier struct {
	leaders []string
	updates []CycleUpdate
}

func (n *recordingNotifier) NotifyCycleUpdate(ctx context.Context, teamLeaderID string, update CycleUpdate) {
	n.leaders = append(n.leaders, teamLeaderID)
	n.updates = append(n.updates, update)
}

type memStorage struct {
	files map[string][]byte
}

func (s *memStorage) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[filename] = data
	return "/reports/" + filename, nil
}

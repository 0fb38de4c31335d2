package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/service"
	"work_readiness_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGoals struct {
	status    *service.CycleStatus
	submit    func(input service.AssessmentInput) (*service.SubmissionResult, error)
	streak    *service.StreakResult
	err       error
	gotWorker string
}

func (s *stubGoals) GetCycleStatus(ctx context.Context, workerID string) (*service.CycleStatus, error) {
	s.gotWorker = workerID
	return s.status, s.err
}

func (s *stubGoals) HandleSubmission(ctx context.Context, workerID string, input service.AssessmentInput) (*service.SubmissionResult, error) {
	s.gotWorker = workerID
	return s.submit(input)
}

func (s *stubGoals) GetStreak(ctx context.Context, workerID string) (*service.StreakResult, error) {
	s.gotWorker = workerID
	return s.streak, s.err
}

type stubKPI struct {
	gotWorker, gotMonth string
	err                 error
}

func (s *stubKPI) GetWorkerMonthlyKPI(ctx context.Context, workerID, month string) (*service.MonthlyKPI, error) {
	s.gotWorker, s.gotMonth = workerID, month
	if s.err != nil {
		return nil, s.err
	}
	return &service.MonthlyKPI{WorkerID: workerID, KPI: readiness.KPIResult{Score: 72.5, LetterGrade: "B-"}}, nil
}

// withUser 模拟认证中间件写入的 claims
func withUser(id string, role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: id, Role: role})
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func readinessRouter(goals *stubGoals, kpi *stubKPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewReadinessController(goals, kpi)
	g := r.Group("/api/worker", withUser("worker-1", model.Worker))
	g.GET("/cycle", ctrl.GetCycle)
	g.POST("/assessments", ctrl.SubmitAssessment)
	g.GET("/streak", ctrl.GetStreak)
	g.GET("/kpi", ctrl.GetMyKPI)
	return r
}

func TestSubmitAssessmentStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result *service.SubmissionResult
		err    error
		want   int
	}{
		{"created", `{"readinessLevel":"fit","fatigueLevel":2,"mood":"good"}`, &service.SubmissionResult{Day: 1}, nil, http.StatusCreated},
		{"updated in place", `{"readinessLevel":"fit","fatigueLevel":2,"mood":"good"}`, &service.SubmissionResult{Updated: true}, nil, http.StatusOK},
		{"malformed json", `{"readinessLevel":`, nil, nil, http.StatusBadRequest},
		{"validation", `{"readinessLevel":"x"}`, nil, util.NewValidationError("readinessLevel", "must be one of [fit minor not_fit]"), http.StatusBadRequest},
		{"no assignment", `{"readinessLevel":"fit","fatigueLevel":2,"mood":"good"}`, nil, util.ErrNoActiveAssignment, http.StatusConflict},
		{"already submitted", `{"readinessLevel":"fit","fatigueLevel":2,"mood":"good"}`, nil, util.ErrAlreadySubmittedToday, http.StatusConflict},
		{"worker missing", `{"readinessLevel":"fit","fatigueLevel":2,"mood":"good"}`, nil, util.ErrWorkerNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goals := &stubGoals{submit: func(service.AssessmentInput) (*service.SubmissionResult, error) {
				return tt.result, tt.err
			}}
			req := httptest.NewRequest(http.MethodPost, "/api/worker/assessments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			readinessRouter(goals, &stubKPI{}).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSubmitAssessmentValidationFieldsInBody(t *testing.T) {
	goals := &stubGoals{submit: func(service.AssessmentInput) (*service.SubmissionResult, error) {
		return nil, util.NewValidationError("fatigueLevel", "must be at most 5")
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/worker/assessments", strings.NewReader(`{"fatigueLevel":9}`))
	w := httptest.NewRecorder()
	readinessRouter(goals, &stubKPI{}).ServeHTTP(w, req)

	resp := decode(t, w)
	fields, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be at most 5", fields["fatigueLevel"])
}

func TestGetCycleUsesAuthenticatedWorker(t *testing.T) {
	goals := &stubGoals{status: &service.CycleStatus{Cycle: readiness.CycleState{CycleStart: "2026-10-12", CurrentDay: 3, StreakDays: 3}}}
	w := httptest.NewRecorder()
	readinessRouter(goals, &stubKPI{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/worker/cycle", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "worker-1", goals.gotWorker)
	assert.Contains(t, w.Body.String(), `"currentDay":3`)
}

func TestGetMyKPIPassesMonth(t *testing.T) {
	kpi := &stubKPI{}
	w := httptest.NewRecorder()
	readinessRouter(&stubGoals{}, kpi).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/worker/kpi?month=2026-09", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "worker-1", kpi.gotWorker)
	assert.Equal(t, "2026-09", kpi.gotMonth)

	kpi.err = util.ErrInvalidInput
	w = httptest.NewRecorder()
	readinessRouter(&stubGoals{}, kpi).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/worker/kpi?month=bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

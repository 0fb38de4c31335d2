package controller

import (
	"context"
	"work_readiness_backend/internal/service"
	"work_readiness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalTracker interface {
	GetCycleStatus(ctx context.Context, workerID string) (*service.CycleStatus, error)
	HandleSubmission(ctx context.Context, workerID string, input service.AssessmentInput) (*service.SubmissionResult, error)
	GetStreak(ctx context.Context, workerID string) (*service.StreakResult, error)
}

type MonthlyKPIProvider interface {
	GetWorkerMonthlyKPI(ctx context.Context, workerID, month string) (*service.MonthlyKPI, error)
}

// ReadinessController 工作人员自己的周期、提交和 KPI
type ReadinessController struct {
	Goals GoalTracker
	KPI   MonthlyKPIProvider
}

func NewReadinessController(goals GoalTracker, kpi MonthlyKPIProvider) *ReadinessController {
	return &ReadinessController{Goals: goals, KPI: kpi}
}

// GetCycle godoc
// @Summary 当前周期状态
// @Tags 准备度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.CycleStatus}
// @Router /api/worker/cycle [get]
func (c *ReadinessController) GetCycle(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	status, err := c.Goals.GetCycleStatus(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// SubmitAssessment godoc
// @Summary 提交每日准备度评估
// @Description 同一天重复提交会原地更新
// @Tags 准备度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AssessmentInput true "评估内容"
// @Success 201 {object} util.Response{data=service.SubmissionResult}
// @Failure 400 {object} util.Response "校验失败"
// @Failure 409 {object} util.Response "没有待完成任务或今日已提交"
// @Router /api/worker/assessments [post]
func (c *ReadinessController) SubmitAssessment(ctx *gin.Context) {
	var input service.AssessmentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	res, err := c.Goals.HandleSubmission(ctx.Request.Context(), claims.UserID, input)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if res.Updated {
		util.Success(ctx, res)
		return
	}
	util.Created(ctx, res)
}

// GetStreak godoc
// @Summary 连续提交天数
// @Tags 准备度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StreakResult}
// @Router /api/worker/streak [get]
func (c *ReadinessController) GetStreak(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	streak, err := c.Goals.GetStreak(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, streak)
}

// GetMyKPI godoc
// @Summary 本人月度 KPI
// @Tags KPI
// @Produce json
// @Security ApiKeyAuth
// @Param month query string false "YYYY-MM，默认当月"
// @Success 200 {object} util.Response{data=service.MonthlyKPI}
// @Failure 400 {object} util.Response "月份格式错误"
// @Router /api/worker/kpi [get]
func (c *ReadinessController) GetMyKPI(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	kpi, err := c.KPI.GetWorkerMonthlyKPI(ctx.Request.Context(), claims.UserID, ctx.Query("month"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, kpi)
}

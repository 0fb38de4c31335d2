package controller

import (
	"context"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/service"
	"work_readiness_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TeamReporter interface {
	ExportTeamMonthlyReport(ctx context.Context, teamLeaderID, month string) (*service.TeamKPIReport, error)
}

// TeamController 组长查看团队 KPI 和实时周期变化
type AssignmentScheduler interface {
	ScheduleTeamAssignments(ctx context.Context, teamLeaderID string, input service.ScheduleInput) (*service.ScheduleResult, error)
}

type TeamController struct {
	Workers   service.WorkerStore
	KPI       MonthlyKPIProvider
	Reports   TeamReporter
	Scheduler AssignmentScheduler
	Hub       *service.LiveUpdateHub
}

func NewTeamController(workers service.WorkerStore, kpi MonthlyKPIProvider, reports TeamReporter, scheduler AssignmentScheduler, hub *service.LiveUpdateHub) *TeamController {
	return &TeamController{Workers: workers, KPI: kpi, Reports: reports, Scheduler: scheduler, Hub: hub}
}

// GetWorkerKPI godoc
// @Summary 工作人员月度 KPI
// @Description 组长只能查看自己团队的工作人员
// @Tags KPI
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "工作人员 ID"
// @Param month query string false "YYYY-MM，默认当月"
// @Success 200 {object} util.Response{data=service.MonthlyKPI}
// @Failure 403 {object} util.Response "不是本团队成员"
// @Failure 404 {object} util.Response "工作人员不存在"
// @Router /api/team-leader/workers/{id}/kpi [get]
func (c *TeamController) GetWorkerKPI(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	workerID := ctx.Param("id")

	worker, err := c.Workers.GetWorkerByID(ctx.Request.Context(), workerID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if claims.Role == model.TeamLeader && (worker.TeamLeaderID == nil || *worker.TeamLeaderID != claims.UserID) {
		util.Forbidden(ctx)
		return
	}

	kpi, err := c.KPI.GetWorkerMonthlyKPI(ctx.Request.Context(), workerID, ctx.Query("month"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, kpi)
}

// ScheduleAssignments godoc
// @Summary 为团队安排某天的评估任务
// @Description 已安排过的工作人员会被跳过
// @Tags 任务
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ScheduleInput true "日期和截止时间"
// @Success 201 {object} util.Response{data=service.ScheduleResult}
// @Failure 400 {object} util.Response "日期格式错误或早于今天"
// @Router /api/team-leader/assignments [post]
func (c *TeamController) ScheduleAssignments(ctx *gin.Context) {
	var input service.ScheduleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	res, err := c.Scheduler.ScheduleTeamAssignments(ctx.Request.Context(), claims.UserID, input)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// ExportReport godoc
// @Summary 导出团队月度 KPI 报表
// @Tags KPI
// @Produce json
// @Security ApiKeyAuth
// @Param month query string false "YYYY-MM，默认当月"
// @Success 201 {object} util.Response{data=service.TeamKPIReport}
// @Router /api/team-leader/reports/kpi [post]
func (c *TeamController) ExportReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	report, err := c.Reports.ExportTeamMonthlyReport(ctx.Request.Context(), claims.UserID, ctx.Query("month"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, report)
}

// Live godoc
// @Summary 订阅团队周期实时变化
// @Description websocket，消息类型 CYCLE_UPDATE
// @Tags KPI
// @Security ApiKeyAuth
// @Param token query string false "浏览器无法设置请求头时使用"
// @Router /api/team-leader/live [get]
func (c *TeamController) Live(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	service.ServeLive(c.Hub, ctx.Writer, ctx.Request, claims.UserID)
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"work_readiness_backend/internal/config"
	"work_readiness_backend/internal/model"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"
	"work_readiness_backend/pkg/logger"
	"work_readiness_backend/pkg/monitoring"
	"work_readiness_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GoalTrackingOptions 可在运行时通过配置热更新
type GoalTrackingOptions struct {
	CountWeekends      bool
	AllowResubmission  bool
	StreakWindowDays   int
	ConsecutiveFormula readiness.ConsecutiveFormula
}

func GoalTrackingOptionsFromConfig(cfg config.ReadinessConfig) GoalTrackingOptions {
	window := cfg.StreakWindowDays
	if window <= 0 {
		window = 90
	}
	return GoalTrackingOptions{
		CountWeekends:      cfg.CountWeekends,
		AllowResubmission:  cfg.AllowResubmission,
		StreakWindowDays:   window,
		ConsecutiveFormula: readiness.ConsecutiveFormula(cfg.ConsecutiveFormula),
	}
}

// GoalTrackingService 编排登录与提交时的周期计算，本身不含算法
type GoalTrackingService struct {
	Workers     WorkerStore
	Assessments AssessmentStore
	Assignments AssignmentStore
	Logins      LoginStore
	Tx          Transactor
	Calendar    *readiness.Calendar

	// 可选
	Cache    KPICache
	Notifier CycleNotifier

	mu   sync.RWMutex
	opts GoalTrackingOptions
}

func NewGoalTrackingService(
	workers WorkerStore,
	assessments AssessmentStore,
	assignments AssignmentStore,
	logins LoginStore,
	tx Transactor,
	calendar *readiness.Calendar,
	opts GoalTrackingOptions,
) *GoalTrackingService {
	if tx == nil {
		tx = noopTx{}
	}
	return &GoalTrackingService{
		Workers:     workers,
		Assessments: assessments,
		Assignments: assignments,
		Logins:      logins,
		Tx:          tx,
		Calendar:    calendar,
		opts:        opts,
	}
}

func (s *GoalTrackingService) Options() GoalTrackingOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

func (s *GoalTrackingService) SetOptions(opts GoalTrackingOptions) {
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
}

// LoginResult 登录时返回给客户端的周期信息
type LoginResult struct {
	Message          string                    `json:"message"`
	Cycle            readiness.CycleState      `json:"cycle"`
	Day              int                       `json:"day"`
	Transition       readiness.LoginTransition `json:"transition"`
	IsFirstTimeLogin bool                      `json:"isFirstTimeLogin"`
	CycleComplete    bool                      `json:"cycleComplete"`
}

// HandleLogin 必须在记录本次登录之前调用，lastLogin 取的是上一次成功登录
func (s *GoalTrackingService) HandleLogin(ctx context.Context, workerID string) (*LoginResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "GoalTrackingService.HandleLogin")
	defer span.End()
	span.SetAttributes(attribute.String("worker.id", workerID))

	worker, err := s.Workers.GetWorkerByID(ctx, workerID)
	if err != nil {
		return nil, err
	}

	facts := readiness.LoginFacts{IsWorker: worker.IsWorker()}
	if facts.IsWorker {
		latest, err := s.Assessments.GetLatestAssessment(ctx, workerID)
		if err != nil {
			return nil, fmt.Errorf("load latest assessment: %w", err)
		}
		lastLogin, err := s.Logins.GetLastSuccessfulLogin(ctx, workerID)
		if err != nil {
			return nil, fmt.Errorf("load last login: %w", err)
		}
		facts.Latest = cycleRecordOf(latest)
		facts.LastLogin = lastLogin
	}

	outcome := s.Calendar.OnLogin(facts)
	monitoring.CycleTransitionCounter.WithLabelValues("login_" + string(outcome.Transition)).Inc()

	if outcome.Transition == readiness.LoginReset {
		logger.Log.Info("Cycle reset on login",
			zap.String("workerId", workerID),
			zap.String("cycleStart", outcome.State.CycleStart))
		s.notify(ctx, worker, "login", string(outcome.Transition), outcome.State)
	}

	return &LoginResult{
		Message:          readiness.LoginMessage(outcome),
		Cycle:            outcome.State,
		Day:              outcome.State.CurrentDay,
		Transition:       outcome.Transition,
		IsFirstTimeLogin: outcome.IsFirstTimeLogin,
		CycleComplete:    outcome.State.Completed,
	}, nil
}

// AssessmentInput 工作人员提交的每日自评
type AssessmentInput struct {
	ReadinessLevel string   `json:"readinessLevel" validate:"required,oneof=fit minor not_fit"`
	FatigueLevel   int      `json:"fatigueLevel" validate:"required,min=1,max=5"`
	PainDiscomfort bool     `json:"painDiscomfort"`
	PainAreas      []string `json:"painAreas" validate:"omitempty,max=20,dive,required,max=50"`
	Mood           string   `json:"mood" validate:"required,oneof=excellent good neutral poor very_poor"`
	Notes          string   `json:"notes" validate:"max=2000"`
}

// SubmissionResult 提交后的周期状态和连续天数 KPI
type SubmissionResult struct {
	Message       string                         `json:"message"`
	Cycle         readiness.CycleState           `json:"cycle"`
	Day           int                            `json:"day"`
	CycleComplete bool                           `json:"cycleComplete"`
	Transition    readiness.SubmissionTransition `json:"transition"`
	KPI           readiness.ConsecutiveKPI       `json:"kpi"`
	Updated       bool                           `json:"updated"`
	Late          bool                           `json:"late"`
	Assessment    *model.Assessment              `json:"assessment"`
}

// HandleSubmission 校验输入，推进周期，写入评估并完成当天任务。
// 同日重复提交按配置原地更新或返回 ErrAlreadySubmittedToday。
func (s *GoalTrackingService) HandleSubmission(ctx context.Context, workerID string, input AssessmentInput) (res *SubmissionResult, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "GoalTrackingService.HandleSubmission")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()
	span.SetAttributes(attribute.String("worker.id", workerID))

	if err := util.ValidateStruct(input); err != nil {
		monitoring.SubmissionCounter.WithLabelValues("invalid").Inc()
		return nil, err
	}

	worker, err := s.Workers.GetWorkerByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.IsWorker() {
		return nil, util.ErrPermissionDenied
	}

	opts := s.Options()
	now := s.Calendar.Now()
	today := s.Calendar.DateKey(now)

	var (
		outcome    readiness.SubmissionOutcome
		assessment *model.Assessment
		updated    bool
		late       bool
	)

	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.Assessments.GetAssessmentForDate(ctx, workerID, today)
		if err != nil {
			return err
		}

		if existing != nil {
			if !opts.AllowResubmission {
				return util.ErrAlreadySubmittedToday
			}
			applyInput(existing, input)
			existing.SubmittedAt = now
			if err := s.Assessments.UpdateAssessment(ctx, existing.ID, existing); err != nil {
				return err
			}
			outcome = readiness.SubmissionOutcome{
				Transition: readiness.SubmissionUnchanged,
				State:      readiness.DeriveState(cycleRecordOf(existing)),
			}
			assessment = existing
			updated = true
			return nil
		}

		assignment, err := s.Assignments.GetActiveAssignmentForDate(ctx, workerID, today)
		if err != nil {
			return err
		}
		if assignment == nil {
			return util.ErrNoActiveAssignment
		}

		latest, err := s.Assessments.GetLatestAssessment(ctx, workerID)
		if err != nil {
			return err
		}
		outcome = s.Calendar.OnSubmission(cycleRecordOf(latest))

		a := &model.Assessment{
			WorkerID:       workerID,
			Team:           worker.Team,
			SubmittedAt:    now,
			SubmissionDate: today,
			CycleStart:     outcome.State.CycleStart,
			CycleDay:       outcome.State.CurrentDay,
			StreakDays:     outcome.State.StreakDays,
			CycleCompleted: outcome.State.Completed,
		}
		if worker.TeamLeaderID != nil {
			a.TeamLeaderID = *worker.TeamLeaderID
		}
		applyInput(a, input)

		if err := s.Assessments.CreateAssessment(ctx, a); err != nil {
			return err
		}
		if err := s.Assignments.MarkAssignmentCompleted(ctx, assignment.ID, a.ID, now); err != nil {
			return fmt.Errorf("complete assignment %s: %w", assignment.ID, err)
		}
		assessment = a
		late = now.After(assignment.DueTime)
		return nil
	})
	if err != nil {
		monitoring.SubmissionCounter.WithLabelValues("rejected").Inc()
		return nil, err
	}

	switch {
	case updated:
		monitoring.SubmissionCounter.WithLabelValues("updated").Inc()
	case late:
		monitoring.SubmissionCounter.WithLabelValues("late").Inc()
	default:
		monitoring.SubmissionCounter.WithLabelValues("on_time").Inc()
	}
	monitoring.CycleTransitionCounter.WithLabelValues("submission_" + string(outcome.Transition)).Inc()

	if s.Cache != nil {
		month := now.In(s.Calendar.Location()).Format(readiness.MonthKeyFormat)
		if err := s.Cache.Invalidate(ctx, workerID, month); err != nil {
			logger.Log.Warn("Failed to invalidate KPI cache", zap.String("workerId", workerID), zap.Error(err))
		}
	}
	if !updated {
		s.notify(ctx, worker, "submission", string(outcome.Transition), outcome.State)
	}

	logger.Log.Info("Assessment submitted",
		zap.String("workerId", workerID),
		zap.String("transition", string(outcome.Transition)),
		zap.Int("cycleDay", outcome.State.CurrentDay),
		zap.Int("streakDays", outcome.State.StreakDays),
		zap.Bool("late", late))

	return &SubmissionResult{
		Message:       readiness.SubmissionMessage(outcome),
		Cycle:         outcome.State,
		Day:           outcome.State.CurrentDay,
		CycleComplete: outcome.State.Completed,
		Transition:    outcome.Transition,
		KPI:           readiness.ScoreConsecutiveDays(opts.ConsecutiveFormula, outcome.State.StreakDays),
		Updated:       updated,
		Late:          late,
		Assessment:    assessment,
	}, nil
}

// StreakResult 连续提交天数
type StreakResult struct {
	readiness.Streak
	CountWeekends bool                `json:"countWeekends"`
	Window        readiness.DateRange `json:"window"`
}

// GetStreak 计算最近 StreakWindowDays 天内的连续提交
func (s *GoalTrackingService) GetStreak(ctx context.Context, workerID string) (*StreakResult, error) {
	if _, err := s.Workers.GetWorkerByID(ctx, workerID); err != nil {
		return nil, err
	}
	opts := s.Options()
	window := s.Calendar.TrailingRange(opts.StreakWindowDays)

	list, err := s.Assessments.GetAssessmentsForWorker(ctx, workerID, window)
	if err != nil {
		return nil, err
	}
	stamps := make([]time.Time, 0, len(list))
	for _, a := range list {
		stamps = append(stamps, a.SubmittedAt)
	}

	streak := s.Calendar.CalculateStreak(stamps, readiness.StreakOptions{CountWeekends: opts.CountWeekends})
	return &StreakResult{Streak: streak, CountWeekends: opts.CountWeekends, Window: window}, nil
}

// CycleStatus 当前周期状态及今日提交情况
type CycleStatus struct {
	Cycle               readiness.CycleState `json:"cycle"`
	Today               string               `json:"today"`
	SubmittedToday      bool                 `json:"submittedToday"`
	HasActiveAssignment bool                 `json:"hasActiveAssignment"`
}

func (s *GoalTrackingService) GetCycleStatus(ctx context.Context, workerID string) (*CycleStatus, error) {
	if _, err := s.Workers.GetWorkerByID(ctx, workerID); err != nil {
		return nil, err
	}
	today := s.Calendar.TodayKey()

	latest, err := s.Assessments.GetLatestAssessment(ctx, workerID)
	if err != nil {
		return nil, err
	}
	active, err := s.Assignments.GetActiveAssignmentForDate(ctx, workerID, today)
	if err != nil {
		return nil, err
	}

	return &CycleStatus{
		Cycle:               readiness.DeriveState(cycleRecordOf(latest)),
		Today:               today,
		SubmittedToday:      latest != nil && latest.SubmissionDate == today,
		HasActiveAssignment: active != nil,
	}, nil
}

func (s *GoalTrackingService) notify(ctx context.Context, worker *model.User, event, transition string, state readiness.CycleState) {
	if s.Notifier == nil || worker.TeamLeaderID == nil {
		return
	}
	s.Notifier.NotifyCycleUpdate(ctx, *worker.TeamLeaderID, CycleUpdate{
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Event:      event,
		Transition: transition,
		Cycle:      state,
		At:         s.Calendar.Now(),
	})
}

func cycleRecordOf(a *model.Assessment) *readiness.CycleRecord {
	if a == nil {
		return nil
	}
	return &readiness.CycleRecord{
		CycleStart:  a.CycleStart,
		CycleDay:    a.CycleDay,
		StreakDays:  a.StreakDays,
		Completed:   a.CycleCompleted,
		SubmittedAt: a.SubmittedAt,
	}
}

func applyInput(a *model.Assessment, in AssessmentInput) {
	a.ReadinessLevel = model.ReadinessLevel(in.ReadinessLevel)
	a.FatigueLevel = in.FatigueLevel
	a.PainDiscomfort = in.PainDiscomfort
	a.PainAreas = in.PainAreas
	a.Mood = in.Mood
	a.Notes = in.Notes
}

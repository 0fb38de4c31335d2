package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"work_readiness_backend/internal/config"
	"work_readiness_backend/internal/controller"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/repository"
	"work_readiness_backend/internal/service"
	"work_readiness_backend/pkg/configwatcher"
	"work_readiness_backend/pkg/database"
	"work_readiness_backend/pkg/logger"
	"work_readiness_backend/pkg/monitoring"
	"work_readiness_backend/pkg/security"
	"work_readiness_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.IPRateLimiter
	tracer          *sdktrace.TracerProvider
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	assessment *repository.AssessmentRepository
	assignment *repository.AssignmentRepository
	loginEvent *repository.LoginEventRepository
	tx         *repository.TxManager
	kpiCache   *repository.KPICache
}

type services struct {
	calendar    *readiness.Calendar
	goals       *service.GoalTrackingService
	kpi         *service.WorkerKPIService
	reports     *service.KPIReportService
	assignments *service.AssignmentService
	auth        *service.AuthService
	storage     *service.StorageService
	hub         *service.LiveUpdateHub
}

type controllers struct {
	auth      *controller.AuthController
	readiness *controller.ReadinessController
	team      *controller.TeamController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		assignment: repository.NewAssignmentRepository(db),
		loginEvent: repository.NewLoginEventRepository(db),
		tx:         repository.NewTxManager(db),
		kpiCache:   repository.NewKPICache(rdb, cfg.Readiness.KPICacheTTL()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}
	opts := service.GoalTrackingOptionsFromConfig(cfg.Readiness)

	s.calendar = readiness.NewCalendar(cfg.Readiness.TimezoneOffsetHours)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.hub = service.NewLiveUpdateHub(rdb)

	s.goals = service.NewGoalTrackingService(
		repos.user,
		repos.assessment,
		repos.assignment,
		repos.loginEvent,
		repos.tx,
		s.calendar,
		opts,
	)
	s.goals.Cache = repos.kpiCache
	s.goals.Notifier = s.hub

	s.kpi = service.NewWorkerKPIService(repos.user, repos.assessment, repos.assignment, s.calendar, repos.kpiCache, opts)
	s.kpi.SetOptions(opts, cfg.Readiness.RecentAssignments)
	s.reports = service.NewKPIReportService(repos.user, s.kpi, s.storage, s.calendar)
	s.assignments = service.NewAssignmentService(repos.assignment, repos.user, s.calendar)
	s.assignments.Cache = repos.kpiCache
	s.auth = service.NewAuthService(repos.user, repos.loginEvent, s.goals, cfg)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		readiness: controller.NewReadinessController(s.goals, s.kpi),
		team:      controller.NewTeamController(repos.user, s.kpi, s.reports, s.assignments, s.hub),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerConfigCallbacks 配置热更新时同步限流和周期计算参数，时区变更需要重启
func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.Update(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		opts := service.GoalTrackingOptionsFromConfig(cfg.Readiness)
		s.goals.SetOptions(opts)
		s.kpi.SetOptions(opts, cfg.Readiness.RecentAssignments)
		if cfg.Readiness.TimezoneOffsetHours != a.Config.Readiness.TimezoneOffsetHours {
			logger.Log.Warn("Timezone change requires a restart",
				zap.Int("current", a.Config.Readiness.TimezoneOffsetHours),
				zap.Int("requested", cfg.Readiness.TimezoneOffsetHours))
		}
	})
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	go s.hub.Run(ctx)
	go a.limiter.Cleanup(ctx)

	go func() {
		interval := time.Duration(a.Config.Readiness.OverdueCheckInterval) * time.Second
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.assignments.MarkOverdueAssignments(ctx); err != nil {
					logger.Log.Error("Mark overdue assignments failed", zap.Error(err))
				}
			}
		}
	}()

	if a.Config.ConfigDir != "" {
		go func() {
			if err := configwatcher.Watch(ctx, a.Config.ConfigDir, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != "release"
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis 只用于缓存和多实例推送，不可用时降级运行
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, running without KPI cache and cross-instance live updates", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("work-readiness", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if root, ok := services.storage.LocalRoot(); ok {
		router.Static("/reports", root)
	}

	app.registerConfigCallbacks(services)

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.cancel != nil {
		a.cancel()
	}
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}

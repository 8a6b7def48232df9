package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/controller"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/judge"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/repository"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/service"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/worker"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/database"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/logger"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/monitoring"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/security"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	queue queue.Queue
	pool  *worker.JudgePool
}

type repositories struct {
	challenge  *repository.ChallengeRepository
	submission *repository.SubmissionRepository
	judgeRun   *repository.JudgeRunRepository
	proctoring *repository.ProctoringRepository
	trust      *repository.TrustScoreRepository
	work       *repository.WorkExperienceRepository
	user       *repository.UserRepository
}

type services struct {
	auth       *service.AuthService
	submission *service.SubmissionService
	judge      *service.JudgeService
	trust      *service.TrustService
}

type controllers struct {
	auth       *controller.AuthController
	submission *controller.SubmissionController
	trust      *controller.TrustController
	queue      *controller.QueueController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		challenge:  repository.NewChallengeRepository(db),
		submission: repository.NewSubmissionRepository(db),
		judgeRun:   repository.NewJudgeRunRepository(db),
		proctoring: repository.NewProctoringRepository(db),
		trust:      repository.NewTrustScoreRepository(db),
		work:       repository.NewWorkExperienceRepository(db),
		user:       repository.NewUserRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, runner judge.Runner, q queue.Queue) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.trust = service.NewTrustService(repos.submission, repos.work, repos.trust, cfg.Scoring)
	s.judge = service.NewJudgeService(
		repos.challenge,
		repos.proctoring,
		repos.submission,
		repos.judgeRun,
		runner,
		s.trust,
		cfg.Scoring,
		cfg.Judge,
	)
	s.submission = service.NewSubmissionService(
		repos.challenge,
		repos.proctoring,
		repos.submission,
		repos.judgeRun,
		q,
		cfg,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, q queue.Queue, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		submission: controller.NewSubmissionController(s.submission),
		trust:      controller.NewTrustController(s.trust, repos.trust),
		queue:      controller.NewQueueController(q),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	q := queue.NewRedisQueue(rdb)
	app.queue = q

	runner := judge.NewJudge0Client(cfg.Judge0)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, runner, q)
	controllers := app.initControllers(services, repos, q, db, rdb)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("yoscore-pipeline", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.pool = worker.NewJudgePool(q, services.judge, repos.submission, cfg.Judge)
	app.pool.Start()

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop taking new jobs and let in-flight judge runs finish.
	if a.pool != nil {
		a.pool.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

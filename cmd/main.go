// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"go_hifz_keep/internal/config"
	"go_hifz_keep/internal/handlers"
	"go_hifz_keep/internal/metrics"
	"go_hifz_keep/internal/middleware"
	"go_hifz_keep/internal/platform/redis"
	"go_hifz_keep/internal/repository"
	"go_hifz_keep/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gorm.io/gorm"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	configDir := os.Getenv("APP_CONFIG_DIR")
	if configDir == "" {
		configDir = "../configs"
	}
	if err := config.LoadConfig(configDir); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(tempLogger)
	slog.SetDefault(logger)
	log.Println("Log Config Loaded...")

	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	// 1. Database (GORM)
	db, err := repository.NewDB(config.Cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// 2. Redis (任意)
	redisClient, err := redis.New(config.Cfg.Redis)
	if err != nil {
		slog.Error("Error initializing redis", slog.Any("error", err))
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		slog.Info("Redis connected")
	}

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// 4. Dependency Injection
	repos := repository.NewGormRepositories()

	trackerService := service.NewTrackerService(db, repos, service.NewHeuristicReadinessEvaluator(), &config.Cfg, appMetrics)
	studentService := service.NewStudentService(db, repos.Student)
	teacherService := service.NewTeacherService(db, repos.Teacher)
	curriculumService := service.NewCurriculumService(db, repos.Curriculum)
	enrollmentService := service.NewEnrollmentService(db, repos)
	recitationService := service.NewRecitationService(db, repos)
	notifier := service.NewNotifier(&config.Cfg, appMetrics)

	var deduper service.ReminderDeduper
	if redisClient != nil {
		deduper = redisClient
	}
	reminderService := service.NewReminderService(db, repos, trackerService, notifier, deduper, &config.Cfg, appMetrics)
	scheduler, err := service.StartReminderScheduler(&config.Cfg, reminderService, logger)
	if err != nil {
		slog.Error("Error starting reminder scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	r := newRouter(routerDeps{
		db:          db,
		redisClient: redisClient,
		registry:    registry,
		metrics:     appMetrics,
		logger:      logger,
		teacher:     handlers.NewTeacherHandler(teacherService, logger),
		student:     handlers.NewStudentHandler(studentService, logger),
		curriculum:  handlers.NewCurriculumHandler(curriculumService, logger),
		enrollment:  handlers.NewEnrollmentHandler(enrollmentService, logger),
		tracker:     handlers.NewTrackerHandler(trackerService, studentService, notifier, logger),
		recitation:  handlers.NewRecitationHandler(recitationService, logger),
	})

	// 5. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	if scheduler != nil {
		// 実行中のジョブの終了を待つ
		<-scheduler.Stop().Done()
		slog.Info("Reminder scheduler stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}

// newLogger は設定に基づいて slog ロガーを作る。APP_ENV=dev なら tint
func newLogger(tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}

type routerDeps struct {
	db          *gorm.DB
	redisClient *redis.Client
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	logger      *slog.Logger

	teacher    *handlers.TeacherHandler
	student    *handlers.StudentHandler
	curriculum *handlers.CurriculumHandler
	enrollment *handlers.EnrollmentHandler
	tracker    *handlers.TrackerHandler
	recitation *handlers.RecitationHandler
}

func newRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(d.logger))
	r.Use(middleware.NewMetricsMiddleware(d.metrics))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if config.Cfg.Auth.Enabled {
				slog.Info("Applying JWT authentication middleware")
				r.Use(middleware.JWTAuthMiddleware(&config.Cfg))
			} else {
				slog.Warn("Authentication disabled, using X-Teacher-ID header (development only)")
				r.Use(middleware.DevTeacherContextMiddleware)
			}

			r.Route("/teachers", func(r chi.Router) {
				r.Post("/", d.teacher.PostTeacher)
				r.Get("/{teacher_id}", d.teacher.GetTeacher)
			})

			r.Route("/curricula", func(r chi.Router) {
				r.Post("/", d.curriculum.PostCurriculum)
				r.Get("/", d.curriculum.GetCurricula)
				r.Get("/{curriculum_id}", d.curriculum.GetCurriculum)
			})

			r.Route("/students", func(r chi.Router) {
				r.Post("/", d.student.PostStudent)
				r.Get("/", d.student.GetStudents)
				r.Route("/{student_id}", func(r chi.Router) {
					r.Get("/", d.student.GetStudent)
					r.Delete("/", d.student.DeleteStudent)

					r.Post("/enrollments", d.enrollment.PostEnrollment)
					r.Get("/enrollment", d.enrollment.GetEnrollment)

					r.Get("/daily-curriculum", d.tracker.GetDailyCurriculum)
					r.Post("/recitations", d.tracker.PostRecitation)
					r.Get("/recitations", d.recitation.GetStudentRecitations)
					r.Get("/progression-readiness", d.tracker.GetProgressionReadiness)
				})
			})

			r.Route("/recitation-sessions/{session_id}", func(r chi.Router) {
				r.Get("/", d.recitation.GetRecitationSession)
				r.Patch("/", d.recitation.PatchRecitationSession)
				r.Delete("/", d.recitation.DeleteRecitationSession)
				r.Post("/errors", d.recitation.PostRecitationErrors)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := d.db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if d.redisClient != nil {
			if err := d.redisClient.Health(ctx); err != nil {
				slog.ErrorContext(ctx, "Health check failed: could not ping redis", slog.Any("error", err))
				http.Error(w, "Health check failed", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/config"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/email"
	appointmenthandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/appointment"
	authhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/auth"
	billinghandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/billing"
	dashboardhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/dashboard"
	doctorhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/doctor"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/health"
	medicinehandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/medicine"
	patienthandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/patient"
	prescriptionhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/prescription"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/prometheus"
	reporthandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/report"
	staffhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/staff"
	userhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/user"
	wardhandler "github.com/keshav-rathi-0/Medilink-sub001/internal/handler/ward"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/middleware"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/postgres"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/router"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/appointment"
	authservice "github.com/keshav-rathi-0/Medilink-sub001/internal/service/auth"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/billing"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/dashboard"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/doctor"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/event"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/medicine"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/patient"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/prescription"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/rbac"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/report"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/staff"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/user"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/service/ward"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/auth"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/circuitbreaker"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/security"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/tracing"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if migrate {
		n, err := postgres.NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Int("applied", n).Msg("migrations complete")
	}

	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("redis url: %w", err)
	}
	rdb := goredis.NewClient(redisOpts)
	defer rdb.Close()

	zl := infraLogger(cfg)
	defer func() { _ = zl.Sync() }()

	m := metrics.NewMetrics("medilink", nil)
	engine, err := buildRouter(cfg, db, rdb, m, email.NewService(cfg.SMTP,
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultSettings("smtp"), zl), zl))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited properly")
	return nil
}

func buildRouter(cfg *config.Config, db *sqlx.DB, rdb *goredis.Client, m *metrics.Metrics, mailer email.Service) (*router.Router, error) {
	base := postgres.NewBaseRepository(db)
	tx := postgres.NewTransactor(db)

	userRepo := postgres.NewUserRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	staffRepo := postgres.NewStaffRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	wardRepo := postgres.NewWardRepository(base)
	medicineRepo := postgres.NewMedicineRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	billingRepo := postgres.NewBillingRepository(base)
	counterRepo := postgres.NewCounterRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	events := event.NewService(outboxRepo)
	rbacSvc := rbac.NewService(nil)
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiry,
		Issuer: cfg.JWT.Issuer,
	})
	authSvc := authservice.NewService(userRepo, jwtSvc, security.NewBcryptHasher(0), mailer)
	medicineSvc := medicine.NewService(tx, medicineRepo, events, m)

	authMiddleware := middleware.NewAuthMiddleware(authSvc, authSvc, rbacSvc)

	handlers := router.Handlers{
		Auth:     authhandler.NewHandler(authSvc, rbacSvc),
		Users:    userhandler.NewHandler(user.NewService(userRepo)),
		Doctors:  doctorhandler.NewHandler(doctor.NewService(doctorRepo, userRepo)),
		Patients: patienthandler.NewHandler(patient.NewService(tx, patientRepo, userRepo)),
		Staff:    staffhandler.NewHandler(staff.NewService(tx, staffRepo, userRepo, counterRepo)),
		Appointments: appointmenthandler.NewHandler(appointment.NewService(
			tx, appointmentRepo, patientRepo, doctorRepo, counterRepo, events, m)),
		Wards:     wardhandler.NewHandler(ward.NewService(tx, wardRepo, patientRepo, events, m)),
		Medicines: medicinehandler.NewHandler(medicineSvc),
		Prescriptions: prescriptionhandler.NewHandler(prescription.NewService(prescription.Deps{
			Tx:          tx,
			Repo:        prescriptionRepo,
			Patients:    patientRepo,
			Doctors:     doctorRepo,
			Medicines:   medicineRepo,
			Counters:    counterRepo,
			MedicineSvc: medicineSvc,
			Events:      events,
			Metrics:     m,
		})),
		Billing: billinghandler.NewHandler(billing.NewService(tx, billingRepo, patientRepo, counterRepo, events, m)),
		Reports: reporthandler.NewHandler(report.NewService(billingRepo, appointmentRepo, wardRepo, medicineRepo)),
		Dashboards: dashboardhandler.NewHandler(dashboard.NewService(dashboard.Repositories{
			Patients:      patientRepo,
			Doctors:       doctorRepo,
			Staff:         staffRepo,
			Appointments:  appointmentRepo,
			Wards:         wardRepo,
			Medicines:     medicineRepo,
			Prescriptions: prescriptionRepo,
			Bills:         billingRepo,
		})),
		Health: health.NewHandler(map[string]health.Check{
			"database": db.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Metrics: prometheus.New(nil),
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Security.AllowedOrigins
	}
	sizeCfg := middleware.DefaultSizeLimitConfig()
	if cfg.Server.MaxBodyBytes > 0 {
		sizeCfg.MaxBodySize = cfg.Server.MaxBodyBytes
	}
	timeoutCfg := middleware.DefaultTimeoutConfig()
	if cfg.Server.RequestTimeout > 0 {
		timeoutCfg.Duration = cfg.Server.RequestTimeout
	}
	limiterCfg := middleware.DefaultRateLimiterConfig()
	limiterCfg.Rate = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	limiterCfg.Burst = cfg.RateLimit.Burst

	return router.New(router.Config{
		ServiceName:      cfg.Tracing.ServiceName,
		Release:          !cfg.IsDevelopment(),
		Tracing:          cfg.Tracing.Enabled,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        limiterCfg,
		CORS:             corsCfg,
		Security:         middleware.DefaultSecurityConfig(),
		SizeLimit:        sizeCfg,
		Timeout:          timeoutCfg,
	}, authMiddleware, m, handlers)
}

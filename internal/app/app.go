// Package app wires configuration into stores, services and servers. It is
// shared by the server binary and the operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"constructedge/internal/config"
	"constructedge/internal/lock"
	"constructedge/internal/notify"
	"constructedge/internal/otp"
	"constructedge/internal/repository"
	"constructedge/internal/service"
	"constructedge/internal/utils"
	"constructedge/internal/utils/blacklist"
	"constructedge/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultRedisAddr = "localhost:6379"

type App struct {
	Config config.Config
	DB     *gorm.DB
	// Redis is nil when neither locks nor OTP codes are kept in Redis.
	Redis *redis.Client
	Store *repository.Store

	Identity   *service.IdentityService
	Auth       *service.AuthService
	OTP        *service.OTPService
	Tasks      *service.TaskService
	Reconciler *service.Reconciler
	Projects   *service.ProjectService
	Employees  *service.EmployeeService
	Directory  *service.DirectoryService
	Dashboard  *service.DashboardService
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := config.OpenDatabase(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	store := repository.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{Config: cfg, DB: db, Store: store}

	if needsRedis(cfg) {
		addr := cfg.Redis.Addr
		if addr == "" {
			addr = defaultRedisAddr
		}
		a.Redis = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.Redis.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
	}

	codec, err := utils.NewPasswordCodec(cfg.Auth.PasswordCodec)
	if err != nil {
		return nil, err
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.LockBackend == "redis" {
		locker = lock.NewRedisLocker(a.Redis, "constructedge:lock:project:")
	}

	var otpStore otp.Store = otp.NewMemoryStore(cfg.OTP.Capacity, cfg.OTP.TTL)
	if cfg.OTP.Store == "redis" {
		otpStore = otp.NewRedisStore(a.Redis)
	}

	var bl blacklist.Blacklist
	if a.Redis != nil {
		bl = blacklist.NewRedisBlacklist(a.Redis, blacklist.UserBlackList, blacklist.TokenBlackList)
	}

	a.Identity = service.NewIdentityService(store, codec)
	a.Auth = service.NewAuthService(store, codec, cfg.Auth.SecretKey, cfg.Auth.TokenTTL, bl)
	a.OTP = service.NewOTPService(otpStore, notify.New(cfg.Mail), cfg.OTP.TTL)
	a.Tasks = service.NewTaskService(store, locker)
	a.Reconciler = service.NewReconciler(store, locker)
	a.Projects = service.NewProjectService(store, locker)
	a.Employees = service.NewEmployeeService(store, codec)
	a.Directory = service.NewDirectoryService(store, codec)
	a.Dashboard = service.NewDashboardService(store)

	logger.Logger.Info("Application wired",
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("lock_backend", cfg.LockBackend),
		zap.String("otp_store", cfg.OTP.Store),
		zap.Bool("redis", a.Redis != nil),
	)
	return a, nil
}

func needsRedis(cfg config.Config) bool {
	return cfg.LockBackend == "redis" || cfg.OTP.Store == "redis" || cfg.Redis.Addr != ""
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"constructedge/internal/app"
	"constructedge/internal/config"
	"constructedge/internal/middleware"
	grpcserver "constructedge/internal/transport/grpc"
	httpgateway "constructedge/internal/transport/http"
	authmw "constructedge/internal/utils/middleware"
	"constructedge/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level, Stdout: cfg.Log.Stdout})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OtelEndpoint != "" {
		tp, err := middleware.InitTracer(ctx, cfg.OtelEndpoint, cfg.Env)
		if err != nil {
			logger.Logger.Fatal("Failed to init tracer", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to start", zap.Error(err))
	}
	defer a.Close()

	var cache middleware.ResponseCache = middleware.NewMemoryCache(10000, middleware.IdempotencyTTL)
	if a.Redis != nil {
		cache = middleware.NewRedisCache(a.Redis)
	}

	publicSrv := grpc.NewServer(
		grpc.ForceServerCodec(grpcserver.JSONCodec{}),
		grpc.ChainUnaryInterceptor(
			middleware.TracingInterceptor,
			middleware.IdempotencyInterceptor(cache, grpcserver.CredentialMethods()...),
		),
	)
	grpcserver.RegisterPublicServer(publicSrv, grpcserver.NewPublicServer(a.Identity, a.Auth, a.OTP))

	internalSrv := grpc.NewServer(
		grpc.ForceServerCodec(grpcserver.JSONCodec{}),
		grpc.ChainUnaryInterceptor(
			middleware.TracingInterceptor,
			authmw.BlacklistMiddleware(a.Auth),
			authmw.RoleRequiredMiddleware(grpcserver.InternalRoleRules()),
			middleware.IdempotencyInterceptor(cache),
		),
	)
	grpcserver.RegisterInternalServer(internalSrv, &grpcserver.InternalServer{
		Store:      a.Store,
		Auth:       a.Auth,
		Tasks:      a.Tasks,
		Reconciler: a.Reconciler,
		Projects:   a.Projects,
		Employees:  a.Employees,
		Directory:  a.Directory,
		Dashboard:  a.Dashboard,
	})

	serveGRPC(publicSrv, cfg.PublicAddr, "public")
	serveGRPC(internalSrv, cfg.InternalAddr, "internal")

	publicClient, err := grpcserver.NewClient(dialAddr(cfg.PublicAddr))
	if err != nil {
		logger.Logger.Fatal("Failed to dial public server", zap.Error(err))
	}
	defer publicClient.Close()
	internalClient, err := grpcserver.NewClient(dialAddr(cfg.InternalAddr))
	if err != nil {
		logger.Logger.Fatal("Failed to dial internal server", zap.Error(err))
	}
	defer internalClient.Close()

	gateway, err := httpgateway.NewGateway(publicClient, internalClient)
	if err != nil {
		logger.Logger.Fatal("Failed to build gateway", zap.Error(err))
	}
	httpSrv := &http.Server{
		Addr:              cfg.GatewayAddr,
		Handler:           gateway.Handler(cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Logger.Info("Gateway listening", zap.String("addr", cfg.GatewayAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Failed to serve gateway", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	publicSrv.GracefulStop()
	internalSrv.GracefulStop()
}

func serveGRPC(srv *grpc.Server, addr, name string) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Logger.Fatal("Failed to listen", zap.String("server", name), zap.String("addr", addr), zap.Error(err))
	}
	go func() {
		logger.Logger.Info("gRPC server listening", zap.String("server", name), zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			logger.Logger.Fatal("Failed to serve", zap.String("server", name), zap.Error(err))
		}
	}()
}

// dialAddr turns a listen address like ":50054" into a dialable one.
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

package middleware

import (
	"context"
	"strings"
	"time"

	"constructedge/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelCodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	serviceName = "constructedge-workforce"
	tracerName  = "constructedge/grpc"
)

// InitTracer installs a global tracer provider exporting to an OTLP
// collector at endpoint.
func InitTracer(ctx context.Context, endpoint, environment string) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.DeploymentEnvironmentKey.String(environment),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Logger.Info("Tracer provider initialized", zap.String("endpoint", endpoint), zap.String("env", environment))
	return tp, nil
}

// metadataCarrier adapts incoming gRPC metadata to a TextMapCarrier.
// Metadata keys are lower case, so http.Header canonicalisation must not
// be applied to them.
type metadataCarrier metadata.MD

func (c metadataCarrier) Get(key string) string {
	if v := metadata.MD(c).Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c metadataCarrier) Set(key, value string) {
	metadata.MD(c).Set(key, value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// TracingInterceptor opens a server span per call, continuing any trace
// passed in the traceparent header (the HTTP gateway forwards it).
func TracingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	attrs := []attribute.KeyValue{
		semconv.RPCSystemGRPC,
		semconv.RPCServiceKey.String(rpcService(info.FullMethod)),
		semconv.RPCMethodKey.String(rpcMethod(info.FullMethod)),
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))
		if keys := md.Get(IdempotencyHeader); len(keys) > 0 {
			attrs = append(attrs, attribute.Bool("constructedge.idempotent", true))
		}
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, info.FullMethod,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	start := time.Now()
	res, err := handler(ctx, req)

	st := status.Convert(err)
	span.SetAttributes(semconv.RPCGRPCStatusCodeKey.Int64(int64(st.Code())))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelCodes.Error, st.Message())
	}

	sc := span.SpanContext()
	logger.Logger.Info("Request completed",
		zap.String("method", info.FullMethod),
		zap.Duration("duration", time.Since(start)),
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("status", st.Code().String()),
		zap.Error(err),
	)
	return res, err
}

// rpcService extracts "pkg.Service" from "/pkg.Service/Method".
func rpcService(fullMethod string) string {
	name := strings.TrimPrefix(fullMethod, "/")
	if i := strings.Index(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

func rpcMethod(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}

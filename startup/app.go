package startup

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kkratossdead/mobile-renting/auth"
	"github.com/kkratossdead/mobile-renting/client"
	"github.com/kkratossdead/mobile-renting/startup/config"
	"github.com/kkratossdead/mobile-renting/store"
)

// App wires the transport, resource clients, identity provider and stores
// together from a single config.
type App struct {
	Config *config.Config
	Logger *logrus.Logger

	Transport *client.Transport
	Auth      *client.AuthClient

	Provider *auth.HTTPProvider

	Session       *store.SessionStore
	Properties    *store.PropertyStore
	Rentals       *store.RentalStore
	Seller        *store.SellerStore
	Notifications *store.NotificationStore

	tracerProvider *sdktrace.TracerProvider
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg)

	tracer, tp, err := initTracer(cfg.JaegerAddress)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	transport := client.NewTransport(cfg.APIBaseURL, cfg.RequestTimeout, httpClient, logger, tracer)

	authClient := client.NewAuthClient(transport, logger)
	propertyClient := client.NewPropertyClient(transport, logger)
	imageClient := client.NewImageClient(transport, logger)
	rentalClient := client.NewRentalClient(transport, logger)
	reviewClient := client.NewReviewClient(transport, logger)
	notificationClient := client.NewNotificationClient(transport, logger)

	provider := auth.NewHTTPProvider(cfg.IdentityBaseURL, cfg.IdentityAPIKey, httpClient, logger)

	return &App{
		Config:         cfg,
		Logger:         logger,
		Transport:      transport,
		Auth:           authClient,
		Provider:       provider,
		Session:        store.NewSessionStore(provider, authClient, logger, tracer),
		Properties:     store.NewPropertyStore(propertyClient, imageClient, reviewClient, logger, tracer),
		Rentals:        store.NewRentalStore(rentalClient, reviewClient, logger, tracer),
		Seller:         store.NewSellerStore(propertyClient, imageClient, notificationClient, logger, tracer),
		Notifications:  store.NewNotificationStore(notificationClient, logger, tracer),
		tracerProvider: tp,
	}, nil
}

// Shutdown flushes buffered spans. Safe to call when tracing is disabled.
func (a *App) Shutdown(ctx context.Context) error {
	if a.tracerProvider == nil {
		return nil
	}
	return a.tracerProvider.Shutdown(ctx)
}

func initLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.LogFilePath != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}
	return logger
}

func initTracer(jaegerAddress string) (trace.Tracer, *sdktrace.TracerProvider, error) {
	if jaegerAddress == "" {
		return trace.NewNoopTracerProvider().Tracer("mobile-renting"), nil, nil
	}

	exp, err := newExporter(jaegerAddress)
	if err != nil {
		return nil, nil, err
	}

	tp := newTraceProvider(exp)
	otel.SetTracerProvider(tp)
	return tp.Tracer("mobile-renting"), tp, nil
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("mobile-renting"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

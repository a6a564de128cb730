package app

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// InitTelemetry initializes the OpenTelemetry providers and returns a shutdown function.
func (app *Application) InitTelemetry() (func(context.Context), error) {
	if app.config.OtelCollectorUrl == "" {
		app.logger.Info("OpenTelemetry collector URL not set, skipping initialization")

		return func(context.Context) {}, nil
	}

	ctx := context.Background()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("cinebook-api"),
			semconv.ServiceVersion(version),
			semconv.DeploymentEnvironment(app.config.Env),
		),
	)
	if err != nil {
		return nil, errors.New("failed to create otel resource")
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(app.config.OtelCollectorUrl),
	)
	if err != nil {
		return nil, errors.New("failed to create otel trace exporter")
	}

	bsp := trace.NewBatchSpanProcessor(traceExporter)
	tracerProvider := trace.NewTracerProvider(
		trace.WithSampler(trace.AlwaysSample()),
		trace.WithResource(res),
		trace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithEndpoint(app.config.OtelCollectorUrl),
	)
	if err != nil {
		return nil, errors.New("failed to create otel metric exporter")
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
	)

	otel.SetMeterProvider(meterProvider)

	// Instruments are bound to the global meter provider, so they must be
	// re-created now that the real provider is registered.
	app.metrics = newMetrics()

	shutdown := func(ctx context.Context) {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := errors.Join(
			tracerProvider.Shutdown(shutdownCtx),
			meterProvider.Shutdown(shutdownCtx),
		)
		if err != nil {
			app.logger.Error("failed to shutdown telemetry providers", "error", err)
		}
	}

	return shutdown, nil
}

type metrics struct {
	holdsCreated      metric.Int64Counter
	seatConflicts     metric.Int64Counter
	holdsReleased     metric.Int64Counter
	bookingsConfirmed metric.Int64Counter
	seatsReclaimed    metric.Int64Counter
}

func newMetrics() metrics {
	meter := otel.Meter("cinebook")

	holdsCreated, _ := meter.Int64Counter("holds_created_total",
		metric.WithDescription("Number of seat holds created"))
	seatConflicts, _ := meter.Int64Counter("seat_conflicts_total",
		metric.WithDescription("Number of hold or booking attempts rejected due to contested seats"))
	holdsReleased, _ := meter.Int64Counter("holds_released_total",
		metric.WithDescription("Number of seat holds released by their owners"))
	bookingsConfirmed, _ := meter.Int64Counter("bookings_confirmed_total",
		metric.WithDescription("Number of bookings confirmed"))
	seatsReclaimed, _ := meter.Int64Counter("sweeper_seats_reclaimed_total",
		metric.WithDescription("Number of expired seat locks reclaimed by the sweeper"))

	return metrics{
		holdsCreated:      holdsCreated,
		seatConflicts:     seatConflicts,
		holdsReleased:     holdsReleased,
		bookingsConfirmed: bookingsConfirmed,
		seatsReclaimed:    seatsReclaimed,
	}
}

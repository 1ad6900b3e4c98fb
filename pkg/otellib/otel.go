package otellib

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/QuangTung97/marketing/config"
)

// InitOtel creates the tracer provider, spans are exported to jaeger when enabled
func InitOtel(serviceName string, env string, conf config.JaegerConfig) (*sdktrace.TracerProvider, func()) {
	if conf.ServiceName != "" {
		serviceName = conf.ServiceName
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("environment", env),
	)

	if !conf.Enabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		return tp, func() {}
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(conf.Endpoint)))
	if err != nil {
		panic(err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(ctx); err != nil {
			panic(err)
		}
	}
}

// Propagator returns the global propagator, W3C trace context when none was set
func Propagator() propagation.TextMapPropagator {
	p := otel.GetTextMapPropagator()
	if len(p.Fields()) == 0 {
		return propagation.TraceContext{}
	}
	return p
}

package tracing

import (
	"context"
	"fmt"
	"io"

	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

var (
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Host string
	Port int
}

// InitTracer регистрирует глобальный jaeger-трейсер. Пустой Host оставляет NoopTracer.
func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	if conf.Host == "" {
		return opentracing.GlobalTracer(), func() {}, nil
	}

	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closeFunc(closer), nil
}

func closeFunc(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Error("[TRACE] closing jaeger tracer: %v", err)
		}
	}
}

// StartSpan — обёртка над opentracing с тегами key/value парами.
func StartSpan(ctx context.Context, name string, kv ...interface{}) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, name)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			span.SetTag(k, kv[i+1])
		}
	}
	return span, ctx
}

// Fail помечает спан ошибочным.
func Fail(span opentracing.Span, err error) {
	if err == nil {
		return
	}
	ext.Error.Set(span, true)
	span.LogKV("error", err.Error())
}

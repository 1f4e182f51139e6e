package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/Regasking/trade-bot/internal/modules/config"
	"github.com/Regasking/trade-bot/internal/modules/health/service"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"
)

type Config struct {
	Addr string // например ":8080"; пусто: без HTTP
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.Health.Addr}
}

type healthResponse struct {
	Ready         bool  `json:"ready"`
	WSConnected   bool  `json:"wsConnected"`
	UptimeSec     int64 `json:"uptimeSec"`
	LastCycleUnix int64 `json:"lastCycleUnix"`
	Cycles        int64 `json:"cycles"`
	OpenPositions int   `json:"openPositions"`
}

func NewMux(state *service.State) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: правила символов загружены
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Ready:         state.Ready(),
			WSConnected:   state.WSConnected(),
			UptimeSec:     int64(state.Uptime().Seconds()),
			Cycles:        state.Cycles(),
			OpenPositions: state.OpenPositions(),
		}
		if t := state.LastCycle(); !t.IsZero() {
			resp.LastCycleUnix = t.Unix()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(resp)
	})

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	if cfg.Addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			logger.Info("[HEALTH] listening on %s", cfg.Addr)
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}

package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/fannax/internal/config"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockCount,
	pyroscope.ProfileBlockDuration,
}

// Profiling owns the continuous profiler and the local pprof listener.
// Either part may be absent.
type Profiling struct {
	profiler *pyroscope.Profiler
	debug    *http.Server
	logger   *logging.Logger
}

// StartProfiling starts Pyroscope and the pprof server according to cfg.
// The pprof address is bound before returning so a busy port fails startup.
func StartProfiling(cfg config.Config, logger *logging.Logger) (*Profiling, error) {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Profiling{logger: logger.Named("profiling")}

	if cfg.PyroscopeEnabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName:   cfg.PyroscopeAppName,
			ServerAddress:     cfg.PyroscopeServerAddress,
			AuthToken:         cfg.PyroscopeAuthToken,
			BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
			BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
			UploadRate:        cfg.PyroscopeUploadRate,
			Tags: map[string]string{
				"env":     cfg.AppEnv,
				"service": cfg.ServiceName,
				"version": cfg.ServiceVersion,
			},
			ProfileTypes: profileTypes,
		})
		if err != nil {
			return nil, fmt.Errorf("start pyroscope: %w", err)
		}
		p.profiler = profiler
		p.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	}

	if cfg.PprofEnabled {
		ln, err := net.Listen("tcp", cfg.PprofAddr)
		if err != nil {
			_ = p.Stop(context.Background())
			return nil, fmt.Errorf("listen pprof %s: %w", cfg.PprofAddr, err)
		}
		p.debug = &http.Server{Handler: pprofMux(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := p.debug.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				p.logger.Error("pprof server failed", "error", err)
			}
		}()
		p.logger.Info("pprof server listening", "addr", ln.Addr().String())
	}

	return p, nil
}

func pprofMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// Stop shuts down whatever was started. Safe on a nil receiver.
func (p *Profiling) Stop(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.debug != nil {
		if err := p.debug.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop pprof: %w", err))
		}
	}
	if p.profiler != nil {
		if err := p.profiler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
		}
	}
	return errors.Join(errs...)
}

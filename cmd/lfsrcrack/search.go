package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lfsrcrack/internal/config"
	"lfsrcrack/internal/httpserver"
	"lfsrcrack/internal/logger"
	"lfsrcrack/internal/search"
	"lfsrcrack/internal/store"
	"lfsrcrack/internal/util"
)

type searchFlags struct {
	cipherFlags
	workers  int
	interval time.Duration
	from, to string
	db       string
	httpAddr string
}

func newSearchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Try every tap configuration in parallel and report printable plaintexts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = f.workers
			}
			if cmd.Flags().Changed("interval") {
				cfg.ProgressInterval = f.interval
			}
			if f.db != "" {
				cfg.DatabaseURL = f.db
			}
			if f.httpAddr != "" {
				cfg.HTTPAddr = f.httpAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			r, err := f.searchRange(cfg)
			if err != nil {
				return err
			}
			return runSearch(cfg, r)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&f.workers, "workers", 0, "worker count (default: number of CPUs)")
	cmd.Flags().DurationVar(&f.interval, "interval", time.Second, "progress report interval")
	cmd.Flags().StringVar(&f.from, "from", "", "first tap value to try (default 0)")
	cmd.Flags().StringVar(&f.to, "to", "", "last tap value to try (default all ones)")
	cmd.Flags().StringVar(&f.db, "db", "", "database DSN for recording runs (overrides DATABASE_URL)")
	cmd.Flags().StringVar(&f.httpAddr, "http", "", "status API listen address (overrides HTTP_ADDR)")
	return cmd
}

func (f *searchFlags) searchRange(cfg config.Config) (*search.Chunk, error) {
	if f.from == "" && f.to == "" {
		return nil, nil
	}
	r := search.FullRange(cfg.Width)
	var err error
	if f.from != "" {
		if r.First, err = util.ParseUint(f.from); err != nil {
			return nil, err
		}
	}
	if f.to != "" {
		if r.Last, err = util.ParseUint(f.to); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func runSearch(cfg config.Config, r *search.Chunk) error {
	lg := logger.NewWith(cfg.LogLevel, cfg.LogFormat)
	defer lg.Sync()

	s, err := search.New(search.Options{
		Width:      cfg.Width,
		Ciphertext: cfg.Ciphertext,
		Initial:    cfg.Initial,
		Workers:    cfg.Workers,
		Range:      r,
		Interval:   cfg.ProgressInterval,
		Logger:     lg,
	})
	if err != nil {
		lg.Errorw("search setup failed", "error", err)
		return err
	}

	hits := &search.Collector{}
	sinks := search.Sinks{search.LogSink(lg), hits}

	var (
		st    *store.Store
		runID string
	)
	if cfg.DatabaseURL != "" {
		if st, err = store.Open(cfg.DatabaseURL); err != nil {
			lg.Errorw("store open failed", "error", err)
			return err
		}
		defer st.Close()
		ctx := context.Background()
		if prior, err := st.RunsFor(ctx, cfg.Ciphertext); err == nil && len(prior) > 0 {
			lg.Infow("ciphertext searched before", "runs", len(prior), "last_status", prior[0].Status)
		}
		run, err := st.CreateRun(ctx, store.RunParams{
			Width:      cfg.Width,
			Initial:    cfg.Initial,
			Ciphertext: cfg.Ciphertext,
			Chunks:     s.Chunks(),
		})
		if err != nil {
			lg.Errorw("create run failed", "error", err)
			return err
		}
		runID = run.ID
		sinks = append(sinks, st.Sink(runID, lg))
		lg.Infow("recording run", "run", runID)
	}

	if cfg.HTTPAddr != "" {
		srv, err := startStatusServer(cfg, s.Monitor(), hits, st, lg)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	sum, runErr := s.Run(sinks)
	if st != nil {
		if err := st.FinishRun(context.Background(), runID, sum, runErr); err != nil {
			lg.Errorw("finish run failed", "run", runID, "error", err)
		}
	}
	return runErr
}

// startStatusServer binds cfg.HTTPAddr before returning, so an address that
// is taken or malformed fails the command instead of a background goroutine.
func startStatusServer(cfg config.Config, mon *search.Monitor, hits *search.Collector, st *store.Store, lg *zap.SugaredLogger) (*http.Server, error) {
	reg := prometheus.NewRegistry()
	if err := httpserver.RegisterMetrics(reg, mon, hits); err != nil {
		return nil, err
	}
	deps := httpserver.Deps{
		Monitor:   mon,
		Hits:      hits,
		Gatherer:  reg,
		JWTSecret: cfg.JWTSecret,
		Logger:    lg,
	}
	if st != nil {
		deps.Runs = st
	}
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		lg.Errorw("status server listen failed", "addr", cfg.HTTPAddr, "error", err)
		return nil, err
	}
	srv := &http.Server{Addr: ln.Addr().String(), Handler: httpserver.NewRouter(deps)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Errorw("status server failed", "error", err)
		}
	}()
	lg.Infow("status server listening", "addr", srv.Addr)
	return srv, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/compazz/funds"
	"github.com/compazz/funds/recorder"
	"github.com/dgraph-io/badger/v4"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"
)

var cfg struct {
	configPath string
	issue      string
	ttl        time.Duration
}

func init() {
	flag.StringVar(&cfg.configPath, "config", "config.yaml", "config file path")
	flag.StringVar(&cfg.issue, "issue", "", "print a bearer token for this base58 key and exit")
	flag.DurationVar(&cfg.ttl, "ttl", 24*time.Hour, "lifetime of an issued token")

	flag.Parse()
}

func main() {
	conf, err := funds.LoadConfig(cfg.configPath)
	if err != nil {
		slog.Error("load config failed", slog.Any("err", err))
		os.Exit(1)
	}

	if err := conf.Validate(); err != nil {
		slog.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}

	if cfg.issue != "" {
		if err := issueToken(conf); err != nil {
			slog.Error("issue token failed", slog.Any("err", err))
			os.Exit(1)
		}

		return
	}

	if err := run(conf); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("funds exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func issueToken(conf *funds.Config) error {
	signer, err := solana.PublicKeyFromBase58(cfg.issue)
	if err != nil {
		return err
	}

	token, err := funds.IssueToken(conf.Auth.Issuer, []byte(conf.Auth.Secret), signer, cfg.ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func run(conf *funds.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dbOpts := badger.DefaultOptions(conf.DB.Path)
	if conf.DB.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}

	db, err := badger.Open(dbOpts.WithLogger(nil))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if conf.Recorder.SQLitePath != "" {
		if rec, err = recorder.NewSQLiteRecorder(conf.Recorder.SQLitePath); err != nil {
			return err
		}
	}
	defer rec.Close()

	opts, err := conf.Options()
	if err != nil {
		return err
	}

	engine := funds.NewEngine(db, opts, funds.LogListener(), rec)
	svr := funds.NewServer(engine, conf).WithHistory(rec)

	slog.Info("funds launch",
		"program", opts.ProgramID.String(),
		"treasury", opts.PlatformTreasury.String(),
		"airdrop", opts.AllowAirdrop,
	)

	s := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.Port),
		Handler: svr.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listen", slog.String("addr", s.Addr))
		if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return svr.Run(ctx)
	})

	return g.Wait()
}

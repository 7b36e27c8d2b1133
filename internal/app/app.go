package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"backoffice/internal/config"
	"backoffice/internal/digest"
	"backoffice/internal/domain"
	"backoffice/internal/httpapi"
	"backoffice/internal/httpx"
	"backoffice/internal/integrations/llm"
	slackbot "backoffice/internal/integrations/slack"
	"backoffice/internal/logger"
	"backoffice/internal/roster"
	"backoffice/internal/storage/sqlite"
	"backoffice/internal/tickets"
	"backoffice/internal/web"
)

const shutdownTimeout = 10 * time.Second

func Main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var configPath, addr string
	var hashPassword bool

	flagSet := pflag.NewFlagSet("backoffice", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $CONFIG_PATH or ./config.yaml)")
	flagSet.StringVar(&addr, "addr", "", "HTTP listen address, overrides listen_addr")
	flagSet.BoolVar(&hashPassword, "hash-password", false, "read a password from stdin, print its bcrypt hash for the agent roster and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if hashPassword {
		return printPasswordHash(stdin, stdout)
	}

	cfg := config.LoadConfig(configPath)
	if addr != "" {
		cfg.ListenAddr = addr
	}
	l := logger.New(cfg.Env, cfg.LogLevel)
	zlog.Logger = l

	appliedHTTPTimeout := httpx.ConfigureOutboundClient(cfg.ExternalHTTPTimeoutSeconds, l)
	l.Info().
		Str("env", cfg.Env).
		Str("addr", cfg.ListenAddr).
		Str("timezone", cfg.Location.String()).
		Str("db", cfg.DBPath).
		Str("agents", cfg.AgentsPath).
		Strs("cors_origins", cfg.CORSOrigins).
		Int("rate_limit_per_minute", cfg.RateLimit()).
		Bool("digest", cfg.DigestConfigured()).
		Bool("llm_summary", cfg.LLMSummaryEnabled).
		Dur("external_http_timeout", appliedHTTPTimeout).
		Msg("config loaded")

	agents, err := roster.Load(cfg.AgentsPath)
	if err != nil {
		return fmt.Errorf("load agent roster: %w", err)
	}
	l.Info().Int("agents", agents.Len()).Str("path", cfg.AgentsPath).Msg("agent roster loaded")

	catalog, err := loadCatalog(cfg.ActionsPath)
	if err != nil {
		return err
	}

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()
	l.Info().Str("path", cfg.DBPath).Msg("database initialized")

	store := sqlite.NewStore(db, cfg.Location)
	svc := tickets.NewService(store, agents, tickets.Options{
		Location: cfg.Location,
		Catalog:  catalog,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	digestDone := startDigest(ctx, cfg, svc, agents, l)

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: httpapi.New(l, httpapi.Deps{
			Tickets:            svc,
			Agents:             agents,
			Actions:            catalog,
			DB:                 store,
			Static:             web.Handler(),
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerMinute: cfg.RateLimit(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		l.Info().Msg("shutting down")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("http shutdown")
	}
	if digestDone != nil {
		<-digestDone
	}
	return nil
}

func loadCatalog(path string) (*domain.ActionCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultActionCatalog(), nil
	}
	c, err := domain.LoadActionCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load action catalog %s: %w", path, err)
	}
	return c, nil
}

// startDigest wires the scheduled Slack digest. It returns nil when the
// digest is not configured.
func startDigest(ctx context.Context, cfg config.Config, svc *tickets.Service, agents *roster.Directory, l zerolog.Logger) <-chan struct{} {
	if !cfg.DigestConfigured() {
		l.Info().Msg("digest disabled")
		return nil
	}
	sched, err := config.ParseSchedule(cfg.DigestSchedule)
	if err != nil {
		l.Error().Err(err).Msg("digest disabled")
		return nil
	}

	dl := l.With().Str("component", "digest").Logger()
	notifier := slackbot.NewNotifier(cfg.SlackBotToken, cfg.DigestChannelID, httpx.OutboundClient())
	runner := &digest.Runner{
		Source:   svc,
		Roster:   agents,
		Notifier: notifier,
		Mentions: notifier,
		Log:      dl,
	}
	if cfg.LLMSummaryEnabled {
		runner.Summarizer = llm.NewSummarizer(cfg.AnthropicAPIKey, cfg.LLMModel, httpx.OutboundClient(), dl)
	}
	dl.Info().Str("schedule", cfg.DigestSchedule).Str("channel", cfg.DigestChannelID).Msg("digest scheduled")
	return digest.StartScheduler(ctx, sched, cfg.Location, dl, runner.Run)
}

func printPasswordHash(stdin io.Reader, stdout io.Writer) error {
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(pw) == "" {
		return errors.New("password must not be blank")
	}
	hash, err := roster.HashPassword(pw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

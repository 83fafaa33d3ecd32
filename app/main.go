package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/sws/app/auth"
	"github.com/umputun/sws/app/settings"
	"github.com/umputun/sws/app/stats"
	"github.com/umputun/sws/app/sws"
	"github.com/umputun/sws/app/ui"
	"github.com/umputun/sws/lib/logging"
)

var opts struct {
	Listen  string `short:"l" long:"listen" env:"LISTEN" default:"127.0.0.1:8080" description:"listen on host:port"`
	URIPath string `long:"uri-path" env:"URI_PATH" default:"/swagger-stats" description:"base path of stats endpoints"`
	Config  string `short:"c" long:"config" env:"CONFIG" description:"yaml settings file"`

	Auth struct {
		Enabled bool          `long:"enabled" env:"ENABLED" description:"enable auth for stats endpoints"`
		Users   []string      `long:"user" env:"USER" env-delim:"," description:"allowed user:bcrypt-hash pairs"`
		MaxAge  time.Duration `long:"max-age" env:"MAX_AGE" description:"session max age"`
		Redis   string        `long:"redis" env:"REDIS" description:"redis address for sessions, in-memory if empty"`
	} `group:"auth" namespace:"auth" env-namespace:"AUTH"`

	Assets struct {
		Dist string `long:"dist" env:"DIST" description:"dist assets location, embedded if empty"`
		UX   string `long:"ux" env:"UX" description:"ux assets location, embedded if empty"`
	} `group:"assets" namespace:"assets" env-namespace:"ASSETS"`

	Headers  []string `short:"x" long:"header" env:"HEADER" env-delim:"," description:"extra headers for stats endpoints"`
	Throttle float64  `long:"throttle" env:"THROTTLE" description:"max requests per second per client for stats endpoints"`

	AccessLog string `long:"access-log" env:"ACCESS_LOG" description:"access log file"`
	StdOut    bool   `long:"stdout" env:"STDOUT" description:"log requests to stdout"`
	JSONLog   bool   `long:"json-log" env:"JSON_LOG" description:"json log format"`
	Dbg       bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
}

var revision = "unknown"

func main() {
	fmt.Printf("sws %s\n", revision)

	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	p.SubcommandsOptional = true
	if _, err := p.Parse(); err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
			log.Printf("[ERROR] cli error: %v", err)
		}
		os.Exit(1)
	}

	l, flush := setupLog(opts.Dbg, opts.JSONLog)
	defer flush()
	catchSignal()
	defer func() {
		if x := recover(); x != nil {
			l.Logf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, l); err != nil {
		l.Logf("[ERROR] sws failed, %v", err)
		flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, l log.L) error {
	s, err := makeSettings()
	if err != nil {
		return err
	}

	store, closeStore, err := makeSessionStore(ctx, s.Auth)
	if err != nil {
		return err
	}
	defer closeStore()

	proc := stats.New(stats.Config{})
	engine := auth.New(s, store)
	engine.L = l

	plugin := &sws.Plugin{Settings: s, Processor: proc, Auth: engine, Metrics: proc, UI: ui.Markup(), L: l}
	if s.DistRoot == "" {
		plugin.DistFS = ui.Dist()
	}
	if s.UXRoot == "" {
		plugin.UXFS = ui.UX()
	}

	mux := http.NewServeMux()
	demoRoutes(mux)
	if err = plugin.Register(mux); err != nil {
		return fmt.Errorf("can't register stats routes: %w", err)
	}

	accessLog, err := accessLogHandler(opts.AccessLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := accessLog.Close(); err != nil {
			l.Logf("[WARN] can't close access log, %v", err)
		}
	}()

	h := rest.Wrap(mux,
		rest.Recoverer(l),
		rest.AppInfo("sws", "umputun", revision),
		rest.Ping,
		accessLog.handler,
		stdoutLogHandler(opts.StdOut, logger.New(logger.Log(l), logger.Prefix("[INFO]")).Handler),
		plugin.Middleware,
	)

	srv := &http.Server{
		Addr:              opts.Listen,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
		ErrorLog:          log.ToStdLogger(l, "WARN"),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		l.Logf("[WARN] http server terminated, %v", err)
	}()

	l.Logf("[INFO] start http server on %s, stats on %s", opts.Listen, s.URIPath)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// makeSettings loads settings file if defined and applies cli overrides on top
func makeSettings() (settings.Settings, error) {
	s := settings.New(opts.URIPath)
	if opts.Config != "" {
		var err error
		if s, err = settings.Load(opts.Config, opts.URIPath); err != nil {
			return settings.Settings{}, err
		}
	}

	if opts.Auth.Enabled {
		s.Auth.Enabled = true
	}
	s.Auth.Users = append(s.Auth.Users, opts.Auth.Users...)
	if opts.Auth.MaxAge > 0 {
		s.Auth.MaxAge = opts.Auth.MaxAge
	}
	if opts.Auth.Redis != "" {
		s.Auth.Redis = opts.Auth.Redis
	}
	if opts.Assets.Dist != "" {
		s.DistRoot = opts.Assets.Dist
	}
	if opts.Assets.UX != "" {
		s.UXRoot = opts.Assets.UX
	}
	s.Route.Headers = append(s.Route.Headers, opts.Headers...)
	if opts.Throttle > 0 {
		s.Route.Throttle = opts.Throttle
	}

	if err := s.Validate(); err != nil {
		return settings.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// makeSessionStore returns redis store if redis address defined, nil store means in-memory one
func makeSessionStore(ctx context.Context, a settings.Auth) (auth.SessionStore, func(), error) {
	if !a.Enabled || a.Redis == "" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: a.Redis})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("can't connect to redis %s: %w", a.Redis, err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Printf("[WARN] can't close redis client, %v", err)
		}
	}
	return auth.NewRedisStore(client, "sws:session:"), closeFn, nil
}

// demoRoutes adds a tiny api to get some traffic to look at
func demoRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/hello", func(w http.ResponseWriter, r *http.Request) {
		rest.RenderJSON(w, rest.JSON{"message": "hello", "time": time.Now().UTC()})
	})
	mux.HandleFunc("/api/echo/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
		if err != nil {
			rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "can't read body")
			return
		}
		rest.RenderJSON(w, rest.JSON{"id": r.PathValue("id"), "method": r.Method, "body": string(body),
			"query": r.URL.Query()})
	})
}

type accessLog struct {
	wr io.WriteCloser
}

// accessLogHandler makes combined log middleware writing to rotated file, nothing logged if fname is empty
func accessLogHandler(fname string) (*accessLog, error) {
	if fname == "" {
		return &accessLog{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(fname), 0o750); err != nil {
		return nil, fmt.Errorf("can't make access log location %s: %w", fname, err)
	}
	return &accessLog{wr: &lumberjack.Logger{Filename: fname, MaxSize: 100, MaxBackups: 10, Compress: true}}, nil
}

func (a *accessLog) handler(next http.Handler) http.Handler {
	if a.wr == nil {
		return next
	}
	return handlers.CombinedLoggingHandler(a.wr, next)
}

func (a *accessLog) Close() error {
	if a.wr == nil {
		return nil
	}
	return a.wr.Close()
}

func stdoutLogHandler(enable bool, lh func(next http.Handler) http.Handler) func(next http.Handler) http.Handler {
	if enable {
		return lh
	}
	return func(next http.Handler) http.Handler { return next }
}

// setupLog configures lgr text logger or zap json one, returned func flushes the logger
func setupLog(dbg, jsonLog bool) (log.L, func()) {
	if jsonLog {
		l, sync := logging.NewJSON(os.Stdout, dbg)
		return l, func() { _ = sync() }
	}

	logOpts := []log.Option{log.Msec, log.LevelBraces, log.StackTraceOnError}
	if dbg {
		logOpts = []log.Option{log.Debug, log.CallerFile, log.CallerFunc, log.Msec, log.LevelBraces, log.StackTraceOnError}
	}
	log.SetupStdLogger(logOpts...)
	return log.Default(), func() {}
}

func catchSignal() {
	// catch SIGQUIT and print stack traces
	sigChan := make(chan os.Signal, 1)
	go func() {
		for range sigChan {
			log.Printf("[INFO] SIGQUIT detected")
			stacktrace := make([]byte, 8192)
			length := runtime.Stack(stacktrace, true)
			if length > 8192 {
				length = 8192
			}
			fmt.Println(string(stacktrace[:length]))
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT)
}

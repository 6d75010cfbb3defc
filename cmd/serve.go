package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/config"
	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/server"

	"github.com/spf13/cobra"
)

type serveRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
}

var (
	flagServeAddr         string
	flagServeDetach       bool
	flagServePIDFile      string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
	flagServeDebug        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the landing page and JSON API",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", "", "PID file path (default in the data dir)")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", "", "Log file path for detached mode (default in the data dir)")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeDebug, "debug", false, "Log at debug level")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// servePaths resolves the listen address and runtime files from flags and
// config.
func servePaths(cfg config.Config) (addr, pidFile, logFile string) {
	addr = cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}
	pidFile = flagServePIDFile
	if pidFile == "" {
		pidFile = filepath.Join(config.DataDir(cfg), "orcalc-serve.pid")
	}
	logFile = flagServeLogFile
	if logFile == "" {
		logFile = filepath.Join(config.DataDir(cfg), "orcalc-serve.log")
	}
	return addr, pidFile, logFile
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid server launch mode")
	}

	cfg := loadConfig()
	if flagServeDetach {
		return startServeDetached(cfg)
	}
	return runServeForeground(cfg)
}

func startServeDetached(cfg config.Config) error {
	addr, pidFile, logFile := servePaths(cfg)
	if err := ensureServeNotRunning(pidFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(pidFile), 0o750); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidFile)
	fmt.Printf("  Page: http://%s/\n", addr)
	fmt.Printf("  Log: %s\n", logFile)
	return nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagServeDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runServeForeground(cfg config.Config) error {
	addr, pidFile, _ := servePaths(cfg)
	if err := ensureServeNotRunning(pidFile); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pidFile), 0o750); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(pidFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(pidFile) }()

	_ = writeState(statePath(pidFile), serveRuntimeState{PID: pid, Addr: addr, StartedAt: time.Now()})
	defer func() { _ = os.Remove(statePath(pidFile)) }()

	logger := newLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sink := leads.MultiSink{st.Sink()}
	if url := cfg.Server.TableServiceURL; url != "" {
		ts, err := leads.NewTableSink(ctx, url, cfg.Server.LeadsTable)
		if err != nil {
			logger.Warn("table storage unavailable, leads stay local", "err", err)
		} else {
			sink = append(sink, mirrorSink(ts, logger))
			logger.Info("mirroring leads to table storage", "table", cfg.Server.LeadsTable)
		}
	}

	var cache server.Cache = server.NewMemoryCache(0)
	if cfg.Server.RedisAddr != "" {
		rc, err := server.NewRedisCache(ctx, cfg.Server.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", "addr", cfg.Server.RedisAddr, "err", err)
		} else {
			defer func() { _ = rc.Close() }()
			cache = rc
		}
	}

	svc := server.New(server.Config{
		Addr:          addr,
		CacheTTL:      time.Duration(cfg.Server.CacheTTLSec) * time.Second,
		LeadRateLimit: cfg.Server.LeadRateLimit,
		EventsBuffer:  flagServeEventsBuffer,
		Defaults:      config.DefaultInput(cfg),
	}, calculator.New(config.CalculatorParams(cfg)), cache, sink, logger)

	fmt.Printf("  orcalc listening on http://%s\n", addr)
	fmt.Printf("  Stop with: orcalc serve stop --pid-file %s\n", pidFile)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// mirrorSink saves to a secondary sink and only logs its failures, so a
// table-storage outage never rejects a lead that was stored locally.
func mirrorSink(s leads.Sink, logger *slog.Logger) leads.Sink {
	return leads.SinkFunc(func(ctx context.Context, l leads.Lead) error {
		if err := s.Save(ctx, l); err != nil {
			logger.Warn("mirroring lead failed", "err", err)
		}
		return nil
	})
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	addr, pidFile, _ := servePaths(loadConfig())

	pid, err := readPID(pidFile)
	if err != nil {
		fmt.Printf("  Server: not running (pid file not found)\n")
		return nil
	}

	if !processAlive(pid) {
		fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	if st, err := readState(statePath(pidFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Server PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Cache: %s (%d hits / %d estimates)\n", st.Cache, st.CacheHits, st.Estimates)
	fmt.Printf("  Leads: %d\n", st.Leads)
	fmt.Printf("  Events: %d buffered, %d subscribers\n", st.EventCount, st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	_, pidFile, _ := servePaths(loadConfig())

	pid, err := readPID(pidFile)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(pidFile)
			_ = os.Remove(statePath(pidFile))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureServeNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st serveRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serveRuntimeState, error) {
	var st serveRuntimeState
	//nolint:gosec // state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}

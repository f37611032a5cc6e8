// Package control supervises replay worker processes: one replay per
// trading day, started and stopped over the controld HTTP API.
package control

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/pkg/config"
	applogger "github.com/supneo2025-ops/vwap-prediction/pkg/logger"
	"github.com/supneo2025-ops/vwap-prediction/pkg/util"
)

// Supervisor owns at most one replay worker at a time. The worker is the
// replay binary fed a single day's capture file; it runs in its own
// process group so a stop kills the whole pipeline.
type Supervisor struct {
	dataDir     string
	fileSuffix  string
	replayBin   string
	configPath  string
	stopTimeout time.Duration
	logger      *applogger.Logger

	mu    sync.Mutex
	cmd   *exec.Cmd
	day   string
	speed float64
	done  chan struct{}
}

// New creates a supervisor from the control config section.
func New(cfg *config.Config, logger *applogger.Logger) *Supervisor {
	return &Supervisor{
		dataDir:     cfg.Control.DataDir,
		fileSuffix:  cfg.Control.FileSuffix,
		replayBin:   cfg.Control.ReplayBin,
		configPath:  cfg.Control.ConfigPath,
		stopTimeout: cfg.Control.StopTimeout,
		logger:      logger,
	}
}

// Days lists the trading days with a capture file present, sorted
// ascending. Capture files name the day with underscores
// (2024_05_15_ssi_hose_busd.received.txt); the API speaks YYYY-MM-DD,
// so the underscores are mapped back to dashes here. Suffix-matching
// files that do not carry a valid day are skipped.
func (s *Supervisor) Days() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	days := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.fileSuffix) {
			continue
		}
		day := strings.ReplaceAll(strings.TrimSuffix(e.Name(), s.fileSuffix), "_", "-")
		if _, err := util.ParseDay(day); err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Strings(days)
	return days, nil
}

// CaptureFile returns the path of the capture file for a YYYY-MM-DD
// day without checking existence. The file name uses underscores.
func (s *Supervisor) CaptureFile(day string) string {
	return filepath.Join(s.dataDir, strings.ReplaceAll(day, "-", "_")+s.fileSuffix)
}

// Start launches a replay worker for the given day at the given speed.
// Fails if a worker is already running or the day has no capture file.
func (s *Supervisor) Start(day string, speed float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return 0, fmt.Errorf("replay already running for day %s", s.day)
	}

	// day becomes a file name component, reject anything non-canonical
	if _, err := util.ParseDay(day); err != nil {
		return 0, err
	}

	path := s.CaptureFile(day)
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("no capture file for day %s: %w", day, err)
	}

	args := []string{"-input", path, "-speed", fmt.Sprintf("%g", speed)}
	if s.configPath != "" {
		args = append(args, "-config", s.configPath)
	}
	cmd := exec.Command(s.replayBin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// own process group so Stop can signal the worker and any children
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start replay: %w", err)
	}

	s.cmd = cmd
	s.day = day
	s.speed = speed
	s.done = make(chan struct{})

	done := s.done
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		if s.cmd == cmd {
			s.cmd = nil
			s.day = ""
			s.speed = 0
		}
		s.mu.Unlock()
		close(done)
		if err != nil {
			s.logger.Warn("replay worker exited",
				applogger.String("day", day), applogger.Error(err))
			return
		}
		s.logger.Info("replay worker finished", applogger.String("day", day))
	}()

	s.logger.Info("replay worker started",
		applogger.String("day", day),
		applogger.Float64("speed", speed),
		applogger.Int("pid", cmd.Process.Pid),
	)
	return cmd.Process.Pid, nil
}

// Stop terminates the running worker: SIGTERM to the process group, then
// SIGKILL after the stop timeout. Returns an error when nothing runs.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	day := s.day
	s.mu.Unlock()

	if cmd == nil {
		return fmt.Errorf("no replay running")
	}

	pgid := -cmd.Process.Pid
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal replay: %w", err)
	}

	select {
	case <-done:
	case <-time.After(s.stopTimeout):
		s.logger.Warn("replay worker ignored SIGTERM, killing",
			applogger.String("day", day))
		_ = syscall.Kill(pgid, syscall.SIGKILL)
		<-done
	}

	s.logger.Info("replay worker stopped", applogger.String("day", day))
	return nil
}

// Restart stops the current worker if any and starts a new one.
func (s *Supervisor) Restart(day string, speed float64) (int, error) {
	s.mu.Lock()
	running := s.cmd != nil
	s.mu.Unlock()

	if running {
		if err := s.Stop(); err != nil {
			return 0, err
		}
	}
	return s.Start(day, speed)
}

// Status reports whether a worker runs and what it replays.
func (s *Supervisor) Status() (running bool, day string, speed float64, pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return false, "", 0, 0
	}
	return true, s.day, s.speed, s.cmd.Process.Pid
}

// Package pprof captures Go runtime profiles while a computation runs. File
// mode records a CPU profile for the lifetime of a session and snapshots the
// other profiles when it stops; HTTP mode serves the net/http/pprof handlers.
package pprof

import (
	"context"
	"fmt"
	"net"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/graph-metrics/pkg/errors"
	"github.com/graph-metrics/pkg/utils"
)

// Mode defines how profiles are collected.
type Mode string

const (
	// ModeFile writes profiles to OutputDir.
	ModeFile Mode = "file"
	// ModeHTTP exposes pprof endpoints for on-demand collection.
	ModeHTTP Mode = "http"
)

// ProfileType is a runtime profile name.
type ProfileType string

const (
	ProfileCPU       ProfileType = "cpu"
	ProfileHeap      ProfileType = "heap"
	ProfileGoroutine ProfileType = "goroutine"
	ProfileBlock     ProfileType = "block"
	ProfileMutex     ProfileType = "mutex"
	ProfileAllocs    ProfileType = "allocs"
)

// AllProfileTypes returns all supported profile types.
func AllProfileTypes() []ProfileType {
	return []ProfileType{ProfileCPU, ProfileHeap, ProfileGoroutine, ProfileBlock, ProfileMutex, ProfileAllocs}
}

// DefaultProfileTypes returns the profiles collected when none are named.
func DefaultProfileTypes() []ProfileType {
	return []ProfileType{ProfileCPU, ProfileHeap}
}

// ParseProfileTypes parses a comma-separated list of profile types.
func ParseProfileTypes(s string) ([]ProfileType, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultProfileTypes(), nil
	}
	valid := make(map[ProfileType]bool)
	for _, pt := range AllProfileTypes() {
		valid[pt] = true
	}

	parts := strings.Split(s, ",")
	types := make([]ProfileType, 0, len(parts))
	for _, p := range parts {
		pt := ProfileType(strings.ToLower(strings.TrimSpace(p)))
		if !valid[pt] {
			return nil, errors.Newf(errors.CodeConfigError, "unknown profile type: %q", p)
		}
		types = append(types, pt)
	}
	return types, nil
}

// Config configures a profiling session.
type Config struct {
	Mode      Mode
	Profiles  []ProfileType
	OutputDir string
	// Addr is the listen address in HTTP mode. Port 0 picks a free port.
	Addr string
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeFile:
		if c.OutputDir == "" {
			return errors.New(errors.CodeConfigError, "pprof output dir is required in file mode")
		}
	case ModeHTTP:
		if c.Addr == "" {
			return errors.New(errors.CodeConfigError, "pprof listen address is required in http mode")
		}
	default:
		return errors.Newf(errors.CodeConfigError, "invalid pprof mode: %q (valid: file, http)", c.Mode)
	}
	return nil
}

func (c *Config) wants(pt ProfileType) bool {
	for _, p := range c.Profiles {
		if p == pt {
			return true
		}
	}
	return false
}

// Session is a running profile collection.
type Session struct {
	cfg     Config
	logger  utils.Logger
	cpuFile *os.File
	server  *http.Server
	addr    string
}

// Start begins a profiling session.
func Start(cfg Config, logger utils.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultProfileTypes()
	}

	s := &Session{cfg: cfg, logger: logger}
	if cfg.wants(ProfileBlock) {
		runtime.SetBlockProfileRate(1)
	}
	if cfg.wants(ProfileMutex) {
		runtime.SetMutexProfileFraction(1)
	}

	var err error
	if cfg.Mode == ModeHTTP {
		err = s.serve()
	} else {
		err = s.startCPU()
	}
	if err != nil {
		s.resetRates()
		return nil, err
	}
	return s, nil
}

func (s *Session) startCPU() error {
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create pprof directory: %w", err)
	}
	if !s.cfg.wants(ProfileCPU) {
		return nil
	}
	f, err := os.Create(filepath.Join(s.cfg.OutputDir, "cpu.pprof"))
	if err != nil {
		return fmt.Errorf("failed to create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start cpu profile: %w", err)
	}
	s.cpuFile = f
	return nil
}

func (s *Session) serve() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", httppprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", httppprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", httppprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", httppprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", httppprof.Trace)

	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.addr = ln.Addr().String()
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("pprof server stopped: %v", err)
		}
	}()
	s.logger.Info("pprof endpoints at http://%s/debug/pprof/", s.addr)
	return nil
}

// Addr returns the listen address in HTTP mode.
func (s *Session) Addr() string {
	return s.addr
}

// Stop ends the session and returns the profile files written.
func (s *Session) Stop() ([]string, error) {
	defer s.resetRates()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return nil, s.server.Shutdown(ctx)
	}

	var files []string
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := s.cpuFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to close cpu profile: %w", err)
		}
		files = append(files, s.cpuFile.Name())
	}

	for _, pt := range s.cfg.Profiles {
		if pt == ProfileCPU {
			continue
		}
		path, err := s.snapshot(pt)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func (s *Session) snapshot(pt ProfileType) (string, error) {
	p := pprof.Lookup(string(pt))
	if p == nil {
		return "", errors.Newf(errors.CodeUnsupported, "runtime has no %s profile", pt)
	}
	if pt == ProfileHeap {
		runtime.GC()
	}

	path := filepath.Join(s.cfg.OutputDir, string(pt)+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s profile: %w", pt, err)
	}
	if err := p.WriteTo(f, 0); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s profile: %w", pt, err)
	}
	return path, f.Close()
}

func (s *Session) resetRates() {
	if s.cfg.wants(ProfileBlock) {
		runtime.SetBlockProfileRate(0)
	}
	if s.cfg.wants(ProfileMutex) {
		runtime.SetMutexProfileFraction(0)
	}
}

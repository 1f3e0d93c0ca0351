package journald

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Reader reads kernel messages from the systemd journal through journalctl
type Reader struct {
	config *ReaderConfig
	runner Runner
	logger *zap.Logger
}

// ReaderConfig configures the journald reader
type ReaderConfig struct {
	// Command is the journalctl binary, looked up in PATH when not absolute
	Command string
	Since   string
	Until   string
}

// DefaultReaderConfig returns the default reader configuration
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		Command: "journalctl",
	}
}

// NewReader creates a new journald reader
func NewReader(config *ReaderConfig, runner Runner, logger *zap.Logger) *Reader {
	if config == nil {
		config = DefaultReaderConfig()
	}
	if config.Command == "" {
		config.Command = "journalctl"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reader{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// IsAvailable checks if journalctl can be executed
func (r *Reader) IsAvailable(ctx context.Context) bool {
	_, err := r.runner.Run(ctx, r.config.Command, "--version")
	return err == nil
}

// ListBoots returns every boot the journal has records for, oldest first.
// When journalctl exits non-zero after printing a boot list, the parsed
// boots are returned together with the error.
func (r *Reader) ListBoots(ctx context.Context) ([]Boot, error) {
	out, runErr := r.runner.Run(ctx, r.config.Command, "--list-boots", "--no-pager")

	boots := ParseBootList(string(out))
	r.logger.Debug("Listed journal boots", zap.Int("count", len(boots)))

	if runErr != nil {
		return boots, fmt.Errorf("failed to list boots: %w", runErr)
	}
	return boots, nil
}

// ReadDmesg returns the non-blank kernel log lines of one boot. Lines printed
// before journalctl failed are returned together with the error.
func (r *Reader) ReadDmesg(ctx context.Context, boot int) ([]string, error) {
	out, runErr := r.runner.Run(ctx, r.config.Command, r.dmesgArgs(boot)...)

	lines := SplitLines(string(out))
	r.logger.Debug("Read kernel log",
		zap.Int("boot", boot),
		zap.Int("lines", len(lines)),
		zap.Int("bytes", len(out)))

	if runErr != nil {
		return lines, fmt.Errorf("failed to read kernel log for boot %d: %w", boot, runErr)
	}
	return lines, nil
}

func (r *Reader) dmesgArgs(boot int) []string {
	args := []string{"--dmesg", "-b", strconv.Itoa(boot), "--no-pager"}

	if r.config.Since != "" {
		args = append(args, "--since", r.config.Since)
	}
	if r.config.Until != "" {
		args = append(args, "--until", r.config.Until)
	}

	return args
}

// SplitLines splits command output into lines, dropping blank ones
func SplitLines(out string) []string {
	raw := strings.Split(out, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

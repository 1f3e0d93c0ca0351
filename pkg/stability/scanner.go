package stability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yairfalse/corestab/pkg/journald"
	"go.uber.org/zap"
)

// BootSource provides the boot list and the kernel log of each boot
type BootSource interface {
	ListBoots(ctx context.Context) ([]journald.Boot, error)
	ReadDmesg(ctx context.Context, boot int) ([]string, error)
}

// ScanOptions restricts which boots are scanned
type ScanOptions struct {
	// Boots limits the scan to these boot indexes; empty means all
	Boots []int
	// MaxBoots keeps only the most recent N boots; -1 means all
	MaxBoots int
}

// ScanStats counts what a scan touched
type ScanStats struct {
	BootsListed  int `json:"boots_listed"`
	BootsScanned int `json:"boots_scanned"`
	BootsFailed  int `json:"boots_failed"`
	// BootsPartial counts boots whose read failed after some output was printed
	BootsPartial int `json:"boots_partial"`
	LinesRead    int `json:"lines_read"`
	RecordsFound int `json:"records_found"`
}

// Report is the result of one scan
type Report struct {
	ScanID    string
	StartedAt time.Time
	Duration  time.Duration
	// Boots that were read successfully, in journal order
	Boots   []journald.Boot
	Records []Record
	Stats   ScanStats
}

// Scanner walks the kernel log of every selected boot and collects records
type Scanner struct {
	source  BootSource
	options ScanOptions
	logger  *zap.Logger
}

// NewScanner creates a scanner reading from source
func NewScanner(source BootSource, options ScanOptions, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		source:  source,
		options: options,
		logger:  logger,
	}
}

// Scan reads each selected boot in journal order. Output printed before a
// journalctl failure is still parsed; a boot that produced no output at all
// is skipped. Failing to list any boot fails the scan.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	report := &Report{
		ScanID:    uuid.NewString(),
		StartedAt: time.Now(),
		Records:   []Record{},
	}
	logger := s.logger.With(zap.String("scan_id", report.ScanID))

	boots, err := s.source.ListBoots(ctx)
	if err != nil {
		if len(boots) == 0 || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Boot list incomplete, scanning the boots that were listed",
			zap.Int("boots_listed", len(boots)),
			zap.Error(err))
	}
	report.Stats.BootsListed = len(boots)

	selected := journald.SelectBoots(boots, s.options.Boots, s.options.MaxBoots)
	logger.Info("Scanning kernel logs",
		zap.Int("boots_listed", len(boots)),
		zap.Int("boots_selected", len(selected)))

	for _, boot := range selected {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted at boot %d: %w", boot.Index, err)
		}

		lines, err := s.source.ReadDmesg(ctx, boot.Index)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("scan interrupted at boot %d: %w", boot.Index, ctx.Err())
			}
			if len(lines) == 0 {
				logger.Warn("Skipping boot",
					zap.Int("boot", boot.Index),
					zap.String("boot_id", boot.ID),
					zap.Error(err))
				report.Stats.BootsFailed++
				continue
			}
			logger.Warn("Kernel log read incomplete, keeping the lines that were printed",
				zap.Int("boot", boot.Index),
				zap.String("boot_id", boot.ID),
				zap.Int("lines", len(lines)),
				zap.Error(err))
			report.Stats.BootsPartial++
		}

		records := ParseLines(lines, boot.Index)
		report.Boots = append(report.Boots, boot)
		report.Records = append(report.Records, records...)
		report.Stats.BootsScanned++
		report.Stats.LinesRead += len(lines)

		if len(records) > 0 {
			logger.Debug("Found core-tagged kernel messages",
				zap.Int("boot", boot.Index),
				zap.Int("records", len(records)))
		}
	}

	report.Stats.RecordsFound = len(report.Records)
	report.Duration = time.Since(report.StartedAt)

	logger.Info("Scan complete",
		zap.Int("boots_scanned", report.Stats.BootsScanned),
		zap.Int("boots_failed", report.Stats.BootsFailed),
		zap.Int("boots_partial", report.Stats.BootsPartial),
		zap.Int("lines_read", report.Stats.LinesRead),
		zap.Int("records", report.Stats.RecordsFound),
		zap.Duration("duration", report.Duration))

	return report, nil
}

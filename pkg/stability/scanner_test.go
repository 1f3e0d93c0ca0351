package stability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/corestab/pkg/journald"
	"go.uber.org/zap/zaptest"
)

type fakeSource struct {
	boots   []journald.Boot
	listErr error
	logs    map[int][]string
	errs    map[int]error
	reads   []int
}

func (f *fakeSource) ListBoots(ctx context.Context) ([]journald.Boot, error) {
	return f.boots, f.listErr
}

func (f *fakeSource) ReadDmesg(ctx context.Context, boot int) ([]string, error) {
	f.reads = append(f.reads, boot)
	return f.logs[boot], f.errs[boot]
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		boots: []journald.Boot{{Index: -2, ID: "a"}, {Index: -1, ID: "b"}, {Index: 0, ID: "c"}},
		logs: map[int][]string{
			-2: {
				"May 27 10:00:01 host kernel: Linux version 6.8.9",
				"May 27 11:12:13 host kernel: foo[10]: segfault at 0 ip 0 sp 0 error 4 likely on CPU 4 (core 4, socket 0)",
			},
			-1: {},
			0: {
				"May 29 18:37:47 host kernel: bar[20]: segfault at 0 ip 0 sp 0 error 4 likely on CPU 15 (core 15, socket 0)",
				"May 29 18:38:00 host kernel: bar[21]: segfault at 0 ip 0 sp 0 error 4 likely on CPU 4 (core 4, socket 0)",
			},
		},
	}
}

func TestScannerScan(t *testing.T) {
	source := newFakeSource()
	scanner := NewScanner(source, ScanOptions{MaxBoots: -1}, zaptest.NewLogger(t))

	report, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ScanID)
	assert.Equal(t, []int{-2, -1, 0}, source.reads)
	require.Len(t, report.Records, 3)
	assert.Equal(t, -2, report.Records[0].Boot)
	assert.Equal(t, "bar[20]", report.Records[1].Source)
	assert.Equal(t, 0, report.Records[2].Boot)

	assert.Equal(t, ScanStats{
		BootsListed:  3,
		BootsScanned: 3,
		LinesRead:    4,
		RecordsFound: 3,
	}, report.Stats)
}

func TestScannerMaxBoots(t *testing.T) {
	source := newFakeSource()
	scanner := NewScanner(source, ScanOptions{MaxBoots: 1}, zaptest.NewLogger(t))

	report, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, source.reads)
	assert.Len(t, report.Records, 2)
}

func TestScannerSkipsUnreadableBoot(t *testing.T) {
	source := newFakeSource()
	delete(source.logs, -2)
	source.errs = map[int]error{-2: errors.New("journal file corrupted")}
	scanner := NewScanner(source, ScanOptions{MaxBoots: -1}, zaptest.NewLogger(t))

	report, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.BootsFailed)
	assert.Zero(t, report.Stats.BootsPartial)
	assert.Equal(t, 2, report.Stats.BootsScanned)
	assert.Len(t, report.Boots, 2)
	assert.Len(t, report.Records, 2)
}

func TestScannerKeepsPartialBoot(t *testing.T) {
	source := newFakeSource()
	source.errs = map[int]error{-2: errors.New("exit status 1")}
	scanner := NewScanner(source, ScanOptions{MaxBoots: -1}, zaptest.NewLogger(t))

	report, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScanStats{
		BootsListed:  3,
		BootsScanned: 3,
		BootsPartial: 1,
		LinesRead:    4,
		RecordsFound: 3,
	}, report.Stats)
	require.Len(t, report.Records, 3)
	assert.Equal(t, "foo[10]", report.Records[0].Source)
	assert.Equal(t, -2, report.Boots[0].Index)
}

func TestScannerListError(t *testing.T) {
	source := newFakeSource()
	source.boots = nil
	source.listErr = errors.New("journalctl not found")
	scanner := NewScanner(source, ScanOptions{MaxBoots: -1}, nil)

	_, err := scanner.Scan(context.Background())
	assert.Error(t, err)
	assert.Empty(t, source.reads)
}

func TestScannerPartialBootList(t *testing.T) {
	source := newFakeSource()
	source.listErr = errors.New("exit status 1")
	scanner := NewScanner(source, ScanOptions{MaxBoots: -1}, zaptest.NewLogger(t))

	report, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{-2, -1, 0}, source.reads)
	assert.Len(t, report.Records, 3)
}

func TestScannerNoRecords(t *testing.T) {
	source := &fakeSource{boots: []journald.Boot{{Index: 0}}}
	scanner := NewScanner(source, ScanOptions{MaxBoots: -1}, zaptest.NewLogger(t))

	report, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report.Records)
	assert.Empty(t, report.Records)
}

func TestScannerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(newFakeSource(), ScanOptions{MaxBoots: -1}, zaptest.NewLogger(t))
	_, err := scanner.Scan(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

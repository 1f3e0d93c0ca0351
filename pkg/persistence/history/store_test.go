package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/corestab/pkg/journald"
	"github.com/yairfalse/corestab/pkg/stability"
	"go.uber.org/zap/zaptest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := &stability.Report{
		ScanID:    "scan-1",
		StartedAt: time.Now(),
		Boots: []journald.Boot{
			{Index: -1, ID: "9f8e7d6c5b4a39281706f5e4d3c2b1a0"},
			{Index: 0, ID: "0123456789abcdef0123456789abcdef"},
		},
		Records: []stability.Record{
			{Timestamp: "May 28 10:00:00", Boot: -1, Source: "foo[1]", Message: "foo[1]: segfault", Core: 15},
			{Timestamp: "May 29 10:00:00", Boot: 0, Source: "bar[2]", Message: "bar[2]: segfault", Core: 15},
			{Timestamp: "May 29 10:05:00", Boot: 0, Source: "bar[3]", Message: "bar[3]: segfault", Core: 2, Socket: 1},
		},
		Stats: stability.ScanStats{BootsScanned: 2},
	}

	inserted, err := store.Save(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	counts, err := store.CountByCore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CoreCount{
		{Socket: 0, Core: 15, Events: 2, Boots: 2},
		{Socket: 1, Core: 2, Events: 1, Boots: 1},
	}, counts)
}

func TestSaveDedupsAcrossReboots(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record := stability.Record{Timestamp: "May 29 10:00:00", Boot: 0, Source: "bar[2]", Message: "bar[2]: segfault", Core: 15}
	first := &stability.Report{
		ScanID:  "scan-1",
		Boots:   []journald.Boot{{Index: 0, ID: "0123456789abcdef0123456789abcdef"}},
		Records: []stability.Record{record},
	}
	_, err := store.Save(ctx, first)
	require.NoError(t, err)

	// after a reboot the same boot is reported as -1
	record.Boot = -1
	second := &stability.Report{
		ScanID:  "scan-2",
		Boots:   []journald.Boot{{Index: -1, ID: "0123456789abcdef0123456789abcdef"}},
		Records: []stability.Record{record},
	}
	inserted, err := store.Save(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	counts, err := store.CountByCore(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Events)
}

func TestSaveKeepsRepeatedFaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	repeated := stability.Record{Timestamp: "May 29 10:00:00", Boot: 0, Source: "bar[2]", Message: "bar[2]: segfault", Core: 15}
	other := repeated
	other.Source = "bar"

	report := &stability.Report{
		ScanID:  "scan-1",
		Boots:   []journald.Boot{{Index: 0, ID: "0123456789abcdef0123456789abcdef"}},
		Records: []stability.Record{repeated, repeated, other},
	}

	inserted, err := store.Save(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	// rescanning the same boot adds nothing
	report.ScanID = "scan-2"
	inserted, err = store.Save(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	// a third copy showing up later in the boot is new
	report.ScanID = "scan-3"
	report.Records = append(report.Records, repeated)
	inserted, err = store.Save(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	counts, err := store.CountByCore(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 4, counts[0].Events)
}

func TestCountByCoreEmpty(t *testing.T) {
	store := openTestStore(t)

	counts, err := store.CountByCore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestBootIDsByIndex(t *testing.T) {
	ids := bootIDsByIndex([]journald.Boot{{Index: -3}, {Index: 0, ID: "abc"}})
	assert.Equal(t, map[int]string{-3: "index:-3", 0: "abc"}, ids)
}

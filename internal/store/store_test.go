package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lfsrcrack/internal/lfsr"
	"lfsrcrack/internal/models"
	"lfsrcrack/internal/search"
)

var sample8 = []byte{
	0x2B, 0xFC, 0x8E, 0x2B, 0x35, 0x61, 0xC0, 0x4F,
	0xBB, 0xC7, 0x3F, 0xA4, 0x3D, 0x5D, 0x96, 0x54,
	0x0D, 0x0A, 0xA0, 0x08, 0xB3, 0x09, 0x24, 0xCE,
	0x47, 0xDA, 0x0E, 0xC6, 0x75, 0x30, 0xD3,
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSearchPersistsHits(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	srch, err := search.New(search.Options{
		Width:      lfsr.Width8,
		Ciphertext: sample8,
		Initial:    0x42,
		Workers:    4,
		Interval:   time.Millisecond,
	})
	require.NoError(t, err)

	run, err := st.CreateRun(ctx, RunParams{Width: lfsr.Width8, Initial: 0x42, Ciphertext: sample8, Chunks: srch.Chunks()})
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, "0x42", run.InitialHex)
	assert.Equal(t, models.RunRunning, run.Status)

	sum, err := srch.Run(st.Sink(run.ID, zap.NewNop().Sugar()))
	require.NoError(t, err)
	require.NoError(t, st.FinishRun(ctx, run.ID, sum, nil))

	hits, err := st.ListHits(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "0x1d", hits[0].TapsHex)
	pt, err := hits[0].Plaintext()
	require.NoError(t, err)
	assert.Equal(t, "Tymkrs + Wire + Ninja wuz here!", pt)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunDone, got.Status)
	assert.Equal(t, "256", got.Checked)
	assert.Equal(t, int64(1), got.Hits)
	assert.NotNil(t, got.FinishedAt)
	assert.Len(t, got.Found, 1)

	var chunks []search.Chunk
	require.NoError(t, got.Chunks.Decode(&chunks))
	assert.Equal(t, srch.Chunks(), chunks)
}

func TestRecordHitWithNUL(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run, err := st.CreateRun(ctx, RunParams{Width: lfsr.Width8, Initial: 0x42, Ciphertext: []byte{0x17, 0xec, 0x00}})
	require.NoError(t, err)

	hit := search.Hit{Worker: 2, Width: lfsr.Width8, Taps: 0x1d, Plaintext: "hi\x00"}
	require.True(t, lfsr.PrintableString([]byte(hit.Plaintext)))
	require.NoError(t, st.RecordHit(ctx, run.ID, hit))

	hits, err := st.ListHits(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "686900", hits[0].PlaintextHex)
	assert.NotContains(t, hits[0].PlaintextHex, "\x00")
	pt, err := hits[0].Plaintext()
	require.NoError(t, err)
	assert.Equal(t, "hi\x00", pt)
	assert.Equal(t, 2, hits[0].Worker)
}

func TestFinishRunFailed(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run, err := st.CreateRun(ctx, RunParams{Width: lfsr.Width64, Initial: 1, Ciphertext: []byte{1, 2}})
	require.NoError(t, err)
	require.NoError(t, st.FinishRun(ctx, run.ID, search.Summary{}, errors.New("boom")))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "boom", *got.Error)
	assert.Equal(t, "0x0000000000000001", got.InitialHex)

	require.Error(t, st.FinishRun(ctx, "missing", search.Summary{}, nil))
}

func TestRunsForFingerprint(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for i := 0; i < 2; i++ {
		_, err := st.CreateRun(ctx, RunParams{Width: lfsr.Width8, Initial: 0x42, Ciphertext: sample8})
		require.NoError(t, err)
	}
	_, err := st.CreateRun(ctx, RunParams{Width: lfsr.Width8, Initial: 0x42, Ciphertext: []byte{0xff}})
	require.NoError(t, err)

	runs, err := st.RunsFor(ctx, sample8)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Len(t, Fingerprint(sample8), 64)
	assert.NotEqual(t, Fingerprint(sample8), Fingerprint([]byte{0xff}))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://u:p@localhost/db"))
	assert.True(t, isPostgres("host=localhost user=u dbname=db"))
	assert.False(t, isPostgres("file:runs.db"))
	assert.False(t, isPostgres("/tmp/runs.db"))
}

package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPersistUpdatesStats(t *testing.T) {
	vol := newFakeVolume()
	w, stats := newTestWriter(t, vol, 0, 0)

	require.NoError(t, w.persist([]byte("hello\n")))

	snap := stats.snapshot()
	assert.Equal(t, uint64(6), snap.TotalBytesWritten)
	assert.NotZero(t, snap.LastWriteTime)
	assert.Equal(t, uint64(1), snap.TotalFilesCreated)
	assert.Equal(t, 1, vol.only(t).syncs)
	assert.Equal(t, "hello\n", string(vol.only(t).data))
}

func TestPersistWithoutFile(t *testing.T) {
	vol := newFakeVolume()
	w, stats := newTestWriter(t, vol, 0, 0)
	require.NoError(t, w.close())

	err := w.persist([]byte("orphan"))
	require.ErrorIs(t, err, ErrWriteFailed)
	assert.Equal(t, uint32(1), stats.snapshot().WriteErrors)
}

func TestPersistWriteFailure(t *testing.T) {
	vol := newFakeVolume()
	w, stats := newTestWriter(t, vol, 0, 0)

	f := vol.only(t)
	f.failWrites = true
	err := w.persist([]byte("doomed"))
	require.ErrorIs(t, err, ErrWriteFailed)

	snap := stats.snapshot()
	assert.Equal(t, uint32(1), snap.WriteErrors)
	assert.Zero(t, snap.TotalBytesWritten)
	// Durability flush is still attempted after a failed write
	assert.Equal(t, 1, f.syncs)
}

func TestPersistSyncFailureNonFatal(t *testing.T) {
	vol := newFakeVolume()
	w, stats := newTestWriter(t, vol, 0, 0)

	vol.only(t).failSync = true
	require.NoError(t, w.persist([]byte("kept")))
	assert.Equal(t, uint64(4), stats.snapshot().TotalBytesWritten)
}

func TestOpenReusesRecordedFile(t *testing.T) {
	vol := newFakeVolume()
	w, _ := newTestWriter(t, vol, 0, 0)
	require.NoError(t, w.persist([]byte("existing content")))

	name := w.fileName
	require.NoError(t, w.close())
	require.NoError(t, w.open(false))

	assert.Equal(t, name, w.fileName)
	assert.Equal(t, int64(len("existing content")), w.fileSize)
}

func TestRotationBySize(t *testing.T) {
	vol := newFakeVolume()
	w, stats := newTestWriter(t, vol, 10, 0)

	first := w.fileName
	require.NoError(t, w.persist([]byte("12345678")))

	// Next span would push the file past the limit
	require.NoError(t, w.persist([]byte("87654321")))

	assert.NotEqual(t, first, w.fileName)
	assert.Equal(t, uint64(2), stats.snapshot().TotalFilesCreated)
	assert.Len(t, vol.files, 2)
	assert.Equal(t, "12345678", string(vol.files[first].data))
	assert.Equal(t, "87654321", string(vol.files[w.fileName].data))
	assert.True(t, vol.files[first].closed)
}

func TestRotationEvictsOldest(t *testing.T) {
	vol := newFakeVolume()
	w, _ := newTestWriter(t, vol, 10, 2)

	oldest := w.fileName
	require.NoError(t, w.persist([]byte("12345678")))

	require.NoError(t, w.persist([]byte("12345678")))
	assert.Empty(t, vol.removed)

	require.NoError(t, w.persist([]byte("12345678")))
	assert.Equal(t, []string{oldest}, vol.removed)
	assert.Len(t, vol.files, 2)
	assert.Contains(t, vol.files, w.fileName)
}

// A failed rotation keeps the previous handle active: the pending record is
// appended past the size limit instead of being lost or crashing.
func TestRotationCreateFailureKeepsWriting(t *testing.T) {
	vol := newFakeVolume()
	w, stats := newTestWriter(t, vol, 10, 0)

	name := w.fileName
	require.NoError(t, w.persist([]byte("12345678")))

	vol.failCreate = true
	require.NoError(t, w.persist([]byte("87654321")))

	assert.Equal(t, name, w.fileName)
	assert.Equal(t, "1234567887654321", string(vol.files[name].data))
	assert.Equal(t, uint64(1), stats.snapshot().TotalFilesCreated)
	assert.Zero(t, stats.snapshot().WriteErrors)
	assert.False(t, vol.files[name].closed)

	// Rotation resumes once file creation recovers
	vol.failCreate = false
	require.NoError(t, w.persist([]byte("again")))
	assert.NotEqual(t, name, w.fileName)
	assert.Equal(t, "again", string(vol.files[w.fileName].data))
	assert.Equal(t, uint64(2), stats.snapshot().TotalFilesCreated)
	assert.True(t, vol.files[name].closed)
}

// Rotations within one wall-clock second get a sequence suffix instead of
// reusing the previous file name.
func TestRotationSameSecondUniqueNames(t *testing.T) {
	vol := newFakeVolume()
	w := &fileWriter{
		volume:      vol,
		maxFileSize: 10,
		prefix:      "plouton_data",
		ext:         "dat",
		stats:       &statsCollector{},
		diag:        zap.NewNop(),
		now:         fixedClock,
	}
	require.NoError(t, w.open(true))
	assert.Equal(t, "plouton_data_20250115_103000.dat", w.fileName)

	require.NoError(t, w.persist([]byte("12345678")))
	require.NoError(t, w.persist([]byte("12345678")))
	assert.Equal(t, "plouton_data_20250115_103000_1.dat", w.fileName)

	require.NoError(t, w.persist([]byte("12345678")))
	assert.Equal(t, "plouton_data_20250115_103000_2.dat", w.fileName)
	assert.Len(t, vol.files, 3)
}

func TestEvictionIgnoresForeignFiles(t *testing.T) {
	vol := newFakeVolume()
	_, err := vol.Create("unrelated.txt")
	require.NoError(t, err)

	w, _ := newTestWriter(t, vol, 10, 1)
	require.NoError(t, w.persist([]byte("12345678")))
	require.NoError(t, w.persist([]byte("12345678")))

	assert.Contains(t, vol.files, "unrelated.txt")
	assert.NotContains(t, vol.removed, "unrelated.txt")
}

func TestCloseIdempotent(t *testing.T) {
	vol := newFakeVolume()
	w, _ := newTestWriter(t, vol, 0, 0)

	require.NoError(t, w.close())
	require.NoError(t, w.close())
	assert.True(t, vol.only(t).closed)
}

package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plouton-fw/transfer/storage"
)

// fakeFile is an in-memory append-only file with failure injection.
type fakeFile struct {
	name       string
	data       []byte
	failWrites bool
	failSync   bool
	syncs      int
	closed     bool
	created    time.Time
}

func (f *fakeFile) Write(p []byte) (int, error) {
	if f.failWrites {
		return 0, errFakeWrite
	}
	f.data = append(f.data, p...)
	return len(p), nil
}

func (f *fakeFile) Sync() error {
	f.syncs++
	if f.failSync {
		return errFakeSync
	}
	return nil
}

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

func (f *fakeFile) Name() string { return f.name }

func (f *fakeFile) Size() (int64, error) { return int64(len(f.data)), nil }

var (
	errFakeWrite = fmtErrorf("fake write failure")
	errFakeSync  = fmtErrorf("fake sync failure")
)

// fakeVolume is an in-memory Volume tracking creation order for eviction
// tests.
type fakeVolume struct {
	files      map[string]*fakeFile
	failCreate bool
	failWrites bool // applied to newly created files
	removed    []string
	seq        int
}

func newFakeVolume() *fakeVolume {
	return &fakeVolume{files: map[string]*fakeFile{}}
}

func (v *fakeVolume) Create(name string) (storage.File, error) {
	if v.failCreate {
		return nil, fmtErrorf("fake create failure")
	}
	if f, ok := v.files[name]; ok {
		return f, nil
	}
	v.seq++
	f := &fakeFile{
		name:       name,
		failWrites: v.failWrites,
		created:    time.Unix(int64(v.seq), 0),
	}
	v.files[name] = f
	return f, nil
}

func (v *fakeVolume) Open(name string) (storage.File, error) {
	f, ok := v.files[name]
	if !ok {
		return nil, fmtErrorf("fake open: no such file '%s'", name)
	}
	return f, nil
}

func (v *fakeVolume) List() ([]storage.Info, error) {
	var infos []storage.Info
	for _, f := range v.files {
		infos = append(infos, storage.Info{
			Name:    f.name,
			Size:    int64(len(f.data)),
			ModTime: f.created,
		})
	}
	return infos, nil
}

func (v *fakeVolume) Remove(name string) error {
	if _, ok := v.files[name]; !ok {
		return fmtErrorf("fake remove: no such file '%s'", name)
	}
	delete(v.files, name)
	v.removed = append(v.removed, name)
	return nil
}

// only returns the single live file, failing the test otherwise.
func (v *fakeVolume) only(t *testing.T) *fakeFile {
	t.Helper()
	require.Len(t, v.files, 1)
	for _, f := range v.files {
		return f
	}
	return nil
}

// fakeDevice is a configurable storage.Device.
type fakeDevice struct {
	removable bool
	present   bool
	volume    storage.Volume
}

func (d fakeDevice) Removable() bool { return d.removable }

func (d fakeDevice) Present() bool { return d.present }

func (d fakeDevice) Filesystem() (storage.Volume, bool) {
	return d.volume, d.volume != nil
}

// stepClock advances one second per call, keeping timestamped file names
// unique across rotations.
type stepClock struct {
	t time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// fixedClock never advances.
func fixedClock() time.Time {
	return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
}

// newTestContext builds a context over a fake volume with a fixed clock.
func newTestContext(t *testing.T, mutate func(*Config)) (*Context, *fakeVolume) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.MaxFileSize = "0" // rotation off unless a test enables it
	if mutate != nil {
		mutate(cfg)
	}

	vol := newFakeVolume()
	ctx, err := New(cfg, storage.FixedLocator{Volume: vol}, WithClock(fixedClock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })

	return ctx, vol
}

// newTestWriter builds a fileWriter over a fake volume with a stepping
// clock and an opened file.
func newTestWriter(t *testing.T, vol *fakeVolume, maxFileSize int64, maxFiles int) (*fileWriter, *statsCollector) {
	t.Helper()

	stats := &statsCollector{}
	w := &fileWriter{
		volume:      vol,
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
		prefix:      "plouton_data",
		ext:         "dat",
		stats:       stats,
		diag:        zap.NewNop(),
		now:         newStepClock().now,
	}
	require.NoError(t, w.open(true))
	return w, stats
}

package transfer

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/plouton-fw/transfer/storage"
)

// fileWriter persists byte spans to the active output file on the located
// volume, rotating by size when configured.
type fileWriter struct {
	volume   storage.Volume
	file     storage.File
	fileName string
	fileSize int64

	// stamp and seq track the last file name timestamp so rotations within
	// one wall-clock second still produce a unique name
	stamp string
	seq   int

	maxFileSize int64 // 0 disables rotation
	maxFiles    int   // 0 keeps all rotated files
	prefix      string
	ext         string

	stats *statsCollector
	diag  *zap.Logger
	now   func() time.Time
}

// open creates a new timestamped output file, or reopens the previously
// recorded name when newFile is false.
func (w *fileWriter) open(newFile bool) error {
	var (
		file storage.File
		err  error
	)

	if newFile || w.fileName == "" {
		name := w.nextName()
		file, err = w.volume.Create(name)
		if err != nil {
			return fmtErrorf("failed to create output file '%s': %w", name, err)
		}
		w.stats.recordFileCreated()
		w.fileName = name
	} else {
		file, err = w.volume.Open(w.fileName)
		if err != nil {
			return fmtErrorf("failed to reopen output file '%s': %w", w.fileName, err)
		}
	}

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			w.diag.Warn("failed to close previous output file", zap.Error(err))
		}
	}

	w.file = file
	w.fileSize = 0
	if size, err := file.Size(); err == nil {
		w.fileSize = size
	}

	w.diag.Info("output file opened", zap.String("file", w.fileName))
	return nil
}

// nextName derives the next timestamped output file name. Names generated
// within the same second carry a rotation sequence suffix so a rotation
// never reuses the name of the file it replaces.
func (w *fileWriter) nextName() string {
	stamp := w.now().Format(fileTimeLayout)
	if stamp == w.stamp {
		w.seq++
	} else {
		w.stamp = stamp
		w.seq = 0
	}
	if w.seq > 0 {
		return w.prefix + "_" + stamp + "_" + strconv.Itoa(w.seq) + "." + w.ext
	}
	return w.prefix + "_" + stamp + "." + w.ext
}

// persist appends the full span at end-of-file in one call and requests a
// durability flush from the handle regardless of write outcome. A failed
// durability flush is logged, not fatal.
func (w *fileWriter) persist(p []byte) error {
	if w.file == nil {
		w.stats.recordWriteError()
		return fmtErrorf("%w: no output file", ErrWriteFailed)
	}
	if len(p) == 0 {
		return nil
	}

	if w.maxFileSize > 0 && w.fileSize+int64(len(p)) > w.maxFileSize {
		if err := w.rotate(); err != nil {
			w.diag.Error("file rotation failed", zap.Error(err))
			// The previous handle stays open; keep appending past the
			// limit rather than drop the record
		}
	}

	n, err := w.file.Write(p)
	if err != nil {
		w.stats.recordWriteError()
		w.diag.Error("file write failed", zap.String("file", w.fileName), zap.Error(err))
		w.sync()
		return fmtErrorf("%w: %v", ErrWriteFailed, err)
	}

	w.fileSize += int64(n)
	w.stats.recordWrite(n, w.now())
	w.sync()
	return nil
}

func (w *fileWriter) sync() {
	if w.file == nil {
		return
	}
	if err := w.file.Sync(); err != nil {
		w.diag.Warn("durability flush failed", zap.String("file", w.fileName), zap.Error(err))
	}
}

// rotate opens the replacement file before releasing the current one, so a
// failed create leaves the previous handle active and the pending record is
// still written. Evicts the oldest rotated files beyond the configured count.
func (w *fileWriter) rotate() error {
	if err := w.file.Sync(); err != nil {
		w.diag.Warn("sync before rotation failed", zap.Error(err))
	}

	if err := w.open(true); err != nil {
		return err
	}

	w.evictOldest()
	return nil
}

// evictOldest removes the oldest matching files once the count exceeds
// maxFiles. The active file is never evicted.
func (w *fileWriter) evictOldest() {
	if w.maxFiles <= 0 {
		return
	}

	infos, err := w.volume.List()
	if err != nil {
		w.diag.Warn("failed to list volume for eviction", zap.Error(err))
		return
	}

	var matching []storage.Info
	suffix := "." + w.ext
	for _, info := range infos {
		if info.Name == w.fileName {
			continue
		}
		if strings.HasPrefix(info.Name, w.prefix+"_") && strings.HasSuffix(info.Name, suffix) {
			matching = append(matching, info)
		}
	}

	// +1 for the active file
	excess := len(matching) + 1 - w.maxFiles
	if excess <= 0 {
		return
	}

	sort.Slice(matching, func(i, j int) bool {
		if matching[i].ModTime.Equal(matching[j].ModTime) {
			return matching[i].Name < matching[j].Name
		}
		return matching[i].ModTime.Before(matching[j].ModTime)
	})

	for i := 0; i < excess && i < len(matching); i++ {
		if err := w.volume.Remove(matching[i].Name); err != nil {
			w.diag.Warn("failed to evict rotated file",
				zap.String("file", matching[i].Name), zap.Error(err))
			continue
		}
		w.diag.Info("evicted rotated file", zap.String("file", matching[i].Name))
	}
}

// close syncs and releases the active file handle.
func (w *fileWriter) close() error {
	if w.file == nil {
		return nil
	}

	var finalErr error
	if err := w.file.Sync(); err != nil {
		finalErr = fmtErrorf("failed to sync output file '%s': %w", w.fileName, err)
	}
	if err := w.file.Close(); err != nil {
		finalErr = combineErrors(finalErr,
			fmtErrorf("failed to close output file '%s': %w", w.fileName, err))
	}
	w.file = nil
	return finalErr
}

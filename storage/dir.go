package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirVolume is a directory-backed Volume. It is the default real backend
// when the target media is already mounted as a directory, and the backend
// used by tests.
type DirVolume struct {
	dir string
}

// NewDirVolume creates the directory if needed and returns a volume over it.
func NewDirVolume(dir string) (*DirVolume, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: directory path cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage: failed to create directory '%s': %w", dir, err)
	}
	return &DirVolume{dir: dir}, nil
}

// Dir returns the backing directory path.
func (v *DirVolume) Dir() string {
	return v.dir
}

func (v *DirVolume) Create(name string) (File, error) {
	f, err := os.OpenFile(filepath.Join(v.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create file '%s': %w", name, err)
	}
	return &dirFile{f: f, name: name}, nil
}

func (v *DirVolume) Open(name string) (File, error) {
	f, err := os.OpenFile(filepath.Join(v.dir, name), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open file '%s': %w", name, err)
	}
	return &dirFile{f: f, name: name}, nil
}

func (v *DirVolume) List() ([]Info, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read directory '%s': %w", v.dir, err)
	}
	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{Name: entry.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return infos, nil
}

func (v *DirVolume) Remove(name string) error {
	if err := os.Remove(filepath.Join(v.dir, name)); err != nil {
		return fmt.Errorf("storage: failed to remove file '%s': %w", name, err)
	}
	return nil
}

// dirFile wraps *os.File opened in append mode.
type dirFile struct {
	f    *os.File
	name string
}

func (d *dirFile) Write(p []byte) (int, error) {
	return d.f.Write(p)
}

func (d *dirFile) Sync() error {
	return d.f.Sync()
}

func (d *dirFile) Close() error {
	return d.f.Close()
}

func (d *dirFile) Name() string {
	return d.name
}

func (d *dirFile) Size() (int64, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// DirDevice presents a directory-backed volume as an always-present
// removable device, for use with Detect and DeviceLocator.
type DirDevice struct {
	Vol *DirVolume
}

func (d DirDevice) Removable() bool { return true }

func (d DirDevice) Present() bool { return d.Vol != nil }

func (d DirDevice) Filesystem() (Volume, bool) {
	if d.Vol == nil {
		return nil, false
	}
	return d.Vol, true
}

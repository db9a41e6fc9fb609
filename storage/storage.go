// Package storage defines the append-only media collaborators used by the
// transfer engine: block device enumeration, volumes with a file-system view,
// and append-only file handles. The engine never interprets device internals;
// it only appends, syncs, and closes through these interfaces.
package storage

import (
	"errors"
	"time"
)

// ErrNoDevice is returned when no usable storage target can be located.
var ErrNoDevice = errors.New("storage: no usable device found")

// Info describes one file on a volume.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// File is an append-only file handle. Write always appends at end-of-file.
type File interface {
	Write(p []byte) (int, error)
	Sync() error
	Close() error
	Name() string
	Size() (int64, error)
}

// Volume is a file-system view over a storage device.
type Volume interface {
	// Create opens a new file for appending, creating it if necessary.
	Create(name string) (File, error)
	// Open reopens an existing file for appending.
	Open(name string) (File, error)
	List() ([]Info, error)
	Remove(name string) error
}

// Device is a candidate storage target as reported by the platform.
type Device interface {
	Removable() bool
	Present() bool
	// Filesystem returns the device's file-system view, if it exposes one.
	Filesystem() (Volume, bool)
}

// Locator resolves the volume the engine writes to.
type Locator interface {
	Locate() (Volume, error)
}

// Detect scans candidate devices and returns the file system of the first
// one that is removable, currently present, and exposes a file-system view.
func Detect(devices []Device) (Volume, error) {
	for _, dev := range devices {
		if dev == nil || !dev.Removable() || !dev.Present() {
			continue
		}
		if vol, ok := dev.Filesystem(); ok && vol != nil {
			return vol, nil
		}
	}
	return nil, ErrNoDevice
}

// DeviceLocator locates a volume by scanning a fixed device list.
type DeviceLocator struct {
	Devices []Device
}

func (l DeviceLocator) Locate() (Volume, error) {
	return Detect(l.Devices)
}

// FixedLocator pins the engine to a known volume, bypassing detection.
type FixedLocator struct {
	Volume Volume
}

func (l FixedLocator) Locate() (Volume, error) {
	if l.Volume == nil {
		return nil, ErrNoDevice
	}
	return l.Volume, nil
}

package persistence

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile is a read-only memory-mapped view of a file, grounded on
// duynguyendang-gca's pkg/meb/vector/mmap.go loadMmap/unloadMmap pair,
// ported from raw syscalls to golang.org/x/sys/unix's typed wrappers.
type mappedFile struct {
	data []byte
	f    *os.File
}

// openMapped opens path and maps its full contents read-only. Returns
// (nil, nil) if path does not exist, distinguishing "nothing to recover
// yet" from a genuine I/O error.
func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("persistence: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, fmt.Errorf("persistence: %s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("persistence: mmap %s: %w", path, err)
	}

	return &mappedFile{data: data, f: f}, nil
}

// Close unmaps and closes the underlying file.
func (m *mappedFile) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
	}
	if cerr := m.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// writeAtomic writes data to path via a temp-file-then-rename sequence so
// a partial write is never observed as committed (spec §4.5: "Writers
// MUST use an atomic rename + fsync sequence"), grounded on
// duynguyendang-gca's storage.go SaveSnapshot pattern.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("persistence: create %s: %w", tmp, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("persistence: write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("persistence: fsync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("persistence: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("persistence: rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

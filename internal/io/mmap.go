package io

import (
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

// MappedFile is a read-only memory-mapped view of a log file. VRChat keeps
// appending to the live log, so tail reads reopen the mapping to see the
// new bytes; the size here is fixed at open time.
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
}

// OpenMapped maps the file at path
func OpenMapped(path string) (*MappedFile, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		reader.Close()
		return nil, err
	}

	return &MappedFile{
		reader: reader,
		size:   info.Size(),
		path:   path,
	}, nil
}

// Size returns the mapped size. The file on disk may already be larger.
func (m *MappedFile) Size() int64 {
	return m.size
}

// ReadAt reads len(p) bytes at offset
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	return m.reader.ReadAt(p, off)
}

// ReadRange returns the bytes in [start, end), clamped to the mapped size
func (m *MappedFile) ReadRange(start, end int64) ([]byte, error) {
	if end > m.size {
		end = m.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	if _, err := m.reader.ReadAt(buf, start); err != nil {
		return nil, fmt.Errorf("read %s at %d: %w", m.path, start, err)
	}
	return buf, nil
}

// Close unmaps the file
func (m *MappedFile) Close() error {
	return m.reader.Close()
}

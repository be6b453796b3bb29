package source

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileSource wraps a regular, seekable file, using SEEK_HOLE/SEEK_DATA to
// report holes without reading them — the feature that makes checksumming
// a mostly-empty sparse image fast, grounded on file.c's use of lseek with
// the same two whences.
type FileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path for reading and stats it once for Size.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &FileSource{f: f, size: info.Size()}, nil
}

func (s *FileSource) Read(p []byte) (int, error) {
	return s.f.Read(p)
}

func (s *FileSource) Size() int64 {
	return s.size
}

func (s *FileSource) Close() error {
	return s.f.Close()
}

// Extents reports the hole/data runs in [offset, offset+length) by
// walking SEEK_DATA/SEEK_HOLE. If the underlying filesystem does not
// support them, lseek returns ENXIO/EINVAL and this falls back to
// reporting the whole range as data.
func (s *FileSource) Extents(offset, length int64) ([]Extent, error) {
	end := offset + length
	var extents []Extent

	pos := offset
	for pos < end {
		dataStart, err := unix.Seek(int(s.f.Fd()), pos, unix.SEEK_DATA)
		if err != nil {
			if pos == offset {
				// No SEEK_DATA support at all: treat the whole range as
				// data rather than failing the caller outright.
				return []Extent{{Length: length, Zero: false}}, nil
			}
			// ENXIO from SEEK_DATA past the last data region means the
			// rest of the file, up to end, is a hole.
			extents = append(extents, Extent{Length: end - pos, Zero: true})
			break
		}

		if dataStart > pos {
			extents = append(extents, Extent{Length: dataStart - pos, Zero: true})
			pos = dataStart
			if pos >= end {
				break
			}
		}

		holeStart, err := unix.Seek(int(s.f.Fd()), pos, unix.SEEK_HOLE)
		if err != nil {
			extents = append(extents, Extent{Length: end - pos, Zero: false})
			break
		}

		dataEnd := holeStart
		if dataEnd > end {
			dataEnd = end
		}
		extents = append(extents, Extent{Length: dataEnd - pos, Zero: false})
		pos = dataEnd
	}

	// Seeking above moved the file's read cursor; callers that interleave
	// Read and Extents (blksum does) must reposition it themselves with
	// Seek before the next Read.
	return extents, nil
}

// Seek exposes the underlying file's seek so callers can reposition the
// read cursor after calling Extents.
func (s *FileSource) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

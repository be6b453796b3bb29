package source

import "io"

// PipeSource wraps an io.Reader with no seek or hole support — the shape
// of stdin, or any other stream source, grounded on pipe-src.c which
// likewise offers no extents.
type PipeSource struct {
	r io.ReadCloser
}

// NewPipeSource wraps r. If r does not implement io.Closer, Close is a
// no-op.
func NewPipeSource(r io.Reader) *PipeSource {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return &PipeSource{r: rc}
}

func (p *PipeSource) Read(buf []byte) (int, error) {
	return p.r.Read(buf)
}

// Size always returns -1: a pipe's length is not knowable up front.
func (p *PipeSource) Size() int64 { return -1 }

// Extents always returns ErrExtentsUnsupported: a pipe has no holes to
// report cheaper than reading through them.
func (p *PipeSource) Extents(offset, length int64) ([]Extent, error) {
	return nil, ErrExtentsUnsupported
}

func (p *PipeSource) Close() error {
	return p.r.Close()
}

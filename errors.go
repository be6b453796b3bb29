package blkhash

import "golang.org/x/xerrors"

// Error kinds returned from package blkhash. Callers should use errors.Is
// against these sentinels rather than comparing error strings.
var (
	// ErrInvalidOption is returned by New and NewWithOptions when an Options
	// field is outside its accepted range (block size not a power of two or outside
	// [4KiB, 1MiB], streams outside [1, 128], threads outside [1, streams],
	// queue depth outside [0, 65536]).
	ErrInvalidOption = xerrors.New("blkhash: invalid option")

	// ErrAsyncDisabled is returned by AsyncUpdate and AsyncZero when the
	// Hash was constructed with a queue depth of 0.
	ErrAsyncDisabled = xerrors.New("blkhash: async interface disabled (queue depth is 0)")

	// ErrUnknownDigest is returned when the requested digest name has no
	// registered implementation.
	ErrUnknownDigest = xerrors.New("blkhash: unknown digest")

	// ErrFinalized is returned by Update, Zero, AsyncUpdate and AsyncZero
	// once Final has already been called.
	ErrFinalized = xerrors.New("blkhash: hash already finalized")

	// ErrShutdown is returned by Update, Zero, AsyncUpdate and AsyncZero
	// once Close has been called.
	ErrShutdown = xerrors.New("blkhash: hash is shut down")

	// ErrDigestFailed names the error kind for a failure inside a digest
	// implementation (allocation failure, algorithm rejected input). The
	// digests in package digest never fail, and an error a digest does
	// return is passed on as it is, without this sentinel.
	ErrDigestFailed = xerrors.New("blkhash: digest computation failed")
)

func xerrorsInvalidOption(format string, args ...interface{}) error {
	return xerrors.Errorf("%w: "+format, append([]interface{}{ErrInvalidOption}, args...)...)
}

package blkhash

// Options is the mutable builder used to construct a Hash, generalizing
// the C library's blkhash_opts_new/blkhash_opts_set_* pair: construct one
// with NewOptions, call the Set* methods to override defaults, then pass
// it to NewWithOptions (New uses the defaults directly).
type Options struct {
	digestName string
	blockSize  int
	threads    int
	streams    int
	queueDepth int
}

// DefaultDigest is the digest algorithm used when no Option overrides it.
const DefaultDigest = "sha256"

// NewOptions returns an Options set to the default block size, thread
// count, stream count and queue depth for the named digest. Pass it to
// NewWithOptions, or use New with functional Options if the defaults
// suffice.
func NewOptions(digestName string) *Options {
	return &Options{
		digestName: digestName,
		blockSize:  DefaultBlockSize,
		threads:    DefaultThreads,
		streams:    DefaultThreads,
		queueDepth: DefaultThreads * 2,
	}
}

// SetBlockSize overrides the block size. It must be a power of two; data
// passed to Update should be a multiple of it for best throughput.
func (o *Options) SetBlockSize(size int) *Options {
	o.blockSize = size
	return o
}

// SetThreads overrides the number of worker goroutines computing block
// digests.
func (o *Options) SetThreads(threads int) *Options {
	o.threads = threads
	return o
}

// SetStreams overrides the number of independent hash streams blocks are
// folded into. The stream count is part of the digest: changing it changes
// the resulting digest, while changing the thread count does not.
func (o *Options) SetStreams(streams int) *Options {
	o.streams = streams
	return o
}

// SetQueueDepth overrides the bounded submission queue's capacity, in
// 0..65536. 0 disables the async completion ring entirely: AsyncUpdate and
// AsyncZero return ErrAsyncDisabled, and only the synchronous Update/Zero
// calls work.
func (o *Options) SetQueueDepth(depth int) *Options {
	o.queueDepth = depth
	return o
}

// DigestName returns the digest name this Options was constructed with.
func (o *Options) DigestName() string { return o.digestName }

// BlockSize returns the currently configured block size.
func (o *Options) BlockSize() int { return o.blockSize }

// Threads returns the currently configured worker count.
func (o *Options) Threads() int { return o.threads }

// Option configures an Options value built by NewOptions, for callers that
// prefer the functional-options idiom over chained setters, e.g.
// New(blkhash.WithDigest("sha256"), blkhash.WithStreams(32)).
type Option func(*Options)

// WithDigest is the functional-option form of selecting the digest
// algorithm; it is the one setting NewOptions takes directly instead of as
// an Option, since every other default depends on nothing but the digest
// having already been chosen.
func WithDigest(name string) Option {
	return func(o *Options) { o.digestName = name }
}

// WithBlockSize is the functional-option form of Options.SetBlockSize.
func WithBlockSize(size int) Option {
	return func(o *Options) { o.SetBlockSize(size) }
}

// WithThreads is the functional-option form of Options.SetThreads.
func WithThreads(threads int) Option {
	return func(o *Options) { o.SetThreads(threads) }
}

// WithStreams is the functional-option form of Options.SetStreams.
func WithStreams(streams int) Option {
	return func(o *Options) { o.SetStreams(streams) }
}

// WithQueueDepth is the functional-option form of Options.SetQueueDepth.
func WithQueueDepth(depth int) Option {
	return func(o *Options) { o.SetQueueDepth(depth) }
}

// Package digest provides the pluggable block-digest abstraction used by
// package blkhash: a small factory and registry over the concrete hash
// algorithms a block or stream can be folded with, plus a "null" algorithm
// used to measure the cost of everything except hashing itself.
package digest

import (
	"crypto/sha1"
	"crypto/sha512"
	"hash"
	"sort"
	"sync"

	sha256simd "github.com/minio/sha256-simd"
	"golang.org/x/xerrors"
)

// MaxSize is the largest digest this package can produce, matching
// BLKHASH_MAX_MD_SIZE in the C API (EVP_MAX_MD_SIZE, the SHA-512 size).
const MaxSize = sha512.Size

// Digest computes a single message digest. A Digest is not safe for
// concurrent use; callers that need one per goroutine should call
// New once per goroutine (or pool the result themselves).
type Digest interface {
	// Init (re)initializes the digest to start accumulating a new message.
	Init()
	// Update folds len(p) bytes of p into the digest.
	Update(p []byte) error
	// Final returns the digest of everything written since Init and
	// releases any pooled resources held by the Digest. The Digest must
	// not be used again without calling Init.
	Final() ([]byte, error)
	// Size returns the number of bytes Final will return.
	Size() int
}

// factory constructs a new Digest instance for one algorithm.
type factory func() Digest

var (
	mu        sync.Mutex
	factories = map[string]factory{}
)

func register(name string, f factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// New looks up name and returns a freshly initialized Digest. It returns
// ErrUnknown wrapping name if no digest is registered under that name.
func New(name string) (Digest, error) {
	mu.Lock()
	f, ok := factories[name]
	mu.Unlock()

	if !ok {
		return nil, xerrors.Errorf("%w: %q", ErrUnknown, name)
	}

	d := f()
	d.Init()
	return d, nil
}

// List returns the names of every registered digest, sorted for stable
// output (used by the blksum --list-digests flag).
func List() []string {
	mu.Lock()
	defer mu.Unlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrUnknown is wrapped by New when the requested digest has no
// registered implementation.
var ErrUnknown = xerrors.New("digest: unknown algorithm")

func init() {
	register("null", newNull)
	register("sha1", newHashDigest(sha1.Size, func() hash.Hash { return sha1.New() }))
	register("sha256", newHashDigest(sha256simd.Size, func() hash.Hash { return sha256simd.New() }))
	register("sha512", newHashDigest(sha512.Size, func() hash.Hash { return sha512.New() }))
}

// hashDigest adapts the stdlib-shaped hash.Hash interface (and anything
// that implements it, such as sha256-simd) to Digest, pooling the
// underlying hash.Hash the way block digests are created and discarded at
// very high frequency by the worker pool.
type hashDigest struct {
	pool *sync.Pool
	size int
	h    hash.Hash
}

func newHashDigest(size int, newHash func() hash.Hash) factory {
	pool := &sync.Pool{New: func() interface{} { return newHash() }}
	return func() Digest {
		return &hashDigest{pool: pool, size: size}
	}
}

func (d *hashDigest) Init() {
	if d.h == nil {
		d.h = d.pool.Get().(hash.Hash)
	}
	d.h.Reset()
}

func (d *hashDigest) Update(p []byte) error {
	// hash.Hash.Write never returns an error for the algorithms registered
	// here, but the Digest interface leaves room for ones that can fail.
	d.h.Write(p)
	return nil
}

func (d *hashDigest) Final() ([]byte, error) {
	sum := d.h.Sum(make([]byte, 0, d.size))
	d.pool.Put(d.h)
	d.h = nil
	return sum, nil
}

func (d *hashDigest) Size() int {
	return d.size
}

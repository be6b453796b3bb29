package blkhash

// Write is an alias for Update, so a Hash can be handed to any Go API that
// only writes bytes into an io.Writer.
func (h *Hash) Write(p []byte) (int, error) {
	if err := h.Update(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Sum is a thin, destructive convenience wrapper around Final, provided
// for callers reaching for the familiar hash.Hash shape. Unlike a classic
// hash.Hash.Sum, it does not leave the Hash usable afterwards: Final is a
// one-shot operation that stops the worker pool, so a Hash cannot be
// "peeked" the way hash.Hash.Sum implies. Sum panics if Final returns an
// error.
func (h *Hash) Sum(b []byte) []byte {
	digest, err := h.Final()
	if err != nil {
		panic(err)
	}
	return append(b, digest...)
}

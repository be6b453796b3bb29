// Command blksum computes a content digest over a disk image, the way
// sha256sum does for a plain file, except that holes the file system
// reports in a sparse image are hashed as zero ranges instead of as data.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blkhash/blkhash"
	"github.com/blkhash/blkhash/digest"
	"github.com/blkhash/blkhash/source"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// defaultReadSize is the default amount of data read from the source per
// loop iteration; it should be a multiple of the block size for best
// throughput.
const defaultReadSize = 1 << 20 // 1 MiB

type cliOptions struct {
	digestName  string
	blockSize   int
	threads     int
	streams     int
	queueDepth  int
	readSize    int
	progress    bool
	listDigests bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fail(err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "blksum [flags] [FILE]",
		Short: "Compute a content digest over a disk image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.digestName, "digest", blkhash.DefaultDigest, "digest algorithm to use")
	flags.IntVar(&opts.blockSize, "block-size", blkhash.DefaultBlockSize, "block size in bytes, must be a power of two")
	flags.IntVar(&opts.threads, "threads", blkhash.DefaultThreads, "number of worker goroutines")
	flags.IntVar(&opts.streams, "streams", blkhash.DefaultThreads, "number of independent hash streams")
	flags.IntVar(&opts.queueDepth, "queue-depth", blkhash.DefaultThreads*2, "submission queue capacity, 0 disables the async interface")
	flags.IntVar(&opts.readSize, "read-size", defaultReadSize, "bytes read from the source per iteration")
	flags.BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	flags.BoolVar(&opts.listDigests, "list-digests", false, "list available digest algorithms and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *cliOptions) error {
	logger := newLogger(cmd.ErrOrStderr())

	if opts.listDigests {
		for _, name := range digest.List() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	src, err := openSource(args)
	if err != nil {
		return err
	}
	defer src.Close()

	h, err := blkhash.NewWithOptions(
		blkhash.NewOptions(opts.digestName).
			SetBlockSize(opts.blockSize).
			SetThreads(opts.threads).
			SetStreams(opts.streams).
			SetQueueDepth(opts.queueDepth),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	installSignalHandler(ctx, cancel, h)

	bar := newProgressBar(cmd.ErrOrStderr(), opts.progress, src.Size())
	defer bar.Finish()

	start := time.Now()
	n, err := feed(ctx, h, src, opts.readSize, bar, logger)
	if err != nil {
		return err
	}

	md, err := h.Final()
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Debug("finished", "bytes", n, "size", humanSize(n), "elapsed", elapsed)

	fmt.Fprintf(cmd.OutOrStdout(), "%x  %s\n", md, sourceName(args))
	return nil
}

// feed drives src into h block by block, using src.Extents (when
// supported) to turn holes into Zero calls instead of Update calls.
func feed(ctx context.Context, h *blkhash.Hash, src source.Source, readSize int, bar *progressbar.ProgressBar, logger *slog.Logger) (int64, error) {
	buf := make([]byte, readSize)
	var total int64
	var offset int64

	for {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		n, readErr := io.ReadFull(src, buf)
		if n > 0 {
			if err := hashChunk(ctx, h, src, offset, buf[:n], logger); err != nil {
				return total, err
			}
			total += int64(n)
			offset += int64(n)
			_ = bar.Add(n)
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}

// hashChunk hashes one chunk already read from src, using its extents (if
// the source exposes any) to forward zero runs to Zero instead of Update.
func hashChunk(ctx context.Context, h *blkhash.Hash, src source.Source, offset int64, chunk []byte, logger *slog.Logger) error {
	extents, err := src.Extents(offset, int64(len(chunk)))
	// Extents may move a seekable source's read cursor: put it back at the
	// end of this chunk before the next Read.
	if seeker, ok := src.(io.Seeker); ok {
		if _, seekErr := seeker.Seek(offset+int64(len(chunk)), io.SeekStart); seekErr != nil {
			return seekErr
		}
	}
	if err != nil {
		// No cheaper way to find holes than reading: fall back to letting
		// Update's own zero-detection fast path handle it.
		return h.UpdateContext(ctx, chunk)
	}

	var pos int64
	for _, e := range extents {
		part := chunk[pos : pos+e.Length]
		var updateErr error
		if e.Zero {
			updateErr = h.ZeroContext(ctx, len(part))
		} else {
			updateErr = h.UpdateContext(ctx, part)
		}
		if updateErr != nil {
			return updateErr
		}
		pos += e.Length
	}

	logger.Debug("hashed chunk", "offset", offset, "len", len(chunk), "extents", len(extents))
	return nil
}

func openSource(args []string) (source.Source, error) {
	if len(args) == 0 || args[0] == "-" {
		return source.NewPipeSource(os.Stdin), nil
	}
	return source.OpenFile(args[0])
}

func sourceName(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("BLKSUM_DEBUG") != "" {
		level = slog.LevelDebug
	}
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return slog.New(newTimingHandler(w, level, useColor))
}

func newProgressBar(w io.Writer, enabled bool, size int64) *progressbar.ProgressBar {
	if !enabled || !(isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) {
		return progressbar.DefaultBytesSilent(size)
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
	)
}

func installSignalHandler(ctx context.Context, cancel context.CancelFunc, h *blkhash.Hash) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			_ = h.Close()
			cancel()
			signal.Stop(sigCh)
			signal.Reset(sig.(syscall.Signal))
			p, err := os.FindProcess(os.Getpid())
			if err == nil {
				_ = p.Signal(sig)
			}
		case <-ctx.Done():
		}
	}()
}

func fail(err error) {
	prefix := color.New(color.FgRed, color.Bold).Sprint("blksum:")
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, err)
	os.Exit(1)
}

// humanSize formats n using IEC units for the debug-log summary line.
func humanSize(n int64) string {
	return humanize.IBytes(uint64(n))
}

package debug

// Runtime logger, started only when config.Debug is true. Emits goroutine count,
// stack and heap usage plus the process RSS at a fixed interval so leaks in the
// frame and mask buffers show up in the logs.

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// Sample is one reading of the runtime counters.
type Sample struct {
	Goroutines uint64
	StackInuse uint64
	HeapAlloc  uint64
	HeapInuse  uint64
	NumGC      uint32
	RSS        uint64
}

// ReadSample collects the current counters. RSS is zero when the platform
// query fails; the error is returned alongside the rest of the sample.
func ReadSample() (Sample, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := Sample{
		Goroutines: uint64(runtime.NumGoroutine()),
		StackInuse: ms.StackInuse,
		HeapAlloc:  ms.HeapAlloc,
		HeapInuse:  ms.HeapInuse,
		NumGC:      ms.NumGC,
	}
	rss, err := processRSS()
	s.RSS = rss
	return s, err
}

// StartRuntimeLogger logs a Sample every interval until ctx is done.
func StartRuntimeLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			s, err := ReadSample()
			if err != nil && !rssErrLogged {
				logger.Warn("runtime: rss query failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logSample(logger, s)
		}
	}()
}

func logSample(logger *slog.Logger, s Sample) {
	logger.Info("runtime",
		slog.Uint64("goroutines", s.Goroutines),
		slog.Uint64("stack_inuse", s.StackInuse),
		slog.Uint64("heap_alloc", s.HeapAlloc),
		slog.String("heap_inuse", humanize.Bytes(s.HeapInuse)),
		slog.String("rss", humanize.Bytes(s.RSS)),
		slog.Uint64("num_gc", uint64(s.NumGC)),
	)
}

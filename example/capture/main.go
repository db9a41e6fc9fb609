package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plouton-fw/transfer"
)

func main() {
	diag, _ := zap.NewDevelopment()
	defer diag.Sync()

	ctx, err := transfer.NewBuilder().
		Directory("./capture").
		Format("json").
		AutoFlush(false).
		BufferSize("64KB").
		MaxFileSize("1MB").
		MaxFiles(10).
		Diagnostics(diag).
		Build()
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	// Startup banner
	if err := ctx.Print("=== capture session started ===", time.Now()); err != nil {
		panic(err)
	}

	// Periodic flush driven by the advisory write interval; the engine
	// itself never flushes on a timer.
	cfg := transfer.DefaultConfig()
	ticker := time.NewTicker(time.Duration(cfg.WriteIntervalMs) * time.Millisecond)
	defer ticker.Stop()
	done := time.After(30 * time.Second)

	seq := uint64(0)
	for {
		select {
		case <-ticker.C:
			if err := ctx.Flush(false); err != nil {
				diag.Warn("periodic flush failed", zap.Error(err))
			}
		case <-done:
			stats := ctx.Stats()
			fmt.Printf("bytes=%d files=%d errors=%d overflows=%d\n",
				stats.TotalBytesWritten, stats.TotalFilesCreated,
				stats.WriteErrors, stats.BufferOverflows)
			return
		default:
			seq++
			_ = ctx.LogMetric(uint64(time.Now().Unix()), "sample", seq, "synthetic event")
			time.Sleep(50 * time.Millisecond)
		}
	}
}

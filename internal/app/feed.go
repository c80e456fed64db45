// ABOUTME: Feed loop pushing source samples into the sound driver
// ABOUTME: Slices the source into bounded pushes and resubmits refused ones
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/Sendspin/sendspin-dac/pkg/audio/source"
)

// Feeder accepts converter codes, all or nothing
type Feeder interface {
	Feed(samples []audio.Sample) bool
}

// FeedStats counts feed loop activity
type FeedStats struct {
	Pushes  uint64 // accepted pushes
	Retries uint64 // pushes refused and resubmitted
	Samples uint64 // codes delivered
}

// Pump reads src and delivers it to drv in pushes of at most chunk codes,
// mixing down to mono. A refused push is retried after retry until it fits.
// It returns when src ends or ctx is done; onPush, when set, sees the
// running totals after every accepted push.
func Pump(ctx context.Context, drv Feeder, src source.Source, chunk int, retry time.Duration, onPush func(FeedStats)) (FeedStats, error) {
	var stats FeedStats
	if chunk <= 0 {
		return stats, fmt.Errorf("invalid push size %d", chunk)
	}

	channels := max(1, src.Channels())
	pcm := make([]int32, chunk*channels)
	codes := make([]audio.Sample, 0, chunk)

	for {
		if err := ctx.Err(); err != nil {
			return stats, nil
		}

		n, err := src.Read(pcm)
		if err != nil && err != io.EOF {
			return stats, fmt.Errorf("source read failed: %w", err)
		}

		if n > 0 {
			codes = audio.CodesFromPCM(codes[:0], audio.MixToMono(pcm[:n], channels))
			for !drv.Feed(codes) {
				stats.Retries++
				select {
				case <-ctx.Done():
					return stats, nil
				case <-time.After(retry):
				}
			}
			stats.Pushes++
			stats.Samples += uint64(len(codes))
			if onPush != nil {
				onPush(stats)
			}
		}

		if err == io.EOF {
			return stats, nil
		}
	}
}

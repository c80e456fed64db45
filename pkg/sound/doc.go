// ABOUTME: DMA-paced DAC sound driver
// ABOUTME: Streams a circular sample buffer into a converter via a transfer engine
// Package sound drives a single analog output channel.
//
// A pacing timer clocks the converter at the output sample rate while a
// transfer engine moves samples from a circular buffer into it without CPU
// work per sample. The application feeds the buffer from one goroutine; a
// completion handler bound to the engine drains it chunk by chunk and re-arms
// the engine until the buffer runs dry.
//
// Example:
//
//	drv, err := sound.New(hw, sound.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	drv.InitHardware()
//	if err := drv.Start(16000); err != nil {
//	    log.Fatal(err)
//	}
//	for pos := 0; pos < len(table); {
//	    n := min(drv.MaxChunk(), len(table)-pos)
//	    if drv.Feed(table[pos : pos+n]) {
//	        pos += n
//	    }
//	}
//
// Feed never blocks: it returns false when the buffer lacks room and the
// caller retries.
package sound

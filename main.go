// ABOUTME: Entry point for the Sendspin DAC player
// ABOUTME: Plays audio through the sound driver on a simulated board
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Sendspin/sendspin-dac/internal/app"
	"github.com/Sendspin/sendspin-dac/internal/ui"
	"github.com/Sendspin/sendspin-dac/internal/version"
	"github.com/Sendspin/sendspin-dac/pkg/audio/output"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

var (
	source    = flag.String("source", "tone", "Audio to play: .bin table, .raw PCM, .wav, .mp3, .flac or tone")
	loop      = flag.Bool("loop", false, "Replay the source forever")
	rate      = flag.Uint("rate", 0, "DAC rate in Hz (default: the source's rate)")
	tableRate = flag.Int("table-rate", 8000, "Playback rate of .bin tables and .raw PCM")
	cpuHz     = flag.Uint("cpu-hz", 84000000, "Simulated master clock in Hz")
	outName   = flag.String("output", "speaker", "Output: speaker, null or a .wav capture path")
	capacity  = flag.Int("capacity", 4096, "Ring buffer capacity in samples")
	maxChunk  = flag.Int("max-chunk", 512, "Largest single transfer in samples")
	edgeIRQ   = flag.Bool("edge-irq", false, "Simulate an edge-triggered completion interrupt")
	envFile   = flag.String("env-file", ".env", "Environment file with DAC_* defaults")
	logFile   = flag.String("log-file", "sendspin-dac.log", "Log file path")
	noTUI     = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	if err := app.ApplyEnv(flag.CommandLine, *envFile, app.EnvFlags); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// TUI only makes sense on a terminal
	useTUI := !*noTUI && isatty.IsTerminal(os.Stdout.Fd())

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		multiWriter := io.MultiWriter(os.Stdout, f)
		log.SetOutput(multiWriter)
	}

	log.Printf("Starting %s", version.Banner())

	player, err := app.New(app.Config{
		Source:        *source,
		Loop:          *loop,
		Rate:          uint32(*rate),
		TableRate:     *tableRate,
		Output:        *outName,
		CPUHz:         uint32(*cpuHz),
		EdgeTriggered: *edgeIRQ,
		Capacity:      *capacity,
		MaxChunk:      *maxChunk,
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	if err := player.Start(); err != nil {
		log.Fatalf("Failed to start playback: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()

		if vc, ok := player.Output().(output.VolumeControl); ok {
			go handleVolumeControl(vc, controls, player.Done())
		}
		go statsUpdateLoop(player, tuiProg.Send)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var quit <-chan ui.QuitMsg
	if controls != nil {
		quit = controls.Quit
	}

	select {
	case <-quit:
		log.Printf("Received quit signal from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
	case <-player.Done():
		if err := player.Err(); err != nil {
			log.Printf("Playback failed: %v", err)
		}
	}

	player.Stop()
	if tuiProg != nil {
		tuiProg.Quit()
	}

	if err := player.Err(); err != nil {
		os.Exit(1)
	}
}

// handleVolumeControl processes volume changes from TUI
func handleVolumeControl(vc output.VolumeControl, controls *ui.Controls, done <-chan struct{}) {
	for {
		select {
		case vol := <-controls.Changes:
			log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			vc.SetVolume(vol.Volume)
			vc.SetMuted(vol.Muted)
		case <-done:
			return
		}
	}
}

// statsUpdateLoop periodically updates TUI with driver statistics
func statsUpdateLoop(player *app.Player, send func(tea.Msg)) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	// Use a slower ticker for expensive runtime stats to avoid GC pauses
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	var lastGoroutines int
	var lastMemAlloc, lastMemSys uint64

	for {
		select {
		case <-player.Done():
			return

		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			lastGoroutines = runtime.NumGoroutine()
			lastMemAlloc = m.Alloc
			lastMemSys = m.Sys

		case <-ticker.C:
			st := player.Status()
			active := st.Driver.Active

			send(ui.StatusMsg{
				BoardID:     st.BoardID,
				Source:      st.Source,
				Output:      st.Output,
				Frequency:   st.Driver.Frequency,
				Rate:        st.Rate,
				Capacity:    st.Driver.Capacity,
				Free:        st.Driver.Free,
				Active:      &active,
				Finished:    st.Finished,
				Level:       int(st.Level),
				Accepted:    st.Driver.Stats.Accepted,
				Rejected:    st.Driver.Stats.Rejected,
				Chunks:      st.Driver.Stats.Chunks,
				Completions: st.Driver.Stats.Completions,
				Drained:     st.Driver.Stats.Drained,
				Pushes:      st.Feed.Pushes,
				Retries:     st.Feed.Retries,
				Goroutines:  lastGoroutines,
				MemAlloc:    lastMemAlloc,
				MemSys:      lastMemSys,
			})
		}
	}
}

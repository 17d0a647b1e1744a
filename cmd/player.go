package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/drgolem/audiostream/pkg/audioplayer"
	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/backend/ring"
	"github.com/drgolem/audiostream/pkg/decoders"
	"github.com/drgolem/audiostream/pkg/listener"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/source"
	"github.com/drgolem/audiostream/pkg/worker"

	"github.com/drgolem/go-portaudio/portaudio"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
)

var (
	deviceIdx    int
	bufferSize   uint64
	frames       int
	masterVolume float64
	showVersion  bool
	verbose      bool
)

// playerCmd represents the player command
var playerCmd = &cobra.Command{
	Use:   "play <audio_file>",
	Short: "Play audio files (MP3, FLAC, WAV, Opus, Ogg Vorbis, G.711)",
	Long: `Streaming audio player built on a ring-buffer backend with independent
write/play cursors, matching a DirectSound-style device model.

Examples:
  # Play an MP3 file
  audiostream play music.mp3

  # Play a FLAC file with specific device
  audiostream play -d 0 music.flac

  # Use a larger buffer for better stability
  audiostream play -b 524288 music.mp3

  # Lower latency with smaller buffer
  audiostream play -b 65536 -f 256 music.flac

Buffer Recommendations:
  Low latency:    -b 65536  -f 256   (lower CPU usage tolerance)
  Balanced:       -b 262144 -f 512   (default, recommended)
  High stability: -b 524288 -f 1024  (high CPU load scenarios)

Supported Formats:
  MP3:   .mp3 (16-bit lossy)
  FLAC:  .flac, .fla (16/24/32-bit lossless)
  WAV:   .wav (8/16/24/32-bit PCM)
  Opus:  .opus
  Ogg:   .ogg (Vorbis)
  G.711: .ulaw, .alaw (8kHz mono telephony)

Status Reporting:
  Playback status is displayed every 2 seconds showing:
  - File name and audio format
  - Played audio time
  - Real-time elapsed time`,
	Args: cobra.ExactArgs(1),
	Run:  runPlayer,
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.Flags().IntVarP(&deviceIdx, "device", "d", -1, "Audio output device index")
	playerCmd.Flags().Uint64VarP(&bufferSize, "buffer", "b", 256*1024, "Ring buffer size in bytes (power of 2)")
	playerCmd.Flags().IntVarP(&frames, "frames", "f", 512, "Audio frames per buffer")
	playerCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	playerCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	playerCmd.Flags().Float64Var(&masterVolume, "volume", 1.0, "Master volume, 0.0-1.0")
}

func runPlayer(cmd *cobra.Command, args []string) {
	if showVersion {
		fmt.Printf("Audio Player v%s\n", version)
		fmt.Println("Built with:")
		fmt.Println("  - Ring-buffer cursor-bookkeeping backend")
		fmt.Println("  - Gapless source groups")
		fmt.Println("  - PortAudio for cross-platform audio")
		os.Exit(0)
	}

	fileName := args[0]

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		slog.Error("File not found", "path", fileName)
		os.Exit(1)
	}

	slog.Info("Initializing PortAudio")
	if err := portaudio.Initialize(); err != nil {
		slog.Error("Failed to initialize PortAudio", "error", err)
		slog.Error("Hint: Make sure PortAudio is installed on your system")
		os.Exit(1)
	}
	defer portaudio.Terminate()

	slog.Info("PortAudio initialized",
		"version", portaudio.GetVersion())
	slog.Info("Audio configuration",
		"device_index", deviceIdx,
		"buffer_size", bufferSize,
		"frames_per_buffer", frames)

	slog.Info("Opening audio file", "path", fileName)
	decoder, err := decoders.NewDecoder(fileName)
	if err != nil {
		slog.Error("Failed to open file", "error", err)
		os.Exit(1)
	}

	src, err := source.NewDecoderSource(decoder, source.Info{Title: filepath.Base(fileName)})
	if err != nil {
		slog.Error("Failed to build source", "error", err)
		os.Exit(1)
	}

	w := worker.New()
	w.Start()
	defer w.Stop()

	cfg := ring.DefaultConfig()
	cfg.DeviceIndex = deviceIdx
	cfg.BufferSize = bufferSize
	cfg.FramesPerBuffer = frames

	factory := func(owner playerhandle.Handle, group *source.Group) (backend.Player, error) {
		return ring.New(owner, group, cfg)
	}

	masterListener := listener.New()
	masterListener.SetGain(masterVolume)

	player := audioplayer.New(w, factory)
	player.SetListener(masterListener)
	if err := player.SetSource(src); err != nil {
		slog.Error("Failed to queue source", "error", err)
		os.Exit(1)
	}

	eos := make(chan struct{})
	player.OnEndOfStream(func() { close(eos) })

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Starting playback")
	if err := player.Play(); err != nil {
		slog.Error("Failed to start playback", "error", err)
		os.Exit(1)
	}

	statusDone := make(chan struct{})
	go monitorPlayback(player, statusDone)

	select {
	case <-eos:
		slog.Info("Playback completed successfully")
	case sig := <-sigChan:
		slog.Info("Signal received, stopping playback", "signal", sig)
	}

	close(statusDone)
	if err := player.Delete(); err != nil {
		slog.Error("Failed to stop player", "error", err)
	}

	slog.Info("Exiting")
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/drgolem/audiostream/pkg/audioplayer"
	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/backend/writecb"
	"github.com/drgolem/audiostream/pkg/decoders"
	"github.com/drgolem/audiostream/pkg/listener"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/source"
	"github.com/drgolem/audiostream/pkg/types"
	"github.com/drgolem/audiostream/pkg/worker"

	"github.com/drgolem/go-portaudio/portaudio"
	"github.com/spf13/cobra"
)

var (
	// Flags for playlist command
	playlistDeviceIdx       int
	playlistBufferCapacity  uint64
	playlistPAFrames        int
	playlistSamplesPerFrame int
	playlistVolume          float64
	playlistVerbose         bool
)

// playlistCmd represents the playlist command
var playlistCmd = &cobra.Command{
	Use:   "playlist <audio_file> [audio_file...]",
	Short: "Play multiple audio files sequentially",
	Long: `Play multiple audio files one after another using PortAudio's native
write-callback mode: the device pulls audio from a frame ring buffer a
background worker refills, rather than the player blocking on writes.

Examples:
  # Play multiple files
  audiostream playlist song1.mp3 song2.flac song3.wav

  # Play all MP3 files in current directory
  audiostream playlist *.mp3

  # Use specific device with verbose output
  audiostream playlist -d 0 -v music/*.flac

  # Adjust buffer parameters
  audiostream playlist -c 512 -s 2048 *.wav

Supported Formats:
  MP3:   .mp3 (16-bit lossy)
  FLAC:  .flac, .fla (16/24/32-bit lossless)
  WAV:   .wav (8/16/24/32-bit PCM)
  Opus:  .opus
  Ogg:   .ogg (Vorbis)
  G.711: .ulaw, .alaw (8kHz mono telephony)`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPlaylist,
}

func init() {
	rootCmd.AddCommand(playlistCmd)

	playlistCmd.Flags().IntVarP(&playlistDeviceIdx, "device", "d", -1, "Audio output device index")
	playlistCmd.Flags().Uint64VarP(&playlistBufferCapacity, "capacity", "c", 256, "Frame ring buffer capacity (number of frames)")
	playlistCmd.Flags().IntVarP(&playlistPAFrames, "paframes", "p", 512, "PortAudio frames per buffer")
	playlistCmd.Flags().IntVarP(&playlistSamplesPerFrame, "samples", "s", 4096, "Samples per AudioFrame")
	playlistCmd.Flags().BoolVarP(&playlistVerbose, "verbose", "v", false, "Verbose output (debug logging)")
	playlistCmd.Flags().Float64Var(&playlistVolume, "volume", 1.0, "Master volume, 0.0-1.0, held across the whole playlist")
}

func runPlaylist(cmd *cobra.Command, args []string) {
	logLevel := slog.LevelInfo
	if playlistVerbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	files := args

	slog.Info("Initializing PortAudio")
	if err := portaudio.Initialize(); err != nil {
		slog.Error("Failed to initialize PortAudio", "error", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	slog.Info("PortAudio initialized", "version", portaudio.GetVersion())
	slog.Info("Configuration",
		"device_index", playlistDeviceIdx,
		"frame_capacity", playlistBufferCapacity,
		"pa_frames_per_buffer", playlistPAFrames,
		"samples_per_audioframe", playlistSamplesPerFrame,
		"file_count", len(files))

	w := worker.New()
	w.Start()
	defer w.Stop()

	cfg := writecb.DefaultConfig()
	cfg.DeviceIndex = playlistDeviceIdx
	cfg.FramesPerBuffer = playlistPAFrames
	cfg.FrameCapacity = playlistBufferCapacity
	cfg.SamplesPerFrame = playlistSamplesPerFrame

	factory := func(owner playerhandle.Handle, group *source.Group) (backend.Player, error) {
		return writecb.New(owner, group, cfg)
	}

	masterListener := listener.New()
	masterListener.SetGain(playlistVolume)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	interrupted := false

	for i, fileName := range files {
		if interrupted {
			break
		}

		slog.Info("Playing file", "index", i+1, "total", len(files), "file", fileName)

		decoder, err := decoders.NewDecoder(fileName)
		if err != nil {
			slog.Error("Failed to open file", "file", fileName, "error", err)
			continue
		}
		src, err := source.NewDecoderSource(decoder, source.Info{Title: filepath.Base(fileName)})
		if err != nil {
			slog.Error("Failed to build source", "file", fileName, "error", err)
			continue
		}

		player := audioplayer.New(w, factory)
		player.SetListener(masterListener)
		if err := player.SetSource(src); err != nil {
			slog.Error("Failed to queue source", "file", fileName, "error", err)
			continue
		}

		eos := make(chan struct{})
		player.OnEndOfStream(func() { close(eos) })

		if err := player.Play(); err != nil {
			slog.Error("Failed to start playback", "file", fileName, "error", err)
			continue
		}

		statusDone := make(chan struct{})
		go monitorPlayback(player, statusDone)

		select {
		case <-eos:
			slog.Info("File completed", "file", fileName)
			close(statusDone)
			if err := player.Delete(); err != nil {
				slog.Error("Failed to stop player", "error", err)
			}
		case sig := <-sigChan:
			slog.Info("Signal received, stopping", "signal", sig)
			interrupted = true
			close(statusDone)
			if err := player.Delete(); err != nil {
				slog.Error("Failed to stop player", "error", err)
			}
		}
	}

	if interrupted {
		slog.Info("Playback interrupted")
	} else {
		slog.Info("All files completed", "total", len(files))
	}

	slog.Info("Exiting")
}

// monitorPlayback monitors and logs playback status every 2 seconds for any PlaybackMonitor
func monitorPlayback(monitor types.PlaybackMonitor, done chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status := monitor.GetPlaybackStatus()

			// Calculate played audio time from samples (actually sent to speakers)
			playedTimeSeconds := float64(status.PlayedSamples) / float64(status.SampleRate)

			// Format elapsed time as hh:mm:ss.msec
			totalMilliseconds := status.ElapsedTime.Milliseconds()
			hours := totalMilliseconds / 3600000
			minutes := (totalMilliseconds % 3600000) / 60000
			seconds := (totalMilliseconds % 60000) / 1000
			milliseconds := totalMilliseconds % 1000
			elapsedStr := fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)

			// Format played time as hh:mm:ss.msec (same format as elapsed)
			playedMilliseconds := int64(playedTimeSeconds * 1000)
			playedHours := playedMilliseconds / 3600000
			playedMinutes := (playedMilliseconds % 3600000) / 60000
			playedSeconds := (playedMilliseconds % 60000) / 1000
			playedMsec := playedMilliseconds % 1000
			playedTimeStr := fmt.Sprintf("%02d:%02d:%02d.%03d", playedHours, playedMinutes, playedSeconds, playedMsec)

			formatStr := fmt.Sprintf("%d:%d:%d",
				status.SampleRate, status.BitsPerSample, status.Channels)

			slog.Info("Playback status",
				"file", status.FileName,
				"format", formatStr,
				"played", playedTimeStr,
				"elapsed", elapsedStr)
		case <-done:
			return
		}
	}
}

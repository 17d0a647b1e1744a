package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audiostream",
	Short: "Streaming audio playback engine",
	Long: `audiostream - a streaming audio playback engine with gapless source
groups, pluggable cursor-bookkeeping backends (ring buffer, discrete
queue, write-callback), and drift-compensated clock tracking.

Features:
  - Gapless playback across queued sources of matching format
  - Three interchangeable device backends (ring/queue/write-callback)
  - Support for MP3, FLAC, WAV, Opus, Ogg Vorbis, and G.711
  - Configurable buffer sizes and audio devices
  - Sample rate transformation and format conversion

Commands:
  - play: Play a single audio file with real-time monitoring
  - playlist: Play multiple audio files sequentially
  - transform: Convert audio files to different sample rates and WAV format`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

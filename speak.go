package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"mockinterview/config"
	"mockinterview/logger"
	"mockinterview/speech"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Synthesize text with the configured TTS provider",
	Long:  "Synthesizes one utterance with TTS_PROVIDER and writes the MP3 to a file. Useful for checking voices and credentials.",
	RunE:  runSpeak,
}

var (
	speakText  string
	speakVoice string
	speakRate  float64
	speakOut   string
)

func init() {
	speakCmd.Flags().StringVarP(&speakText, "text", "t", "", "Text to synthesize (required)")
	speakCmd.Flags().StringVarP(&speakVoice, "voice", "v", "", "Voice name (defaults to TTS_VOICE_NAME or the provider default)")
	speakCmd.Flags().Float64Var(&speakRate, "rate", speech.DefaultSpeechRate, "Speaking rate")
	speakCmd.Flags().StringVarP(&speakOut, "out", "o", "speech.mp3", "Path to output MP3 file")

	if err := speakCmd.MarkFlagRequired("text"); err != nil {
		panic(fmt.Sprintf("failed to mark text flag as required: %v", err))
	}

	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadSpeech(ctx)
	if err != nil {
		return err
	}

	LogMiddleware := logger.Connect(logger.LoggerConnectProps{Production: false})
	defer LogMiddleware.Sync()

	backend, err := speechBackend(ctx, cfg, LogMiddleware)
	if err != nil {
		return err
	}
	store, err := speech.NewLRUStore(1)
	if err != nil {
		return err
	}
	synthesizer := speech.New(speech.SynthesizerProps{
		Logger:       LogMiddleware,
		Backend:      backend,
		Store:        store,
		DefaultVoice: cfg.SpeechVoice(),
	})

	encoded, err := synthesizer.Synthesize(ctx, speakText, speakVoice, speakRate)
	if err != nil {
		return err
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("could not decode audio: %w", err)
	}

	if err := os.WriteFile(speakOut, audio, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", speakOut, err)
	}

	voice := speakVoice
	if voice == "" {
		voice = synthesizer.DefaultVoice()
	}
	LogMiddleware.Logger(ctx).Info("[Speak] Wrote audio",
		zap.String("file", speakOut),
		zap.String("voice", voice),
		zap.Int("bytes", len(audio)))
	return nil
}

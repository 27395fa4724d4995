package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockinterview/analysis"
	"mockinterview/api"
	"mockinterview/config"
	"mockinterview/database/postgres"
	"mockinterview/interview"
	"mockinterview/logger"
	"mockinterview/modelapi/cartesiaapi"
	"mockinterview/modelapi/deepgramapi"
	"mockinterview/modelapi/geminiapi"
	"mockinterview/modelapi/googletts"
	"mockinterview/modelapi/groqapi"
	"mockinterview/modelapi/openaiapi"
	"mockinterview/speech"
	"mockinterview/telegram"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"github.com/hyperdxio/otel-config-go/otelconfig"
)

const shutdownTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "mockinterview",
	Short: "Mock interview coaching backend",
	Long:  "Runs the mock interview HTTP API and Telegram bot: project-based interviewer questions with synthesized speech, mentor feedback and portfolio analysis.",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and the Telegram bot when a token is configured)",
	RunE:  runServe,
}

var servePort string

func init() {
	rootCmd.PersistentFlags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		log.Fatalf("Error setting up OTel SDK - %e", err)
	}
	defer otelShutdown()

	logExporter, err := otlplogs.NewExporter(ctx)
	if err != nil {
		return fmt.Errorf("could not create log exporter: %w", err)
	}
	loggerProvider := sdk.NewLoggerProvider(sdk.WithBatcher(logExporter))
	defer loggerProvider.Shutdown(context.Background())

	LogMiddleware := logger.Connect(logger.LoggerConnectProps{Production: cfg.Production, LoggerProvider: loggerProvider, ServiceName: "mockinterview"})
	defer LogMiddleware.Sync()
	Logger := LogMiddleware.Logger(ctx)

	db, err := postgres.Connect(ctx, postgres.DatabaseConnectProps{Logger: LogMiddleware, DSN: cfg.PostgresDSN()})
	if err != nil {
		return err
	}
	defer db.Close()

	app, err := wire(ctx, cfg, LogMiddleware, db)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		Logger.Info("[Server] Listening", zap.String("addr", srv.Addr), zap.Bool("production", cfg.Production))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		Logger.Info("[Server] Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if app.bot != nil {
		g.Go(func() error {
			app.bot.Listen(gctx)
			return nil
		})
	}

	return g.Wait()
}

type application struct {
	server *api.Server
	bot    *telegram.Telegram
}

// wire builds every component named by cfg on top of an open database.
func wire(ctx context.Context, cfg *config.Config, LogMiddleware *logger.LogMiddleware, db *postgres.Database) (*application, error) {
	Logger := LogMiddleware.Logger(ctx)

	var gemini *geminiapi.Gemini
	if cfg.GeminiAPIKey != "" {
		var err error
		gemini, err = geminiapi.Connect(ctx, geminiapi.GeminiConnectProps{Logger: LogMiddleware, APIKey: cfg.GeminiAPIKey})
		if err != nil {
			return nil, err
		}
	}
	var groq *groqapi.Groq
	if cfg.GroqSecretKey != "" {
		groq = groqapi.Connect(ctx, groqapi.GroqConnectProps{Logger: LogMiddleware, APIKey: cfg.GroqSecretKey, URL: cfg.GroqURL})
	}

	backend, err := speechBackend(ctx, cfg, LogMiddleware)
	if err != nil {
		return nil, err
	}
	store, err := speech.NewLRUStore(cfg.TTSCacheSize)
	if err != nil {
		return nil, err
	}
	synthesizer := speech.New(speech.SynthesizerProps{
		Logger:       LogMiddleware,
		Backend:      backend,
		Store:        store,
		DefaultVoice: cfg.SpeechVoice(),
	})

	session := interview.NewSession(interview.SessionProps{
		Logger:      LogMiddleware,
		Projects:    db,
		Interviewer: generator(cfg.InterviewerProvider, cfg.InterviewerModel, cfg.InterviewerTemp, false, gemini, groq, cfg.GroqModel),
		Mentor:      generator(cfg.MentorProvider, cfg.MentorModel, cfg.MentorTemp, true, gemini, groq, cfg.GroqModel),
		Speech:      synthesizer,
	})

	props := api.ServerProps{Logger: LogMiddleware, Users: db, Sessions: session}

	if gemini != nil {
		programs, err := analysis.LoadPrograms(cfg.ProgramsFile)
		if err != nil {
			return nil, err
		}
		props.Analyzer = analysis.NewAnalyzer(analysis.AnalyzerProps{
			Logger:     LogMiddleware,
			Repository: db,
			Generator:  gemini.Persona(cfg.AnalysisModel, 0.2, true),
			Programs:   programs,
		})
		Logger.Info("[Server] Portfolio analysis enabled", zap.Int("programs", len(programs)))
	} else {
		Logger.Warn("[Server] GEMINI_API_KEY not set, portfolio analysis disabled")
	}

	var transcriber *deepgramapi.DeepgramAPI
	if cfg.DeepgramAPIKey != "" {
		transcriber = deepgramapi.Connect(deepgramapi.DeepgramConnectProps{Logger: LogMiddleware, APIKey: cfg.DeepgramAPIKey})
		props.Transcriber = transcriber
	}

	app := &application{server: api.NewServer(props)}

	if cfg.TelegramBotToken != "" {
		botProps := telegram.TelegramConnectProps{
			Logger:   LogMiddleware,
			Token:    cfg.TelegramBotToken,
			Debug:    cfg.TelegramDebug,
			Users:    db,
			Sessions: session,
		}
		if transcriber != nil {
			botProps.Transcriber = transcriber
		}
		app.bot, err = telegram.Connect(ctx, botProps)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

// generator picks the persona client for provider. Groq ignores model and uses GROQ_MODEL.
func generator(provider, model string, temperature float32, jsonOutput bool, gemini *geminiapi.Gemini, groq *groqapi.Groq, groqModel string) interview.Generator {
	if provider == config.ProviderGroq {
		return groq.Persona(groqModel, float64(temperature), jsonOutput)
	}
	return gemini.Persona(model, float64(temperature), jsonOutput)
}

func speechBackend(ctx context.Context, cfg *config.Config, LogMiddleware *logger.LogMiddleware) (speech.Backend, error) {
	switch cfg.TTSProvider {
	case config.ProviderCartesia:
		return cartesiaapi.Connect(ctx, cartesiaapi.CartesiaConnectProps{
			Logger: LogMiddleware,
			APIKey: cfg.CartesiaAPIKey,
			URL:    cfg.CartesiaURL,
		}), nil
	case config.ProviderOpenAI:
		return openaiapi.Connect(ctx, openaiapi.OpenAIConnectProps{
			Logger:  LogMiddleware,
			APIKey:  cfg.OpenAISecretKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAITTSModel,
		}), nil
	default:
		return googletts.Connect(ctx, googletts.GoogleTTSConnectProps{
			Logger:          LogMiddleware,
			CredentialsFile: cfg.GoogleCredentials,
		})
	}
}

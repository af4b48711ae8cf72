// Command readerchat serves the reading-list chat API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/spf13/viper"

	"github.com/tswee5/reader-app-web-sub000/reader/chat"
	"github.com/tswee5/reader-app-web-sub000/reader/chat/adapters"
	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
	"github.com/tswee5/reader-app-web-sub000/reader/config"
	"github.com/tswee5/reader-app-web-sub000/reader/db"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	configPath := os.Getenv("READERAPP_CONFIG")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info().Str("file", e.Name).Msg("config file changed, restart to apply")
	})

	database, err := db.Connect(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	provider := adapters.NewHTTPCompletionProvider(adapters.ProviderConfig{
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey,
		APIVersion: cfg.Provider.APIVersion,
		Model:      cfg.Provider.Model,
		MaxTokens:  cfg.Provider.MaxTokens,
		Timeout:    cfg.Provider.RequestTimeout,
	}, logger)

	store := adapters.NewLibSQLConversationStore(database)
	tracer := adapters.NewZerologTracer(logger)

	orchestrator := chat.NewOrchestrator(chatConfig(cfg.Chat), provider, store, tracer, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", chatHandler(orchestrator, logger))

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	wg.Go(func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	})
	wg.Go(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	})
	wg.Wait()
}

func chatConfig(c config.ChatConfig) chat.Config {
	return chat.Config{
		TokenHardCeiling:     c.TokenHardCeiling,
		TokenWarnFraction:    c.TokenWarnFraction,
		TruncateTargetTokens: c.TruncateTargetTokens,
		MaxWebSnippets:       c.MaxWebSnippets,
		MemoryWindow:         c.MemoryWindow,
		MaxMemoryKeywords:    c.MaxMemoryKeywords,
		SearchCooldown:       c.SearchCooldown,
		ArticleContentLimit:  c.ArticleContentLimit,
		DegradedSummaryLimit: c.DegradedSummaryLimit,
		TitleLimit:           c.TitleLimit,
	}
}

func chatHandler(orchestrator *chat.Orchestrator, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chat.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		start := time.Now()
		resp, err := orchestrator.ProcessMessage(r.Context(), req)
		if err != nil {
			status := statusFor(err)
			logger.Error().Err(err).Int("status", status).Dur("elapsed", time.Since(start)).Msg("chat turn failed")
			writeError(w, status, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func statusFor(err error) int {
	var notFound *ports.NotFoundOrForbiddenError
	var badRequest *ports.InvalidRequestError
	var provider *ports.CompletionProviderError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &provider):
		return http.StatusBadGateway
	default:
		// ValidationError lands here: an internally built provider request
		// going out malformed is a server defect, not a client error.
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

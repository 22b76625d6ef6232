package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Vovarama1992/wallee-bot/internal/ai"
	"github.com/Vovarama1992/wallee-bot/internal/cache"
	"github.com/Vovarama1992/wallee-bot/internal/chat"
	"github.com/Vovarama1992/wallee-bot/internal/config"
	"github.com/Vovarama1992/wallee-bot/internal/identity"
	"github.com/Vovarama1992/wallee-bot/internal/registry"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(filepath.Join("configs", ".env"), filepath.Join("configs", "okta.yaml"))
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithError(err).Warn("bad LOG_LEVEL, keeping info")
	}

	// --- Conversation log ---
	var repo chat.Repo = chat.NopRepo{}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("db open")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			log.WithError(err).Fatal("db ping")
		}
		if err := chat.EnsureSchema(ctx, db); err != nil {
			log.WithError(err).Fatal("db schema")
		}
		cancel()

		repo = chat.NewRepo(db)
	} else {
		log.Info("DATABASE_URL not set, conversation log disabled")
	}

	// --- Command advisor ---
	var advisor chat.Advisor
	if cfg.OpenAI.APIKey != "" {
		client, err := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, log)
		if err != nil {
			log.WithError(err).Fatal("openai client")
		}
		advisor = ai.NewAdvisor(client)
	}

	// --- Services ---
	store := cache.NewStore()
	okta, err := identity.NewOktaClient(context.Background(), cfg.Okta.OrgURL, cfg.Okta.Token, cfg.Okta.PageLimit)
	if err != nil {
		log.WithError(err).Fatal("okta client")
	}
	identitySvc := identity.NewService(okta, store, log)

	reg, err := registry.NewBuilder().
		Register(identity.ServiceName, identitySvc.Handlers()).
		Build()
	if err != nil {
		log.WithError(err).Fatal("build handler registry")
	}

	if cfg.Slack.SigningSecret == "" {
		log.Warn("SLACK_SIGNING_SECRET not set, slack requests are not verified")
	}

	outbound := chat.NewSlackOutbound(cfg.Slack.APIBaseURL, cfg.Slack.BotToken)
	chatService := chat.NewService(reg, identity.ServiceName, cache.NewAnchor(store), repo, outbound, advisor, log)
	chatHandler := chat.NewHandler(chatService, cfg.Slack.SigningSecret, cfg.HandlerTimeout, log)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Slack-Signature", "X-Slack-Request-Timestamp"},
	}))

	chat.RegisterRoutes(r, chatHandler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	log.WithField("port", cfg.Port).Info("listening")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
}

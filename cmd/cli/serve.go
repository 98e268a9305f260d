package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pjamessteven/social-project-sub002/internal/agents"
	"github.com/pjamessteven/social-project-sub002/internal/config"
	"github.com/pjamessteven/social-project-sub002/internal/controllers"
	"github.com/pjamessteven/social-project-sub002/internal/retrieval"
	"github.com/pjamessteven/social-project-sub002/internal/server"
	"github.com/pjamessteven/social-project-sub002/internal/storage"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/hitl/redisstore"
	"github.com/pjamessteven/social-project-sub002/pkg/chatstream/provider/openai"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connectCancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}

	database := mongoClient.Database(cfg.MongoDatabase)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(connectCtx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping Redis")
	}

	model := openai.New(openai.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
	})

	factory := agents.NewFactory(model, agents.Indexes{
		Videos:   retrieval.NewMongoIndex(database, "videos"),
		Stories:  retrieval.NewMongoIndex(database, "stories"),
		Comments: retrieval.NewMongoIndex(database, "comments"),
	}, retrieval.NewQueryCache(redisClient, 0))

	coordinator := hitl.NewCoordinator(redisstore.New(redisClient, redisstore.Opts{
		KeyPrefix: "social-project",
		TTL:       cfg.SnapshotTTL,
	}))

	conversationStore := storage.NewConversationStore(database)
	questionStore := storage.NewQuestionStore(database)

	chatController := controllers.NewChatController(controllers.ChatControllerDependencies{
		Factory:           factory,
		Coordinator:       coordinator,
		ConversationStore: conversationStore,
		QuestionStore:     questionStore,
		SuggestQuestions:  cfg.SuggestNextQuestions,
	})

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		ChatController:         chatController,
		ConversationController: controllers.NewConversationController(conversationStore),
		RedisClient:            redisClient,
	})

	log.Info().
		Str("address", cfg.HTTPAddress).
		Str("model", model.ID()).
		Msg("Starting API server")

	if err := app.Listen(cfg.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}

	log.Info().Msg("API server stopped")
	return nil
}

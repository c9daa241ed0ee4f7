package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/riverfold/inkpress/internal/commentservice"
	"github.com/riverfold/inkpress/internal/common"
	"github.com/riverfold/inkpress/internal/mailservice"
	"github.com/riverfold/inkpress/internal/markdown"
	"github.com/riverfold/inkpress/internal/ogimage"
	"github.com/riverfold/inkpress/internal/postservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	cache          *common.Cache
	posts          *postservice.Resolver
	editorService  *postservice.Service
	commentService *commentservice.CommentService
	ogGenerator    *ogimage.Generator
	mailService    *mailservice.MailService
	renderer       markdown.Renderer
	preview        markdown.Renderer
	broker         *common.MessageBroker
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Initialize the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	// Setup the exchange, queues, and binding keys
	err = common.SetupBlogExchange(broker)
	if err != nil {
		logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	renderer := markdown.NewPipeline()
	generator := ogimage.NewGenerator(cfg.OGFontURL, cfg.SiteName, cache, logger)

	app := &application{
		config:         cfg,
		logger:         logger,
		cache:          cache,
		posts:          postservice.NewResolver(postservice.NewDBStore(db), postservice.NewFileStore(cfg.ContentDir, logger), cache, logger),
		editorService:  postservice.NewService(db, renderer, broker, logger),
		commentService: commentservice.NewCommentService(db, broker, cfg.CommentSecret, logger),
		ogGenerator:    generator,
		mailService:    mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailOwner, cfg.MailPort, logger),
		renderer:       renderer,
		preview:        markdown.NewQuick(),
		broker:         broker,
	}

	// Initialize the consumers
	warmer := ogimage.NewWarmer(broker, generator, logger)
	go warmer.Run()
	defer warmer.Close()

	go app.mailService.SendCommentNotification()
	defer app.mailService.Close()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

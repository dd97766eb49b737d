package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/sushihentaime/postboard/internal/common"
	"github.com/sushihentaime/postboard/internal/mailservice"
	"github.com/sushihentaime/postboard/internal/postservice"
	"github.com/sushihentaime/postboard/internal/userservice"
)

// userService is the part of userservice.UserService the handlers depend on.
type userService interface {
	CreateUser(ctx context.Context, username, email, password string) (*userservice.User, error)
	LoginUser(ctx context.Context, username, password string) (*userservice.AuthToken, error)
	GetUserByAccessToken(ctx context.Context, token string) (*userservice.User, error)
	LogoutUser(ctx context.Context, userID int) error
}

type application struct {
	config      *Config
	logger      *slog.Logger
	userService userService
	postService *postservice.PostService
	mailService *mailservice.MailService
	limiter     *ipRateLimiter
}

func main() {
	configPath := flag.String("config", ".env", "path to the env file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dsn := common.PostgresDSN(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)

	db, err := common.NewDB(dsn, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	m, err := common.MigrateUp(dsn)
	if err != nil {
		logger.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	m.Close()

	broker, err := common.NewMessageBroker(common.AMQPURI(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password))
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupPostExchange(broker)
	if err != nil {
		logger.Error("failed to setup the post exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(db, cache),
		postService: postservice.NewPostService(postservice.NewPostModel(db), cache, broker, logger),
		mailService: mailservice.NewMailService(broker, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, cfg.BaseURL, logger),
	}
	if cfg.Limiter.Enabled {
		app.limiter = newIPRateLimiter(cfg.Limiter.RPS, cfg.Limiter.Burst)
	}

	err = app.mailService.NotifyPostPublished()
	if err != nil {
		logger.Error("failed to start the mail consumer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

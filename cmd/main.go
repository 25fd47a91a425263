package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/customer-service/config"
	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/Payphone-Digital/customer-service/internal/dto"
	apperrors "github.com/Payphone-Digital/customer-service/internal/errors"
	"github.com/Payphone-Digital/customer-service/internal/handler"
	"github.com/Payphone-Digital/customer-service/internal/middleware"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/router"
	"github.com/Payphone-Digital/customer-service/internal/service"
	"github.com/Payphone-Digital/customer-service/pkg/database"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

var rootCmd = &cobra.Command{
	Use:   "customer-service",
	Short: "Customer management API with token authentication",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer database.CloseDB(db)

		redisClient, err := redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, customer cache disabled", zap.Error(err))
			redisClient = redis.Disabled()
		}
		defer redisClient.Close()

		logger.GetLogger().Info("Redis client initialized",
			zap.Bool("enabled", redisClient.Enabled()),
		)

		return serve(config, db, redisClient)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return database.CloseDB(db)
	},
}

var flushCacheCmd = &cobra.Command{
	Use:   "flushcache",
	Short: "Drop every cached customer from Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.InitLogger(config); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		redisClient, err := redis.NewClient(config)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		if !redisClient.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "Redis is disabled, nothing to flush")
			return nil
		}
		return service.NewCacheService(redisClient, config.Redis.CacheTTL).Flush(cmd.Context())
	},
}

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create an API user",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer database.CloseDB(db)

		flags := cmd.Flags()
		req := dto.CreateUserRequest{}
		req.Username, _ = flags.GetString("username")
		req.Email, _ = flags.GetString("email")
		req.FirstName, _ = flags.GetString("first-name")
		req.LastName, _ = flags.GetString("last-name")
		req.Password, _ = flags.GetString("password")

		if req.Password == "" {
			if req.Password, err = promptPassword(cmd); err != nil {
				return err
			}
		}

		users := repository.NewUserRepository(db)
		tokens := service.NewTokenManager(repository.NewTokenRepository(db), config.Token.TTL())
		authService := service.NewAuthService(users, tokens, service.NewBcryptHasher(config.Security.BcryptCost))

		user, err := authService.CreateUser(cmd.Context(), &req)
		if err != nil {
			var verr *apperrors.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid user: %v", verr.Fields)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User %q created (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	flags := createUserCmd.Flags()
	flags.String("username", "", "login name")
	flags.String("email", "", "email address")
	flags.String("password", "", "password (prompted when omitted)")
	flags.String("first-name", "", "first name")
	flags.String("last-name", "", "last name")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, createUserCmd, flushCacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the config, initializes logging, opens the database and
// migrates it.
func bootstrap() (*configs.Config, *gorm.DB, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitLogger(config); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", constants.AppVersion),
		zap.String("db_driver", config.Database.Driver),
	)

	db, err := database.Open(database.Config{
		Driver:          config.Database.Driver,
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		SQLitePath:      config.Database.SQLitePath,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		database.CloseDB(db)
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.GetLogger().Info("Database migrated successfully")

	return config, db, nil
}

func serve(config *configs.Config, db *gorm.DB, redisClient *redis.Client) error {
	if config.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// Services
	tokenManager := service.NewTokenManager(tokenRepo, config.Token.TTL())
	authService := service.NewAuthService(userRepo, tokenManager, service.NewBcryptHasher(config.Security.BcryptCost))
	cacheService := service.NewCacheService(redisClient, config.Redis.CacheTTL)
	customerService := service.NewCustomerService(customerRepo, cacheService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	customerHandler := handler.NewCustomerHandler(customerService, config.Pagination.PageSize, config.Pagination.MaxPageSize)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	r := router.NewRouter(
		authHandler,
		customerHandler,
		healthHandler,

		middleware.NewTokenAuthMiddleware(tokenManager),
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.GetLogger().Info("Server stopped")
	return nil
}

// promptPassword reads the password twice without echo when stdin is a
// terminal, otherwise one line from stdin.
func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	out := cmd.ErrOrStderr()
	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/Mayesamomo/wageflow/internal/config"
	"github.com/Mayesamomo/wageflow/internal/crypto"
	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/filestore"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
	"github.com/Mayesamomo/wageflow/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Files  filestore.Store

	// Repositories
	UserRepo    repository.UserRepository
	ClientRepo  repository.ClientRepository
	ShiftRepo   repository.ShiftRepository
	MileageRepo repository.MileageRepository
	InvoiceRepo repository.InvoiceRepository

	// Services
	AuthService      service.AuthService
	ClientService    service.ClientService
	ShiftService     service.ShiftService
	MileageService   service.MileageService
	ClockService     service.ClockService
	InvoiceService   service.InvoiceService
	DashboardService service.DashboardService
	ExportService    service.ExportService
	ResetService     service.ResetService

	log       zerolog.Logger
	logCloser io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config (.env, config.yaml, environment)
// 2. Setting up logging
// 3. Getting the encryption key and token secret from the keyring
// 4. Opening and migrating the database
// 5. Creating repositories and services
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	log := logger.WithComponent("app")

	if err := cfg.EnsureDirectories(); err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.Get(crypto.DBKeyName)
	if err != nil {
		// No key exists, prompt user to set one
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			closer.Close()
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.Set(crypto.DBKeyName, password); err != nil {
			closer.Close()
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	secret, err := tokenSecret(cfg.Auth, keyring, password, log)
	if err != nil {
		closer.Close()
		return nil, err
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		closer.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	files, err := filestore.NewDisk(cfg.Storage.DataDir)
	if err != nil {
		database.Close()
		closer.Close()
		return nil, err
	}

	// Create repositories
	userRepo := repository.NewUserRepo(database)
	tokenRepo := repository.NewTokenRepo(database)
	clientRepo := repository.NewClientRepo(database)
	shiftRepo := repository.NewShiftRepo(database)
	mileageRepo := repository.NewMileageRepo(database)
	invoiceRepo := repository.NewInvoiceRepo(database)
	clockRepo := repository.NewClockRepo(database)

	// Create services with their dependencies
	authService := service.NewAuthService(userRepo, tokenRepo, secret, cfg.Auth, cfg.Defaults)
	shiftService := service.NewShiftService(shiftRepo, clientRepo, userRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, shiftRepo, mileageRepo, files, cfg.Invoice)

	log.Debug().Str("db", cfg.Database.Path).Str("data_dir", cfg.Storage.DataDir).Msg("app initialized")

	return &App{
		Config:           cfg,
		DB:               database,
		Files:            files,
		UserRepo:         userRepo,
		ClientRepo:       clientRepo,
		ShiftRepo:        shiftRepo,
		MileageRepo:      mileageRepo,
		InvoiceRepo:      invoiceRepo,
		AuthService:      authService,
		ClientService:    service.NewClientService(clientRepo),
		ShiftService:     shiftService,
		MileageService:   service.NewMileageService(mileageRepo, clientRepo, userRepo),
		ClockService:     service.NewClockService(clockRepo, clientRepo, userRepo, shiftService),
		InvoiceService:   invoiceService,
		DashboardService: service.NewDashboardService(shiftRepo, mileageRepo, invoiceRepo, clientRepo),
		ExportService:    service.NewExportService(userRepo, clientRepo, shiftRepo, mileageRepo, invoiceService, files),
		ResetService:     service.NewResetService(repository.NewResetRepo(database), files),
		log:              log,
		logCloser:        closer,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return err
}

// tokenSecret resolves the signing secret: config or environment first, then
// the keyring, generating and storing a new one on first run. Where the
// keyring cannot store secrets the secret is derived from the database key so
// it stays stable across runs.
func tokenSecret(cfg config.AuthConfig, keyring crypto.Keyring, dbKey string, log zerolog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}

	if secret, err := keyring.Get(crypto.TokenSecretName); err == nil {
		return []byte(secret), nil
	}

	secret, err := crypto.GenerateSecret(32)
	if err != nil {
		return nil, err
	}
	if err := keyring.Set(crypto.TokenSecretName, secret); err != nil {
		log.Debug().Err(err).Msg("keyring unavailable, deriving token secret from database key")
		sum := sha256.Sum256([]byte("wageflow-token:" + dbKey))
		return []byte(hex.EncodeToString(sum[:])), nil
	}
	return []byte(secret), nil
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your shifts, mileage and invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

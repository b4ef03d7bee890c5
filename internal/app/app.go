package app

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/majupersonalizados/briefing"
	"github.com/majupersonalizados/briefing/internal/config"
	"github.com/majupersonalizados/briefing/internal/db"
	"github.com/majupersonalizados/briefing/internal/repository"
	"github.com/majupersonalizados/briefing/internal/service"
	"github.com/majupersonalizados/briefing/internal/service/mail"
	"github.com/majupersonalizados/briefing/internal/storage"
	"github.com/majupersonalizados/briefing/internal/wizard"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Storage             storage.Storage
	AuthService         *service.AuthService
	BriefingService     *service.BriefingService
	NotificationService *service.NotificationService
	ChatService         *service.ChatService
	ArchiveService      *service.ArchiveService
	LegalService        *service.LegalService
	Drafts              *wizard.Store
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	briefingRepository := repository.NewBriefingRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Mail
	mailProvider, err := mail.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail provider: %w", err)
	}

	// Services
	notificationService := service.NewNotificationService(mailProvider, cfg.SMTPFrom, cfg.MailTo, cfg.MailCC)
	briefingService := service.NewBriefingService(briefingRepository, notificationService)
	authService := service.NewAuthService(
		cfg.AdminPasswordHashes,
		cfg.AdminEmails,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.AdminSessionExpiry,
	)
	chatService := service.NewChatService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel)
	archiveService := service.NewArchiveService(cfg.FetchTimeout)

	contentFS, reload, err := contentSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open content: %w", err)
	}
	legalService := service.NewLegalService(contentFS, reload)

	drafts := wizard.NewStore(wizard.Deps{
		Storage:   fileStorage,
		Submitter: briefingService,
	}, cfg.DraftExpiry)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		Storage:             fileStorage,
		AuthService:         authService,
		BriefingService:     briefingService,
		NotificationService: notificationService,
		ChatService:         chatService,
		ArchiveService:      archiveService,
		LegalService:        legalService,
		Drafts:              drafts,
	}, nil
}

// contentSource serves markdown from CONTENT_PATH when set, re-read on
// every request, and from the embedded copy otherwise.
func contentSource(cfg *config.Config) (fs.FS, bool, error) {
	if cfg.ContentPath != "" {
		return os.DirFS(cfg.ContentPath), true, nil
	}
	sub, err := fs.Sub(briefing.ContentFS, "content")
	if err != nil {
		return nil, false, err
	}
	return sub, false, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}

package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path"
	"sort"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	account "github.com/goliatone/go-account"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type appConfig struct {
	Addr            string   `env:"ADDR" envDefault:":3000"`
	DatabaseDSN     string   `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	SecretKey       string   `env:"SECRET_KEY,required"`
	TokenExpiration int      `env:"TOKEN_EXPIRATION_HOURS" envDefault:"24"`
	TokenIssuer     string   `env:"TOKEN_ISSUER" envDefault:"go-account"`
	TokenAudience   []string `env:"TOKEN_AUDIENCE" envSeparator:","`
	BaseURL         string   `env:"BASE_URL" envDefault:"http://localhost:3000"`
	AvatarDir       string   `env:"AVATAR_DIR" envDefault:"public/avatars"`
	TempDir         string   `env:"UPLOAD_TEMP_DIR" envDefault:"tmp"`
	ResendAPIKey    string   `env:"RESEND_API_KEY"`
	MailFrom        string   `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
}

func main() {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := runMigrations(context.Background(), db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	repos := account.NewRepositoryManager(db)
	if err := repos.Validate(); err != nil {
		log.Fatalf("repositories: %v", err)
	}

	engine := account.NewAccounts(repos.Users(), account.SimpleConfig{
		SigningKey:      cfg.SecretKey,
		TokenExpiration: cfg.TokenExpiration,
		Issuer:          cfg.TokenIssuer,
		Audience:        cfg.TokenAudience,
	}).
		WithNotifier(buildNotifier(cfg)).
		WithAvatarProcessor(account.NewAvatarStore(cfg.AvatarDir))

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		log.Fatalf("temp dir: %v", err)
	}

	app := fiber.New()
	app.Static("/public/avatars", cfg.AvatarDir)

	controller := account.NewAccountController(engine,
		account.WithControllerTempDir(cfg.TempDir),
	)
	account.RegisterAccountRoutes(app, controller)

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func buildNotifier(cfg appConfig) account.Notifier {
	if cfg.ResendAPIKey != "" {
		return account.NewResendNotifier(cfg.ResendAPIKey, cfg.MailFrom, cfg.BaseURL)
	}
	return account.NewLogNotifier(nil)
}

func openDatabase(dsn string) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return bun.NewDB(db, sqlitedialect.New()), nil
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	migrations := account.GetMigrationsFS()

	entries, err := fs.ReadDir(migrations, "data/sql/migrations")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		query, err := fs.ReadFile(migrations, path.Join("data/sql/migrations", name))
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(query)); err != nil {
			return err
		}
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

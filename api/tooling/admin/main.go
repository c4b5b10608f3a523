package main

import (
	"context"
	"flag"
	"fmt"
	"net/mail"
	"os"

	"github.com/google/uuid"
	"github.com/intradir/intradir/app/sdk/auth"
	"github.com/intradir/intradir/business/domain/adminbus"
	"github.com/intradir/intradir/business/domain/adminbus/stores/admindb"
	"github.com/intradir/intradir/business/sdk/sqldb"
	"github.com/intradir/intradir/business/sdk/sqldb/migrate"
	"github.com/intradir/intradir/business/types/name"
	"github.com/intradir/intradir/business/types/password"
	"github.com/intradir/intradir/business/types/role"
	"github.com/intradir/intradir/foundation/keystore"
	"github.com/intradir/intradir/foundation/logger"
	"github.com/kelseyhightower/envconfig"
)

// Config replicates necessary DB and auth config structure
type Config struct {
	Auth struct {
		KeysFolder string `envconfig:"AUTH_KEYS_FOLDER" default:"zarf/keys"`
		ActiveKID  string `envconfig:"AUTH_ACTIVE_KID" default:"54bb2165-71e1-41a6-af3e-7da4a0e1e2c1"`
		Issuer     string `envconfig:"AUTH_ISSUER" default:"https://intradir.local/auth/"`
	}
	DB struct {
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Name         string `envconfig:"DB_NAME" default:"intradir"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool   `envconfig:"DB_DISABLE_TLS" default:"true"`
	}
}

func main() {
	log := logger.New(os.Stdout, logger.LevelInfo, "ADMIN-TOOL", nil)
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	// Init DB
	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer db.Close()

	// CLI Parsing
	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: migrate, seed, create-admin, gen-token")
		return nil
	}

	switch os.Args[1] {
	case "migrate":
		if err := migrate.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		fmt.Println("migrations complete")
		return nil

	case "seed":
		if err := migrate.Seed(ctx, db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		fmt.Println("seed complete")
		return nil

	case "create-admin":
		adminBus := adminbus.NewCore(admindb.NewStore(log, db))
		return runCreateAdmin(ctx, adminBus, os.Args[2:])

	case "gen-token":
		return runGenToken(log, cfg, os.Args[2:])

	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

func runCreateAdmin(ctx context.Context, ab *adminbus.Core, args []string) error {
	cmd := flag.NewFlagSet("create-admin", flag.ExitOnError)
	emailStr := cmd.String("email", "", "User email (Required)")
	passStr := cmd.String("password", "", "User password (Required)")
	nameStr := cmd.String("name", "", "User full name (Required)")
	roleStr := cmd.String("role", "ADMIN", "User role (ADMIN, USER)")
	cmd.Parse(args)

	if *emailStr == "" || *passStr == "" || *nameStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	n, err := name.Parse(*nameStr)
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	p, err := password.Parse(*passStr)
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	addr, err := mail.ParseAddress(*emailStr)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	newUser := adminbus.NewUser{
		Name:     n,
		Email:    *addr,
		Role:     r,
		Password: p,
	}

	usr, err := ab.Create(ctx, newUser)
	if err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}

	fmt.Printf("\nSUCCESS: User created!\nID: %s\nEmail: %s\nRole: %s\n", usr.ID, usr.Email.Address, usr.Role)
	return nil
}

func runGenToken(log *logger.Logger, cfg Config, args []string) error {
	cmd := flag.NewFlagSet("gen-token", flag.ExitOnError)
	userStr := cmd.String("user-id", "", "User ID the token represents (Required)")
	roleStr := cmd.String("role", "ADMIN", "Role claim (ADMIN, USER)")
	kidStr := cmd.String("kid", cfg.Auth.ActiveKID, "Key ID used to sign the token")
	cmd.Parse(args)

	if *userStr == "" {
		cmd.PrintDefaults()
		return fmt.Errorf("missing required fields")
	}

	userID, err := uuid.Parse(*userStr)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	r, err := role.Parse(*roleStr)
	if err != nil {
		return fmt.Errorf("invalid role: %w", err)
	}

	ks := keystore.New()
	if _, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder)); err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	a := auth.New(auth.Config{
		Log:       log,
		KeyLookup: ks,
		Issuer:    cfg.Auth.Issuer,
	})

	token, err := a.GenerateToken(*kidStr, userID, r)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Printf("\nTOKEN:\n%s\n", token)
	return nil
}

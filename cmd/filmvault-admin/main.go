// Package main is the entry point for the FilmVault admin CLI.
// This tool provides administrative commands for managing user accounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/filmvault/filmvault/internal/config"
	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/lock"
	"github.com/filmvault/filmvault/internal/repository/storekv"
	"github.com/filmvault/filmvault/internal/store"
	storememory "github.com/filmvault/filmvault/internal/store/memory"
	storepostgres "github.com/filmvault/filmvault/internal/store/postgres"
	storeredis "github.com/filmvault/filmvault/internal/store/redis"
	storesqlite "github.com/filmvault/filmvault/internal/store/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("FilmVault Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user command requires a subcommand: list, create or delete")
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		fs.Parse(args[1:])
		return userList(*configPath)

	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username (required)")
		email := fs.String("email", "", "email address (required)")
		password := fs.String("password", "", "password (required)")
		fs.Parse(args[1:])
		return userCreate(*configPath, *username, *email, *password)

	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		id := fs.String("id", "", "user ID (required)")
		fs.Parse(args[1:])
		return userDelete(*configPath, *id)

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

// openUserRepo builds a user repository against the configured store.
func openUserRepo(configPath string) (*storekv.UserRepo, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	adapter, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := zerolog.Nop()
	repo := storekv.NewUserRepo(adapter, lock.NewMemoryLocker(), logger)
	return repo, func() { adapter.Close() }, nil
}

func openStore(cfg *config.Config) (store.Adapter, error) {
	ctx := context.Background()
	logger := zerolog.Nop()

	switch cfg.Store.Driver {
	case "memory":
		return storememory.NewStore(), nil
	case "sqlite":
		sqliteCfg := storesqlite.DefaultConfig(cfg.Store.Path)
		if cfg.Store.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.Store.BusyTimeout
		}
		return storesqlite.NewStore(ctx, sqliteCfg, logger)
	case "postgres":
		return storepostgres.NewStore(ctx, storepostgres.Config{
			Host:     cfg.Store.Host,
			Port:     cfg.Store.Port,
			User:     cfg.Store.User,
			Password: cfg.Store.Password,
			Database: cfg.Store.Database,
			SSLMode:  cfg.Store.SSLMode,
		}, logger)
	case "redis":
		return storeredis.NewStore(ctx, storeredis.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func userList(configPath string) error {
	repo, closeStore, err := openUserRepo(configPath)
	if err != nil {
		return err
	}
	defer closeStore()

	users, err := repo.List(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tFAVORITES\tFOLDERS\tREVIEWS\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			u.ID, u.Username, u.Email,
			len(u.Favorites), len(u.Folders), len(u.Reviews),
			u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func userCreate(configPath, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("--username, --email and --password are required")
	}
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	repo, closeStore, err := openUserRepo(configPath)
	if err != nil {
		return err
	}
	defer closeStore()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(username, email, string(hash))
	if err := repo.Create(context.Background(), user); err != nil {
		return err
	}

	fmt.Printf("Created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func userDelete(configPath, id string) error {
	if id == "" {
		return fmt.Errorf("--id is required")
	}

	repo, closeStore, err := openUserRepo(configPath)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := repo.Delete(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("Deleted user %s\n", id)
	return nil
}

func printUsage() {
	fmt.Println(`FilmVault Admin CLI

Usage:
  filmvault-admin <command> [arguments]

Commands:
  user        Manage user accounts (list, create, delete)
  version     Print version information
  help        Show this help message

Examples:
  filmvault-admin user list --config ./configs/config.yaml
  filmvault-admin user create --username alice --email alice@example.com --password secret123
  filmvault-admin user delete --id <uuid>

Use "filmvault-admin <command> --help" for more information about a command.`)
}

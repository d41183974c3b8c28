// Command bootstrap-admin creates a user with the admin flag set. The HTTP
// surface never creates admins, so operators run this once per deployment.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/carlot/carlot/internal/config"
	"github.com/carlot/carlot/internal/service"
	"github.com/carlot/carlot/internal/storage"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer) error {
	fs := flag.NewFlagSet("bootstrap-admin", flag.ContinueOnError)
	var (
		driver      = fs.String("driver", envOr("STORE_DRIVER", config.DriverPostgres), "Store driver: postgres, redis, sqlite")
		databaseURL = fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		redisURL    = fs.String("redis-url", os.Getenv("REDIS_URL"), "Redis connection string")
		redisPrefix = fs.String("redis-prefix", envOr("REDIS_KEY_PREFIX", "carlot:"), "Redis key prefix")
		sqlitePath  = fs.String("sqlite-path", envOr("SQLITE_PATH", "carlot.db"), "SQLite database file")
		username    = fs.String("username", "admin", "Admin username")
		password    = fs.String("password", "", "Admin password (prompted when empty)")
		format      = fs.String("format", "plain", "Output format: plain or json")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *driver == config.DriverMemory {
		return errors.New("memory driver does not persist; choose postgres, redis or sqlite")
	}

	cfg := &config.Config{
		StoreDriver:    *driver,
		DatabaseURL:    *databaseURL,
		RedisURL:       *redisURL,
		RedisKeyPrefix: *redisPrefix,
		SQLitePath:     *sqlitePath,
	}

	pw := *password
	if pw == "" {
		var err error
		pw, err = readPassword(stdin, stdout)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	users := service.NewUserService(store, nil, logger, nil)
	user, err := users.RegisterAdmin(ctx, *username, pw)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	out := output{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Fprintln(stdout, out.UserID)
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return errors.New("invalid format; use plain or json")
	}
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(stdin *os.File, prompt io.Writer) (string, error) {
	fd := int(stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Command familyctl is a terminal front end for a familyspend server.
//
// Usage:
//
//	familyctl [-server URL] [-token-file PATH] <command> [flags]
//
// Commands: signup, signin, signout, month, add, rm-expense, members,
// add-member, rm-member, export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/familyspend/internal/client"
	"github.com/mmynk/familyspend/pkg/logging"
)

var errUsage = errors.New("usage")

func main() {
	_ = godotenv.Load()
	logging.Setup(os.Getenv("LOG_LEVEL"), "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, http.DefaultClient); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "familyctl:", err)
		}
		os.Exit(1)
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".familyspend-token"
	}
	return filepath.Join(dir, "familyspend", "token")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// run parses the global flags and dispatches to a command.
func run(ctx context.Context, args []string, out io.Writer, httpClient *http.Client) error {
	global := flag.NewFlagSet("familyctl", flag.ContinueOnError)
	global.SetOutput(out)
	server := global.String("server", envOr("FAMILYSPEND_SERVER", "http://localhost:8080"), "server base URL")
	tokenFile := global.String("token-file", envOr("FAMILYSPEND_TOKEN_FILE", defaultTokenFile()), "where the session token is kept")
	global.Usage = func() {
		fmt.Fprintln(out, "usage: familyctl [-server URL] [-token-file PATH] <command> [flags]")
		fmt.Fprintln(out, "commands: signup signin signout month add rm-expense members add-member rm-member export")
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	a := &app{
		client:     client.New(httpClient, *server),
		httpClient: httpClient,
		server:     *server,
		tokens:     tokenStore{path: *tokenFile},
		out:        out,
		now:        time.Now,
	}

	token, err := a.tokens.load()
	if err != nil {
		return err
	}
	a.client.SetToken(token)

	name, rest := global.Arg(0), global.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		global.Usage()
		return fmt.Errorf("unknown command %q", name)
	}

	slog.Debug("Running command", "command", name, "server", *server)
	return cmd(ctx, a, rest)
}

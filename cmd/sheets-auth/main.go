// Command sheets-auth runs the OAuth consent flow once and saves the token
// the export worker uses to write to Google Sheets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"moneymap/internal/cli"
	"moneymap/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentSheets)

	if err := run(logger); err != nil {
		logger.Error("Authorization failed", log.FieldError, err)
		os.Exit(1)
	}
}

func readClient() ([]byte, error) {
	if s := os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"); s != "" {
		return []byte(s), nil
	}
	if f := os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"); f != "" {
		return os.ReadFile(f)
	}
	return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
}

func run(logger *log.Logger) error {
	b, err := readClient()
	if err != nil {
		return err
	}
	cfg, err := google.ConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return fmt.Errorf("oauth config: %w", err)
	}

	// The OAuth client must list this redirect URI.
	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- r.URL.Query().Get("code"):
		default:
		}
	})
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Callback server failed", log.FieldError, err)
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var code string
	select {
	case code = <-codeCh:
	case <-ctx.Done():
		return fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}

	out := os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	if out == "" {
		out = "token.json"
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	logger.Info("Saved OAuth token", "path", out)
	return nil
}

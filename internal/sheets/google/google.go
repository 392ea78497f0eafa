// Package google exports ledger records to a Google Sheets spreadsheet.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneymap/internal/core"
	"moneymap/internal/log"
	ports "moneymap/internal/sheets"
)

// Config selects the spreadsheet and the credentials. Service account
// credentials win over an OAuth client plus token.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var (
	_ ports.RecordExporter = (*Client)(nil)
	_ ports.ExportedLister = (*Client)(nil)
)

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.Nop()
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	if sheetName == "" {
		sheetName = "Records"
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	saJSON, err := jsonOrFile(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	if saJSON != nil {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON(saJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	clientJSON, err := jsonOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	tokenJSON, err := jsonOrFile(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	if clientJSON == nil || tokenJSON == nil {
		return nil, errors.New("missing credentials: set a service account or an oauth client and token")
	}

	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	// The token source refreshes through the pooled client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &tok)))
}

func jsonOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if path = strings.TrimSpace(path); path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// newHTTPClientWithPooling keeps connections to the Sheets API alive
// between exports.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

func (c *Client) lastColumn() string {
	return columnLetter(len(ports.Header) - 1)
}

// EnsureHeader writes the header row when A1 is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:%s1", c.sheetName, c.lastColumn())
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{ports.Header}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Wrote export header", "range", rng)
	return nil
}

// ExportRecord appends one row after the last filled row and returns the
// range the API reports as written.
func (c *Client) ExportRecord(ctx context.Context, email string, rec core.Record) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:%s", c.sheetName, c.lastColumn())
	vr := &gsheet.ValueRange{Values: [][]any{ports.RecordRow(email, rec)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

func (c *Client) ListExportedIDs(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseIDColumn(resp.Values), nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"moneymap/internal/core"
	"moneymap/internal/events"
	"moneymap/internal/ledger"
	"moneymap/internal/log"
	"moneymap/internal/storage"
)

// Store keys shared with existing MoneyMap documents.
const (
	UsersKey   = "moneymap_users_v2"
	SessionKey = "moneymap_current_v2"
)

// ErrCorruptDocument is returned when a stored document is not valid JSON.
var ErrCorruptDocument = errors.New("stored document is corrupt")

// Analytics is everything the dashboard view needs for one account.
type Analytics struct {
	Balance       float64          `json:"balance"`
	TotalReceived float64          `json:"totalReceived"`
	TotalPaid     float64          `json:"totalPaid"`
	Received      ledger.Aggregate `json:"received"`
	Paid          ledger.Aggregate `json:"paid"`
	Series        ledger.Series    `json:"series"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// LedgerService owns accounts, the active session and each account's
// append-only records. State lives in the store; every call reads it fresh.
type LedgerService struct {
	mu        sync.Mutex
	store     storage.Store
	publisher events.Publisher
	logger    *log.Logger
	audit     *log.StructuredLogger
	now       func() time.Time
	newID     func() string
}

type Option func(*options)

type options struct {
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: log.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLedgerService wires the store and an optional publisher. A nil
// publisher disables events.
func NewLedgerService(store storage.Store, publisher events.Publisher, opts ...Option) *LedgerService {
	o := buildOptions(opts)
	logger := o.logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		audit:     log.NewStructuredLogger(logger),
		now:       o.now,
		newID:     o.newID,
	}
}

// Register creates or overwrites the account stored under email and makes it
// the active session. Records already stored under that email are kept.
// The map key is the email as typed; the account's email field is lowercased.
func (s *LedgerService) Register(ctx context.Context, in RegisterInput) (core.Account, error) {
	key := strings.TrimSpace(in.Email)
	acc := core.Account{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(key),
		Phone:     strings.TrimSpace(in.Phone),
		Password:  in.Password,
		CreatedAt: s.now().UTC(),
	}
	if err := acc.Validate(); err != nil {
		return core.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return core.Account{}, err
	}
	if prev, ok := users[key]; ok {
		acc.Records = prev.Records
	}
	if acc.Records == nil {
		acc.Records = []core.Record{}
	}
	users[key] = acc

	if err := s.saveUsers(ctx, users); err != nil {
		return core.Account{}, err
	}
	if err := s.setSession(ctx, key); err != nil {
		return core.Account{}, err
	}

	s.logger.InfoContext(ctx, "Account registered",
		log.FieldEmail, acc.Email,
		"records", len(acc.Records))
	return acc, nil
}

// Login compares the password exactly and activates the session.
func (s *LedgerService) Login(ctx context.Context, email, password string) (core.Account, error) {
	key := strings.TrimSpace(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return core.Account{}, err
	}
	acc, ok := users[key]
	if !ok {
		return core.Account{}, &core.AuthenticationError{Email: key, Err: core.ErrUnknownAccount}
	}
	if acc.Password != password {
		return core.Account{}, &core.AuthenticationError{Email: key, Err: core.ErrWrongPassword}
	}
	if err := s.setSession(ctx, key); err != nil {
		return core.Account{}, err
	}

	s.logger.InfoContext(ctx, "Logged in", log.FieldEmail, acc.Email)
	return acc, nil
}

// Logout clears the session. Accounts are untouched.
func (s *LedgerService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "Logged out")
	return nil
}

// Current returns the account the session points at.
func (s *LedgerService) Current(ctx context.Context) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, acc, _, err := s.current(ctx)
	return acc, err
}

// AppendRecord adds one record to the active account. Nothing is written if
// validation or the save fails. The event is published after the save and a
// publish failure does not fail the append.
func (s *LedgerService) AppendRecord(ctx context.Context, kind core.Kind, item string, amount float64) (core.Record, error) {
	if !kind.IsValid() {
		return core.Record{}, &core.ValidationError{Field: "type", Err: core.ErrInvalidKind}
	}
	if err := core.ValidateAmount(amount); err != nil {
		return core.Record{}, err
	}

	rec, email, err := s.append(ctx, kind, item, amount)
	if err != nil {
		return core.Record{}, err
	}

	s.audit.LogRecordAppended(ctx, email, rec.ID, rec.Kind.String(), rec.Item, rec.Amount, rec.Balance)

	if err := s.publish(ctx, events.NewRecordEvent(email, rec)); err != nil {
		s.audit.LogError(ctx, "Failed to publish record event", err, log.OpPublish,
			log.NewFields().WithRecord(email, rec.ID, rec.Kind.String(), rec.Item, rec.Amount, rec.Balance))
	}
	return rec, nil
}

func (s *LedgerService) append(ctx context.Context, kind core.Kind, item string, amount float64) (core.Record, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, acc, users, err := s.current(ctx)
	if err != nil {
		return core.Record{}, "", err
	}

	rec := core.Record{
		ID:      s.newID(),
		Time:    s.now().UTC().Truncate(time.Millisecond),
		Kind:    kind,
		Item:    core.ItemOrPlaceholder(item),
		Amount:  amount,
		Balance: ledger.Next(acc.LastBalance(), kind, amount),
	}

	records := make([]core.Record, len(acc.Records), len(acc.Records)+1)
	copy(records, acc.Records)
	acc.Records = append(records, rec)
	users[key] = acc

	if err := s.saveUsers(ctx, users); err != nil {
		return core.Record{}, "", err
	}
	return rec, acc.Email, nil
}

// Records returns the active account's records, oldest first.
func (s *LedgerService) Records(ctx context.Context) ([]core.Record, error) {
	acc, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return acc.Records, nil
}

// Balance is the balance after the newest record.
func (s *LedgerService) Balance(ctx context.Context) (float64, error) {
	acc, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	return acc.LastBalance(), nil
}

func (s *LedgerService) Analytics(ctx context.Context) (Analytics, error) {
	acc, err := s.Current(ctx)
	if err != nil {
		return Analytics{}, err
	}
	received := ledger.AggregateByKindAndLabel(acc.Records, core.Received)
	paid := ledger.AggregateByKindAndLabel(acc.Records, core.Paid)
	return Analytics{
		Balance:       acc.LastBalance(),
		TotalReceived: received.Sum(),
		TotalPaid:     paid.Sum(),
		Received:      received,
		Paid:          paid,
		Series:        ledger.BalanceSeries(acc.Records),
	}, nil
}

// Verify replays the active account's records and reports the first stored
// balance that disagrees.
func (s *LedgerService) Verify(ctx context.Context) error {
	acc, err := s.Current(ctx)
	if err != nil {
		return err
	}
	return ledger.Verify(acc.Records)
}

// current resolves the session. Callers hold s.mu.
func (s *LedgerService) current(ctx context.Context) (string, core.Account, map[string]core.Account, error) {
	raw, ok, err := s.store.Load(ctx, SessionKey)
	if err != nil {
		return "", core.Account{}, nil, fmt.Errorf("load session: %w", err)
	}
	if !ok || len(raw) == 0 {
		return "", core.Account{}, nil, &core.AuthenticationError{Err: core.ErrNoSession}
	}
	key := string(raw)

	users, err := s.loadUsers(ctx)
	if err != nil {
		return "", core.Account{}, nil, err
	}
	acc, ok := users[key]
	if !ok {
		return "", core.Account{}, nil, &core.AuthenticationError{Email: key, Err: core.ErrNoSession}
	}
	return key, acc, users, nil
}

func (s *LedgerService) loadUsers(ctx context.Context) (map[string]core.Account, error) {
	raw, ok, err := s.store.Load(ctx, UsersKey)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	users := make(map[string]core.Account)
	if !ok || len(raw) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, UsersKey, err)
	}
	return users, nil
}

func (s *LedgerService) saveUsers(ctx context.Context, users map[string]core.Account) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}
	if err := s.store.Save(ctx, UsersKey, data); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

func (s *LedgerService) setSession(ctx context.Context, key string) error {
	if err := s.store.Save(ctx, SessionKey, []byte(key)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, e events.RecordEvent) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping record event")
		return nil
	}
	return s.publisher.PublishRecordAppended(ctx, e)
}

// Close releases the store and the publisher.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}

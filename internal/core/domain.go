package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Received Kind = "received"
	Paid     Kind = "paid"
)

// NoItemLabel is stored when a record is appended without a label.
const NoItemLabel = "(no item)"

type (
	// Kind tells whether money came in or went out.
	Kind string

	Record struct {
		ID      string    `json:"id"`
		Time    time.Time `json:"time"`
		Kind    Kind      `json:"type"`
		Item    string    `json:"item"`
		Amount  float64   `json:"amount"`
		Balance float64   `json:"balance"`
	}

	// Account is the persisted shape of one user, records included.
	// Password is kept in plaintext. INSECURE, DEMO-ONLY.
	Account struct {
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Phone     string    `json:"phone"`
		Password  string    `json:"password"`
		Records   []Record  `json:"records"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrEmptyEmail     = errors.New("email is required")
	ErrEmptyPassword  = errors.New("password is required")
	ErrInvalidAmount  = errors.New("amount must be a positive number")
	ErrInvalidKind    = errors.New("type must be received or paid")
	ErrUnknownAccount = errors.New("no account found for email")
	ErrWrongPassword  = errors.New("wrong password")
	ErrNoSession      = errors.New("no active session")
)

// ValidationError reports bad input for a named field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AuthenticationError reports a failed login or a missing session.
type AuthenticationError struct {
	Email string
	Err   error
}

func (e *AuthenticationError) Error() string {
	if e.Email == "" {
		return "authentication failed: " + e.Err.Error()
	}
	return fmt.Sprintf("authentication failed for %s: %v", e.Email, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (k Kind) IsValid() bool {
	return k == Received || k == Paid
}

func (k Kind) String() string {
	return string(k)
}

// Sign is +1 for received money and -1 for everything else.
func (k Kind) Sign() float64 {
	if k == Received {
		return 1
	}
	return -1
}

// ParseKind accepts the wire names plus a few aliases used on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "received", "in", "credit":
		return Received, nil
	case "paid", "out", "debit":
		return Paid, nil
	}
	return "", &ValidationError{Field: "type", Err: ErrInvalidKind}
}

// ValidateAmount rejects zero, negative and non-finite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}

// ItemOrPlaceholder trims the label and falls back to NoItemLabel.
func ItemOrPlaceholder(item string) string {
	item = strings.TrimSpace(item)
	if item == "" {
		return NoItemLabel
	}
	return item
}

// Validate checks the fields required at registration.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if strings.TrimSpace(a.Email) == "" {
		return &ValidationError{Field: "email", Err: ErrEmptyEmail}
	}
	if a.Password == "" {
		return &ValidationError{Field: "password", Err: ErrEmptyPassword}
	}
	return nil
}

// LastBalance is the running balance after the newest record, or 0.
func (a Account) LastBalance() float64 {
	if len(a.Records) == 0 {
		return 0
	}
	return a.Records[len(a.Records)-1].Balance
}

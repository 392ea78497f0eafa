package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"received", Received, true},
		{" Paid ", Paid, true},
		{"in", Received, true},
		{"out", Paid, true},
		{"refund", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok {
			var ve *ValidationError
			if !errors.As(err, &ve) || !errors.Is(err, ErrInvalidKind) {
				t.Fatalf("ParseKind(%q) expected validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestKindSign(t *testing.T) {
	if Received.Sign() != 1 || Paid.Sign() != -1 {
		t.Fatalf("unexpected signs: %v %v", Received.Sign(), Paid.Sign())
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(0.01); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := ValidateAmount(v)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ValidateAmount(%v) expected ErrInvalidAmount, got %v", v, err)
		}
	}
}

func TestItemOrPlaceholder(t *testing.T) {
	if got := ItemOrPlaceholder("   "); got != NoItemLabel {
		t.Fatalf("got %q", got)
	}
	if got := ItemOrPlaceholder(" Rent "); got != "Rent" {
		t.Fatalf("got %q", got)
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{Name: "Asha", Email: "asha@example.com", Password: "pw"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		acc  Account
		want error
	}{
		{Account{Email: "a@b.c", Password: "pw"}, ErrEmptyName},
		{Account{Name: "A", Password: "pw"}, ErrEmptyEmail},
		{Account{Name: "A", Email: "a@b.c"}, ErrEmptyPassword},
		{Account{Name: "   ", Email: "a@b.c", Password: "pw"}, ErrEmptyName},
		{Account{Name: "A", Email: " \t", Password: "pw"}, ErrEmptyEmail},
	}
	for i, tc := range bads {
		err := tc.acc.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestLastBalance(t *testing.T) {
	if (Account{}).LastBalance() != 0 {
		t.Fatal("empty account should have zero balance")
	}
	acc := Account{Records: []Record{{Balance: 10}, {Balance: 4}}}
	if acc.LastBalance() != 4 {
		t.Fatalf("got %v", acc.LastBalance())
	}
}

func TestAuthenticationErrorMessage(t *testing.T) {
	err := &AuthenticationError{Email: "a@b.c", Err: ErrWrongPassword}
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatal("expected to unwrap to ErrWrongPassword")
	}
	if err.Error() != "authentication failed for a@b.c: wrong password" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneymap/internal/assistant"
	"moneymap/internal/core"
	"moneymap/internal/events"
	"moneymap/internal/services"
	"moneymap/internal/storage/memory"
)

type testApp struct {
	app *App
	out *bytes.Buffer
}

func newTestApp(t *testing.T, asst *assistant.Client) *testApp {
	t.Helper()
	store := memory.New()
	clock := services.WithClock(func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) })
	ledger := services.NewLedgerService(store, events.Noop{}, clock)
	community := services.NewCommunityService(store, clock)
	t.Cleanup(func() { _ = ledger.Close() })

	out := &bytes.Buffer{}
	return &testApp{app: NewApp(ledger, community, asst, out), out: out}
}

func (ta *testApp) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ta.out.Reset()
	err := ta.app.Run(context.Background(), args)
	return ta.out.String(), err
}

func (ta *testApp) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := ta.run(t, args...)
	require.NoError(t, err, "moneymap %v", args)
	return out
}

func TestRun_Usage(t *testing.T) {
	ta := newTestApp(t, nil)

	_, err := ta.run(t)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = ta.run(t, "frobnicate")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = ta.run(t, "login", "-nope")
	assert.ErrorIs(t, err, ErrUsage)

	var buf bytes.Buffer
	Usage(&buf)
	for _, name := range commandOrder {
		assert.Contains(t, buf.String(), name)
	}
}

func TestLedgerFlow(t *testing.T) {
	ta := newTestApp(t, nil)

	out := ta.mustRun(t, "register", "-name", "Meera", "-email", "meera@example.com", "-password", "pw")
	assert.Contains(t, out, "Registered Meera <meera@example.com>")

	out = ta.mustRun(t, "add", "-type", "received", "-item", "Loan", "-amount", "1000")
	assert.Contains(t, out, "Balance: ₹ 1,000")

	out = ta.mustRun(t, "add", "-type", "paid", "-item", "Rent", "-amount", "250.5")
	assert.Contains(t, out, "Balance: ₹ 749.5")

	out = ta.mustRun(t, "records")
	assert.Contains(t, out, "BALANCE")
	assert.Contains(t, out, "Rent")

	out = ta.mustRun(t, "records", "-json")
	var recs []core.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, 749.5, recs[1].Balance)

	out = ta.mustRun(t, "analytics")
	assert.Contains(t, out, "Total received: ₹ 1,000")
	assert.Contains(t, out, "Loan")

	out = ta.mustRun(t, "verify")
	assert.Contains(t, out, "Balances OK")

	out = ta.mustRun(t, "whoami")
	assert.Contains(t, out, "meera@example.com")

	ta.mustRun(t, "logout")
	_, err := ta.run(t, "whoami")
	assert.ErrorIs(t, err, core.ErrNoSession)

	_, err = ta.run(t, "login", "-email", "meera@example.com", "-password", "bad")
	assert.ErrorIs(t, err, core.ErrWrongPassword)

	out = ta.mustRun(t, "login", "-email", "meera@example.com", "-password", "pw")
	assert.Contains(t, out, "Welcome back, Meera")
}

func TestAdd_Rejects(t *testing.T) {
	ta := newTestApp(t, nil)
	ta.mustRun(t, "register", "-name", "A", "-email", "a@b.c", "-password", "pw")

	_, err := ta.run(t, "add", "-type", "paid", "-amount", "abc")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = ta.run(t, "add", "-type", "paid", "-amount", "-5")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = ta.run(t, "add", "-type", "gift", "-amount", "5")
	assert.ErrorIs(t, err, core.ErrInvalidKind)

	var verr *core.ValidationError
	_, err = ta.run(t, "add", "-type", "paid", "-amount", "0")
	assert.True(t, errors.As(err, &verr))
}

func TestCalc(t *testing.T) {
	ta := newTestApp(t, nil)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"profit", []string{"calc", "profit", "-revenue", "1000", "-cost", "600"}, []string{"Profit: ₹ 400", "Margin: 40.00%"}},
		{"profit zero revenue", []string{"calc", "profit", "-cost", "5"}, []string{"Margin: 0.00%"}},
		{"loan", []string{"calc", "loan", "-principal", "100000", "-rate", "12", "-years", "1"}, []string{"Monthly EMI:    ₹ 8,884.88"}},
		{"budget", []string{"calc", "budget", "-income", "50000", "-rent", "10000", "-expense", "travel=2000"}, []string{"Total expenses: ₹ 12,000", "Remaining:      ₹ 38,000"}},
		{"tax", []string{"calc", "tax", "-income", "600000"}, []string{"Tax:            ₹ 32,500"}},
		{"garbage is zero", []string{"calc", "tax", "-income", "abc"}, []string{"Tax:            ₹ 0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ta.mustRun(t, tt.args...)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}

	_, err := ta.run(t, "calc", "mortgage")
	assert.ErrorIs(t, err, ErrUsage)

	_, err = ta.run(t, "calc", "budget", "-expense", "novalue")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestCommunity(t *testing.T) {
	ta := newTestApp(t, nil)

	out := ta.mustRun(t, "community", "feed")
	assert.Contains(t, out, "Asha (Retail)")
	assert.Contains(t, out, "Farah (Food)")

	out = ta.mustRun(t, "community", "leaderboard")
	assert.Contains(t, out, "Farah (Food)")

	ta.mustRun(t, "register", "-name", "Meera", "-email", "m@x.com", "-password", "pw")
	out = ta.mustRun(t, "community", "post", "Opened", "my", "shop")
	assert.Contains(t, out, "Posted ")

	out = ta.mustRun(t, "community", "feed")
	assert.Contains(t, out, "Meera")
	assert.Contains(t, out, "Opened my shop")

	out = ta.mustRun(t, "community", "like", "1")
	assert.Contains(t, out, "(6 likes)")

	out = ta.mustRun(t, "community", "comment", "-author", "Ritu", "1", "Nice", "work")
	assert.Contains(t, out, "Commented 1-")

	_, err := ta.run(t, "community", "like", "missing")
	assert.Error(t, err)

	_, err = ta.run(t, "community", "post", "   ")
	assert.Error(t, err)

	_, err = ta.run(t, "community", "like")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestAsk(t *testing.T) {
	t.Run("offline", func(t *testing.T) {
		ta := newTestApp(t, assistant.New(assistant.Config{}, nil))
		out := ta.mustRun(t, "ask", "-focus", "bakery", "marketing", "ideas?")
		assert.Contains(t, out, "For a bakery business")
	})

	t.Run("remote", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Start small."}}]}`))
		}))
		t.Cleanup(srv.Close)

		ta := newTestApp(t, assistant.New(assistant.Config{APIKey: "k", APIURL: srv.URL}, nil))
		out := ta.mustRun(t, "ask", "How", "do", "I", "start?")
		assert.Equal(t, "Start small.\n", out)
	})

	t.Run("no question", func(t *testing.T) {
		ta := newTestApp(t, nil)
		_, err := ta.run(t, "ask")
		assert.ErrorIs(t, err, ErrUsage)
	})
}

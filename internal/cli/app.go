package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"moneymap/internal/assistant"
	"moneymap/internal/calc"
	"moneymap/internal/core"
	"moneymap/internal/services"
)

// ErrUsage marks bad command lines. The binary prints usage and exits 2.
var ErrUsage = errors.New("usage")

const recordTimeLayout = "02 Jan 2006 15:04"

// App runs one moneymap command against the services it is given.
type App struct {
	ledger    *services.LedgerService
	community *services.CommunityService
	assistant *assistant.Client
	out       io.Writer
}

func NewApp(ledger *services.LedgerService, community *services.CommunityService, asst *assistant.Client, out io.Writer) *App {
	return &App{ledger: ledger, community: community, assistant: asst, out: out}
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register":  {"register -name N -email E -password P [-phone X]", (*App).register},
	"login":     {"login -email E -password P", (*App).login},
	"logout":    {"logout", (*App).logout},
	"whoami":    {"whoami", (*App).whoami},
	"add":       {"add -type received|paid -amount N [-item TEXT]", (*App).add},
	"records":   {"records [-json]", (*App).records},
	"analytics": {"analytics [-json]", (*App).analytics},
	"verify":    {"verify", (*App).verify},
	"calc":      {"calc profit|loan|budget|tax [flags]", (*App).calcCmd},
	"community": {"community feed|post|like|comment|leaderboard [flags]", (*App).communityCmd},
	"ask":       {"ask [-focus TEXT] QUESTION...", (*App).ask},
}

var commandOrder = []string{
	"register", "login", "logout", "whoami", "add", "records",
	"analytics", "verify", "calc", "community", "ask",
}

// Usage writes the command list.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: moneymap <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(a, ctx, args[1:])
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	var in services.RegisterInput
	fs.StringVar(&in.Name, "name", "", "display name")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	fs.StringVar(&in.Password, "password", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	acc, err := a.ledger.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s <%s>\n", acc.Name, acc.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	acc, err := a.ledger.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s\n", acc.Name)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.ledger.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	acc, err := a.ledger.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", acc.Name, acc.Email)
	fmt.Fprintf(a.out, "Balance: %s\n", core.FormatMoney(acc.LastBalance()))
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	kindFlag := fs.String("type", "", "received or paid")
	item := fs.String("item", "", "what the money was for")
	amountFlag := fs.String("amount", "", "positive amount")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	kind, err := core.ParseKind(*kindFlag)
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(*amountFlag), 64)
	if err != nil {
		return &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}
	}

	rec, err := a.ledger.AppendRecord(ctx, kind, *item, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s for %s. Balance: %s\n",
		rec.Kind, core.FormatMoney(rec.Amount), rec.Item, core.FormatMoney(rec.Balance))
	return nil
}

func (a *App) records(ctx context.Context, args []string) error {
	fs := newFlagSet("records")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	recs, err := a.ledger.Records(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.writeJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No records yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TIME\tTYPE\tITEM\tAMOUNT\tBALANCE\t")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			r.Time.Local().Format(recordTimeLayout), r.Kind, r.Item,
			core.FormatMoney(r.Amount), core.FormatMoney(r.Balance))
	}
	return tw.Flush()
}

func (a *App) analytics(ctx context.Context, args []string) error {
	fs := newFlagSet("analytics")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	an, err := a.ledger.Analytics(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return a.writeJSON(an)
	}

	fmt.Fprintf(a.out, "Balance:        %s\n", core.FormatMoney(an.Balance))
	fmt.Fprintf(a.out, "Total received: %s\n", core.FormatMoney(an.TotalReceived))
	fmt.Fprintf(a.out, "Total paid:     %s\n", core.FormatMoney(an.TotalPaid))

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	if len(an.Received) > 0 {
		fmt.Fprintln(tw, "\nRECEIVED\t")
		for _, lt := range an.Received {
			fmt.Fprintf(tw, "  %s\t%s\n", lt.Label, core.FormatMoney(lt.Total))
		}
	}
	if len(an.Paid) > 0 {
		fmt.Fprintln(tw, "\nPAID\t")
		for _, lt := range an.Paid {
			fmt.Fprintf(tw, "  %s\t%s\n", lt.Label, core.FormatMoney(lt.Total))
		}
	}
	return tw.Flush()
}

func (a *App) verify(ctx context.Context, _ []string) error {
	if err := a.ledger.Verify(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Balances OK")
	return nil
}

func (a *App) calcCmd(_ context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: calc needs one of profit, loan, budget, tax", ErrUsage)
	}
	sub, args := args[0], args[1:]
	fs := newFlagSet("calc " + sub)

	switch sub {
	case "profit":
		var f calc.ProfitForm
		fs.StringVar(&f.Revenue, "revenue", "", "total revenue")
		fs.StringVar(&f.Cost, "cost", "", "total cost")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		r := f.Calculate()
		fmt.Fprintf(a.out, "Profit: %s\nMargin: %.2f%%\n", core.FormatMoney(r.Profit), r.MarginPercent)

	case "loan":
		var f calc.LoanForm
		fs.StringVar(&f.Principal, "principal", "", "loan amount")
		fs.StringVar(&f.Rate, "rate", "", "annual interest rate in percent")
		fs.StringVar(&f.Years, "years", "", "tenure in years")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		r := f.Calculate()
		fmt.Fprintf(a.out, "Monthly EMI:    %s\nTotal payment:  %s\nTotal interest: %s\n",
			core.FormatMoney(r.MonthlyPayment), core.FormatMoney(r.TotalPayment), core.FormatMoney(r.TotalInterest))

	case "budget":
		f := calc.BudgetForm{Expenses: map[string]string{}}
		fs.StringVar(&f.Income, "income", "", "monthly income")
		for _, cat := range calc.DefaultBudgetCategories {
			fs.Func(cat, cat+" expense", func(v string) error {
				f.Expenses[cat] = v
				return nil
			})
		}
		fs.Func("expense", "extra expense as name=amount, repeatable", func(v string) error {
			name, amount, ok := strings.Cut(v, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("want name=amount, got %q", v)
			}
			f.Expenses[strings.TrimSpace(name)] = amount
			return nil
		})
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		r := f.Calculate()
		fmt.Fprintf(a.out, "Total expenses: %s\nRemaining:      %s\n",
			core.FormatMoney(r.TotalExpenses), core.FormatMoney(r.Remaining))

	case "tax":
		var f calc.TaxForm
		fs.StringVar(&f.Income, "income", "", "annual gross income")
		fs.StringVar(&f.Deductions, "deductions", "", "total deductions")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		r := f.Calculate()
		fmt.Fprintf(a.out, "Taxable income: %s\nTax:            %s\nNet income:     %s\n",
			core.FormatMoney(r.TaxableIncome), core.FormatMoney(r.Tax), core.FormatMoney(r.NetIncome))

	default:
		return fmt.Errorf("%w: unknown calculator %q", ErrUsage, sub)
	}
	return nil
}

// defaultAuthor names posts after the logged-in account when there is one.
func (a *App) defaultAuthor(ctx context.Context, author string) string {
	if strings.TrimSpace(author) != "" {
		return author
	}
	if acc, err := a.ledger.Current(ctx); err == nil {
		return acc.Name
	}
	return ""
}

func (a *App) communityCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: community needs one of feed, post, like, comment, leaderboard", ErrUsage)
	}
	sub, args := args[0], args[1:]
	fs := newFlagSet("community " + sub)

	switch sub {
	case "feed":
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		posts, err := a.community.Posts(ctx)
		if err != nil {
			return err
		}
		for _, p := range posts {
			fmt.Fprintf(a.out, "[%s] %s · %s · %d likes · %d points\n  %s\n",
				p.ID, p.Author, p.CreatedAt.Local().Format(recordTimeLayout), p.Likes, p.Points(), p.Content)
			for _, c := range p.Comments {
				fmt.Fprintf(a.out, "    %s: %s\n", c.Author, c.Content)
			}
		}

	case "post":
		author := fs.String("author", "", "author name")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		p, err := a.community.CreatePost(ctx, a.defaultAuthor(ctx, *author), strings.Join(fs.Args(), " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Posted %s\n", p.ID)

	case "like":
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: community like POST_ID", ErrUsage)
		}
		p, err := a.community.Like(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Liked %s (%d likes)\n", p.ID, p.Likes)

	case "comment":
		author := fs.String("author", "", "author name")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if fs.NArg() < 1 {
			return fmt.Errorf("%w: community comment [-author NAME] POST_ID TEXT...", ErrUsage)
		}
		c, err := a.community.Comment(ctx, fs.Arg(0), a.defaultAuthor(ctx, *author), strings.Join(fs.Args()[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Commented %s\n", c.ID)

	case "leaderboard":
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		board, err := a.community.Leaderboard(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tUSER\tPOINTS")
		for i, e := range board {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, e.User, e.Points)
		}
		return tw.Flush()

	default:
		return fmt.Errorf("%w: unknown community command %q", ErrUsage, sub)
	}
	return nil
}

func (a *App) ask(ctx context.Context, args []string) error {
	fs := newFlagSet("ask")
	focus := fs.String("focus", "", "your line of business, used for offline answers")
	timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("%w: ask QUESTION", ErrUsage)
	}

	if a.assistant == nil || !a.assistant.Enabled() {
		fmt.Fprintln(a.out, assistant.CannedReply(question, *focus))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	reply, err := a.assistant.Reply(ctx, []assistant.Message{{Role: assistant.RoleUser, Content: question}})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, reply)
	return nil
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/client"
	"github.com/mmynk/familyspend/internal/dashboard"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/internal/report"
)

type app struct {
	client     *client.Client
	httpClient *http.Client
	server     string
	tokens     tokenStore
	out        io.Writer
	now        func() time.Time
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"signup":     signUpCmd,
	"signin":     signInCmd,
	"signout":    signOutCmd,
	"month":      monthCmd,
	"add":        addExpenseCmd,
	"rm-expense": removeExpenseCmd,
	"members":    membersCmd,
	"add-member": addMemberCmd,
	"rm-member":  removeMemberCmd,
	"export":     exportCmd,
}

func newFlags(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// monthFlag registers -month and returns a resolver defaulting to the
// current month.
func monthFlag(a *app, fs *flag.FlagSet) func() (calendar.Window, error) {
	month := fs.String("month", "", "month as YYYY-MM (default: current)")
	return func() (calendar.Window, error) {
		if *month == "" {
			return calendar.Current(a.now()), nil
		}
		return calendar.Parse(*month)
	}
}

// openDashboard loads window into a dashboard backed by the server.
func (a *app) openDashboard(ctx context.Context, window calendar.Window) (*dashboard.Dashboard, error) {
	d := dashboard.New(a.client.Ledger, a.now())
	if _, err := d.Select(ctx, window); err != nil {
		return nil, err
	}
	return d, nil
}

func signUpCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "signup")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (at least 6 characters)")
	name := fs.String("name", "", "your display name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	resp, err := a.client.Auth.SignUp(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	if err := a.tokens.save(resp.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed up as %s <%s>\n", resp.Account.DisplayName, resp.Account.Email)
	return nil
}

func signInCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "signin")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	resp, err := a.client.Auth.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.tokens.save(resp.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", resp.Account.DisplayName)
	return nil
}

func signOutCmd(ctx context.Context, a *app, args []string) error {
	err := a.client.Auth.SignOut(ctx)
	if cerr := a.tokens.clear(); cerr != nil {
		return cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func monthCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "month")
	window := monthFlag(a, fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	w, err := window()
	if err != nil {
		return err
	}

	d, err := a.openDashboard(ctx, w)
	if err != nil {
		return err
	}
	a.printMonth(d.Data())
	return nil
}

func addExpenseCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "add")
	window := monthFlag(a, fs)
	id := fs.Int64("id", 0, "expense to edit (default: create)")
	member := fs.Int64("member", 0, "paying member ID")
	category := fs.String("category", "", "category, e.g. Groceries")
	amount := fs.String("amount", "", "amount, e.g. 12.50 or 12,50")
	note := fs.String("note", "", "optional note")
	date := fs.String("date", "", "date as YYYY-MM-DD (default: today within the month)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	w, err := window()
	if err != nil {
		return err
	}

	d, err := a.openDashboard(ctx, w)
	if err != nil {
		return err
	}

	form := dashboard.NewExpenseForm()
	if *id != 0 {
		var existing *models.Expense
		for _, e := range d.Data().Expenses {
			if e.ID == *id {
				existing = e
			}
		}
		if existing == nil {
			return fmt.Errorf("expense %d not found in %s", *id, w)
		}
		form = dashboard.EditExpenseForm(existing)
	}
	setIfGiven(fs, "member", func() { form.SetMember(*member) })
	setIfGiven(fs, "category", func() { form.SetCategory(*category) })
	setIfGiven(fs, "amount", func() { form.SetAmount(*amount) })
	setIfGiven(fs, "note", func() { form.SetNote(*note) })
	setIfGiven(fs, "date", func() { form.SetDate(*date) })

	data, err := d.SaveExpense(ctx, form)
	if err != nil {
		return err
	}
	a.printMonth(data)
	return nil
}

// setIfGiven calls set only when the flag was passed explicitly.
func setIfGiven(fs *flag.FlagSet, name string, set func()) {
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set()
		}
	})
}

func removeExpenseCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "rm-expense")
	window := monthFlag(a, fs)
	id := fs.Int64("id", 0, "expense ID")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	w, err := window()
	if err != nil {
		return err
	}

	d, err := a.openDashboard(ctx, w)
	if err != nil {
		return err
	}
	data, err := d.DeleteExpense(ctx, *id)
	if err != nil {
		return err
	}
	a.printMonth(data)
	return nil
}

func membersCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "members")
	window := monthFlag(a, fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	w, err := window()
	if err != nil {
		return err
	}

	d, err := a.openDashboard(ctx, w)
	if err != nil {
		return err
	}
	a.printMembers(d.Data())
	return nil
}

func addMemberCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "add-member")
	name := fs.String("name", "", "member name")
	email := fs.String("email", "", "optional email")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	d, err := a.openDashboard(ctx, calendar.Current(a.now()))
	if err != nil {
		return err
	}
	data, err := d.AddMember(ctx, ledger.MemberInput{Name: *name, Email: *email})
	if err != nil {
		return err
	}
	a.printMembers(data)
	return nil
}

func removeMemberCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "rm-member")
	id := fs.Int64("id", 0, "member ID")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	d, err := a.openDashboard(ctx, calendar.Current(a.now()))
	if err != nil {
		return err
	}
	data, err := d.DeleteMember(ctx, *id)
	if err != nil {
		return err
	}
	a.printMembers(data)
	return nil
}

func exportCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "export")
	window := monthFlag(a, fs)
	output := fs.String("o", "", "output file (default: expenses_YYYY-MM.xlsx)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	w, err := window()
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = report.Filename(&ledger.MonthData{Window: w})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/export/%s.xlsx", a.server, w), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.client.Token())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download export: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("export failed: %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}

func (a *app) printMonth(data *ledger.MonthData) {
	home := dashboard.Home(data)
	fmt.Fprintf(a.out, "%s  total %s  (%d transactions, %d members)\n", home.Month, home.Total, home.ExpenseCount, home.MemberCount)
	for _, m := range home.MemberTotals {
		fmt.Fprintf(a.out, "  %s %s\n", m.Name, m.Amount)
	}
	if home.Empty {
		fmt.Fprintln(a.out, "No expenses this month")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tMEMBER\tAMOUNT\tNOTE")
	for _, e := range home.Expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Category, e.MemberName, e.Amount, e.Note)
	}
	tw.Flush()

	analytics := dashboard.Analytics(data)
	fmt.Fprintln(a.out)
	tw = tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
	for _, c := range analytics.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Amount, c.Percent)
	}
	tw.Flush()
}

func (a *app) printMembers(data *ledger.MonthData) {
	view := dashboard.Members(data)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tEMAIL\tSPENT")
	for _, m := range view.Members {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Role, m.Email, m.Spent)
	}
	tw.Flush()
}

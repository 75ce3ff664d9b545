package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/portal"
	"github.com/eliteadvisers/portal/internal/querylist"
	"github.com/eliteadvisers/portal/internal/session"
)

type command struct {
	summary string
	usage   string
	run     func(ctx context.Context, a *app, args []string) error
}

// usageError reports bad command-line input.
type usageError string

func (e usageError) Error() string { return string(e) }

var commands = map[string]command{
	"login":          {"Sign in as a client", "[-email addr]", runLogin},
	"admin-login":    {"Sign in as an advisor", "[-email addr]", runAdminLogin},
	"signup":         {"Create an account and verify it with an OTP", "-name n -email addr [-phone p]", runSignup},
	"logout":         {"Clear the client session", "", runLogout(session.KindUser)},
	"admin-logout":   {"Clear the advisor session", "", runLogout(session.KindAdmin)},
	"whoami":         {"Show what the stored token says", "[-admin]", runWhoami},
	"dashboard":      {"Show the client dashboard", "", runDashboard},
	"notifications":  {"Show recent notifications", "", runNotifications},
	"profile":        {"Show the profile form", "", runProfile},
	"profile-update": {"Update the profile", "[-name n] [-email e] [-phone p] [-picture url] [-password]", runProfileUpdate},
	"rate":           {"Rate a closed query", "-id id -rating 1..5", runRate},
	"reopen":         {"Reopen a closed query", "-id id", runReopen},
	"admin-problems": {"Show the advisor console", "", runAdminProblems},
	"admin-update":   {"Edit and save one query row", "-id key [-message m] [-status s] [-assign adminId] [-meetup date]", runAdminUpdate},
	"admin-profile":  {"Update the advisor profile", "[-name n] [-photo url] [-bio text]", runAdminProfile},
	"publish":        {"Publish a library article", "-title t -summary s [-tags a,b] [-citation c] [-link url]", runPublish},
	"library":        {"Search the compliance library", "[-q text] [-tag tag]", runLibrary},
}

// ─── Output Helpers ────────────────────────────────────────────────────

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if !term.IsTerminal(int(syscall.Stdin)) {
		line, err := stdin.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // Newline after password input
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return nil
}

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// optional returns &v when the flag was given, else nil.
func optional(set map[string]bool, name, v string) *string {
	if !set[name] {
		return nil
	}
	return &v
}

// ─── Auth ──────────────────────────────────────────────────────────────

func credentials(args []string, name string) (string, string, error) {
	fs := newFlags(name)
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return "", "", err
	}
	if *email == "" {
		*email = prompt("Email")
	}
	password, err := promptPassword("Password")
	if err != nil {
		return "", "", err
	}
	return *email, password, nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	email, password, err := credentials(args, "login")
	if err != nil {
		return err
	}
	return a.auth.Login(ctx, email, password)
}

func runAdminLogin(ctx context.Context, a *app, args []string) error {
	email, password, err := credentials(args, "admin-login")
	if err != nil {
		return err
	}
	return a.auth.AdminLogin(ctx, email, password)
}

func runSignup(ctx context.Context, a *app, args []string) error {
	fs := newFlags("signup")
	req := model.SignupRequest{}
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	if err := parse(fs, args); err != nil {
		return err
	}

	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	req.Password = password

	if err := a.auth.Signup(ctx, req); err != nil {
		return err
	}
	return a.auth.VerifyOTP(ctx, prompt("OTP"))
}

func runLogout(kind session.Kind) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, _ []string) error {
		return a.gate.Logout(ctx, kind)
	}
}

type whoami struct {
	Kind        session.Kind       `json:"kind"`
	LoggedIn    bool               `json:"logged_in"`
	DisplayName string             `json:"display_name,omitempty"`
	Token       *session.TokenInfo `json:"token,omitempty"`
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlags("whoami")
	admin := fs.Bool("admin", false, "inspect the advisor session")
	if err := parse(fs, args); err != nil {
		return err
	}

	kind := session.KindUser
	if *admin {
		kind = session.KindAdmin
	}
	token, err := a.repo.Get(ctx, kind)
	if err != nil {
		return err
	}

	out := whoami{Kind: kind, LoggedIn: token != ""}
	if kind == session.KindUser {
		if out.DisplayName, err = a.repo.DisplayName(ctx); err != nil {
			return err
		}
	}
	if info, ok := session.Inspect(token, time.Now()); ok {
		out.Token = &info
	}
	return printJSON(out)
}

// ─── Client Views ──────────────────────────────────────────────────────

func runDashboard(ctx context.Context, a *app, _ []string) error {
	err := a.dashboard.Enter(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return err
	}
	// A failed load still renders the placeholder view.
	if perr := printJSON(a.dashboard.View()); perr != nil {
		return perr
	}
	return err
}

func runNotifications(ctx context.Context, a *app, _ []string) error {
	if err := a.dashboard.Enter(ctx); err != nil {
		return err
	}
	return printJSON(a.dashboard.Notifications())
}

func runProfile(ctx context.Context, a *app, _ []string) error {
	if err := a.dashboard.LoadProfile(ctx); err != nil {
		return err
	}
	form, _ := a.dashboard.ProfileForm()
	return printJSON(form)
}

func runProfileUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("profile-update")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone number")
	picture := fs.String("picture", "", "picture URL")
	askPassword := fs.Bool("password", false, "prompt for a new password")
	if err := parse(fs, args); err != nil {
		return err
	}
	set := setFlags(fs)

	edit := portal.ProfileEdit{
		Name:    optional(set, "name", *name),
		Email:   optional(set, "email", *email),
		Phone:   optional(set, "phone", *phone),
		Picture: optional(set, "picture", *picture),
	}
	if *askPassword {
		pw, err := promptPassword("New password")
		if err != nil {
			return err
		}
		edit.Password = &pw
	}

	if err := a.dashboard.LoadProfile(ctx); err != nil {
		return err
	}
	if err := a.dashboard.EditProfile(edit); err != nil {
		return err
	}
	return a.dashboard.SaveProfile(ctx)
}

func runRate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("rate")
	id := fs.String("id", "", "query id")
	rating := fs.Int("rating", 0, "stars, 1 to 5")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("-id is required")
	}
	if err := a.dashboard.Enter(ctx); err != nil {
		return err
	}
	return a.dashboard.Rate(ctx, *id, *rating)
}

func runReopen(ctx context.Context, a *app, args []string) error {
	fs := newFlags("reopen")
	id := fs.String("id", "", "query id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("-id is required")
	}
	if err := a.dashboard.Enter(ctx); err != nil {
		return err
	}
	return a.dashboard.Reopen(ctx, *id)
}

// ─── Advisor Console ───────────────────────────────────────────────────

func runAdminProblems(ctx context.Context, a *app, _ []string) error {
	if err := a.console.Enter(ctx); err != nil {
		return err
	}
	return printJSON(a.console.View())
}

func runAdminUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("admin-update")
	id := fs.String("id", "", "row key (problemId or _id)")
	message := fs.String("message", "", "message to the client")
	status := fs.String("status", "", "pending, in-progress or closed")
	assign := fs.String("assign", "", "advisor id, empty to unassign")
	meetup := fs.String("meetup", "", "meetup date")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("-id is required")
	}
	set := setFlags(fs)

	if err := a.console.Enter(ctx); err != nil {
		return err
	}
	edit := querylist.RowEdit{
		AdminMessage: optional(set, "message", *message),
		Status:       optional(set, "status", *status),
		AssignTo:     optional(set, "assign", *assign),
		MeetupDate:   optional(set, "meetup", *meetup),
	}
	if err := a.console.Queries().Edit(*id, edit); err != nil {
		return usageError(fmt.Sprintf("no query row %q", *id))
	}
	return a.console.SubmitQuery(ctx, *id)
}

func runAdminProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlags("admin-profile")
	name := fs.String("name", "", "display name")
	photo := fs.String("photo", "", "photo URL")
	bio := fs.String("bio", "", "short bio")
	if err := parse(fs, args); err != nil {
		return err
	}
	set := setFlags(fs)

	if err := a.console.Enter(ctx); err != nil {
		return err
	}
	a.console.EditProfile(portal.AdminProfileEdit{
		Name:  optional(set, "name", *name),
		Photo: optional(set, "photo", *photo),
		Bio:   optional(set, "bio", *bio),
	})
	return a.console.SaveProfile(ctx)
}

func runPublish(ctx context.Context, a *app, args []string) error {
	fs := newFlags("publish")
	draft := model.ArticleDraft{}
	fs.StringVar(&draft.Title, "title", "", "article title")
	fs.StringVar(&draft.Tags, "tags", "", "comma-separated tags")
	fs.StringVar(&draft.Summary, "summary", "", "summary")
	fs.StringVar(&draft.Citation, "citation", "", "legal citation")
	fs.StringVar(&draft.Link, "link", "", "source link")
	if err := parse(fs, args); err != nil {
		return err
	}

	a.console.SetDraft(draft)
	return a.console.PublishArticle(ctx)
}

// ─── Library ───────────────────────────────────────────────────────────

func runLibrary(ctx context.Context, a *app, args []string) error {
	fs := newFlags("library")
	q := fs.String("q", "", "search text")
	tag := fs.String("tag", "", "one of: "+strings.Join(portal.LibraryTags, ", "))
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.library.Search(ctx, *q, *tag); err != nil {
		return err
	}
	return printJSON(a.library.View())
}

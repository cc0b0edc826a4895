package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"irondoc/client/internal/access"
	"irondoc/client/internal/app"
	"irondoc/client/internal/export"
	"irondoc/client/internal/model"
	"irondoc/client/internal/rbac"
	"irondoc/client/internal/render"
)

func (d *deps) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("irondoc "+name, flag.ContinueOnError)
	fs.SetOutput(d.stderr)
	return fs
}

func (d *deps) table() *tabwriter.Writer {
	return tabwriter.NewWriter(d.stdout, 0, 4, 2, ' ', 0)
}

// parseWithArgs parses fs while allowing positional arguments before the
// flags, as in "irondoc edit 42 -title x".
func parseWithArgs(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	var positional []string
	for len(args) > 0 && !strings.HasPrefix(args[0], "-") && len(positional) < want {
		positional = append(positional, args[0])
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, usagef("%v", err)
	}
	positional = append(positional, fs.Args()...)
	if len(positional) != want {
		return nil, usagef("expected %d argument(s), got %d", want, len(positional))
	}
	return positional, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func runRegister(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("register")
	var in app.RegisterInput
	fs.StringVar(&in.Name, "name", "", "full name")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Password, "password", "", "password (at least 6 characters)")
	fs.StringVar(&in.Confirm, "confirm", "", "password again")
	fs.StringVar(&in.Role, "role", string(rbac.RoleViewer), "admin, editor or viewer")
	if _, err := parseWithArgs(fs, args, 0); err != nil {
		return err
	}
	if _, err := d.auth.Register(ctx, in); err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "Account created for %s. Sign in with: irondoc login -email %s\n", strings.TrimSpace(in.Email), strings.TrimSpace(in.Email))
	return nil
}

func runLogin(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (defaults to $IRONDOC_PASSWORD)")
	if _, err := parseWithArgs(fs, args, 0); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("IRONDOC_PASSWORD")
	}
	if *email == "" || *password == "" {
		return usagef("-email and -password are required")
	}
	user, err := d.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	profile, err := d.session.Load(ctx, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "Signed in as %s <%s> (%s)\n", orDash(profile.DisplayName), user.Email, rbac.Normalize(string(user.Role)))
	return nil
}

func runLogout(ctx context.Context, d *deps, args []string) error {
	if _, err := parseWithArgs(d.flags("logout"), args, 0); err != nil {
		return err
	}
	if err := d.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(d.stdout, "Signed out.")
	return nil
}

func runWhoami(ctx context.Context, d *deps, args []string) error {
	if _, err := parseWithArgs(d.flags("whoami"), args, 0); err != nil {
		return err
	}
	user, err := d.currentUser(ctx)
	if err != nil {
		return err
	}
	return printProfile(ctx, d, user)
}

func printProfile(ctx context.Context, d *deps, user model.User) error {
	profile, err := d.session.Load(ctx, user)
	if err != nil {
		return err
	}
	tw := d.table()
	fmt.Fprintf(tw, "Name\t%s\n", orDash(profile.DisplayName))
	fmt.Fprintf(tw, "Initials\t%s\n", render.Initials(profile.DisplayName))
	fmt.Fprintf(tw, "Email\t%s\n", user.Email)
	fmt.Fprintf(tw, "Role\t%s\n", rbac.Normalize(string(user.Role)))
	fmt.Fprintf(tw, "Avatar\t%s\n", describeAvatar(profile.AvatarURL))
	return tw.Flush()
}

func describeAvatar(url string) string {
	switch {
	case url == "":
		return "-"
	case strings.HasPrefix(url, "data:"):
		if i := strings.Index(url, ";"); i > 0 {
			return "embedded " + url[len("data:"):i]
		}
		return "embedded image"
	default:
		return url
	}
}

func runHealth(ctx context.Context, d *deps, args []string) error {
	if _, err := parseWithArgs(d.flags("health"), args, 0); err != nil {
		return err
	}
	h, err := d.api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "%s: %s (%s)\n", d.cfg.APIURL, h.Status, orDash(h.Message))
	return nil
}

func runDocs(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("docs")
	query := fs.String("q", "", "filter by title")
	text := fs.String("search", "", "search titles and content")
	limit := fs.Int("limit", 20, "maximum search results")
	if _, err := parseWithArgs(fs, args, 0); err != nil {
		return err
	}
	w, err := d.workspace(ctx)
	if err != nil {
		return err
	}
	if w.Notice() != "" {
		fmt.Fprintln(d.stderr, w.Notice())
	}

	tw := d.table()
	if *text != "" {
		resp := w.Search(*text, *limit)
		if len(resp.Results) == 0 {
			fmt.Fprintln(d.stdout, "No matching documents.")
			return nil
		}
		fmt.Fprintln(tw, "ID\tTITLE\tOWNER\tMATCH")
		for _, r := range resp.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Title, orDash(r.OwnerEmail), oneLine(r.Snippet))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(d.stdout, "%d of %d result(s) via %s\n", len(resp.Results), resp.Total, resp.Backend)
		return nil
	}

	docs := w.Filter(*query)
	if len(docs) == 0 {
		fmt.Fprintln(d.stdout, "No documents.")
		return nil
	}
	fmt.Fprintln(tw, "ID\tTITLE\tOWNER\tUPDATED\tSUMMARY")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			doc.ID, doc.Title, orDash(doc.OwnerName), formatTime(doc.UpdatedAt), render.Excerpt(render.ForEditor(doc.Content)))
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// selectDocument returns a workspace with id selected.
func selectDocument(ctx context.Context, d *deps, id string) (*app.Workspace, model.Document, error) {
	w, err := d.workspace(ctx)
	if err != nil {
		return nil, model.Document{}, err
	}
	if err := w.Select(ctx, model.ID(id), false); err != nil {
		return nil, model.Document{}, err
	}
	doc, _ := w.Selected()
	return w, doc, nil
}

func runShow(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("show")
	asHTML := fs.Bool("html", false, "print sanitized HTML instead of text")
	pos, err := parseWithArgs(fs, args, 1)
	if err != nil {
		return err
	}
	w, doc, err := selectDocument(ctx, d, pos[0])
	if err != nil {
		return err
	}
	caps := w.Capabilities()

	tw := d.table()
	fmt.Fprintf(tw, "Title\t%s\n", doc.Title)
	fmt.Fprintf(tw, "Owner\t%s <%s>\n", orDash(doc.OwnerName), orDash(doc.OwnerEmail))
	fmt.Fprintf(tw, "Updated\t%s\n", formatTime(doc.UpdatedAt))
	fmt.Fprintf(tw, "Last edited by\t%s\n", orDash(doc.LastEditedBy))
	fmt.Fprintf(tw, "You can\t%s\n", describeCapabilities(caps))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(d.stdout)

	content := render.Sanitize(render.ForEditor(doc.Content))
	if !*asHTML {
		content = render.PlainText(content)
	}
	fmt.Fprintln(d.stdout, content)
	return nil
}

func describeCapabilities(caps access.Capabilities) string {
	var out []string
	out = append(out, "read")
	if caps.Edit {
		out = append(out, "edit")
	}
	if caps.Delete {
		out = append(out, "delete")
	}
	if caps.ViewHistory {
		out = append(out, "view history")
	}
	return strings.Join(out, ", ")
}

func runHistory(ctx context.Context, d *deps, args []string) error {
	pos, err := parseWithArgs(d.flags("history"), args, 1)
	if err != nil {
		return err
	}
	w, _, err := selectDocument(ctx, d, pos[0])
	if err != nil {
		return err
	}
	if !access.CanViewHistory(w.User()) {
		fmt.Fprintln(d.stdout, "Version history is not available for your role.")
		return nil
	}
	entries := w.History()
	if len(entries) == 0 {
		fmt.Fprintln(d.stdout, "No revisions to show.")
		return nil
	}
	tw := d.table()
	fmt.Fprintln(tw, "REVISION\tAUTHOR\tCREATED\tCHANGES\tSTATUS")
	for _, e := range entries {
		status := ""
		switch {
		case e.Current:
			status = "current"
		case e.Restorable:
			status = "restorable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Revision.ID, orDash(firstNonBlank(e.Revision.AuthorName, e.Revision.AuthorEmail)),
			formatTime(e.Revision.CreatedAt), orDash(e.Revision.Changes), status)
	}
	return tw.Flush()
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type draftFlags struct {
	title       string
	content     string
	contentFile string
	titleSet    bool
	contentSet  bool
}

func (f *draftFlags) register(fs *flag.FlagSet) {
	fs.Func("title", "document title", func(v string) error {
		f.title, f.titleSet = v, true
		return nil
	})
	fs.Func("content", "document content (HTML)", func(v string) error {
		f.content, f.contentSet = v, true
		return nil
	})
	fs.StringVar(&f.contentFile, "content-file", "", "read content from a file")
}

func (f *draftFlags) apply(draft app.Draft) (app.Draft, error) {
	if f.contentFile != "" {
		raw, err := os.ReadFile(f.contentFile)
		if err != nil {
			return draft, fmt.Errorf("read content file: %w", err)
		}
		f.content, f.contentSet = string(raw), true
	}
	if f.titleSet {
		draft.Title = f.title
	}
	if f.contentSet {
		draft.Content = f.content
	}
	return draft, nil
}

func (f *draftFlags) changed() bool {
	return f.titleSet || f.contentSet || f.contentFile != ""
}

func runCreate(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("create")
	var df draftFlags
	df.register(fs)
	if _, err := parseWithArgs(fs, args, 0); err != nil {
		return err
	}
	w, err := d.workspace(ctx)
	if err != nil {
		return err
	}
	if err := w.Create(ctx); err != nil {
		return err
	}
	doc, _ := w.Selected()
	if !df.changed() {
		_ = w.Cancel()
		fmt.Fprintf(d.stdout, "Created %s (%s)\n", doc.ID, doc.Title)
		return nil
	}
	draft, err := df.apply(w.Draft())
	if err != nil {
		return err
	}
	if err := w.SetDraft(draft); err != nil {
		return err
	}
	if err := w.Save(ctx); err != nil {
		fmt.Fprintf(d.stderr, "Document %s was created but your changes were not saved.\n", doc.ID)
		return fmt.Errorf("document %s was created but not saved: %w", doc.ID, err)
	}
	saved, _ := w.Selected()
	fmt.Fprintf(d.stdout, "Created %s (%s)\n", saved.ID, saved.Title)
	return nil
}

func runEdit(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("edit")
	var df draftFlags
	df.register(fs)
	pos, err := parseWithArgs(fs, args, 1)
	if err != nil {
		return err
	}
	if !df.changed() {
		return usagef("nothing to change; pass -title, -content or -content-file")
	}
	w, _, err := selectDocument(ctx, d, pos[0])
	if err != nil {
		return err
	}
	if err := w.BeginEdit(); err != nil {
		return err
	}
	draft, err := df.apply(w.Draft())
	if err != nil {
		return err
	}
	if err := w.SetDraft(draft); err != nil {
		return err
	}
	if err := w.Save(ctx); err != nil {
		return err
	}
	saved, _ := w.Selected()
	fmt.Fprintf(d.stdout, "Saved %s (%s)\n", saved.ID, saved.Title)
	return nil
}

func runDelete(ctx context.Context, d *deps, args []string) error {
	pos, err := parseWithArgs(d.flags("delete"), args, 1)
	if err != nil {
		return err
	}
	w, err := d.workspace(ctx)
	if err != nil {
		return err
	}
	if err := w.Delete(ctx, model.ID(pos[0])); err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "Deleted %s\n", pos[0])
	return nil
}

func runRestore(ctx context.Context, d *deps, args []string) error {
	pos, err := parseWithArgs(d.flags("restore"), args, 2)
	if err != nil {
		return err
	}
	w, _, err := selectDocument(ctx, d, pos[0])
	if err != nil {
		return err
	}
	if err := w.Restore(ctx, model.ID(pos[1])); err != nil {
		return err
	}
	doc, _ := w.Selected()
	current, _ := access.CurrentRevisionID(doc)
	fmt.Fprintf(d.stdout, "Restored revision %s of %s; current revision is %s\n", pos[1], doc.ID, orDash(current.String()))
	return nil
}

func runUsers(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("users")
	query := fs.String("q", "", "filter by name, email or role")
	if _, err := parseWithArgs(fs, args, 0); err != nil {
		return err
	}
	user, err := d.currentUser(ctx)
	if err != nil {
		return err
	}
	roster, err := app.NewUserDirectory(d.api, d.session, d.logger).Load(ctx, user)
	if err != nil {
		return err
	}
	if roster.Notice != "" {
		fmt.Fprintln(d.stderr, roster.Notice)
	}

	tw := d.table()
	for _, group := range app.GroupByRole(app.FilterUsers(roster.Users, *query)) {
		if len(group.Users) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s (%d)\t\t\n", strings.ToUpper(string(group.Role)), len(group.Users))
		for _, u := range group.Users {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", orDash(u.Name), orDash(u.Email), describeAvatar(u.AvatarURL))
		}
	}
	return tw.Flush()
}

func runProfile(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("profile")
	name := fs.String("name", "", "display name to use on this device")
	avatarPath := fs.String("avatar", "", "image file to use as avatar")
	clearName := fs.Bool("clear-name", false, "remove the display name override")
	clearAvatar := fs.Bool("clear-avatar", false, "remove the avatar override")
	reset := fs.Bool("reset", false, "remove every override for this account")
	if _, err := parseWithArgs(fs, args, 0); err != nil {
		return err
	}
	if *clearName && *name != "" {
		return usagef("-name and -clear-name are mutually exclusive")
	}
	user, err := d.currentUser(ctx)
	if err != nil {
		return err
	}

	switch {
	case *reset:
		if err := d.session.ClearProfile(ctx, user.Email); err != nil {
			return err
		}
	case *name != "" || *avatarPath != "" || *clearName || *clearAvatar:
		profile, err := d.session.Overrides(ctx, user.Email)
		if err != nil {
			return err
		}
		if *clearName {
			profile.DisplayName = ""
		}
		if *name != "" {
			profile.DisplayName = *name
		}
		if *clearAvatar {
			profile.AvatarURL = ""
		}
		if *avatarPath != "" {
			svc, err := d.avatars(ctx)
			if err != nil {
				return err
			}
			url, err := svc.FromFile(ctx, *avatarPath)
			if err != nil {
				return err
			}
			profile.AvatarURL = url
		}
		if err := d.session.Save(ctx, user, profile); err != nil {
			return err
		}
	}
	return printProfile(ctx, d, user)
}

func runExport(ctx context.Context, d *deps, args []string) error {
	fs := d.flags("export")
	formatName := fs.String("format", "html", "html, pdf or docx")
	output := fs.String("o", "", "output file (default: derived from the title, - for stdout)")
	withHistory := fs.Bool("history", false, "include the revisions you may see")
	pos, err := parseWithArgs(fs, args, 1)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return usagef("%v", err)
	}
	w, doc, err := selectDocument(ctx, d, pos[0])
	if err != nil {
		return err
	}
	res, err := d.exporter().Export(ctx, export.Request{
		Document:       doc,
		Viewer:         w.User(),
		Format:         format,
		IncludeHistory: *withHistory,
	})
	if err != nil {
		return err
	}

	if *output == "-" {
		_, err := d.stdout.Write(res.Data)
		return err
	}
	path := *output
	if path == "" {
		path = res.Filename
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(d.stdout, "Wrote %s (%d bytes)\n", path, len(res.Data))
	return nil
}

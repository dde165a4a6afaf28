// Command cmsctl is an operator CLI for the content hub API. It signs in
// with an admin account, keeps the session fresh while it works and signs
// out when done.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/logger"
	"github.com/iliyamo/content-hub/internal/session"
)

type options struct {
	api      string
	anonKey  string
	email    string
	password string
	out      string
	ids      string
	retries  int
	timeout  time.Duration
	verbose  bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string, stdout io.Writer) error {
	var o options
	flags := pflag.NewFlagSet("cmsctl", pflag.ContinueOnError)
	flags.StringVar(&o.api, "api", envOr("CMS_API", "http://localhost:8080/api"), "API base URL including the prefix")
	flags.StringVar(&o.anonKey, "anon-key", os.Getenv("ANON_KEY"), "public anon key")
	flags.StringVar(&o.email, "email", os.Getenv("CMS_EMAIL"), "account email")
	flags.StringVar(&o.password, "password", os.Getenv("CMS_PASSWORD"), "account password")
	flags.StringVarP(&o.out, "out", "o", "", "write output to this file instead of stdout")
	flags.StringVar(&o.ids, "ids", "", "comma separated attendee ids (export-attendees)")
	flags.IntVar(&o.retries, "retries", 2, "retries for failed requests")
	flags.DurationVar(&o.timeout, "timeout", 10*time.Second, "per-request timeout")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log session activity to stderr")
	flags.Usage = func() { usage(flags) }
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	args := flags.Args()
	if len(args) == 0 {
		usage(flags)
		return errors.New("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := zap.NewNop()
	if o.verbose {
		log = logger.New("dev", logger.WithOnlyWriter(os.Stderr))
	}
	client := session.NewClient(o.api, o.anonKey, o.retries, o.timeout)

	w := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	cmd, rest := args[0], args[1:]
	if cmd == "events" {
		return printJSON(ctx, client, w, "/events", "")
	}

	keeper := session.NewKeeper(client, log)
	if err := keeper.Start(ctx, o.email, o.password); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()
		if err := keeper.Stop(sctx); err != nil {
			log.Warn("sign out failed", zap.Error(err))
		}
	}()
	token, err := keeper.Token()
	if err != nil {
		return err
	}

	switch cmd {
	case "session":
		return printJSON(ctx, client, w, "/auth/session", token)
	case "stats":
		return printJSON(ctx, client, w, "/stats", token)
	case "forms":
		return printJSON(ctx, client, w, "/forms", token)
	case "attendees":
		id, err := arg(rest, "event id")
		if err != nil {
			return err
		}
		return printJSON(ctx, client, w, "/events/"+url.PathEscape(id)+"/attendees", token)
	case "export-attendees":
		id, err := arg(rest, "event id")
		if err != nil {
			return err
		}
		path := "/events/" + url.PathEscape(id) + "/attendees/export"
		if o.ids != "" {
			path += "?ids=" + url.QueryEscape(o.ids)
		}
		return copyRaw(ctx, client, w, path, token)
	case "export-responses":
		slug, err := arg(rest, "form slug")
		if err != nil {
			return err
		}
		return copyRaw(ctx, client, w, "/forms/"+url.PathEscape(slug)+"/responses/export", token)
	case "analytics":
		slug, err := arg(rest, "form slug")
		if err != nil {
			return err
		}
		return printJSON(ctx, client, w, "/forms/"+url.PathEscape(slug)+"/analytics", token)
	case "remind":
		id, err := arg(rest, "event id")
		if err != nil {
			return err
		}
		var out map[string]any
		if err := client.Do(ctx, http.MethodPost, "/events/"+url.PathEscape(id)+"/reminders", token, nil, &out); err != nil {
			return err
		}
		return writeJSON(w, out)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func printJSON(ctx context.Context, c *session.Client, w io.Writer, path, token string) error {
	var out any
	if err := c.Do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return err
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func copyRaw(ctx context.Context, c *session.Client, w io.Writer, path, token string) error {
	data, err := c.DoRaw(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func arg(rest []string, what string) (string, error) {
	if len(rest) == 0 || strings.TrimSpace(rest[0]) == "" {
		return "", fmt.Errorf("missing %s", what)
	}
	return rest[0], nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func usage(flags *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, `Usage: cmsctl [flags] <command> [args]

Commands:
  events                     list events (anon key only)
  session                    show the signed-in user
  stats                      dashboard counters
  forms                      list forms
  attendees <event>          list attendees of an event
  export-attendees <event>   attendee CSV (--ids to select)
  export-responses <slug>    form responses CSV
  analytics <slug>           form response analytics
  remind <event>             queue reminder mails

Flags:
`)
	fmt.Fprint(os.Stderr, flags.FlagUsages())
}

// Command tenderctl runs the notifier's operations once from a terminal.
//
// Usage:
//
//	tenderctl report <key>
//	tenderctl messages <key>
//	tenderctl sync
//	tenderctl subs
//	tenderctl attachments <tender id>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"tender-notifier/internal/app"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/common/utils"
)

const dateLayout = "02.01.2006 15:04"

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <report|messages|sync|subs|attachments> [arg]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	if err := execute(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func execute(command string, args []string) error {
	cfg, err := app.LoadConfig()
	defer logging.MustSync()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, a, os.Stdout, command, args)
}

// run dispatches one subcommand against a, rendering its result to w.
func run(ctx context.Context, a *app.App, w io.Writer, command string, args []string) error {
	out := newTable(w)
	switch command {
	case "report":
		if len(args) != 1 {
			return fmt.Errorf("report needs a key")
		}
		return report(ctx, a, out, args[0])
	case "messages":
		if len(args) != 1 {
			return fmt.Errorf("messages needs a key")
		}
		return messages(ctx, a, out, args[0])
	case "sync":
		return syncOnce(ctx, a, w, out)
	case "subs":
		return subscriptions(ctx, a, out)
	case "attachments":
		if len(args) != 1 {
			return fmt.Errorf("attachments needs a tender id")
		}
		return attachments(ctx, a, out, args[0])
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func report(ctx context.Context, a *app.App, t table.Writer, key string) error {
	r, err := a.Assembler.Generate(ctx, key)
	if err != nil {
		return err
	}
	newest := utils.FormatMillis(r.MaxPublished, dateLayout, a.Config.Location())
	if newest == "" {
		newest = "-"
	}
	t.AppendHeader(table.Row{"File", "Rows", "Newest publication"})
	t.AppendRow(table.Row{r.Path, r.Rows, newest})
	t.Render()
	return nil
}

func messages(ctx context.Context, a *app.App, t table.Writer, key string) error {
	list, err := a.Exporter.ExportMessages(ctx, key)
	if err != nil {
		return err
	}
	t.AppendHeader(table.Row{"#", "Tender", "Message", "Documents"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 70}})
	for i, n := range list {
		t.AppendRow(table.Row{i + 1, n.TenderID, firstLine(n.Text), len(n.Attachments)})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(list)})
	t.Render()
	return nil
}

func syncOnce(ctx context.Context, a *app.App, w io.Writer, t table.Writer) error {
	result, err := a.Syncer.CheckNewTenders(ctx)
	if err != nil {
		return err
	}
	if result.Locked {
		fmt.Fprintln(w, "Another instance is running the cycle, nothing done.")
		return nil
	}
	t.SetTitle("Run %s (%s)", result.RunID, result.Duration.Round(time.Millisecond))
	t.AppendHeader(table.Row{"User", "Key", "Collected", "Already sent", "Delivered", "Failed", "Watermark", "Error"})
	for _, s := range result.Subscriptions {
		t.AppendRow(table.Row{s.UserID, s.Key, s.Collected, s.Skipped, s.Delivered, s.Failed, s.LastTS, s.Error})
	}
	t.Render()
	return nil
}

func subscriptions(ctx context.Context, a *app.App, t table.Writer) error {
	subs, err := a.Storage.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	t.AppendHeader(table.Row{"User", "Key", "Name", "Last publication"})
	for _, s := range subs {
		last, err := a.Tracker.LastTS(ctx, s.UserID, s.Key)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{s.UserID, s.Key, s.Name, utils.FormatMillis(last, dateLayout, a.Config.Location())})
	}
	t.Render()
	return nil
}

func attachments(ctx context.Context, a *app.App, t table.Writer, tenderID string) error {
	list, err := a.Storage.GetAttachments(ctx, tenderID)
	if err != nil {
		return err
	}
	t.AppendHeader(table.Row{"File", "URL"})
	for _, att := range list {
		t.AppendRow(table.Row{att.FileName, att.URL})
	}
	t.Render()
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

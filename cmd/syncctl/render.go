package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func renderPullResult(w io.Writer, r *appintegration.PullResult) {
	fmt.Fprintf(w, "run %s: %s\n", r.RunID, r.Status)
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Seen", "Written", "Skipped", "Failed"})
	tw.AppendRow(table.Row{r.Seen, r.Written, r.Skipped, r.Failed})
	tw.Render()
	renderMessages(w, r.Messages)
}

func renderPushResult(w io.Writer, r *appintegration.PushResult) {
	fmt.Fprintf(w, "run %s: %s (%d total, %d updated, %d skipped, %d failed)\n",
		r.RunID, r.Status, r.Total, r.Updated, r.Skipped, r.Failed)
	renderBatches(w, r.Batches)
	renderMessages(w, r.Messages)
}

func renderBatches(w io.Writer, batches []integration.SyncBatch) {
	if len(batches) == 0 {
		return
	}
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Chunk", "Items", "Updated", "Failed", "Attempts", "Error"})
	for _, b := range batches {
		tw.AppendRow(table.Row{b.Seq, len(b.Items), b.SuccessCount(), b.ErrorCount(), b.Attempts, b.Error})
	}
	tw.Render()
}

func renderMessages(w io.Writer, messages []string) {
	for _, m := range messages {
		fmt.Fprintln(w, "  - "+m)
	}
}

func renderRuns(w io.Writer, runs []*integration.SyncRun) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Kind", "Status", "Document", "Ref", "Total", "OK", "Skipped", "Failed", "Started", "Duration"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Total", Align: text.AlignRight},
		{Name: "OK", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
	})
	for _, r := range runs {
		tw.AppendRow(table.Row{
			r.ID.String(),
			string(r.Kind),
			r.Status.String(),
			r.DocumentNumber,
			r.RemoteRef,
			r.TotalCount,
			r.SuccessCount,
			r.SkippedCount,
			r.ErrorCount,
			r.StartedAt.Format(time.DateTime),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	tw.Render()
}

func renderRun(w io.Writer, r *integration.SyncRun) {
	renderRuns(w, []*integration.SyncRun{r})
	renderBatches(w, r.Batches)
	for _, b := range r.Batches {
		if len(b.Failures) == 0 {
			continue
		}
		lines := make([]string, 0, len(b.Failures))
		for _, f := range b.Failures {
			lines = append(lines, fmt.Sprintf("%s %s: %s", f.ItemID, f.ErrorCode, f.ErrorMessage))
		}
		fmt.Fprintf(w, "chunk %d failures:\n    %s\n", b.Seq, strings.Join(lines, "\n    "))
	}
	renderMessages(w, r.Messages)
}

func renderStock(w io.Writer, articles []string, levels map[string]decimal.Decimal) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Article", "On hand"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Name: "On hand", Align: text.AlignRight}})
	for _, id := range articles {
		tw.AppendRow(table.Row{id, levels[id].String()})
	}
	tw.Render()
}

package executors

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/ynabsync/pkg/amount"
	"github.com/yurifrl/ynabsync/pkg/reconcile"
)

var (
	syncedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
)

// Report prints a human-readable preview of a run.
func Report(w io.Writer, run *Run) {
	for _, entry := range run.Result.Entries {
		r := entry.Record
		line := fmt.Sprintf("%s | %-30s | %s | %s", r.Date, r.Title, r.ShortID, amount.Format(r.CompareAmount))
		switch entry.Status {
		case reconcile.Unchanged:
			fmt.Fprintln(w, syncedStyle.Render("= "+line))
		case reconcile.Changed:
			fmt.Fprintln(w, changedStyle.Render(fmt.Sprintf("~ %s | %s -> %s", line, entry.Original.Date, r.Date)))
		case reconcile.Missing:
			fmt.Fprintln(w, addedStyle.Render("+ "+line))
		}
	}

	result := run.Result
	if result.ChangedCount() == 0 && result.MissingCount() == 0 {
		fmt.Fprintf(w, "\nPlan: All %d transaction(s) in %s are in sync\n", result.InSyncCount(), run.Account.Name)
		return
	}
	fmt.Fprintf(w, "\nPlan: %d date correction(s), %d transaction(s) to add, %d already in sync in %s\n",
		result.ChangedCount(), result.MissingCount(), result.InSyncCount(), run.Account.Name)
}

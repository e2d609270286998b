package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"suitectl/internal/domain"
)

// FailuresViewer displays the failures of a session in an interactive TUI
type FailuresViewer struct {
	root string
}

// NewFailuresViewer creates a new FailuresViewer
func NewFailuresViewer(root string) *FailuresViewer {
	return &FailuresViewer{root: root}
}

// View displays session failures in an interactive TUI
func (fv *FailuresViewer) View(session *domain.RunSession, recordings *domain.ArtifactMap) error {
	entries := BuildFailureEntries(session, fv.root, recordings)
	if len(entries) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	// Failed tests (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i, entry := range entries {
		list.AddItem(listItemText(i, entry), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Identity header above the details
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// List on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	stillFailing := 0
	for _, entry := range entries {
		if entry.StillFailing {
			stillFailing++
		}
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" Session %s: %d failed, %d still failing | ↑↓ navigate, → details, ← back, Ctrl+C exit ",
			session.RunID, len(entries), stillFailing))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(entries) {
			statsView.SetText(formatEntryHeader(entries[index]))
			detailsView.SetText(FormatEntryDetails(entries[index]))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func listItemText(index int, entry FailureEntry) string {
	name := entry.Identity.CaseName()
	if name == "" {
		name = entry.Identity.String()
	}
	if entry.StillFailing {
		return fmt.Sprintf("[yellow]%d.[red] %s[white]", index+1, tview.Escape(name))
	}
	return fmt.Sprintf("[yellow]%d.[green] %s[white]", index+1, tview.Escape(name))
}

func formatEntryHeader(entry FailureEntry) string {
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n",
		tview.Escape(entry.Identity.ModulePath()), tview.Escape(entry.Identity.CaseName()))
}

// FormatEntryDetails formats a failure for display using tview color tags
func FormatEntryDetails(entry FailureEntry) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ Test: %s[white]\n\n", tview.Escape(entry.Identity.String()))
	if entry.Outcome.ClassName != "" {
		fmt.Fprintf(w, "[cyan]Class:\t%s[white]\n", tview.Escape(entry.Outcome.ClassName))
	}
	fmt.Fprintf(w, "[cyan]Duration:\t%.2fs[white]\n\n", entry.Outcome.Seconds)

	if entry.Outcome.Message != "" {
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n\n", tview.Escape(entry.Outcome.Message))
	}

	if len(entry.Attempts) > 0 {
		fmt.Fprintf(w, "[yellow]Retries:[white]\n")
		for _, a := range entry.Attempts {
			fmt.Fprintf(w, "  attempt %d\t%s\n", a.Attempt, statusTag(a.Status))
		}
		fmt.Fprintf(w, "\n")
	}

	if entry.StillFailing {
		fmt.Fprintf(w, "[red]Still failing; run resume to retry[white]\n\n")
	}

	if len(entry.Recordings) > 0 {
		fmt.Fprintf(w, "[yellow]Recordings:[white]\n")
		for _, r := range entry.Recordings {
			fmt.Fprintf(w, "  %s\n", tview.Escape(r))
		}
	}

	w.Flush()
	return builder.String()
}

func statusTag(s domain.Status) string {
	switch s {
	case domain.StatusPassed:
		return "[green]passed[white]"
	case domain.StatusFailed:
		return "[red]failed[white]"
	default:
		return "[yellow]" + string(s) + "[white]"
	}
}

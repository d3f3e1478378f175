// Package tui draws session frames to a terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/yaron8/netwatch/dashboard/session"
	"github.com/yaron8/netwatch/dashboard/view"
)

const (
	pageHealth     = "health"
	pageSecurity   = "security"
	pageValidators = "validators"
)

var pageOrder = []string{pageHealth, pageSecurity, pageValidators}

const chartWidth = 60

// TUI is a three-page terminal dashboard. Render may be called from any goroutine.
type TUI struct {
	app        *tview.Application
	pages      *tview.Pages
	header     *tview.TextView
	health     *tview.TextView
	security   *tview.TextView
	validators *tview.Table
	pageIndex  int
	closed     atomic.Bool
}

func New() *TUI {
	t := &TUI{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		header:     tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		health:     tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		security:   tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		validators: tview.NewTable().SetFixed(1, 0).SetSelectable(false, false),
	}
	t.health.SetBorder(true).SetTitle(" Network Health ")
	t.security.SetBorder(true).SetTitle(" Decentralization & Security ")
	t.validators.SetBorder(true).SetTitle(" Validator Operations ")
	t.setValidatorHeader()

	t.pages.AddPage(pageHealth, t.health, true, true)
	t.pages.AddPage(pageSecurity, t.security, true, false)
	t.pages.AddPage(pageValidators, t.validators, true, false)

	footer := tview.NewTextView().SetDynamicColors(true).
		SetText("[gray]1[-] health  [gray]2[-] security  [gray]3[-] validators  [gray]Tab[-] next  [gray]q[-] quit")

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.header, 1, 0, false).
		AddItem(t.pages, 0, 1, true).
		AddItem(footer, 1, 0, false)
	t.app.SetRoot(root, true).EnableMouse(false)
	t.installKeybindings()

	t.header.SetText(headerText(session.Frame{}))
	t.health.SetText("Waiting for data...")
	return t
}

func (t *TUI) installKeybindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			t.showPage((t.pageIndex + 1) % len(pageOrder))
			return nil
		case tcell.KeyBacktab:
			t.showPage((t.pageIndex + len(pageOrder) - 1) % len(pageOrder))
			return nil
		case tcell.KeyCtrlC:
			t.Stop()
			return nil
		}

		switch event.Rune() {
		case '1', '2', '3':
			t.showPage(int(event.Rune() - '1'))
			return nil
		case 'q', 'Q':
			t.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) showPage(i int) {
	t.pageIndex = i
	t.pages.SwitchToPage(pageOrder[i])
}

// Run blocks until the user quits or ctx is done.
func (t *TUI) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, t.Stop)
	defer stop()
	return t.app.Run()
}

func (t *TUI) Stop() {
	if t.closed.CompareAndSwap(false, true) {
		t.app.Stop()
	}
}

func (t *TUI) Render(frame session.Frame) {
	if t.closed.Load() {
		return
	}
	header := headerText(frame)
	if !frame.HasData {
		t.app.QueueUpdateDraw(func() {
			t.header.SetText(header)
		})
		return
	}

	health := healthText(frame)
	security := securityText(frame)
	t.app.QueueUpdateDraw(func() {
		t.header.SetText(header)
		t.health.SetText(health)
		t.security.SetText(security)
		t.fillValidators(frame.Rows)
	})
}

func (t *TUI) setValidatorHeader() {
	for col, title := range []string{"Status", "Validator", "Uptime (7d)", "Missed (24h)", "Stake"} {
		t.validators.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}
}

func (t *TUI) fillValidators(rows []view.ValidatorRow) {
	t.validators.Clear()
	t.setValidatorHeader()
	for i, row := range rows {
		missed := tview.NewTableCell(row.Missed).SetAlign(tview.AlignRight)
		if row.Highlight {
			missed.SetTextColor(tcell.ColorRed)
		}
		t.validators.SetCell(i+1, 0, tview.NewTableCell(row.Status.Label).SetTextColor(classColor(row.Status.Class)))
		t.validators.SetCell(i+1, 1, tview.NewTableCell(row.ID))
		t.validators.SetCell(i+1, 2, tview.NewTableCell(row.Uptime).SetAlign(tview.AlignRight))
		t.validators.SetCell(i+1, 3, missed)
		t.validators.SetCell(i+1, 4, tview.NewTableCell(row.Stake).SetAlign(tview.AlignRight))
	}
}

func classColor(class string) tcell.Color {
	switch class {
	case view.ClassOnline:
		return tcell.ColorGreen
	case view.ClassOffline:
		return tcell.ColorRed
	default:
		return tcell.ColorYellow
	}
}

func headerText(frame session.Frame) string {
	dot, status := "[red]●[-]", "Disconnected"
	if frame.Connected {
		dot, status = "[green]●[-]", "Connected"
	}
	updated := "never"
	if frame.LastUpdated != "" {
		updated = frame.LastUpdated
	}
	return fmt.Sprintf(" %s %s   Last updated: %s", dot, status, updated)
}

func healthText(frame session.Frame) string {
	k := frame.KPIs
	var sb strings.Builder
	fmt.Fprintf(&sb, " Latest Consensus Round  [white::b]%s[-::-]\n", k.LatestConsensusRound)
	fmt.Fprintf(&sb, " Avg Round Time          %s\n", k.AvgRoundTime)
	fmt.Fprintf(&sb, " Transaction Finality    %s\n", k.TransactionFinality)
	fmt.Fprintf(&sb, " Active Participants     %s\n", k.ActiveParticipants)
	fmt.Fprintf(&sb, " Network Nodes           %s\n", k.TotalNetworkNodes)
	fmt.Fprintf(&sb, " Master Nodes            %s\n\n", k.TotalMasterNodes)
	writeChart(&sb, "Realtime TPS", frame.Series.Labels, frame.Series.TPS, 0, 0, "%.1f")
	return sb.String()
}

func securityText(frame session.Frame) string {
	k := frame.KPIs
	var sb strings.Builder
	fmt.Fprintf(&sb, " Nakamoto Coefficient (nodes)  %s\n", k.NakamotoConsensus)
	fmt.Fprintf(&sb, " Nakamoto Coefficient (stake)  %s\n", k.NakamotoStake)
	fmt.Fprintf(&sb, " Safety Violations (24h)       %s\n", k.SafetyViolations24h)
	fmt.Fprintf(&sb, " Liveness Violations (24h)     %s\n", k.LivenessViolations24h)
	fmt.Fprintf(&sb, " Blame Messages (24h)          %s\n\n", k.TotalBlameMessages24h)
	writeChart(&sb, "Gini Coefficient", frame.Series.Labels, frame.Series.Gini, 0, 1, "%.4f")
	return sb.String()
}

func writeChart(sb *strings.Builder, title string, labels []string, values []float64, lo, hi float64, format string) {
	fmt.Fprintf(sb, " [yellow]%s[-]\n", title)
	if len(values) == 0 {
		sb.WriteString(" no samples\n")
		return
	}
	fmt.Fprintf(sb, " [aqua]%s[-]\n", Sparkline(values, lo, hi, chartWidth))
	first := max(0, len(labels)-chartWidth)
	fmt.Fprintf(sb, " %s .. %s  last "+format+"\n", labels[first], labels[len(labels)-1], values[len(values)-1])
}

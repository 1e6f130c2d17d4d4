// report-watcher-tui renders the daemon's recent execution reports in the
// terminal, polling the ops API.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"

	"github.com/betbot/govenue/pkg/report"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	buyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	sellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	statusStyles = map[report.OrderStatus]lipgloss.Style{
		report.OrderStatusAccepted: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		report.OrderStatusFilled:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		report.OrderStatusCanceled: dimStyle,
		report.OrderStatusRejected: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

type ordersPayload struct {
	Reports []report.OrderStatusReport `json:"reports"`
}

type fillsPayload struct {
	Fills []report.FillReport `json:"fills"`
}

type statsPayload struct {
	ByStatus map[string]int64 `json:"by_status"`
}

type refreshMsg struct {
	orders []report.OrderStatusReport
	fills  []report.FillReport
	stats  map[string]int64
	err    error
	at     time.Time
}

type tickMsg time.Time

type model struct {
	client   *resty.Client
	opsURL   string
	limit    int
	interval time.Duration

	orders  []report.OrderStatusReport
	fills   []report.FillReport
	stats   map[string]int64
	err     error
	fetched bool
	at      time.Time
}

func initialModel(opsURL string, limit int, interval time.Duration) model {
	return model{
		client:   resty.New().SetBaseURL(opsURL).SetTimeout(5 * time.Second),
		opsURL:   opsURL,
		limit:    limit,
		interval: interval,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.tickCmd())
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) refreshCmd() tea.Cmd {
	client, limit := m.client, m.limit
	return func() tea.Msg {
		msg := refreshMsg{at: time.Now()}

		var orders ordersPayload
		resp, err := client.R().
			SetQueryParam("limit", fmt.Sprintf("%d", limit)).
			SetResult(&orders).
			Get("/api/reports/orders")
		if err != nil {
			msg.err = err
			return msg
		}
		if resp.IsError() {
			msg.err = fmt.Errorf("ops api: %s: %s", resp.Status(), resp.String())
			return msg
		}
		msg.orders = orders.Reports

		var fills fillsPayload
		if _, err := client.R().
			SetQueryParam("limit", fmt.Sprintf("%d", limit)).
			SetResult(&fills).
			Get("/api/reports/fills"); err != nil {
			msg.err = err
			return msg
		}
		msg.fills = fills.Fills

		var stats statsPayload
		if _, err := client.R().
			SetResult(&stats).
			Get("/api/reports/stats"); err != nil {
			msg.err = err
			return msg
		}
		msg.stats = stats.ByStatus
		return msg
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), m.tickCmd())

	case refreshMsg:
		m.err = msg.err
		m.at = msg.at
		if msg.err == nil {
			m.orders = msg.orders
			m.fills = msg.fills
			m.stats = msg.stats
			m.fetched = true
		}
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("govenue report watcher"))
	b.WriteString(dimStyle.Render("  " + m.opsURL))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("ops api unreachable: %v", m.err)))
		b.WriteString("\n\n")
	}
	if !m.fetched {
		b.WriteString("waiting for first poll...\n\n")
		b.WriteString(dimStyle.Render("q quit"))
		return b.String()
	}

	b.WriteString(m.statsLine())
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("Order status reports (last %d)", m.limit)))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(m.ordersTable()))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render(fmt.Sprintf("Fill reports (last %d)", m.limit)))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(m.fillsTable()))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render(fmt.Sprintf("updated %s · q quit · r refresh",
		m.at.Format("15:04:05"))))
	return b.String()
}

func (m model) statsLine() string {
	if len(m.stats) == 0 {
		return dimStyle.Render("no journaled reports yet")
	}
	keys := make([]string, 0, len(m.stats))
	for k := range m.stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, m.stats[k]))
	}
	return titleStyle.Render("Totals  ") + strings.Join(parts, dimStyle.Render("  |  "))
}

func (m model) ordersTable() string {
	if len(m.orders) == 0 {
		return dimStyle.Render("none")
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-8s  %-12s  %-4s  %-9s  %8s  %10s  %10s",
		"TIME", "ORDER", "SIDE", "STATUS", "PRICE", "QTY", "FILLED")))
	for _, r := range m.orders {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-8s  %-12s  %s  %s  %8s  %10s  %10s",
			r.TsLast.Local().Format("15:04:05"),
			shortID(r.VenueOrderID),
			sideStyleFor(r.Side).Render(fmt.Sprintf("%-4s", r.Side)),
			statusStyleFor(r.Status).Render(fmt.Sprintf("%-9s", r.Status)),
			r.Price.String(),
			r.Quantity.String(),
			r.FilledQty.String()))
	}
	return b.String()
}

func (m model) fillsTable() string {
	if len(m.fills) == 0 {
		return dimStyle.Render("none")
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-8s  %-12s  %-4s  %-5s  %8s  %10s",
		"TIME", "ORDER", "SIDE", "LIQ", "PRICE", "QTY")))
	for _, f := range m.fills {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-8s  %-12s  %s  %-5s  %8s  %10s",
			f.TsEvent.Local().Format("15:04:05"),
			shortID(f.VenueOrderID),
			sideStyleFor(f.Side).Render(fmt.Sprintf("%-4s", f.Side)),
			f.LiquiditySide,
			f.LastPx.String(),
			f.LastQty.String()))
	}
	return b.String()
}

func sideStyleFor(s report.OrderSide) lipgloss.Style {
	if s == report.OrderSideBuy {
		return buyStyle
	}
	return sellStyle
}

func statusStyleFor(s report.OrderStatus) lipgloss.Style {
	if st, ok := statusStyles[s]; ok {
		return st
	}
	return dimStyle
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:10] + ".."
}

func main() {
	opsURL := flag.String("ops", "http://localhost:8087", "ops API base URL")
	limit := flag.Int("limit", 15, "rows per table")
	interval := flag.Duration("interval", 2*time.Second, "poll interval")
	flag.Parse()

	p := tea.NewProgram(initialModel(*opsURL, *limit, *interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("run tui: %v", err)
	}
}

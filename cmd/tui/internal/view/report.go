package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
	"github.com/MrJamesThe3rd/atacadao/internal/report"
)

// ReportModel is the manager dashboard: one month in detail plus the history.
type ReportModel struct {
	CommonModel
	orderService *order.Service
	loc          *time.Location

	period  report.Period
	monthly report.Summary
	history []report.Summary

	loading bool
	err     error
}

func NewReportModel(caller identity.Caller, orderSvc *order.Service, loc *time.Location) ReportModel {
	return ReportModel{
		CommonModel:  CommonModel{Caller: caller},
		orderService: orderSvc,
		loc:          loc,
		period:       report.PeriodOf(time.Now(), loc),
		loading:      true,
	}
}

func (m ReportModel) Title() string     { return "Relatórios" }
func (m ReportModel) ShortHelp() string { return "Esc: voltar | ←/→: mês | r: atualizar" }

func (m ReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadReportMsg:
		m.loading = false
		m.err = msg.err
		m.history = msg.history
		m.monthly = report.Monthly(msg.orders, m.period, m.loc)

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "left", "h":
			m.period = shiftPeriod(m.period, -1, m.loc)
			m.loading = true

			return m, m.loadCmd()
		case "right", "l":
			m.period = shiftPeriod(m.period, 1, m.loc)
			m.loading = true

			return m, m.loadCmd()
		}
	}

	return m, nil
}

func shiftPeriod(p report.Period, months int, loc *time.Location) report.Period {
	start, _ := p.Bounds(loc)
	return report.PeriodOf(start.AddDate(0, months, 0), loc)
}

func (m ReportModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando relatório...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Erro: %v", m.err)))
	}

	s := m.monthly

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", activeStyle(fmt.Sprintf("%02d/%d", int(m.period.Month), m.period.Year)))
	fmt.Fprintf(&b, "Faturamento:   %s\n", FormatMoney(s.Revenue))
	fmt.Fprintf(&b, "Pedidos:       %d\n", s.OrderCount)
	fmt.Fprintf(&b, "Ticket médio:  %s\n", FormatMoney(s.AverageTicket))

	if s.TopSeller != nil {
		fmt.Fprintf(&b, "Top vendedor:  %s (%s)\n", s.TopSeller.Name, FormatMoney(s.TopSeller.Revenue))
	}

	if s.TopClient != nil {
		fmt.Fprintf(&b, "Top cliente:   %s (%s)\n", s.TopClient.Name, FormatMoney(s.TopClient.Revenue))
	}

	b.WriteString("\nPor status:\n")

	for _, st := range order.Statuses {
		fmt.Fprintf(&b, "  %-20s %d\n", st.Label(), s.ByStatus[st])
	}

	current := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(50).
		Render(b.String())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, current, historyPanel(m.history)),
	)
}

func historyPanel(history []report.Summary) string {
	var b strings.Builder

	b.WriteString("Histórico\n\n")

	for _, s := range history {
		fmt.Fprintf(&b, "%02d/%d  %4d  %s\n", int(s.Period.Month), s.Period.Year, s.OrderCount, FormatMoney(s.Revenue))
	}

	if len(history) == 0 {
		b.WriteString("Nenhum pedido ainda")
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(b.String())
}

// Messages

type loadReportMsg struct {
	orders  []*order.Order
	history []report.Summary
	err     error
}

// loadCmd reads every order once; the month is filtered by report.Monthly.
func (m ReportModel) loadCmd() tea.Cmd {
	caller, loc := m.Caller, m.loc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		orders, err := m.orderService.List(ctx, caller, order.ListFilter{})
		if err != nil {
			return loadReportMsg{err: err}
		}

		history := report.History(orders, loc)

		return loadReportMsg{orders: orders, history: history}
	}
}

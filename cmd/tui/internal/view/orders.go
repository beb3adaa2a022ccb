package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

type ordersState int

const (
	ordersStateBrowse ordersState = iota
	ordersStateCancel
)

// OrdersModel is the order desk used by sellers and managers.
type OrdersModel struct {
	CommonModel
	orderService *order.Service

	state  ordersState
	table  table.Model
	orders []*order.Order
	form   *huh.Form

	statusFilterIdx int
	filter          order.ListFilter

	loading bool
	err     error
	status  string

	formReason string
}

// statusFilters are cycled with "s"; the empty status means all.
var statusFilters = append([]order.Status{""}, order.Statuses...)

func NewOrdersModel(caller identity.Caller, orderSvc *order.Service) OrdersModel {
	columns := []table.Column{
		{Title: "Nº", Width: 10},
		{Title: "Data", Width: 12},
		{Title: "Cliente", Width: 24},
		{Title: "Vendedor", Width: 16},
		{Title: "Status", Width: 20},
		{Title: "Total", Width: 14},
		{Title: "SLA", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return OrdersModel{
		CommonModel:  CommonModel{Caller: caller},
		orderService: orderSvc,
		table:        t,
		loading:      true,
	}
}

func (m OrdersModel) Title() string { return "Pedidos" }
func (m OrdersModel) ShortHelp() string {
	if m.state == ordersStateCancel {
		return "Enter: confirmar | Esc: voltar"
	}

	return "Esc: voltar | p: separar | i: faturar | e: enviar | f: finalizar | c: cancelar | s: status | r: atualizar"
}

func (m OrdersModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m OrdersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOrdersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.orders = msg.orders
		m.refreshTable()

		return m, nil

	case orderActionMsg:
		m.status = msg.describe()
		m.state = ordersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case ordersStateBrowse:
		return m.updateBrowse(msg)
	case ordersStateCancel:
		return m.updateCancel(msg)
	}

	return m, nil
}

func (m OrdersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.filter.Status = nil

			if st := statusFilters[m.statusFilterIdx]; st != "" {
				m.filter.Status = &st
			}

			return m, m.loadCmd()
		case "p":
			return m, m.actionCmd("separação iniciada", m.orderService.StartProcessing)
		case "i":
			return m, m.actionCmd("pedido faturado", m.orderService.MarkInvoiced)
		case "e":
			return m, m.actionCmd("pedido enviado", m.orderService.MarkSent)
		case "f":
			return m, m.actionCmd("pedido finalizado", m.orderService.Finish)
		case "c":
			return m.enterCancel()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m OrdersModel) selected() *order.Order {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.orders) {
		return nil
	}

	return m.orders[idx]
}

func (m OrdersModel) enterCancel() (tea.Model, tea.Cmd) {
	if m.selected() == nil {
		return m, nil
	}

	m.formReason = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("reason").
				Title("Motivo do cancelamento").
				Value(&m.formReason).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("informe o motivo")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ordersStateCancel
	m.table.Blur()

	return m, m.form.Init()
}

func (m OrdersModel) updateCancel(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ordersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	reason := m.formReason
	action := m.actionCmd("pedido cancelado", func(ctx context.Context, caller identity.Caller, id uuid.UUID) (*order.Order, error) {
		return m.orderService.Cancel(ctx, caller, id, reason)
	})

	m.state = ordersStateBrowse
	m.form = nil
	m.table.Focus()

	return m, action
}

func (m OrdersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando pedidos...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Erro: %v", m.err)))
	}

	label := "Todos"
	if st := statusFilters[m.statusFilterIdx]; st != "" {
		label = st.Label()
	}

	header := fmt.Sprintf("Filtro: [s] Status: %s | %d pedidos", activeStyle(label), len(m.orders))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if o := m.selected(); o != nil && m.state == ordersStateBrowse {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, detailPanel(o))
	}

	if m.state == ordersStateCancel && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Cancelar pedido %s\n\n%s", m.selected().Number(), m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func detailPanel(o *order.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pedido %s\n\n", o.Number())

	for _, it := range o.Items {
		fmt.Fprintf(&b, "%3dx %s\n     %s\n", it.Quantity, it.Description, FormatMoney(it.Subtotal))
	}

	fmt.Fprintf(&b, "\nTotal: %s", FormatMoney(o.Total))

	if o.CancelReason != "" {
		fmt.Fprintf(&b, "\nMotivo: %s", o.CancelReason)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(40).
		Render(b.String())
}

func (m *OrdersModel) refreshTable() {
	now := time.Now()

	rows := make([]table.Row, 0, len(m.orders))
	for _, o := range m.orders {
		seller := o.SellerName
		if seller == "" {
			seller = "-"
		}

		rows = append(rows, table.Row{
			o.Number(),
			FormatDate(o.CreatedAt),
			o.ClientName,
			seller,
			o.Status.Label(),
			FormatMoney(o.Total),
			FormatSLA(o, now),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadOrdersMsg struct {
	orders []*order.Order
	err    error
}

func (m OrdersModel) loadCmd() tea.Cmd {
	caller, filter := m.Caller, m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		orders, err := m.orderService.List(ctx, caller, filter)

		return loadOrdersMsg{orders: orders, err: err}
	}
}

type orderActionMsg struct {
	done   string
	number string
	err    error
}

func (msg orderActionMsg) describe() string {
	switch {
	case msg.err == nil:
		return fmt.Sprintf("Pedido %s: %s", msg.number, msg.done)
	case errors.Is(msg.err, apperr.ErrInvalidTransition):
		return fmt.Sprintf("Pedido %s: ação não permitida no status atual", msg.number)
	case errors.Is(msg.err, apperr.ErrConflict):
		return fmt.Sprintf("Pedido %s foi alterado por outra pessoa, atualize a lista", msg.number)
	case errors.Is(msg.err, apperr.ErrForbidden):
		return fmt.Sprintf("Pedido %s: sem permissão", msg.number)
	}

	return fmt.Sprintf("Pedido %s: erro: %v", msg.number, msg.err)
}

type orderAction func(ctx context.Context, caller identity.Caller, id uuid.UUID) (*order.Order, error)

func (m OrdersModel) actionCmd(done string, action orderAction) tea.Cmd {
	o := m.selected()
	if o == nil {
		return nil
	}

	caller, id, number := m.Caller, o.ID, o.Number()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := action(ctx, caller, id)

		return orderActionMsg{done: done, number: number, err: err}
	}
}

package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
)

type financeState int

const (
	financeStateList financeState = iota
	financeStateCreate
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	status := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.tx.Status))

	amount := FormatMoney(i.tx.Amount)
	if i.tx.Type == transaction.TypeExpense {
		amount = "-" + amount
	}

	return fmt.Sprintf("%s  %14s  %s  %s", FormatDate(i.tx.DueDate), amount, status, i.tx.Description)
}

func (i txItem) Description() string {
	parts := []string{}
	if i.tx.Category != "" {
		parts = append(parts, i.tx.Category)
	}

	if i.tx.Observation != "" {
		parts = append(parts, i.tx.Observation)
	}

	return strings.Join(parts, " · ")
}

func (i txItem) FilterValue() string {
	return i.tx.Description
}

// FinanceModel is the personal finance tracker of the signed-in user.
type FinanceModel struct {
	CommonModel
	txService *transaction.Service

	state   financeState
	list    list.Model
	form    *huh.Form
	month   time.Time
	summary *transaction.Summary

	loading bool
	status  string

	formDesc      string
	formAmount    string
	formType      transaction.Type
	formDue       string
	formCategory  string
	formFrequency transaction.Frequency
	formCount     string
}

func NewFinanceModel(caller identity.Caller, txSvc *transaction.Service) FinanceModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Lançamentos"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	now := time.Now()

	return FinanceModel{
		CommonModel: CommonModel{Caller: caller},
		txService:   txSvc,
		list:        l,
		month:       time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		loading:     true,
	}
}

func (m FinanceModel) Title() string { return "Finanças" }

func (m FinanceModel) ShortHelp() string {
	if m.state == financeStateCreate {
		return "Esc: cancelar | Enter/Tab: navegar"
	}

	return "Esc: voltar | ←/→: mês | n: novo | p: pago/pendente | x: excluir | /: filtrar"
}

func (m FinanceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m FinanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadFinanceMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
			return m, nil
		}

		m.summary = msg.summary
		items := make([]list.Item, len(msg.txs))
		for i, tx := range msg.txs {
			items[i] = txItem{tx: tx}
		}

		return m, m.list.SetItems(items)

	case financeSavedMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
		}

		m.state = financeStateList
		m.form = nil

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-12)
		return m, nil
	}

	if m.state == financeStateCreate {
		return m.updateCreate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.month = m.month.AddDate(0, -1, 0)
			return m, m.loadCmd()
		case "right", "l":
			m.month = m.month.AddDate(0, 1, 0)
			return m, m.loadCmd()
		case "n":
			return m.enterCreate()
		case "p":
			return m, m.toggleStatusCmd()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m FinanceModel) enterCreate() (tea.Model, tea.Cmd) {
	m.formDesc, m.formAmount, m.formCategory, m.formCount = "", "", "", ""
	m.formType = transaction.TypeExpense
	m.formFrequency = transaction.FrequencyMonthly
	m.formDue = FormatDate(time.Now())

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Descrição").Value(&m.formDesc).Validate(required("informe a descrição")),
			huh.NewInput().Title("Valor").Placeholder("1.234,56").Value(&m.formAmount).Validate(func(s string) error {
				_, err := catalog.ParseBRL(s)
				return err
			}),
			huh.NewSelect[transaction.Type]().Title("Tipo").
				Options(huh.NewOption("Despesa", transaction.TypeExpense), huh.NewOption("Receita", transaction.TypeIncome)).
				Value(&m.formType),
			huh.NewInput().Title("Vencimento").Placeholder("DD/MM/AAAA").Value(&m.formDue).Validate(func(s string) error {
				_, err := time.Parse("02/01/2006", s)
				return err
			}),
			huh.NewInput().Title("Categoria").Placeholder("vazio para sugerir").Value(&m.formCategory),
		),
		huh.NewGroup(
			huh.NewSelect[transaction.Frequency]().Title("Repetição").
				Options(
					huh.NewOption("Mensal", transaction.FrequencyMonthly),
					huh.NewOption("Semanal", transaction.FrequencyWeekly),
					huh.NewOption("Anual", transaction.FrequencyYearly),
				).
				Value(&m.formFrequency),
			huh.NewInput().Title("Parcelas").Placeholder("vazio para lançamento único").Value(&m.formCount).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}

					n, err := strconv.Atoi(s)
					if err != nil || n < 2 {
						return fmt.Errorf("use um número a partir de 2")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = financeStateCreate

	return m, m.form.Init()
}

func required(message string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s", message)
		}

		return nil
	}
}

func (m FinanceModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = financeStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	create := m.createCmd()
	m.state = financeStateList
	m.form = nil

	return m, create
}

func (m FinanceModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando lançamentos...")
	}

	header := activeStyle(fmt.Sprintf("%02d/%d", int(m.month.Month()), m.month.Year()))

	if s := m.summary; s != nil {
		header += fmt.Sprintf("\nReceitas %s  Despesas %s  Saldo %s\nPendente: a receber %s, a pagar %s  |  Próximo mês previsto: +%s / -%s",
			FormatMoney(s.Income), FormatMoney(s.Expense), FormatMoney(s.Balance),
			FormatMoney(s.PendingIncome), FormatMoney(s.PendingExpense),
			FormatMoney(s.ProjectedIncome), FormatMoney(s.ProjectedExpense))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		m.list.View(),
	)

	if m.state == financeStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render("Novo lançamento\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m FinanceModel) selected() *transaction.Transaction {
	item, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return nil
	}

	return item.tx
}

// Messages

type loadFinanceMsg struct {
	txs     []*transaction.Transaction
	summary *transaction.Summary
	err     error
}

func (m FinanceModel) loadCmd() tea.Cmd {
	userID, month := m.Caller.ID, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		from, to := month, month.AddDate(0, 1, -1)

		txs, err := m.txService.List(ctx, userID, transaction.ListFilter{From: &from, To: &to})
		if err != nil {
			return loadFinanceMsg{err: err}
		}

		summary, err := m.txService.Summary(ctx, userID, month.Year(), month.Month())
		if err != nil {
			return loadFinanceMsg{err: err}
		}

		return loadFinanceMsg{txs: txs, summary: summary}
	}
}

type financeSavedMsg struct {
	text string
	err  error
}

func (m FinanceModel) createCmd() tea.Cmd {
	amount, _ := catalog.ParseBRL(m.formAmount)
	due, _ := time.Parse("02/01/2006", m.formDue)

	params := transaction.CreateParams{
		UserID:      m.Caller.ID,
		Description: m.formDesc,
		Amount:      amount,
		Type:        m.formType,
		Category:    m.formCategory,
		DueDate:     due,
		Status:      transaction.StatusPending,
	}

	if n, err := strconv.Atoi(m.formCount); err == nil {
		params.IsRecurring = true
		params.Recurrence = &transaction.Recurrence{Frequency: m.formFrequency, Count: &n}
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.Create(ctx, params)
		if err != nil {
			return financeSavedMsg{err: err}
		}

		return financeSavedMsg{text: fmt.Sprintf("%d lançamento(s) criado(s)", len(txs))}
	}
}

func (m FinanceModel) toggleStatusCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	next := transaction.StatusPaid
	if tx.Status == transaction.StatusPaid {
		next = transaction.StatusPending
	}

	userID, id := m.Caller.ID, tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.txService.SetStatus(ctx, userID, id, next)

		return financeSavedMsg{text: "status atualizado", err: err}
	}
}

func (m FinanceModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	userID, id := m.Caller.ID, tx.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		err := m.txService.Delete(ctx, userID, id)

		return financeSavedMsg{text: "lançamento excluído", err: err}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	desc := i.Description()
	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(desc))
}

package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
)

type NotificationsModel struct {
	CommonModel
	notificationService *notification.Service

	items   []*notification.Notification
	loading bool
	status  string
}

func NewNotificationsModel(caller identity.Caller, svc *notification.Service) NotificationsModel {
	return NotificationsModel{
		CommonModel:         CommonModel{Caller: caller},
		notificationService: svc,
		loading:             true,
	}
}

func (m NotificationsModel) Title() string     { return "Notificações" }
func (m NotificationsModel) ShortHelp() string { return "Esc: voltar | a: marcar todas como lidas | d: limpar" }

func (m NotificationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m NotificationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadNotificationsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
			return m, nil
		}

		m.items = msg.items

		return m, nil

	case notificationsChangedMsg:
		m.status = msg.text
		if msg.err != nil {
			m.status = fmt.Sprintf("Erro: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "a":
			return m, m.markAllReadCmd()
		case "d":
			return m, m.deleteAllCmd()
		}
	}

	return m, nil
}

func (m NotificationsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Carregando notificações...")
	}

	var b strings.Builder

	for _, n := range m.items {
		title := n.Title
		if !n.Read {
			title = activeStyle("● " + title)
		}

		fmt.Fprintf(&b, "%s  %s\n  %s\n\n", FormatDate(n.CreatedAt), title, lipgloss.NewStyle().Faint(true).Render(n.Message))
	}

	if len(m.items) == 0 {
		b.WriteString("Nenhuma notificação")
	}

	content := b.String()
	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadNotificationsMsg struct {
	items []*notification.Notification
	err   error
}

func (m NotificationsModel) loadCmd() tea.Cmd {
	userID := m.Caller.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.notificationService.List(ctx, userID, false)

		return loadNotificationsMsg{items: items, err: err}
	}
}

type notificationsChangedMsg struct {
	text string
	err  error
}

func (m NotificationsModel) markAllReadCmd() tea.Cmd {
	userID := m.Caller.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.notificationService.MarkAllRead(ctx, userID)

		return notificationsChangedMsg{text: fmt.Sprintf("%d marcada(s) como lida(s)", n), err: err}
	}
}

func (m NotificationsModel) deleteAllCmd() tea.Cmd {
	userID := m.Caller.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		n, err := m.notificationService.DeleteAll(ctx, userID)

		return notificationsChangedMsg{text: fmt.Sprintf("%d removida(s)", n), err: err}
	}
}

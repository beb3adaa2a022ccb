package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/atacadao/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	authStore "github.com/MrJamesThe3rd/atacadao/internal/auth/store"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/atacadao/internal/catalog/store"
	"github.com/MrJamesThe3rd/atacadao/internal/config"
	"github.com/MrJamesThe3rd/atacadao/internal/database"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/logging"
	"github.com/MrJamesThe3rd/atacadao/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/atacadao/internal/matching/store"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
	notificationStore "github.com/MrJamesThe3rd/atacadao/internal/notification/store"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
	orderStore "github.com/MrJamesThe3rd/atacadao/internal/order/store"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
	txStore "github.com/MrJamesThe3rd/atacadao/internal/transaction/store"
)

type model struct {
	authService         *auth.Service
	orderService        *order.Service
	notificationService *notification.Service
	txService           *transaction.Service
	loc                 *time.Location

	caller      identity.Caller
	currentView View
	active      view.View
}

type View int

const (
	ViewLogin View = iota
	ViewMenu
	ViewOrders
	ViewReport
	ViewFinance
	ViewNotifications
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file when LOG_FILE is set.
	var out io.Writer = io.Discard
	if path := os.Getenv("LOG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			out = f
		}
	}

	logger, err := logging.New(out, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect to database:", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.SessionTTL, cfg.Auth.ActionTTL)
	authSvc := auth.NewService(authStore.New(db), tokens, auth.LogMailer{}, auth.WithFreshWindow(cfg.Auth.FreshWindow))
	notificationSvc := notification.NewService(notificationStore.New(db))
	orderSvc := order.NewService(orderStore.New(db), notificationSvc, authSvc, catalog.NewService(catalogStore.New(db)),
		order.WithFreshWindow(cfg.Auth.FreshWindow))
	txSvc := transaction.NewService(txStore.New(db), matching.NewService(matchingStore.New(db)),
		transaction.WithMaxBatch(cfg.Batch.MaxSize))

	return model{
		authService:         authSvc,
		orderService:        orderSvc,
		notificationService: notificationSvc,
		txService:           txSvc,
		loc:                 loc,
		currentView:         ViewLogin,
		active:              view.NewLoginModel(authSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.active.Init()
}

// menu lists the screens the caller's role may open, keyed by shortcut.
func (m model) menu() []View {
	switch m.caller.Role {
	case identity.RoleManager:
		return []View{ViewOrders, ViewReport, ViewFinance, ViewNotifications}
	case identity.RoleSeller:
		return []View{ViewOrders, ViewFinance, ViewNotifications}
	}

	return []View{ViewFinance, ViewNotifications}
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	switch v {
	case ViewOrders:
		m.active = view.NewOrdersModel(m.caller, m.orderService)
	case ViewReport:
		m.active = view.NewReportModel(m.caller, m.orderService, m.loc)
	case ViewFinance:
		m.active = view.NewFinanceModel(m.caller, m.txService)
	case ViewNotifications:
		m.active = view.NewNotificationsModel(m.caller, m.notificationService)
	default:
		return m, nil
	}

	m.currentView = v

	return m, m.active.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch key := msg.String(); key {
			case "q":
				return m, tea.Quit
			default:
				items := m.menu()
				if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(items) {
					return m.open(items[key[0]-'1'])
				}
			}

			return m, nil
		}
	case view.LoggedInMsg:
		m.caller = msg.Caller
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	if m.currentView == ViewMenu {
		return m, nil
	}

	newModel, cmd := m.active.Update(msg)
	if v, ok := newModel.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

var titles = map[View]string{
	ViewOrders:        "Pedidos",
	ViewReport:        "Relatórios",
	ViewFinance:       "Finanças",
	ViewNotifications: "Notificações",
}

func (m model) View() string {
	if m.currentView != ViewMenu {
		help := lipgloss.NewStyle().Faint(true).Render(m.active.ShortHelp())
		return m.active.View() + "\n" + help
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Atacadão\nOlá, %s\n\n", m.caller.Name)

	for i, v := range m.menu() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, titles[v])
	}

	b.WriteString("\nq. Sair")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

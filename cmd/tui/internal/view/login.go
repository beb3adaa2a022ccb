package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

// LoggedInMsg carries the caller every other screen acts as.
type LoggedInMsg struct {
	Caller identity.Caller
}

type LoginModel struct {
	authService *auth.Service

	form       *huh.Form
	email      string
	password   string
	submitting bool
	err        error
}

func NewLoginModel(authSvc *auth.Service) LoginModel {
	m := LoginModel{authService: authSvc}
	m.form = m.buildForm()

	return m
}

func (m *LoginModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("E-mail").
				Value(&m.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("informe o e-mail")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Senha").
				EchoMode(huh.EchoModePassword).
				Value(&m.password),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Entrar" }
func (m LoginModel) ShortHelp() string { return "Enter: entrar | Ctrl+C: sair" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

type loginFailedMsg struct {
	err error
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if failed, ok := msg.(loginFailedMsg); ok {
		m.err = failed.err
		m.password = ""
		m.submitting = false
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.submitting = true

	return m, m.signInCmd()
}

func (m LoginModel) signInCmd() tea.Cmd {
	email, password := m.email, m.password

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		session, err := m.authService.SignIn(ctx, email, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}

		caller, err := m.authService.Authenticate(ctx, session.Token)
		if err != nil {
			return loginFailedMsg{err: err}
		}

		return LoggedInMsg{Caller: caller}
	}
}

func (m LoginModel) View() string {
	content := "Atacadão\n\n" + m.form.View()

	if m.err != nil {
		text := "Não foi possível entrar: " + m.err.Error()
		if errors.Is(m.err, apperr.ErrUnauthenticated) {
			text = "E-mail ou senha inválidos"
		}

		content += "\n" + errorStyle(text)
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/storage"
	"github.com/jeranaias/ragchat-tui/internal/turn"
	"github.com/jeranaias/ragchat-tui/internal/ui/components"
	"github.com/jeranaias/ragchat-tui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	logger *slog.Logger

	store      *session.Store
	controller *turn.Controller
	client     *backend.Client
	archive    *storage.Archive // nil when archiving is disabled

	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	header    *components.Header
	statusBar *components.StatusBar

	width  int
	height int
	ready  bool

	// Streaming state for the in-flight turn
	streaming   bool
	partial     string
	deltaCh     chan string
	doneCh      chan error
	cancelTurn  context.CancelFunc
	queuedLabel string

	status   string
	quitting bool
}

// New builds the chat model. archive may be nil.
func New(cfg *config.Config, store *session.Store, controller *turn.Controller,
	client *backend.Client, archive *storage.Archive, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Prompt = "> "
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.Amber)

	theme := styles.NewTheme()
	header := components.NewHeader(theme, cfg.UI.Title, cfg.UI.Description)
	header.SetBackend(cfg.Backend.URL)

	return &Model{
		cfg:        cfg,
		theme:      theme,
		logger:     logger.With("component", "tui"),
		store:      store,
		controller: controller,
		client:     client,
		archive:    archive,
		textarea:   ta,
		spinner:    sp,
		header:     header,
		statusBar:  components.NewStatusBar(theme),
	}
}

// Init fetches the starter questions and starts the input blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchChatConfig(), textarea.Blink)
}

// fetchChatConfig loads starter questions from the backend. Failure leaves
// the session without starters rather than blocking startup.
func (m *Model) fetchChatConfig() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout())
		defer cancel()

		cc, err := m.client.ChatConfig(ctx)
		if err != nil {
			m.logger.Warn("chat config fetch failed", "error", err)
			return chatConfigMsg{cfg: session.ChatConfig{}}
		}
		return chatConfigMsg{cfg: cc}
	}
}

// Finish archives the session. Called after the program exits.
func (m *Model) Finish(ctx context.Context) error {
	if m.archive == nil || m.store.Len() == 0 {
		return nil
	}
	return m.archive.Save(ctx, m.store.ID(), m.store.Title(), m.store.CreatedAt(), m.store.History())
}

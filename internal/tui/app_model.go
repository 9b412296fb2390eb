package tui

import (
	"context"
	"time"

	"complaint-desk/internal/action"
	"complaint-desk/internal/api"
	"complaint-desk/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Service Service
	User    model.User
	// NotificationTTL is how long a toast stays up. Defaults to 4s.
	NotificationTTL time.Duration
	Logger          *zap.Logger
	// Live subscribes to the backend change feed and reloads on every event.
	Live bool
}

type appModel struct {
	ctx  context.Context
	svc  Service
	user model.User
	ctrl *action.Controller
	ui   *surface
	log  *zap.Logger
	live bool

	width  int
	height int

	selected   int
	showDetail bool
	showHelp   bool
	loading    bool

	composing   bool
	composeBusy bool
	compose     textarea.Model

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	events <-chan api.Event
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	ttl := opts.NotificationTTL
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ui := newSurface(ctx, ttl)
	ctrl := action.New(opts.Service, action.NewRegistry(nil),
		action.WithNotifier(ui),
		action.WithConfirmer(ui),
		action.WithEditSurface(ui),
		action.WithFader(ui),
		action.WithDispatcher(ui),
		action.WithLogger(log.Named("action")),
	)

	compose := textarea.New()
	compose.Placeholder = "Describe your complaint (at least 10 characters)…"
	compose.ShowLineNumbers = false
	compose.CharLimit = 0
	compose.SetWidth(modalBodyWidth(80))
	compose.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return appModel{
		ctx:     ctx,
		svc:     opts.Service,
		user:    opts.User,
		ctrl:    ctrl,
		ui:      ui,
		log:     log,
		live:    opts.Live,
		loading: true,
		compose: compose,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(opts.User),
	}
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.reload()}
	if m.live {
		cmds = append(cmds, m.subscribe())
	}
	return tea.Batch(cmds...)
}

func (m appModel) reload() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		list, err := svc.List(ctx)
		return complaintsLoadedMsg{complaints: list, err: err}
	}
}

func (m appModel) subscribe() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		ch, err := svc.Subscribe(ctx)
		return subscribedMsg{events: ch, err: err}
	}
}

func waitForEvent(ch <-chan api.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return feedMsg{event: ev, ok: ok}
	}
}

func (m appModel) submitComplaint(text string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		c, err := svc.Submit(ctx, text)
		return submittedMsg{complaint: c, err: err}
	}
}

func (m appModel) modal() modalKind {
	switch {
	case m.ui.confirm != nil:
		return modalConfirm
	case m.ui.edit.open:
		return modalEdit
	case m.composing:
		return modalCompose
	default:
		return modalNone
	}
}

func (m appModel) selectedRow() (*action.Row, bool) {
	rows := m.ctrl.Rows().Rows()
	if m.selected < 0 || m.selected >= len(rows) {
		return nil, false
	}
	return rows[m.selected], true
}

func (m *appModel) clampSelection() {
	n := m.ctrl.Rows().Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

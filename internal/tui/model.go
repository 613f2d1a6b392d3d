// Package tui is the terminal deals dashboard, built on bubbletea.
package tui

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/client"
	"github.com/hyperjump/dealbrief/internal/dashboard"
	"github.com/hyperjump/dealbrief/internal/models"
	"github.com/hyperjump/dealbrief/internal/query"
	"github.com/hyperjump/dealbrief/internal/view"
)

const requestTimeout = 30 * time.Second

type mode int

const (
	modeList mode = iota
	modeDetail
)

// focus is the control receiving keys in list mode.
type focus int

const (
	focusTable focus = iota
	focusSearch
	focusStatus
	focusStage
	focusCategory
	focusSector
	focusCompany
	focusOrdering
	focusCount
)

var focusFields = map[focus]models.Field{
	focusSearch:   models.FieldSearch,
	focusStatus:   models.FieldStatus,
	focusStage:    models.FieldStage,
	focusCategory: models.FieldCategory,
	focusSector:   models.FieldSector,
	focusCompany:  models.FieldCompany,
	focusOrdering: models.FieldOrdering,
}

type listLoadedMsg dashboard.Loaded

type searchTickMsg struct{ token uint64 }

type detailLoadedMsg struct {
	seq  uint64
	deal *models.Deal
	err  error
}

type createdMsg struct{ err error }

type detailState struct {
	id      string
	loading bool
	deal    *models.Deal
	err     string
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx      context.Context
	api      dashboard.DealsAPI
	logger   *zap.Logger
	pageSize int

	list    *dashboard.ListView
	toolbar *dashboard.Toolbar
	modal   dashboard.Modal

	mode      mode
	focus     focus
	cursor    int
	detail    detailState
	detailSeq uint64

	width  int
	height int
}

// New returns a dashboard model showing params.
func New(ctx context.Context, api dashboard.DealsAPI, params models.ListParams, pageSize int, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}
	return &Model{
		ctx:      ctx,
		api:      api,
		logger:   logger,
		pageSize: pageSize,
		list:     dashboard.NewListView(params),
		toolbar:  dashboard.NewToolbar(params),
	}
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// Location is the dashboard URL equivalent of the current state.
func (m *Model) Location() string {
	return "/" + query.URLQuery(m.list.Params())
}

func (m *Model) Init() tea.Cmd {
	return m.fetch(m.list.Load())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg.String(), msg.Text)
	case tea.PasteMsg:
		return m, m.insertText(msg.Content)
	case listLoadedMsg:
		if m.list.Resolve(dashboard.Loaded(msg)) {
			m.clampCursor()
		}
		return m, nil
	case searchTickMsg:
		if p, ok := m.toolbar.SettleSearch(msg.token); ok {
			return m, m.apply(p)
		}
		return m, nil
	case detailLoadedMsg:
		if msg.seq != m.detailSeq {
			return m, nil
		}
		m.detail.loading = false
		if msg.err != nil {
			m.detail.err = client.MsgNotFound
		} else {
			m.detail.deal = msg.deal
		}
		return m, nil
	case createdMsg:
		var cmd tea.Cmd
		m.modal.Finish(msg.err, func() {
			cmd = m.fetch(m.list.Refresh())
		})
		return m, cmd
	}
	return m, nil
}

// handleKey routes a key press. key is the key's name ("enter", "ctrl+c", "a");
// text is the printable text it produces, if any.
func (m *Model) handleKey(key, text string) tea.Cmd {
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.modal.IsOpen() {
		return m.modalKey(key, text)
	}
	if m.mode == modeDetail {
		switch key {
		case "esc", "backspace", "q", "left", "h":
			m.mode = modeList
			m.detailSeq++
		}
		return nil
	}
	return m.listKey(key, text)
}

func (m *Model) listKey(key, text string) tea.Cmd {
	switch key {
	case "tab":
		return m.moveFocus(1)
	case "shift+tab":
		return m.moveFocus(-1)
	case "ctrl+n":
		m.modal.Open()
		return nil
	case "ctrl+r":
		return m.fetch(m.list.Refresh())
	case "ctrl+l":
		return m.apply(m.toolbar.Clear())
	case "pgdown":
		return m.gotoPage(1)
	case "pgup":
		return m.gotoPage(-1)
	case "esc":
		return m.moveFocusTo(focusTable)
	}

	switch m.focus {
	case focusTable:
		return m.tableKey(key)
	case focusSearch, focusSector, focusCompany:
		return m.textKey(key, text)
	default:
		return m.selectKey(key)
	}
}

func (m *Model) tableKey(key string) tea.Cmd {
	rows := m.list.Rows()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "right", "l", "n":
		return m.gotoPage(1)
	case "left", "h", "p":
		return m.gotoPage(-1)
	case "c":
		m.modal.Open()
	case "x":
		return m.apply(m.toolbar.Clear())
	case "/":
		return m.moveFocusTo(focusSearch)
	case "q":
		return tea.Quit
	case "enter", "space":
		if m.cursor < len(rows) {
			return m.openDetail(rows[m.cursor].ID)
		}
	}
	return nil
}

func (m *Model) textKey(key, text string) tea.Cmd {
	field := focusFields[m.focus]
	draft := m.toolbar.Draft(field)
	switch key {
	case "enter":
		return m.flush()
	case "backspace":
		if draft == "" {
			return nil
		}
		r := []rune(draft)
		return m.setDraft(string(r[:len(r)-1]))
	case "ctrl+u":
		return m.setDraft("")
	}
	if text != "" && !strings.HasPrefix(key, "ctrl+") && !strings.HasPrefix(key, "alt+") {
		return m.setDraft(draft + text)
	}
	return nil
}

func (m *Model) selectKey(key string) tea.Cmd {
	field := focusFields[m.focus]
	step := 0
	switch key {
	case "right", "l", "down", "j", "space":
		step = 1
	case "left", "h", "up", "k":
		step = -1
	default:
		return nil
	}
	params := m.toolbar.Params()
	current := params.Get(field)
	if field == models.FieldOrdering {
		current = params.OrderingOrDefault()
	}
	next := view.Cycle(view.OptionsFor(field), current, step)
	return m.apply(m.toolbar.Set(field, next))
}

func (m *Model) modalKey(key, text string) tea.Cmd {
	if m.modal.Submitting() {
		return nil
	}
	switch key {
	case "esc":
		m.modal.Close()
		return nil
	case "ctrl+s":
		raw, ok := m.modal.Submit()
		if !ok {
			return nil
		}
		return m.create(raw)
	case "enter":
		m.modal.SetText(m.modal.Text() + "\n")
		return nil
	case "backspace":
		r := []rune(m.modal.Text())
		if len(r) > 0 {
			m.modal.SetText(string(r[:len(r)-1]))
		}
		return nil
	}
	if text != "" && !strings.HasPrefix(key, "ctrl+") && !strings.HasPrefix(key, "alt+") {
		m.modal.SetText(m.modal.Text() + text)
	}
	return nil
}

func (m *Model) insertText(s string) tea.Cmd {
	if m.modal.IsOpen() {
		m.modal.SetText(m.modal.Text() + s)
		return nil
	}
	switch m.focus {
	case focusSearch, focusSector, focusCompany:
		s = strings.ReplaceAll(s, "\n", " ")
		return m.setDraft(m.toolbar.Draft(focusFields[m.focus]) + s)
	}
	return nil
}

// setDraft edits the focused text field. Search edits schedule a debounce tick.
func (m *Model) setDraft(s string) tea.Cmd {
	switch m.focus {
	case focusSearch:
		token := m.toolbar.TypeSearch(s)
		return tea.Tick(dashboard.DebounceDelay, func(time.Time) tea.Msg {
			return searchTickMsg{token: token}
		})
	case focusSector:
		m.toolbar.TypeSector(s)
	case focusCompany:
		m.toolbar.TypeCompany(s)
	}
	return nil
}

// flush commits the focused sector or company draft, as on blur or Enter.
func (m *Model) flush() tea.Cmd {
	var p models.ListParams
	var ok bool
	switch m.focus {
	case focusSector:
		p, ok = m.toolbar.FlushSector()
	case focusCompany:
		p, ok = m.toolbar.FlushCompany()
	}
	if !ok {
		return nil
	}
	return m.apply(p)
}

func (m *Model) moveFocus(step int) tea.Cmd {
	next := (int(m.focus) + step + int(focusCount)) % int(focusCount)
	return m.moveFocusTo(focus(next))
}

func (m *Model) moveFocusTo(f focus) tea.Cmd {
	cmd := m.flush()
	m.focus = f
	return cmd
}

// apply makes p the displayed parameters and fetches them.
func (m *Model) apply(p models.ListParams) tea.Cmd {
	m.cursor = 0
	return m.fetch(m.list.SetParams(p))
}

func (m *Model) gotoPage(step int) tea.Cmd {
	pg := m.list.Pagination(m.pageSize)
	if (step < 0 && !pg.HasPrev) || (step > 0 && !pg.HasNext) {
		return nil
	}
	p := m.list.Params().WithPage(pg.Page + step)
	m.toolbar.Sync(p)
	return m.apply(p)
}

func (m *Model) clampCursor() {
	if n := len(m.list.Deals()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m *Model) fetch(req dashboard.Request) tea.Cmd {
	api, parent, logger := m.api, m.ctx, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		res := dashboard.Fetch(ctx, api, req)
		if res.Err != nil {
			logger.Debug("fetch deals failed", zap.Uint64("seq", req.Seq), zap.Error(res.Err))
		}
		return listLoadedMsg(res)
	}
}

func (m *Model) openDetail(id string) tea.Cmd {
	m.mode = modeDetail
	m.detailSeq++
	m.detail = detailState{id: id, loading: true}
	seq, api, parent := m.detailSeq, m.api, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		deal, err := api.FetchOne(ctx, id)
		return detailLoadedMsg{seq: seq, deal: deal, err: err}
	}
}

func (m *Model) create(raw string) tea.Cmd {
	api, parent := m.api, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		_, err := api.CreateDeal(ctx, raw)
		return createdMsg{err: err}
	}
}

package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hyperjump/dealbrief/internal/dashboard"
	"github.com/hyperjump/dealbrief/internal/view"
)

var columns = []struct {
	title string
	width int
}{
	{"Company", 22}, {"Sector", 16}, {"Category", 22}, {"Stage", 10}, {"Status", 10}, {"Created", 12},
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	if m.modal.IsOpen() {
		return m.renderModal()
	}
	if m.mode == modeDetail {
		return m.renderDetail()
	}
	return m.renderList()
}

func (m *Model) renderList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Deals Briefer Dashboard"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(m.Location()))
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(m.renderToolbar()))
	b.WriteString("\n")

	if msg := m.list.Error(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.list.Phase() == dashboard.PhaseLoading {
		b.WriteString(mutedStyle.Render("Loading…"))
		b.WriteString("\n")
	}

	b.WriteString(m.renderTable())
	b.WriteString("\n")

	pg := m.list.Pagination(m.pageSize)
	b.WriteString(pg.Summary())
	b.WriteString("   ")
	b.WriteString(mutedStyle.Render(pg.PageLabel()))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("tab focus · ←/→ change or page · enter open · c create · x clear · ctrl+r refresh · q quit"))
	return b.String()
}

func (m *Model) renderToolbar() string {
	params := m.toolbar.Params()
	field := func(f focus, label, value string) string {
		s := label + ": " + value
		if m.focus == f {
			return focusStyle.Render("[" + s + "]")
		}
		return " " + s + " "
	}
	text := func(f focus) string {
		v := m.toolbar.Draft(focusFields[f])
		if m.focus == f {
			v += "▏"
		}
		return v
	}
	line1 := field(focusSearch, "Search", text(focusSearch))
	if m.toolbar.HasActiveFilters() {
		line1 += mutedStyle.Render("   (x: clear filters)")
	}
	line2 := strings.Join([]string{
		field(focusStatus, "Status", view.Label(view.StatusOptions, params.Status)),
		field(focusStage, "Stage", view.Label(view.StageOptions, params.Stage)),
		field(focusCategory, "Category", view.Label(view.CategoryOptions, params.Category)),
		field(focusSector, "Sector", text(focusSector)),
		field(focusCompany, "Company", text(focusCompany)),
		field(focusOrdering, "Sort", view.Label(view.OrderingOptions, params.OrderingOrDefault())),
	}, " ")
	return line1 + "\n" + line2
}

func (m *Model) renderTable() string {
	var b strings.Builder
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = pad(c.title, c.width)
	}
	b.WriteString(headingStyle.Render(strings.Join(cells, " ")))
	b.WriteString("\n")
	for i, r := range m.list.Rows() {
		values := []string{r.Company, r.Sector, r.Category, r.Stage, r.Status.Label, r.Created}
		for j, c := range columns {
			cells[j] = pad(values[j], c.width)
		}
		cells[4] = badgeStyles[r.Status.Kind].Render(cells[4])
		line := strings.Join(cells, " ")
		if m.focus == focusTable && i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.detail.loading {
		return mutedStyle.Render("Loading…")
	}
	back := mutedStyle.Render("esc: back to deals")
	if m.detail.err != "" || m.detail.deal == nil {
		return errorStyle.Render(m.detail.err) + "\n\n" + back
	}
	d := view.NewDetail(m.detail.deal)
	var sections []string
	sections = append(sections,
		titleStyle.Render(d.Title)+"  "+badge(d.Status),
		mutedStyle.Render(fmt.Sprintf("Created %s · Updated %s", d.Created, d.Updated)),
	)
	if e := d.Entities; e != nil {
		lines := []string{
			"Sector: " + e.Sector,
			"Geography: " + e.Geography,
			"Stage: " + e.Stage,
			"Round size (USD): " + e.RoundSize,
		}
		if e.Founders != "" {
			lines = append(lines, "Founders: "+e.Founders)
		}
		if e.Metrics != "" {
			lines = append(lines, "Notable metrics: "+e.Metrics)
		}
		sections = append(sections, section("Entities", strings.Join(lines, "\n")))
	}
	if t := d.Tags; t != nil {
		var tags []string
		for _, c := range t.Categories {
			tags = append(tags, tagStyle.Render(c))
		}
		if t.Stage != "" {
			tags = append(tags, tagStyle.Foreground(colorAccent).Render(t.Stage))
		}
		sections = append(sections, section("Tags", strings.Join(tags, " ")))
	}
	if len(d.Brief) > 0 {
		items := make([]string, len(d.Brief))
		for i, item := range d.Brief {
			items[i] = "• " + item
		}
		sections = append(sections, section("Investment brief", strings.Join(items, "\n")))
	}
	sections = append(sections, section("Raw text", wrap(d.RawText, m.contentWidth())))
	if d.LastError != "" {
		sections = append(sections, section("Last error", errorStyle.Render(d.LastError)))
	}
	sections = append(sections, back)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderModal() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create brief"))
	b.WriteString("\n\n")
	text := m.modal.Text()
	if text == "" {
		text = mutedStyle.Render("Paste deal or brief text here...")
	}
	b.WriteString(wrap(text, m.contentWidth()-6))
	if !m.modal.Submitting() {
		b.WriteString("▏")
	}
	b.WriteString("\n\n")
	if msg := m.modal.Error(); msg != "" {
		b.WriteString(errorStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.modal.Submitting() {
		b.WriteString(mutedStyle.Render("Creating…"))
	} else {
		b.WriteString(mutedStyle.Render("ctrl+s create · esc cancel"))
	}
	return modalStyle.Render(b.String())
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(20, m.width-4)
}

func section(title, body string) string {
	return "\n" + headingStyle.Render(strings.ToUpper(title)) + "\n" + body
}

// pad truncates or pads s to exactly width terminal cells.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		for lipgloss.Width(string(r)) > width-1 && len(r) > 0 {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", width-w)
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

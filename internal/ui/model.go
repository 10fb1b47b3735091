package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"badgeline/internal/config"
	"badgeline/internal/domain"
	"badgeline/internal/engine"
	"badgeline/internal/eventbus"
)

// maxBadgeCells is the widest a single badge renders before truncation
const maxBadgeCells = 32

// entry is the surface's mirror of one segment, in render order
type entry struct {
	seg      domain.Segment
	sentinel any
}

// Model is the badge-input surface: it renders the segment collection and
// feeds focus, edit and blur notifications into the reconciliation engine.
// It implements engine.Surface.
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	styles *Styles
	eng    *engine.Reconciler

	entries   []entry
	activeKey domain.SegmentKey
	cursor    int // rune offset inside the active segment
	focused   bool

	width  int
	height int

	bulkMode  bool
	bulkInput textinput.Model

	helpOps *HelpOps

	statusMsg string
	statusErr bool
	quitting  bool
}

// NewModel creates the surface. The engine is attached afterwards with
// SetEngine, since the engine itself is constructed around the surface.
func NewModel(bus eventbus.EventBus, cfg *config.Config) *Model {
	ti := textinput.New()
	ti.Placeholder = "a, b, c"
	ti.Prompt = "raw> "
	ti.CharLimit = 0

	return &Model{
		bus:       bus,
		config:    cfg,
		styles:    NewStyles(cfg.Theme),
		activeKey: domain.NoSegment,
		bulkInput: ti,
		helpOps:   NewHelpOps(),
	}
}

// SetEngine attaches the reconciliation engine
func (m *Model) SetEngine(eng *engine.Reconciler) {
	m.eng = eng
}

// SetProgram sets the Bubble Tea program used for pager terminal handover
func (m *Model) SetProgram(p *tea.Program) {
	m.helpOps.SetProgram(p)
}

// --- engine.Surface ---

// CursorContext resolves the cursor to a segment once deferred focus fires.
func (m *Model) CursorContext() domain.Context {
	if m.activeKey != domain.NoSegment {
		return domain.Context{Key: m.activeKey, Offset: m.cursor, Known: true}
	}
	return domain.Context{Key: domain.NoSegment, Known: false}
}

// SegmentCreated mirrors a new segment into render order.
func (m *Model) SegmentCreated(seg domain.Segment, after domain.SegmentKey, sentinel any) {
	e := entry{seg: seg, sentinel: sentinel}
	if after == domain.NoSegment {
		m.entries = append([]entry{e}, m.entries...)
		return
	}
	for i := range m.entries {
		if m.entries[i].seg.Key == after {
			m.entries = append(m.entries[:i+1], append([]entry{e}, m.entries[i+1:]...)...)
			return
		}
	}
	m.entries = append(m.entries, e)
}

// SegmentRemoved drops a segment from render order.
func (m *Model) SegmentRemoved(key domain.SegmentKey) {
	for i := range m.entries {
		if m.entries[i].seg.Key == key {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	if m.activeKey == key {
		m.activeKey = domain.NoSegment
	}
}

// SegmentUpdated refreshes the mirror of a segment.
func (m *Model) SegmentUpdated(seg domain.Segment, label string) {
	_ = label // cosmetic marker; the styles already distinguish valid badges
	for i := range m.entries {
		if m.entries[i].seg.Key == seg.Key {
			m.entries[i].seg = seg
			return
		}
	}
}

// SegmentActivated places the cursor inside a segment.
func (m *Model) SegmentActivated(key domain.SegmentKey, offset int) {
	m.activeKey = key
	m.cursor = offset
	m.focused = true
}

// SegmentDeactivated clears the active marker.
func (m *Model) SegmentDeactivated(key domain.SegmentKey) {
	if m.activeKey == key {
		m.activeKey = domain.NoSegment
	}
}

// --- tea.Model ---

// Init schedules the initial focus
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return initialFocusMsg{} })
}

// Update routes messages into the engine
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case initialFocusMsg:
		// Positional reporting is not settled yet at fire time; hand
		// the engine an unresolved focus and schedule the resolution
		// one tick later.
		m.eng.NotifyFocus(nil)
		return m, func() tea.Msg { return resolveFocusMsg{} }

	case resolveFocusMsg:
		m.eng.ResolvePending()
		return m, nil

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("help pager: %v", msg.err), true)
		}
		return m, nil

	case tea.KeyMsg:
		if m.bulkMode {
			return m.updateBulk(msg)
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlO:
		content := RenderHelpContent()
		return m, func() tea.Msg {
			return helpPagerMsg{err: m.helpOps.ShowHelpInPager(content)}
		}

	case tea.KeyCtrlE:
		m.enterBulkMode()
		return m, textinput.Blink

	case tea.KeyEsc:
		m.eng.NotifyBlur()
		m.focused = false
		return m, nil

	case tea.KeyEnter:
		// Commit and move on to the trailing gap. The refocus goes
		// through the deferred path on purpose: at commit time the new
		// cursor position is not known yet.
		m.eng.NotifyBlur()
		m.eng.NotifyFocus(nil)
		return m, func() tea.Msg { return resolveFocusMsg{} }

	case tea.KeyLeft:
		m.moveCursor(-1)
		return m, nil

	case tea.KeyRight:
		m.moveCursor(1)
		return m, nil

	case tea.KeyHome:
		m.cursor = 0
		return m, nil

	case tea.KeyEnd:
		if seg, ok := m.activeSegment(); ok {
			m.cursor = runeCount(seg.Text)
		}
		return m, nil

	case tea.KeyBackspace:
		m.ensureFocused()
		if m.cursor > 0 {
			m.edit(m.cursor-1, m.cursor, "", m.cursor-1)
		} else {
			m.focusNeighbor(-1)
		}
		return m, nil

	case tea.KeyDelete:
		m.ensureFocused()
		if seg, ok := m.activeSegment(); ok && m.cursor < runeCount(seg.Text) {
			m.edit(m.cursor, m.cursor+1, "", m.cursor)
		}
		return m, nil

	case tea.KeySpace:
		m.typeRunes([]rune{' '})
		return m, nil

	case tea.KeyRunes:
		m.typeRunes(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateBulk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.bulkMode = false
		return m, nil
	case tea.KeyEnter:
		raw := m.bulkInput.Value()
		m.bulkMode = false
		if err := m.eng.SetTextContent(raw); err != nil {
			m.setStatus(fmt.Sprintf("not assigned: %v", err), true)
		} else {
			m.setStatus(fmt.Sprintf("assigned %d badges", m.eng.Len()), false)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.bulkInput, cmd = m.bulkInput.Update(msg)
	return m, cmd
}

// typeRunes feeds each rune through the engine as a single-character edit
func (m *Model) typeRunes(runes []rune) {
	m.ensureFocused()
	for _, r := range runes {
		if m.activeKey == domain.NoSegment {
			break
		}
		suppressed := m.eng.NotifyCharacterEdit(m.activeKey, m.cursor, m.cursor, string(r), m.cursor+1)
		if !suppressed {
			// The host applies the keystroke: the mirror text already
			// arrived via SegmentUpdated, only the cursor is ours.
			m.cursor++
		}
	}
}

func (m *Model) edit(start, end int, ch string, cursorHint int) {
	if m.activeKey == domain.NoSegment {
		return
	}
	suppressed := m.eng.NotifyCharacterEdit(m.activeKey, start, end, ch, cursorHint)
	if !suppressed {
		m.cursor = cursorHint
	}
}

// ensureFocused focuses the control if no segment is active
func (m *Model) ensureFocused() {
	if m.activeKey == domain.NoSegment {
		m.eng.NotifyFocus(&domain.Context{Key: domain.NoSegment, Known: false})
	}
}

// moveCursor moves within the active segment, crossing into the neighbor
// when the edge is passed
func (m *Model) moveCursor(delta int) {
	m.ensureFocused()
	seg, ok := m.activeSegment()
	if !ok {
		return
	}
	next := m.cursor + delta
	if next >= 0 && next <= runeCount(seg.Text) {
		m.cursor = next
		return
	}
	m.focusNeighbor(delta)
}

// focusNeighbor commits the active segment and focuses the adjacent one
func (m *Model) focusNeighbor(delta int) {
	idx := m.activeIndex()
	if idx < 0 {
		return
	}
	nidx := idx + delta
	if nidx < 0 || nidx >= len(m.entries) {
		return
	}
	target := m.entries[nidx].seg
	offset := 0
	if delta < 0 {
		offset = runeCount(target.Text)
	}
	m.eng.NotifyFocus(&domain.Context{Key: target.Key, Offset: offset, Known: true})
	// Selection moved without typing; let the engine re-check the badge.
	m.eng.NotifyExternalValidation(target.Key)
}

func (m *Model) enterBulkMode() {
	var parts []string
	m.eng.ForEach(func(_ domain.SegmentKey, value domain.ParsedItem) {
		if !value.Placeholder {
			parts = append(parts, value.Text)
		}
	})
	m.bulkInput.SetValue(strings.Join(parts, m.config.Delimiter))
	m.bulkInput.CursorEnd()
	m.bulkInput.Focus()
	m.bulkMode = true
}

func (m *Model) applyEvent(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case eventbus.SegmentAddedEvent:
		m.setStatus(fmt.Sprintf("add %q (#%d)", ev.Value.Text, ev.Key), false)
	case eventbus.SegmentChangedEvent:
		m.setStatus(fmt.Sprintf("change %q -> %q (#%d)", ev.Previous.Text, ev.Value.Text, ev.Key), false)
	case eventbus.SegmentRemovedEvent:
		m.setStatus(fmt.Sprintf("delete %q (#%d)", ev.Previous.Text, ev.Key), false)
	case eventbus.ValuesReplacedEvent:
		m.setStatus(fmt.Sprintf("replaced all values (%d)", ev.Count), false)
	case eventbus.ConfigLoadedEvent:
		log.Printf("config loaded from %s", ev.Path)
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

func (m *Model) activeSegment() (domain.Segment, bool) {
	idx := m.activeIndex()
	if idx < 0 {
		return domain.Segment{}, false
	}
	return m.entries[idx].seg, true
}

func (m *Model) activeIndex() int {
	for i := range m.entries {
		if m.entries[i].seg.Key == m.activeKey {
			return i
		}
	}
	return -1
}

// View renders the badge row, status line and key hints
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("badgeline"))
	b.WriteString("\n")

	if m.bulkMode {
		b.WriteString(m.styles.Frame.Render(m.bulkInput.View()))
	} else {
		b.WriteString(m.styles.Frame.Render(m.renderBadges()))
	}
	b.WriteString("\n")

	status := m.statusMsg
	if status == "" {
		status = fmt.Sprintf("%d badges", m.eng.Len())
	}
	if m.statusErr {
		b.WriteString(m.styles.StatusError.Render(status))
	} else {
		b.WriteString(m.styles.Status.Render(status))
	}
	b.WriteString("\n")

	if m.config.UISettings.ShowKeyHints {
		hints := "enter commit · esc blur · ctrl+e bulk · ctrl+o help · ctrl+c quit"
		b.WriteString(m.styles.Help.Render(hints))
	}
	return b.String()
}

func (m *Model) renderBadges() string {
	if len(m.entries) == 0 {
		return m.styles.Gap.Render("type to add badges")
	}
	var parts []string
	for _, e := range m.entries {
		parts = append(parts, m.renderEntry(e))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) renderEntry(e entry) string {
	seg := e.seg
	active := seg.Key == m.activeKey

	var body string
	switch {
	case active:
		body = m.styles.Active.Render(m.renderWithCursor(seg.Text))
	case seg.State == domain.StateValid:
		body = m.styles.Valid.Render(truncateBadge(seg.Text))
	case seg.State == domain.StateInvalid:
		body = m.styles.Invalid.Render(truncateBadge(seg.Text))
	default:
		body = m.styles.Gap.Render("·")
	}

	if s, ok := e.sentinel.(string); ok && s != "" {
		body += m.styles.Gap.Render(s)
	}
	return body
}

// renderWithCursor draws the segment text with a reverse-video cursor cell
func (m *Model) renderWithCursor(text string) string {
	runes := []rune(text)
	cur := m.cursor
	if cur < 0 {
		cur = 0
	}
	if cur > len(runes) {
		cur = len(runes)
	}
	pre := string(runes[:cur])
	if cur == len(runes) {
		return pre + m.styles.Cursor.Render(" ")
	}
	return pre + m.styles.Cursor.Render(string(runes[cur])) + string(runes[cur+1:])
}

func truncateBadge(text string) string {
	if runewidth.StringWidth(text) <= maxBadgeCells {
		return text
	}
	return runewidth.Truncate(text, maxBadgeCells, "…")
}

func runeCount(s string) int {
	return len([]rune(s))
}

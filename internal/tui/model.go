// Package tui is an interactive browser over ranked sections.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"
)

// Model is the Bubble Tea model for the section browser.
type Model struct {
	all      []models.RankedSection
	visible  []models.RankedSection
	keywords map[string]struct{}
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	cursor   int
	ready    bool
}

// New creates a browser over ranked sections. Sentences are highlighted
// against the job keywords and priority topics of pc.
func New(sections []models.RankedSection, pc *models.PersonaContext, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "filter> "
	ti.Placeholder = "document, title or type; Enter to apply"
	ti.Focus()
	ti.CharLimit = 0

	keywords := make(map[string]struct{})
	if pc != nil {
		for _, k := range append(append([]string{}, pc.JobKeywords...), pc.PriorityTopics...) {
			for _, t := range textutil.Tokens(k) {
				keywords[t] = struct{}{}
			}
		}
	}

	return Model{
		all:      sections,
		visible:  sections,
		keywords: keywords,
		input:    ti,
		viewport: viewport.New(0, 0),
		summary:  summary,
		status:   fmt.Sprintf("%d sections. Up/down to browse, Ctrl+C to quit.", len(sections)),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := sectionBoxStyle.GetFrameSize()
		_, qh := filterBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header and summary, status, filter box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.applyFilter(m.input.Value())
			m.viewport.SetContent(m.renderCurrent())
			return m, nil
		case "down":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor + 1) % len(m.visible)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if len(m.visible) > 0 {
				m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyFilter(q string) {
	q = strings.ToLower(strings.TrimSpace(q))
	m.cursor = 0
	if q == "" {
		m.visible = m.all
		m.status = fmt.Sprintf("%d sections", len(m.all))
		return
	}
	m.visible = nil
	for _, rs := range m.all {
		if strings.Contains(strings.ToLower(rs.Document), q) ||
			strings.Contains(strings.ToLower(rs.Title), q) ||
			rs.Type.String() == q {
			m.visible = append(m.visible, rs)
		}
	}
	m.status = fmt.Sprintf("%d of %d sections match %q", len(m.visible), len(m.all), q)
}

// View renders the TUI layout and the current section.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Ranked Sections")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	section := sectionBoxStyle.Render(m.viewport.View())
	filter := filterBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + section + "\n" + filter + "\n" + status
}

func (m Model) renderCurrent() string {
	if len(m.visible) == 0 {
		return "No sections."
	}
	rs := m.visible[m.cursor]

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", rs.Rank, rs.Title)))
	fmt.Fprintf(&b, "\n%s, page %d  [%s, %s]  score=%.3f  (%d/%d)\n\n",
		rs.Document, rs.PageNumber, rs.Type, rs.Origin, rs.FinalScore, m.cursor+1, len(m.visible))
	b.WriteString(renderFactors(rs.Factors))
	b.WriteString("\n")
	b.WriteString(m.highlightBestSentence(textutil.Clean(rs.Content)))
	return b.String()
}

func renderFactors(factors map[string]float64) string {
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		v := factors[name]
		width := int(min(max(v, 0), 1) * 20)
		fmt.Fprintf(&b, "  %-15s %6.3f %s\n", name, v, barStyle.Render(strings.Repeat("█", width)))
	}
	return b.String()
}

var (
	sectionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	filterBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	barStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	highlightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func (m Model) highlightBestSentence(text string) string {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return text
	}
	best := m.bestSentence(sentences)
	if best < 0 {
		return strings.Join(sentences, " ")
	}
	out := make([]string, len(sentences))
	copy(out, sentences)
	out[best] = highlightStyle.Render(out[best])
	return strings.Join(out, " ")
}

// bestSentence returns the index of the sentence sharing the most distinct
// tokens with the keywords, or -1 when none shares any
func (m Model) bestSentence(sentences []string) int {
	bestIdx, bestScore := -1, 0
	for i, s := range sentences {
		score := 0
		for t := range textutil.NewTokenSet(s) {
			if _, ok := m.keywords[t]; ok {
				score++
			}
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

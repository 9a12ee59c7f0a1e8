package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/azhavoronkov/eventscope/pkg/domain"
	"github.com/azhavoronkov/eventscope/pkg/feed"
	"github.com/azhavoronkov/eventscope/pkg/filter"
	"github.com/azhavoronkov/eventscope/pkg/text"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c9d1d9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#8b949e"))
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	selectedMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7ee787"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa657"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d2a8ff"))
)

// Options configure the terminal browser
type Options struct {
	Client          feed.EventsClient
	State           *feed.State
	Limit           int  // events per fetch
	PerChannelLimit int  // ingestion depth per channel
	EventOnly       bool // restrict ingestion to event posts

	// SaveSelection persists the personalization selection, nil disables
	// persistence
	SaveSelection func(keys []string) tea.Cmd
}

// Model is the root Bubble Tea model. It owns the feed state but never
// fetches inline: fetches run as commands and come back as FeedLoaded
// messages carrying the token issued when they started.
type Model struct {
	state  *feed.State
	client feed.EventsClient

	saveSelection   func(keys []string) tea.Cmd
	limit           int
	perChannelLimit int
	eventOnly       bool

	channels  []domain.Channel
	cursor    int
	filterIdx int
	width     int
	height    int
	spinner   spinner.Model
	ingesting bool
	err       error
}

// New creates a browser over the given feed state
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))

	if opts.Limit == 0 {
		opts.Limit = 30
	}
	if opts.PerChannelLimit == 0 {
		opts.PerChannelLimit = 5
	}
	return Model{
		state:           opts.State,
		client:          opts.Client,
		saveSelection:   opts.SaveSelection,
		limit:           opts.Limit,
		perChannelLimit: opts.PerChannelLimit,
		eventOnly:       opts.EventOnly,
		spinner:         s,
	}
}

// Init starts the first fetch and the channel listing
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startFetch(), m.loadChannels(), m.spinner.Tick)
}

// startFetch issues a token from the state and returns the command that
// performs the fetch, tagging the completion with that token
func (m Model) startFetch() tea.Cmd {
	token := m.state.Begin()
	client, limit := m.client, m.limit
	return func() tea.Msg {
		events, err := client.ListEvents(context.Background(), limit)
		return FeedLoaded{Seq: token, Events: events, Err: err}
	}
}

func (m Model) loadChannels() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		channels, err := client.EcoChannels(context.Background())
		return ChannelsLoaded{Channels: channels, Err: err}
	}
}

func (m Model) startIngest() tea.Cmd {
	client, perChannel, eventOnly := m.client, m.perChannelLimit, m.eventOnly
	return func() tea.Msg {
		return IngestDone{Err: client.TriggerIngest(context.Background(), perChannel, eventOnly)}
	}
}

// Update handles messages and returns the updated model and any commands
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FeedLoaded:
		if !m.state.Apply(msg.Seq, msg.Events, msg.Err) {
			return m, nil // stale completion
		}
		m.err = msg.Err
		m.clampCursor()
		return m, nil

	case ChannelsLoaded:
		if msg.Err == nil {
			m.channels = msg.Channels
		}
		return m, nil

	case IngestDone:
		m.ingesting = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		return m, m.startFetch()

	case SelectionSaved:
		if msg.Err != nil {
			m.err = msg.Err
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.err = nil
		return m, m.startFetch()

	case "i":
		if m.ingesting {
			return m, nil
		}
		m.ingesting = true
		m.err = nil
		return m, m.startIngest()

	case "tab", "right":
		m.filterIdx = (m.filterIdx + 1) % len(m.state.Taxonomy())
		m.state.SetFilter(m.state.Taxonomy()[m.filterIdx].Key)
		m.cursor = 0
		return m, nil

	case "shift+tab", "left":
		taxonomy := m.state.Taxonomy()
		m.filterIdx = (m.filterIdx + len(taxonomy) - 1) % len(taxonomy)
		m.state.SetFilter(taxonomy[m.filterIdx].Key)
		m.cursor = 0
		return m, nil

	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return m, nil

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "g", "home":
		m.cursor = 0
		return m, nil

	case "G", "end":
		if n := len(m.visible()); n > 0 {
			m.cursor = n - 1
		}
		return m, nil

	default:
		if n, err := strconv.Atoi(key); err == nil {
			return m.toggleCategory(n)
		}
		return m, nil
	}
}

// toggleCategory flips the n-th taxonomy category (1-based, the "all"
// pseudo-filter excluded) in the personalization selection and persists
// the result
func (m Model) toggleCategory(n int) (tea.Model, tea.Cmd) {
	var keys []string
	for _, f := range m.state.Taxonomy() {
		if !f.All() {
			keys = append(keys, f.Key)
		}
	}
	if n < 1 || n > len(keys) {
		return m, nil
	}
	target := keys[n-1]

	current := m.state.Selection()
	next := make([]string, 0, len(current)+1)
	found := false
	for _, k := range current {
		if k == target {
			found = true
			continue
		}
		next = append(next, k)
	}
	if !found {
		next = append(next, target)
	}
	m.state.SetSelection(next)
	m.clampCursor()

	if m.saveSelection == nil {
		return m, nil
	}
	return m, m.saveSelection(next)
}

// visible is the list the cursor moves over
func (m Model) visible() []domain.EventCard {
	return m.state.Display()
}

func (m *Model) clampCursor() {
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// View renders the browser
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	switch m.state.Phase() {
	case feed.PhaseLoading:
		b.WriteString(m.spinner.View() + " loading events...\n")
	case feed.PhaseFailed:
		b.WriteString(errorStyle.Render("fetch failed") + "\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
		}
		b.WriteString(dimStyle.Render("press r to retry") + "\n")
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n" + m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	header := titleStyle.Render("eventscope")
	if m.ingesting {
		header += " " + m.spinner.View() + dimStyle.Render(" ingesting")
	}
	if len(m.channels) > 0 {
		header += dimStyle.Render(fmt.Sprintf("  %d channels", len(m.channels)))
	}
	return header
}

func (m Model) tabsView() string {
	selected := make(map[string]bool)
	for _, k := range m.state.Selection() {
		selected[k] = true
	}

	var tabs []string
	for i, f := range m.state.Taxonomy() {
		label := f.Label
		if selected[f.Key] {
			label = selectedMark.Render("*") + label
		}
		if i == m.filterIdx {
			tabs = append(tabs, activeTab.Render(label))
			continue
		}
		tabs = append(tabs, tabStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) listView() string {
	events := m.visible()
	if len(events) == 0 {
		return dimStyle.Render("no events") + "\n"
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for i := range events {
		ev := &events[i]
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}

		title := text.Truncate(text.FirstLine(ev.Title), width-4)
		b.WriteString(prefix + titleStyle.Render(title) + "\n")

		meta := text.FormatDate(eventDate(ev))
		if cats := m.categoryLine(ev); cats != "" {
			meta += "  " + categoryStyle.Render(cats)
		}
		if ev.Channel != "" {
			meta += "  " + dimStyle.Render("@"+ev.Channel)
		}
		b.WriteString("  " + dimStyle.Render(meta) + "\n")

		if i == m.cursor {
			if desc := text.Collapse(ev.DescriptionText()); desc != "" {
				b.WriteString("  " + text.Truncate(desc, width-4) + "\n")
			}
			if img := m.state.CardImage(ev); img != "" {
				b.WriteString("  " + dimStyle.Render(img) + "\n")
			}
			if ev.SourceLink != nil && *ev.SourceLink != "" {
				b.WriteString("  " + dimStyle.Render(*ev.SourceLink) + "\n")
			}
		}
	}
	return b.String()
}

// eventDate picks the raw timestamp to display, scheduled time first
func eventDate(ev *domain.EventCard) string {
	if ev.EventTime != nil && *ev.EventTime != "" {
		return *ev.EventTime
	}
	return ev.CreatedAt
}

func (m Model) categoryLine(ev *domain.EventCard) string {
	var labels []string
	for _, f := range filter.MatchedCategories(ev, m.state.Taxonomy()) {
		labels = append(labels, f.Label)
	}
	return strings.Join(labels, " ")
}

func (m Model) footerView() string {
	return dimStyle.Render("j/k move · tab filter · 1-9 toggle category · r refresh · i ingest · q quit")
}

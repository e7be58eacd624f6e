package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// =============================================================================
// browse command
// =============================================================================

func (c *CLI) browseCommand() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "browse [graph]",
		Short: "Explore a concept map level by level in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args[0], depth)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "number of levels (1-10)")
	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, depth int) error {
	opts := pipeline.Options{MaxLevels: depth}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	doc, err := pipeline.Load(input)
	if err != nil {
		return err
	}
	c.applyDefaults(doc, &opts)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Layout(ctx, doc, opts)
	if err != nil {
		return err
	}
	if len(res.Concepts) == 0 {
		printWarning("%s has no concepts", input)
		return nil
	}

	_, err = tea.NewProgram(newBrowseModel(doc.Map, res), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// browseModel - level and concept browser
// =============================================================================

// relationLine is one relation as seen from a concept.
type relationLine struct {
	outgoing bool
	other    string
	relation string
	drawn    bool
}

// browseModel shows one level's concepts on the left and the selected
// concept's details and relations on the right.
type browseModel struct {
	res       layout.Result
	labels    map[string]string
	relations map[string][]relationLine

	level  int
	cursor int
	width  int
}

func newBrowseModel(g concept.Graph, res layout.Result) browseModel {
	labels := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := labels[n.ID]; !dup {
			labels[n.ID] = n.Label
		}
	}

	drawn := make(map[[2]string]bool, len(res.Edges))
	for _, e := range res.Edges {
		drawn[[2]string{e.From, e.To}] = true
	}
	relations := make(map[string][]relationLine)
	for _, e := range g.Edges {
		_, okFrom := labels[e.From]
		_, okTo := labels[e.To]
		if !okFrom || !okTo {
			continue
		}
		d := drawn[[2]string{e.From, e.To}]
		relations[e.From] = append(relations[e.From], relationLine{outgoing: true, other: e.To, relation: e.Relation, drawn: d})
		if e.From != e.To {
			relations[e.To] = append(relations[e.To], relationLine{other: e.From, relation: e.Relation, drawn: d})
		}
	}

	m := browseModel{res: res, labels: labels, relations: relations, width: 100}
	// Start on the first level that has concepts.
	for i, row := range res.Rows {
		if len(row) > 0 {
			m.level = i
			break
		}
	}
	return m
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.row())-1 {
				m.cursor++
			}
		case "left", "h", "shift+tab":
			if m.level > 0 {
				m.level--
				m.cursor = 0
			}
		case "right", "l", "tab":
			if m.level < len(m.res.Rows)-1 {
				m.level++
				m.cursor = 0
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m browseModel) row() []string {
	if m.level < 0 || m.level >= len(m.res.Rows) {
		return nil
	}
	return m.res.Rows[m.level]
}

// selected returns the concept under the cursor.
func (m browseModel) selected() (layout.Concept, bool) {
	row := m.row()
	if m.cursor >= len(row) {
		return layout.Concept{}, false
	}
	return m.res.Concept(row[m.cursor])
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.res.Topic))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	half := m.width/2 - 4
	if half < 24 {
		half = 24
	}
	left := panelStyle.Width(half).Render(m.conceptList())
	right := panelStyle.Width(half).Render(m.details())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ level  ↑/↓ concept  q quit"))
	return b.String()
}

func (m browseModel) tabs() string {
	tabs := make([]string, len(m.res.Rows))
	for i, row := range m.res.Rows {
		label := fmt.Sprintf("Level %d (%d)", i+1, len(row))
		if i == m.level {
			tabs[i] = tabActiveStyle.Render(label)
		} else {
			tabs[i] = listDimStyle.Render(label)
		}
	}
	return strings.Join(tabs, "  ")
}

func (m browseModel) conceptList() string {
	row := m.row()
	if len(row) == 0 {
		return listDimStyle.Render("no concepts on this level")
	}
	lines := make([]string, len(row))
	for i, id := range row {
		name := id
		if c, ok := m.res.Concept(id); ok {
			name = c.Name
		}
		if id == m.res.Root {
			name += " ★"
		}
		if i == m.cursor {
			lines[i] = listSelectedStyle.Render("▸ " + name)
		} else {
			lines[i] = listNormalStyle.Render("  " + name)
		}
	}
	return strings.Join(lines, "\n")
}

func (m browseModel) details() string {
	c, ok := m.selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(levelStyle(c.Level).Bold(true).Render(m.labels[c.ID]))
	b.WriteString("\n")
	if c.Description != "" {
		b.WriteString(StyleValue.Render(c.Description))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("level %d · x %.1f · y %.1f", c.Level+1, c.X, c.Y)))
	b.WriteString("\n\n")

	rels := m.relations[c.ID]
	if len(rels) == 0 {
		b.WriteString(listDimStyle.Render("no relations"))
		return b.String()
	}
	b.WriteString(styleHeader.Render("Relations"))
	for _, r := range rels {
		b.WriteString("\n")
		b.WriteString(formatRelation(r, m.labels[r.other]))
	}
	return b.String()
}

// formatRelation renders "→ produce → Glucosa" for outgoing relations and
// "← Clorofila produce" for incoming ones; relations the layout did not
// draw are dimmed.
func formatRelation(r relationLine, other string) string {
	rel := r.relation
	if rel == "" {
		rel = "·"
	}
	var line string
	if r.outgoing {
		line = fmt.Sprintf("%s %s %s %s", iconArrow, rel, iconArrow, other)
	} else {
		line = fmt.Sprintf("← %s %s", other, rel)
	}
	if !r.drawn {
		return listDimStyle.Render(line + " (not drawn)")
	}
	return listNormalStyle.Render(line)
}

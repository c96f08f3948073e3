package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	detailNameStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// Sort orders for the collision browser.
const (
	sortVolume = iota
	sortName
)

// =============================================================================
// CollisionBrowser - Interactive audit results
// =============================================================================

// CollisionBrowser is the bubbletea model for browsing audit records. The
// selected pair's placements are shown below the table.
type CollisionBrowser struct {
	Records []layout.CollisionRecord
	Cursor  int
	Height  int
	Offset  int
	Sort    int

	placements map[string]scene.Placement
}

// NewCollisionBrowser creates a browser over records, worst overlap first.
func NewCollisionBrowser(l scene.Layout, records []layout.CollisionRecord) CollisionBrowser {
	m := CollisionBrowser{
		Records:    slices.Clone(records),
		Height:     10,
		placements: make(map[string]scene.Placement, len(l.Objects)),
	}
	for _, p := range l.Objects {
		m.placements[p.Name] = p
	}
	m.sort()
	return m
}

func (m *CollisionBrowser) sort() {
	switch m.Sort {
	case sortName:
		slices.SortStableFunc(m.Records, func(a, b layout.CollisionRecord) int {
			return cmp.Or(cmp.Compare(a.A, b.A), cmp.Compare(a.B, b.B))
		})
	default:
		slices.SortStableFunc(m.Records, func(a, b layout.CollisionRecord) int {
			return cmp.Compare(b.OverlapVolume, a.OverlapVolume)
		})
	}
}

func (m CollisionBrowser) Init() tea.Cmd {
	return nil
}

func (m CollisionBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "s":
			m.Records = slices.Clone(m.Records)
			m.Sort = (m.Sort + 1) % 2
			m.sort()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail pane.
		m.Height = msg.Height - 16
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m CollisionBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Collisions"))
	b.WriteString("\n")
	order := "volume"
	if m.Sort == sortName {
		order = "name"
	}
	b.WriteString(listDimStyle.Render("↑/↓ navigate  s sort (" + order + ")  q quit"))
	b.WriteString("\n\n")

	if len(m.Records) == 0 {
		b.WriteString(StyleSuccess.Render("No overlaps"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Records))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, r.A, r.B, fmt.Sprintf("%.4f", r.OverlapVolume)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "A", "B", "Overlap m³").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))
	b.WriteString("\n\n")

	sel := m.Records[m.Cursor]
	b.WriteString(m.detail(sel.A))
	b.WriteString(m.detail(sel.B))

	return b.String()
}

// detail renders one placement of the selected pair.
func (m CollisionBrowser) detail(name string) string {
	p, ok := m.placements[name]
	if !ok {
		return listDimStyle.Render(name+" (not in layout)") + "\n"
	}
	var b strings.Builder
	b.WriteString(detailNameStyle.Render(p.Name))
	b.WriteString(" " + listDimStyle.Render(p.Category))
	b.WriteString("\n")
	b.WriteString("  " + detailKeyStyle.Render("position") + fmtVec(p.Position) + "\n")
	b.WriteString("  " + detailKeyStyle.Render("size") + fmtVec(p.Size) + "\n")
	b.WriteString("  " + detailKeyStyle.Render("bounds") + fmtVec(p.BoundingBox.Min) + " – " + fmtVec(p.BoundingBox.Max) + "\n")
	return b.String()
}

func fmtVec(v [3]float64) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
}

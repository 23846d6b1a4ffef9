package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	kio "github.com/matzehuels/kitchendesigner/pkg/io"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// viewCommand creates the view command for browsing a layout.
func (c *CLI) viewCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "view [layout.json]",
		Short: "Browse a solved layout in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := kio.LoadLayout(args[0])
			if err != nil {
				return err
			}
			if plain {
				printBlock(layoutTable(layout))
				return nil
			}
			_, err = tea.NewProgram(NewLayoutModel(layout), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive view")
	return cmd
}

// =============================================================================
// LayoutModel - Interactive layout browser
// =============================================================================

// LayoutModel is the bubbletea model for browsing the parts of a layout.
type LayoutModel struct {
	Layout kio.Layout
	Parts  []string
	Cursor int
	Height int
	Offset int
}

// NewLayoutModel creates a browser over l with parts in name order.
func NewLayoutModel(l kio.Layout) LayoutModel {
	parts := make([]string, 0, len(l))
	for name := range l {
		parts = append(parts, name)
	}
	slices.Sort(parts)
	return LayoutModel{Layout: l, Parts: parts, Height: 15}
}

func (m LayoutModel) Init() tea.Cmd {
	return nil
}

func (m LayoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Parts)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayoutModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.Parts) == 0 {
		b.WriteString(listDimStyle.Render("  no parts"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Parts))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		name := m.Parts[i]
		n := len(m.Layout[name].Fixtures)
		line := fmt.Sprintf("%-16s %s", name, listDimStyle.Render(fmt.Sprintf("%d fixtures", n)))
		switch {
		case i == m.Cursor:
			list.WriteString(listSelectedStyle.Render("▸ " + line))
		case n == 0:
			list.WriteString(listDimStyle.Render("  " + line))
		default:
			list.WriteString(listNormalStyle.Render("  " + line))
		}
		list.WriteString("\n")
	}

	detail := partTable(m.Layout[m.Parts[m.Cursor]])
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", detail))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Parts))))

	return b.String()
}

// partTable renders the fixtures of one part with their running offset
// from the start of the part.
func partTable(pl kio.PartLayout) string {
	rows := [][]string{{"", "padding", "", fmt.Sprintf("%g", pl.Padding)}}
	at := pl.Padding
	for i, f := range pl.Fixtures {
		rows = append(rows, []string{fmt.Sprint(i + 1), f.Fixture, fmt.Sprintf("%g", at), fmt.Sprintf("%g", f.Width)})
		at += f.Width
	}
	rows = append(rows, []string{"", "total", "", fmt.Sprintf("%g", at)})

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("#", "Fixture", "At", "Width").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleTableHeader
			}
			if row == 0 || row == len(rows)-1 {
				return listDimStyle
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tobiaswren/mapforge/pkg/world"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// WorldListModel - Interactive world selection
// =============================================================================

// worldEntry summarizes one world file for the picker table.
type worldEntry struct {
	Path  string
	ID    string
	Name  string
	Rooms int
	Zones int
	Err   error // load failure, entry shown dimmed and unselectable
}

// loadWorldEntries scans dir for world JSON files. Files that fail to parse
// still show up so the user can see what is broken.
func loadWorldEntries(dir string) ([]worldEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	entries := make([]worldEntry, 0, len(paths))
	for _, path := range paths {
		base := filepath.Base(path)
		entry := worldEntry{
			Path: path,
			ID:   strings.TrimSuffix(base, filepath.Ext(base)),
		}

		w, err := world.ReadWorldFile(path)
		if err != nil {
			entry.Err = err
		} else {
			entry.Name = w.Name
			entry.Rooms = len(w.Rooms)
			zones := map[string]bool{}
			for _, r := range w.Rooms {
				if r.Zone != "" {
					zones[r.Zone] = true
				}
			}
			entry.Zones = len(zones)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WorldListModel is the bubbletea model for interactive world selection.
type WorldListModel struct {
	Worlds   []worldEntry
	Cursor   int
	Selected *worldEntry
	Height   int
	Offset   int
}

// NewWorldListModel creates a new world list model.
func NewWorldListModel(worlds []worldEntry) WorldListModel {
	return WorldListModel{
		Worlds: worlds,
		Height: 15,
	}
}

func (m WorldListModel) Init() tea.Cmd {
	return nil
}

func (m WorldListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Worlds)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			entry := m.Worlds[m.Cursor]
			if entry.Err != nil {
				return m, nil
			}
			m.Selected = &entry
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m WorldListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select World"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Worlds) {
		end = len(m.Worlds)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Worlds[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		name := e.Name
		if name == "" {
			name = "—"
		}
		rooms, zones := "—", "—"
		if e.Err == nil {
			rooms = strconv.Itoa(e.Rooms)
			zones = strconv.Itoa(e.Zones)
		} else {
			name = "unreadable"
		}
		rows = append(rows, []string{cursor, e.ID, name, rooms, zones})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "World", "Name", "Rooms", "Zones").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Worlds) {
				return lipgloss.NewStyle()
			}
			e := m.Worlds[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if e.Err != nil {
				return base.Foreground(colorDim)
			}
			if isCurrent {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Worlds))))

	return b.String()
}

// pickWorld runs the interactive picker over dir and returns the chosen
// world file path, or "" when the user quits without selecting.
func pickWorld(ctx context.Context, dir string) (string, error) {
	entries, err := loadWorldEntries(dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no world files in %s", dir)
	}

	p := tea.NewProgram(NewWorldListModel(entries), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("world picker: %w", err)
	}

	m, ok := final.(WorldListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return m.Selected.Path, nil
}

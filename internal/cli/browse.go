package cli

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/yannaql/yannaql/internal/database"
	"github.com/yannaql/yannaql/internal/evaluator"
	"github.com/yannaql/yannaql/internal/parser"
	"github.com/yannaql/yannaql/internal/term"
	"github.com/yannaql/yannaql/internal/util"
)

type browseConfig struct {
	dataDir   string
	inputPath string
}

func newBrowseCommand() *cobra.Command {
	cfg := &browseConfig{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively step through an input file's queries and their answers",
		Long: `browse opens a terminal UI listing every query parsed from the input
file; selecting one evaluates it on demand against the dataset and
renders its answer table (or boolean verdict).`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBrowse(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.inputPath, "input", "input.txt", "Path to the query input file")
	cmd.Flags().StringVar(&cfg.dataDir, "data", "data", "Directory holding the relation CSVs")

	return cmd
}

func runBrowse(cfg *browseConfig) error {
	if !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse requires an interactive terminal; use 'yannaql run' for non-interactive output")
	}

	db, err := database.LoadCSV(cfg.dataDir)
	if err != nil {
		return err
	}

	result, err := parser.ParseFile(cfg.inputPath)
	if err != nil {
		return util.WrapError("read "+cfg.inputPath, err)
	}

	if len(result.Queries) == 0 {
		return fmt.Errorf("no queries parsed from %s", cfg.inputPath)
	}

	m := newBrowseModel(result.Queries, db)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return util.WrapError("run browser", err)
	}

	return nil
}

var (
	browseTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	browseSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	browseDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	browseHeaderStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	browseErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// evaluatedMsg carries the outcome of evaluating the selected query, so
// evaluation never blocks the UI loop.
type evaluatedMsg struct {
	index  int
	result evaluator.Result
	err    error
}

type browseModel struct {
	queries  []term.Query
	db       *database.Database
	eval     *evaluator.Evaluator
	cursor   int
	selected int
	result   *evaluator.Result
	err      error
	loading  bool
}

func newBrowseModel(queries []term.Query, db *database.Database) *browseModel {
	return &browseModel{
		queries:  queries,
		db:       db,
		eval:     evaluator.New(nil),
		selected: -1,
	}
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.queries)-1 {
				m.cursor++
			}
		case "enter":
			m.loading = true
			m.err = nil

			return m, m.evaluateSelected(m.cursor)
		}

	case evaluatedMsg:
		m.loading = false

		if msg.index != m.cursor {
			return m, nil
		}

		m.selected = msg.index
		m.err = msg.err

		if msg.err == nil {
			m.result = &msg.result
		}
	}

	return m, nil
}

func (m *browseModel) evaluateSelected(index int) tea.Cmd {
	query := m.queries[index]

	return func() tea.Msg {
		res, err := m.eval.Evaluate(query, m.db)
		return evaluatedMsg{index: index, result: res, err: err}
	}
}

func (m *browseModel) View() tea.View {
	var b strings.Builder

	b.WriteString(browseTitleStyle.Render("yannaql browser") + "\n\n")

	for i, q := range m.queries {
		marker := "  "
		line := fmt.Sprintf("%d: %s", i+1, q.String())

		if i == m.cursor {
			marker = "> "
			line = browseSelectedStyle.Render(line)
		}

		b.WriteString(marker + line + "\n")
	}

	b.WriteString("\n" + browseDimStyle.Render("up/down to move, enter to evaluate, q to quit") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(browseDimStyle.Render("evaluating...") + "\n")
	case m.err != nil:
		b.WriteString(browseErrorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
	case m.result != nil && m.selected == m.cursor:
		b.WriteString(m.renderResult(*m.result))
	}

	v := tea.NewView(b.String())
	v.AltScreen = true

	return v
}

func (m *browseModel) renderResult(res evaluator.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("acyclic: %t\n", res.Acyclic))

	if res.Boolean != nil {
		b.WriteString(fmt.Sprintf("answer: %t\n", *res.Boolean))
		return b.String()
	}

	if res.Answer.NumCols() == 0 {
		return b.String()
	}

	b.WriteString(browseHeaderStyle.Render(strings.Join(res.Answer.Schema, "\t")) + "\n")

	for r := 0; r < res.Answer.NumRows(); r++ {
		b.WriteString(strings.Join(res.Answer.Row(r), "\t") + "\n")
	}

	return b.String()
}

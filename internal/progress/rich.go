package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)

// Rich renders spinner, bar and ETA panels with a bubbletea program that
// owns the output until Stop.
type Rich struct {
	out      io.Writer
	interval time.Duration
	program  *tea.Program
	done     chan struct{}
}

var _ Renderer = (*Rich)(nil)

// NewRich returns an interactive renderer writing to out.
func NewRich(out io.Writer) *Rich {
	return &Rich{out: out, interval: DefaultInterval}
}

func (r *Rich) Start(snap SnapshotFunc) {
	r.program = tea.NewProgram(newModel(snap, r.interval),
		tea.WithOutput(r.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()
}

// Stop asks the program to quit and waits until it has restored the terminal.
func (r *Rich) Stop() {
	if r.program == nil {
		return
	}
	select {
	case <-r.done:
	default:
		r.program.Quit()
		<-r.done
	}
	r.program = nil
}

func (r *Rich) Summary(final Snapshot) {
	lines := []string{titleStyle.Render("Summary")}
	for _, row := range SummaryRows(final) {
		value := row.Value
		switch {
		case row.Label == "Successful":
			value = okStyle.Render(value)
		case row.Label == "Failed" && final.Failed > 0:
			value = failStyle.Render(value)
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-18s", row.Label))+" "+value)
	}
	fmt.Fprintln(r.out, panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

type tickMsg time.Time

type model struct {
	snap     SnapshotFunc
	interval time.Duration
	spinner  spinner.Model
	bar      bprogress.Model
	current  Snapshot
}

func newModel(snap SnapshotFunc, interval time.Duration) model {
	return model{
		snap:     snap,
		interval: interval,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle)),
		bar:      bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40)),
		current:  snap(),
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.current = m.snap()
		return m, m.tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		w := msg.Width - 20
		if w > 60 {
			w = 60
		}
		if w < 10 {
			w = 10
		}
		m.bar.Width = w
	}
	return m, nil
}

func (m model) View() string {
	sn := m.current
	head := fmt.Sprintf("%s %s %s", m.spinner.View(), titleStyle.Render("Making files public"),
		m.bar.ViewAs(sn.Percent()))

	counts := strings.Join([]string{
		labelStyle.Render("Processed ") + fmt.Sprintf("%s/%s", humanize.Comma(int64(sn.Processed)), humanize.Comma(int64(sn.Total))),
		labelStyle.Render("OK ") + okStyle.Render(humanize.Comma(int64(sn.Success))),
		labelStyle.Render("Failed ") + failStyle.Render(humanize.Comma(int64(sn.Failed))),
	}, "   ")
	timing := strings.Join([]string{
		labelStyle.Render("Elapsed ") + formatDuration(sn.Elapsed),
		labelStyle.Render("ETA ") + sn.ETAString(),
		labelStyle.Render("Rate ") + fmt.Sprintf("%.1f/s", sn.Rate()),
	}, "   ")
	where := labelStyle.Render("Dir ") + orDash(sn.CurrentDir) + "   " + labelStyle.Render("File ") + orDash(sn.CurrentFile)

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, head, counts, timing, where)) + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

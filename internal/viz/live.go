// Package viz replays a recorded run in the terminal: ground track on
// an ASCII canvas alongside course-tracking charts.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/usvsim/internal/marine"
	"github.com/san-kum/usvsim/internal/sim"
)

const (
	canvasWidth  = 60
	canvasHeight = 20
	chartWidth   = 50
	chartHeight  = 8

	// wall-clock seconds a full replay should take, stride permitting
	replaySeconds = 45
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Recorder collects every tick of a run for replay.
type Recorder struct {
	Ticks []marine.Tick
}

func NewRecorder(capacity int) *Recorder {
	return &Recorder{Ticks: make([]marine.Tick, 0, capacity)}
}

func (r *Recorder) OnTick(tk marine.Tick) {
	r.Ticks = append(r.Ticks, tk)
}

type TickMsg time.Time

// Model replays a recorded run.
type Model struct {
	scenario  string
	ticks     []marine.Tick
	playHead  int
	stride    int
	running   bool
	frameRate int
}

func NewModel(scenario string, rec *Recorder, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	// short recordings keep stride 1 and just replay slower
	stride := len(rec.Ticks) / (frameRate * replaySeconds)
	if stride < 1 {
		stride = 1
	}
	return Model{
		scenario:  scenario,
		ticks:     rec.Ticks,
		stride:    stride,
		running:   true,
		frameRate: frameRate,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.playHead = 0
		case "[":
			m.playHead -= 10 * m.stride
			if m.playHead < 0 {
				m.playHead = 0
			}
		case "]":
			m.playHead += 10 * m.stride
			if m.playHead >= len(m.ticks) {
				m.playHead = len(m.ticks) - 1
			}
		}
	case TickMsg:
		if m.running && m.playHead < len(m.ticks)-m.stride {
			m.playHead += m.stride
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.ticks) == 0 {
		return "no data"
	}
	tk := m.ticks[m.playHead]

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.scenario)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	} else if m.playHead >= len(m.ticks)-m.stride {
		status = "DONE"
	}
	s.WriteString(status + "\n\n")

	course := make([]float64, 0, m.playHead/m.stride+1)
	desired := make([]float64, 0, m.playHead/m.stride+1)
	for i := 0; i <= m.playHead; i += m.stride {
		course = append(course, marine.Rad2Deg(m.ticks[i].Est.Course))
		desired = append(desired, marine.Rad2Deg(m.ticks[i].DesiredCourse))
	}
	if len(course) > 1 {
		chart := asciigraph.PlotMany([][]float64{desired, course},
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("course vs desired (deg)"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", tk.T)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.2f m/s", sim.SpeedOverGround(tk.X))) + "\n")
	s.WriteString(labelStyle.Render("Course") + valueStyle.Render(fmt.Sprintf("%.1f deg", marine.Rad2Deg(sim.CourseAngle(tk.X)))) + "\n")
	s.WriteString(labelStyle.Render("Heading") + valueStyle.Render(fmt.Sprintf("%.1f deg", marine.Rad2Deg(marine.Wrap(tk.X[marine.StatePsi])))) + "\n")
	s.WriteString(labelStyle.Render("Props") + valueStyle.Render(fmt.Sprintf("%.2f / %.2f", tk.Prop[0], tk.Prop[1])) + "\n")
	s.WriteString(labelStyle.Render("Yaw cmd") + valueStyle.Render(fmt.Sprintf("%.1f Nm", tk.YawMoment)) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause R:Restart [ ]:Scrub Q:Quit"))

	track := canvasStyle.Render(m.drawTrack())
	return lipgloss.JoinHorizontal(lipgloss.Top, track, statsStyle.Render(s.String()))
}

// drawTrack rasterizes the north-east ground track up to the playhead,
// north up, east right.
func (m Model) drawTrack() string {
	canvas := make([][]rune, canvasHeight)
	for i := range canvas {
		canvas[i] = make([]rune, canvasWidth)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	minN, maxN := m.ticks[0].X[marine.StateNorth], m.ticks[0].X[marine.StateNorth]
	minE, maxE := m.ticks[0].X[marine.StateEast], m.ticks[0].X[marine.StateEast]
	for _, tk := range m.ticks {
		n, e := tk.X[marine.StateNorth], tk.X[marine.StateEast]
		if n < minN {
			minN = n
		}
		if n > maxN {
			maxN = n
		}
		if e < minE {
			minE = e
		}
		if e > maxE {
			maxE = e
		}
	}
	rangeN, rangeE := maxN-minN, maxE-minE
	if rangeN == 0 {
		rangeN = 1
	}
	if rangeE == 0 {
		rangeE = 1
	}

	for i := 0; i <= m.playHead; i += m.stride {
		n, e := m.ticks[i].X[marine.StateNorth], m.ticks[i].X[marine.StateEast]
		px := int((e - minE) / rangeE * float64(canvasWidth-1))
		py := canvasHeight - 1 - int((n-minN)/rangeN*float64(canvasHeight-1))
		if px >= 0 && px < canvasWidth && py >= 0 && py < canvasHeight {
			canvas[py][px] = '.'
		}
	}

	// vessel marker at the playhead
	n, e := m.ticks[m.playHead].X[marine.StateNorth], m.ticks[m.playHead].X[marine.StateEast]
	px := int((e - minE) / rangeE * float64(canvasWidth-1))
	py := canvasHeight - 1 - int((n-minN)/rangeN*float64(canvasHeight-1))
	if px >= 0 && px < canvasWidth && py >= 0 && py < canvasHeight {
		canvas[py][px] = '@'
	}

	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", canvasWidth) + "+\n")
	for _, row := range canvas {
		b.WriteString("|" + string(row) + "|\n")
	}
	b.WriteString("+" + strings.Repeat("-", canvasWidth) + "+")
	return b.String()
}

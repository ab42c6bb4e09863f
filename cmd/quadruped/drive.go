package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/quadruped/pkg/drive"
	"github.com/gwillem/quadruped/pkg/motion"
	"github.com/gwillem/quadruped/pkg/robot"
)

type DriveCommand struct {
	Hz    int     `long:"hz" description:"Control loop frequency (default from config)"`
	Speed float64 `long:"speed" default:"1" description:"Initial walk speed"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
	speedStep    = 0.25
)

// Joint colors, femur and knee of a leg share a hue
var jointColors = [robot.NumJoints]string{
	robot.FrontRightFemur: "196", // red
	robot.FrontRightKnee:  "210",
	robot.FrontLeftFemur:  "208", // orange
	robot.FrontLeftKnee:   "222",
	robot.BackRightFemur:  "46", // green
	robot.BackRightKnee:   "120",
	robot.BackLeftFemur:   "51", // cyan
	robot.BackLeftKnee:    "159",
}

// Single key gestures and poses
var (
	gestureKeys = map[string]string{
		"1": motion.GestureWave,
		"2": motion.GestureBow,
		"3": motion.GestureShake,
		"4": motion.GestureWiggle,
	}
	poseKeys = map[string]string{
		"t": motion.PoseStand,
		"y": motion.PoseSit,
		"u": motion.PoseCrouch,
		"i": motion.PoseTall,
		"n": motion.PoseNeutral,
	}
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

type driveModel struct {
	drv        *drive.Driver
	chart      *streamlinechart.Model
	width      int      // terminal width
	height     int      // terminal height
	logs       []string // last N log messages
	quitting   bool
	speed      float64
	detached   bool
	state      drive.State
	lastAngles *robot.Angles // previous angles to detect movement
}

func (m *driveModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// hasMovement checks if any joint angle has changed from the last state
func (m *driveModel) hasMovement(angles robot.Angles) bool {
	return m.lastAngles == nil || *m.lastAngles != angles
}

// Messages from the driver
type stateMsg drive.State
type logMsg string

func waitForState(drv *drive.Driver) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-drv.States())
	}
}

func waitForLog(drv *drive.Driver) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-drv.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *driveModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-legendHeight-footerHeight-borderSize, 10)
	return width, height
}

func (m *driveModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialDriveModel(drv *drive.Driver, speed float64) driveModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(robot.DefaultMinAngle, robot.DefaultMaxAngle),
	)

	for _, j := range robot.AllJoints() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[j]))
		chart.SetDataSetStyles(j.String(), runes.ThinLineStyle, style)
	}

	return driveModel{
		drv:   drv,
		chart: &chart,
		speed: speed,
	}
}

func (m driveModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.drv),
		waitForLog(m.drv),
	)
}

// handleKey maps a key press to a controller command.
func (m *driveModel) handleKey(key string) {
	speed := m.speed
	switch key {
	case "w", "up":
		m.drv.Do(func(c *motion.Controller) { c.Forward(speed) })
	case "s", "down":
		m.drv.Do(func(c *motion.Controller) { c.Backward(speed) })
	case "a", "left":
		m.drv.Do(func(c *motion.Controller) { c.Left(speed) })
	case "d", "right":
		m.drv.Do(func(c *motion.Controller) { c.Right(speed) })
	case " ":
		m.drv.Do(func(c *motion.Controller) { c.StopWalk() })
	case "esc":
		m.drv.Do(func(c *motion.Controller) { c.StopAll() })
	case "c":
		m.drv.Do(func(c *motion.Controller) { c.CenterAll() })
	case "+", "=":
		m.speed = min(m.speed+speedStep, 4)
	case "-":
		m.speed = max(m.speed-speedStep, speedStep)
	case "x":
		m.detached = !m.detached
		if m.detached {
			m.drv.Do(func(c *motion.Controller) { c.DetachAll() })
		} else {
			m.drv.Do(func(c *motion.Controller) { c.AttachAll() })
		}
	default:
		if name, ok := gestureKeys[key]; ok {
			m.drv.Do(func(c *motion.Controller) { c.EnqueueSequence(name) })
		} else if name, ok := poseKeys[key]; ok {
			m.drv.Do(func(c *motion.Controller) { c.SetPose(name, false) })
		}
	}
}

func (m driveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		m.handleKey(msg.String())
		return m, nil

	case stateMsg:
		m.state = drive.State(msg)
		// Only update chart if there's movement (freeze when idle)
		if m.hasMovement(m.state.Angles) {
			for _, j := range robot.AllJoints() {
				m.chart.PushDataSet(j.String(), m.state.Angles[j])
			}
			m.chart.DrawAll()
			angles := m.state.Angles
			m.lastAngles = &angles
		}
		return m, waitForState(m.drv)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.drv)
	}

	return m, nil
}

func (m driveModel) View() string {
	if m.quitting {
		return "Drive stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Quadruped Drive"))
	sb.WriteString(fmt.Sprintf(" - %d Hz  ", m.drv.Hz()))
	sb.WriteString(modeStyle.Render(m.state.Mode.String()))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  speed %.2f  phase %.2f", m.speed, m.state.Phase)))
	if m.detached {
		sb.WriteString(statusStyle.Render("  [detached]"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render(strings.Join([]string{
			"w/a/s/d walk  space stop  esc stop all  +/- speed",
			"1 wave  2 bow  3 shake  4 wiggle",
			"t stand  y sit  u crouch  i tall  n neutral  c center",
			"x detach/attach  q quit",
		}, "\n"))
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, j := range robot.AllJoints() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[j])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+j.Code())
	}
	return strings.Join(items, "  ")
}

func (c *DriveCommand) Execute(args []string) error {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	drv, err := newDriver(cfg, c.Hz)
	if err != nil {
		log.Fatalf("Failed to create driver: %v", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := drv.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Driver error: %v", err)
		}
	}()

	p := tea.NewProgram(initialDriveModel(drv, c.Speed), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	// Release the joints before the sink closes
	cancel()
	<-done
	return nil
}

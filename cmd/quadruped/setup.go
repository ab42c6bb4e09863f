package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/quadruped/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	Port     string `long:"port" description:"Serial port of the servo bus (default: scan)"`
	BaudRate int    `long:"baud" default:"1000000" description:"Bus baud rate"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Quadruped Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━"))
	fmt.Println()

	// Step 1: Find the bus
	port := c.Port
	if port == "" {
		port = scanForBus(c.BaudRate)
	}

	bus, servos, err := connectToBus(port, c.BaudRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to bus: %v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	servoMap := make(map[int]*feetech.Servo)
	for _, s := range servos {
		servoMap[s.ID] = feetech.NewServo(bus, s.ID, s.Model)
	}

	// Step 2: Assign joints
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Identify Joints ━━━"))
	fmt.Println()
	ids := assignJoints(servoMap)

	// Step 3: Record range of motion
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Record Range of Motion ━━━"))
	fmt.Println()
	cal := make(robot.Calibration, robot.NumJoints)
	for _, j := range robot.AllJoints() {
		jc := robot.DefaultJointCalibration(j)
		jc.ID = ids[j]
		jc.DutyPeriod = 0
		cal[j] = jc
	}
	for _, servo := range servoMap {
		servo.Disable(context.Background())
	}
	minPositions, maxPositions := recordRanges(robot.NewFeetechSink(bus, cal))

	// Step 4: Inverted joints
	inverted := selectInverted()

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		cfg = robot.DefaultConfig()
	}
	cfg.Output = robot.OutputConfig{Kind: robot.OutputFeetech, Port: port, BaudRate: c.BaudRate}
	for _, j := range robot.AllJoints() {
		jc := cal[j]
		jc.Inverted = slices.Contains(inverted, j)
		jc.OutputMin = minPositions[j]
		jc.OutputMax = maxPositions[j]
		cal[j] = jc
	}
	cfg.Joints = cal

	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Drive the robot with: " + headerStyle.Render("quadruped drive"))

	return nil
}

func scanForBus(baudRate int) string {
	fmt.Println("Scanning for the servo bus...")
	fmt.Println()

	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	var found []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		bus, _, err := connectToBus(port, baudRate)
		if err != nil {
			continue
		}
		bus.Close()
		fmt.Printf("  Found %d servos on %s\n", robot.NumJoints, port)
		found = append(found, port)
	}

	switch len(found) {
	case 0:
		fmt.Printf("No bus with %d servos found.\n", robot.NumJoints)
		fmt.Println("Make sure the robot is connected and powered on.")
		os.Exit(1)
	case 1:
		return found[0]
	}

	var port string
	options := make([]huh.Option[string], 0, len(found))
	for _, p := range found {
		options = append(options, huh.NewOption(p, p))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the robot on?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return port
}

func connectToBus(port string, baudRate int) (*feetech.Bus, []feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: baudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	servos, err := bus.Scan(ctx, 1, robot.NumJoints)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	if !isQuadruped(servos) {
		bus.Close()
		return nil, nil, fmt.Errorf("expected %d servos with IDs 1-%d, found %d", robot.NumJoints, robot.NumJoints, len(servos))
	}

	return bus, servos, nil
}

func isQuadruped(servos []feetech.FoundServo) bool {
	if len(servos) != robot.NumJoints {
		return false
	}

	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}

	for i := 1; i <= robot.NumJoints; i++ {
		if !ids[i] {
			return false
		}
	}

	return true
}

// assignJoints wiggles every servo and asks which joint it drives.
func assignJoints(servoMap map[int]*feetech.Servo) [robot.NumJoints]int {
	var ids [robot.NumJoints]int
	remaining := robot.AllJoints()

	for id := 1; id <= robot.NumJoints; id++ {
		if len(remaining) == 1 {
			ids[remaining[0]] = id
			fmt.Printf("  Servo %d is %s\n", id, remaining[0])
			break
		}

		wiggle(servoMap[id])

		options := make([]huh.Option[robot.JointID], 0, len(remaining))
		for _, j := range remaining {
			options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", j, j.Code()), j))
		}

		var joint robot.JointID
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[robot.JointID]().
					Title(fmt.Sprintf("Which joint is servo %d?", id)).
					Description("The joint that just wiggled").
					Options(options...).
					Value(&joint),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Println()
			os.Exit(0)
		}

		ids[joint] = id
		remaining = slices.DeleteFunc(remaining, func(j robot.JointID) bool { return j == joint })
	}

	return ids
}

func wiggle(servo *feetech.Servo) {
	ctx := context.Background()

	originalPos, err := servo.Position(ctx)
	if err != nil {
		fmt.Printf("  Error reading position: %v\n", err)
		return
	}

	if err := servo.Enable(ctx); err != nil {
		fmt.Printf("  Error enabling servo: %v\n", err)
		return
	}

	// Single gentle, slow movement
	wiggleAmount := 30
	moveTimeMs := 500
	servo.SetPositionWithTime(ctx, originalPos+wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	servo.SetPositionWithTime(ctx, originalPos-wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	servo.SetPositionWithTime(ctx, originalPos, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	servo.Disable(ctx)
}

// recordRanges tracks raw positions while the user moves every joint through its range.
func recordRanges(sink *robot.FeetechSink) (minPositions, maxPositions [robot.NumJoints]int) {
	fmt.Println("Move each joint from 0° to 180°.")
	fmt.Println("The raw position at 0° becomes the output minimum.")
	fmt.Println()

	positions, err := sink.ReadPositions(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading positions: %v\n", err)
		os.Exit(1)
	}
	var cur [robot.NumJoints]int
	for _, j := range robot.AllJoints() {
		cur[j] = positions[j]
		minPositions[j] = positions[j]
		maxPositions[j] = positions[j]
	}

	model := calibrationModel{
		sink:         sink,
		curPositions: cur,
		minPositions: minPositions,
		maxPositions: maxPositions,
	}
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running calibration: %v\n", err)
		os.Exit(1)
	}

	cm := finalModel.(calibrationModel)
	return cm.minPositions, cm.maxPositions
}

func selectInverted() []robot.JointID {
	options := make([]huh.Option[robot.JointID], 0, robot.NumJoints)
	for _, j := range robot.AllJoints() {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", j, j.Code()), j))
	}

	var inverted []robot.JointID
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[robot.JointID]().
				Title("Which joints are mounted mirrored?").
				Description("Their angles are reversed before output").
				Options(options...).
				Value(&inverted),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return inverted
}

// Calibration TUI model
type calibrationModel struct {
	sink         *robot.FeetechSink
	curPositions [robot.NumJoints]int
	minPositions [robot.NumJoints]int
	maxPositions [robot.NumJoints]int
	quitting     bool
}

type tickMsg time.Time

func (m calibrationModel) Init() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		if positions, err := m.sink.ReadPositions(context.Background()); err == nil {
			for j, pos := range positions {
				m.curPositions[j] = pos
				m.minPositions[j] = min(m.minPositions[j], pos)
				m.maxPositions[j] = max(m.maxPositions[j], pos)
			}
		}
		return m, tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableJointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, robot.NumJoints)
	ranges := make([]int, 0, robot.NumJoints)
	for _, j := range robot.AllJoints() {
		rangeSize := m.maxPositions[j] - m.minPositions[j]
		ranges = append(ranges, rangeSize)
		rows = append(rows, []string{
			j.String(),
			j.Code(),
			fmt.Sprintf("%d", m.curPositions[j]),
			fmt.Sprintf("%d", m.minPositions[j]),
			fmt.Sprintf("%d", m.maxPositions[j]),
			fmt.Sprintf("%d", rangeSize),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Code", "Current", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableJointStyle
			case 2:
				return tableCurrentStyle
			case 5:
				if row >= 0 && row < len(ranges) && ranges[row] > 1000 {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))

	return sb.String()
}

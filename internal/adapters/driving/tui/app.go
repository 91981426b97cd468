package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tutorforge/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
)

// eventBuffer bounds the stage events queued between the pipeline and the UI.
const eventBuffer = 16

// stageOrder is the display order of pipeline stages.
var stageOrder = []domain.Stage{
	domain.StageClean,
	domain.StageGlossary,
	domain.StageRewrite,
	domain.StageCritic,
	domain.StageImages,
}

// stageLine is the display state of one stage.
type stageLine struct {
	iteration int
	message   string
	started   bool
}

// App is the conversion progress view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	req    domain.ConvertRequest
	ctx    context.Context
	cancel context.CancelFunc

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	status  *status.Bar

	events  chan domain.StageEvent
	lines   map[domain.Stage]*stageLine
	current domain.Stage
	started time.Time

	result    *domain.ConvertResult
	err       error
	done      bool
	cancelled bool
	width     int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a progress view that runs req when started.
func NewApp(ports *Ports, req domain.ConvertRequest) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.NewStyles(styles.ThemeFor(req.Style.OrDefault()))
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Active

	lines := make(map[domain.Stage]*stageLine, len(stageOrder))
	for _, stage := range stageOrder {
		lines[stage] = &stageLine{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		ports:   ports,
		req:     req,
		ctx:     ctx,
		cancel:  cancel,
		styles:  s,
		keymap:  km,
		spinner: sp,
		status:  status.NewBar(s, km),
		events:  make(chan domain.StageEvent, eventBuffer),
		lines:   lines,
		started: time.Now(),
		width:   80,
	}, nil
}

// WithContext derives the conversion context from ctx.
func (a *App) WithContext(ctx context.Context) *App {
	a.cancel()
	a.ctx, a.cancel = context.WithCancel(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.convertCmd(), a.waitForEvent())
}

// convertCmd runs the conversion and reports its outcome.
func (a *App) convertCmd() tea.Cmd {
	return func() tea.Msg {
		sink := driven.ProgressFunc(func(e domain.StageEvent) {
			select {
			case a.events <- e:
			case <-a.ctx.Done():
			}
		})
		result, err := a.ports.Convert.Convert(a.ctx, a.req, sink)
		close(a.events)
		return messages.ConvertFinished{Result: result, Err: err}
	}
}

// waitForEvent delivers the next stage event, or nothing once the
// conversion has finished.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-a.events
		if !ok {
			return nil
		}
		return messages.StageReported{Event: e}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.status.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if keymap.Matches(key, a.keymap.Quit) || keymap.Matches(key, a.keymap.Cancel) {
			if !a.done {
				a.cancelled = true
				a.cancel()
				a.status.SetState(status.StateCancelled)
			}
			return a, tea.Quit
		}
		return a, nil

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.StageReported:
		a.applyEvent(msg.Event)
		return a, a.waitForEvent()

	case messages.ConvertFinished:
		a.finish(msg.Result, msg.Err)
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) applyEvent(e domain.StageEvent) {
	if e.RunID != "" {
		a.status.SetRunID(shortID(e.RunID))
	}
	a.current = e.Stage

	if line, ok := a.lines[e.Stage]; ok {
		line.started = true
		line.iteration = e.Iteration
		line.message = e.Message
	}

	label := string(e.Stage)
	if e.Iteration > 0 {
		label = fmt.Sprintf("%s iteration %d", e.Stage, e.Iteration)
	}
	a.status.SetMessage(label)
}

func (a *App) finish(result *domain.ConvertResult, err error) {
	a.done = true
	a.result = result
	a.err = err

	switch {
	case a.cancelled || errors.Is(err, context.Canceled):
		a.cancelled = true
		a.status.SetState(status.StateCancelled)
	case err != nil:
		a.status.SetState(status.StateFailed)
		a.status.SetMessage(err.Error())
	default:
		a.current = domain.StageDone
		a.status.SetState(status.StateDone)
		if result != nil {
			a.status.SetRunID(shortID(result.RunID))
		}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	title := a.req.Title
	if title == "" {
		title = a.req.Source
	}
	if title == "" {
		title = "text input"
	}
	b.WriteString(a.styles.Title.Render("TutorForge"))
	b.WriteString(a.styles.Muted.Render(fmt.Sprintf("  %s for %s", title, a.req.Style.OrDefault())))
	b.WriteString("\n\n")

	for _, stage := range stageOrder {
		b.WriteString(a.renderStage(stage))
		b.WriteString("\n")
	}

	if a.done && a.err == nil && a.result != nil {
		b.WriteString("\n")
		b.WriteString(a.styles.Border.Render(a.renderSummary()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.status.View())
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderStage(stage domain.Stage) string {
	line := a.lines[stage]
	name := string(stage)
	if line.iteration > 0 {
		name = fmt.Sprintf("%s (iteration %d)", stage, line.iteration)
	}
	detail := ""
	if line.message != "" {
		detail = a.styles.Muted.Render("  " + line.message)
	}

	switch {
	case !line.started:
		if a.done && a.err == nil {
			return a.styles.Muted.Render("  - " + name + " (skipped)")
		}
		return a.styles.Muted.Render("  · " + name)
	case stage == a.current && !a.done:
		return a.spinner.View() + " " + a.styles.Active.Render(name) + detail
	case stage == a.current && a.err != nil:
		return a.styles.Error.Render("  ✗ "+name) + detail
	default:
		return a.styles.Success.Render("  ✓ "+name) + detail
	}
}

func (a *App) renderSummary() string {
	r := a.result
	lines := []string{
		a.styles.Subtitle.Render(r.Title),
		fmt.Sprintf("status:     %s after %d iteration(s)", r.Status, r.Iterations),
		fmt.Sprintf("images:     %d", r.Images),
		fmt.Sprintf("elapsed:    %s", time.Since(a.started).Round(time.Second)),
	}
	for _, p := range []string{r.MarkdownPath, r.HTMLPath, r.PDFPath} {
		if p != "" {
			lines = append(lines, "written:    "+p)
		}
	}
	return strings.Join(lines, "\n")
}

// Result returns the conversion result once finished.
func (a *App) Result() *domain.ConvertResult {
	return a.result
}

// Err returns the conversion error, or ErrCancelled if the user quit early.
func (a *App) Err() error {
	if a.cancelled {
		return ErrCancelled
	}
	return a.err
}

// Done reports whether the conversion has finished.
func (a *App) Done() bool {
	return a.done
}

// Run shows the progress view until the conversion finishes and returns
// its result.
func Run(ctx context.Context, ports *Ports, req domain.ConvertRequest, opts ...tea.ProgramOption) (*domain.ConvertResult, error) {
	app, err := NewApp(ports, req)
	if err != nil {
		return nil, err
	}
	app.WithContext(ctx)
	defer app.cancel()

	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}
	return app.Result(), app.Err()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

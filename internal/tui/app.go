// Package tui implements the identiq terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/identiq/identiq/internal/events"
	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/tui/components"
	"github.com/identiq/identiq/internal/tui/styles"
	"github.com/identiq/identiq/internal/usercount"
)

// UserStore is the user data the dashboard reads and deletes.
type UserStore interface {
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
}

// Options configure the dashboard program.
type Options struct {
	Session *theme.Session

	// Users may be nil, in which case sample users are shown.
	Users     UserStore
	Events    events.Repository
	UserCount usercount.Fetcher

	WelcomeName string
	// BaseTheme names a styles.Themes entry.
	BaseTheme string
	Logger    zerolog.Logger
}

// Run launches the dashboard and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return errors.New("theme session is required")
	}
	// The first frame must already carry the resolved theme.
	if opts.Session.State() != theme.StateResolved {
		opts.Session.Start(ctx)
	}

	program := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type viewID int

const (
	viewDashboard viewID = iota
	viewUsers
)

const (
	minWidth  = 60
	minHeight = 15
	chartBars = 24
)

type model struct {
	ctx    context.Context
	opts   Options
	logger zerolog.Logger
	keys   KeyMap

	width  int
	height int
	styles styles.Styles
	view   viewID
	now    time.Time

	catalog     []theme.Entry
	themeCursor int

	users       []*models.User
	usersLoaded bool
	userCursor  int

	count        int
	countLoaded  bool
	countSpinner spinner.Model

	welcome string
	typed   int

	status      string
	statusIsErr bool
}

func newModel(ctx context.Context, opts Options) model {
	if opts.UserCount == nil {
		opts.UserCount = usercount.Static(usercount.DefaultFallback)
	}
	name := strings.TrimSpace(opts.WelcomeName)
	if name == "" {
		name = "admin"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		ctx:          ctx,
		opts:         opts,
		logger:       opts.Logger,
		keys:         DefaultKeyMap(),
		view:         viewDashboard,
		now:          time.Now(),
		countSpinner: sp,
		welcome:      "welcome " + name,
	}
	m.restyle()

	// Start the cursor on the applied theme.
	for i, entry := range m.catalog {
		if entry.Selected {
			m.themeCursor = i
		}
	}
	return m
}

func (m *model) restyle() {
	_, palette := m.opts.Session.Current()
	m.styles = styles.ForPalette(m.opts.BaseTheme, palette)
	m.countSpinner.Style = m.styles.Accent
	m.catalog = m.opts.Session.Catalog()
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		typeTickCmd(),
		m.countSpinner.Tick,
		fetchUserCountCmd(m.ctx, m.opts.UserCount),
		loadUsersCmd(m.ctx, m.opts.Users),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case typeTickMsg:
		if m.typed < len([]rune(m.welcome)) {
			m.typed++
			return m, typeTickCmd()
		}
	case spinner.TickMsg:
		if m.countLoaded {
			return m, nil
		}
		var cmd tea.Cmd
		m.countSpinner, cmd = m.countSpinner.Update(msg)
		return m, cmd
	case userCountMsg:
		m.count = int(msg)
		m.countLoaded = true
	case usersLoadedMsg:
		m.usersLoaded = true
		if msg.Err != nil {
			m.setError(fmt.Sprintf("Failed to load users: %v", msg.Err))
			return m, nil
		}
		m.users = msg.Users
		m.clampUserCursor()
	case userDeletedMsg:
		return m.handleUserDeleted(msg)
	case themeChangedMsg:
		if msg.Err != nil {
			m.setError(msg.Err.Error())
			return m, nil
		}
		m.restyle()
		m.setStatus(fmt.Sprintf("Applied %s (%s)", msg.Resolution.ID, msg.Resolution.Color))
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.SwitchTab):
		switch msg.String() {
		case "1":
			m.view = viewDashboard
		case "2":
			m.view = viewUsers
		default:
			m.view = nextView(m.view)
		}
		return m, nil
	}

	if m.view == viewUsers {
		return m.handleUsersKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		if m.themeCursor > 0 {
			m.themeCursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.themeCursor < len(m.catalog)-1 {
			m.themeCursor++
		}
	case key.Matches(msg, m.keys.Apply):
		if m.themeCursor < len(m.catalog) {
			return m, selectThemeCmd(m.ctx, m.opts.Session, m.catalog[m.themeCursor].ID)
		}
	case key.Matches(msg, m.keys.Randomize):
		m.themeCursor = indexOf(m.catalog, theme.IDRandom)
		return m, randomizeThemeCmd(m.ctx, m.opts.Session)
	}
	return m, nil
}

func (m model) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.userCursor > 0 {
			m.userCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.userCursor < len(m.users)-1 {
			m.userCursor++
		}
	case key.Matches(msg, m.keys.Delete):
		if len(m.users) == 0 {
			return m, nil
		}
		target := m.users[m.userCursor]
		// Remove locally first; a failed delete reloads the list.
		m.users = append(append([]*models.User{}, m.users[:m.userCursor]...), m.users[m.userCursor+1:]...)
		m.clampUserCursor()
		m.setStatus(fmt.Sprintf("Deleted %s", target.Name))
		return m, deleteUserCmd(m.ctx, m.opts.Users, target)
	}
	return m, nil
}

func (m model) handleUserDeleted(msg userDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError(fmt.Sprintf("Delete failed: %v", msg.Err))
		return m, loadUsersCmd(m.ctx, m.opts.Users)
	}
	if m.opts.Events != nil {
		if err := events.LogUserDeleted(m.ctx, m.opts.Events, msg.ID, msg.Name); err != nil {
			m.logger.Warn().Err(err).Str("user_id", msg.ID).Msg("failed to record user deletion")
		}
	}
	return m, nil
}

func (m *model) clampUserCursor() {
	if m.userCursor >= len(m.users) {
		m.userCursor = len(m.users) - 1
	}
	if m.userCursor < 0 {
		m.userCursor = 0
	}
}

func (m *model) setStatus(msg string) {
	m.status = msg
	m.statusIsErr = false
}

func (m *model) setError(msg string) {
	m.status = msg
	m.statusIsErr = true
}

func nextView(current viewID) viewID {
	if current == viewDashboard {
		return viewUsers
	}
	return viewDashboard
}

func indexOf(entries []theme.Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return 0
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 {
		if m.width < minWidth || m.height < minHeight {
			return fmt.Sprintf("%s\n", strings.Join(m.smallViewLines(), "\n"))
		}
	}

	lines := []string{
		m.headerLine(),
		"",
		m.infoLine(),
		"",
	}

	switch m.view {
	case viewUsers:
		lines = append(lines, m.usersLines()...)
	default:
		lines = append(lines, m.dashboardLines()...)
	}

	if m.status != "" {
		style := m.styles.Muted
		if m.statusIsErr {
			style = m.styles.Error
		}
		lines = append(lines, "", style.Render(m.status))
	}

	actions := components.DashboardQuickActions()
	if m.view == viewUsers {
		actions = components.UsersQuickActions(len(m.users) > 0)
	}
	lines = append(lines, "", components.RenderQuickActionBar(m.styles, actions))

	return fmt.Sprintf("%s\n", strings.Join(lines, "\n"))
}

func (m model) smallViewLines() []string {
	message := fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)
	hint := fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)

	return []string{
		m.styles.Warning.Render(message),
		m.styles.Muted.Render(hint),
		m.styles.Muted.Render("Press q to quit."),
	}
}

func (m model) headerLine() string {
	tabs := []string{"Dashboard", "Users"}
	for i, tab := range tabs {
		if viewID(i) == m.view {
			tabs[i] = m.styles.Header.Render(tab)
		} else {
			tabs[i] = m.styles.Muted.Render(" " + tab + " ")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.Badge.Render("identiq"),
		" ",
		strings.Join(tabs, " "),
		"  ",
		components.RenderThemeStateBadge(m.styles, m.opts.Session.State()),
	)
}

// infoLine renders the greeting, user count and date.
func (m model) infoLine() string {
	greeting := string([]rune(m.welcome)[:m.typed])
	if m.typed < len([]rune(m.welcome)) {
		greeting += "|"
	}

	count := m.countSpinner.View() + " --"
	if m.countLoaded {
		count = fmt.Sprintf("%d", m.count)
	}

	return fmt.Sprintf("%s   %s %s   %s",
		m.styles.Title.Render(greeting),
		m.styles.Accent.Bold(true).Render(count),
		m.styles.Muted.Render("users"),
		m.styles.Muted.Render(m.now.Format("Monday, 2 Jan")),
	)
}

func (m model) dashboardLines() []string {
	current, _ := m.opts.Session.Current()

	cards := make([]components.ThemeCard, 0, len(m.catalog))
	for i, entry := range m.catalog {
		color := entry.Color
		if entry.IsRandom() && entry.Selected {
			color = current.Color
		}
		cards = append(cards, components.ThemeCard{
			Label:    entry.Label,
			Color:    color,
			Selected: entry.Selected,
			Focused:  i == m.themeCursor,
		})
	}

	return []string{
		m.styles.Title.Render("Themes"),
		components.RenderThemeGrid(m.styles, cards),
		m.styles.Muted.Render(fmt.Sprintf("Accent %s", current.Color)),
	}
}

func (m model) usersLines() []string {
	if !m.usersLoaded {
		return []string{m.styles.Muted.Render("Loading users...")}
	}

	rows := make([]components.UserRow, 0, len(m.users))
	for _, u := range m.users {
		rows = append(rows, components.UserRow{
			ID:         u.ID,
			Name:       u.Name,
			ThemeName:  u.ThemeName,
			ThemeColor: u.ThemeColor,
			CreatedAt:  u.CreatedAt,
		})
	}

	return []string{
		m.styles.Title.Render("User Data"),
		components.RenderUserList(m.styles, rows, m.userCursor),
		"",
		m.styles.Title.Render("Theme distribution"),
		components.RenderDistribution(m.styles, models.ThemeDistribution(m.users), chartBars),
	}
}

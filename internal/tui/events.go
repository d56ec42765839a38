package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/usercount"
)

// userCountMsg carries the fetched user count.
type userCountMsg int

// usersLoadedMsg contains the user list loaded on startup or after a failed delete.
type usersLoadedMsg struct {
	Users []*models.User
	Err   error
}

// userDeletedMsg reports the outcome of a delete issued optimistically.
type userDeletedMsg struct {
	ID   string
	Name string
	Err  error
}

// themeChangedMsg reports a completed select or randomize.
type themeChangedMsg struct {
	Resolution theme.Resolution
	Err        error
}

type tickMsg time.Time

type typeTickMsg struct{}

const typeInterval = 80 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func typeTickCmd() tea.Cmd {
	return tea.Tick(typeInterval, func(time.Time) tea.Msg {
		return typeTickMsg{}
	})
}

func fetchUserCountCmd(ctx context.Context, f usercount.Fetcher) tea.Cmd {
	return func() tea.Msg {
		return userCountMsg(<-usercount.FetchAsync(ctx, f))
	}
}

func loadUsersCmd(ctx context.Context, users UserStore) tea.Cmd {
	return func() tea.Msg {
		if users == nil {
			return usersLoadedMsg{Users: sampleUsers()}
		}
		list, err := users.List(ctx)
		return usersLoadedMsg{Users: list, Err: err}
	}
}

func deleteUserCmd(ctx context.Context, users UserStore, user *models.User) tea.Cmd {
	return func() tea.Msg {
		msg := userDeletedMsg{ID: user.ID, Name: user.Name}
		if users != nil {
			_, msg.Err = users.Delete(ctx, user.ID)
		}
		return msg
	}
}

func selectThemeCmd(ctx context.Context, session *theme.Session, id string) tea.Cmd {
	return func() tea.Msg {
		res, err := session.Select(ctx, id)
		return themeChangedMsg{Resolution: res, Err: err}
	}
}

func randomizeThemeCmd(ctx context.Context, session *theme.Session) tea.Cmd {
	return func() tea.Msg {
		return themeChangedMsg{Resolution: session.Randomize(ctx)}
	}
}

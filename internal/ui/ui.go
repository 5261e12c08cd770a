package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/filmhub/internal/controllers"
	"github.com/desertthunder/filmhub/internal/formatter"
	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/session"
	"github.com/desertthunder/filmhub/internal/shared"
)

// Page is one of the protected pages.
type Page int

const (
	PageHome Page = iota
	PageRatings
	PageRecommendations
)

var pageTitles = []string{"Home", "My Ratings", "Recommendations"}

func (p Page) String() string {
	if int(p) < len(pageTitles) {
		return pageTitles[p]
	}
	return ""
}

func (p Page) next() Page {
	return (p + 1) % Page(len(pageTitles))
}

// controller is what every page controller provides to the TUI.
type controller interface {
	Load(ctx context.Context)
	Rate(ctx context.Context, movieID, score int) error
	NoticeTTL() time.Duration
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Guard           *session.Guard
	Store           *session.Store
	Auth            *controllers.Auth
	Catalog         *controllers.Catalog
	Ratings         *controllers.Ratings
	Recommendations *controllers.Recommendations
	Logger          *log.Logger
}

// loginForm is the username/password form shown when the guard redirects to login.
type loginForm struct {
	username   textinput.Model
	password   textinput.Model
	focus      int
	err        string
	submitting bool
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{username: username, password: password}
}

func (f *loginForm) toggleFocus() {
	f.focus = 1 - f.focus
	if f.focus == 0 {
		f.password.Blur()
		f.username.Focus()
	} else {
		f.username.Blur()
		f.password.Focus()
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	deps       Deps
	logger     *log.Logger
	page       Page
	width      int
	height     int
	movieList  list.Model
	login      loginForm
	search     textinput.Model
	searching  bool
	searchType models.SearchType
	status     string
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}

	movieList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	movieList.SetShowHelp(false)
	movieList.SetFilteringEnabled(false)
	movieList.DisableQuitKeybindings()

	search := textinput.New()
	search.Placeholder = "title, director or genre"

	return &Model{
		ctx:        ctx,
		deps:       deps,
		logger:     shared.WithLogger(deps.Logger, "component", "tui"),
		page:       PageHome,
		movieList:  movieList,
		login:      newLoginForm(),
		search:     search,
		searchType: models.SearchByTitle,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init waits for the session restore before anything protected is shown.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForRestore())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.deps.Guard.Decide() {
		case session.Pending:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case session.RedirectLogin:
			return m.handleLoginKeys(msg)
		default:
			if m.searching {
				return m.handleSearchKeys(msg)
			}
			return m.handlePageKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.Kind() {
	case MsgRestored:
		if err := msg.Err(); err != nil {
			m.status = fmt.Sprintf("Could not restore session: %v", err)
		}
		if m.deps.Guard.Decide() == session.Allow {
			return m, m.loadPage(m.page)
		}
		return m, nil

	case MsgLoggedIn:
		m.login.submitting = false
		if err := msg.Err(); err != nil && !m.deps.Store.Authenticated() {
			m.login.err = err.Error()
			return m, nil
		} else if err != nil {
			m.status = fmt.Sprintf("Logged in, but credentials were not saved: %v", err)
		}
		m.login = newLoginForm()
		m.page = PageHome
		return m, m.loadPage(PageHome)

	case MsgLoggedOut:
		if err := msg.Err(); err != nil {
			m.status = fmt.Sprintf("Logout: %v", err)
		}
		m.login = newLoginForm()
		m.page = PageHome
		m.searching = false
		m.movieList.SetItems(nil)
		return m, textinput.Blink

	case MsgPageLoaded, MsgSearched:
		m.syncList()
		return m, nil

	case MsgRated:
		m.syncList()
		if msg.Err() != nil {
			return m, nil
		}
		page := msg.page()
		return m, tea.Tick(m.controller(page).NoticeTTL(), func(time.Time) tea.Msg {
			return noticeExpiredMsg(page)
		})

	case MsgNoticeExpired:
		// The controller clears its own notice; this only triggers a re-render.
		return m, nil
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.login.toggleFocus()
		return m, nil
	case "enter":
		if m.login.focus == 0 {
			m.login.toggleFocus()
			return m, nil
		}
		m.login.submitting = true
		m.login.err = ""
		return m, m.submitLogin(m.login.username.Value(), m.login.password.Value())
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.username, cmd = m.login.username.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "tab":
		m.searchType = nextSearchType(m.searchType)
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, m.runSearch(m.search.Value(), m.searchType)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handlePageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.page = m.page.next()
		m.syncList()
		return m, m.loadPage(m.page)
	case key.Matches(msg, m.keys.reload):
		return m, m.loadPage(m.page)
	case key.Matches(msg, m.keys.logout):
		return m, m.submitLogout()
	case key.Matches(msg, m.keys.rate):
		score, _ := scoreForKey(msg.String())
		movie, ok := m.selectedMovie()
		if !ok {
			return m, nil
		}
		return m, m.rate(m.page, movie.ExternalID, score)
	}

	if m.page == PageHome {
		switch {
		case key.Matches(msg, m.keys.search):
			m.searching = true
			m.search.SetValue("")
			return m, m.search.Focus()
		case key.Matches(msg, m.keys.back):
			m.deps.Catalog.Back()
			m.syncList()
			return m, nil
		case key.Matches(msg, m.keys.enter):
			if m.deps.Catalog.Snapshot().View == controllers.ViewDetails {
				return m, nil
			}
			if item, ok := m.movieList.SelectedItem().(movieItem); ok {
				m.deps.Catalog.Select(item.movie)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.deps.Guard.Decide() == session.RedirectLogin && m.login.focus == 0:
		m.login.username, cmd = m.login.username.Update(msg)
	case m.deps.Guard.Decide() == session.RedirectLogin:
		m.login.password, cmd = m.login.password.Update(msg)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	default:
		m.movieList, cmd = m.movieList.Update(msg)
	}
	return m, cmd
}

func (m *Model) controller(p Page) controller {
	switch p {
	case PageRatings:
		return m.deps.Ratings
	case PageRecommendations:
		return m.deps.Recommendations
	default:
		return m.deps.Catalog
	}
}

func (m *Model) selectedMovie() (models.Movie, bool) {
	if m.page == PageHome {
		if s := m.deps.Catalog.Snapshot(); s.View == controllers.ViewDetails && s.Selected != nil {
			return *s.Selected, true
		}
	}
	item, ok := m.movieList.SelectedItem().(movieItem)
	return item.movie, ok
}

// syncList refreshes the list items from the current page's snapshot.
func (m *Model) syncList() {
	switch m.page {
	case PageHome:
		s := m.deps.Catalog.Snapshot()
		m.movieList.SetItems(movieItems(s.Visible(), nil))
		if s.View == controllers.ViewSearch {
			m.movieList.Title = fmt.Sprintf("Results for %q (%s)", s.Query, s.SearchType)
		} else {
			m.movieList.Title = "All Movies"
		}
	case PageRatings:
		s := m.deps.Ratings.Snapshot()
		m.movieList.SetItems(movieItems(s.Rated, s.ScoreFor))
		m.movieList.Title = "My Ratings"
	case PageRecommendations:
		s := m.deps.Recommendations.Snapshot()
		m.movieList.SetItems(movieItems(s.Recommendations.Data, nil))
		m.movieList.Title = "Recommended for you"
	}
	m.resizeList()
}

func (m *Model) resizeList() {
	if m.width == 0 {
		return
	}
	reserved := 8
	if m.page == PageHome {
		reserved += controllers.DefaultFeaturedCount + 2
	}
	m.movieList.SetSize(m.width-4, max(m.height-reserved, 5))
}

func (m *Model) waitForRestore() tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Guard.Wait(m.ctx)
		return restoredMsg(err)
	}
}

func (m *Model) loadPage(p Page) tea.Cmd {
	ctrl := m.controller(p)
	return func() tea.Msg {
		ctrl.Load(m.ctx)
		return pageLoadedMsg(p)
	}
}

func (m *Model) runSearch(query string, searchType models.SearchType) tea.Cmd {
	return func() tea.Msg {
		return searchedMsg(m.deps.Catalog.Search(m.ctx, query, searchType))
	}
}

func (m *Model) rate(p Page, movieID, score int) tea.Cmd {
	ctrl := m.controller(p)
	return func() tea.Msg {
		return ratedMsg(p, ctrl.Rate(m.ctx, movieID, score))
	}
}

func (m *Model) submitLogin(username, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.deps.Auth.Login(m.ctx, username, password)
		return loggedInMsg(err)
	}
}

func (m *Model) submitLogout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg(m.deps.Auth.Logout(m.ctx))
	}
}

func nextSearchType(t models.SearchType) models.SearchType {
	switch t {
	case models.SearchByTitle:
		return models.SearchByDirector
	case models.SearchByDirector:
		return models.SearchByGenre
	default:
		return models.SearchByTitle
	}
}

// View renders the UI based on the guard decision and the current page.
func (m *Model) View() string {
	switch m.deps.Guard.Decide() {
	case session.Pending:
		return styles.help.Render("Checking session...")
	case session.RedirectLogin:
		return m.renderLogin()
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.page {
	case PageRatings:
		b.WriteString(m.renderRatings())
	case PageRecommendations:
		b.WriteString(m.renderRecommendations())
	default:
		b.WriteString(m.renderHome())
	}

	if m.status != "" {
		b.WriteString("\n" + styles.warn.Render(m.status))
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) helpKeys() []key.Binding {
	if m.page == PageHome {
		return []key.Binding{m.keys.enter, m.keys.search, m.keys.back, m.keys.rate, m.keys.tab, m.keys.logout, m.keys.quit}
	}
	return []key.Binding{m.keys.rate, m.keys.tab, m.keys.reload, m.keys.logout, m.keys.quit}
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("filmhub · Log in"))
	b.WriteString("\n")
	b.WriteString(m.login.username.View() + "\n")
	b.WriteString(m.login.password.View() + "\n\n")

	switch {
	case m.login.submitting:
		b.WriteString(styles.help.Render("Logging in...") + "\n")
	case m.login.err != "":
		b.WriteString(styles.err.Render(m.login.err) + "\n")
	}
	if m.status != "" {
		b.WriteString(styles.warn.Render(m.status) + "\n")
	}

	b.WriteString(styles.help.Render("tab: switch field • enter: submit • esc: quit"))
	b.WriteString("\n" + styles.help.Render("No account? Run `filmhub auth register`."))
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(pageTitles))
	for i, title := range pageTitles {
		if Page(i) == m.page {
			tabs[i] = styles.activeTab.Render(title)
		} else {
			tabs[i] = styles.tab.Render(title)
		}
	}
	user := m.deps.Store.Session().Username("guest")
	return strings.Join(tabs, "│") + "  " + styles.help.Render("signed in as "+user)
}

func renderFeedback(notice, ratingError string) string {
	var b strings.Builder
	if notice != "" {
		b.WriteString(styles.ok.Render("✓ "+notice) + "\n")
	}
	if ratingError != "" {
		b.WriteString(styles.err.Render(ratingError) + "\n")
	}
	return b.String()
}

func (m *Model) renderHome() string {
	s := m.deps.Catalog.Snapshot()

	var b strings.Builder
	b.WriteString(renderFeedback(s.Notice, s.RatingError))

	if s.View == controllers.ViewDetails && s.Selected != nil {
		b.WriteString(renderDetails(*s.Selected))
		return b.String()
	}

	if m.searching {
		b.WriteString(fmt.Sprintf("Search by %s: %s\n", m.searchType, m.search.View()))
		b.WriteString(styles.help.Render("tab: change field • enter: search • esc: cancel") + "\n\n")
	}

	if s.View == controllers.ViewHome {
		b.WriteString(styles.title.Render("Featured"))
		b.WriteString("\n")
		switch {
		case s.Recommendations.Loading:
			b.WriteString(styles.help.Render("Loading recommendations...") + "\n")
		case s.Recommendations.Error != "":
			b.WriteString(styles.err.Render(s.Recommendations.Error) + "\n")
		case len(s.Featured) == 0:
			b.WriteString(styles.help.Render(controllers.MsgNoRecommendations) + "\n")
		default:
			for _, movie := range s.Featured {
				b.WriteString("  " + formatter.MovieLine(movie) + "\n")
			}
		}
		b.WriteString("\n")
	}

	switch {
	case s.Movies.Loading:
		b.WriteString(styles.help.Render("Loading movies..."))
	case s.Movies.Error != "":
		b.WriteString(styles.err.Render(s.Movies.Error) + "\n")
		b.WriteString(m.movieList.View())
	default:
		b.WriteString(m.movieList.View())
	}
	return b.String()
}

func renderDetails(movie models.Movie) string {
	var b strings.Builder
	b.WriteString(styles.title.Render(movie.Title))
	b.WriteString("\n")
	if movie.Year > 0 {
		b.WriteString(fmt.Sprintf("Year:      %d\n", movie.Year))
	}
	if movie.Genre != "" {
		b.WriteString(fmt.Sprintf("Genre:     %s\n", movie.Genre))
	}
	if movie.Director != "" {
		b.WriteString(fmt.Sprintf("Director:  %s\n", movie.Director))
	}
	b.WriteString(fmt.Sprintf("Average:   ★ %s\n", movie.RatingLabel()))
	if movie.PosterURL != "" {
		b.WriteString(fmt.Sprintf("Poster:    %s\n", movie.PosterURL))
	}
	b.WriteString("\n" + styles.help.Render("Press 1-9 or 0 (=10) to rate, esc to go back") + "\n")
	return b.String()
}

func (m *Model) renderRatings() string {
	s := m.deps.Ratings.Snapshot()

	var b strings.Builder
	b.WriteString(renderFeedback(s.Notice, s.RatingError))
	switch {
	case s.Loading():
		b.WriteString(styles.help.Render("Loading your ratings..."))
	case s.Error() != "":
		b.WriteString(styles.err.Render(s.Error()))
	case len(s.Rated) == 0:
		b.WriteString(styles.help.Render(controllers.MsgNoRatings))
	default:
		b.WriteString(m.movieList.View())
	}
	return b.String()
}

func (m *Model) renderRecommendations() string {
	s := m.deps.Recommendations.Snapshot()

	var b strings.Builder
	b.WriteString(renderFeedback(s.Notice, s.RatingError))
	switch {
	case s.Recommendations.Loading:
		b.WriteString(styles.help.Render("Loading recommendations..."))
	case s.Recommendations.Error != "":
		b.WriteString(styles.err.Render(s.Recommendations.Error))
	case s.Empty():
		b.WriteString(styles.help.Render(controllers.MsgNoRecommendations))
	default:
		b.WriteString(m.movieList.View())
	}
	return b.String()
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

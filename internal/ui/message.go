package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRestored MsgKind = iota
	MsgPageLoaded
	MsgSearched
	MsgRated
	MsgNoticeExpired
	MsgLoggedIn
	MsgLoggedOut
)

// Kind reports which message this is.
func (m Msg) Kind() MsgKind { return m.kind }

// Err returns the error the message carries, if any.
func (m Msg) Err() error {
	err, _ := m.data.(error)
	if r, ok := m.data.(pageResult); ok {
		err = r.err
	}
	return err
}

type pageResult struct {
	page Page
	err  error
}

// restoredMsg is the constructor for [MsgRestored]
func restoredMsg(err error) Msg {
	return Msg{kind: MsgRestored, data: err}
}

// pageLoadedMsg is the constructor for [MsgPageLoaded]
func pageLoadedMsg(page Page) Msg {
	return Msg{kind: MsgPageLoaded, data: pageResult{page: page}}
}

// searchedMsg is the constructor for [MsgSearched]
func searchedMsg(err error) Msg {
	return Msg{kind: MsgSearched, data: pageResult{page: PageHome, err: err}}
}

// ratedMsg is the constructor for [MsgRated]
func ratedMsg(page Page, err error) Msg {
	return Msg{kind: MsgRated, data: pageResult{page: page, err: err}}
}

// noticeExpiredMsg is the constructor for [MsgNoticeExpired]
func noticeExpiredMsg(page Page) Msg {
	return Msg{kind: MsgNoticeExpired, data: pageResult{page: page}}
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: err}
}

// loggedOutMsg is the constructor for [MsgLoggedOut]
func loggedOutMsg(err error) Msg {
	return Msg{kind: MsgLoggedOut, data: err}
}

func (m Msg) page() Page {
	r, _ := m.data.(pageResult)
	return r.page
}

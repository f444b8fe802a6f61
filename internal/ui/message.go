package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates the wizard's own message types.
type MsgKind int

// Msg represents the wizard's messages (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgNameResolved MsgKind = iota
)

type nameResolved struct {
	link string
	name string
	err  error
}

// nameResolvedMsg is the constructor for [MsgNameResolved]
func nameResolvedMsg(link, name string, err error) Msg {
	return Msg{kind: MsgNameResolved, data: nameResolved{link: link, name: name, err: err}}
}

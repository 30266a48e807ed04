package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	enter    key.Binding
	back     key.Binding
	like     key.Binding
	edit     key.Binding
	newDraft key.Binding
	next     key.Binding
	prev     key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	remove   key.Binding
	rename   key.Binding
	retitle  key.Binding
	zoomIn   key.Binding
	zoomOut  key.Binding
	save     key.Binding
	submit   key.Binding
	export   key.Binding
	refresh  key.Binding
	nextPage key.Binding
	prevPage key.Binding
	relocate key.Binding
	summary  key.Binding
	category key.Binding
	region   key.Binding
	cover    key.Binding
	price    key.Binding
	stay     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		like:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		newDraft: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new course")),
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next spot")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev spot")),
		moveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		rename:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "spot title")),
		retitle:  key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "course title")),
		zoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		save:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save draft")),
		submit:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
		export:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		nextPage: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next page")),
		prevPage: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev page")),
		relocate: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move spot to cursor")),
		summary:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "summary")),
		category: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "category")),
		region:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "region")),
		cover:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cover url")),
		price:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "spot price")),
		stay:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "spot stay")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.enter, k.back},
		{k.like, k.edit, k.newDraft, k.export, k.refresh, k.nextPage, k.prevPage},
		{k.next, k.prev, k.moveUp, k.moveDown, k.remove, k.relocate},
		{k.rename, k.retitle, k.zoomIn, k.zoomOut, k.save, k.submit},
		{k.summary, k.category, k.region, k.cover, k.price, k.stay},
		{k.quit},
	}
}

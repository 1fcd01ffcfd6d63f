// Package wizard drives the multi-step admin flows of the bot and
// serialises the inputs of each chat.
package wizard

import (
	"context"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/command"
)

// Event is one inbound input of a chat: free text, a pressed button or a
// photo.
type Event struct {
	ChatID  int64
	UserID  int64
	Text    string
	Command *command.Command
	Photo   *Photo
}

// Photo references a picture held by the chat transport.
type Photo struct {
	FileID string
}

// Reply is one outbound message.
type Reply struct {
	Text string
	// Photo is a URL or a transport file id shown above the text.
	Photo   string
	Buttons [][]Button
}

// Button carries either a navigation URL or a command.
type Button struct {
	Label   string
	URL     string
	Command *command.Command
}

// Sender delivers replies to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, r Reply) error
}

// CommandButton builds a button that sends cmd back when pressed.
func CommandButton(label string, cmd command.Command) Button {
	return Button{Label: label, Command: &cmd}
}

// URLButton builds a button that opens url.
func URLButton(label, url string) Button {
	return Button{Label: label, URL: url}
}

// IsCancel reports whether ev aborts the active flow.
func IsCancel(ev Event) bool {
	if ev.Command != nil {
		return ev.Command.Action == command.Cancel
	}
	return isSlash(ev.Text, "/cancel")
}

func (ev Event) action() command.Action {
	if ev.Command == nil {
		return ""
	}
	return ev.Command.Action
}

func (ev Event) text() string {
	return strings.TrimSpace(ev.Text)
}

func (ev Event) isSkip() bool {
	if ev.Command != nil {
		return ev.Command.Action == command.Skip
	}
	t := ev.text()
	return t == "-" || isSlash(t, "/skip")
}

func (ev Event) isDone() bool {
	if ev.Command != nil {
		return ev.Command.Action == command.Done
	}
	return isSlash(ev.text(), "/done")
}

// isSlash matches a slash command with an optional @botname suffix.
func isSlash(text, cmd string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if i := strings.IndexByte(t, '@'); i > 0 {
		t = t[:i]
	}
	return t == cmd
}

package ui

import "strings"

// Inline commands recognized in the input.
const (
	CommandHelp    = "/help"
	CommandDismiss = "/dismiss"
	CommandExit    = "/exit"
	CommandQuit    = "/quit"
)

// ParseInput splits typed text into an inline command or a message to send.
// Only a known command on its own is a command, so questions may start with
// a slash. A leading "//" sends the text with one slash removed.
func ParseInput(text string) (command, message string) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "//") {
		return "", strings.Replace(text, "/", "", 1)
	}

	switch cmd := strings.ToLower(trimmed); cmd {
	case CommandHelp, CommandDismiss, CommandExit, CommandQuit:
		return cmd, ""
	}
	return "", text
}

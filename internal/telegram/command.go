package telegram

import "strings"

// Command is the bot command that requests a watermark.
const Command = "/wm"

// ParseCommand extracts the watermark text from a photo caption. ok is false
// unless the caption starts with Command. "/wm" alone yields empty text.
func ParseCommand(caption string) (text string, ok bool) {
	rest, ok := strings.CutPrefix(caption, Command)
	if !ok {
		return "", false
	}
	// "/wm@mybot some text" in group chats
	if strings.HasPrefix(rest, "@") {
		if i := strings.IndexAny(rest, " \t\n"); i >= 0 {
			rest = rest[i:]
		} else {
			rest = ""
		}
	}
	return strings.TrimSpace(rest), true
}

package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Template wraps generated text when an editable message is rendered.
// The zero value renders the text verbatim.
type Template struct {
	Prefix string
	Suffix string
}

func (t Template) Render(text string) string {
	return t.Prefix + text + t.Suffix
}

// EditableMessage is a handle on an outbound placeholder message that
// is overwritten once the completion (and optional speech conversion)
// finishes. It lives for one prompt-handling cycle.
type EditableMessage struct {
	ChatID    int64
	MessageID int
	Template  Template
}

func newEditable(msg tgbotapi.Message) EditableMessage {
	return EditableMessage{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
}

func (e EditableMessage) withTemplate(t Template) EditableMessage {
	e.Template = t
	return e
}

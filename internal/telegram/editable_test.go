package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestTemplateRender(t *testing.T) {
	if got := (Template{}).Render("text"); got != "text" {
		t.Fatalf("zero template must render verbatim, got %q", got)
	}
	tpl := Template{Prefix: "before\n", Suffix: "\nafter"}
	if got := tpl.Render("middle"); got != "before\nmiddle\nafter" {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestNewEditable(t *testing.T) {
	msg := tgbotapi.Message{MessageID: 17, Chat: &tgbotapi.Chat{ID: 100}}
	e := newEditable(msg)
	if e.ChatID != 100 || e.MessageID != 17 {
		t.Fatalf("unexpected handle: %+v", e)
	}
	withT := e.withTemplate(Template{Prefix: "p"})
	if withT.Template.Prefix != "p" || e.Template.Prefix != "" {
		t.Fatalf("withTemplate must not mutate the original")
	}
}

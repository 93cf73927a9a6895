package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/wordmemo/internal/importer"
	"github.com/example/wordmemo/internal/parser"
	"github.com/example/wordmemo/internal/session"
	"github.com/example/wordmemo/internal/spaced_repetition"
	"github.com/example/wordmemo/internal/unknown"
	"github.com/example/wordmemo/pkg/models"
)

const (
	captionAppend     = "append"
	noticeCardChanged = "That card changed, here is the current one"
)

const helpText = `Commands:
/next - show the current card
/stats - show your statistics
/reload - reload the configured word list
/export - export words unknown this session
/export_all - export all unknown words
/reverse - toggle reverse order
/clear - remove all cards

Send a .txt, .csv or .xlsx file to replace the deck.
Add the caption "append" to add its words to the deck instead.
Text files hold one "term<TAB>meaning" or "term - meaning" pair per line.`

// HandleMessage handles commands, uploaded word lists and plain text
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return errors.New("invalid message: required fields are missing")
	}
	switch {
	case message.IsCommand():
		return b.HandleCommand(ctx, message)
	case message.Document != nil:
		return b.handleDocument(ctx, message)
	default:
		return b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, helpText))
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		if err := b.sendMessage(tgbotapi.NewMessage(chatID, "Welcome to WordMemo! 🎓\n\n"+helpText)); err != nil {
			return err
		}
		return b.sendCard(chatID)
	case "help":
		return b.sendMessage(tgbotapi.NewMessage(chatID, helpText))
	case "next":
		return b.sendCard(chatID)
	case "stats":
		return b.handleStats(ctx, chatID)
	case "reload":
		return b.handleReload(ctx, chatID)
	case "clear":
		st := b.session.State()
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Remove all %s from the deck?", plural(st.DeckSize, "card", "cards")))
		msg.ReplyMarkup = createKeyboard(ConfirmButtons(callbackClearDeckConfirm))
		return b.sendMessage(msg)
	case "export":
		return b.handleExport(chatID, b.session.SessionUnknownCards(), "unknown_session")
	case "export_all":
		return b.handleExport(chatID, b.session.CumulativeUnknownCards(), "unknown_all")
	case "reverse":
		st := b.session.SetReverse(!b.session.State().Reverse)
		order := "normal"
		if st.Reverse {
			order = "reversed"
		}
		if err := b.sendMessage(tgbotapi.NewMessage(chatID, "Order: "+order)); err != nil {
			return err
		}
		return b.sendCard(chatID)
	default:
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Unknown command. Use /help to list commands."))
	}
}

// HandleCallback handles inline button presses on the review screen
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil {
		return errors.New("invalid callback data: required fields are missing")
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	var (
		st     session.State
		ok     = true
		notice string
	)
	// Review buttons carry the id of the card they were rendered for
	action, cardID, _ := strings.Cut(callback.Data, ":")
	switch action {
	case callbackNext, callbackCancelAction:
		st = b.session.State()
	case callbackShow:
		if st, ok = b.session.RevealCard(cardID); !ok && cardChanged(st, cardID) {
			notice = noticeCardChanged
		}
	case callbackKnew, callbackForgot:
		outcome := spaced_repetition.Forgot
		if action == callbackKnew {
			outcome = spaced_repetition.Knew
		}
		st, ok = b.session.GradeCard(cardID, outcome)
		switch {
		case ok:
			b.recordReview(ctx, outcome)
		case cardChanged(st, cardID):
			notice = noticeCardChanged
		default:
			notice = "Nothing to review"
		}
	case callbackRepeatUnknown:
		if st, ok = b.session.EnterRepeatUnknown(); !ok {
			notice = "No unknown words in this session"
		}
	case callbackTopTen:
		if st, ok = b.session.EnterTopTenForgotten(); !ok {
			notice = "Nothing forgotten today"
		}
	case callbackNormal:
		st, _ = b.session.ReturnToNormal()
	case callbackRepeatAll:
		n := b.session.State().SessionSeen
		b.answerCallback(callback.ID, "")
		return b.editMessage(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
			fmt.Sprintf("Repeat all %s seen this session?", plural(n, "card", "cards")),
			createKeyboard(ConfirmButtons(callbackRepeatAllConfirm))))
	case callbackRepeatAllConfirm:
		if st, ok = b.session.RepeatAllSession(); !ok {
			notice = "No cards seen in this session"
		}
	case callbackClearUnknown:
		n := b.session.State().CumulativeUnknownCount
		b.answerCallback(callback.ID, "")
		return b.editMessage(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
			fmt.Sprintf("Clear ALL %s ever forgotten? This cannot be undone.", plural(n, "unknown word", "unknown words")),
			createKeyboard(ConfirmButtons(callbackClearUnknownConfirm))))
	case callbackClearUnknownConfirm:
		st = b.session.ClearCumulative()
		notice = "Unknown list cleared"
	case callbackClearDeckConfirm:
		st, notice = b.clearDeck(ctx)
	default:
		st = b.session.State()
		notice = "⚠️ Unknown action"
	}

	// Always answer the callback query to remove the loading state
	b.answerCallback(callback.ID, notice)

	return b.editMessage(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		RenderCard(st, b.takeDrillDone()), createKeyboard(ReviewButtons(st))))
}

func cardChanged(st session.State, cardID string) bool {
	return st.Current != nil && st.Current.ID != cardID
}

// clearDeck empties the deck and starts over from the configured word list
func (b *Bot) clearDeck(ctx context.Context) (session.State, string) {
	st := b.session.Clear()
	if b.config.Source == "" {
		return st, "Deck cleared"
	}
	loaded, err := b.watcher.Load(ctx, b.config.Source)
	if err != nil {
		b.log.Warn("Failed to reload word list after clear", "source", b.config.Source, "error", err)
		return st, "Deck cleared. Could not load " + b.config.Source
	}
	return loaded, "Deck cleared and reloaded"
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Warn("Failed to answer callback", "error", err)
	}
}

// sendCard sends a fresh review screen
func (b *Bot) sendCard(chatID int64) error {
	st := b.session.State()
	msg := tgbotapi.NewMessage(chatID, RenderCard(st, b.takeDrillDone()))
	msg.ReplyMarkup = createKeyboard(ReviewButtons(st))
	return b.sendMessage(msg)
}

func (b *Bot) recordReview(ctx context.Context, outcome spaced_repetition.Outcome) {
	if b.stats == nil {
		return
	}
	day := unknown.DayKey(b.session.Now())
	if err := b.stats.RecordReview(ctx, day, outcome == spaced_repetition.Knew); err != nil {
		b.log.Warn("Failed to record review", "day", day, "error", err)
	}
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	var history []models.DailyStatistics
	if b.stats != nil {
		var err error
		if history, err = b.stats.Recent(ctx, b.config.HistoryDays); err != nil {
			b.log.Warn("Failed to load review history", "error", err)
		}
	}
	text := RenderStats(b.session.State(), b.session.DueCount(), history)
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// handleReload merges the configured word list when it is already the deck's
// source and loads it from scratch otherwise
func (b *Bot) handleReload(ctx context.Context, chatID int64) error {
	location := b.config.Source
	var text string
	if b.session.Source() == location {
		changed, err := b.watcher.Check(ctx)
		switch {
		case err != nil:
			text = fmt.Sprintf("❌ Could not load %s: %v", location, err)
		case changed:
			text = fmt.Sprintf("✅ Updated from %s: %s.", location, plural(b.session.State().DeckSize, "card", "cards"))
		default:
			text = "No changes in " + location + "."
		}
	} else {
		st, err := b.watcher.Load(ctx, location)
		if err != nil {
			text = fmt.Sprintf("❌ Could not load %s: %v", location, err)
		} else {
			text = fmt.Sprintf("✅ Loaded %s from %s.", plural(st.DeckSize, "card", "cards"), location)
		}
	}
	if err := b.sendMessage(tgbotapi.NewMessage(chatID, text)); err != nil {
		return err
	}
	return b.sendCard(chatID)
}

// handleDocument replaces the deck with an uploaded word list, or appends
// to it when the upload is captioned "append"
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	name := message.Document.FileName
	if !importer.Supported(name) {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Unsupported file. Send a .txt, .csv or .xlsx word list."))
	}

	url, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		return errors.Wrap(err, "failed to get file URL")
	}
	doc, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		b.notifyFailure(chatID, "❌ Could not download the file. Please try again.")
		return err
	}

	importFn, verb := b.watcher.Import, "Imported"
	if strings.EqualFold(strings.TrimSpace(message.Caption), captionAppend) {
		importFn, verb = b.watcher.Append, "Appended"
	}
	before := b.session.State().DeckSize
	st, skipped, err := importFn(name, doc.Data)
	if err != nil {
		b.notifyFailure(chatID, "❌ Could not read "+name+".")
		return err
	}

	added := st.DeckSize
	if verb == "Appended" {
		added -= before
	}
	var text strings.Builder
	fmt.Fprintf(&text, "✅ %s %s from %s.", verb, plural(added, "card", "cards"), name)
	if skipped > 0 {
		fmt.Fprintf(&text, "\nSkipped %s without a term and meaning.", plural(skipped, "line", "lines"))
	}
	if err := b.sendMessage(tgbotapi.NewMessage(chatID, text.String())); err != nil {
		return err
	}
	return b.sendCard(chatID)
}

// notifyFailure tells the user an action failed. The caller returns the original error.
func (b *Bot) notifyFailure(chatID int64, text string) {
	if err := b.sendMessage(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("Failed to send failure notice", "chat_id", chatID, "error", err)
	}
}

// handleExport sends cards as a word list text file and as a workbook
func (b *Bot) handleExport(chatID int64, cards []models.Card, base string) error {
	if len(cards) == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Nothing to export."))
	}

	text := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  base + ".txt",
		Bytes: []byte(parser.Export(cards) + "\n"),
	})
	text.Caption = plural(len(cards), "card", "cards")
	if err := b.sendMessage(text); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := importer.ExportXLSX(cards, &buf); err != nil {
		return err
	}
	return b.sendMessage(tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  base + ".xlsx",
		Bytes: buf.Bytes(),
	}))
}

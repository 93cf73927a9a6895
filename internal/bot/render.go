package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/wordmemo/internal/queue"
	"github.com/example/wordmemo/internal/session"
	"github.com/example/wordmemo/pkg/models"
)

// Callback data
const (
	callbackNext                = "next"
	callbackShow                = "show"
	callbackKnew                = "knew"
	callbackForgot              = "forgot"
	callbackRepeatUnknown       = "repeat_unknown"
	callbackTopTen              = "top10"
	callbackRepeatAll           = "repeat_all"
	callbackRepeatAllConfirm    = "repeat_all_confirm"
	callbackNormal              = "normal"
	callbackClearUnknown        = "clear_unknown"
	callbackClearUnknownConfirm = "clear_unknown_confirm"
	callbackClearDeckConfirm    = "clear_deck_confirm"
	callbackCancelAction        = "cancel_action"
)

// cardData ties a review button to the card it was rendered for
func cardData(action, id string) string {
	return action + ":" + id
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func modeTitle(kind queue.Kind) string {
	switch kind {
	case queue.KindTopTenForgotten:
		return "🔥 Top 10 forgotten today"
	case queue.KindRepeatUnknown:
		return "🔁 Repeat unknown"
	default:
		return "📚 All words"
	}
}

// RenderCard renders the review screen for st. drillDone adds the banner shown
// once after the repeat-unknown drill ran out of cards.
func RenderCard(st session.State, drillDone bool) string {
	var b strings.Builder
	if drillDone {
		b.WriteString("🎉 All unknown words repeated!\n\n")
	}
	fmt.Fprintf(&b, "%s · %s\n\n", modeTitle(st.Mode), plural(st.QueueLength, "card", "cards")+" to review")

	switch {
	case st.DeckSize == 0:
		b.WriteString("The deck is empty. Send me a .txt, .csv or .xlsx word list.")
	case st.Current == nil && st.Mode == queue.KindRepeatUnknown:
		b.WriteString("⏳ Forgotten cards are cooling down. Check again in a few minutes.")
	case st.Current == nil:
		b.WriteString("✅ Nothing to review right now.")
	default:
		c := st.Current
		if c.Num != nil {
			b.WriteString("#" + strconv.Itoa(*c.Num) + " ")
		}
		b.WriteString(c.Term)
		if st.Revealed {
			b.WriteString("\n\n👉 " + c.Meaning)
		}
	}

	fmt.Fprintf(&b, "\n\nUnknown this session: %d · Seen today: %d", st.SessionUnknownCount, st.SeenToday)
	return b.String()
}

// ReviewButtons returns the keyboard under the review screen. It always has at least one button.
func ReviewButtons(st session.State) [][]MenuButton {
	var rows [][]MenuButton
	if c := st.Current; c != nil {
		if !st.Revealed {
			rows = append(rows, []MenuButton{{Text: "👀 Show", CallbackData: cardData(callbackShow, c.ID)}})
		}
		rows = append(rows, []MenuButton{
			{Text: "✅ Knew", CallbackData: cardData(callbackKnew, c.ID)},
			{Text: "❌ Forgot", CallbackData: cardData(callbackForgot, c.ID)},
		})
	} else {
		rows = append(rows, []MenuButton{{Text: "🔄 Check again", CallbackData: callbackNext}})
	}

	var modes []MenuButton
	if st.SessionUnknownCount > 0 {
		modes = append(modes, MenuButton{Text: fmt.Sprintf("🔁 Repeat unknown (%d)", st.SessionUnknownCount), CallbackData: callbackRepeatUnknown})
	}
	if st.DeckSize > 0 {
		modes = append(modes, MenuButton{Text: "🔥 Top 10", CallbackData: callbackTopTen})
	}
	if len(modes) > 0 {
		rows = append(rows, modes)
	}

	var more []MenuButton
	if st.Mode != queue.KindNormal {
		more = append(more, MenuButton{Text: "📚 Back to all", CallbackData: callbackNormal})
	}
	if st.SessionSeen > 0 {
		more = append(more, MenuButton{Text: "♻️ Repeat all", CallbackData: callbackRepeatAll})
	}
	if len(more) > 0 {
		rows = append(rows, more)
	}

	if st.CumulativeUnknownCount > 0 {
		rows = append(rows, []MenuButton{{Text: "🗑 Clear ALL unknown", CallbackData: callbackClearUnknown}})
	}
	return rows
}

// ConfirmButtons asks to confirm the action behind confirmData
func ConfirmButtons(confirmData string) [][]MenuButton {
	return [][]MenuButton{{
		{Text: "✔️ Yes", CallbackData: confirmData},
		{Text: "✖️ Cancel", CallbackData: callbackCancelAction},
	}}
}

// RenderStats renders the /stats screen
func RenderStats(st session.State, due int, history []models.DailyStatistics) string {
	var b strings.Builder
	b.WriteString("📊 Statistics\n\n")
	fmt.Fprintf(&b, "Deck: %s\n", plural(st.DeckSize, "card", "cards"))
	fmt.Fprintf(&b, "Due now: %d\n", due)
	fmt.Fprintf(&b, "Mode: %s (%d in queue)\n", modeTitle(st.Mode), st.QueueLength)
	fmt.Fprintf(&b, "Seen today: %d\n", st.SeenToday)
	fmt.Fprintf(&b, "Unknown this session: %d\n", st.SessionUnknownCount)
	fmt.Fprintf(&b, "Unknown all time: %d\n", st.CumulativeUnknownCount)
	if st.Reverse {
		b.WriteString("Order: reversed\n")
	}
	if st.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", st.Source)
	}

	if len(history) > 0 {
		b.WriteString("\nRecent days:\n")
		for _, day := range history {
			fmt.Fprintf(&b, "%s  ✅ %d  ❌ %d\n", day.Day, day.Knew, day.Forgot)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderReminder renders the due-card reminder
func RenderReminder(due int) string {
	return fmt.Sprintf("⏰ You have %s to review!", plural(due, "card", "cards"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

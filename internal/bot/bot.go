package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/example/wordmemo/internal/logger"
	"github.com/example/wordmemo/internal/queue"
	"github.com/example/wordmemo/internal/session"
	"github.com/example/wordmemo/internal/source"
	"github.com/example/wordmemo/pkg/models"
)

// API is the part of the Telegram client the bot talks to
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// StatsStore keeps the per-day review history
type StatsStore interface {
	RecordReview(ctx context.Context, day string, knew bool) error
	Recent(ctx context.Context, limit int) ([]models.DailyStatistics, error)
}

// Deps are the collaborators the bot presents
type Deps struct {
	Session *session.Session
	Watcher *source.Watcher
	Fetcher *source.Fetcher
	Stats   StatsStore
	Logger  *logger.Logger
}

// Bot represents the Telegram bot application
type Bot struct {
	api     API
	client  *tgbotapi.BotAPI
	config  *BotConfig
	session *session.Session
	watcher *source.Watcher
	fetcher *source.Fetcher
	stats   StatsStore
	log     *logger.Logger

	mu         sync.Mutex
	lastChatID int64
	last       session.State
	drillDone  bool
}

// New creates a bot connected to Telegram with config.Token
func New(config *BotConfig, deps Deps) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	client, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create bot")
	}
	b := NewWithAPI(client, config, deps)
	b.client = client
	b.log.Info("Authorized on account", "username", client.Self.UserName)
	return b, nil
}

// NewWithAPI creates a bot on top of api
func NewWithAPI(api API, config *BotConfig, deps Deps) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Fetcher == nil {
		deps.Fetcher = source.NewFetcher(nil)
	}
	b := &Bot{
		api:        api,
		config:     config,
		session:    deps.Session,
		watcher:    deps.Watcher,
		fetcher:    deps.Fetcher,
		stats:      deps.Stats,
		log:        deps.Logger,
		lastChatID: config.OwnerChatID,
		last:       deps.Session.State(),
	}
	deps.Session.Subscribe(b.onStateChange)
	return b
}

// Start handles updates until ctx is done. Updates are handled one at a time
// so button presses apply in the order they were made.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot is not connected to Telegram")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.client.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.log.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		if !b.allowed(update.Message.Chat.ID) {
			return
		}
		b.touch(update.Message.Chat.ID)
		err = b.HandleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		if !b.allowed(update.CallbackQuery.Message.Chat.ID) {
			return
		}
		b.touch(update.CallbackQuery.Message.Chat.ID)
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.log.Error("Error handling update", "update_id", update.UpdateID, "error", err)
	}
}

// allowed reports whether chatID may use the bot
func (b *Bot) allowed(chatID int64) bool {
	return b.config.OwnerChatID == 0 || b.config.OwnerChatID == chatID
}

// touch remembers the chat reminders go to when no owner is configured
func (b *Bot) touch(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastChatID = chatID
}

func (b *Bot) reminderChat() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastChatID
}

// onStateChange notices the repeat-unknown drill finishing on its own
func (b *Bot) onStateChange(st session.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.last
	b.last = st
	if prev.Mode == queue.KindRepeatUnknown && st.Mode == queue.KindNormal &&
		st.SessionUnknownCount == 0 && st.SessionSeen > 0 {
		b.drillDone = true
	}
}

// takeDrillDone returns and resets the drill finished banner flag
func (b *Bot) takeDrillDone() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	done := b.drillDone
	b.drillDone = false
	return done
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(due int) error {
	chatID := b.reminderChat()
	if chatID == 0 {
		b.log.Debug("No chat to remind yet", "due", due)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, RenderReminder(due))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "▶️ Review", CallbackData: callbackNext}}})
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.log.Info("Sent reminder", "chat_id", chatID, "due", due)
	return nil
}

// SendDeckUpdated implements the scheduler.Notifier interface
func (b *Bot) SendDeckUpdated() error {
	chatID := b.reminderChat()
	if chatID == 0 {
		return nil
	}
	st := b.session.State()
	msg := tgbotapi.NewMessage(chatID, "📚 Word list updated: "+plural(st.DeckSize, "card", "cards")+".")
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "▶️ Review", CallbackData: callbackNext}}})
	return b.sendMessage(msg)
}

func (b *Bot) sendMessage(c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}

// editMessage edits a message in place. Telegram rejects edits that change
// nothing, which is not worth reporting.
func (b *Bot) editMessage(c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		b.log.Debug("Failed to edit message", "error", err)
	}
	return nil
}

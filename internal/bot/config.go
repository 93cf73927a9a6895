package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Token of the Telegram bot
	Token string
	// Chat allowed to talk to the bot, 0 accepts any chat
	OwnerChatID int64
	// Word list loaded by /reload
	Source string
	// Days of review history shown by /stats
	HistoryDays int
	// Long polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		Source:        "words.txt",
		HistoryDays:   7,
		UpdateTimeout: 60,
	}
}

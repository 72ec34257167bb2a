package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAdapter posts workflow outcomes to a Discord channel as embeds.
type DiscordAdapter struct {
	sess      session
	channelID string
}

// DiscordOpts holds parameters for creating a DiscordAdapter.
type DiscordOpts struct {
	BotToken  string // Discord bot token
	ChannelID string // channel to post to
	// For testing: inject a mock session instead of the real Discord API.
	Session session
}

// NewDiscord creates a Discord adapter and opens its gateway session.
func NewDiscord(opts DiscordOpts) (*DiscordAdapter, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel ID is required")
	}

	sess := opts.Session
	if sess == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		sess = dg
	}
	if err := sess.Open(); err != nil {
		return nil, fmt.Errorf("discord: open session: %w", err)
	}
	return &DiscordAdapter{sess: sess, channelID: opts.ChannelID}, nil
}

// Post sends the message as an embed with the severity color.
func (a *DiscordAdapter) Post(ctx context.Context, msg Message) error {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Body,
		Color:       hexColor(msg.Color),
	}
	if _, err := a.sess.ChannelMessageSendEmbed(a.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

// Close shuts down the gateway session.
func (a *DiscordAdapter) Close() error {
	return a.sess.Close()
}

// hexColor converts a "#rrggbb" hint to Discord's integer color. Returns
// 0 (no color bar) on malformed input.
func hexColor(hint string) int {
	h := strings.TrimPrefix(hint, "#")
	v, err := strconv.ParseInt(h, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}

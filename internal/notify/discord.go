package notify

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
)

// discordClient abstracts the Discord API methods we use, enabling test mocks.
type discordClient interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts workflow events to a Discord channel.
type DiscordNotifier struct {
	client  discordClient
	channel string
}

// NewDiscordNotifier builds a notifier for the given bot token and channel.
func NewDiscordNotifier(token, channel string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &DiscordNotifier{client: session, channel: channel}, nil
}

func (d *DiscordNotifier) DefectTransition(ev TransitionEvent) {
	d.send(formatTransition(ev))
}

func (d *DiscordNotifier) DailyDigest(summary string) {
	d.send(summary)
}

func (d *DiscordNotifier) send(content string) {
	if _, err := d.client.ChannelMessageSend(d.channel, content); err != nil {
		log.Printf("notify: discord send to %s failed: %v", d.channel, err)
	}
}

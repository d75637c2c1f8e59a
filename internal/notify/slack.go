package notify

import (
	"log"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackNotifier posts workflow events to a Slack channel.
type SlackNotifier struct {
	client  slackClient
	channel string
}

// NewSlackNotifier builds a notifier for the given bot token and channel.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slackapi.New(token),
		channel: channel,
	}
}

func (s *SlackNotifier) DefectTransition(ev TransitionEvent) {
	s.post(formatTransition(ev))
}

func (s *SlackNotifier) DailyDigest(summary string) {
	s.post(summary)
}

func (s *SlackNotifier) post(text string) {
	_, _, err := s.client.PostMessage(s.channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		log.Printf("notify: slack post to %s failed: %v", s.channel, err)
	}
}

// Package slackbot hosts the Slack trigger surface: a socket-mode
// listener that starts report runs on app mentions and delivers the
// resulting artifacts back into the thread.
package slackbot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/bikkkubo/news-bot/internal/interfaces"
	"github.com/bikkkubo/news-bot/internal/logger"
	"github.com/bikkkubo/news-bot/internal/store"
)

// RunFunc starts one pipeline run. Mirrors pipeline.Runner.Execute.
type RunFunc func(ctx context.Context, progress interfaces.ProgressFunc, token string) error

// Bot listens for app mentions in one channel and triggers runs.
// It doubles as the delivery side: artifact uploads and reactions go
// back through the same client.
type Bot struct {
	client  *slack.Client
	socket  *socketmode.Client
	channel string
}

var _ interfaces.Notifier = (*Bot)(nil)

func New(cfg *store.Config) (*Bot, error) {
	if cfg.Keys.SlackBotToken == "" || cfg.Keys.SlackAppToken == "" {
		return nil, fmt.Errorf("slack bot requires SLACK_BOT_TOKEN and SLACK_APP_TOKEN")
	}
	if cfg.Keys.SlackChannel == "" {
		return nil, fmt.Errorf("slack bot requires SLACK_CHANNEL_ID")
	}

	client := slack.New(
		cfg.Keys.SlackBotToken,
		slack.OptionAppLevelToken(cfg.Keys.SlackAppToken),
	)
	return &Bot{
		client:  client,
		socket:  socketmode.New(client),
		channel: cfg.Keys.SlackChannel,
	}, nil
}

// Listen runs the socket-mode event loop until ctx is cancelled. Each
// accepted mention starts a run on its own goroutine so the loop never
// blocks on generation.
func (b *Bot) Listen(ctx context.Context, run RunFunc) error {
	go func() {
		for evt := range b.socket.Events {
			switch evt.Type {
			case socketmode.EventTypeConnected:
				logger.Info(ctx, "Connected to Slack")
			case socketmode.EventTypeConnectionError:
				logger.Warn(ctx, "Slack connection error", "data", evt.Data)
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				b.socket.Ack(*evt.Request)

				switch ev := apiEvent.InnerEvent.Data.(type) {
				case *slackevents.AppMentionEvent:
					b.handleMention(ctx, ev, run)
				}
			}
		}
	}()
	return b.socket.RunContext(ctx)
}

func (b *Bot) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent, run RunFunc) {
	threadTS := ev.ThreadTimeStamp
	if threadTS == "" {
		threadTS = ev.TimeStamp
	}

	if ev.Channel != b.channel {
		b.post(ctx, ev.Channel, threadTS,
			fmt.Sprintf("このチャンネル (%s) では利用できません。指定されたチャンネル (%s) で実行してください。", ev.Channel, b.channel))
		return
	}

	if err := b.client.AddReaction("eyes", slack.NewRefToMessage(ev.Channel, ev.TimeStamp)); err != nil {
		logger.Warn(ctx, "Failed to add reaction", "error", err)
	}

	progress := func(text string) {
		b.post(ctx, b.channel, threadTS, text)
	}
	progress("🚀 ニュースレポート生成を開始します...")

	go func() {
		if err := run(ctx, progress, threadTS); err != nil {
			logger.ErrorWithErr(ctx, "Run failed", err, "thread", threadTS)
		}
	}()
}

func (b *Bot) post(ctx context.Context, channel, threadTS, text string) {
	_, _, err := b.client.PostMessage(channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
	)
	if err != nil {
		logger.Warn(ctx, "Failed to post message", "error", err)
	}
}

// Upload delivers the artifact files into the run thread.
func (b *Bot) Upload(paths []string, destination, token string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		_, err = b.client.UploadFileV2(slack.UploadFileV2Parameters{
			Channel:         destination,
			File:            path,
			Filename:        filepath.Base(path),
			FileSize:        int(info.Size()),
			ThreadTimestamp: token,
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
	}
	return nil
}

// React adds a reaction to the triggering message.
func (b *Bot) React(name, token string) error {
	return b.client.AddReaction(name, slack.NewRefToMessage(b.channel, token))
}

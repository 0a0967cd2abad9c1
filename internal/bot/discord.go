package bot

import (
	"context"
	"io"

	"github.com/bwmarrin/discordgo"
)

// Messenger delivers replies to a chat channel.
type Messenger interface {
	Send(channelID, text string) error
	SendFile(channelID, name string, r io.Reader) error
}

type discordMessenger struct {
	session *discordgo.Session
}

func NewDiscordMessenger(s *discordgo.Session) Messenger {
	return &discordMessenger{session: s}
}

func (d *discordMessenger) Send(channelID, text string) error {
	_, err := d.session.ChannelMessageSend(channelID, text)
	return err
}

func (d *discordMessenger) SendFile(channelID, name string, r io.Reader) error {
	_, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{Name: name, ContentType: "text/csv", Reader: r}},
	})
	return err
}

// Attach subscribes the bot to messages on s. Call it before s.Open.
func (b *Bot) Attach(ctx context.Context, s *discordgo.Session) {
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		b.Handle(ctx, Message{
			ChannelID: m.ChannelID,
			AuthorID:  m.Author.ID,
			Content:   m.Content,
		})
	})
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("discord bot connected", "user", r.User.Username, "guilds", len(r.Guilds))
	})
}

package notifier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/shift-booking-bot/internal/booking"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type Notifier interface {
	NotifyBooked(c *booking.Confirmation) error
	NotifyCancelled(c *booking.CancellationConfirmation) error
	NotifyReminder(userID string, r booking.Reminder) error
}

// discordAPI is the part of *discordgo.Session the notifier uses.
type discordAPI interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// DiscordNotifier posts every booking event to the announce channel, and
// cancellations plus rebookings of cancelled slots to the cover channel,
// where students look for shifts to pick up. Either channel may be empty.
type DiscordNotifier struct {
	session           discordAPI
	announceChannelID string
	coverChannelID    string
}

func NewDiscordNotifier(session *discordgo.Session, announceChannelID, coverChannelID string) *DiscordNotifier {
	n := &DiscordNotifier{
		announceChannelID: announceChannelID,
		coverChannelID:    coverChannelID,
	}
	if session != nil {
		n.session = session
	}
	return n
}

func (n *DiscordNotifier) NotifyBooked(c *booking.Confirmation) error {
	slot := slotLine(c.StudentName, c.StudentID, c.Date, c.Shift)
	err := n.send(n.announceChannelID, fmt.Sprintf("📅 **Booked:** %s (%d/%d)", slot, c.Booked, c.Capacity))
	if c.Rebooking {
		err = errors.Join(err, n.send(n.coverChannelID, "🔁 **Rebooked Cancelled Shift:** "+slot))
	}
	return err
}

func (n *DiscordNotifier) NotifyCancelled(c *booking.CancellationConfirmation) error {
	slot := slotLine(c.StudentName, c.StudentID, c.Date, c.Shift)
	return errors.Join(
		n.send(n.announceChannelID, "❌ **Cancelled:** "+slot),
		n.send(n.coverChannelID, "🆘 **Shift Cancelled:** "+slot),
	)
}

// NotifyReminder sends r to userID as a direct message.
func (n *DiscordNotifier) NotifyReminder(userID string, r booking.Reminder) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	ch, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open direct message channel: %w", err)
	}
	_, err = n.session.ChannelMessageSend(ch.ID, FormatReminder(r))
	return err
}

func (n *DiscordNotifier) send(channelID, message string) error {
	if channelID == "" {
		return nil
	}
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if _, err := n.session.ChannelMessageSend(channelID, message); err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return nil
}

func slotLine(name, studentID string, date time.Time, shift shifts.Shift) string {
	return fmt.Sprintf("%s (%s) on %s [%s]", name, studentID, shifts.FormatDate(date), shift)
}

// FormatReminder renders the shift, its start time and everyone on it.
func FormatReminder(r booking.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ **Shift Reminder: %s (%s)**\n", r.Shift, r.StartsAt.In(shifts.Zone).Format("15:04"))
	fmt.Fprintf(&b, "**Date:** %s", shifts.FormatDate(r.Date))
	for _, a := range r.Attendees {
		fmt.Fprintf(&b, "\n%s (ID: %s)", a.Name, a.StudentID)
	}
	return b.String()
}

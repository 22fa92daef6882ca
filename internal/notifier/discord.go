package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/trip-planner-api/internal/models"
	"go.uber.org/zap"
)

type Notifier interface {
	NotifyTripGenerated(user models.User, trip models.Trip, source string) error
}

// MessageSender is the part of a discord session the notifier needs.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   MessageSender
	channelID string
	logger    *zap.Logger
}

func NewDiscordNotifier(session MessageSender, channelID string, logger *zap.Logger) *DiscordNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		logger:    logger.Named("notifier"),
	}
}

// NewDiscordSession opens a bot session, or returns nil when no token is set.
func NewDiscordSession(botToken string) (*discordgo.Session, error) {
	if botToken == "" {
		return nil, nil
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return session, nil
}

func (n *DiscordNotifier) NotifyTripGenerated(user models.User, trip models.Trip, source string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	who := user.Username
	if user.DiscordID != nil {
		who = fmt.Sprintf("%s (<@%s>)", user.Username, *user.DiscordID)
	}

	origin := "AI model"
	if source == "fallback" {
		origin = "basic template (model unavailable)"
	}

	message := fmt.Sprintf("🧳 **New Trip Planned**\n**User:** %s\n**Destination:** %s\n**Dates:** %s - %s\n**Days:** %d\n**Plan:** %s",
		who,
		trip.Destination,
		trip.StartDate.Format("2006-01-02"),
		trip.EndDate.Format("2006-01-02"),
		len(trip.Days),
		origin,
	)

	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		n.logger.Warn("Failed to send discord message", zap.Error(err))
		return err
	}

	return nil
}

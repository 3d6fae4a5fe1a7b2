package discord

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/config"
	"github.com/tcg-price-bot/app/services"
	"github.com/tcg-price-bot/internal/classifier"
	"github.com/tcg-price-bot/internal/index"
)

const (
	commandMatchLimit = 5
	lookupTimeout     = 5 * time.Minute // first lookup may trigger a full rebuild
	embedColor        = 0xf1c40f
)

var reRetailPrice = regexp.MustCompile(`\$\s*([0-9]+(?:\.[0-9]{1,2})?)`)

// Bot owns the Discord session and turns incoming messages into price
// lookups. Command messages always get a reply; monitored-channel
// announcements get one only when a catalog match clears the threshold.
type Bot struct {
	session      *discordgo.Session
	prefix       string
	autoRespond  bool
	monitored    map[string]bool
	classifier   *classifier.Classifier
	priceService *services.PriceService
	logger       *zap.Logger
}

// NewBot builds the session but does not connect; call Start.
func NewBot(cfg config.DiscordConfig, cls *classifier.Classifier, priceService *services.PriceService, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	monitored := make(map[string]bool, len(cfg.MonitoredChannels))
	for _, ch := range cfg.MonitoredChannels {
		monitored[ch] = true
	}

	bot := &Bot{
		session:      session,
		prefix:       cfg.CommandPrefix,
		autoRespond:  cfg.AutoRespond,
		monitored:    monitored,
		classifier:   cls,
		priceService: priceService,
		logger:       logger,
	}
	session.AddHandler(bot.onMessageCreate)

	return bot, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	b.logger.Info("Discord session open",
		zap.String("prefix", b.prefix),
		zap.Int("monitored_channels", len(b.monitored)))
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

// onMessageCreate is the single gateway handler. The real work happens in
// functions returning errors; this wrapper owns the logging.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || s.State == nil || s.State.User == nil || m.Author.ID == s.State.User.ID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	var err error
	switch {
	case strings.HasPrefix(m.Content, b.prefix):
		err = b.handleCommand(ctx, m)
	case b.autoRespond && b.monitored[m.ChannelID]:
		err = b.handleAnnouncement(ctx, m)
	default:
		return
	}

	if err != nil {
		b.logger.Error("Message handling failed",
			zap.String("channel_id", m.ChannelID),
			zap.Error(err))
	}
}

// handleCommand serves "!price <name>": a ranked multi-candidate reply, or a
// "no results" reply. Internal failures are never shown to the user.
func (b *Bot) handleCommand(ctx context.Context, m *discordgo.MessageCreate) error {
	query := strings.TrimSpace(strings.TrimPrefix(m.Content, b.prefix))
	if query == "" {
		return b.replyText(m, fmt.Sprintf("Usage: `%s <product name>`", b.prefix))
	}

	results, err := b.priceService.Lookup(ctx, query, commandMatchLimit)
	if err != nil {
		if replyErr := b.replyText(m, "Price lookup is unavailable right now, try again later."); replyErr != nil {
			b.logger.Warn("Failed to send error reply", zap.Error(replyErr))
		}
		return err
	}
	if len(results) == 0 {
		return b.replyText(m, fmt.Sprintf("No catalog matches for **%s**.", query))
	}

	return b.replyEmbed(m, b.renderCandidates(query, results))
}

// handleAnnouncement inspects a restock announcement, extracts candidate
// product names and replies with the best match. Silent when the message is
// off-domain, a skip announcement, or matches nothing.
func (b *Bot) handleAnnouncement(ctx context.Context, m *discordgo.MessageCreate) error {
	combined := combinedText(m.Message)
	if combined == "" {
		return nil
	}
	if b.classifier.ShouldSkip(combined) {
		b.logger.Debug("Skipping announcement", zap.String("channel_id", m.ChannelID))
		return nil
	}
	if !b.classifier.IsDomainProduct(combined) {
		return nil
	}

	for _, candidate := range b.extractCandidates(m.Message) {
		results, err := b.priceService.Lookup(ctx, candidate, 1)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			continue
		}

		retail, hasRetail := parseRetailPrice(combined)
		return b.replyEmbed(m, b.renderBestMatch(results[0], retail, hasRetail))
	}

	return nil
}

// extractCandidates picks the strings worth resolving. Known announcement
// bots put the product name in embed titles; humans put it in the message
// body.
func (b *Bot) extractCandidates(m *discordgo.Message) []string {
	var candidates []string

	if m.Author != nil && b.classifier.IsKnownSourceBot(m.Author.Username) {
		for _, embed := range m.Embeds {
			if embed.Title != "" {
				candidates = append(candidates, embed.Title)
			}
			if embed.Description != "" {
				candidates = append(candidates, embed.Description)
			}
			for _, field := range embed.Fields {
				if field != nil && field.Value != "" {
					candidates = append(candidates, field.Value)
				}
			}
		}
		return candidates
	}

	if m.Content != "" {
		candidates = append(candidates, m.Content)
	}
	for _, embed := range m.Embeds {
		if embed.Title != "" {
			candidates = append(candidates, embed.Title)
		}
	}
	return candidates
}

// combinedText flattens content plus embed text for classification.
func combinedText(m *discordgo.Message) string {
	parts := []string{m.Content}
	for _, embed := range m.Embeds {
		parts = append(parts, embed.Title, embed.Description)
		for _, field := range embed.Fields {
			if field != nil {
				parts = append(parts, field.Name, field.Value)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// parseRetailPrice pulls the first $xx.xx amount out of announcement text.
func parseRetailPrice(text string) (float64, bool) {
	m := reRetailPrice.FindStringSubmatch(text)
	if len(m) != 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// renderBestMatch builds the single best-match embed.
func (b *Bot) renderBestMatch(result index.Result, retail float64, hasRetail bool) *discordgo.MessageEmbed {
	item := result.Item

	fields := []*discordgo.MessageEmbedField{
		{Name: "Set", Value: item.GroupName, Inline: true},
		{Name: "Prices", Value: item.PriceSummary(), Inline: false},
	}
	if hasRetail {
		if delta, ok := item.MarketDelta(retail); ok {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   "Retail vs Market",
				Value:  fmt.Sprintf("Retail $%.2f (%+.2f vs market)", retail, delta),
				Inline: false,
			})
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:  item.Name,
		URL:    item.CanonicalURL(),
		Color:  embedColor,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: "TCGplayer market data"},
	}
	if item.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: item.ImageURL}
	}
	return embed
}

// renderCandidates builds the ranked multi-candidate embed for commands.
func (b *Bot) renderCandidates(query string, results []index.Result) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, r := range results {
		summary := r.Item.PriceSummary()
		fmt.Fprintf(&sb, "**%d.** [%s](%s) | %s (%s)\n", i+1, r.Item.Name, r.Item.CanonicalURL(), summary, r.Item.GroupName)
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Matches for \"%s\"", query),
		Description: sb.String(),
		Color:       embedColor,
	}
}

func (b *Bot) replyText(m *discordgo.MessageCreate, text string) error {
	_, err := b.session.ChannelMessageSendReply(m.ChannelID, text, m.Reference())
	return err
}

func (b *Bot) replyEmbed(m *discordgo.MessageCreate, embed *discordgo.MessageEmbed) error {
	_, err := b.session.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference())
	return err
}

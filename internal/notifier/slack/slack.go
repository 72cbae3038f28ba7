package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/league"
	"github.com/mauv0809/padel-ladder/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts ladder notifications and announcements to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	dryRun    bool
}

// NewNotifier creates a new Notifier posting announcements to channelID.
func NewNotifier(token, channelID string) *Notifier {
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
	}
}

// DryRun makes the notifier log messages instead of posting them.
func (s *Notifier) DryRun(enabled bool) *Notifier {
	s.dryRun = enabled
	return s
}

// ChannelID returns the announcement channel.
func (s *Notifier) ChannelID() string {
	return s.channelID
}

func (s *Notifier) sendMessage(ctx context.Context, channelID string, message slack.Message) (string, string, error) {
	if channelID == "" {
		channelID = s.channelID
	}
	if s.dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channel, timestamp, err := s.api.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(fallbackText(message), false),
	)
	if err != nil {
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}
	log.Info("Successfully sent Slack message", "channel", channel, "timestamp", timestamp)
	return channel, timestamp, nil
}

// Notify posts subject and body to a channel or user id. An empty recipient
// means the announcement channel.
func (s *Notifier) Notify(ctx context.Context, recipient, subject, body string) bool {
	_, _, err := s.sendMessage(ctx, recipient, formatNotification(subject, body))
	return err == nil
}

// AnnounceRankChange posts a public rank change to the announcement channel.
func (s *Notifier) AnnounceRankChange(ctx context.Context, event ladder.RankChangedEvent) error {
	_, _, err := s.sendMessage(ctx, s.channelID, FormatRankChange(event))
	return err
}

// AnnounceRankings posts the current ranking of a division to the announcement channel.
func (s *Notifier) AnnounceRankings(ctx context.Context, division ladder.Division, rows []ladder.RankingRow) error {
	_, _, err := s.sendMessage(ctx, s.channelID, FormatRankings(division, rows))
	return err
}

func fallbackText(message slack.Message) string {
	for _, block := range message.Blocks.BlockSet {
		switch b := block.(type) {
		case *slack.HeaderBlock:
			return b.Text.Text
		case *slack.SectionBlock:
			if b.Text != nil {
				return b.Text.Text
			}
		}
	}
	return message.Text
}

func formatNotification(subject, body string) slack.Message {
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", subject, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", body, true, false), nil, nil),
	)
}

// position renders a rank with a medal for the podium.
func position(rank int) string {
	switch rank {
	case 1:
		return "1. 🥇"
	case 2:
		return "2. 🥈"
	case 3:
		return "3. 🥉"
	}
	return fmt.Sprintf("%d.", rank)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatRankChange builds the announcement for one rank change.
func FormatRankChange(event ladder.RankChangedEvent) slack.Message {
	var text string
	switch {
	case event.NewRank == 0:
		text = fmt.Sprintf("*%s* left the %s ladder (was #%d).", event.TeamName, event.Division, event.OldRank)
	case event.NewRank < event.OldRank:
		text = fmt.Sprintf("⬆️ *%s* climbs from #%d to #%d in the %s ladder.", event.TeamName, event.OldRank, event.NewRank, event.Division)
	default:
		text = fmt.Sprintf("⬇️ *%s* drops from #%d to #%d in the %s ladder.", event.TeamName, event.OldRank, event.NewRank, event.Division)
	}
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	}
	if reason := describeReason(event.Reason); reason != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", reason, false, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

func describeReason(reason string) string {
	switch reason {
	case ladder.ReasonMatch:
		return "Result of a ladder match"
	case ladder.ReasonAcceptancePenalty:
		return "Penalty: challenge not answered in time"
	case ladder.ReasonNoShowPenalty:
		return "Penalty: no-show"
	case ladder.ReasonHolidayPenalty:
		return "Penalty: holiday mode beyond the grace period"
	case ladder.ReasonAdminPenalty:
		return "Penalty applied by an admin"
	case ladder.ReasonAdminMove:
		return "Moved by an admin"
	case ladder.ReasonWithdrawal:
		return "Team withdrew"
	}
	return ""
}

// FormatRankings creates a Slack message listing a division ladder.
func FormatRankings(division ladder.Division, rows []ladder.RankingRow) slack.Message {
	blocks := make([]slack.Block, 0)
	header := fmt.Sprintf("🏆 %s ladder 🏆", title(string(division)))
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, true, false)))

	if len(rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No teams on this ladder yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for _, row := range rows {
		t := row.Team
		line := fmt.Sprintf("%s *%s* (%s & %s) W%d L%d D%d",
			position(t.Rank), t.Name, t.Player1Name, t.Player2Name, t.Stats.Wins, t.Stats.Losses, t.Stats.Draws)
		var flags []string
		if row.Locked {
			flags = append(flags, "in a challenge")
		}
		if t.HolidayActive {
			flags = append(flags, "on holiday")
		}
		if len(flags) > 0 {
			line += " _" + strings.Join(flags, ", ") + "_"
		}
		lines = append(lines, line)
	}
	// Section text is limited to 3000 characters.
	for start := 0; start < len(lines); start += 25 {
		end := min(start+25, len(lines))
		text := strings.Join(lines[start:end], "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil))
	}
	return slack.NewBlockMessage(blocks...)
}

// FormatStandings creates a Slack message with the season league table.
func FormatStandings(teams []*league.Team) slack.Message {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", "🏆 League standings 🏆", true, false)),
	}
	if len(teams) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No league teams registered.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}
	var lines []string
	for i, t := range teams {
		lines = append(lines, fmt.Sprintf("%s *%s* %d pts (W%d L%d D%d, sets %+d)",
			position(i+1), t.Name, t.Points, t.Wins, t.Losses, t.Draws, t.SetsDiff()))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
	return slack.NewBlockMessage(blocks...)
}

// FormatError creates an ephemeral-style error reply for slash commands.
func FormatError(text string) slack.Message {
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

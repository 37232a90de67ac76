package transport

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vthunder/tutor/internal/eventbus"
	"github.com/vthunder/tutor/internal/logging"
	"github.com/vthunder/tutor/internal/types"
)

// maxDiscordMessageLength is Discord's maximum message length, grounded on
// the teacher's DiscordEffector.
const maxDiscordMessageLength = 2000

// DiscordBridge turns one Discord channel into a live Context.mode "live"
// session: incoming messages become student_question events, and
// expert_answer text is chunked and sent back (plus a short acknowledgement
// on reflection_answer), following the teacher's DiscordEffector delivery
// and chunking logic.
type DiscordBridge struct {
	session   *discordgo.Session
	channelID string
	botID     string
	bus       *eventbus.Bus
}

// NewDiscordBridge builds a bridge over an already-authenticated session,
// registers its message handler, and subscribes its reply sender to the
// bus. Open() must still be called to connect.
func NewDiscordBridge(session *discordgo.Session, channelID string, bus *eventbus.Bus) *DiscordBridge {
	d := &DiscordBridge{session: session, channelID: channelID, bus: bus}
	session.AddHandler(d.handleMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	bus.Subscribe("expert_answer", d.onExpertAnswer)
	bus.Subscribe("reflection_answer", d.onReflectionAcknowledged)
	return d
}

// Open connects to Discord and records the bot's own user id for
// self-message filtering.
func (d *DiscordBridge) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}
	if d.session.State != nil && d.session.State.User != nil {
		d.botID = d.session.State.User.ID
	}
	logging.Info("transport", "discord bridge connected to channel %s", d.channelID)
	return nil
}

// Close disconnects from Discord.
func (d *DiscordBridge) Close() error {
	return d.session.Close()
}

func (d *DiscordBridge) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == d.botID {
		return
	}
	if d.channelID != "" && m.ChannelID != d.channelID {
		return
	}
	text := strings.TrimSpace(m.Content)
	if text == "" {
		return
	}
	d.bus.Publish(types.Event{
		Type:   "student_question",
		Source: "transport",
		Payload: map[string]any{"text": text},
	})
}

func (d *DiscordBridge) onExpertAnswer(ev types.Event) error {
	answer, ok := ev.Payload["answer"].(types.Answer)
	if !ok {
		return nil
	}
	text := answer.AnswerEmpathic
	if text == "" {
		text = answer.AnswerText
	}
	return d.send(text)
}

func (d *DiscordBridge) onReflectionAcknowledged(ev types.Event) error {
	return d.send("Спасибо за рефлексию — занятие завершается.")
}

func (d *DiscordBridge) send(content string) error {
	if content == "" {
		return nil
	}
	chunks := chunkMessage(content, maxDiscordMessageLength)
	for i, chunk := range chunks {
		if _, err := d.session.ChannelMessageSend(d.channelID, chunk); err != nil {
			return fmt.Errorf("failed to send chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if i < len(chunks)-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}
	return nil
}

// chunkMessage splits content on blank-line or word boundaries so no chunk
// exceeds maxLen, directly ported from the teacher's DiscordEffector.
func chunkMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	remaining := content
	for len(remaining) > 0 {
		if len(remaining) <= maxLen {
			chunks = append(chunks, remaining)
			break
		}
		splitAt := findSplitPoint(remaining, maxLen)
		chunks = append(chunks, strings.TrimRight(remaining[:splitAt], " \n"))
		remaining = strings.TrimLeft(remaining[splitAt:], " \n")
	}
	return chunks
}

// findSplitPoint finds the best place to split content within maxLen,
// preferring a paragraph break, then a word boundary, then a hard cut.
func findSplitPoint(content string, maxLen int) int {
	if len(content) <= maxLen {
		return len(content)
	}
	searchArea := content[:maxLen]

	if idx := strings.LastIndex(searchArea, "\n\n"); idx > maxLen/2 {
		return idx
	}
	if idx := strings.LastIndex(searchArea, " "); idx > maxLen/2 {
		return idx
	}
	return maxLen
}

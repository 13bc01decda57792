package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tuananhvga/temptts/internal/config"
	"github.com/tuananhvga/temptts/internal/session"
	"github.com/tuananhvga/temptts/internal/tts"
	"github.com/tuananhvga/temptts/internal/version"
	"github.com/tuananhvga/temptts/internal/voice"
)

// Bot is the Discord TTS bot: it watches guild messages for the trigger
// prefix and feeds the per-guild playback pipeline.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	registry   *session.Registry
	supervisor *voice.Supervisor
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config) error {
	b := &Bot{cfg: cfg}
	if err := b.run(ctx); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.registry = session.New(b.cfg.IdleTimeout)
	b.supervisor = voice.NewSupervisor(ctx, voice.NewDiscordTransport(dg), b.registry)

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMessageUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildVoiceStates
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] ✅ %s is running as %s.", version.AppFullName, r.User.Username)
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(m.Message)
}

// onMessageUpdate is called when a message is edited; edited messages are
// spoken too, matching create handling.
func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	b.handleMessage(m.Message)
}

// handleMessage acts only on non-bot authors whose message carries the
// trigger prefix and who are currently in a voice channel. Everything else
// is silently ignored.
func (b *Bot) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	prefix := b.cfg.TriggerPrefix
	if len(m.Content) <= len(prefix) || !strings.HasPrefix(m.Content, prefix) {
		return
	}

	vs, err := b.FindUserVoiceState(m.GuildID, m.Author.ID)
	if err != nil {
		log.Printf("[WARN] No voice state for user %s in guild %s: %v", m.Author.ID, m.GuildID, err)
		return
	}

	b.ProcessRequest(m.Content[len(prefix):], vs.ChannelID, m.GuildID)
}

// ProcessRequest turns request text into queued audio for the guild. It is
// fire-and-forget: failures are logged, never surfaced — a request that
// cannot be chunked simply produces no audio.
func (b *Bot) ProcessRequest(text, voiceChannelID, guildID string) {
	if err := b.supervisor.Acquire(guildID, voiceChannelID); err != nil {
		log.Printf("[ERR] Failed to acquire voice connection for guild %s: %v", guildID, err)
		return
	}

	utterances := tts.Chunk(text)
	if len(utterances) == 0 {
		log.Printf("[INFO] Nothing playable in request for guild %s", guildID)
		return
	}

	b.registry.Enqueue(guildID, tts.BuildURLs(utterances, b.cfg.TTSLanguage))
}

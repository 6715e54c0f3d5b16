package discord

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"tunebox/internal/config"
	"tunebox/internal/session"
	"tunebox/internal/version"
)

// Bot is the Discord front end: it registers the play command, translates
// interactions into manager calls, and speaks the error taxonomy back to
// users as ephemeral replies.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	manager *session.Manager
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, dg *discordgo.Session, manager *session.Manager) error {
	b := &Bot{dg: dg, cfg: cfg, manager: manager}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMessages
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	manager.Shutdown()
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			log.Printf("[ERR] Error registering commands for guild %s: %v", g.ID, err)
		}
	}

	log.Printf("[INFO] ✅ %s %s is running as %v.", version.AppName, version.AppVersion, botInfo.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)
	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for guild %s: %v", g.Guild.ID, err)
	}
}

func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	_, err := b.dg.ApplicationCommandCreate(appID, guildID, &discordgo.ApplicationCommand{
		Name:        "play",
		Description: "Play a track, playlist or search query in your voice channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "URL, playlist URL or search text",
				Required:    true,
			},
		},
	})
	return err
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "play" {
			b.handlePlay(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	query := ""
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	voiceChannelID, err := b.findUserVoiceChannel(i.GuildID, user.ID)
	if err != nil {
		respondEphemeral(s, i, "Join a voice channel first.")
		return
	}

	// Resolution can be slow; acknowledge first and follow up.
	if err := deferEphemeral(s, i); err != nil {
		log.Printf("[WARN] Failed to defer interaction: %v", err)
		return
	}

	res, err := b.manager.Play(context.Background(), session.PlayRequest{
		GuildID:        i.GuildID,
		UserID:         user.ID,
		Username:       user.Username,
		VoiceChannelID: voiceChannelID,
		TextChannelID:  i.ChannelID,
		Query:          query,
	})
	if err != nil {
		followupEphemeral(s, i, errMessage(err))
		return
	}

	if res.PlaylistTotal > 1 {
		followupEphemeral(s, i, fmt.Sprintf("Queued the first track, expanding %d more from the playlist.", res.PlaylistTotal-1))
		return
	}
	followupEphemeral(s, i, "Track queued.")
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	action, ok := controlActions[i.MessageComponentData().CustomID]
	if !ok {
		log.Printf("[WARN] Unknown component customID: %s", i.MessageComponentData().CustomID)
		return
	}

	msg, err := b.manager.Control(i.GuildID, user.ID, action)
	if err != nil {
		respondEphemeral(s, i, errMessage(err))
		return
	}
	respondEphemeral(s, i, msg)
}

func (b *Bot) findUserVoiceChannel(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", errors.New("user not in any voice channel")
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// errMessage translates manager errors into user-facing replies.
func errMessage(err error) string {
	var resErr *session.ResolutionError
	var sinkErr *session.SinkError

	switch {
	case errors.Is(err, session.ErrSessionBusy):
		return "Someone else is running the music session on this server right now."
	case errors.Is(err, session.ErrNotOwner):
		return "Only the session owner can use the controls."
	case errors.Is(err, session.ErrRateLimited):
		return "Easy there. Wait a moment between actions."
	case errors.Is(err, session.ErrNotInSession):
		return "There is no active music session."
	case errors.Is(err, session.ErrNothingPlaying):
		return "Nothing is playing right now."
	case errors.Is(err, session.ErrNotPaused):
		return "Playback is not paused."
	case errors.As(err, &resErr):
		return fmt.Sprintf("Could not resolve %q: %v", resErr.Query, resErr.Err)
	case errors.As(err, &sinkErr):
		return fmt.Sprintf("Playback of %q failed: %v", sinkErr.Title, sinkErr.Err)
	default:
		return fmt.Sprintf("Something went wrong: %v", err)
	}
}

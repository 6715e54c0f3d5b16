package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"tunebox/internal/session"
)

const EmbedColor = 0x1e66b0

// Presenter renders the per-guild status message and answers voice channel
// membership queries. It satisfies session.Presenter.
type Presenter struct {
	dg *discordgo.Session
}

func NewPresenter(dg *discordgo.Session) *Presenter {
	return &Presenter{dg: dg}
}

func (p *Presenter) SendStatus(channelID string, st session.Status) (session.StatusHandle, error) {
	msg, err := p.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{statusEmbed(st)},
		Components: controlRows(),
	})
	if err != nil {
		return session.StatusHandle{}, fmt.Errorf("failed to send status message: %w", err)
	}
	return session.StatusHandle{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (p *Presenter) EditStatus(h session.StatusHandle, st session.Status) error {
	embeds := []*discordgo.MessageEmbed{statusEmbed(st)}
	components := controlRows()
	_, err := p.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    h.ChannelID,
		ID:         h.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("failed to edit status message: %w", err)
	}
	return nil
}

func (p *Presenter) DeleteStatus(h session.StatusHandle) error {
	return p.dg.ChannelMessageDelete(h.ChannelID, h.MessageID)
}

func (p *Presenter) ChannelMembers(guildID, channelID string) ([]session.Participant, error) {
	guild, err := p.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	var members []session.Participant
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		members = append(members, session.Participant{
			UserID: vs.UserID,
			Bot:    p.isBot(guildID, vs.UserID),
		})
	}
	return members, nil
}

func (p *Presenter) isBot(guildID, userID string) bool {
	member, err := p.dg.State.Member(guildID, userID)
	if err != nil {
		member, err = p.dg.GuildMember(guildID, userID)
		if err != nil {
			return false
		}
	}
	return member.User != nil && member.User.Bot
}

func statusEmbed(st session.Status) *discordgo.MessageEmbed {
	desc := "Nothing playing"
	if st.NowPlaying != "" {
		if st.Paused {
			desc = "⏸️ " + st.NowPlaying
		} else {
			desc = "🎶 " + st.NowPlaying
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "Music control",
		Description: desc,
		Color:       EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d in queue · session owner: %s", st.QueueLen, st.OwnerName),
		},
	}
}

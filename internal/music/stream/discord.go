package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// Controls exposes the per-frame playback state the send loop consults:
// whether to hold frames (pause) and what gain to apply.
type Controls interface {
	IsPaused() bool
	Volume() float64
}

// StreamToDiscord pumps PCM frames from the reader into the voice connection
// as opus packets until the stream ends or stop is closed. A closed stop
// channel is the only clean early exit; io.EOF and io.ErrUnexpectedEOF mark
// the natural end of a track. Pausing holds the loop without consuming input.
func StreamToDiscord(src io.ReadCloser, stop <-chan struct{}, vc *discordgo.VoiceConnection, ctrl Controls) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	defer src.Close()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if ctrl.IsPaused() {
			select {
			case <-stop:
				return nil
			case <-time.After(20 * time.Millisecond):
			}
			continue
		}

		_, err := io.ReadFull(src, pcmBuf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		vol := ctrl.Volume()
		for i := range intBuf {
			sample := int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
			intBuf[i] = int16(float64(sample) * vol)
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case <-stop:
			return nil
		case vc.OpusSend <- opus:
		}
	}
}

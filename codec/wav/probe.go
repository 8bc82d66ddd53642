/*
NAME
  probe.go

DESCRIPTION
  probe.go provides reading of the fmt chunk of a wav buffer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

// Info holds the audio description found in the fmt chunk of a wav buffer.
type Info struct {
	audio.Format
	AudioFormat int
	BitDepth    int

	// SubFormat is the format code held in the first two bytes of the
	// subformat GUID of a WAVE_FORMAT_EXTENSIBLE fmt chunk, otherwise zero.
	SubFormat int

	// Found is false when the buffer has no fmt chunk, in which case the
	// other fields are zero.
	Found bool
}

// IsPCM16 returns true if i describes 16-bit linear PCM, either directly or
// as a WAVE_FORMAT_EXTENSIBLE chunk with the PCM subformat.
func (i Info) IsPCM16() bool {
	pcm := i.AudioFormat == PCMFormat || (i.AudioFormat == ExtensibleFormat && i.SubFormat == PCMFormat)
	return pcm && i.BitDepth == 16
}

func (i Info) String() string {
	if !i.Found {
		return "no fmt chunk"
	}
	if i.AudioFormat == ExtensibleFormat {
		return fmt.Sprintf("format %d (subformat %d), %d channels @ %d Hz / %d bits", i.AudioFormat, i.SubFormat, i.NumChannels, i.SampleRate, i.BitDepth)
	}
	return fmt.Sprintf("format %d, %d channels @ %d Hz / %d bits", i.AudioFormat, i.NumChannels, i.SampleRate, i.BitDepth)
}

// Probe reads the fmt chunk of buf. A buffer without a fmt chunk is not an
// error; Info.Found is false.
func Probe(buf []byte) (Info, error) {
	d := gowav.NewDecoder(bytes.NewReader(buf))
	d.ReadInfo()
	err := d.Err()
	if err != nil {
		return Info{}, fmt.Errorf("could not read wav header: %w", err)
	}
	if d.NumChans == 0 {
		return Info{}, nil
	}
	info := Info{
		Format:      *d.Format(),
		AudioFormat: int(d.WavAudioFormat),
		BitDepth:    int(d.BitDepth),
		Found:       true,
	}
	if info.AudioFormat == ExtensibleFormat {
		info.SubFormat = subFormat(buf)
	}
	return info, nil
}

// Offset of the subformat GUID in an extensible fmt chunk payload.
const subFormatOffset = 24

// subFormat returns the format code at the start of the subformat GUID of the
// fmt chunk of buf, or zero if the chunk is too short to hold one.
func subFormat(buf []byte) int {
	c, err := Walk(buf, FmtID)
	if err != nil || c.Size < subFormatOffset+2 || c.End() > int64(len(buf)) {
		return 0
	}
	p := c.PayloadOffset() + subFormatOffset
	return int(binary.LittleEndian.Uint16(buf[p:]))
}

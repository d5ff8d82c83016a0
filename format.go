package mmport

import (
	"github.com/nareix/joy4/av"
	"github.com/nareix/joy4/codec/h264parser"
)

// MediaType classifies the elementary stream a Format describes.
type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeControl
	MediaTypeAudio
	MediaTypeVideo
	MediaTypeSubpicture
)

// VideoFormat is the video-specific sub-structure of a Format.
type VideoFormat struct {
	Width, Height uint32

	FrameRateNum, FrameRateDen uint32
	ParNum, ParDen             uint32

	// Codec holds the decoded codec parameters once known -- typically a
	// h264parser.CodecData parsed from an SPS/PPS pair carried in a
	// FORMAT_CHANGED event. Nil until a codec has announced itself.
	Codec av.CodecData
}

func (v *VideoFormat) clone() *VideoFormat {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// AudioFormat is the audio-specific sub-structure of a Format.
type AudioFormat struct {
	SampleRate    uint32
	Channels      uint32
	BitsPerSample uint32
}

func (a *AudioFormat) clone() *AudioFormat {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Format is a port's format descriptor: encoding, media type, and an
// optional type-specific sub-structure. A Format is owned by the port that
// allocated it for the lifetime of that port (see Alloc/Free); a pointer
// copy is kept in the port's private core to detect a client accidentally
// overwriting port.Format (see FormatCommit, invariant 1).
type Format struct {
	Type     MediaType
	Encoding FourCC

	Video *VideoFormat
	Audio *AudioFormat

	// Extra carries codec-specific out-of-band data that doesn't fit
	// Video/Audio (e.g. a raw AVCDecoderConfigurationRecord).
	Extra []byte
}

// NewFormat allocates an empty format descriptor, mirroring the
// component-module collaborator responsible for format allocation (out of
// scope for this package beyond this single constructor -- §1).
func NewFormat() *Format {
	return &Format{}
}

// NewH264VideoFormat builds a VideoFormat whose Codec is populated by
// parsing an SPS/PPS pair, the same way the reference MP4 demuxer inspects
// a stream's av.CodecData for its width/height.
func NewH264VideoFormat(sps, pps []byte) (*VideoFormat, error) {
	codec, err := h264parser.NewCodecDataFromSPSAndPPS(sps, pps)
	if err != nil {
		return nil, wrap(err, "parse SPS/PPS")
	}
	return &VideoFormat{
		Width:  uint32(codec.Width()),
		Height: uint32(codec.Height()),
		Codec:  codec,
	}, nil
}

// FormatFullCopy deep-copies src into dst, the Go analogue of
// mmal_format_full_copy: used by the connected-output forwarding callback
// to apply a FORMAT_CHANGED event onto the local format before committing
// it.
func FormatFullCopy(dst, src *Format) {
	dst.Type = src.Type
	dst.Encoding = src.Encoding
	dst.Video = src.Video.clone()
	dst.Audio = src.Audio.clone()
	if src.Extra != nil {
		dst.Extra = append([]byte(nil), src.Extra...)
	} else {
		dst.Extra = nil
	}
}

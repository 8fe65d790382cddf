package converter

import (
	"strconv"
	"strings"
)

// Defaults for every tunable the pipeline recognizes.
const (
	DefaultHLSTime         = 10
	DefaultPlaylistType    = "vod"
	DefaultCopyThreshold   = 720
	DefaultAudioCodec      = "aac"
	DefaultAudioBitrate    = "128k"
	DefaultVideoCodec      = "libx264"
	DefaultVideoProfile    = "main"
	DefaultCRF             = 20
	DefaultGOPSize         = 48
	DefaultMasterName      = "master.m3u8"
	DefaultSegmentTemplate = "segment%03d.ts"
	DefaultPlaylistName    = "playlist.m3u8"
	DefaultProxyTemplate   = "/media/{basePath}/{assetId}/"

	// DefaultBandwidth is used when a bitrate string cannot be parsed.
	DefaultBandwidth = 500000
)

// DefaultRenditions is the ladder used when the caller supplies none.
var DefaultRenditions = []RenditionSpec{
	{Name: "360p", Size: "640x360", Bitrate: "800k"},
	{Name: "480p", Size: "854x480", Bitrate: "1400k"},
	{Name: "720p", Size: "1280x720", Bitrate: "2800k"},
}

// Options is the pipeline configuration. Zero-value fields take the
// documented defaults; Normalize is applied once at the orchestrator
// boundary so the rest of the pipeline never re-checks.
type Options struct {
	Renditions             []RenditionSpec
	HLSTime                int
	HLSPlaylistType        string
	CopyCodecsThresholdPix int // max height still eligible for the copy policy
	AudioCodec             string
	AudioBitrate           string
	VideoCodec             string
	VideoProfile           string
	CRF                    int
	GOPSize                int
	ProxyBaseURLTemplate   string
	MasterPlaylistName     string
	SegmentNameTemplate    string
	ResolutionPlaylistName string
	MaxConcurrentEncodes   int // 0 = unbounded
}

// Normalize returns a copy of o with every unset field defaulted.
func (o Options) Normalize() Options {
	if len(o.Renditions) == 0 {
		o.Renditions = DefaultRenditions
	}
	if o.HLSTime <= 0 {
		o.HLSTime = DefaultHLSTime
	}
	if o.HLSPlaylistType == "" {
		o.HLSPlaylistType = DefaultPlaylistType
	}
	if o.CopyCodecsThresholdPix <= 0 {
		o.CopyCodecsThresholdPix = DefaultCopyThreshold
	}
	if o.AudioCodec == "" {
		o.AudioCodec = DefaultAudioCodec
	}
	if o.AudioBitrate == "" {
		o.AudioBitrate = DefaultAudioBitrate
	}
	if o.VideoCodec == "" {
		o.VideoCodec = DefaultVideoCodec
	}
	if o.VideoProfile == "" {
		o.VideoProfile = DefaultVideoProfile
	}
	if o.CRF <= 0 {
		o.CRF = DefaultCRF
	}
	if o.GOPSize <= 0 {
		o.GOPSize = DefaultGOPSize
	}
	if o.ProxyBaseURLTemplate == "" {
		o.ProxyBaseURLTemplate = DefaultProxyTemplate
	}
	if o.MasterPlaylistName == "" {
		o.MasterPlaylistName = DefaultMasterName
	}
	if o.SegmentNameTemplate == "" {
		o.SegmentNameTemplate = DefaultSegmentTemplate
	}
	if o.ResolutionPlaylistName == "" {
		o.ResolutionPlaylistName = DefaultPlaylistName
	}
	if o.MaxConcurrentEncodes < 0 {
		o.MaxConcurrentEncodes = 0
	}
	return o
}

// parseBandwidth converts a bitrate string with an optional unit suffix
// ("2500k", "2.5m", "5000000") into bits/sec. Unparseable strings fall back
// to DefaultBandwidth so every rendition advertises a positive bandwidth.
func parseBandwidth(bitrate string) int {
	s := strings.TrimSpace(strings.ToLower(bitrate))
	if s == "" {
		return DefaultBandwidth
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'k':
		mult = 1e3
		s = s[:len(s)-1]
	case 'm':
		mult = 1e6
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return DefaultBandwidth
	}
	return int(v * mult)
}

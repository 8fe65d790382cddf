// Package converter implements the HLS conversion pipeline: planning the
// rendition ladder, fanning out per-rendition encodes, assembling the master
// playlist, and tracking task state along the way.
package converter

// RenditionSpec is one requested output rendition. Immutable once handed to
// a worker.
type RenditionSpec struct {
	Name       string `json:"name"`              // label, e.g. "720p"
	Size       string `json:"size"`              // "WxH" or an encoder scale expression
	Bitrate    string `json:"bitrate"`           // with unit suffix, e.g. "2500k"
	IsOriginal bool   `json:"isOriginal,omitempty"` // matches the source resolution
}

// RenditionResult is the successful outcome of one rendition encode.
type RenditionResult struct {
	Name         string `json:"name"`
	Size         string `json:"size"`
	Bitrate      string `json:"bitrate"`
	Bandwidth    int    `json:"bandwidth"`    // bits/sec derived from Bitrate
	PlaylistPath string `json:"playlistPath"` // rendition playlist, relative to the asset root
}

// ConversionResult is returned to the caller after a successful conversion.
type ConversionResult struct {
	Message            string            `json:"message"`
	OutputDir          string            `json:"outputDir"`
	MasterPlaylistPath string            `json:"masterPlaylistPath"`
	MasterPlaylistURL  string            `json:"masterPlaylistUrl"`
	Renditions         []RenditionResult `json:"renditions"`
}

// ConvertRequest identifies where an asset's output tree lives.
type ConvertRequest struct {
	AssetID  string `json:"assetId"`  // relative output path, e.g. "season1/ep1"
	BasePath string `json:"basePath"` // optional prefix for playlist URLs
}

// AudioTrack describes an audio rendition attached to an existing master
// playlist after the initial conversion.
type AudioTrack struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	URI      string `json:"uri"`
	Default  bool   `json:"default"`
}

// SubtitleTrack describes a subtitle rendition attached to an existing
// master playlist.
type SubtitleTrack struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	URI      string `json:"uri"`
	Default  bool   `json:"default"`
	Forced   bool   `json:"forced"`
}

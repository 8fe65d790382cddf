package converter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/grafov/m3u8"
)

// Fixed rendition group ids used when attaching auxiliary tracks.
const (
	audioGroupID    = "aac-audio"
	subtitleGroupID = "subs"
)

// aacCodecTag is appended to a variant's codec string when a default audio
// track joins a variant that does not advertise AAC yet.
const aacCodecTag = "mp4a.40.2"

// MasterRef points at a written master playlist both on disk and as the
// externally reachable URL.
type MasterRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// CreateMaster writes the multivariant playlist for an asset. Variants are
// listed ascending by bandwidth; players rely on that order for sane default
// quality selection.
func CreateMaster(outputDir string, results []RenditionResult, opts Options, assetID, basePath string) (MasterRef, error) {
	sorted := make([]RenditionResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Bandwidth < sorted[j].Bandwidth })

	proxyBase := generateProxyBaseURL(assetID, basePath, opts.ProxyBaseURLTemplate)

	master := m3u8.NewMasterPlaylist()
	for _, r := range sorted {
		master.Append(proxyBase+r.PlaylistPath, nil, m3u8.VariantParams{
			Bandwidth:  uint32(r.Bandwidth),
			Resolution: r.Size,
			Name:       r.Name,
		})
	}

	path := filepath.Join(outputDir, opts.MasterPlaylistName)
	if err := os.WriteFile(path, master.Encode().Bytes(), 0o644); err != nil {
		return MasterRef{}, fmt.Errorf("write master playlist: %w", err)
	}

	return MasterRef{Path: path, URL: proxyBase + opts.MasterPlaylistName}, nil
}

// AttachMedia re-parses an existing master playlist and splices in audio and
// subtitle rendition groups without disturbing the variants. Prior
// aac-audio/subs associations are cleared first, so the operation is
// idempotent: dubs and subtitles can be re-attached after the fact without
// re-running any video transcoding.
func AttachMedia(masterPath, assetID string, audio []AudioTrack, subs []SubtitleTrack) error {
	f, err := os.Open(masterPath)
	if err != nil {
		return &PlaylistError{Path: masterPath, Reason: "open", Err: err}
	}
	pl, listType, err := m3u8.DecodeFrom(bufio.NewReader(f), true)
	f.Close()
	if err != nil {
		return &PlaylistError{Path: masterPath, Reason: "parse", Err: err}
	}
	if listType != m3u8.MASTER {
		return &PlaylistError{Path: masterPath, Reason: "not a master playlist"}
	}
	master := pl.(*m3u8.MasterPlaylist)

	alts := make([]*m3u8.Alternative, 0, len(audio)+len(subs))
	hasDefaultAudio := false
	for _, tr := range audio {
		if tr.Default {
			hasDefaultAudio = true
		}
		alts = append(alts, &m3u8.Alternative{
			GroupId:    audioGroupID,
			Type:       "AUDIO",
			URI:        tr.URI,
			Language:   tr.Language,
			Name:       trackName(tr.Name, tr.Language),
			Default:    tr.Default,
			Autoselect: "YES",
		})
	}
	for _, tr := range subs {
		alts = append(alts, &m3u8.Alternative{
			GroupId:    subtitleGroupID,
			Type:       "SUBTITLES",
			URI:        tr.URI,
			Language:   tr.Language,
			Name:       trackName(tr.Name, tr.Language),
			Default:    tr.Default,
			Autoselect: "YES",
			Forced:     yesNo(tr.Forced),
		})
	}

	for i, variant := range master.Variants {
		variant.Alternatives = dropManagedGroups(variant.Alternatives)
		// The library serializes EXT-X-MEDIA from each variant's alternative
		// list; hanging the groups off the first variant writes them once.
		if i == 0 {
			variant.Alternatives = append(variant.Alternatives, alts...)
		}

		variant.Audio = ""
		if len(audio) > 0 {
			variant.Audio = audioGroupID
		}
		variant.Subtitles = ""
		if len(subs) > 0 {
			variant.Subtitles = subtitleGroupID
		}

		if hasDefaultAudio && !strings.Contains(variant.Codecs, "mp4a") {
			if variant.Codecs == "" {
				variant.Codecs = aacCodecTag
			} else {
				variant.Codecs += "," + aacCodecTag
			}
		}
	}

	if err := os.WriteFile(masterPath, master.Encode().Bytes(), 0o644); err != nil {
		return &PlaylistError{Path: masterPath, Reason: "write", Err: err}
	}
	return nil
}

// dropManagedGroups removes alternatives under the fixed group ids while
// preserving any foreign ones.
func dropManagedGroups(alts []*m3u8.Alternative) []*m3u8.Alternative {
	kept := alts[:0]
	for _, a := range alts {
		if a.GroupId == audioGroupID || a.GroupId == subtitleGroupID {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func trackName(name, language string) string {
	if name != "" {
		return name
	}
	return language
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

var multiSlashRe = regexp.MustCompile(`/{2,}`)

// generateProxyBaseURL substitutes the {assetId} and {basePath} tokens into
// the configured URL template and collapses duplicate slashes, leaving the
// "//" of a URI scheme intact.
func generateProxyBaseURL(assetID, basePath, template string) string {
	s := strings.NewReplacer(
		"{assetId}", assetID,
		"{basePath}", basePath,
	).Replace(template)

	if idx := strings.Index(s, "://"); idx >= 0 {
		return s[:idx+3] + multiSlashRe.ReplaceAllString(s[idx+3:], "/")
	}
	return multiSlashRe.ReplaceAllString(s, "/")
}

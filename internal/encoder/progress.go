package encoder

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// scanProgress reads ffmpeg's -progress key=value stream from r and emits a
// ProgressEvent whenever a progress block completes. duration is the source
// length in seconds; when it is unknown (<= 0) the percentage stays at 0 and
// only the output time advances.
func scanProgress(r io.Reader, rendition string, duration float64, fn ProgressFunc) {
	sc := bufio.NewScanner(r)

	var outTime float64
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}

		switch key {
		case "out_time_us", "out_time_ms":
			// Both keys carry microseconds in current ffmpeg builds.
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us > 0 {
				outTime = float64(us) / 1e6
			}
		case "progress":
			if fn == nil {
				continue
			}
			pct := 0.0
			if duration > 0 {
				pct = outTime / duration * 100
				if pct > 100 {
					pct = 100
				}
			}
			if value == "end" {
				pct = 100
			}
			fn(ProgressEvent{Rendition: rendition, Percent: pct, OutTime: outTime})
		}
	}
}

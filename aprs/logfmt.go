package aprs

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

// defaultHeardLogFormat matches the default timestamp_format the
// teacher applies to its saved-audio and transmit-queue log lines.
const defaultHeardLogFormat = "%Y-%m-%d %H:%M:%S"

// HeardLogLine formats one "heard station" log entry for cmd/aprsmon,
// timestamped with the given strftime pattern (empty uses the
// teacher's default), supplementing decode_aprs's plain stdout dump.
//
// Grounded on doismellburning/samoyed src/xmit.go and src/tq.go, both
// of which format a save-audio timestamp via
// strftime.Format(audio_config.timestamp_format, time.Now()).
func HeardLogLine(format string, when time.Time, src, info string) (string, error) {
	if format == "" {
		format = defaultHeardLogFormat
	}
	ts, err := strftime.Format(format, when)
	if err != nil {
		return "", err
	}
	return ts + " " + src + ": " + info, nil
}

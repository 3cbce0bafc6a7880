package physical

import (
	"encoding/binary"
	"math"
	"time"
)

// TimestampEpoch is day zero of the PQDIF timestamp encoding.
var TimestampEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 24 * 60 * 60

// putTimestamp encodes t as days since TimestampEpoch (uint32) followed by
// seconds since midnight (float64).
func putTimestamp(dst []byte, t time.Time) {
	d := t.UTC().Sub(TimestampEpoch)
	days := int64(d / (secondsPerDay * time.Second))
	if d < 0 && d%(secondsPerDay*time.Second) != 0 {
		days--
	}
	rem := d - time.Duration(days)*secondsPerDay*time.Second
	if days < 0 {
		days, rem = 0, 0
	}
	binary.LittleEndian.PutUint32(dst[0:4], uint32(days))
	binary.LittleEndian.PutUint64(dst[4:12], math.Float64bits(rem.Seconds()))
}

func getTimestamp(src []byte) time.Time {
	days := binary.LittleEndian.Uint32(src[0:4])
	seconds := math.Float64frombits(binary.LittleEndian.Uint64(src[4:12]))
	ns := time.Duration(math.Round(seconds * float64(time.Second)))
	return TimestampEpoch.AddDate(0, 0, int(days)).Add(ns)
}

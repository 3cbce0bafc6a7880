package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Encoder writes flattened observations to a stream.
type Encoder interface {
	// Encode writes all tables as one output.
	Encode(w io.Writer, tables []*Table) error

	// Extension is the file extension of the output, without compression.
	Extension() string
}

// NewEncoder returns the encoder for format ("msgpack" or "arrow").
func NewEncoder(format, measurement string, logger zerolog.Logger) (Encoder, error) {
	switch format {
	case "", "msgpack":
		return NewMsgpackEncoder(measurement, logger), nil
	case "arrow":
		return NewArrowEncoder(logger), nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// valueAt returns the i-th value of c, or false when the column is shorter
// than the table or holds NaN.
func valueAt(c Column, i int) (float64, bool) {
	if i >= len(c.Values) || math.IsNaN(c.Values[i]) {
		return 0, false
	}
	return c.Values[i], true
}

func timestampMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

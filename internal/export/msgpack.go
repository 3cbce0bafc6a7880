package export

import (
	"fmt"
	"io"

	"github.com/basekick-labs/pqdif/pkg/models"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackEncoder writes observations in the columnar MessagePack ingest
// format. Each observation becomes one payload; several observations are
// sent as a batch.
type MsgpackEncoder struct {
	measurement string
	logger      zerolog.Logger
}

// NewMsgpackEncoder creates an encoder writing payloads under measurement
func NewMsgpackEncoder(measurement string, logger zerolog.Logger) *MsgpackEncoder {
	if measurement == "" {
		measurement = "pqdif"
	}
	return &MsgpackEncoder{
		measurement: measurement,
		logger:      logger.With().Str("component", "msgpack-encoder").Logger(),
	}
}

func (e *MsgpackEncoder) Extension() string { return ".msgpack" }

// Encode writes tables as a single payload, or as a batch when there is
// more than one.
func (e *MsgpackEncoder) Encode(w io.Writer, tables []*Table) error {
	payloads := make([]models.ColumnarPayload, 0, len(tables))
	for _, t := range tables {
		if t.Rows() == 0 {
			e.logger.Debug().Str("observation", t.Observation).Msg("Skipping empty observation")
			continue
		}
		payloads = append(payloads, e.payload(t))
	}

	enc := msgpack.NewEncoder(w)
	var err error
	if len(payloads) == 1 {
		err = enc.Encode(&payloads[0])
	} else {
		err = enc.Encode(&models.BatchPayload{Batch: payloads})
	}
	if err != nil {
		return fmt.Errorf("failed to encode msgpack: %w", err)
	}

	e.logger.Debug().Int("payloads", len(payloads)).Msg("Encoded msgpack export")
	return nil
}

func (e *MsgpackEncoder) payload(t *Table) models.ColumnarPayload {
	rows := t.Rows()
	columns := make(map[string][]interface{}, len(t.Columns)+2)

	if t.Time != nil {
		times := make([]interface{}, rows)
		for i, ts := range t.Time {
			times[i] = timestampMicros(ts)
		}
		columns["time"] = times
	}

	observation := make([]interface{}, rows)
	for i := range observation {
		observation[i] = t.Observation
	}
	columns["observation"] = observation

	for _, c := range t.Columns {
		values := make([]interface{}, rows)
		for i := range values {
			if v, ok := valueAt(c, i); ok {
				values[i] = v
			}
		}
		columns[c.Name] = values
	}

	return models.ColumnarPayload{M: e.measurement, Columns: columns}
}

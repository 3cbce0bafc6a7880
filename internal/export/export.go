package export

import (
	"fmt"
	"io"

	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/rs/zerolog"
)

// Result summarizes one export.
type Result struct {
	Observations int
	Failed       int
	Rows         int
}

// ReadTables flattens every observation p yields. Observations that cannot
// be read or decoded are logged and counted in Result.Failed; only errors
// that end reading of the file are returned.
func ReadTables(p *logical.Parser, logger zerolog.Logger) ([]*Table, Result, error) {
	var tables []*Table
	var res Result

	for {
		ok, err := p.HasNextObservationRecord()
		if err != nil {
			if logical.IsFatal(err) {
				return nil, res, err
			}
			res.Failed++
			logger.Warn().Err(err).Msg("Skipping unreadable observation")
			continue
		}
		if !ok {
			break
		}

		obs, err := p.NextObservationRecord()
		if err != nil {
			return nil, res, err
		}
		t, err := FromObservation(obs)
		if err != nil {
			res.Failed++
			logger.Warn().Err(err).Msg("Skipping observation that failed to decode")
			continue
		}
		tables = append(tables, t)
		res.Observations++
		res.Rows += t.Rows()
	}
	return tables, res, nil
}

// Write encodes tables with enc through the named compression into w.
func Write(w io.Writer, enc Encoder, compression string, tables []*Table) error {
	cw, err := NewCompressedWriter(w, compression)
	if err != nil {
		return err
	}
	if err := enc.Encode(cw, tables); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to flush %s output: %w", compression, err)
	}
	return nil
}

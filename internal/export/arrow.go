package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog"
)

// arrowBatchSize is the number of rows per Arrow record batch.
const arrowBatchSize = 10000

// ArrowEncoder writes observations as one Arrow IPC stream. The schema is
// the union of all value columns plus "time" (timestamp[us], UTC) and
// "observation"; values a table lacks are null.
type ArrowEncoder struct {
	logger zerolog.Logger
}

func NewArrowEncoder(logger zerolog.Logger) *ArrowEncoder {
	return &ArrowEncoder{logger: logger.With().Str("component", "arrow-encoder").Logger()}
}

func (e *ArrowEncoder) Extension() string { return ".arrow" }

// Schema returns the stream schema for tables.
func (e *ArrowEncoder) Schema(tables []*Table) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "time", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, Nullable: true},
		{Name: "observation", Type: arrow.BinaryTypes.String},
	}
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			fields = append(fields, arrow.Field{Name: c.Name, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
		}
	}
	return arrow.NewSchema(fields, nil)
}

func (e *ArrowEncoder) Encode(w io.Writer, tables []*Table) error {
	schema := e.Schema(tables)
	index := make(map[string]int, len(schema.Fields()))
	for i, f := range schema.Fields() {
		index[f.Name] = i
	}

	mem := memory.NewGoAllocator()
	ipcWriter := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))

	recordBuilder := array.NewRecordBuilder(mem, schema)
	defer recordBuilder.Release()

	var totalRows int64
	var batchRows int

	flush := func() error {
		record := recordBuilder.NewRecord()
		defer record.Release()
		if err := ipcWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write Arrow batch: %w", err)
		}
		batchRows = 0
		return nil
	}

	for _, t := range tables {
		present := make([]*Column, len(schema.Fields()))
		for i := range t.Columns {
			present[index[t.Columns[i].Name]] = &t.Columns[i]
		}

		for row := 0; row < t.Rows(); row++ {
			times := recordBuilder.Field(0).(*array.TimestampBuilder)
			if t.Time != nil {
				times.Append(arrow.Timestamp(timestampMicros(t.Time[row])))
			} else {
				times.AppendNull()
			}
			recordBuilder.Field(1).(*array.StringBuilder).Append(t.Observation)

			for col := 2; col < len(present); col++ {
				b := recordBuilder.Field(col).(*array.Float64Builder)
				if present[col] == nil {
					b.AppendNull()
					continue
				}
				if v, ok := valueAt(*present[col], row); ok {
					b.Append(v)
				} else {
					b.AppendNull()
				}
			}

			batchRows++
			totalRows++
			if batchRows >= arrowBatchSize {
				if err := flush(); err != nil {
					ipcWriter.Close()
					return err
				}
			}
		}
	}

	if batchRows > 0 {
		if err := flush(); err != nil {
			ipcWriter.Close()
			return err
		}
	}
	if err := ipcWriter.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow stream: %w", err)
	}

	e.logger.Debug().
		Int64("row_count", totalRows).
		Int("columns", len(schema.Fields())).
		Msg("Encoded Arrow export")
	return nil
}

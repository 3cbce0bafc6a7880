package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/basekick-labs/pqdif/pkg/logical"
)

// Column is one decoded value series.
type Column struct {
	Name   string
	Values []float64
}

// Table is an observation flattened into columns. Time holds the sample
// times of the first channel that carries a time series; it is nil when no
// channel does.
type Table struct {
	Observation string
	DataSource  string
	Start       time.Time
	Time        []time.Time
	Columns     []Column
}

// Rows returns the number of rows encoders emit: the length of the time
// column when present, otherwise the longest value column.
func (t *Table) Rows() int {
	if t.Time != nil {
		return len(t.Time)
	}
	n := 0
	for _, c := range t.Columns {
		if len(c.Values) > n {
			n = len(c.Values)
		}
	}
	return n
}

// FromObservation decodes every series of obs into a Table. Value columns
// are named "<channel>.<value type>"; repeated names get a numeric suffix.
func FromObservation(obs *logical.ObservationRecord) (*Table, error) {
	t := &Table{}

	var err error
	if t.Observation, err = obs.Name(); err != nil && !errors.Is(err, logical.ErrMissingTag) {
		return nil, err
	}
	if t.Start, err = obs.StartTime(); err != nil && !errors.Is(err, logical.ErrMissingTag) {
		return nil, err
	}
	if ds := obs.DataSource(); ds != nil {
		if t.DataSource, err = ds.Name(); err != nil && !errors.Is(err, logical.ErrMissingTag) {
			return nil, err
		}
	}

	seen := make(map[string]int)
	for i, ci := range obs.ChannelInstances() {
		cd, err := ci.Definition()
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		channel, err := cd.Name()
		if err != nil || channel == "" {
			channel = fmt.Sprintf("channel%d", i)
		}

		series, err := ci.SeriesInstances()
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", channel, err)
		}
		for _, si := range series {
			valueType, err := si.Definition().ValueTypeID()
			if errors.Is(err, logical.ErrMissingTag) {
				valueType = logical.ValueTypeVal
			} else if err != nil {
				return nil, fmt.Errorf("channel %s: %w", channel, err)
			}

			if valueType == logical.ValueTypeTime {
				if t.Time == nil {
					if t.Time, err = si.TimeValues(t.Start); err != nil {
						return nil, fmt.Errorf("channel %s time: %w", channel, err)
					}
				}
				continue
			}

			values, err := si.OriginalValues()
			if err != nil {
				return nil, fmt.Errorf("channel %s: %w", channel, err)
			}
			t.Columns = append(t.Columns, Column{
				Name:   uniqueName(seen, channel+"."+logical.IdentifierName(valueType)),
				Values: values,
			})
		}
	}
	return t, nil
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s_%d", name, n)
	}
	return name
}

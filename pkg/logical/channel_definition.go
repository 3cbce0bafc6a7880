package logical

import (
	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
)

// ChannelDefinition is the schema of one channel of a data source.
type ChannelDefinition struct {
	node       *physical.CollectionElement
	dataSource *DataSourceRecord
}

// DataSource returns the record holding this definition.
func (cd *ChannelDefinition) DataSource() *DataSourceRecord { return cd.dataSource }

// PhysicalStructure returns the underlying collection.
func (cd *ChannelDefinition) PhysicalStructure() *physical.CollectionElement { return cd.node }

// Equal reports whether both wrappers view the same definition.
func (cd *ChannelDefinition) Equal(other *ChannelDefinition) bool {
	if cd == nil || other == nil {
		return cd == other
	}
	return cd.node == other.node
}

// Index returns the position of the definition within its data source, or -1
// once removed.
func (cd *ChannelDefinition) Index() int {
	return indexOf(collections(cd.dataSource.body(), TagChannelDefinitions, TagOneChannelDefinition), cd.node)
}

// Name returns the channel name, or "" when unnamed.
func (cd *ChannelDefinition) Name() (string, error) { return getStringOr(cd.node, TagChannelName) }
func (cd *ChannelDefinition) SetName(name string)   { setString(cd.node, TagChannelName, name) }

func (cd *ChannelDefinition) PhaseID() (Phase, error) {
	v, err := getUint(cd.node, TagPhaseID)
	return Phase(v), err
}
func (cd *ChannelDefinition) SetPhaseID(p Phase) { setUint(cd.node, TagPhaseID, uint32(p)) }

func (cd *ChannelDefinition) QuantityTypeID() (uuid.UUID, error) {
	return getGuid(cd.node, TagQuantityTypeID)
}
func (cd *ChannelDefinition) SetQuantityTypeID(id uuid.UUID) { setGuid(cd.node, TagQuantityTypeID, id) }

func (cd *ChannelDefinition) QuantityMeasured() (QuantityMeasured, error) {
	v, err := getUint(cd.node, TagQuantityMeasuredID)
	return QuantityMeasured(v), err
}
func (cd *ChannelDefinition) SetQuantityMeasured(q QuantityMeasured) {
	setUint(cd.node, TagQuantityMeasuredID, uint32(q))
}

// GroupID returns the channel group, or 0 when the channel is ungrouped.
func (cd *ChannelDefinition) GroupID() (int16, error) {
	if cd.node.GetScalarByTag(TagChannelGroupID) == nil {
		return 0, nil
	}
	v, err := getInt(cd.node, TagChannelGroupID)
	return int16(v), err
}

func (cd *ChannelDefinition) SetGroupID(id int16) {
	// An int16 always encodes as Integer2.
	_ = cd.node.GetOrAddScalar(TagChannelGroupID).Set(physical.PhysicalTypeInteger2, id)
}

// SeriesDefinitions returns the series definitions in order.
func (cd *ChannelDefinition) SeriesDefinitions() []*SeriesDefinition {
	nodes := collections(cd.node, TagSeriesDefinitions, TagOneSeriesDefinition)
	out := make([]*SeriesDefinition, len(nodes))
	for i, n := range nodes {
		out[i] = &SeriesDefinition{node: n, channel: cd}
	}
	return out
}

// SeriesDefinition returns the series definition at index.
func (cd *ChannelDefinition) SeriesDefinition(index int) (*SeriesDefinition, error) {
	defs := cd.SeriesDefinitions()
	if index < 0 || index >= len(defs) {
		return nil, dangling("series definition", index, len(defs))
	}
	return defs[index], nil
}

// AddNewSeriesDefinition appends a series definition with value type Val,
// no units, no characteristic and plain values storage.
func (cd *ChannelDefinition) AddNewSeriesDefinition() *SeriesDefinition {
	node := appendCollection(cd.node, TagSeriesDefinitions, TagOneSeriesDefinition)
	sd := &SeriesDefinition{node: node, channel: cd}
	sd.SetValueTypeID(ValueTypeVal)
	sd.SetQuantityUnits(UnitsNone)
	sd.SetQuantityCharacteristicID(CharacteristicNone)
	sd.SetStorageMethod(StorageMethodValues)
	return sd
}

// RemoveSeriesDefinition removes sd from this channel.
func (cd *ChannelDefinition) RemoveSeriesDefinition(sd *SeriesDefinition) bool {
	return removeCollection(cd.node, TagSeriesDefinitions, sd.node)
}

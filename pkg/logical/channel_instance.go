package logical

import (
	"github.com/basekick-labs/pqdif/pkg/physical"
)

// ChannelInstance holds the sampled data of one channel in one observation.
type ChannelInstance struct {
	node        *physical.CollectionElement
	observation *ObservationRecord
}

// Observation returns the record holding this instance.
func (ci *ChannelInstance) Observation() *ObservationRecord { return ci.observation }

// PhysicalStructure returns the underlying collection.
func (ci *ChannelInstance) PhysicalStructure() *physical.CollectionElement { return ci.node }

// Equal reports whether both wrappers view the same instance.
func (ci *ChannelInstance) Equal(other *ChannelInstance) bool {
	if ci == nil || other == nil {
		return ci == other
	}
	return ci.node == other.node
}

func (ci *ChannelInstance) ChannelDefinitionIndex() (int, error) {
	v, err := getUint(ci.node, TagChannelDefinitionIndex)
	return int(v), err
}

func (ci *ChannelInstance) SetChannelDefinitionIndex(index int) {
	setUint(ci.node, TagChannelDefinitionIndex, uint32(index))
}

// Definition resolves the channel definition in the observation's data source.
func (ci *ChannelInstance) Definition() (*ChannelDefinition, error) {
	ds := ci.observation.DataSource()
	if ds == nil {
		return nil, ErrNoDataSource
	}
	index, err := ci.ChannelDefinitionIndex()
	if err != nil {
		return nil, err
	}
	return ds.ChannelDefinition(index)
}

// Setting returns the monitor setting for this channel, or nil when the
// observation has no settings or none match.
func (ci *ChannelInstance) Setting() (*ChannelSetting, error) {
	settings := ci.observation.Settings()
	if settings == nil {
		return nil, nil
	}
	index, err := ci.ChannelDefinitionIndex()
	if err != nil {
		return nil, err
	}
	return settings.ChannelSettingFor(index)
}

// GroupID returns the channel group, or 0 when ungrouped.
func (ci *ChannelInstance) GroupID() (int16, error) {
	if ci.node.GetScalarByTag(TagChannelGroupID) == nil {
		return 0, nil
	}
	v, err := getInt(ci.node, TagChannelGroupID)
	return int16(v), err
}

func (ci *ChannelInstance) SetGroupID(id int16) {
	// An int16 always encodes as Integer2.
	_ = ci.node.GetOrAddScalar(TagChannelGroupID).Set(physical.PhysicalTypeInteger2, id)
}

func (ci *ChannelInstance) ChannelTriggerModuleName() (string, error) {
	return getStringOr(ci.node, TagChannelTriggerModule)
}
func (ci *ChannelInstance) SetChannelTriggerModuleName(name string) {
	setString(ci.node, TagChannelTriggerModule, name)
}

func (ci *ChannelInstance) CrossTriggerDeviceName() (string, error) {
	return getStringOr(ci.node, TagCrossTriggerDeviceName)
}
func (ci *ChannelInstance) SetCrossTriggerDeviceName(name string) {
	setString(ci.node, TagCrossTriggerDeviceName, name)
}

// SeriesInstances pairs each series instance with the series definition at
// the same position. Extra entries on either side are dropped.
func (ci *ChannelInstance) SeriesInstances() ([]*SeriesInstance, error) {
	def, err := ci.Definition()
	if err != nil {
		return nil, err
	}
	defs := def.SeriesDefinitions()
	nodes := collections(ci.node, TagSeriesInstances, TagOneSeriesInstance)

	n := min(len(nodes), len(defs))
	out := make([]*SeriesInstance, n)
	for i := 0; i < n; i++ {
		out[i] = &SeriesInstance{node: nodes[i], channel: ci, definition: defs[i]}
	}
	return out, nil
}

// SeriesInstance returns the series instance at index.
func (ci *ChannelInstance) SeriesInstance(index int) (*SeriesInstance, error) {
	series, err := ci.SeriesInstances()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(series) {
		return nil, dangling("series instance", index, len(series))
	}
	return series[index], nil
}

// AddNewSeriesInstance appends the instance of the next series definition of
// the channel. It fails when every definition already has an instance.
func (ci *ChannelInstance) AddNewSeriesInstance() (*SeriesInstance, error) {
	def, err := ci.Definition()
	if err != nil {
		return nil, err
	}
	defs := def.SeriesDefinitions()
	next := len(collections(ci.node, TagSeriesInstances, TagOneSeriesInstance))
	if next >= len(defs) {
		return nil, dangling("series definition", next, len(defs))
	}
	node := appendCollection(ci.node, TagSeriesInstances, TagOneSeriesInstance)
	return &SeriesInstance{node: node, channel: ci, definition: defs[next]}, nil
}

// RemoveSeriesInstance removes si. Later instances pair with earlier
// definitions afterwards.
func (ci *ChannelInstance) RemoveSeriesInstance(si *SeriesInstance) bool {
	return removeCollection(ci.node, TagSeriesInstances, si.node)
}

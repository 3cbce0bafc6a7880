package logical

import (
	"github.com/basekick-labs/pqdif/pkg/physical"
)

// ChannelSetting holds transducer configuration for one channel.
type ChannelSetting struct {
	node     *physical.CollectionElement
	settings *MonitorSettingsRecord
}

// Settings returns the record holding this setting.
func (cs *ChannelSetting) Settings() *MonitorSettingsRecord { return cs.settings }

// PhysicalStructure returns the underlying collection.
func (cs *ChannelSetting) PhysicalStructure() *physical.CollectionElement { return cs.node }

// Equal reports whether both wrappers view the same setting.
func (cs *ChannelSetting) Equal(other *ChannelSetting) bool {
	if cs == nil || other == nil {
		return cs == other
	}
	return cs.node == other.node
}

func (cs *ChannelSetting) ChannelDefinitionIndex() (int, error) {
	v, err := getUint(cs.node, TagChannelDefinitionIndex)
	return int(v), err
}

func (cs *ChannelSetting) SetChannelDefinitionIndex(index int) {
	setUint(cs.node, TagChannelDefinitionIndex, uint32(index))
}

// ChannelDefinition resolves the referenced channel in ds.
func (cs *ChannelSetting) ChannelDefinition(ds *DataSourceRecord) (*ChannelDefinition, error) {
	if ds == nil {
		return nil, ErrNoDataSource
	}
	index, err := cs.ChannelDefinitionIndex()
	if err != nil {
		return nil, err
	}
	return ds.ChannelDefinition(index)
}

// TransformerType returns the transducer type code, or 0 when unset.
func (cs *ChannelSetting) TransformerType() (uint32, error) {
	return getUintOr(cs.node, TagXDTransformerTypeID, 0)
}
func (cs *ChannelSetting) SetTransformerType(v uint32) { setUint(cs.node, TagXDTransformerTypeID, v) }

// SystemSideRatio returns the primary side of the transducer ratio, 1 when unset.
func (cs *ChannelSetting) SystemSideRatio() (float64, error) {
	return getFloatOr(cs.node, TagXDSystemSideRatio, 1)
}
func (cs *ChannelSetting) SetSystemSideRatio(v float64) { setFloat(cs.node, TagXDSystemSideRatio, v) }

// MonitorSideRatio returns the secondary side of the transducer ratio, 1 when unset.
func (cs *ChannelSetting) MonitorSideRatio() (float64, error) {
	return getFloatOr(cs.node, TagXDMonitorSideRatio, 1)
}
func (cs *ChannelSetting) SetMonitorSideRatio(v float64) { setFloat(cs.node, TagXDMonitorSideRatio, v) }

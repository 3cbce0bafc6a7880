package logical

import (
	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
)

// SeriesDefinition is the schema of one series within a channel definition.
type SeriesDefinition struct {
	node    *physical.CollectionElement
	channel *ChannelDefinition
}

// ChannelDefinition returns the channel holding this definition.
func (sd *SeriesDefinition) ChannelDefinition() *ChannelDefinition { return sd.channel }

// PhysicalStructure returns the underlying collection.
func (sd *SeriesDefinition) PhysicalStructure() *physical.CollectionElement { return sd.node }

// Equal reports whether both wrappers view the same definition.
func (sd *SeriesDefinition) Equal(other *SeriesDefinition) bool {
	if sd == nil || other == nil {
		return sd == other
	}
	return sd.node == other.node
}

// Index returns the position of the definition within its channel, or -1 once removed.
func (sd *SeriesDefinition) Index() int {
	return indexOf(collections(sd.channel.node, TagSeriesDefinitions, TagOneSeriesDefinition), sd.node)
}

func (sd *SeriesDefinition) ValueTypeID() (uuid.UUID, error) { return getGuid(sd.node, TagValueTypeID) }
func (sd *SeriesDefinition) SetValueTypeID(id uuid.UUID)     { setGuid(sd.node, TagValueTypeID, id) }

// ValueTypeName returns the producer-supplied name of the value type, or "".
func (sd *SeriesDefinition) ValueTypeName() (string, error) {
	return getStringOr(sd.node, TagValueTypeName)
}
func (sd *SeriesDefinition) SetValueTypeName(name string) { setString(sd.node, TagValueTypeName, name) }

func (sd *SeriesDefinition) QuantityUnits() (QuantityUnits, error) {
	v, err := getUint(sd.node, TagQuantityUnitsID)
	return QuantityUnits(v), err
}
func (sd *SeriesDefinition) SetQuantityUnits(u QuantityUnits) {
	setUint(sd.node, TagQuantityUnitsID, uint32(u))
}

func (sd *SeriesDefinition) QuantityCharacteristicID() (uuid.UUID, error) {
	return getGuid(sd.node, TagQuantityCharacteristicID)
}
func (sd *SeriesDefinition) SetQuantityCharacteristicID(id uuid.UUID) {
	setGuid(sd.node, TagQuantityCharacteristicID, id)
}

func (sd *SeriesDefinition) StorageMethod() (StorageMethods, error) {
	v, err := getUint(sd.node, TagStorageMethodID)
	return StorageMethods(v), err
}
func (sd *SeriesDefinition) SetStorageMethod(m StorageMethods) {
	setUint(sd.node, TagStorageMethodID, uint32(m))
}

// NominalQuantity returns the nominal value of the series, or 0 when unset.
func (sd *SeriesDefinition) NominalQuantity() (float64, error) {
	return getFloatOr(sd.node, TagSeriesNominalQuantity, 0)
}
func (sd *SeriesDefinition) SetNominalQuantity(v float64) {
	setFloat(sd.node, TagSeriesNominalQuantity, v)
}

// Display hints. Each reads as 0 when absent.

func (sd *SeriesDefinition) HintGreekPrefixID() (uint32, error) {
	return getUintOr(sd.node, TagHintGreekPrefixID, 0)
}
func (sd *SeriesDefinition) SetHintGreekPrefixID(v uint32) { setUint(sd.node, TagHintGreekPrefixID, v) }

func (sd *SeriesDefinition) HintPreferredUnitsID() (uint32, error) {
	return getUintOr(sd.node, TagHintPreferredUnitsID, 0)
}
func (sd *SeriesDefinition) SetHintPreferredUnitsID(v uint32) {
	setUint(sd.node, TagHintPreferredUnitsID, v)
}

func (sd *SeriesDefinition) HintDefaultDisplayID() (uint32, error) {
	return getUintOr(sd.node, TagHintDefaultDisplayID, 0)
}
func (sd *SeriesDefinition) SetHintDefaultDisplayID(v uint32) {
	setUint(sd.node, TagHintDefaultDisplayID, v)
}

package logical

import (
	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
)

// Container record tags.
var (
	TagContainer            = physical.ContainerRecordTag
	TagVersionInfo          = uuid.MustParse("89738607-f1c3-11cf-9d89-0080c72e70a3")
	TagFileName             = uuid.MustParse("89738608-f1c3-11cf-9d89-0080c72e70a3")
	TagCreation             = uuid.MustParse("89738609-f1c3-11cf-9d89-0080c72e70a3")
	TagNotes                = uuid.MustParse("89738617-f1c3-11cf-9d89-0080c72e70a3")
	TagCompressionStyle     = uuid.MustParse("8973861b-f1c3-11cf-9d89-0080c72e70a3")
	TagCompressionAlgorithm = uuid.MustParse("8973861c-f1c3-11cf-9d89-0080c72e70a3")
	TagCompressionChecksum  = uuid.MustParse("8973861d-f1c3-11cf-9d89-0080c72e70a3")
)

// Data source record tags.
var (
	TagDataSource       = physical.DataSourceRecordTag
	TagDataSourceTypeID = uuid.MustParse("b48d8581-f5f5-11cf-9d89-0080c72e70a3")
	TagVendorID         = uuid.MustParse("b48d8582-f5f5-11cf-9d89-0080c72e70a3")
	TagEquipmentID      = uuid.MustParse("b48d8583-f5f5-11cf-9d89-0080c72e70a3")
	TagSerialNumberDS   = uuid.MustParse("b48d8584-f5f5-11cf-9d89-0080c72e70a3")
	TagVersionDS        = uuid.MustParse("b48d8585-f5f5-11cf-9d89-0080c72e70a3")
	TagNameDS           = uuid.MustParse("b48d8587-f5f5-11cf-9d89-0080c72e70a3")
	TagOwner            = uuid.MustParse("b48d8588-f5f5-11cf-9d89-0080c72e70a3")
	TagLocation         = uuid.MustParse("b48d8589-f5f5-11cf-9d89-0080c72e70a3")
	TagTimeZone         = uuid.MustParse("b48d858a-f5f5-11cf-9d89-0080c72e70a3")
	TagCoordinates      = uuid.MustParse("b48d858b-f5f5-11cf-9d89-0080c72e70a3")
	TagEffective        = uuid.MustParse("62f28183-f9c4-11cf-9d89-0080c72e70a3")
)

// Channel and series definition tags.
var (
	TagChannelDefinitions       = uuid.MustParse("b48d858d-f5f5-11cf-9d89-0080c72e70a3")
	TagOneChannelDefinition     = uuid.MustParse("b48d858e-f5f5-11cf-9d89-0080c72e70a3")
	TagChannelDefinitionIndex   = uuid.MustParse("b48d858f-f5f5-11cf-9d89-0080c72e70a3")
	TagChannelName              = uuid.MustParse("b48d8590-f5f5-11cf-9d89-0080c72e70a3")
	TagPhaseID                  = uuid.MustParse("b48d8591-f5f5-11cf-9d89-0080c72e70a3")
	TagQuantityTypeID           = uuid.MustParse("b48d8592-f5f5-11cf-9d89-0080c72e70a3")
	TagQuantityMeasuredID       = uuid.MustParse("c690e872-f755-11cf-b8ea-0080c72e70a3")
	TagChannelGroupID           = uuid.MustParse("f90de218-e67b-4cf1-a295-b021a2d46767")
	TagSeriesDefinitions        = uuid.MustParse("b48d8593-f5f5-11cf-9d89-0080c72e70a3")
	TagOneSeriesDefinition      = uuid.MustParse("b48d8594-f5f5-11cf-9d89-0080c72e70a3")
	TagQuantityUnitsID          = uuid.MustParse("b48d8595-f5f5-11cf-9d89-0080c72e70a3")
	TagValueTypeID              = uuid.MustParse("b48d8596-f5f5-11cf-9d89-0080c72e70a3")
	TagValueTypeName            = uuid.MustParse("b48d8597-f5f5-11cf-9d89-0080c72e70a3")
	TagHintGreekPrefixID        = uuid.MustParse("b48d859a-f5f5-11cf-9d89-0080c72e70a3")
	TagHintPreferredUnitsID     = uuid.MustParse("b48d859b-f5f5-11cf-9d89-0080c72e70a3")
	TagHintDefaultDisplayID     = uuid.MustParse("b48d859c-f5f5-11cf-9d89-0080c72e70a3")
	TagStorageMethodID          = uuid.MustParse("b48d85a1-f5f5-11cf-9d89-0080c72e70a3")
	TagQuantityCharacteristicID = uuid.MustParse("3d786f9e-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesNominalQuantity    = uuid.MustParse("0fa118c4-cb4a-11d2-b30b-fe25cb9a1760")
)

// Monitor settings record tags.
var (
	TagMonitorSettings      = physical.MonitorSettingsRecordTag
	TagTimeInstalled        = uuid.MustParse("3d786f85-f76e-11cf-9d89-0080c72e70a3")
	TagUseCalibration       = uuid.MustParse("62f28180-f9c4-11cf-9d89-0080c72e70a3")
	TagUseTransducer        = uuid.MustParse("62f28181-f9c4-11cf-9d89-0080c72e70a3")
	TagChannelSettingsArray = uuid.MustParse("62f28182-f9c4-11cf-9d89-0080c72e70a3")
	TagOneChannelSetting    = uuid.MustParse("3d786f9a-f76e-11cf-9d89-0080c72e70a3")
	TagXDTransformerTypeID  = uuid.MustParse("62f28184-f9c4-11cf-9d89-0080c72e70a3")
	TagXDSystemSideRatio    = uuid.MustParse("62f28185-f9c4-11cf-9d89-0080c72e70a3")
	TagXDMonitorSideRatio   = uuid.MustParse("62f28186-f9c4-11cf-9d89-0080c72e70a3")
	TagNominalFrequency     = uuid.MustParse("0fa118c3-cb4a-11d2-b30b-fe25cb9a1760")
)

// Observation record tags.
var (
	TagObservation             = physical.ObservationRecordTag
	TagObservationName         = uuid.MustParse("3d786f8a-f76e-11cf-9d89-0080c72e70a3")
	TagTimeCreate              = uuid.MustParse("3d786f8b-f76e-11cf-9d89-0080c72e70a3")
	TagTimeStart               = uuid.MustParse("3d786f8c-f76e-11cf-9d89-0080c72e70a3")
	TagTriggerMethodID         = uuid.MustParse("3d786f8d-f76e-11cf-9d89-0080c72e70a3")
	TagTimeTriggered           = uuid.MustParse("3d786f8e-f76e-11cf-9d89-0080c72e70a3")
	TagChannelTriggerIndex     = uuid.MustParse("3d786f8f-f76e-11cf-9d89-0080c72e70a3")
	TagChannelInstances        = uuid.MustParse("3d786f91-f76e-11cf-9d89-0080c72e70a3")
	TagOneChannelInstance      = uuid.MustParse("3d786f92-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesInstances         = uuid.MustParse("3d786f93-f76e-11cf-9d89-0080c72e70a3")
	TagOneSeriesInstance       = uuid.MustParse("3d786f94-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesScale             = uuid.MustParse("3d786f96-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesOffset            = uuid.MustParse("3d786f97-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesBaseQuantity      = uuid.MustParse("3d786f98-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesValues            = uuid.MustParse("3d786f99-f76e-11cf-9d89-0080c72e70a3")
	TagSeriesShareChannelIndex = uuid.MustParse("8973861f-f1c3-11cf-9d89-0080c72e70a3")
	TagSeriesShareSeriesIndex  = uuid.MustParse("89738620-f1c3-11cf-9d89-0080c72e70a3")
	TagCrossTriggerDeviceName  = uuid.MustParse("0fa118c5-cb4a-11d2-b30b-fe25cb9a1760")
	TagChannelTriggerModule    = uuid.MustParse("0fa118c6-cb4a-11d2-b30b-fe25cb9a1760")
)

var tagNames = map[uuid.UUID]string{
	TagContainer:            "Container",
	TagVersionInfo:          "VersionInfo",
	TagFileName:             "FileName",
	TagCreation:             "Creation",
	TagNotes:                "Notes",
	TagCompressionStyle:     "CompressionStyleID",
	TagCompressionAlgorithm: "CompressionAlgorithmID",
	TagCompressionChecksum:  "CompressionChecksum",

	TagDataSource:       "DataSource",
	TagDataSourceTypeID: "DataSourceTypeID",
	TagVendorID:         "VendorID",
	TagEquipmentID:      "EquipmentID",
	TagSerialNumberDS:   "SerialNumberDS",
	TagVersionDS:        "VersionDS",
	TagNameDS:           "NameDS",
	TagOwner:            "Owner",
	TagLocation:         "Location",
	TagTimeZone:         "TimeZone",
	TagCoordinates:      "Coordinates",
	TagEffective:        "Effective",

	TagChannelDefinitions:       "ChannelDefinitions",
	TagOneChannelDefinition:     "OneChannelDefinition",
	TagChannelDefinitionIndex:   "ChannelDefinitionIndex",
	TagChannelName:              "ChannelName",
	TagPhaseID:                  "PhaseID",
	TagQuantityTypeID:           "QuantityTypeID",
	TagQuantityMeasuredID:       "QuantityMeasuredID",
	TagChannelGroupID:           "ChannelGroupID",
	TagSeriesDefinitions:        "SeriesDefinitions",
	TagOneSeriesDefinition:      "OneSeriesDefinition",
	TagQuantityUnitsID:          "QuantityUnitsID",
	TagValueTypeID:              "ValueTypeID",
	TagValueTypeName:            "ValueTypeName",
	TagHintGreekPrefixID:        "HintGreekPrefixID",
	TagHintPreferredUnitsID:     "HintPreferredUnitsID",
	TagHintDefaultDisplayID:     "HintDefaultDisplayID",
	TagStorageMethodID:          "StorageMethodID",
	TagQuantityCharacteristicID: "QuantityCharacteristicID",
	TagSeriesNominalQuantity:    "SeriesNominalQuantity",

	TagMonitorSettings:      "MonitorSettings",
	TagTimeInstalled:        "TimeInstalled",
	TagUseCalibration:       "UseCalibration",
	TagUseTransducer:        "UseTransducer",
	TagChannelSettingsArray: "ChannelSettingsArray",
	TagOneChannelSetting:    "OneChannelSetting",
	TagXDTransformerTypeID:  "XDTransformerTypeID",
	TagXDSystemSideRatio:    "XDSystemSideRatio",
	TagXDMonitorSideRatio:   "XDMonitorSideRatio",
	TagNominalFrequency:     "NominalFrequency",

	TagObservation:             "Observation",
	TagObservationName:         "ObservationName",
	TagTimeCreate:              "TimeCreate",
	TagTimeStart:               "TimeStart",
	TagTriggerMethodID:         "TriggerMethodID",
	TagTimeTriggered:           "TimeTriggered",
	TagChannelTriggerIndex:     "ChannelTriggerIndex",
	TagChannelInstances:        "ChannelInstances",
	TagOneChannelInstance:      "OneChannelInstance",
	TagSeriesInstances:         "SeriesInstances",
	TagOneSeriesInstance:       "OneSeriesInstance",
	TagSeriesScale:             "SeriesScale",
	TagSeriesOffset:            "SeriesOffset",
	TagSeriesBaseQuantity:      "SeriesBaseQuantity",
	TagSeriesValues:            "SeriesValues",
	TagSeriesShareChannelIndex: "SeriesShareChannelIndex",
	TagSeriesShareSeriesIndex:  "SeriesShareSeriesIndex",
	TagCrossTriggerDeviceName:  "CrossTriggerDeviceName",
	TagChannelTriggerModule:    "ChannelTriggerModuleName",

	physical.BlankRecordTag: "Blank",
}

// TagName returns the schema name of tag, or its string form when the tag is
// not part of the logical schema.
func TagName(tag uuid.UUID) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}
	return tag.String()
}

// KnownTags returns the number of tags in the schema catalog.
func KnownTags() int {
	return len(tagNames)
}

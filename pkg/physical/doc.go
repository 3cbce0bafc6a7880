// Package physical reads and writes the record stream of a PQDIF file.
//
// A PQDIF file is a chain of records. Each record has a fixed 64-byte header
// naming its kind by GUID and linking to the next record, followed by a body
// that encodes a tree of tagged elements:
//
//   - [CollectionElement]: an ordered list of child elements
//   - [ScalarElement]: one value of a fixed [PhysicalType]
//   - [VectorElement]: an array of values of one [PhysicalType]
//
// Tags are GUIDs. The package assigns them no meaning; the logical schema
// lives in package logical.
//
// # Reading
//
//	r, err := physical.Open("event.pqd", logger)
//	for r.HasNextRecord() {
//		rec, err := r.NextRecord()
//		...
//	}
//
// Bodies are verified against the Adler-32 checksum in their header. A record
// whose body fails to decode is reported, and the cursor still advances to the
// following record.
//
// # Compression
//
// Only record-level zlib compression is supported. The settings are stored in
// the container record, so readers apply them with SetCompressionStyle and
// SetCompressionAlgorithm after reading it. Container records themselves are
// never compressed.
package physical

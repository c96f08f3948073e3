// Package scene reads scene documents and writes finished layouts.
//
// A [Document] lists the objects to place plus optional layout options. It
// can be decoded from JSON ([ReadJSON]), TOML ([ReadTOML]) or, for the
// object list alone, the first sheet of an XLSX workbook ([ReadXLSX]).
// [ReadFile] picks the decoder from the file extension.
//
// Each [ObjectSpec] needs a bounding size. It is taken from the first of:
//
//   - size: {width, depth, height}
//   - vertices: raw points, reduced to their extents
//   - primitive: a box, cylinder, sphere or cone measured through its
//     signed distance field
//
// The category comes from category or metadata.object_type, and a
// position (or metadata.position) pins the object for the custom strategy.
//
// A finished run is wrapped in a [Layout], which carries a run id and
// serializes with [MarshalLayout] and [WriteLayoutFile].
package scene

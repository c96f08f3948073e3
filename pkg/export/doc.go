// Package export turns a finished scene layout into documents for people
// and CAD tools.
//
// Every exporter works on the top-down plan: the X/Z footprint of each
// placed object, with X to the right and Z towards the viewer. Height is
// only reported, never drawn.
//
//   - [DXF] writes a floor plan with one layer per category and a
//     "collisions" layer outlining every overlap found by the audit.
//   - [PDF] writes an audit report: the plan drawing, run statistics and
//     the collision table.
//   - [XLSX] writes a workbook with Objects, Collisions and Warnings sheets.
//   - [ToDOT] and [RenderSVG] draw the category hierarchy with Graphviz.
//
// Exporters never modify the layout and never fail on an empty one; an
// empty scene yields an empty drawing.
package export

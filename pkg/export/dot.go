package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// ToDOT converts the hierarchy of l to Graphviz DOT format. Groups point
// at their members; colliding pairs are joined by red dashed edges that do
// not affect ranking. The result can be rendered with [RenderSVG].
//
// Node IDs are prefixed with "group:" or "object:" so an object may share
// a name with a group.
func ToDOT(l scene.Layout) string {
	var buf bytes.Buffer
	buf.WriteString("digraph scene {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	groups := l.Groups
	if len(groups) == 0 {
		// Layouts stored without groups get them rebuilt from categories.
		groups = layout.BuildHierarchy(l.Placed())
	}
	for i, g := range groups {
		col := categoryColor(i)
		fmt.Fprintf(&buf, "  %s [label=%s, shape=folder, fillcolor=%q];\n", groupID(g.Name), dotQuote(g.Category), hex(col))
	}

	buf.WriteString("\n")
	for _, p := range l.Objects {
		fmt.Fprintf(&buf, "  %s [%s];\n", objectID(p.Name), strings.Join(fmtAttrs(p), ", "))
	}

	buf.WriteString("\n")
	for _, g := range groups {
		for _, m := range g.Members {
			fmt.Fprintf(&buf, "  %s -> %s;\n", groupID(g.Name), objectID(m))
		}
	}

	if len(l.Collisions) > 0 {
		buf.WriteString("\n")
		for _, rec := range l.Collisions {
			fmt.Fprintf(&buf, "  %s -> %s [dir=none, style=dashed, color=%q, constraint=false, label=\"%.3f\"];\n",
				objectID(rec.A), objectID(rec.B), hex(collisionColor), rec.OverlapVolume)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(p scene.Placement) []string {
	label := fmt.Sprintf("%s\n%.2f x %.2f x %.2f", p.Name, p.Size[0], p.Size[1], p.Size[2])
	return []string{"label=" + dotQuote(label)}
}

func groupID(name string) string  { return dotQuote("group:" + name) }
func objectID(name string) string { return dotQuote("object:" + name) }

// dotQuote returns s as a DOT double-quoted string. Only backslash, quote
// and line breaks are escaped; other UTF-8 passes through.
func dotQuote(s string) string {
	s = dotEscaper.Replace(s)
	return `"` + s + `"`
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func hex(c rgb) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container with an origin at 0,0.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

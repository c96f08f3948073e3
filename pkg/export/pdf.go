package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/scenelayout/pkg/scene"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	rowHeight    = 6.0
)

// PDF renders the audit report for l: a plan page followed by the
// collision table and any warnings.
func PDF(l scene.Layout) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle("Scene layout "+l.RunID, false)

	pdf.AddPage()
	renderPlanPage(pdf, l)

	pdf.AddPage()
	renderAuditPage(pdf, l)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func contentWidth() float64 { return pageWidth - marginLeft - marginRight }

// renderPlanPage draws the top-down plan on the current page.
func renderPlanPage(pdf *fpdf.Fpdf, l scene.Layout) {
	pl := newPlan(l)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Scene layout (%s, seed %d)", l.Strategy, l.Seed)
	pdf.CellFormat(contentWidth(), headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Objects: %d | Skipped: %d | Unresolved: %d | Collisions: %d | Run: %s",
		l.Stats.Placed, l.Stats.Skipped, l.Stats.Unresolved, len(l.Collisions), l.RunID)
	pdf.CellFormat(contentWidth(), 5, stats, "", 0, "L", false, 0, "")

	if len(pl.Footprints) == 0 {
		pdf.SetXY(marginLeft, drawAreaTop)
		pdf.CellFormat(contentWidth(), 8, "The scene is empty.", "", 0, "L", false, 0, "")
		return
	}

	drawWidth := contentWidth()
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	w, d := pl.Bounds.Width(), pl.Bounds.Depth()
	scale := math.Min(drawWidth/math.Max(w, 1e-6), drawHeight/math.Max(d, 1e-6))

	canvasW := w * scale
	canvasH := d * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Scene extent
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "D")

	toPage := func(r rect) (x, y, w, h float64) {
		return offsetX + (r.MinX-pl.Bounds.MinX)*scale,
			offsetY + (r.MinZ-pl.Bounds.MinZ)*scale,
			r.Width() * scale,
			r.Depth() * scale
	}

	catIndex := make(map[string]int, len(pl.Categories))
	for i, c := range pl.Categories {
		catIndex[c] = i
	}

	for _, fp := range pl.Footprints {
		col := categoryColor(catIndex[fp.Category])
		x, y, fw, fh := toPage(fp.Rect)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, fw, fh, "FD")

		// Label only if the footprint is large enough
		if fw > 12 && fh > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(fw, fh))
			pdf.SetTextColor(0, 0, 0)
			label := fitText(pdf, fp.Name, fw-2)
			lw := pdf.GetStringWidth(label)
			pdf.SetXY(x+(fw-lw)/2, y+fh/2-2)
			pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
		}
	}

	for _, ov := range pl.Overlaps {
		x, y, ow, oh := toPage(ov.Rect)
		pdf.SetDrawColor(collisionColor.R, collisionColor.G, collisionColor.B)
		pdf.SetLineWidth(0.5)
		pdf.Rect(x, y, ow, oh, "D")
		pdf.Line(x, y, x+ow, y+oh)
		pdf.Line(x, y+oh, x+ow, y)
	}

	// Extent annotation below the plan
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	extent := fmt.Sprintf("%.2f m x %.2f m", w, d)
	ew := pdf.GetStringWidth(extent)
	pdf.SetXY(offsetX+(canvasW-ew)/2, offsetY+canvasH+1)
	pdf.CellFormat(ew, 4, extent, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	drawLegend(pdf, pl.Categories, offsetY+canvasH+7)
}

// drawLegend lists the category colors in one row.
func drawLegend(pdf *fpdf.Fpdf, categories []string, y float64) {
	x := marginLeft
	pdf.SetFont("Helvetica", "", 8)
	for i, c := range categories {
		col := categoryColor(i)
		w := pdf.GetStringWidth(c) + 8
		if x+w > pageWidth-marginRight {
			break
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetXY(x+4, y)
		pdf.CellFormat(w-4, 4, c, "", 0, "L", false, 0, "")
		x += w
	}
}

// renderAuditPage writes the collision table and the warnings list.
// Rows that do not fit on a page continue on the next one.
func renderAuditPage(pdf *fpdf.Fpdf, l scene.Layout) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth(), headerHeight, "Collision audit", "", 1, "L", false, 0, "")

	if l.Summary != nil {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetX(marginLeft)
		summary := fmt.Sprintf("Pairs checked: %d | Records: %d | Total overlap: %.4f m3 | Worst: %s",
			l.Summary.Pairs, l.Summary.Records, l.Summary.TotalOverlap, orDash(l.Summary.Worst))
		pdf.CellFormat(contentWidth(), rowHeight, summary, "", 1, "L", false, 0, "")
	}

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"#", 12, "R"},
		{"Object A", 80, "L"},
		{"Object B", 80, "L"},
		{"Overlap (m3)", 40, "R"},
		{"Severity", 35, "L"},
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetX(marginLeft)
		for _, c := range cols {
			pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(rowHeight)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.Ln(2)
	if len(l.Collisions) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetX(marginLeft)
		pdf.CellFormat(contentWidth(), rowHeight, "No collisions above the threshold.", "", 1, "L", false, 0, "")
	} else {
		header()
		for i, rec := range l.Collisions {
			if pdf.GetY()+rowHeight > pageHeight-marginBottom {
				pdf.AddPage()
				pdf.SetY(marginTop)
				header()
			}
			cells := []string{
				fmt.Sprintf("%d", i+1),
				rec.A,
				rec.B,
				fmt.Sprintf("%.4f", rec.OverlapVolume),
				string(rec.Severity),
			}
			pdf.SetX(marginLeft)
			for j, c := range cols {
				pdf.CellFormat(c.width, rowHeight, fitText(pdf, cells[j], c.width-2), "1", 0, c.align, false, 0, "")
			}
			pdf.Ln(rowHeight)
		}
	}

	if len(l.Warnings) == 0 {
		return
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth(), rowHeight, "Warnings", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, w := range l.Warnings {
		if pdf.GetY()+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			pdf.SetY(marginTop)
		}
		pdf.SetX(marginLeft)
		pdf.CellFormat(contentWidth(), rowHeight-1, fitText(pdf, w.String(), contentWidth()), "", 1, "L", false, 0, "")
	}
}

// labelFontSize picks a font size that fits a footprint of w x h mm.
func labelFontSize(w, h float64) float64 {
	size := math.Min(w/6, h/1.5)
	return math.Max(5, math.Min(size, 9))
}

// fitText shortens s with an ellipsis until it fits width at the current font.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

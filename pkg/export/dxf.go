package export

import (
	"fmt"
	"os"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/matzehuels/scenelayout/pkg/scene"
)

// CollisionLayer is the DXF layer holding overlap outlines.
const CollisionLayer = "collisions"

// labelHeight is the DXF text height in drawing units (meters).
const labelHeight = 0.1

// layerColors are AutoCAD color indices handed out to category layers.
var layerColors = []color.ColorNumber{
	color.Green,
	color.Blue,
	color.Cyan,
	color.Magenta,
	color.Yellow,
	color.White,
}

// buildDrawing draws the plan of l. Footprints are closed outlines on the
// layer of their category, labeled with the object name at their
// center. DXF Y carries scene Z.
func buildDrawing(l scene.Layout) (*drawing.Drawing, error) {
	pl := newPlan(l)
	d := dxf.NewDrawing()

	for i, cat := range pl.Categories {
		if _, err := d.AddLayer(cat, layerColors[i%len(layerColors)], dxf.DefaultLineType, false); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", cat, err)
		}
	}
	if _, err := d.AddLayer(CollisionLayer, color.Red, dxf.DefaultLineType, false); err != nil {
		return nil, fmt.Errorf("add layer %s: %w", CollisionLayer, err)
	}

	for _, fp := range pl.Footprints {
		if err := d.ChangeLayer(fp.Category); err != nil {
			return nil, fmt.Errorf("select layer %s: %w", fp.Category, err)
		}
		if err := outline(d, fp.Rect); err != nil {
			return nil, fmt.Errorf("draw %s: %w", fp.Name, err)
		}
		cx := (fp.Rect.MinX + fp.Rect.MaxX) / 2
		cz := (fp.Rect.MinZ + fp.Rect.MaxZ) / 2
		if _, err := d.Text(fp.Name, cx, cz, 0, labelHeight); err != nil {
			return nil, fmt.Errorf("label %s: %w", fp.Name, err)
		}
	}

	if err := d.ChangeLayer(CollisionLayer); err != nil {
		return nil, fmt.Errorf("select layer %s: %w", CollisionLayer, err)
	}
	for _, ov := range pl.Overlaps {
		if err := outline(d, ov.Rect); err != nil {
			return nil, fmt.Errorf("draw overlap %s/%s: %w", ov.Record.A, ov.Record.B, err)
		}
		// Cross the overlap so it reads at any zoom level.
		if _, err := d.Line(ov.Rect.MinX, ov.Rect.MinZ, 0, ov.Rect.MaxX, ov.Rect.MaxZ, 0); err != nil {
			return nil, err
		}
		if _, err := d.Line(ov.Rect.MinX, ov.Rect.MaxZ, 0, ov.Rect.MaxX, ov.Rect.MinZ, 0); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func outline(d *drawing.Drawing, r rect) error {
	corners := [][2]float64{
		{r.MinX, r.MinZ},
		{r.MaxX, r.MinZ},
		{r.MaxX, r.MaxZ},
		{r.MinX, r.MaxZ},
	}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}

// WriteDXFFile writes the floor plan of l to path.
func WriteDXFFile(l scene.Layout, path string) error {
	d, err := buildDrawing(l)
	if err != nil {
		return err
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// DXF returns the floor plan of l as DXF bytes. The drawing library only
// saves to files, so the plan takes a round trip through a temp file.
func DXF(l scene.Layout) ([]byte, error) {
	f, err := os.CreateTemp("", "scenelayout-*.dxf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := WriteDXFFile(l, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

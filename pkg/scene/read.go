package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/scenelayout/pkg/errors"
)

// Input formats accepted by ReadFile.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatXLSX = "xlsx"
)

// FormatFromPath guesses a document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scene file %q (must be .json, .toml or .xlsx)", filepath.Base(path))
}

// ReadJSON decodes a JSON scene document from r.
//
// The input must be a JSON object with an "objects" array:
//
//	{
//	  "options": {"strategy": "grid"},
//	  "objects": [
//	    {"name": "table", "size": {"width": 1.2, "depth": 0.8, "height": 0.75},
//	     "metadata": {"object_type": "furniture"}}
//	  ]
//	}
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
	}
	return d, nil
}

// ReadTOML decodes a TOML scene document from r. Objects are an array of
// tables:
//
//	[options]
//	strategy = "radial"
//
//	[[objects]]
//	name = "lamp"
//	category = "lighting"
//	size = { width = 0.3, depth = 0.3, height = 1.5 }
func ReadTOML(r io.Reader) (Document, error) {
	var d Document
	md, err := toml.NewDecoder(r).Decode(&d)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Document{}, errors.New(errors.ErrCodeInvalidDocument, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return d, nil
}

// Column headers recognized by ReadXLSX, lowercased.
var headerAliases = map[string][]string{
	"name":     {"name", "object", "label", "id"},
	"width":    {"width", "w", "x"},
	"depth":    {"depth", "d", "z", "length"},
	"height":   {"height", "h", "y"},
	"category": {"type", "category", "object_type", "kind"},
}

type columns struct {
	name, width, depth, height, category int
}

// detectColumns maps header cells to columns. Without a recognizable
// header the positional order name, width, depth, height, category is
// assumed.
func detectColumns(row []string) (columns, bool) {
	c := columns{-1, -1, -1, -1, -1}
	found := false
	for i, cell := range row {
		norm := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, a := range aliases {
				if norm != a {
					continue
				}
				found = true
				switch role {
				case "name":
					if c.name == -1 {
						c.name = i
					}
				case "width":
					if c.width == -1 {
						c.width = i
					}
				case "depth":
					if c.depth == -1 {
						c.depth = i
					}
				case "height":
					if c.height == -1 {
						c.height = i
					}
				case "category":
					if c.category == -1 {
						c.category = i
					}
				}
			}
		}
	}
	if !found {
		return columns{0, 1, 2, 3, 4}, false
	}
	return c, true
}

// ReadXLSX imports the object list from the first sheet of a workbook.
// Options are left empty. Rows that are entirely blank are ignored; a
// dimension that does not parse is an error naming the row.
func ReadXLSX(r io.Reader) (Document, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Document{}, errors.New(errors.ErrCodeInvalidDocument, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return Document{}, errors.New(errors.ErrCodeInvalidDocument, "sheet %s is empty", sheets[0])
	}

	cols, hasHeader := detectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		var missing []string
		if cols.name == -1 {
			missing = append(missing, "name")
		}
		if cols.width == -1 {
			missing = append(missing, "width")
		}
		if cols.depth == -1 {
			missing = append(missing, "depth")
		}
		if cols.height == -1 {
			missing = append(missing, "height")
		}
		if len(missing) > 0 {
			return Document{}, errors.New(errors.ErrCodeInvalidDocument, "required columns not found in header: %s", strings.Join(missing, ", "))
		}
	}

	var d Document
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		spec, err := parseRow(row, cols)
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "row %d", i+1)
		}
		d.Objects = append(d.Objects, spec)
	}
	return d, nil
}

func parseRow(row []string, c columns) (ObjectSpec, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var dims [3]float64
	for k, idx := range []int{c.width, c.depth, c.height} {
		s := cell(idx)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return ObjectSpec{}, fmt.Errorf("invalid number %q", s)
		}
		dims[k] = v
	}
	spec := ObjectSpec{
		Name: cell(c.name),
		Size: &Size{Width: dims[0], Depth: dims[1], Height: dims[2]},
	}
	if cat := cell(c.category); cat != "" {
		spec.Metadata = map[string]any{MetaObjectType: cat}
	}
	return spec, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Read decodes a document of the given format from r.
func Read(r io.Reader, format string) (Document, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatXLSX:
		return ReadXLSX(r)
	}
	return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", format)
}

// ReadFile reads a scene document from path, choosing the decoder from the
// file extension.
func ReadFile(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, format)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return d, nil
}

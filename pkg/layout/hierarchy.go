package layout

// GroupSuffix is appended to a category to name its pseudo-parent.
const GroupSuffix = "_group"

// Group is the pseudo-parent shared by all objects of one category.
type Group struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Members  []string `json:"members"`
}

// BuildHierarchy attaches a Hierarchy record to every object and returns
// the groups, in order of first appearance. Positions are not touched.
func BuildHierarchy(objs []PlacedObject) []Group {
	pos := make(map[string]int)
	var groups []Group
	for i := range objs {
		cat := objs[i].Category
		if cat == "" {
			cat = DefaultCategory
			objs[i].Category = cat
		}
		g, ok := pos[cat]
		if !ok {
			g = len(groups)
			pos[cat] = g
			groups = append(groups, Group{Name: cat + GroupSuffix, Category: cat})
		}
		groups[g].Members = append(groups[g].Members, objs[i].Name)
		objs[i].Hierarchy = &Hierarchy{
			Parent:   cat + GroupSuffix,
			Children: []string{},
			Level:    1,
		}
	}
	return groups
}

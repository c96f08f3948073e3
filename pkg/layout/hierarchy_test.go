package layout

import "testing"

func TestBuildHierarchy(t *testing.T) {
	objs := []PlacedObject{
		{Name: "desk", Category: "furniture", Position: Vec3{X: 1}},
		{Name: "bulb", Category: "lighting"},
		{Name: "crate"},
		{Name: "chair", Category: "furniture"},
	}
	groups := BuildHierarchy(objs)

	wantGroups := []struct {
		name    string
		members []string
	}{
		{"furniture_group", []string{"desk", "chair"}},
		{"lighting_group", []string{"bulb"}},
		{"generic_group", []string{"crate"}},
	}
	if len(groups) != len(wantGroups) {
		t.Fatalf("BuildHierarchy() returned %d groups, want %d", len(groups), len(wantGroups))
	}
	for i, want := range wantGroups {
		g := groups[i]
		if g.Name != want.name {
			t.Errorf("groups[%d].Name = %q, want %q", i, g.Name, want.name)
		}
		if len(g.Members) != len(want.members) {
			t.Errorf("groups[%d].Members = %v, want %v", i, g.Members, want.members)
			continue
		}
		for j := range want.members {
			if g.Members[j] != want.members[j] {
				t.Errorf("groups[%d].Members = %v, want %v", i, g.Members, want.members)
			}
		}
	}

	for _, o := range objs {
		h := o.Hierarchy
		if h == nil {
			t.Fatalf("%s has no hierarchy", o.Name)
		}
		if h.Parent != o.Category+GroupSuffix {
			t.Errorf("%s parent = %q, want %q", o.Name, h.Parent, o.Category+GroupSuffix)
		}
		if h.Level != 1 {
			t.Errorf("%s level = %d, want 1", o.Name, h.Level)
		}
		if h.Children == nil || len(h.Children) != 0 {
			t.Errorf("%s children = %v, want empty", o.Name, h.Children)
		}
	}
	if objs[2].Category != DefaultCategory {
		t.Errorf("uncategorized object category = %q, want %q", objs[2].Category, DefaultCategory)
	}
	if objs[0].Position.X != 1 {
		t.Errorf("BuildHierarchy moved an object: %v", objs[0].Position)
	}
}

func TestBuildHierarchyEmpty(t *testing.T) {
	if groups := BuildHierarchy(nil); len(groups) != 0 {
		t.Errorf("BuildHierarchy(nil) = %v, want none", groups)
	}
}

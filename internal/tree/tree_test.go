package tree

import (
	"fmt"
	"math/rand"
	"testing"

	"pagebuilder/internal/domain"
)

func node(id string, k domain.Kind) domain.Node {
	return domain.Node{ID: id, Name: id, Kind: k, Style: k.DefaultStyle()}
}

// sample builds:
//
//	S (section)
//	  R (row)
//	    T (text)
//	B (button)
func sample() *Document {
	d := New()
	d = InsertChild(d, "", node("S", domain.KindSection))
	d = InsertChild(d, "S", node("R", domain.KindRow))
	d = InsertChild(d, "R", node("T", domain.KindText))
	d = InsertChild(d, "", node("B", domain.KindButton))
	return d
}

func TestInsertChildAppendsAndSetsParent(t *testing.T) {
	d := sample()
	if d.Len() != 4 {
		t.Fatalf("Len = %d, want 4", d.Len())
	}
	got, ok := Find(d, "T")
	if !ok || got.ParentID != "R" {
		t.Fatalf("T parent = %q, ok=%v", got.ParentID, ok)
	}
	if ids := d.RootIDs(); len(ids) != 2 || ids[0] != "S" || ids[1] != "B" {
		t.Fatalf("roots = %v", ids)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestInsertChildRejectsUnknownParentAndDuplicates(t *testing.T) {
	d := sample()
	if out := InsertChild(d, "missing", node("X", domain.KindText)); !Equal(out, d) {
		t.Fatalf("unresolved parent must be a no-op")
	}
	if out := InsertChild(d, "", node("T", domain.KindText)); !Equal(out, d) {
		t.Fatalf("duplicate id must be a no-op")
	}
	if out := InsertChild(d, "", domain.Node{Kind: domain.KindText}); !Equal(out, d) {
		t.Fatalf("empty id must be a no-op")
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	d := sample()
	before := d.Clone()
	_ = InsertChild(d, "R", node("Y", domain.KindImage))
	_ = RemoveByID(d, "S")
	upd, _ := Find(d, "T")
	upd.Content = "changed"
	_ = UpdateByID(d, upd)
	if !Equal(d, before) {
		t.Fatalf("input document changed")
	}
	got, _ := Find(d, "T")
	got.Children = append(got.Children, "leak")
	again, _ := Find(d, "T")
	if len(again.Children) != 0 {
		t.Fatalf("Find returned an aliased node")
	}
}

func TestRemoveByIDRemovesSubtree(t *testing.T) {
	d := RemoveByID(sample(), "S")
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
	for _, id := range []string{"S", "R", "T"} {
		if _, ok := Find(d, id); ok {
			t.Fatalf("%s should be gone", id)
		}
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRemoveByIDNested(t *testing.T) {
	d := RemoveByID(sample(), "R")
	s, _ := Find(d, "S")
	if len(s.Children) != 0 {
		t.Fatalf("S still lists children: %v", s.Children)
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
}

func TestRemoveAbsentIsStructurallyEqual(t *testing.T) {
	d := sample()
	if !Equal(RemoveByID(d, "nope"), d) {
		t.Fatalf("removing an absent id changed the document")
	}
}

func TestUpdateByIDKeepsPositionAndChildren(t *testing.T) {
	d := sample()
	r, _ := Find(d, "R")
	r.Name = "Hero row"
	r.Children = nil
	r.ParentID = "bogus"
	out := UpdateByID(d, r)
	got, _ := Find(out, "R")
	if got.Name != "Hero row" || got.ParentID != "S" || len(got.Children) != 1 {
		t.Fatalf("unexpected update result: %+v", got)
	}
	if _, ok := Find(out, "T"); !ok {
		t.Fatalf("children lost on nil child list")
	}
}

func TestUpdateByIDChildPolicy(t *testing.T) {
	d := sample()
	d = InsertChild(d, "R", node("U", domain.KindLink))

	r, _ := Find(d, "R")
	r.Children = []string{"U", "T"}
	reordered := UpdateByID(d, r)
	got, _ := Find(reordered, "R")
	if got.Children[0] != "U" || got.Children[1] != "T" {
		t.Fatalf("reorder not applied: %v", got.Children)
	}

	r.Children = []string{"U"}
	subset := UpdateByID(d, r)
	if _, ok := Find(subset, "T"); ok {
		t.Fatalf("omitted child should be removed")
	}
	if err := subset.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	r.Children = []string{"T", "B"}
	if out := UpdateByID(d, r); !Equal(out, d) {
		t.Fatalf("foreign child id must make the update a no-op")
	}
}

func TestUpdateAbsentIsNoop(t *testing.T) {
	d := sample()
	if out := UpdateByID(d, node("ghost", domain.KindText)); !Equal(out, d) {
		t.Fatalf("update of absent id changed the document")
	}
}

func TestFlattenPaths(t *testing.T) {
	got := Flatten(sample())
	want := []LayerEntry{
		{ID: "S", Name: "S", Kind: domain.KindSection, Path: "S", Depth: 0},
		{ID: "R", Name: "R", Kind: domain.KindRow, Path: "S > R", Depth: 1},
		{ID: "T", Name: "T", Kind: domain.KindText, Path: "S > R > T", Depth: 2},
		{ID: "B", Name: "B", Kind: domain.KindButton, Path: "B", Depth: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWalkEnterLeaveOrder(t *testing.T) {
	var log []string
	Walk(sample(), &recorder{log: &log})
	want := []string{"+S", "+R", "+T", "-T", "-R", "-S", "+B", "-B"}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", log, want)
	}
}

type recorder struct{ log *[]string }

func (r *recorder) Enter(n domain.Node, _ int) bool { *r.log = append(*r.log, "+"+n.ID); return true }
func (r *recorder) Leave(n domain.Node, _ int)      { *r.log = append(*r.log, "-"+n.ID) }

func TestSnapshotRoundTrip(t *testing.T) {
	d := sample()
	back, err := FromSnapshot(d.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	if !Equal(back, d) {
		t.Fatalf("snapshot round trip changed the document")
	}
	bad := d.Snapshot()
	bad.Nodes = bad.Nodes[:2]
	if _, err := FromSnapshot(bad); err == nil {
		t.Fatalf("expected error for dangling child ids")
	}
}

func TestSubtreeMaterializeAndFresh(t *testing.T) {
	d := sample()
	s, ok := SubtreeOf(d, "S")
	if !ok || s.Size() != 3 || s.Children[0].Children[0].ID != "T" {
		t.Fatalf("unexpected subtree: %+v", s)
	}
	n := 0
	fresh := WithFreshIDs(s, func() string { n++; return fmt.Sprintf("c%d", n) })
	out := InsertSubtree(d, "", fresh)
	if out.Len() != 7 {
		t.Fatalf("Len = %d, want 7", out.Len())
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if same := InsertSubtree(d, "", s); !Equal(same, d) {
		t.Fatalf("subtree with existing ids must be rejected")
	}
	rebuilt := FromSubtrees(Materialize(d))
	if !Equal(rebuilt, d) {
		t.Fatalf("Materialize/FromSubtrees round trip changed the document")
	}
}

// TestRandomOperationsKeepInvariants applies a long random sequence of
// operations and checks structure and counts after each one.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := New()
	next := 0
	ids := func() []string {
		var out []string
		Each(d, func(n domain.Node, _ int) bool { out = append(out, n.ID); return true })
		return out
	}
	for step := 0; step < 500; step++ {
		all := ids()
		prev := d
		switch op := rng.Intn(4); {
		case op <= 1 || len(all) == 0:
			parent := ""
			if len(all) > 0 && rng.Intn(3) > 0 {
				parent = all[rng.Intn(len(all))]
			}
			next++
			id := fmt.Sprintf("n%d", next)
			d = InsertChild(d, parent, node(id, domain.KindContainer))
			if d.Len() != prev.Len()+1 {
				t.Fatalf("step %d: insert did not add one node", step)
			}
			got, ok := Find(d, id)
			if !ok || got.ParentID != parent {
				t.Fatalf("step %d: inserted node not found under %q", step, parent)
			}
		case op == 2:
			id := all[rng.Intn(len(all))]
			s, _ := SubtreeOf(d, id)
			d = RemoveByID(d, id)
			if d.Len() != prev.Len()-s.Size() {
				t.Fatalf("step %d: remove dropped %d nodes, want %d", step, prev.Len()-d.Len(), s.Size())
			}
		default:
			id := all[rng.Intn(len(all))]
			n, _ := Find(d, id)
			n.Content = fmt.Sprintf("v%d", step)
			d = UpdateByID(d, n)
			if got, _ := Find(d, id); got.Content != n.Content {
				t.Fatalf("step %d: update not applied", step)
			}
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if len(Flatten(d)) != d.Len() {
			t.Fatalf("step %d: flatten length mismatch", step)
		}
	}
}

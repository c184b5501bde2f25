package dag

import (
	"testing"

	"minicc/internal/ir"
)

func TestSplitBlocksOnLabelsAndJumps(t *testing.T) {
	code := []ir.Instruction{
		{Op: ir.OpLabel, Label: "main"},   // 0
		{Op: ir.OpAssign, Dest: "a"},      // 1
		{Op: ir.OpCjump, Label: "L1"},     // 2
		{Op: ir.OpAssign, Dest: "b"},      // 3
		{Op: ir.OpJump, Label: "L2"},      // 4
		{Op: ir.OpLabel, Label: "L1"},     // 5
		{Op: ir.OpAssign, Dest: "c"},      // 6
		{Op: ir.OpLabel, Label: "L2"},     // 7
		{Op: ir.OpReturn},                 // 8
	}
	blocks := SplitBlocks(code)

	want := []Block{
		{Start: 0, End: 3},
		{Start: 3, End: 5},
		{Start: 5, End: 7},
		{Start: 7, End: 9},
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks %v, want %d %v", len(blocks), blocks, len(want), want)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("block %d: got %+v, want %+v", i, blocks[i], want[i])
		}
	}
}

func TestBuilderLookupRecordInvalidate(t *testing.T) {
	b := NewBuilder()
	if _, ok := b.Lookup("+", "a", "b", ""); ok {
		t.Fatal("expected no match in an empty builder")
	}

	b.Record("+", "a", "b", "", "t1", 0)
	node, ok := b.Lookup("+", "a", "b", "")
	if !ok || node.Name != "t1" {
		t.Fatalf("expected a hit for t1, got %+v ok=%v", node, ok)
	}

	b.Invalidate("t1")
	if _, ok := b.Lookup("+", "a", "b", ""); ok {
		t.Fatal("expected the entry to be gone after Invalidate")
	}
}

func TestBuilderRecordOverwritesPriorOwnerEntry(t *testing.T) {
	b := NewBuilder()
	b.Record("+", "a", "b", "", "t1", 0)
	b.Record("*", "c", "d", "", "t1", 1) // t1 redefined by a different expression
	if _, ok := b.Lookup("+", "a", "b", ""); ok {
		t.Fatal("the stale a+b -> t1 entry should have been evicted")
	}
	node, ok := b.Lookup("*", "c", "d", "")
	if !ok || node.Name != "t1" {
		t.Fatalf("expected c*d -> t1, got %+v ok=%v", node, ok)
	}
}

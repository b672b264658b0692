package locpatch

import "testing"

func TestDiffLines(t *testing.T) {
	old := lines("l_german:", ` k_a:0 "Hello"`, ` k_b:0 "$ROOT$"`)
	rewritten := lines("l_german:", ` k_a:0 "Hallo"  #~TR~`, ` k_b:0 "$ROOT$"`)

	diff := DiffLines(old, rewritten)

	if !diff.HasChanges() {
		t.Fatal("expected changes")
	}
	if stats := diff.Stats(); stats.Changed != 1 || stats.Unchanged != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	c := diff.Changes[0]
	if c.Line != 2 || c.Old != ` k_a:0 "Hello"` || c.New != ` k_a:0 "Hallo"  #~TR~` {
		t.Errorf("unexpected change %+v", c)
	}
}

func TestDiffLines_NoChanges(t *testing.T) {
	same := lines("l_german:", ` k:0 "v"`)
	if DiffLines(same, same).HasChanges() {
		t.Error("identical input should have no changes")
	}
}

func TestDiffLines_TerminatorIgnored(t *testing.T) {
	diff := DiffLines([]string{"a\r\n"}, []string{"a\n"})
	if diff.HasChanges() {
		t.Errorf("terminators should not count: %+v", diff.Changes)
	}
}

func TestDiffLines_LengthMismatch(t *testing.T) {
	diff := DiffLines(lines("a", "b"), lines("a"))
	if len(diff.Changes) != 1 || diff.Changes[0].Line != 2 || diff.Changes[0].New != "" {
		t.Errorf("missing line should be a change: %+v", diff.Changes)
	}
}

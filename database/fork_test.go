package database_test

import (
	"testing"

	. "github.com/ipenkin/ex-timestamping/database"
	"github.com/ipenkin/ex-timestamping/database/ldb"
)

func newFork(t *testing.T, committed map[string]string) Fork {
	db, err := ldb.OpenMemDB()
	if err != nil {
		t.Fatal(err)
	}
	fork, _ := db.Fork()
	for k, v := range committed {
		fork.Put([]byte(k), []byte(v))
	}
	if err := db.Merge(fork.Patch()); err != nil {
		t.Fatal(err)
	}
	fork.Release()

	fork, err = db.Fork()
	if err != nil {
		t.Fatal(err)
	}
	return fork
}

func get(f Fork, k string) string {
	v, _ := f.Get([]byte(k))
	if v == nil {
		return "<nil>"
	}
	return string(v)
}

func TestForkReadsThrough(t *testing.T) {
	f := newFork(t, map[string]string{"a": "1", "b": "2"})
	defer f.Release()

	f.Put([]byte("a"), []byte("x"))
	f.Delete([]byte("b"))
	f.Put([]byte("c"), []byte("3"))

	for k, want := range map[string]string{"a": "x", "b": "<nil>", "c": "3"} {
		if got := get(f, k); got != want {
			t.Errorf("Get(%s) = %s, want %s", k, got, want)
		}
	}
	if n := f.Patch().Len(); n != 3 {
		t.Errorf("patch has %d changes, want 3", n)
	}
}

func TestCheckpointRollback(t *testing.T) {
	f := newFork(t, map[string]string{"a": "1"})
	defer f.Release()

	f.Put([]byte("a"), []byte("2"))
	f.Checkpoint()

	f.Put([]byte("a"), []byte("3"))
	f.Put([]byte("a"), []byte("4"))
	f.Put([]byte("new"), []byte("n"))
	f.Delete([]byte("a"))
	f.Rollback()

	if got := get(f, "a"); got != "2" {
		t.Errorf("a = %s after rollback, want 2", got)
	}
	if got := get(f, "new"); got != "<nil>" {
		t.Errorf("new = %s after rollback", got)
	}

	// a second rollback has nothing to undo
	f.Rollback()
	if got := get(f, "a"); got != "2" {
		t.Errorf("a = %s after second rollback", got)
	}
}

func TestForkIterateMerges(t *testing.T) {
	f := newFork(t, map[string]string{
		string(TableKey("t", []byte("a"))): "1",
		string(TableKey("t", []byte("c"))): "3",
		string(TableKey("t", []byte("e"))): "5",
	})
	defer f.Release()

	f.Put(TableKey("t", []byte("b")), []byte("2"))
	f.Put(TableKey("t", []byte("c")), []byte("C"))
	f.Delete(TableKey("t", []byte("e")))
	f.Put(TableKey("t", []byte("f")), []byte("6"))
	f.Put(TableKey("u", []byte("a")), []byte("other table"))

	var got string
	f.Iterate(TablePrefix("t"), func(k, v []byte) bool {
		got += string(v)
		return true
	})
	if got != "12C6" {
		t.Errorf("iteration = %q, want 12C6", got)
	}

	got = ""
	f.Iterate(TablePrefix("t"), func(k, v []byte) bool {
		got += string(v)
		return len(got) < 2
	})
	if got != "12" {
		t.Errorf("stopped iteration = %q, want 12", got)
	}
}

func TestPatchChangesSorted(t *testing.T) {
	f := newFork(t, nil)
	defer f.Release()

	f.Put([]byte("b"), []byte("2"))
	f.Put([]byte("a"), []byte("1"))
	f.Delete([]byte("c"))

	changes := f.Patch().Changes()
	if len(changes) != 3 || string(changes[0].Key) != "a" || !changes[2].Deleted {
		t.Errorf("changes = %+v", changes)
	}
}

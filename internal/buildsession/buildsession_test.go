package buildsession

import "testing"

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestChangedReportsTrueOnFirstSighting(t *testing.T) {
	c := openTestCache(t)

	changed, err := c.Changed("main.util", []byte("fn id(x) x"))
	if err != nil {
		t.Fatalf("Changed: %v", err)
	}
	if !changed {
		t.Fatalf("Changed() = false on first sighting, want true")
	}
}

func TestChangedReportsFalseOnceContentIsUnchanged(t *testing.T) {
	c := openTestCache(t)
	src := []byte("fn id(x) x")

	if _, err := c.Changed("main.util", src); err != nil {
		t.Fatalf("Changed: %v", err)
	}
	changed, err := c.Changed("main.util", src)
	if err != nil {
		t.Fatalf("Changed: %v", err)
	}
	if changed {
		t.Fatalf("Changed() = true for identical content, want false")
	}
}

func TestChangedReportsTrueAfterContentEdits(t *testing.T) {
	c := openTestCache(t)

	if _, err := c.Changed("main.util", []byte("fn id(x) x")); err != nil {
		t.Fatalf("Changed: %v", err)
	}
	changed, err := c.Changed("main.util", []byte("fn id(x) y"))
	if err != nil {
		t.Fatalf("Changed: %v", err)
	}
	if !changed {
		t.Fatalf("Changed() = false after edit, want true")
	}
}

func TestBeginBuildRecordsARunAndStatsReflectsIt(t *testing.T) {
	c := openTestCache(t)

	id, err := c.BeginBuild("main")
	if err != nil {
		t.Fatalf("BeginBuild: %v", err)
	}
	if id == "" {
		t.Fatalf("BeginBuild returned an empty id")
	}

	if _, err := c.Changed("main", []byte("entry")); err != nil {
		t.Fatalf("Changed: %v", err)
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ModuleCount != 1 {
		t.Fatalf("stats.ModuleCount = %d, want 1", stats.ModuleCount)
	}
	if stats.Builds != 1 {
		t.Fatalf("stats.Builds = %d, want 1", stats.Builds)
	}
}

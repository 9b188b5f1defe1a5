package panel

import "testing"

func TestCoordinatorExclusive(t *testing.T) {
	c := NewCoordinator()
	if c.Open() {
		t.Fatal("fresh coordinator reports a panel open")
	}

	c.OpenThread("msg-root")
	if id, ok := c.Thread(); !ok || id != "msg-root" {
		t.Fatalf("Thread() = %q, %v", id, ok)
	}
	if _, ok := c.Profile(); ok {
		t.Fatal("profile open alongside thread")
	}

	c.OpenProfile("mbr-a")
	if id, ok := c.Profile(); !ok || id != "mbr-a" {
		t.Fatalf("Profile() = %q, %v", id, ok)
	}
	if _, ok := c.Thread(); ok {
		t.Fatal("thread survived opening a profile")
	}

	c.Close()
	if c.Open() {
		t.Fatal("panel still open after Close")
	}
}

func TestCoordinatorMessageDeleted(t *testing.T) {
	c := NewCoordinator()
	c.OpenThread("msg-root")

	c.MessageDeleted("msg-other")
	if _, ok := c.Thread(); !ok {
		t.Fatal("unrelated deletion closed the thread panel")
	}

	c.MessageDeleted("msg-root")
	if c.Open() {
		t.Fatal("deleting the root left the thread panel open")
	}

	// Profile panels are untouched by deletions.
	c.OpenProfile("mbr-a")
	c.MessageDeleted("msg-root")
	if _, ok := c.Profile(); !ok {
		t.Fatal("deletion closed a profile panel")
	}
}

func TestCoordinatorOnChange(t *testing.T) {
	c := NewCoordinator()
	fired := 0
	c.SetOnChange(func() { fired++ })

	c.OpenThread("msg-root")
	c.OpenProfile("mbr-a")
	c.Close()
	if fired != 3 {
		t.Fatalf("onChange fired %d times, expected 3", fired)
	}

	// Closing an already-empty selection does not fire.
	c.Close()
	if fired != 3 {
		t.Fatalf("Close on empty selection fired onChange (%d)", fired)
	}
}

// Package panel holds the single source of truth for which auxiliary
// panel (thread or member profile) is open beside the main feed.
package panel

// Coordinator tracks the exclusive auxiliary panel selection for one
// open workspace session. At most one of the thread target and the
// profile target is set; setting one clears the other. It is created
// explicitly per session and passed by reference to the consumers that
// need it.
type Coordinator struct {
	threadID  string
	profileID string
	onChange  func()
}

// NewCoordinator returns an empty selection.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// SetOnChange registers the layout hook fired after every selection
// change. The rendering layer uses it to resize the main region.
func (c *Coordinator) SetOnChange(fn func()) {
	c.onChange = fn
}

// OpenThread selects the thread panel for the given root message,
// clearing any profile selection.
func (c *Coordinator) OpenThread(messageID string) {
	c.threadID = messageID
	c.profileID = ""
	c.notify()
}

// OpenProfile selects the profile panel for the given member, clearing
// any thread selection.
func (c *Coordinator) OpenProfile(memberID string) {
	c.profileID = memberID
	c.threadID = ""
	c.notify()
}

// Close clears both selections.
func (c *Coordinator) Close() {
	if c.threadID == "" && c.profileID == "" {
		return
	}
	c.threadID = ""
	c.profileID = ""
	c.notify()
}

// Thread returns the open thread root message id, if any.
func (c *Coordinator) Thread() (string, bool) {
	return c.threadID, c.threadID != ""
}

// Profile returns the open profile member id, if any.
func (c *Coordinator) Profile() (string, bool) {
	return c.profileID, c.profileID != ""
}

// Open reports whether any panel is showing.
func (c *Coordinator) Open() bool {
	return c.threadID != "" || c.profileID != ""
}

// MessageDeleted closes the thread panel when its root message is
// removed. Other deletions leave the selection alone.
func (c *Coordinator) MessageDeleted(messageID string) {
	if c.threadID == messageID {
		c.Close()
	}
}

func (c *Coordinator) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

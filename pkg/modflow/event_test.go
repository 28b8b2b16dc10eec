package modflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testChannel(name string, owner Module) *Channel {
	return &Channel{name: name, owner: owner}
}

// TestEvent_RootDepth verifies root emissions start at depth 0.
func TestEvent_RootDepth(t *testing.T) {
	m := newHookModule("m")
	ev := newEvent(nil, m, testChannel("c", m))

	assert.Equal(t, 0, ev.Depth())
	assert.Nil(t, ev.Parent())
	assert.Equal(t, "m", ev.ModuleName())
	assert.Equal(t, "c", ev.ChannelName())
	assert.NotEmpty(t, ev.ID())
	assert.False(t, ev.Timestamp().IsZero())
}

// TestEvent_ChildDepth verifies nested events extend the parent chain.
func TestEvent_ChildDepth(t *testing.T) {
	m := newHookModule("m")
	root := newEvent(nil, m, testChannel("a", m))
	child := newEvent(root, m, testChannel("b", m))
	grandchild := newEvent(child, m, testChannel("c", m))

	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, 2, grandchild.Depth())
	assert.Same(t, root, child.Parent())
	assert.Same(t, child, grandchild.Parent())
}

// TestEvent_Branch verifies Branch creates a sibling, not a child.
func TestEvent_Branch(t *testing.T) {
	m := newHookModule("m")
	root := newEvent(nil, m, testChannel("a", m))
	child := newEvent(root, m, testChannel("b", m))

	sibling := child.Branch(m, testChannel("c", m))

	assert.Equal(t, child.Depth(), sibling.Depth())
	assert.Same(t, root, sibling.Parent())
	assert.NotEqual(t, child.ID(), sibling.ID())
}

// TestEvent_BranchOfRoot verifies branching a root yields another root.
func TestEvent_BranchOfRoot(t *testing.T) {
	m := newHookModule("m")
	root := newEvent(nil, m, testChannel("a", m))

	sibling := root.Branch(m, testChannel("b", m))

	assert.Equal(t, 0, sibling.Depth())
	assert.Nil(t, sibling.Parent())
}

// TestEvent_Ancestry verifies the ancestry queries walk the full parent
// chain including the event itself.
func TestEvent_Ancestry(t *testing.T) {
	producer := newHookModule("producer")
	relay := newHookModule("relay")
	root := newEvent(nil, producer, testChannel("raw", producer))
	child := newEvent(root, relay, testChannel("refined", relay))

	assert.True(t, child.ChannelInAncestors("refined"))
	assert.True(t, child.ChannelInAncestors("raw"))
	assert.False(t, child.ChannelInAncestors("other"))

	assert.True(t, child.ModuleInAncestors("relay"))
	assert.True(t, child.ModuleInAncestors("producer"))
	assert.False(t, child.ModuleInAncestors("consumer"))

	assert.True(t, root.ChannelInAncestors("raw"))
	assert.False(t, root.ChannelInAncestors("refined"))
}

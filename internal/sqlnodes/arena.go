package sqlnodes

import "fmt"

// Arena owns the nodes of a build and hands out stable Refs.
// Nodes are appended during construction; after Freeze the arena is read-only.
type Arena struct {
	nodes  []Node
	frozen bool
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add appends a node and returns its ref.
// Add panics if the arena is frozen or n is nil.
func (a *Arena) Add(n Node) Ref {
	if a.frozen {
		panic("sqlnodes: Add on frozen arena")
	}
	if n == nil {
		panic("sqlnodes: Add of nil node")
	}
	a.nodes = append(a.nodes, n)
	return Ref(len(a.nodes) - 1)
}

// Node returns the node for ref. It panics if ref was not issued by this arena.
func (a *Arena) Node(ref Ref) Node {
	n, ok := a.Lookup(ref)
	if !ok {
		panic(fmt.Sprintf("sqlnodes: invalid ref %d (arena has %d nodes)", ref, len(a.nodes)))
	}
	return n
}

// Lookup returns the node for ref, reporting whether it exists.
func (a *Arena) Lookup(ref Ref) (Node, bool) {
	if ref < 0 || int(ref) >= len(a.nodes) {
		return nil, false
	}
	return a.nodes[ref], true
}

// Root returns the node for ref if it is a RootNode.
func (a *Arena) Root(ref Ref) (*RootNode, bool) {
	n, ok := a.Lookup(ref)
	if !ok || n.Kind() != NodeRoot {
		return nil, false
	}
	root, ok := n.(*RootNode)
	return root, ok
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Freeze makes the arena read-only.
func (a *Arena) Freeze() {
	a.frozen = true
}

// Frozen reports whether the arena is read-only.
func (a *Arena) Frozen() bool {
	return a.frozen
}

// WalkFunc is called for each node reached by Walk.
type WalkFunc func(ref Ref, n Node, depth int) error

// Walk visits ref and its children in pre-order. Nodes shared by several
// parents are visited once. Walk stops at the first error returned by fn.
func (a *Arena) Walk(ref Ref, fn WalkFunc) error {
	seen := make(map[Ref]bool)
	var walk func(ref Ref, depth int) error
	walk = func(ref Ref, depth int) error {
		if seen[ref] {
			return nil
		}
		seen[ref] = true
		n, ok := a.Lookup(ref)
		if !ok {
			return fmt.Errorf("invalid ref %d", ref)
		}
		if err := fn(ref, n, depth); err != nil {
			return err
		}
		for _, child := range n.Children() {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(ref, 0)
}

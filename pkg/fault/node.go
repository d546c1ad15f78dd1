// Package fault turns Go error values into a recursive, typed tree that can be
// rendered into a log file. Each error in a cause chain becomes one Node;
// aggregate errors (errors.Join, multierror) become a Node with one child per
// constituent error; and every chain terminates in a leaf carrying the raw
// stack trace, when one is known.
//
// Classification into the closed Kind set happens while the tree is built, so
// renderers never need to type-switch on error values.
package fault

import (
	"fmt"
	"sort"
)

// Kind is the closed set of node variants.
type Kind int

const (
	// KindGeneric is any error that matched no other classification.
	KindGeneric Kind = iota
	// KindAggregate holds several independent errors as children.
	KindAggregate
	// KindInterop carries an OS or foreign-call status code.
	KindInterop
	// KindDataAccess carries a database error number and optional server/operation.
	KindDataAccess
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "Generic"
	case KindAggregate:
		return "Aggregate"
	case KindInterop:
		return "Interop"
	case KindDataAccess:
		return "DataAccess"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DataAccessInfo is the kind-specific payload of a KindDataAccess node.
type DataAccessInfo struct {
	Code      int
	Server    string // empty when unknown
	Operation string // empty when unknown
}

// InteropInfo is the kind-specific payload of a KindInterop node.
type InteropInfo struct {
	Code uint32
}

// HexCode renders the code as 0x followed by eight uppercase hex digits.
func (i InteropInfo) HexCode() string {
	return fmt.Sprintf("0x%08X", i.Code)
}

// Node is one error in a fault tree. A node has exactly one continuation:
// a Cause, a list of Children (aggregates only), or neither, in which case
// it is a leaf and StackTrace holds the raw trace (possibly empty).
type Node struct {
	Kind    Kind
	Type    string
	Origin  string
	Message string
	Data    map[string]string

	DataAccess *DataAccessInfo
	Interop    *InteropInfo

	Cause      *Node
	Children   []*Node
	StackTrace string
}

// IsLeaf reports whether n terminates its chain.
func (n *Node) IsLeaf() bool {
	return n.Cause == nil && len(n.Children) == 0
}

// Depth returns the number of nodes along the cause chain starting at n.
// Children of aggregates are not counted.
func (n *Node) Depth() int {
	depth := 0
	for cur := n; cur != nil; cur = cur.Cause {
		depth++
	}
	return depth
}

// Leaves returns every leaf reachable from n in depth-first order.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []*Node{n}
	}
	if n.Cause != nil {
		return n.Cause.Leaves()
	}
	var leaves []*Node
	for _, child := range n.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// Find returns the first node in depth-first order whose kind is k.
func (n *Node) Find(k Kind) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == k {
		return n
	}
	if found := n.Cause.Find(k); found != nil {
		return found
	}
	for _, child := range n.Children {
		if found := child.Find(k); found != nil {
			return found
		}
	}
	return nil
}

// SortedDataKeys returns the keys of n.Data in lexical order, so renderers
// produce stable output.
func (n *Node) SortedDataKeys() []string {
	keys := make([]string, 0, len(n.Data))
	for k := range n.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Copyright (c) 2025 A Bit of Help, Inc.

package entropy

import "container/heap"

// Node is a node of a prefix-code tree. Leaves carry a symbol; internal nodes own
// exactly two children and weigh the sum of their children.
type Node[S Symbol] struct {
	Symbol S
	Weight int
	Left   *Node[S]
	Right  *Node[S]

	// seq orders nodes of equal weight: leaves use their first-appearance index,
	// merged nodes take the next value of a counter starting after the last leaf.
	seq int
}

// IsLeaf reports whether n holds a symbol.
func (n *Node[S]) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

type nodeQueue[S Symbol] []*Node[S]

func (q nodeQueue[S]) Len() int { return len(q) }
func (q nodeQueue[S]) Less(i, j int) bool {
	if q[i].Weight != q[j].Weight {
		return q[i].Weight < q[j].Weight
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue[S]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue[S]) Push(x any)   { *q = append(*q, x.(*Node[S])) }
func (q *nodeQueue[S]) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return node
}

// BuildTree builds the minimum expected-length prefix-code tree for t.
//
// The two lightest nodes are merged until one remains; the first one extracted becomes
// the left child. Ties go to the node with the smaller sequence number, which gives the
// same merge order as a stable sort of the remaining nodes on every step.
// A single-symbol table yields a single leaf. An empty table yields nil.
func BuildTree[S Symbol](t *FrequencyTable[S]) *Node[S] {
	if t == nil || t.Len() == 0 {
		return nil
	}

	q := make(nodeQueue[S], 0, t.Len())
	for i, s := range t.order {
		q = append(q, &Node[S]{Symbol: s, Weight: t.counts[s], seq: i})
	}
	heap.Init(&q)

	next := t.Len()
	for q.Len() > 1 {
		left := heap.Pop(&q).(*Node[S])
		right := heap.Pop(&q).(*Node[S])
		heap.Push(&q, &Node[S]{
			Weight: left.Weight + right.Weight,
			Left:   left,
			Right:  right,
			seq:    next,
		})
		next++
	}

	return heap.Pop(&q).(*Node[S])
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package resource

// lruNode is a node in a doubly-linked LRU list.
// The node stores a key for O(1) deletion from the parent map.
type lruNode struct {
	key  Key
	prev *lruNode
	next *lruNode
}

// lruList is a doubly-linked list for LRU eviction.
// The list is not thread-safe; callers must handle synchronization.
//
// The head is the most recently used, tail is least recently used.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

// pushFront adds a new node at the front (most recently used).
func (l *lruList) pushFront(key Key) *lruNode {
	node := &lruNode{key: key}
	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}
	l.len++
	return node
}

// moveToFront marks an existing node as most recently used.
func (l *lruList) moveToFront(node *lruNode) {
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)

	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// remove unlinks a node from the list.
func (l *lruList) remove(node *lruNode) {
	if node == nil {
		return
	}
	l.unlink(node)
}

// oldest returns the least recently used node, or nil if the list is empty.
func (l *lruList) oldest() *lruNode {
	return l.tail
}

func (l *lruList) clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *lruList) unlink(node *lruNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.prev = nil
	node.next = nil
	l.len--
}

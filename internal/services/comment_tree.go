package services

import (
	"html/template"
	"sort"

	"boxlounge/internal/models"
)

// MaxThreadDepth caps reply nesting when assembling the tree. Creation
// always validates the parent, so anything deeper is either a genuinely
// absurd thread or bad data; nodes beyond the cap are dropped instead
// of recursing forever.
const MaxThreadDepth = 6

type CommentNode struct {
	models.Comment
	ContentHTML template.HTML  `json:"-"` // rendered markdown, filled by the handler
	Children    []*CommentNode `json:"children"`
}

// BuildCommentTree assembles the flat comment rows of one post into an
// ordered forest. Roots and siblings are ordered newest first, matching
// the "New" feed ordering; reply threads never re-sort by score, so a
// thread reads the same while votes on siblings move around.
//
// The walk is iterative over an id-indexed arena plus a parent->children
// index, with an explicit depth counter and a seen set, so cyclic or
// duplicated rows degrade to dropped nodes rather than unbounded work.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	childIndex := make(map[uint][]uint)
	var rootIDs []uint

	for i := range comments {
		c := comments[i]
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		nodes[c.ID] = &CommentNode{Comment: c}
		if c.ParentID == nil {
			rootIDs = append(rootIDs, c.ID)
		} else {
			childIndex[*c.ParentID] = append(childIndex[*c.ParentID], c.ID)
		}
	}

	newestFirst := func(ids []uint) {
		sort.Slice(ids, func(i, j int) bool {
			a, b := nodes[ids[i]], nodes[ids[j]]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		})
	}
	newestFirst(rootIDs)

	type frame struct {
		id    uint
		depth int
	}

	attached := make(map[uint]bool, len(comments))
	roots := make([]*CommentNode, 0, len(rootIDs))
	stack := make([]frame, 0, len(rootIDs))

	for _, id := range rootIDs {
		attached[id] = true
		roots = append(roots, nodes[id])
		stack = append(stack, frame{id: id, depth: 1})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth >= MaxThreadDepth {
			continue
		}

		ids := childIndex[f.id]
		newestFirst(ids)
		parent := nodes[f.id]
		for _, childID := range ids {
			if attached[childID] {
				continue
			}
			attached[childID] = true
			parent.Children = append(parent.Children, nodes[childID])
			stack = append(stack, frame{id: childID, depth: f.depth + 1})
		}
	}

	return roots
}

// WalkCommentNodes visits every node in the forest once.
func WalkCommentNodes(nodes []*CommentNode, visit func(*CommentNode)) {
	stack := make([]*CommentNode, len(nodes))
	copy(stack, nodes)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		stack = append(stack, n.Children...)
	}
}

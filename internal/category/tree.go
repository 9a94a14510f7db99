// Package category builds the storefront category tree from the flat list
// stored with parent references.
package category

import "github.com/Lixing-Zhang/vintage-drops/internal/models"

// Node is a category with its children in input order.
type Node struct {
	models.Category
	Children []*Node `json:"children"`
}

// BuildTree links flat into a forest. Roots are categories without a parent.
// Categories whose parent is missing from flat are dropped along with their
// subtrees. The input is not modified and equal input yields equal output.
func BuildTree(flat []models.Category) []*Node {
	nodes := make(map[string]*Node, len(flat))
	for _, c := range flat {
		nodes[c.ID] = &Node{Category: c, Children: []*Node{}}
	}

	roots := []*Node{}
	for _, c := range flat {
		n := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok && parent != n {
			parent.Children = append(parent.Children, n)
		}
	}
	return roots
}

// FilterByGender keeps the roots tagged with gender. Subtrees carry their
// root's tag, so children are kept as-is. An empty gender keeps everything.
func FilterByGender(tree []*Node, gender string) []*Node {
	if gender == "" {
		return tree
	}
	out := []*Node{}
	for _, n := range tree {
		if n.AssignedGender == gender || n.AssignedGender == "unisex" {
			out = append(out, n)
		}
	}
	return out
}

// Find returns the node with id anywhere in tree.
func Find(tree []*Node, id string) *Node {
	for _, n := range tree {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// SubtreeIDs returns the ids of n and all its descendants.
func SubtreeIDs(n *Node) map[string]bool {
	ids := make(map[string]bool)
	var walk func(*Node)
	walk = func(n *Node) {
		if ids[n.ID] {
			return
		}
		ids[n.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return ids
}

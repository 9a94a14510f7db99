package models

// Category is a node of the self-referential category tree. AssignedGender
// tags a subtree to a storefront filter group.
type Category struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	ParentID       *string `json:"parent_id"`
	AssignedGender string  `json:"assigned_gender,omitempty"`
	SortOrder      int     `json:"sort_order"`
}

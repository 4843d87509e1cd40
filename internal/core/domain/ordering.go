package domain

import "sort"

// Direction is the way a category moves among its siblings.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// OrderUpdate is one entry of the update-order payload.
type OrderUpdate struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}

// SwapOrder finds the sibling of category id that sits closest below (up) or
// above (down) it in display order and returns the two updates that swap
// their order values. Siblings share the same parent.
func SwapOrder(categories []Category, id int64, dir Direction) ([]OrderUpdate, error) {
	var current *Category
	for i := range categories {
		if categories[i].ID == id {
			current = &categories[i]
			break
		}
	}
	if current == nil {
		return nil, ErrCategoryNotFound
	}

	siblings := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.ID != current.ID && c.SameParent(*current) {
			siblings = append(siblings, c)
		}
	}
	sort.SliceStable(siblings, func(i, j int) bool { return siblings[i].Order < siblings[j].Order })

	var target *Category
	switch dir {
	case MoveUp:
		for i := len(siblings) - 1; i >= 0; i-- {
			if siblings[i].Order < current.Order {
				target = &siblings[i]
				break
			}
		}
	case MoveDown:
		for i := range siblings {
			if siblings[i].Order > current.Order {
				target = &siblings[i]
				break
			}
		}
	}
	if target == nil {
		return nil, ErrCannotMove
	}

	return []OrderUpdate{
		{ID: current.ID, Order: target.Order},
		{ID: target.ID, Order: current.Order},
	}, nil
}

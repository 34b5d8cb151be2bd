package cart

// Item is a single cart line. Insertion order is preserved by State.Items.
type Item struct {
	ID       string  `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Image    string  `json:"image" bson:"image"`
}

// State is the cart as the storefront sees it. TotalAmount always equals the
// sum of quantity*price over Items after any transition below, with the single
// documented exception of SetTotalAmount, which overrides the total with a
// value sourced from persistence.
type State struct {
	Items       []Item  `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
	Loading     bool    `json:"loading"`
}

// NewState returns the initial cart state, loading until the first SetItems.
func NewState() State {
	return State{Items: []Item{}, TotalAmount: 0, Loading: true}
}

// Total sums quantity*price over items.
func Total(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += float64(it.Quantity) * it.Price
	}
	return sum
}

// AddItem merges by id: an existing line has its quantity incremented by the
// incoming quantity, otherwise the item is appended.
func (s State) AddItem(item Item) State {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)

	merged := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	s.Items = items
	s.TotalAmount = Total(items)
	return s
}

// SetItems replaces the whole item sequence, recomputes the total and clears
// the loading flag. This is the only replace operation: there is no variant
// that skips recomputation.
func (s State) SetItems(items []Item) State {
	copied := make([]Item, len(items))
	copy(copied, items)

	s.Items = copied
	s.TotalAmount = Total(copied)
	s.Loading = false
	return s
}

// UpdateQuantity sets the quantity on the matching item, or does nothing if
// the id is absent. Quantity is floored at zero, and a zero quantity removes
// the line entirely.
func (s State) UpdateQuantity(id string, quantity int) State {
	if quantity <= 0 {
		return s.RemoveItem(id)
	}

	items := make([]Item, len(s.Items))
	copy(items, s.Items)

	for i := range items {
		if items[i].ID == id {
			items[i].Quantity = quantity
			s.Items = items
			s.TotalAmount = Total(items)
			return s
		}
	}
	return s
}

// RemoveItem drops the matching line and recomputes the total. Absent ids are
// a no-op.
func (s State) RemoveItem(id string) State {
	items := make([]Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.ID != id {
			items = append(items, it)
		}
	}
	s.Items = items
	s.TotalAmount = Total(items)
	return s
}

// Clear resets to an empty cart with a zero total.
func (s State) Clear() State {
	s.Items = []Item{}
	s.TotalAmount = 0
	return s
}

// SetTotalAmount overrides the total without recomputation. Callers use it
// when the total comes from the persistence layer rather than being derived
// locally; they own keeping it consistent with Items.
func (s State) SetTotalAmount(amount float64) State {
	s.TotalAmount = amount
	return s
}

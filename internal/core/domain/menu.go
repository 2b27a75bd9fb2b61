package domain

// Category groups menu items.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MenuItem is a single orderable dish.
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Calories    int      `json:"calories"`
	Protein     int      `json:"protein"`
	Type        string   `json:"type,omitempty"`
	Categories  []string `json:"categories"`
}

// HasCategory reports whether the item belongs to the given category id.
func (m MenuItem) HasCategory(categoryID string) bool {
	for _, c := range m.Categories {
		if c == categoryID {
			return true
		}
	}
	return false
}

// MenuQuery narrows a menu listing. Empty fields are not applied.
type MenuQuery struct {
	Category   string
	SearchText string
}

// Package catalog resolves item and category references for display.
package catalog

import "inventaris/internal/models"

// UnknownName is shown for a reference to a category or item that no
// longer exists.
const UnknownName = "Tidak diketahui"

type Catalog struct {
	items      map[string]models.Item
	categories map[string]models.Category
}

func New(items []models.Item, categories []models.Category) *Catalog {
	c := &Catalog{
		items:      make(map[string]models.Item, len(items)),
		categories: make(map[string]models.Category, len(categories)),
	}
	for _, it := range items {
		c.items[it.ID.String()] = it
	}
	for _, cat := range categories {
		c.categories[cat.ID.String()] = cat
	}
	return c
}

func (c *Catalog) FindItem(id models.ID) (models.Item, bool) {
	if c == nil {
		return models.Item{}, false
	}
	it, ok := c.items[id.String()]
	return it, ok
}

func (c *Catalog) FindCategory(id models.ID) (models.Category, bool) {
	if c == nil {
		return models.Category{}, false
	}
	cat, ok := c.categories[id.String()]
	return cat, ok
}

func (c *Catalog) CategoryName(id models.ID) string {
	if cat, ok := c.FindCategory(id); ok && cat.Name != "" {
		return cat.Name
	}
	return UnknownName
}

func (c *Catalog) ItemName(id models.ID) string {
	if it, ok := c.FindItem(id); ok && it.Name != "" {
		return it.Name
	}
	return UnknownName
}

// ItemRow is an item joined with its category name.
type ItemRow struct {
	models.Item
	CategoryName string
}

func (c *Catalog) ItemRows(items []models.Item) []ItemRow {
	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, ItemRow{Item: it, CategoryName: c.CategoryName(it.CategoryID)})
	}
	return rows
}

// LoanRow is a loan joined with its item and category names. Names embedded
// in the loan (report rows) win over the catalog lookup.
type LoanRow struct {
	models.Loan
	ItemName     string
	CategoryName string
}

func (c *Catalog) LoanRows(loans []models.Loan) []LoanRow {
	rows := make([]LoanRow, 0, len(loans))
	for _, l := range loans {
		row := LoanRow{Loan: l, ItemName: UnknownName, CategoryName: UnknownName}

		item, found := c.FindItem(l.ItemID)
		if l.Item != nil && l.Item.Name != "" {
			item, found = *l.Item, true
		}
		if found {
			if item.Name != "" {
				row.ItemName = item.Name
			}
			row.CategoryName = c.CategoryName(item.CategoryID)
		}
		if l.Category != nil && l.Category.Name != "" {
			row.CategoryName = l.Category.Name
		}
		rows = append(rows, row)
	}
	return rows
}

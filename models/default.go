package models

// DefaultCategories is shown when the catalog has no categories at all.
var DefaultCategories = []string{"Samoussas", "Bonbons piment", "Boissons"}

// DefaultProducts is the built-in catalog installed on first run and merged
// (by id, additively) into existing catalogs on every start.
func DefaultProducts() []Product {
	return []Product{
		{ID: "S-FRO", Category: "Samoussas", Name: "Samoussa fromage", Price: 50, Active: true},
		{ID: "S-POU", Category: "Samoussas", Name: "Samoussa poulet", Price: 50, Active: true},
		{ID: "S-POI", Category: "Samoussas", Name: "Samoussa poisson", Price: 50, Active: true},
		{ID: "BP-CLA", Category: "Bonbons piment", Name: "Bonbon piment", Price: 80, Active: true},
		{ID: "BO-EAU", Category: "Boissons", Name: "Eau", Price: 200, Active: true},
		{ID: "BO-COC", Category: "Boissons", Name: "Coca", Price: 250, Active: true},
		{ID: "BO-THE", Category: "Boissons", Name: "Thé", Price: 250, Active: true},
	}
}

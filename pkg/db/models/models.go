package models

// All returns every model in schema dependency order, used for AutoMigrate.
func All() []any {
	return []any{
		&UserProfile{},
		&Category{},
		&Product{},
		&CartItem{},
		&Coupon{},
		&Order{},
		&OrderItem{},
		&Review{},
		&WishlistItem{},
	}
}

package devapi

import (
	"fmt"

	"github.com/chaldal/admin-console/internal/core/domain"
)

// SeedAccount is a login created at startup.
type SeedAccount struct {
	Name     string
	Phone    string
	Password string
	Role     string
}

// Seed creates the accounts and a small sample catalog. Each account gets
// one default address.
func Seed(auth *AuthService, catalog *Catalog, accounts []SeedAccount) error {
	for _, a := range accounts {
		u, err := auth.AddAccount(domain.User{Name: a.Name, Phone: a.Phone, Role: a.Role, IsActive: true}, a.Password)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.Phone, err)
		}
		_, err = catalog.SaveAddress(domain.Address{
			UserID:      u.ID,
			AddressLine: "House 12, Road 5",
			Area:        "Dhanmondi",
			City:        "Dhaka",
			PostalCode:  "1205",
			Type:        domain.AddressWork,
		})
		if err != nil {
			return fmt.Errorf("seed address %s: %w", a.Phone, err)
		}
	}

	grocery, err := catalog.SaveCategory(domain.Category{Name: "Grocery", Slug: "grocery", IsActive: true})
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	parentID := grocery.ID
	rice, err := catalog.SaveCategory(domain.Category{Name: "Rice", Slug: "rice", ParentID: &parentID, IsActive: true})
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if _, err := catalog.SaveCategory(domain.Category{Name: "Lentils", Slug: "lentils", ParentID: &parentID, IsActive: true}); err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if _, err := catalog.SaveCategory(domain.Category{Name: "Beverages", Slug: "beverages", IsActive: true}); err != nil {
		return fmt.Errorf("seed category: %w", err)
	}

	brand, err := catalog.SaveBrand(domain.Brand{Name: "Pran", Slug: "pran", IsActive: true})
	if err != nil {
		return fmt.Errorf("seed brand: %w", err)
	}
	brandID := brand.ID
	_, err = catalog.SaveProduct(domain.Product{
		Name:               "Miniket Rice 5kg",
		Slug:               "miniket-rice-5kg",
		CategoryID:         rice.ID,
		BrandID:            &brandID,
		SKU:                "PRD-000001-001",
		BasePrice:          450,
		SalePrice:          427.5,
		DiscountPercentage: 5,
		Status:             domain.ProductActive,
		CurrentStock:       40,
		StockAlertQuantity: 10,
	}, []string{"products/miniket.jpg"}, 0)
	if err != nil {
		return fmt.Errorf("seed product: %w", err)
	}
	return nil
}

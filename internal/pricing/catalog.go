package pricing

import "math"

// Bundle models a purchasable stack of protection material on the market.
type Bundle struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Units int    `yaml:"units" json:"units"` // protection units in the stack
	Price int64  `yaml:"price" json:"price"` // price of the whole stack
}

// Catalog lists the bundles on offer and the market tax.
type Catalog struct {
	// TaxRate is applied on the subtotal. Use 0 for tax-inclusive prices.
	TaxRate float64  `yaml:"tax_rate" json:"tax_rate"`
	Bundles []Bundle `yaml:"bundles" json:"bundles"`
}

// Plan summarizes a purchase plan.
type Plan struct {
	Purchases  []Purchase `json:"purchases"`
	Sub        int64      `json:"sub"` // subtotal before tax
	Tax        int64      `json:"tax"`
	Total      int64      `json:"total"`
	TotalUnits int        `json:"total_units"`
}

// Purchase is one line item in the plan.
type Purchase struct {
	BundleID  string `json:"bundle_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unit_price"` // price per bundle
	Units     int    `json:"units"`      // protection units per bundle
	Subtotal  int64  `json:"subtotal"`
}

// applyTax computes tax and total given a subtotal and a tax rate.
func applyTax(sub int64, taxRate float64) (tax int64, total int64) {
	if taxRate <= 0 {
		return 0, sub
	}
	t := int64(math.Round(float64(sub) * taxRate))
	return t, sub + t
}

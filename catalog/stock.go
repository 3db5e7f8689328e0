package catalog

// StockLevel is the badge shown next to a stock quantity
type StockLevel string

const (
	StockRupture StockLevel = "rupture"
	StockFaible  StockLevel = "stock_faible"
	StockEnStock StockLevel = "en_stock"
)

// LowStockThreshold is the quantity under which stock is shown as low
const LowStockThreshold = 20

// LevelOf classifies a stock quantity
func LevelOf(quantite int) StockLevel {
	switch {
	case quantite <= 0:
		return StockRupture
	case quantite < LowStockThreshold:
		return StockFaible
	default:
		return StockEnStock
	}
}

// Label is the French badge text
func (l StockLevel) Label() string {
	switch l {
	case StockRupture:
		return "Rupture"
	case StockFaible:
		return "Stock faible"
	default:
		return "En stock"
	}
}

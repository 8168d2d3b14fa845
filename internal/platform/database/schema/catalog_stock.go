package schema

// CatalogStockTable represents the 'catalog.stock' table
type CatalogStockTable struct {
	Table       string
	ID          string
	BookID      string
	Quantity    string
	Location    string
	ImportPrice string
	Status      string
	LastUpdated string
}

// CatalogStock is the schema definition for catalog.stock
var CatalogStock = CatalogStockTable{
	Table:       "catalog.stock",
	ID:          "id",
	BookID:      "bookid",
	Quantity:    "quantity",
	Location:    "location",
	ImportPrice: "importprice",
	Status:      "status",
	LastUpdated: "lastupdated",
}

func (t CatalogStockTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.Quantity, t.Location, t.ImportPrice, t.Status, t.LastUpdated,
	}
}

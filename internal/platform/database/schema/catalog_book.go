package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table         string
	ID            string
	Title         string
	Subtitle      string
	Slug          string
	Description   string
	Authors       string
	Language      string
	Format        string
	PublishDate   string
	PageCount     string
	ISBN          string
	PublisherID   string
	CategoryIDs   string
	BasePrice     string
	OriginalPrice string
	Currency      string
	ThumbnailURL  string
	Status        string
	Tags          string
	SoldCount     string
	StockOnHand   string
	StockReserved string
	CreatedAt     string
	UpdatedAt     string
	DeletedAt     string
	DeletedBy     string
	RestoredAt    string
	RestoredBy    string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:         "catalog.book",
	ID:            "id",
	Title:         "title",
	Subtitle:      "subtitle",
	Slug:          "slug",
	Description:   "description",
	Authors:       "authors",
	Language:      "language",
	Format:        "format",
	PublishDate:   "publishdate",
	PageCount:     "pagecount",
	ISBN:          "isbn",
	PublisherID:   "publisherid",
	CategoryIDs:   "categoryids",
	BasePrice:     "baseprice",
	OriginalPrice: "originalprice",
	Currency:      "currency",
	ThumbnailURL:  "thumbnailurl",
	Status:        "status",
	Tags:          "tags",
	SoldCount:     "soldcount",
	StockOnHand:   "stockonhand",
	StockReserved: "stockreserved",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	DeletedAt:     "deletedat",
	DeletedBy:     "deletedby",
	RestoredAt:    "restoredat",
	RestoredBy:    "restoredby",
}

func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Subtitle, t.Slug, t.Description, t.Authors, t.Language,
		t.Format, t.PublishDate, t.PageCount, t.ISBN, t.PublisherID, t.CategoryIDs,
		t.BasePrice, t.OriginalPrice, t.Currency, t.ThumbnailURL, t.Status, t.Tags,
		t.SoldCount, t.StockOnHand, t.StockReserved, t.CreatedAt, t.UpdatedAt,
		t.DeletedAt, t.DeletedBy, t.RestoredAt, t.RestoredBy,
	}
}

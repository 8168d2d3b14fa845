package schema

// CatalogBookImageTable represents the 'catalog.bookimage' table
type CatalogBookImageTable struct {
	Table    string
	BookID   string
	MediaID  string
	Kind     string
	URL      string
	Position string
}

// CatalogBookImage is the schema definition for catalog.bookimage
var CatalogBookImage = CatalogBookImageTable{
	Table:    "catalog.bookimage",
	BookID:   "bookid",
	MediaID:  "mediaid",
	Kind:     "kind",
	URL:      "url",
	Position: "position",
}

func (t CatalogBookImageTable) Columns() []string {
	return []string{t.BookID, t.MediaID, t.Kind, t.URL, t.Position}
}

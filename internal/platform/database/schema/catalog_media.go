package schema

// CatalogMediaTable represents the 'catalog.media' table
type CatalogMediaTable struct {
	Table          string
	ID             string
	URL            string
	PublicID       string
	Type           string
	Status         string
	UploadedBy     string
	AttachedToKind string
	AttachedToID   string
	OriginalName   string
	MimeType       string
	SizeBytes      string
	CreatedAt      string
	UpdatedAt      string
}

// CatalogMedia is the schema definition for catalog.media
var CatalogMedia = CatalogMediaTable{
	Table:          "catalog.media",
	ID:             "id",
	URL:            "url",
	PublicID:       "publicid",
	Type:           "type",
	Status:         "status",
	UploadedBy:     "uploadedby",
	AttachedToKind: "attachedtokind",
	AttachedToID:   "attachedtoid",
	OriginalName:   "originalname",
	MimeType:       "mimetype",
	SizeBytes:      "sizebytes",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t CatalogMediaTable) Columns() []string {
	return []string{
		t.ID, t.URL, t.PublicID, t.Type, t.Status, t.UploadedBy,
		t.AttachedToKind, t.AttachedToID, t.OriginalName, t.MimeType,
		t.SizeBytes, t.CreatedAt, t.UpdatedAt,
	}
}

package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeBook      ProductType = "Book"
	ProductTypeNewspaper ProductType = "Newspaper"
	ProductTypeCD        ProductType = "CD"
	ProductTypeDVD       ProductType = "DVD"
)

// ProductDetails is the closed set of type-specific product fields.
// Only the types in this package implement it.
type ProductDetails interface {
	Type() ProductType
	isProductDetails()
}

type BookDetails struct {
	Authors   []string `json:"authors"`
	Publisher string   `json:"publisher"`
	CoverType string   `json:"cover_type,omitempty"`
	Pages     int      `json:"pages,omitempty"`
}

type NewspaperDetails struct {
	EditorInChief string    `json:"editor_in_chief"`
	Publisher     string    `json:"publisher"`
	IssueDate     time.Time `json:"issue_date"`
}

type CDDetails struct {
	Artist      string   `json:"artist"`
	RecordLabel string   `json:"record_label"`
	Genre       string   `json:"genre"`
	TrackList   []string `json:"track_list,omitempty"`
}

type DVDDetails struct {
	Director string        `json:"director"`
	Studio   string        `json:"studio"`
	Runtime  time.Duration `json:"runtime"`
}

func (BookDetails) Type() ProductType      { return ProductTypeBook }
func (NewspaperDetails) Type() ProductType { return ProductTypeNewspaper }
func (CDDetails) Type() ProductType        { return ProductTypeCD }
func (DVDDetails) Type() ProductType       { return ProductTypeDVD }

func (BookDetails) isProductDetails()      {}
func (NewspaperDetails) isProductDetails() {}
func (CDDetails) isProductDetails()        {}
func (DVDDetails) isProductDetails()       {}

// Product is the read-only snapshot of a catalog item.
// Weight is in kilograms, Price in VND.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Weight      float64         `json:"weight"`
	Active      bool            `json:"active"`
	ImageURL    string          `json:"image_url,omitempty"`
	Details     ProductDetails  `json:"details,omitempty"`
}

// Type returns the variant tag, or "" when the product carries no details.
func (p Product) Type() ProductType {
	if p.Details == nil {
		return ""
	}
	return p.Details.Type()
}

// Creator returns the person credited for the product: author, editor, artist or director.
func (p Product) Creator() string {
	switch d := p.Details.(type) {
	case BookDetails:
		if len(d.Authors) > 0 {
			return d.Authors[0]
		}
		return ""
	case NewspaperDetails:
		return d.EditorInChief
	case CDDetails:
		return d.Artist
	case DVDDetails:
		return d.Director
	case nil:
		return ""
	default:
		panic("domain: unknown product details type")
	}
}

// MarshalJSON adds the variant tag next to the details so clients can discriminate them.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Type ProductType `json:"type"`
	}{plain(p), p.Type()})
}

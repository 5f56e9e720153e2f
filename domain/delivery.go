package domain

import "github.com/shopspring/decimal"

// DeliveryInfo is the shipping data collected at the second checkout step.
// DeliveryID is assigned by the backend on submission.
type DeliveryInfo struct {
	DeliveryID     string          `json:"delivery_id,omitempty"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phone_number"`
	Address        string          `json:"address"`
	Province       string          `json:"province"`
	DeliveryMethod string          `json:"delivery_method"`
	Note           string          `json:"note,omitempty"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
}

// Confirmed is true once the backend has accepted the delivery info.
func (d DeliveryInfo) Confirmed() bool {
	return d.DeliveryID != ""
}

const (
	DeliveryMethodStandard = "Standard"
	DeliveryMethodExpress  = "Express"
	DeliveryMethodSameDay  = "Same Day"
)

var DeliveryMethods = []string{DeliveryMethodStandard, DeliveryMethodExpress, DeliveryMethodSameDay}

var Provinces = []string{
	"Hanoi",
	"Ho Chi Minh City",
	"Da Nang",
	"Can Tho",
	"Hai Phong",
	"Bien Hoa",
	"Nha Trang",
	"Hue",
	"Vung Tau",
	"Bac Ninh",
	"Hai Duong",
	"Thanh Hoa",
	"Nghe An",
	"Quang Ninh",
	"Binh Duong",
	"Dong Nai",
	"Ba Ria-Vung Tau",
	"Lam Dong",
	"Khanh Hoa",
	"Other",
}

// MajorCities get the cheaper base shipping rate.
var MajorCities = []string{"Hanoi", "Ho Chi Minh City", "Hà Nội", "TP. Hồ Chí Minh"}

// IsMajorCity reports whether province is billed at the major-city rate.
func IsMajorCity(province string) bool {
	for _, c := range MajorCities {
		if c == province {
			return true
		}
	}
	return false
}

package catalog

import (
	"time"

	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

// Seed returns the demo catalog served when no backend is configured.
func Seed() []domain.Product {
	vnd := decimal.NewFromInt
	return []domain.Product{
		{
			ID: "BK-001", Name: "Dế Mèn Phiêu Lưu Ký", Description: "Classic Vietnamese children's novel",
			Price: vnd(85000), Stock: 25, Weight: 0.35, Active: true,
			Details: domain.BookDetails{Authors: []string{"Tô Hoài"}, Publisher: "Kim Đồng", CoverType: "Paperback", Pages: 144},
		},
		{
			ID: "BK-002", Name: "The Pragmatic Programmer", Description: "From journeyman to master",
			Price: vnd(520000), Stock: 8, Weight: 0.8, Active: true,
			Details: domain.BookDetails{Authors: []string{"David Thomas", "Andrew Hunt"}, Publisher: "Addison-Wesley", CoverType: "Hardcover", Pages: 352},
		},
		{
			ID: "BK-003", Name: "Số Đỏ", Description: "Satirical novel",
			Price: vnd(68000), Stock: 0, Weight: 0.3, Active: true,
			Details: domain.BookDetails{Authors: []string{"Vũ Trọng Phụng"}, Publisher: "NXB Văn Học", CoverType: "Paperback", Pages: 240},
		},
		{
			ID: "NP-001", Name: "Tuổi Trẻ Cuối Tuần", Description: "Weekly news magazine",
			Price: vnd(18000), Stock: 120, Weight: 0.15, Active: true,
			Details: domain.NewspaperDetails{EditorInChief: "Lê Thế Chữ", Publisher: "Tuổi Trẻ", IssueDate: time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)},
		},
		{
			ID: "NP-002", Name: "Thanh Niên", Description: "Daily newspaper",
			Price: vnd(8000), Stock: 200, Weight: 0.1, Active: false,
			Details: domain.NewspaperDetails{EditorInChief: "Nguyễn Ngọc Toàn", Publisher: "Thanh Niên", IssueDate: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
		},
		{
			ID: "CD-001", Name: "Abbey Road", Description: "Remastered studio album",
			Price: vnd(450000), Stock: 6, Weight: 0.12, Active: true,
			Details: domain.CDDetails{Artist: "The Beatles", RecordLabel: "Apple Records", Genre: "Rock", TrackList: []string{"Come Together", "Something", "Here Comes the Sun"}},
		},
		{
			ID: "CD-002", Name: "Trịnh Công Sơn Tuyển Tập", Description: "Collected songs",
			Price: vnd(150000), Stock: 15, Weight: 0.12, Active: true,
			Details: domain.CDDetails{Artist: "Khánh Ly", RecordLabel: "Phương Nam Film", Genre: "Nhạc Trịnh"},
		},
		{
			ID: "DVD-001", Name: "Spirited Away", Description: "Animated feature film",
			Price: vnd(230000), Stock: 4, Weight: 0.2, Active: true,
			Details: domain.DVDDetails{Director: "Hayao Miyazaki", Studio: "Studio Ghibli", Runtime: 125 * time.Minute},
		},
		{
			ID: "DVD-002", Name: "Mùi Đu Đủ Xanh", Description: "The Scent of Green Papaya",
			Price: vnd(190000), Stock: 3, Weight: 0.2, Active: true,
			Details: domain.DVDDetails{Director: "Trần Anh Hùng", Studio: "Les Productions Lazennec", Runtime: 104 * time.Minute},
		},
	}
}

package analyzers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/amara-ai/credit-engine/internal/domain"
)

func TestFallbackPhotoAnalysis_Business(t *testing.T) {
	got := fallbackPhotoAnalysis(false)

	if got.BusinessScale != domain.ScaleSmall {
		t.Errorf("BusinessScale = %v, want small", got.BusinessScale)
	}
	if got.InventoryDensity != domain.InventoryModerate {
		t.Errorf("InventoryDensity = %v, want moderate", got.InventoryDensity)
	}
	if got.AssetQuality != domain.AssetFair {
		t.Errorf("AssetQuality = %v, want fair", got.AssetQuality)
	}
	if got.HousingCondition != "" {
		t.Errorf("HousingCondition = %v, want empty for business photo", got.HousingCondition)
	}
	if got.ConfidenceScore != 0.50 {
		t.Errorf("ConfidenceScore = %v, want 0.50", got.ConfidenceScore)
	}
	if !got.Fallback {
		t.Error("Fallback = false, want true")
	}
}

func TestFallbackPhotoAnalysis_House(t *testing.T) {
	got := fallbackPhotoAnalysis(true)

	if got.HousingCondition != domain.HousingBasic {
		t.Errorf("HousingCondition = %v, want basic", got.HousingCondition)
	}
	if got.BusinessScale != "" {
		t.Errorf("BusinessScale = %v, want empty for house photo", got.BusinessScale)
	}
	if got.ConfidenceScore != 0.50 {
		t.Errorf("ConfidenceScore = %v, want 0.50", got.ConfidenceScore)
	}
}

func TestIsHousePhoto(t *testing.T) {
	tests := []struct {
		photoType string
		want      bool
	}{
		{"house_exterior", true},
		{"house_interior", true},
		{"business_exterior", false},
		{"business_interior", false},
		{"inventory", false},
		{"assets", false},
	}

	for _, tt := range tests {
		if got := isHousePhoto(tt.photoType); got != tt.want {
			t.Errorf("isHousePhoto(%q) = %v, want %v", tt.photoType, got, tt.want)
		}
	}
}

func TestFallbackVisionAnalyzer_DispatchesOnPhotoType(t *testing.T) {
	analyzer := NewFallbackVisionAnalyzer(zerolog.Nop())

	business := analyzer.Analyze(context.Background(), domain.Photo{ID: "p1", PhotoType: "inventory"}, domain.Borrower{})
	if business.BusinessScale == "" {
		t.Error("expected business analysis for inventory photo")
	}

	house := analyzer.Analyze(context.Background(), domain.Photo{ID: "p2", PhotoType: "house_interior"}, domain.Borrower{})
	if house.HousingCondition == "" {
		t.Error("expected house analysis for house_interior photo")
	}
}

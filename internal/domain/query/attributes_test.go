package query

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestSanitize_AllAbsent(t *testing.T) {
	attrs := Attributes{}
	attrs.Sanitize()

	if attrs.Category != CategoryPerfume {
		t.Errorf("Category = %q, want %q", attrs.Category, CategoryPerfume)
	}
	if attrs.Gender != nil || attrs.Longevity != nil || attrs.Sillage != nil {
		t.Error("scalar fields should stay absent")
	}
	if attrs.Seasons != nil || attrs.Times != nil || attrs.MainAccords != nil {
		t.Error("list fields should stay absent")
	}
}

func TestSanitize_LowercasesAndValidates(t *testing.T) {
	attrs := Attributes{
		Category:  "Shampoo", // forced back to perfume
		Gender:    strPtr("  Female "),
		Longevity: strPtr("Long Lasting"),
		Sillage:   strPtr("projectile"), // out of vocabulary
		Seasons:   []string{"Winter", "monsoon", "winter", "spring", "summer"},
		Times:     []string{"Night", "noon"},
	}
	attrs.Sanitize()

	if attrs.Category != CategoryPerfume {
		t.Errorf("Category = %q", attrs.Category)
	}
	if attrs.Gender == nil || *attrs.Gender != "female" {
		t.Errorf("Gender = %v, want female", attrs.Gender)
	}
	if attrs.Longevity == nil || *attrs.Longevity != "long lasting" {
		t.Errorf("Longevity = %v, want long lasting", attrs.Longevity)
	}
	if attrs.Sillage != nil {
		t.Errorf("Sillage = %v, want absent for out-of-vocabulary value", *attrs.Sillage)
	}
	// Deduplicated, invalid dropped, truncated to MaxSeasons.
	if want := []string{"winter", "spring"}; !reflect.DeepEqual(attrs.Seasons, want) {
		t.Errorf("Seasons = %v, want %v", attrs.Seasons, want)
	}
	if want := []string{"night"}; !reflect.DeepEqual(attrs.Times, want) {
		t.Errorf("Times = %v, want %v", attrs.Times, want)
	}
}

func TestSanitize_AccordsOpenVocabulary(t *testing.T) {
	attrs := Attributes{
		MainAccords: []string{" Floral ", "floral", "", "Woody"},
	}
	attrs.Sanitize()

	if want := []string{"floral", "woody"}; !reflect.DeepEqual(attrs.MainAccords, want) {
		t.Errorf("MainAccords = %v, want %v", attrs.MainAccords, want)
	}
}

func TestSanitize_UndefinedIsOutOfVocabulary(t *testing.T) {
	attrs := Attributes{
		Longevity: strPtr("undefined"),
		Sillage:   strPtr("undefined"),
	}
	attrs.Sanitize()

	if attrs.Longevity != nil || attrs.Sillage != nil {
		t.Error("undefined sentinel should become absent")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadRates(t *testing.T) {
	path := writeTempCSV(t, "rates.csv",
		"product_title,positive_rate\n"+
			"Nuit Etoilee,0.8\n"+
			"Citrus Morning,not-a-number\n"+
			"Oud Royale,0.9\n")

	rates, err := readRates(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rates) != 2 {
		t.Fatalf("len(rates) = %d, want 2 (unparseable row skipped)", len(rates))
	}
	if rates["Nuit Etoilee"] != 0.8 || rates["Oud Royale"] != 0.9 {
		t.Errorf("rates = %v", rates)
	}
	if _, ok := rates["Citrus Morning"]; ok {
		t.Error("unparseable rate must be skipped, not stored")
	}
}

func TestReadRates_MissingColumns(t *testing.T) {
	path := writeTempCSV(t, "rates.csv", "product_title,rating\nA,0.5\n")

	if _, err := readRates(path); err == nil {
		t.Fatal("expected error for missing positive_rate column")
	}
}

func TestReadCatalog_MergesRates(t *testing.T) {
	path := writeTempCSV(t, "catalog.csv",
		"product_title,url,main_accords,longevity,sillage,gender,suitable_season,suitable_time,description\n"+
			"Nuit Etoilee,http://x/1,floral,Long lasting,Strong,Female,Winter,Night,warm floral\n"+
			"Citrus Morning,http://x/2,citrus,Moderate,Soft,Unisex,Summer,Day,bright citrus\n"+
			"Oud Royale,http://x/3,woody,Very long lasting,Very strong,Male,Winter,Night,deep oud\n")

	rates := map[string]float64{"Nuit Etoilee": 0.8}

	products, err := readCatalog(path, rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("len(products) = %d, want 3", len(products))
	}

	byName := map[string]float64{}
	for _, p := range products {
		byName[p.Name] = p.PositiveRate
	}
	if byName["Nuit Etoilee"] != 0.8 {
		t.Errorf("rated product got %v, want the merged 0.8", byName["Nuit Etoilee"])
	}
	// Rows with no feedback data fall back to the default rate.
	if byName["Citrus Morning"] != defaultPositiveRate {
		t.Errorf("unrated product got %v, want %v", byName["Citrus Morning"], defaultPositiveRate)
	}
	if byName["Oud Royale"] != defaultPositiveRate {
		t.Errorf("unrated product got %v, want %v", byName["Oud Royale"], defaultPositiveRate)
	}

	for _, p := range products {
		if p.Name == "Nuit Etoilee" {
			if p.MainAccords != "floral" || p.Season != "Winter" || p.Time != "Night" {
				t.Errorf("columns not mapped: %+v", p)
			}
		}
	}
}

func TestReadCatalog_UnparseableRateFallsBack(t *testing.T) {
	catalogPath := writeTempCSV(t, "catalog.csv",
		"product_title,description\n"+
			"Citrus Morning,bright citrus\n")
	ratesPath := writeTempCSV(t, "rates.csv",
		"product_title,positive_rate\n"+
			"Citrus Morning,oops\n")

	rates, err := readRates(ratesPath)
	if err != nil {
		t.Fatalf("read rates: %v", err)
	}

	products, err := readCatalog(catalogPath, rates)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}
	if products[0].PositiveRate != defaultPositiveRate {
		t.Errorf("PositiveRate = %v, want the default %v", products[0].PositiveRate, defaultPositiveRate)
	}
}

func TestReadCatalog_ShortRowsAndMissingColumns(t *testing.T) {
	// description column absent entirely; missing cells come back empty.
	path := writeTempCSV(t, "catalog.csv",
		"product_title,url,main_accords\n"+
			"Minimal,,\n")

	products, err := readCatalog(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}
	p := products[0]
	if p.Name != "Minimal" || p.Description != "" || p.Gender != "" {
		t.Errorf("product = %+v, want empty strings for absent columns", p)
	}
	if p.PositiveRate != defaultPositiveRate {
		t.Errorf("PositiveRate = %v, want %v", p.PositiveRate, defaultPositiveRate)
	}
}

func TestReadCatalog_RequiresTitleColumn(t *testing.T) {
	path := writeTempCSV(t, "catalog.csv", "name,description\nA,x\n")

	if _, err := readCatalog(path, nil); err == nil {
		t.Fatal("expected error for missing product_title column")
	}
}

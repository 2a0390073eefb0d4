package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"MetroScraper/internal/models"
)

var csvHeader = []string{"id", "name", "link", "regular_price", "promo_price", "brand_name"}

// WriteCSV writes products in the column order of csvHeader.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write([]string{p.ID, p.Name, p.Link, p.RegularPrice, p.PromoPrice, p.BrandName}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns the CSV file name for a city.
func FileName(city string) string {
	// Path separators would escape the output directory.
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(city))
	return safe + ".csv"
}

// ExportCity writes products to <dir>/<city>.csv, replacing any previous file, and returns its path.
func ExportCity(dir, city string, products []models.Product) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName(city))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteCSV(f, products); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, f.Close()
}

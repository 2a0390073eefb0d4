package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"MetroScraper/internal/database"
	"MetroScraper/internal/logger"
	"MetroScraper/internal/models"
	"MetroScraper/internal/scraper"
	"MetroScraper/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	byCity map[string][]models.Product
	fail   map[string]error
	calls  []string
}

func (f *fakeScraper) ScrapeCategory(ctx context.Context, city string) ([]models.Product, error) {
	f.calls = append(f.calls, city)
	if err := f.fail[city]; err != nil {
		return nil, err
	}
	return f.byCity[city], nil
}

type fakeProducer struct {
	mu      sync.Mutex
	batches [][]models.Product
	err     error
}

func (p *fakeProducer) Send(product models.Product) error {
	return p.SendBatch([]models.Product{product})
}

func (p *fakeProducer) SendBatch(products []models.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, products)
	return p.err
}

func (p *fakeProducer) Close() error { return nil }

func newTestApp(t *testing.T, s scraper.Scraper) (*App, *logger.MockLogger) {
	t.Helper()
	dir := t.TempDir()
	repo, err := database.InitDB(filepath.Join(dir, "products.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	cfg := config.Default()
	cfg.Storage.CSVDir = filepath.Join(dir, "csv")

	log := logger.NewMockLogger()
	cleaned := false
	a := &App{
		Config: cfg,
		Repo:   repo,
		Log:    log,
		NewScraper: func() (scraper.Scraper, func(), error) {
			return s, func() { cleaned = true }, nil
		},
	}
	t.Cleanup(func() { assert.True(t, cleaned || s == nil, "scraper cleanup not called") })
	return a, log
}

func product(id, city string) models.Product {
	return models.Product{
		ID:           id,
		Name:         "Шоколад " + id,
		Link:         "https://online.metro-cc.ru/products/" + id,
		RegularPrice: "100₽/шт",
		PromoPrice:   "90₽/шт",
		BrandName:    "Brand",
		City:         city,
	}
}

func TestRunScraper_SavesEveryCity(t *testing.T) {
	fs := &fakeScraper{byCity: map[string][]models.Product{
		"Москва":          {product("1", "Москва"), product("2", "Москва")},
		"Санкт-Петербург": {product("1", "Санкт-Петербург")},
	}}
	a, _ := newTestApp(t, fs)

	require.NoError(t, a.RunScraper(context.Background(), nil))
	assert.Equal(t, []string{"Москва", "Санкт-Петербург"}, fs.calls)

	count, err := a.Repo.CountProducts(context.Background(), models.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRunScraper_ContinuesAfterFailedCity(t *testing.T) {
	fs := &fakeScraper{
		byCity: map[string][]models.Product{"Казань": {product("7", "Казань")}},
		fail:   map[string]error{"Москва": errors.New("address popup never appeared")},
	}
	a, log := newTestApp(t, fs)

	err := a.RunScraper(context.Background(), []string{"Москва", " Казань ", "Москва"})

	assert.ErrorIs(t, err, ErrCitiesFailed)
	assert.Contains(t, err.Error(), "Москва")
	assert.Equal(t, []string{"Москва", "Казань"}, fs.calls)
	require.Len(t, log.Errors(), 1)
	assert.Contains(t, log.Errors()[0], "address popup never appeared")

	cities, err := a.Repo.GetCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Казань"}, cities)
}

func TestRunScraper_StopsOnCancelledContext(t *testing.T) {
	fs := &fakeScraper{}
	a, _ := newTestApp(t, fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.RunScraper(ctx, []string{"Москва"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fs.calls)
}

func TestRunScraper_FactoryError(t *testing.T) {
	a, _ := newTestApp(t, nil)
	a.NewScraper = func() (scraper.Scraper, func(), error) {
		return nil, nil, errors.New("no browser")
	}

	err := a.RunScraper(context.Background(), nil)
	assert.ErrorContains(t, err, "no browser")
}

func TestRunScraper_PublishesWhenProducerSet(t *testing.T) {
	fs := &fakeScraper{byCity: map[string][]models.Product{
		"Москва": {product("1", "Москва")},
	}}
	a, log := newTestApp(t, fs)
	producer := &fakeProducer{err: errors.New("broker down")}
	a.Producer = producer

	require.NoError(t, a.RunScraper(context.Background(), []string{"Москва", "Тверь"}))

	// Empty cities are not published; publish failures do not fail the run.
	require.Len(t, producer.batches, 1)
	assert.Equal(t, "1", producer.batches[0][0].ID)
	require.Len(t, log.Errors(), 1)
	assert.Contains(t, log.Errors()[0], "broker down")
}

func TestExportCSV(t *testing.T) {
	a, _ := newTestApp(t, nil)
	ctx := context.Background()
	_, err := a.Repo.SaveProducts(ctx, []models.Product{product("1", "Москва"), product("2", "Казань")})
	require.NoError(t, err)

	require.NoError(t, a.ExportCSV(ctx, nil))

	for _, name := range []string{"Москва.csv", "Казань.csv"} {
		data, err := os.ReadFile(filepath.Join(a.Config.Storage.CSVDir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "id,name,link,regular_price,promo_price,brand_name")
	}
}

func TestExportCSV_NothingStored(t *testing.T) {
	a, log := newTestApp(t, nil)
	require.NoError(t, a.ExportCSV(context.Background(), nil))
	assert.Contains(t, log.InfoMessages, "No products stored yet. Nothing to export.")
}

func TestRunAutomaticWorkflow_ExportsDespiteFailedCity(t *testing.T) {
	fs := &fakeScraper{
		byCity: map[string][]models.Product{"Москва": {product("1", "Москва")}},
		fail:   map[string]error{"Санкт-Петербург": errors.New("timeout")},
	}
	a, _ := newTestApp(t, fs)

	err := a.RunAutomaticWorkflow(context.Background(), nil)
	assert.ErrorIs(t, err, ErrCitiesFailed)

	_, err = os.Stat(filepath.Join(a.Config.Storage.CSVDir, "Москва.csv"))
	assert.NoError(t, err)
	// Nothing is written for the failed city.
	_, err = os.Stat(filepath.Join(a.Config.Storage.CSVDir, "Санкт-Петербург.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunAutomaticWorkflow_SecondRunDropsVanishedProducts(t *testing.T) {
	fs := &fakeScraper{byCity: map[string][]models.Product{
		"Москва": {product("1", "Москва"), product("2", "Москва")},
	}}
	a, _ := newTestApp(t, fs)
	ctx := context.Background()
	csvPath := filepath.Join(a.Config.Storage.CSVDir, "Москва.csv")

	require.NoError(t, a.RunAutomaticWorkflow(ctx, []string{"Москва"}))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "products/2")

	// Product 2 went out of stock, product 3 appeared before product 1 in the listing.
	fs.byCity["Москва"] = []models.Product{product("3", "Москва"), product("1", "Москва")}
	require.NoError(t, a.RunAutomaticWorkflow(ctx, []string{"Москва"}))

	records, err := csv.NewReader(mustOpen(t, csvPath)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "3", records[1][0])
	assert.Equal(t, "1", records[2][0])

	count, err := a.Repo.CountProducts(ctx, models.ProductFilters{City: "Москва"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunScraper_FailedCityKeepsPreviousStock(t *testing.T) {
	fs := &fakeScraper{byCity: map[string][]models.Product{
		"Москва": {product("1", "Москва")},
	}}
	a, _ := newTestApp(t, fs)
	ctx := context.Background()
	require.NoError(t, a.RunScraper(ctx, []string{"Москва"}))

	fs.fail = map[string]error{"Москва": errors.New("timeout")}
	assert.ErrorIs(t, a.RunScraper(ctx, []string{"Москва"}), ErrCitiesFailed)

	count, err := a.Repo.CountProducts(ctx, models.ProductFilters{City: "Москва"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

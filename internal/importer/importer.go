package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and inserts or updates products by key.
//
// Recognised columns: id, key, name, description, price, quantity, image_url,
// status. Only key, name and price are required.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      logrus.FieldLogger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, log logrus.FieldLogger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger.OrDiscard(log).WithField("component", "importer"),
	}
}

// Run parses all rows and upserts one product per row. It stops at the first
// invalid row and reports how many products were saved before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"key", "name", "price"} {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing required column %q", col)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		saved, err := i.productRepo.Upsert(ctx, p)
		if err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Key, err)
		}
		i.logger.WithFields(logrus.Fields{"key": saved.Key, "id": saved.ID}).Debug("imported product")
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	p := domain.Product{
		ID:          pick(record, index, "id"),
		Key:         pick(record, index, "key"),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "image_url"),
		Status:      domain.ProductActive,
	}
	if p.Key == "" || p.Name == "" {
		return p, fmt.Errorf("key and name are required")
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return p, fmt.Errorf("invalid id for key %q: %s", p.Key, p.ID)
		}
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || !price.IsPositive() {
		return p, fmt.Errorf("invalid price for key %q", p.Key)
	}
	p.Price = price.Round(2)

	if raw := pick(record, index, "quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return p, fmt.Errorf("invalid quantity for key %q: %s", p.Key, raw)
		}
		p.Quantity = qty
	}

	switch status := domain.ProductStatus(pick(record, index, "status")); status {
	case "":
	case domain.ProductActive, domain.ProductSoldOut, domain.ProductInactive:
		p.Status = status
	default:
		return p, fmt.Errorf("invalid status for key %q: %s", p.Key, status)
	}
	if p.Quantity == 0 && p.Status == domain.ProductActive {
		p.Status = domain.ProductSoldOut
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

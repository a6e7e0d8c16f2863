package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopmall/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads store catalog CSV exports and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	storeID     string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, storeID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		storeID:     storeID,
	}
}

type csvRow struct {
	ID     string
	Name   string
	Cents  int64
	Stock  int
	Listed bool
}

// Run parses CSV rows and upserts one product per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.Cents <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for name %q", row.Name)
	}
	if row.ID != "" && len(row.ID) != 36 {
		return fmt.Errorf("invalid id for name %q: %s", row.Name, row.ID)
	}

	p := domain.Product{
		ID:         row.ID,
		StoreID:    i.storeID,
		Name:       row.Name,
		PriceCents: row.Cents,
		Stock:      row.Stock,
		Listed:     row.Listed,
	}

	_, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	name := pick(record, index, "name")
	centStr := pick(record, index, "price_cents")
	stockStr := pick(record, index, "stock")
	listedStr := pick(record, index, "listed")

	if name == "" && centStr == "" {
		return nil, nil
	}

	var cents int64
	if centStr != "" {
		var err error
		cents, err = strconv.ParseInt(centStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse price for %q: %w", name, err)
		}
	}

	var stock int
	if stockStr != "" {
		var err error
		stock, err = strconv.Atoi(stockStr)
		if err != nil {
			return nil, fmt.Errorf("parse stock for %q: %w", name, err)
		}
	}

	listed := true
	if listedStr != "" {
		var err error
		listed, err = strconv.ParseBool(listedStr)
		if err != nil {
			return nil, fmt.Errorf("parse listed for %q: %w", name, err)
		}
	}

	return &csvRow{
		ID:     pick(record, index, "id"),
		Name:   name,
		Cents:  cents,
		Stock:  stock,
		Listed: listed,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

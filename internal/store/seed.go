package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSV seeding for the reference directory. Column layouts follow the
// crunchbase-style exports the directory was originally built from:
//
//	companies.csv:    id,name,permalink,domain,category_code,funding_total_usd
//	acquisitions.csv: acquirer_id,acquired_id,price_amount,price_currency_code,acquired_at
//
// A header row is detected by a non-numeric value in the last column and
// skipped. Malformed numeric cells read as 0 rather than aborting the load.

func (s *Store) SeedCompaniesCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open companies csv: %w", err)
	}
	defer f.Close()
	return s.seedCompanies(ctx, f)
}

func (s *Store) seedCompanies(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	count := 0
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read companies csv: %w", err)
		}
		if first {
			first = false
			if looksLikeHeader(rec[5]) {
				continue
			}
		}
		c := Company{
			ID:              strings.TrimSpace(rec[0]),
			Name:            strings.TrimSpace(rec[1]),
			Permalink:       strings.TrimSpace(rec[2]),
			Domain:          strings.TrimSpace(rec[3]),
			CategoryCode:    strings.TrimSpace(rec[4]),
			FundingTotalUSD: parseFloatCell(rec[5]),
		}
		if c.ID == "" || c.Name == "" {
			continue
		}
		if err := s.UpsertCompany(ctx, c); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Store) SeedAcquisitionsCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open acquisitions csv: %w", err)
	}
	defer f.Close()
	return s.seedAcquisitions(ctx, f)
}

func (s *Store) seedAcquisitions(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	count := 0
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read acquisitions csv: %w", err)
		}
		if first {
			first = false
			if looksLikeHeader(rec[2]) {
				continue
			}
		}
		a := Acquisition{
			AcquirerID:        strings.TrimSpace(rec[0]),
			AcquiredID:        strings.TrimSpace(rec[1]),
			PriceAmount:       parseFloatCell(rec[2]),
			PriceCurrencyCode: strings.TrimSpace(rec[3]),
			AcquiredAt:        strings.TrimSpace(rec[4]),
		}
		if a.AcquirerID == "" || a.AcquiredID == "" {
			continue
		}
		if err := s.InsertAcquisition(ctx, a); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func looksLikeHeader(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return false
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err != nil
}

func parseFloatCell(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0
	}
	return v
}

package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"supplychain-analytics/internal/model"
)

// CSVSource reads both datasets from flat CSV files, the backend the
// simulated warehouse exports ship as.
type CSVSource struct {
	logisticsPath string
	inventoryPath string
	log           zerolog.Logger
}

func NewCSVSource(logisticsPath, inventoryPath string, log zerolog.Logger) *CSVSource {
	return &CSVSource{
		logisticsPath: logisticsPath,
		inventoryPath: inventoryPath,
		log:           log.With().Str("source", "csv").Logger(),
	}
}

func (s *CSVSource) Logistics(ctx context.Context) ([]model.LogisticsRecord, int, error) {
	var records []model.LogisticsRecord
	dropped, err := s.readFile(ctx, s.logisticsPath, func(r rowReader) error {
		rec, err := decodeLogisticsRow(r)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return records, dropped, nil
}

func (s *CSVSource) Inventory(ctx context.Context) ([]model.InventoryRecord, int, error) {
	var records []model.InventoryRecord
	dropped, err := s.readFile(ctx, s.inventoryPath, func(r rowReader) error {
		rec, err := decodeInventoryRow(r)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return records, dropped, nil
}

// Version is the newer mtime of the two files, so replacing either file
// invalidates cached results on the next query.
func (s *CSVSource) Version(ctx context.Context) (string, error) {
	var latest int64
	for _, path := range []string{s.logisticsPath, s.inventoryPath} {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %v", ErrSourceUnavailable, path, err)
		}
		if mtime := info.ModTime().UnixNano(); mtime > latest {
			latest = mtime
		}
	}
	return strconv.FormatInt(latest, 10), nil
}

func (s *CSVSource) readFile(ctx context.Context, path string, decode func(rowReader) error) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
	}
	defer file.Close()
	return readCSV(ctx, file, path, s.log, decode)
}

// readCSV decodes one CSV stream row by row, skipping and counting rows
// that fail validation. S3-hosted objects share it.
func readCSV(ctx context.Context, reader io.Reader, name string, log zerolog.Logger, decode func(rowReader) error) (int, error) {
	cr := csv.NewReader(reader)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: read header of %s: %v", ErrSourceUnavailable, name, err)
	}
	index := newHeaderIndex(header)

	dropped := 0
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return dropped, err
		}
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			dropped++
			log.Warn().Err(err).Str("file", name).Int("line", line).Msg("dropping unreadable row")
			continue
		}
		if err := decode(rowReader{index: index, fields: fields}); err != nil {
			dropped++
			if err != errSkipRow {
				log.Warn().Err(err).Str("file", name).Int("line", line).Msg("dropping malformed row")
			}
		}
	}
	return dropped, nil
}

package cleaner

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/aus-address-cleaner/internal/config"
	"github.com/aus-address-cleaner/internal/schema"
)

// resultColumns is the output column order.
var resultColumns = []string{
	"record_id",
	"unit_number",
	"street_number",
	"street_name",
	"street_type",
	"suburb",
	"state",
	"postcode",
	"confidence_level",
	"is_international",
	"is_invalid_address",
	"inconsistency_flags",
	"unparsed_components",
	"raw_street_address",
	"raw_suburb",
	"raw_state",
	"raw_postcode",
}

// CleanCSV cleans every address in the input CSV and writes the
// results to the output path.
func (c *Cleaner) CleanCSV(ctx context.Context, inputPath, outputPath, schemaName string) ([]Result, BatchStats, error) {
	log.Printf("reading addresses from %s", inputPath)
	records, header, err := ReadRecords(inputPath, schemaName, c.cfg)
	if err != nil {
		return nil, BatchStats{}, err
	}

	results, stats := c.CleanBatch(ctx, records)

	log.Printf("writing cleaned addresses to %s", outputPath)
	if err := WriteResults(outputPath, results, records, header, c.cfg); err != nil {
		return nil, stats, err
	}

	return results, stats, nil
}

// ReadRecords loads input addresses from a CSV file using the named
// schema to locate the address columns. An empty schemaName detects
// the schema from the header. The input header is returned alongside
// the records so original columns can be preserved on output.
func ReadRecords(path, schemaName string, cfg *config.Config) ([]Record, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	mapper := schema.NewMapper(cfg)
	if schemaName == "" {
		schemaName = mapper.Detect(header)
		log.Printf("detected schema %q from input header", schemaName)
	}

	mapping, err := mapper.MapColumns(header, schemaName)
	if err != nil {
		return nil, nil, err
	}

	var records []Record
	number := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) && cfg.Processing.ContinueOnError {
				log.Printf("row %d has %d fields, expected %d", number+1, len(row), len(header))
			} else {
				return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
			}
		}

		number++
		rec := Record{
			RecordID:      mapping.RecordID(row, number),
			StreetAddress: mapping.Value(row, schema.FieldStreetAddress),
			Suburb:        mapping.Value(row, schema.FieldSuburb),
			State:         mapping.Value(row, schema.FieldState),
			Postcode:      mapping.Value(row, schema.FieldPostcode),
		}

		if cfg.Processing.PreserveOriginalColumns {
			rec.Original = make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					rec.Original[col] = row[i]
				}
			}
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("input file %s contains no records", path)
	}

	return records, header, nil
}

// WriteResults writes cleaned results to a CSV file. Input columns that
// do not collide with a result column are carried over under an
// original_ prefix when preservation is configured.
func WriteResults(path string, results []Result, records []Record, header []string, cfg *config.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	reserved := make(map[string]bool, len(resultColumns))
	for _, col := range resultColumns {
		reserved[col] = true
	}

	var extra []string
	if cfg.Processing.PreserveOriginalColumns {
		for _, col := range header {
			if !reserved[col] {
				extra = append(extra, col)
			}
		}
	}

	out := make([]string, 0, len(resultColumns)+len(extra))
	out = append(out, resultColumns...)
	for _, col := range extra {
		out = append(out, "original_"+col)
	}
	if err := writer.Write(out); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, res := range results {
		row := resultRow(res)
		for _, col := range extra {
			value := ""
			if i < len(records) && records[i].Original != nil {
				value = records[i].Original[col]
			}
			row = append(row, value)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return nil
}

func resultRow(res Result) []string {
	return []string{
		res.RecordID,
		res.UnitNumber,
		res.StreetNumber,
		res.StreetName,
		res.StreetType,
		res.Suburb,
		res.State,
		res.Postcode,
		strconv.Itoa(res.ConfidenceLevel),
		strconv.FormatBool(res.IsInternational),
		strconv.FormatBool(res.IsInvalidAddress),
		res.InconsistencyFlags,
		res.UnparsedComponents,
		res.RawStreetAddress,
		res.RawSuburb,
		res.RawState,
		res.RawPostcode,
	}
}

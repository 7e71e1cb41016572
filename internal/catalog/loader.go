// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Expected CSV header columns. Order in the file does not matter; the
// loader resolves columns by name.
const (
	columnID            = "imdb_title_id"
	columnTitle         = "title"
	columnOriginalTitle = "original_title"
	columnYear          = "year"
	columnGenre         = "genre"
	columnCountry       = "country"
	columnDescription   = "description"
	columnVoteAverage   = "avg_vote"
	columnVotes         = "votes"
)

// LoadOptions controls CSV catalog loading.
type LoadOptions struct {
	// MaxRows caps the number of ingested rows. Zero means unlimited.
	MaxRows int
}

// LoadFile reads the catalog CSV at path and builds a snapshot.
func LoadFile(path string, extractor TagExtractor, opts LoadOptions) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	cat, err := Load(f, extractor, opts)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

// Load reads catalog rows from CSV data and builds a snapshot.
// The first record must be a header naming the expected columns.
func Load(r io.Reader, extractor TagExtractor, opts LoadOptions) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidInput, err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []RawMovieRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, line, err)
		}

		row, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidInput, line, err)
		}
		rows = append(rows, row)

		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			break
		}
	}

	return New(rows, extractor)
}

// columnIndex maps expected column names to their position in the header.
type columnIndex map[string]int

// required columns must be present in the header; the rest default empty.
var requiredColumns = []string{columnID, columnOriginalTitle, columnDescription}

func resolveColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidInput, name)
		}
	}
	return cols, nil
}

// field returns the named column of a record, or empty when absent.
func (c columnIndex) field(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, cols columnIndex) (RawMovieRow, error) {
	row := RawMovieRow{
		ID:            cols.field(record, columnID),
		Title:         cols.field(record, columnTitle),
		OriginalTitle: cols.field(record, columnOriginalTitle),
		Year:          cols.field(record, columnYear),
		Genre:         cols.field(record, columnGenre),
		Country:       cols.field(record, columnCountry),
		Description:   cols.field(record, columnDescription),
	}

	if vote := cols.field(record, columnVoteAverage); vote != "" {
		v, err := strconv.ParseFloat(vote, 64)
		if err != nil {
			return RawMovieRow{}, fmt.Errorf("bad %s %q", columnVoteAverage, vote)
		}
		row.VoteAverage = v
	}
	if votes := cols.field(record, columnVotes); votes != "" {
		n, err := strconv.Atoi(votes)
		if err != nil {
			return RawMovieRow{}, fmt.Errorf("bad %s %q", columnVotes, votes)
		}
		row.Votes = n
	}

	return row, nil
}

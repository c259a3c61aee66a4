// Package gnaf matches parsed addresses against a G-NAF (Geocoded
// National Address File) PostgreSQL database and applies corrections
// from high-quality matches back onto the parsed components.
package gnaf

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/aus-address-cleaner/internal/address"
	"github.com/aus-address-cleaner/internal/config"
	"github.com/aus-address-cleaner/internal/similarity"
)

// Match is one G-NAF address row.
type Match struct {
	StreetNumber string `db:"street_number" json:"street_number"`
	StreetName   string `db:"street_name" json:"street_name"`
	StreetType   string `db:"street_type" json:"street_type"`
	Suburb       string `db:"suburb" json:"suburb"`
	State        string `db:"state" json:"state"`
	Postcode     string `db:"postcode" json:"postcode"`
}

const matchColumns = `
	COALESCE(street_number, '') AS street_number,
	COALESCE(street_name, '') AS street_name,
	COALESCE(street_type, '') AS street_type,
	COALESCE(locality_name, '') AS suburb,
	COALESCE(state_abbreviation, '') AS state,
	COALESCE(postcode, '') AS postcode`

const exactMatchQuery = `
	SELECT` + matchColumns + `
	FROM gnaf.address_view
	WHERE UPPER(street_name) = UPPER($1)
	AND UPPER(locality_name) = UPPER($2)
	AND state_abbreviation = $3
	AND ($4 = '' OR postcode = $4)
	AND ($5 = '' OR street_number = $5)
	AND ($6 = '' OR UPPER(street_type) = UPPER($6))
	LIMIT 1`

const approximateMatchQuery = `
	SELECT` + matchColumns + `
	FROM gnaf.address_view
	WHERE state_abbreviation = $1
	AND ($2 = '' OR postcode = $2)
	AND UPPER(locality_name) LIKE UPPER($3)
	LIMIT 10`

// Matcher queries G-NAF for parsed addresses. A Matcher with no
// reachable database stays usable; every lookup just reports a
// disabled or error flag instead of matching.
type Matcher struct {
	db                 *sqlx.DB
	enabled            bool
	allowApproximate   bool
	minAcceptable      float64
	minCorrectionScore float64
	correctableFields  []string
}

// New builds a Matcher from configuration. connectionURL overrides the
// configured URL when non-empty. Connection failures disable matching
// rather than failing construction.
func New(cfg *config.Config, connectionURL string) *Matcher {
	url := connectionURL
	if url == "" {
		url = cfg.GNAF.ConnectionURL
	}

	m := &Matcher{
		enabled:            cfg.GNAF.Enabled && url != "",
		allowApproximate:   cfg.GNAF.AllowApproximateMatch,
		minAcceptable:      cfg.GNAF.MatchingThresholds.MinAcceptableScore,
		minCorrectionScore: cfg.GNAF.Corrections.MinScoreForCorrection,
		correctableFields:  cfg.GNAF.Corrections.CorrectableFields,
	}

	if cfg.GNAF.Enabled && url == "" {
		log.Println("G-NAF is enabled but no connection URL provided, matching disabled")
		return m
	}

	if m.enabled {
		db, err := connect(url)
		if err != nil {
			log.Printf("failed to connect to G-NAF database: %v", err)
			m.enabled = false
			return m
		}
		m.db = db
	}

	return m
}

func connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	return db, nil
}

// Enabled reports whether lookups will actually query the database.
func (m *Matcher) Enabled() bool {
	return m.enabled
}

// Ping checks the database connection.
func (m *Matcher) Ping(ctx context.Context) error {
	if m.db == nil {
		return errors.New("no G-NAF database connection")
	}
	return m.db.PingContext(ctx)
}

// Count reports how many addresses the G-NAF view exposes.
func (m *Matcher) Count(ctx context.Context) (int, error) {
	if m.db == nil {
		return 0, errors.New("no G-NAF database connection")
	}

	var count int
	err := m.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM gnaf.address_view")
	return count, err
}

// Close releases the database connection.
func (m *Matcher) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Match looks the components up in G-NAF. It returns the best match,
// a 0.0-1.0 quality score, and flags describing the outcome. Matching
// problems surface as flags, never as errors.
func (m *Matcher) Match(ctx context.Context, c address.Components) (*Match, float64, []string) {
	if !m.enabled {
		return nil, 0.0, []string{address.FlagGNAFDisabled}
	}
	if m.db == nil {
		return nil, 0.0, []string{address.FlagGNAFConnectionError}
	}

	if c.StreetName == "" || c.Suburb == "" {
		return nil, 0.0, []string{address.FlagInsufficientGNAFData}
	}

	exact, err := m.exactMatch(ctx, c)
	if err != nil {
		log.Printf("G-NAF exact match query failed: %v", err)
		return nil, 0.0, []string{address.FlagGNAFQueryError}
	}
	if exact != nil {
		return exact, 1.0, []string{address.FlagGNAFExactMatch}
	}

	if m.allowApproximate {
		approx, score, err := m.approximateMatch(ctx, c)
		if err != nil {
			log.Printf("G-NAF approximate match query failed: %v", err)
			return nil, 0.0, []string{address.FlagGNAFQueryError}
		}
		if approx != nil && score >= m.minAcceptable {
			return approx, score, []string{address.FlagGNAFApproximateMatch}
		}
	}

	return nil, 0.0, []string{address.FlagNoGNAFMatch}
}

func (m *Matcher) exactMatch(ctx context.Context, c address.Components) (*Match, error) {
	var match Match

	err := m.db.GetContext(ctx, &match, exactMatchQuery,
		c.StreetName, c.Suburb, c.State, c.Postcode, c.StreetNumber, c.StreetType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &match, nil
}

// approximateMatch pulls locality candidates and ranks them by a
// weighted street name and suburb similarity.
func (m *Matcher) approximateMatch(ctx context.Context, c address.Components) (*Match, float64, error) {
	var rows []Match

	err := m.db.SelectContext(ctx, &rows, approximateMatchQuery,
		c.State, c.Postcode, "%"+c.Suburb+"%")
	if err != nil {
		return nil, 0.0, err
	}
	if len(rows) == 0 {
		return nil, 0.0, nil
	}

	var best *Match
	bestScore := 0.0

	for i := range rows {
		score := compositeScore(c, rows[i])
		if score > bestScore {
			bestScore = score
			best = &rows[i]
		}
	}

	return best, bestScore, nil
}

// compositeScore weights street name similarity over suburb similarity.
func compositeScore(c address.Components, row Match) float64 {
	streetSim := float64(similarity.Ratio(
		strings.ToUpper(c.StreetName),
		strings.ToUpper(row.StreetName),
	)) / 100.0

	suburbSim := float64(similarity.Ratio(
		strings.ToUpper(c.Suburb),
		strings.ToUpper(row.Suburb),
	)) / 100.0

	return streetSim*0.6 + suburbSim*0.4
}

// ApplyCorrections overwrites correctable fields with matched values
// when the match is trustworthy, returning the corrected components
// and a tag for each field whose value actually changed.
func (m *Matcher) ApplyCorrections(c address.Components, match *Match, matchScore float64) (address.Components, []string) {
	if match == nil {
		return c, nil
	}

	if matchScore < m.minCorrectionScore {
		return c, nil
	}

	var corrections []string

	for _, field := range m.correctableFields {
		matched := matchField(match, field)
		if matched == "" {
			continue
		}

		if *componentField(&c, field) != matched {
			corrections = append(corrections, strings.ToUpper(field)+"_CORRECTED")
		}
		*componentField(&c, field) = matched
	}

	return c, corrections
}

func matchField(m *Match, field string) string {
	switch field {
	case "street_number":
		return m.StreetNumber
	case "street_name":
		return m.StreetName
	case "street_type":
		return m.StreetType
	case "suburb":
		return m.Suburb
	case "state":
		return m.State
	case "postcode":
		return m.Postcode
	}
	return ""
}

func componentField(c *address.Components, field string) *string {
	switch field {
	case "street_number":
		return &c.StreetNumber
	case "street_name":
		return &c.StreetName
	case "street_type":
		return &c.StreetType
	case "suburb":
		return &c.Suburb
	case "state":
		return &c.State
	case "postcode":
		return &c.Postcode
	}

	var zero string
	return &zero
}

package feed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/b2bportal/backend/internal/application/reconcile"
	"github.com/b2bportal/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// Supplier feeds arrive as CSV exports from wildly different systems, so
// every logical column is matched against an ordered alias list; the first
// alias present in the header wins. Alias matching is case-insensitive and
// ignores surrounding whitespace.
var (
	brandAliases   = []string{"brand", "make", "manufacturer", "vendor"}
	articleAliases = []string{"article", "id", "code", "sku", "part_number", "partnumber", "oem"}
	nameAliases    = []string{"name", "title", "description"}
	stockAliases   = []string{"stock", "amount", "qty", "quantity", "availability"}
	costAliases    = []string{"price", "purchase", "cost"}

	tierAliases = map[pricing.PriceTier][]string{
		pricing.TierRetail:    {"retail", "retail_price"},
		pricing.TierPrice1:    {"price_1", "price1"},
		pricing.TierPrice2:    {"price_2", "price2"},
		pricing.TierPrice3:    {"price_3", "price3"},
		pricing.TierWholesale: {"wholesale", "wholesale_price"},
	}
)

// Parser turns a supplier's CSV feed into logical rows for the
// reconciliation engine. It strips a UTF-8 BOM, validates the encoding and
// resolves header aliases before any data row is read.
type Parser struct {
	delimiter rune
	reader    *csv.Reader
	columns   columnMap
	rowNum    int
}

// ParserOption is a functional option for Parser configuration
type ParserOption func(*Parser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *Parser) {
		p.delimiter = d
	}
}

// columnMap holds the resolved index of each logical column; -1 means the
// feed does not carry it.
type columnMap struct {
	brand   int
	article int
	name    int
	stock   int
	cost    int
	tiers   map[pricing.PriceTier]int
}

// NewParser creates a parser over a feed stream and reads its header.
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	p := &Parser{delimiter: ','}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)

	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1

	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// validateUTF8 checks that the leading chunk of the feed is valid UTF-8.
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read feed for encoding validation: %w", err)
	}
	// A multi-byte rune may be cut at the chunk boundary; trim up to three
	// trailing bytes before judging.
	trimmed := content
	for i := 0; i < 3 && len(trimmed) > 0 && !utf8.Valid(trimmed); i++ {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if !utf8.Valid(trimmed) {
		return ErrInvalidEncoding
	}
	return nil
}

// parseHeader reads the header row and resolves every logical column
// through its alias list.
func (p *Parser) parseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read feed header: %w", err)
	}
	p.rowNum = 1

	index := make(map[string]int, len(record))
	for i, h := range record {
		normalized := strings.ToLower(strings.TrimSpace(h))
		if _, taken := index[normalized]; !taken {
			index[normalized] = i
		}
	}

	resolve := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	p.columns = columnMap{
		brand:   resolve(brandAliases),
		article: resolve(articleAliases),
		name:    resolve(nameAliases),
		stock:   resolve(stockAliases),
		cost:    resolve(costAliases),
		tiers:   make(map[pricing.PriceTier]int, len(tierAliases)),
	}
	for tier, aliases := range tierAliases {
		p.columns.tiers[tier] = resolve(aliases)
	}

	if p.columns.brand < 0 && p.columns.article < 0 {
		return ErrNoUsableColumns
	}
	return nil
}

// ParseAll reads every data row. Rows that cannot be parsed are reported
// as RowErrors and skipped; the parse itself fails only on IO or framing
// problems.
func (p *Parser) ParseAll() ([]reconcile.FeedRow, []RowError, error) {
	var (
		rows     []reconcile.FeedRow
		rowErrs  []RowError
		nonEmpty bool
	)

	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			break
		}
		p.rowNum++
		if err != nil {
			return rows, rowErrs, fmt.Errorf("error reading feed row %d: %w", p.rowNum, err)
		}
		if recordEmpty(record) {
			continue
		}
		nonEmpty = true

		row, rowErr := p.parseRow(record)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		rows = append(rows, *row)
	}

	if !nonEmpty && len(rows) == 0 {
		return nil, rowErrs, ErrEmptyFile
	}
	return rows, rowErrs, nil
}

// parseRow maps one CSV record onto a logical feed row.
func (p *Parser) parseRow(record []string) (*reconcile.FeedRow, *RowError) {
	row := reconcile.FeedRow{
		Brand:   p.field(record, p.columns.brand),
		Article: p.field(record, p.columns.article),
		Name:    p.field(record, p.columns.name),
	}

	if raw := p.field(record, p.columns.stock); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &RowError{Row: p.rowNum, Column: "stock", Message: "not an integer", Value: raw}
		}
		row.Stock = stock
	}

	if raw := p.field(record, p.columns.cost); raw != "" {
		cost, err := parsePrice(raw)
		if err != nil {
			return nil, &RowError{Row: p.rowNum, Column: "price", Message: "not a number", Value: raw}
		}
		row.Cost = &cost
	}

	prices := make(pricing.PriceTable)
	for tier, idx := range p.columns.tiers {
		raw := p.field(record, idx)
		if raw == "" {
			continue
		}
		price, err := parsePrice(raw)
		if err != nil {
			return nil, &RowError{Row: p.rowNum, Column: tier.String(), Message: "not a number", Value: raw}
		}
		prices[tier] = price
	}
	if len(prices) > 0 {
		row.PublicPrices = prices
	}

	return &row, nil
}

// field reads a column by resolved index, tolerating short records.
func (p *Parser) field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parsePrice accepts both dot and comma decimal separators.
func parsePrice(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.ReplaceAll(raw, " ", ""), ",", ".")
	return decimal.NewFromString(normalized)
}

func recordEmpty(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

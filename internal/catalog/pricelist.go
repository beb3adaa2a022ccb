package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

var ErrUnknownLayout = fmt.Errorf("price list header not recognised: %w", apperr.ErrValidation)

// layout describes the column names of one supplier export format.
type layout struct {
	Name     string
	CodeCol  string
	DescCol  string
	UnitCol  string // optional
	PriceCol string
}

// layouts are tried in order; the first whose required columns all appear
// in a single row wins and that row is taken as the header.
var layouts = []layout{
	{Name: "tabela", CodeCol: "código", DescCol: "descrição", UnitCol: "unidade", PriceCol: "preço"},
	{Name: "fornecedor", CodeCol: "cod.", DescCol: "produto", UnitCol: "un", PriceCol: "valor unit."},
	{Name: "sku", CodeCol: "sku", DescCol: "nome", PriceCol: "preço unitário"},
}

// PriceRow is one parsed price list line.
type PriceRow struct {
	Code        string
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
}

type columns struct {
	code, desc, unit, price int
}

func (c columns) width() int {
	return max(c.code, c.desc, c.unit, c.price) + 1
}

func matchLayout(header []string) (layout, columns, bool) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, l := range layouts {
		code, okCode := idx[l.CodeCol]
		desc, okDesc := idx[l.DescCol]
		price, okPrice := idx[l.PriceCol]

		if !okCode || !okDesc || !okPrice {
			continue
		}

		unit := -1
		if i, ok := idx[l.UnitCol]; ok && l.UnitCol != "" {
			unit = i
		}

		return l, columns{code: code, desc: desc, unit: unit, price: price}, true
	}

	return layout{}, columns{}, false
}

// ParsePriceList reads a semicolon separated price list. Preamble lines before
// the header and rows with an empty code or unparsable price are skipped.
func ParsePriceList(r io.Reader) ([]PriceRow, string, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, "", apperr.Invalid("file", fmt.Sprintf("reading price list: %v", err))
	}

	var (
		found bool
		lay   layout
		cols  columns
		rows  []PriceRow
	)

	for _, rec := range records {
		if !found {
			lay, cols, found = matchLayout(rec)
			continue
		}

		if len(rec) < cols.width() {
			continue
		}

		code := strings.TrimSpace(rec[cols.code])
		if code == "" {
			continue
		}

		price, err := ParseBRL(rec[cols.price])
		if err != nil || price.IsNegative() {
			continue
		}

		row := PriceRow{
			Code:        code,
			Description: strings.TrimSpace(rec[cols.desc]),
			UnitPrice:   price,
		}
		if cols.unit >= 0 {
			row.Unit = strings.TrimSpace(rec[cols.unit])
		}

		rows = append(rows, row)
	}

	if !found {
		return nil, "", ErrUnknownLayout
	}

	return rows, lay.Name, nil
}

// ParseBRL parses a Brazilian formatted amount such as "R$ 1.234,56".
func ParseBRL(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.TrimSpace(clean)
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return d.Round(2), nil
}

package catalog_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
)

func TestParsePriceList_Tabela(t *testing.T) {
	csv := `Tabela de preços - Distribuidora Sul
Validade;31/01/2024

Código;Descrição;Unidade;Preço
001;Arroz Tipo 1 5kg;FD;"23,90"
002;Feijão Carioca 1kg;UN;8,50
;linha sem código;UN;1,00
003;Óleo de Soja 900ml;CX;1.234,56
004;Produto sem preço;UN;consultar
`

	rows, profile, err := catalog.ParsePriceList(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "tabela", profile)
	require.Len(t, rows, 3)

	assert.Equal(t, "001", rows[0].Code)
	assert.Equal(t, "Arroz Tipo 1 5kg", rows[0].Description)
	assert.Equal(t, "FD", rows[0].Unit)
	assert.True(t, decimal.RequireFromString("23.90").Equal(rows[0].UnitPrice))

	assert.True(t, decimal.RequireFromString("8.50").Equal(rows[1].UnitPrice))
	assert.True(t, decimal.RequireFromString("1234.56").Equal(rows[2].UnitPrice))
}

func TestParsePriceList_Fornecedor(t *testing.T) {
	csv := `Cod.;Produto;Un;Valor Unit.
A-10;Leite Integral 1L;CX;R$ 4,79
`

	rows, profile, err := catalog.ParsePriceList(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "fornecedor", profile)
	require.Len(t, rows, 1)
	assert.Equal(t, "A-10", rows[0].Code)
	assert.True(t, decimal.RequireFromString("4.79").Equal(rows[0].UnitPrice))
}

func TestParsePriceList_UnknownLayout(t *testing.T) {
	_, _, err := catalog.ParsePriceList(strings.NewReader("a;b;c\n1;2;3\n"))
	assert.ErrorIs(t, err, catalog.ErrUnknownLayout)
}

func TestParseBRL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10,00", want: "10"},
		{in: " R$ 1.234,56 ", want: "1234.56"},
		{in: "-3,5", want: "-3.5"},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := catalog.ParseBRL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

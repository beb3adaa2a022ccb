package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    catalog.CreateParams
		setupMock func(m *catalog.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: catalog.CreateParams{
				Code:        " 001 ",
				Description: "Arroz 5kg",
				Unit:        "FD",
				UnitPrice:   decimal.RequireFromString("23.90"),
			},
			setupMock: func(m *catalog.MockRepository) {
				m.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *catalog.Product) error {
						assert.Equal(t, "001", p.Code)
						assert.True(t, p.Active)
						p.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:    "MissingCode",
			params:  catalog.CreateParams{Description: "Arroz"},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "NegativePrice",
			params: catalog.CreateParams{
				Code:        "002",
				Description: "Feijão",
				UnitPrice:   decimal.NewFromInt(-1),
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := catalog.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := catalog.NewService(repo).Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Lookup_Inactive(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)

	id := uuid.New()
	repo.EXPECT().GetProduct(gomock.Any(), id).Return(&catalog.Product{ID: id, Code: "009", Active: false}, nil)

	_, err := catalog.NewService(repo).Lookup(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Import(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)

	csv := "Código;Descrição;Unidade;Preço\n001;Arroz;FD;23,90\n002;Feijão;UN;8,50\n"

	repo.EXPECT().UpsertProducts(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, ps []*catalog.Product) (int, error) {
			assert.Equal(t, "001", ps[0].Code)
			assert.True(t, decimal.RequireFromString("8.50").Equal(ps[1].UnitPrice))

			return 1, nil
		})

	res, err := catalog.NewService(repo).Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "tabela", res.Profile)
	assert.Equal(t, "UTF-8", res.Charset)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
}

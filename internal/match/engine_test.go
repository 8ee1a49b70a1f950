package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofisler/mutabakat/internal/model"
)

func testRoster() []model.Customer {
	return []model.Customer{
		{ID: 1, Name: "Mehmet Yılmaz", Phone: "+90 532 123 45 67"},
		{ID: 2, Name: "Acme Ofis Çözümleri Ltd. Şti.", TaxID: "1234567890"},
		{ID: 3, Name: "Deniz Ticaret A.Ş."},
	}
}

func incoming(id int64, description, sender string) model.BankTransaction {
	return model.BankTransaction{
		ID:          id,
		Description: description,
		Sender:      sender,
		Amount:      decimal.NewFromInt(1000),
		Direction:   model.DirectionIncoming,
		Status:      model.StatusUnmatched,
	}
}

func TestEngine_Candidates(t *testing.T) {
	engine := NewEngine(testRoster())

	tests := []struct {
		name         string
		txn          model.BankTransaction
		wantCustomer int64
		wantScore    int
		wantAuto     bool
	}{
		{
			name:         "exact name in description",
			txn:          incoming(1, "EFT GELEN MEHMET YILMAZ kira odemesi", ""),
			wantCustomer: 1,
			wantScore:    90,
			wantAuto:     true,
		},
		{
			name:         "exact name via folded sender",
			txn:          incoming(2, "HAVALE", "mehmet yılmaz"),
			wantCustomer: 1,
			wantScore:    90,
			wantAuto:     true,
		},
		{
			name:         "all tokens present out of order",
			txn:          incoming(3, "YILMAZ MEHMET tarafindan gonderilen", ""),
			wantCustomer: 1,
			wantScore:    75,
			wantAuto:     true,
		},
		{
			name:         "partial tokens suggest only",
			txn:          incoming(4, "ACME OFIS LTD subat faturasi", ""),
			wantCustomer: 2,
			wantScore:    40,
			wantAuto:     false,
		},
		{
			name:         "tax id beats weaker name overlap",
			txn:          incoming(5, "VKN 1234567890 odeme", ""),
			wantCustomer: 2,
			wantScore:    95,
			wantAuto:     true,
		},
		{
			name:         "phone tail in description",
			txn:          incoming(6, "FAST 05321234567 tahsilat", ""),
			wantCustomer: 1,
			wantScore:    70,
			wantAuto:     false,
		},
		{
			name:         "name and phone stack",
			txn:          incoming(7, "MEHMET YILMAZ 05321234567", ""),
			wantCustomer: 1,
			wantScore:    160,
			wantAuto:     true,
		},
		{
			name: "no roster hit",
			txn:  incoming(8, "ATM PARA YATIRMA", ""),
		},
		{
			name: "outgoing never matched",
			txn: model.BankTransaction{
				ID:          9,
				Description: "MEHMET YILMAZ iade",
				Amount:      decimal.NewFromInt(500),
				Direction:   model.DirectionOutgoing,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := engine.Candidates([]model.BankTransaction{tt.txn})
			require.Len(t, candidates, 1)
			got := candidates[0]

			assert.Equal(t, tt.txn.ID, got.Transaction.ID)
			if tt.wantCustomer == 0 {
				assert.Nil(t, got.Customer)
				assert.Zero(t, got.Score)
				return
			}
			require.NotNil(t, got.Customer)
			assert.Equal(t, tt.wantCustomer, got.Customer.ID)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantAuto, got.AutoAccept())
		})
	}
}

func TestEngine_TieBreakLowestID(t *testing.T) {
	roster := []model.Customer{
		{ID: 7, Name: "Ayşe Kaya"},
		{ID: 3, Name: "Ayşe Kaya"},
	}
	engine := NewEngine(roster)

	candidates := engine.Candidates([]model.BankTransaction{
		incoming(1, "HAVALE GELEN AYSE KAYA", ""),
	})
	require.Len(t, candidates, 1)
	require.NotNil(t, candidates[0].Customer)
	assert.Equal(t, int64(3), candidates[0].Customer.ID)
	assert.Equal(t, 90, candidates[0].Score)
}

func TestEngine_ShortTaxIDIgnored(t *testing.T) {
	engine := NewEngine([]model.Customer{{ID: 1, Name: "Nadir Isim", TaxID: "12345"}})

	candidates := engine.Candidates([]model.BankTransaction{
		incoming(1, "odeme 12345", ""),
	})
	require.Len(t, candidates, 1)
	assert.Nil(t, candidates[0].Customer)
}

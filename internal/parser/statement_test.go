package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ofisler/mutabakat/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStatementStrategy_Parse(t *testing.T) {
	tests := []struct {
		name       string
		strategy   Strategy
		file       string
		content    string
		wantDrafts int
		wantErr    bool
	}{
		{
			name:     "garanti with preamble and credit debit columns",
			strategy: NewGaranti(),
			file:     "garanti.csv",
			content: "Garanti BBVA Hesap Hareketleri\n" +
				"Hesap No;123456\n" +
				";;;;\n" +
				"Tarih;Açıklama;Borç;Alacak;Bakiye\n" +
				"05.03.2024;EFT GELEN MEHMET YILMAZ;;1.250,00;10.000,00\n" +
				"06.03.2024;FATURA ODEMESI;500,00;;9.500,00\n",
			wantDrafts: 2,
		},
		{
			name:     "ziraat single signed amount column",
			strategy: NewZiraat(),
			file:     "ziraat.csv",
			content: "İşlem Tarihi;Açıklama;Tutar;Bakiye\n" +
				"10.01.2023;HAVALE GELEN ACME LTD;2.000,00;12.000,00\n" +
				"11.01.2023;KIRA ODEMESI;-750,50;11.249,50\n",
			wantDrafts: 2,
		},
		{
			name:     "rows before cutoff dropped",
			strategy: NewIsbank(),
			file:     "old.csv",
			content: "Tarih;Açıklama;Çekilen Tutar;Yatan Tutar;Kalan Bakiye\n" +
				"15.06.2019;ESKI KAYIT;;100,00;100,00\n" +
				"15.06.2021;YENI KAYIT;;100,00;200,00\n",
			wantDrafts: 1,
		},
		{
			name:     "malformed rows skipped not fatal",
			strategy: NewIsbank(),
			file:     "partial.csv",
			content: "Tarih;Açıklama;Çekilen Tutar;Yatan Tutar;Kalan Bakiye\n" +
				"not-a-date;BOZUK SATIR;;50,00;\n" +
				"01.02.2024;IYI SATIR;;75,00;\n" +
				"02.02.2024;SIFIR TUTAR;;;\n",
			wantDrafts: 1,
		},
		{
			name:     "no header found",
			strategy: NewIsbank(),
			file:     "noheader.csv",
			content:  "a;b;c\n1;2;3\n",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, tt.file, tt.content)
			drafts, err := tt.strategy.Parse(path)
			if tt.wantErr {
				var parseErr *ParseError
				require.Error(t, err)
				require.ErrorAs(t, err, &parseErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, drafts, tt.wantDrafts)
		})
	}
}

func TestStatementStrategy_DirectionAndAmounts(t *testing.T) {
	content := "Tarih;Açıklama;Borç;Alacak;Bakiye\n" +
		"05.03.2024;EFT GELEN MEHMET YILMAZ REF ABC12345;;1.250,00;10.000,00\n" +
		"06.03.2024;ELEKTRIK FATURASI;512,40;;9.487,60\n"
	path := writeTestFile(t, "garanti.csv", content)

	drafts, err := NewGaranti().Parse(path)
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	in := drafts[0]
	assert.Equal(t, model.DirectionIncoming, in.Direction)
	assert.True(t, decimal.RequireFromString("1250").Equal(in.Amount))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), in.Date)
	assert.Equal(t, "MEHMET YILMAZ", in.Sender)
	assert.Equal(t, "ABC12345", in.Reference)

	out := drafts[1]
	assert.Equal(t, model.DirectionOutgoing, out.Direction)
	assert.True(t, decimal.RequireFromString("512.40").Equal(out.Amount))
	assert.Empty(t, out.Sender, "outgoing rows get no counterparty extraction")
}

func TestStatementStrategy_SignedColumnNormalization(t *testing.T) {
	content := "İşlem Tarihi;Açıklama;Tutar;Bakiye\n" +
		"11.01.2023;KIRA ODEMESI;-750,50;11.249,50\n"
	path := writeTestFile(t, "ziraat.csv", content)

	drafts, err := NewZiraat().Parse(path)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	// Negative signed amounts are stored as positive magnitude + outgoing.
	assert.Equal(t, model.DirectionOutgoing, drafts[0].Direction)
	assert.True(t, decimal.RequireFromString("750.50").Equal(drafts[0].Amount))
}

func TestMapColumns_DecoratedHeadersResolveDeterministically(t *testing.T) {
	s := NewZiraat().(*statementStrategy)

	// "İşlem Tarihi ve Saati" contains aliases of two different fields
	// ("ISLEM TARIHI" and "ISLEM"); the longest alias must win on every
	// run, not depend on map iteration order.
	header := []string{"İşlem Tarihi ve Saati", "Açıklama Detayı", "Tutar Bilgisi"}
	for i := 0; i < 100; i++ {
		cols := s.mapColumns(header)
		require.Equal(t, 0, cols[fieldDate], "date column must resolve on run %d", i)
		assert.Equal(t, 1, cols[fieldDescription])
		assert.Equal(t, 2, cols[fieldCredit])
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, bank := range []string{"ziraat", "isbank", "garanti", "ofx"} {
		s, err := r.ForBank(bank)
		require.NoError(t, err)
		assert.Equal(t, bank, s.BankName())
	}

	_, err := r.ForBank("akbank")
	assert.Error(t, err)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter([]byte("a;b;c\n")))
	assert.Equal(t, ',', detectDelimiter([]byte("a,b,c\n")))
	assert.Equal(t, '\t', detectDelimiter([]byte("a\tb\tc\n")))
}

package parser

// Per-bank strategies. These differ only in column naming and in how much
// preamble the export stacks above the header row.

// NewZiraat parses Ziraat Bankası account statement exports.
func NewZiraat() Strategy {
	return newStatementStrategy("ziraat", map[string]string{
		"İşlem Tarihi": "TARIH",
		"Açıklama":     "ACIKLAMA",
		"Tutar":        "ALACAK", // single signed-amount column
		"Bakiye":       "BAKIYE",
	}, 10)
}

// NewIsbank parses İş Bankası account statement exports.
func NewIsbank() Strategy {
	return newStatementStrategy("isbank", map[string]string{
		"Tarih":          "TARIH",
		"Açıklama":       "ACIKLAMA",
		"Yatan Tutar":    "ALACAK",
		"Çekilen Tutar":  "BORC",
		"Kalan Bakiye":   "BAKIYE",
		"Hesap Hareketi": "ACIKLAMA",
	}, 10)
}

// NewGaranti parses Garanti BBVA account statement exports. Garanti stacks a
// taller preamble block above the header than the others.
func NewGaranti() Strategy {
	return newStatementStrategy("garanti", map[string]string{
		"Tarih":    "TARIH",
		"Açıklama": "ACIKLAMA",
		"Alacak":   "ALACAK",
		"Borç":     "BORC",
		"Bakiye":   "BAKIYE",
	}, 15)
}

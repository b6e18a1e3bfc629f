package ingest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	data := []byte(`Date,Description,Amount
03/01/2024,Coffee Shop,-4.50
03/02/2024,Payroll,"2,000.00"
03/03/2024,Unparseable,abc
`)

	txs, err := CSV(data, "export.csv", CSVOptions{})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "Coffee Shop", txs[0].Description)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-4.50")))
	require.NotNil(t, txs[0].Date)
	assert.Equal(t, "2024-03-01", txs[0].Date.Format("2006-01-02"))
	assert.Equal(t, "export.csv", txs[0].Source)
}

func TestCSV_DebitCredit(t *testing.T) {
	t.Parallel()

	data := []byte(`Date,Details,Money Out,Money In
03/01/2024,Card payment,45.00,
03/02/2024,Refund,,12.00
`)

	txs, err := CSV(data, "s.csv", CSVOptions{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-45")))
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("12")))
}

func TestCSV_HeaderlessFallsBackToInference(t *testing.T) {
	t.Parallel()

	// No header row: the first row is consumed as one, the rest are
	// normalized positionally.
	data := []byte(`03/01/2024,Coffee,-4.50
03/02/2024,Payroll,"2,000.00"
03/03/2024,Groceries,-82.19
`)

	txs, err := CSV(data, "s.csv", CSVOptions{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Payroll", txs[0].Description)
	assert.Equal(t, "Groceries", txs[1].Description)
}

func TestCSV_RaggedRows(t *testing.T) {
	t.Parallel()

	data := []byte(`Date,Description,Amount
03/01/2024,Coffee,-4.50,extra
03/02/2024,Short
`)

	txs, err := CSV(data, "s.csv", CSVOptions{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Coffee", txs[0].Description)
}

func TestCSV_Charset(t *testing.T) {
	t.Parallel()

	// "Café" in windows-1252: é = 0xE9.
	data := append([]byte(`Date,Description,Amount
03/01/2024,Caf`), 0xE9, ',', '-', '4', '.', '5', '0', '\n')

	txs, err := CSV(data, "s.csv", CSVOptions{Charset: "windows-1252"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Café", txs[0].Description)

	_, err = CSV(data, "s.csv", CSVOptions{Charset: "not-a-charset"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown charset")
}

func TestCSV_Empty(t *testing.T) {
	t.Parallel()

	txs, err := CSV(nil, "s.csv", CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, txs)

	txs, err = CSV([]byte("Date,Description,Amount\n"), "s.csv", CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCSV_SemicolonDelimiter(t *testing.T) {
	t.Parallel()

	data := []byte("Date;Description;Amount\n03/01/2024;Kaffee;-4,50\n")

	txs, err := CSV(data, "s.csv", CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-4.50")))
}

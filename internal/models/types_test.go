package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoanDecodesMixedIDs(t *testing.T) {
	payload := `[
		{"id": 7, "nama_peminjam": "Ali", "barang_id": "12", "jumlah": 2, "status": "dipinjam", "tanggal_pinjam": "2024-03-01"},
		{"id": "a-1", "nama_peminjam": "Budi", "barang_id": 12, "jumlah": 1, "status": "Dikembalikan", "tanggal_pinjam": null}
	]`

	var loans []Loan
	require.NoError(t, json.Unmarshal([]byte(payload), &loans))
	require.Len(t, loans, 2)

	assert.Equal(t, ID("7"), loans[0].ID)
	assert.Equal(t, ID("a-1"), loans[1].ID)
	assert.Equal(t, loans[0].ItemID, loans[1].ItemID)
	assert.Equal(t, "01-03-2024", loans[0].BorrowedAt.Display())
	assert.True(t, loans[1].BorrowedAt.IsZero())
}

func TestIDMarshalsNumericIDsAsNumbers(t *testing.T) {
	out, err := json.Marshal(Item{Name: "Proyektor", CategoryID: "3", Stock: 4})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"kategori_id":3`)
	assert.NotContains(t, string(out), `"id"`)

	out, err = json.Marshal(Item{CategoryID: "kat-3"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"kategori_id":"kat-3"`)
}

func TestIDRoundTripsNonCanonicalNumbers(t *testing.T) {
	for _, raw := range []string{`"007"`, `"+3"`, `"-0"`, `"12"`, `12`, `-4`} {
		var item Item
		require.NoError(t, json.Unmarshal([]byte(`{"kategori_id":`+raw+`}`), &item), raw)

		out, err := json.Marshal(item)
		require.NoError(t, err, raw)

		var back Item
		require.NoError(t, json.Unmarshal(out, &back), raw)
		assert.Equal(t, item.CategoryID, back.CategoryID, raw)
	}

	out, err := json.Marshal(Item{CategoryID: "007"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"kategori_id":"007"`)
}

func TestDateRoundTripsRawText(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T08:30:00.000Z"`), &d))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T08:30:00.000Z"`, string(out))

	out, err = json.Marshal(NewDate(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-02"`, string(out))
}

func TestDateKeepsUnknownFormats(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"kemarin"`), &d))
	assert.Equal(t, "kemarin", d.Display())
}

package feeds

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func writeTestWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "dump.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestExcelFeedRead(t *testing.T) {
	path := writeTestWorkbook(t, [][]interface{}{
		{"Nachname, Vorname", "Straße Nr, PLZ Ort", "Telefon", "Hobbies", "E-Mail", "Geschlecht", "Interessiert an", "Geburtsdatum"},
		{"Forster, Martin", "Minslebener Str. 0, 46286, Dorsten", "+49 (0) 201 123456", "Kochen %80%; Joggen %20%", "martin.forster@x.test", "m", "w", "07.03.1959"},
		{"", "", "", "", "", "", "", ""},
		{"Wickern, Ellen", "", "", "", "ellen.wickern@x.test", "w", "m", ""},
	})

	feed := NewExcelFeed(path, testLogger())
	assert.Equal(t, models.SourceExcel, feed.Source())

	records, err := feed.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, models.SourceExcel, first.Source)
	assert.Equal(t, "Forster, Martin", first.Name)
	assert.Equal(t, "Minslebener Str. 0, 46286, Dorsten", first.Address)
	assert.Equal(t, "+49 (0) 201 123456", first.Phone)
	assert.Equal(t, []string{"Kochen %80%", "Joggen %20%"}, first.Hobbies)
	assert.Equal(t, "martin.forster@x.test", first.Email)
	assert.Equal(t, "m", first.Gender)
	assert.Equal(t, "w", first.InterestedIn)
	assert.Equal(t, "07.03.1959", first.BirthDate)

	// The interior blank row survives as an empty record; the pipeline skips
	// it as malformed rather than the feed guessing.
	assert.Empty(t, records[1].Email)
	assert.Equal(t, "ellen.wickern@x.test", records[2].Email)
}

func TestExcelFeedShortRows(t *testing.T) {
	path := writeTestWorkbook(t, [][]interface{}{
		{"Name", "Adresse", "Telefon", "Hobbies", "E-Mail"},
		{"Wickern, Ellen", "", "", "", "ellen.wickern@x.test"},
	})

	records, err := NewExcelFeed(path, testLogger()).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ellen.wickern@x.test", records[0].Email)
	assert.Empty(t, records[0].BirthDate)
}

func TestExcelFeedMissingFile(t *testing.T) {
	_, err := NewExcelFeed(filepath.Join(t.TempDir(), "missing.xlsx"), testLogger()).Read(context.Background())
	require.Error(t, err)
}

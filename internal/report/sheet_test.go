package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"tender-notifier/internal/tenders"
)

func sampleRow() tenders.Row {
	return tenders.Row{
		Published:         time.Date(2026, 1, 1, 3, 0, 0, 0, time.FixedZone("MSK", 3*3600)),
		OrderName:         "Поставка кабеля",
		Number:            "0373100000125000001",
		Status:            "Прием заявок",
		Source:            tenders.Link{Text: "Ссылка на тендер", URL: "https://zakupki.gov.ru/1"},
		Platform:          tenders.Link{Text: "РТС-тендер", URL: "https://rts-tender.ru"},
		Price:             tenders.Amount{Value: 1500, Set: true},
		GuaranteeApp:      tenders.Amount{Text: tenders.GuaranteeNotNeeded},
		SummingUpText:     tenders.SummingUpPerDocs,
		GuaranteeProv:     tenders.Amount{Text: tenders.ProvisionUnset},
		GuaranteeContract: tenders.Amount{Text: tenders.GuaranteePerDocs},
		Contacts:          "ГБУ\nТелефон: 1",
	}
}

func openSaved(t *testing.T, s *Sheet) (*excelize.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, s.SaveAs(path))
	require.NoError(t, s.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, f.GetSheetName(f.GetActiveSheetIndex())
}

func TestSheet_BlankWorkbook(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	require.NoError(t, s.AddRow(sampleRow()))
	require.NoError(t, s.AddRow(tenders.Row{Number: "second"}))

	f, sheet := openSaved(t, s)

	header, err := f.GetCellValue(sheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Номер", header)

	number, _ := f.GetCellValue(sheet, "C3")
	assert.Equal(t, "0373100000125000001", number)
	second, _ := f.GetCellValue(sheet, "C4")
	assert.Equal(t, "second", second)

	published, _ := f.GetCellValue(sheet, "A3", excelize.Options{RawCellValue: true})
	assert.Equal(t, "46023.125", published)

	price, _ := f.GetCellValue(sheet, "I3")
	assert.Equal(t, "1500", price)
	app, _ := f.GetCellValue(sheet, "J3")
	assert.Equal(t, "не требуется", app)
	summing, _ := f.GetCellValue(sheet, "N3")
	assert.Equal(t, "В соответствии с документацией о закупке", summing)
	contacts, _ := f.GetCellValue(sheet, "R3")
	assert.Equal(t, "ГБУ\nТелефон: 1", contacts)

	ok, link, err := f.GetCellHyperLink(sheet, "G3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://zakupki.gov.ru/1", link)

	ok, _, err = f.GetCellHyperLink(sheet, "G4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSheet_TemplateDataRowsCleared(t *testing.T) {
	tmpl := excelize.NewFile()
	sheet := tmpl.GetSheetName(0)
	require.NoError(t, tmpl.SetCellValue(sheet, "A1", "Шаблон"))
	require.NoError(t, tmpl.SetCellValue(sheet, "C2", "№"))
	for r := 3; r <= 6; r++ {
		require.NoError(t, tmpl.SetCellValue(sheet, "C"+string(rune('0'+r)), "old"))
	}
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, tmpl.SaveAs(path))
	require.NoError(t, tmpl.Close())

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.AddRow(tenders.Row{Number: "fresh"}))

	f, name := openSaved(t, s)
	title, _ := f.GetCellValue(name, "A1")
	assert.Equal(t, "Шаблон", title)
	first, _ := f.GetCellValue(name, "C3")
	assert.Equal(t, "fresh", first)
	stale, _ := f.GetCellValue(name, "C4")
	assert.Empty(t, stale)
}

func TestNew_MissingTemplate(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	wb, err := Factory("")()
	require.NoError(t, err)
	assert.NoError(t, wb.Close())
}

func TestSheet_UnlabelledLinkShowsURL(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	require.NoError(t, s.AddRow(tenders.Row{Number: "1", Platform: tenders.Link{URL: "https://etp.example.ru"}}))

	f, sheet := openSaved(t, s)

	text, _ := f.GetCellValue(sheet, "H3")
	assert.Equal(t, "https://etp.example.ru", text)
	ok, link, err := f.GetCellHyperLink(sheet, "H3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://etp.example.ru", link)
}

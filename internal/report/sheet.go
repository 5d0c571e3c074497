// Package report writes tender report rows into an xlsx workbook.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"tender-notifier/internal/tenders"
)

// FirstDataRow is the first row below the two header rows.
const FirstDataRow = 3

const dateFormat = "dd.mm.yyyy hh:mm"

var columns = []string{
	"Дата публикации",
	"Наименование закупки",
	"Номер",
	"ОКПД2",
	"Статус",
	"Тип торгов",
	"ЕИС",
	"ЭТП",
	"Начальная цена",
	"Обеспечение заявки",
	"Обеспечение контракта",
	"Валюта",
	"Окончание подачи заявок",
	"Подведение итогов",
	"Обеспечение гарантийных обязательств",
	"Регион",
	"Заказчик",
	"Контакты заказчика",
}

// Sheet is a tenders.Workbook backed by excelize.
type Sheet struct {
	file   *excelize.File
	sheet  string
	next   int
	styles struct {
		date, text, wrap, link int
	}
}

// New opens templatePath and clears its data rows, or creates a blank
// workbook with headers when templatePath is empty.
func New(templatePath string) (*Sheet, error) {
	var (
		f   *excelize.File
		err error
	)
	if templatePath != "" {
		if f, err = excelize.OpenFile(templatePath); err != nil {
			return nil, fmt.Errorf("open report template: %w", err)
		}
	} else {
		f = excelize.NewFile()
	}

	s := &Sheet{file: f, sheet: f.GetSheetName(f.GetActiveSheetIndex()), next: FirstDataRow}
	if err := s.initStyles(); err != nil {
		f.Close()
		return nil, err
	}

	if templatePath != "" {
		err = s.clearData()
	} else {
		err = s.writeHeader()
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Factory returns a tenders.WorkbookFactory that opens templatePath for
// every report.
func Factory(templatePath string) tenders.WorkbookFactory {
	return func() (tenders.Workbook, error) {
		return New(templatePath)
	}
}

func (s *Sheet) initStyles() error {
	format := dateFormat
	var err error
	if s.styles.date, err = s.file.NewStyle(&excelize.Style{CustomNumFmt: &format}); err != nil {
		return err
	}
	if s.styles.text, err = s.file.NewStyle(&excelize.Style{NumFmt: 49}); err != nil {
		return err
	}
	if s.styles.wrap, err = s.file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	}); err != nil {
		return err
	}
	s.styles.link, err = s.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})
	return err
}

func (s *Sheet) writeHeader() error {
	if err := s.file.SetCellValue(s.sheet, "A1", "Тендеры"); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := s.file.MergeCell(s.sheet, "A1", last+"1"); err != nil {
		return err
	}
	bold, err := s.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return err
	}
	for i, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := s.file.SetCellValue(s.sheet, cell, title); err != nil {
			return err
		}
	}
	return s.file.SetCellStyle(s.sheet, "A1", last+"2", bold)
}

// clearData removes template rows from FirstDataRow down.
func (s *Sheet) clearData() error {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return err
	}
	for r := len(rows); r >= FirstDataRow; r-- {
		if err := s.file.RemoveRow(s.sheet, r); err != nil {
			return err
		}
	}
	return nil
}

// excelTime drops the zone so the sheet shows the local wall-clock time.
func excelTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func (s *Sheet) set(col string, value interface{}) error {
	return s.file.SetCellValue(s.sheet, fmt.Sprintf("%s%d", col, s.next), value)
}

func (s *Sheet) setStyle(col string, style int) error {
	cell := fmt.Sprintf("%s%d", col, s.next)
	return s.file.SetCellStyle(s.sheet, cell, cell, style)
}

func (s *Sheet) setTime(col string, t time.Time) error {
	if t.IsZero() {
		return s.set(col, "")
	}
	if err := s.set(col, excelTime(t)); err != nil {
		return err
	}
	return s.setStyle(col, s.styles.date)
}

func (s *Sheet) setAmount(col string, a tenders.Amount) error {
	if a.Set {
		return s.set(col, a.Value)
	}
	return s.set(col, a.Text)
}

func (s *Sheet) setLink(col string, l tenders.Link) error {
	text := l.Text
	if text == "" {
		text = l.URL
	}
	if err := s.set(col, text); err != nil {
		return err
	}
	if l.URL == "" {
		return nil
	}
	cell := fmt.Sprintf("%s%d", col, s.next)
	if err := s.file.SetCellHyperLink(s.sheet, cell, l.URL, "External"); err != nil {
		return err
	}
	return s.setStyle(col, s.styles.link)
}

// AddRow writes row at the next free data row.
func (s *Sheet) AddRow(row tenders.Row) error {
	steps := []func() error{
		func() error { return s.setTime("A", row.Published) },
		func() error { return s.set("B", row.OrderName) },
		func() error { return s.set("C", row.Number) },
		func() error { return s.set("D", row.OKPD2) },
		func() error { return s.set("E", row.Status) },
		func() error { return s.set("F", row.TradeType) },
		func() error { return s.setLink("G", row.Source) },
		func() error { return s.setLink("H", row.Platform) },
		func() error { return s.setAmount("I", row.Price) },
		func() error { return s.setAmount("J", row.GuaranteeApp) },
		func() error { return s.setAmount("K", row.GuaranteeContract) },
		func() error { return s.set("L", row.Currency) },
		func() error { return s.setTime("M", row.CloseAt) },
		func() error {
			if !row.SummingUp.IsZero() {
				return s.setTime("N", row.SummingUp)
			}
			if err := s.set("N", row.SummingUpText); err != nil {
				return err
			}
			return s.setStyle("N", s.styles.text)
		},
		func() error { return s.setAmount("O", row.GuaranteeProv) },
		func() error { return s.set("P", row.Region) },
		func() error { return s.set("Q", row.Customer) },
		func() error {
			if err := s.set("R", row.Contacts); err != nil {
				return err
			}
			return s.setStyle("R", s.styles.wrap)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("row %d: %w", s.next, err)
		}
	}
	s.next++
	return nil
}

func (s *Sheet) SaveAs(path string) error {
	return s.file.SaveAs(path)
}

func (s *Sheet) Close() error {
	return s.file.Close()
}

var _ tenders.Workbook = (*Sheet)(nil)

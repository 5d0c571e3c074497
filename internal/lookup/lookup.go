// Package lookup translates tender API codes into display strings.
package lookup

import "strings"

var statuses = map[int]string{
	0: "Неизвестно",
	1: "Прием заявок",
	2: "Работа комиссии",
	3: "Завершено",
	4: "Отменено",
	5: "Не состоялось",
	6: "Исполнение завершено",
	7: "Исполняется",
	8: "Расторжение",
}

// Law codes: 0 is procurement under 223-FZ, 1 under 44-FZ.
var laws = map[int]string{
	0: "223-ФЗ",
	1: "44-ФЗ",
}

// Procurement methods (placingWay) by short name.
var methods = map[int]string{
	0: "ИС", 1: "ОК", 2: "ОА", 3: "ЭФ", 4: "ЗК", 5: "ПО",
	6: "ЕП", 7: "ОКУ", 8: "ОКД", 9: "ЗКК", 10: "ЗККУ", 11: "ЗККД",
	12: "ЗА", 13: "ЗКБ", 14: "ЗП", 15: "ЭА", 16: "ИСМ", 17: "СЗ",
	18: "ИОС", 19: "РЕД", 20: "ПЕР", 21: "КП", 22: "ЗКЭФ", 23: "ОКЭФ",
	24: "ЗПЭФ", 25: "ОКУЭФ", 26: "ОКДЭФ", 27: "ЗЦ", 28: "ГА", 29: "ПП",
}

var currencySymbols = map[string]string{
	"RUB": "₽",
	"USD": "$",
	"EUR": "€",
}

// Status returns the display label for a tender status code.
func Status(code int) (string, bool) {
	s, ok := statuses[code]
	return s, ok
}

// Law returns the regulation label for a law-type code.
func Law(code int) (string, bool) {
	s, ok := laws[code]
	return s, ok
}

// Method returns the short name of a procurement method code.
func Method(code int) (string, bool) {
	s, ok := methods[code]
	return s, ok
}

// Region returns the region name for a two-digit KLADR subject code.
func Region(code int) (string, bool) {
	s, ok := regions[code]
	return s, ok
}

// CurrencySymbol maps an ISO currency code to its symbol; unknown codes
// are returned upper-cased.
func CurrencySymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return code
}

// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"time"

	"github.com/mmeshcher/retail-orders-system/internal/model"
)

// DefaultPivotYear — граница интерпретации двузначного года: значения меньше
// границы относятся к 2000-м, остальные к 1900-м.
const DefaultPivotYear = 69

// dateLayout — лексическая форма даты: две цифры дня, дефис, трёхбуквенный
// английский месяц с заглавной буквы, дефис, две цифры года.
const dateLayout = "02-Jan-06"

var months = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// ParseDate разбирает дату в форме DD-Mon-YY (например, 01-Jan-17) и
// возвращает календарную дату в UTC. Век двузначного года выбирается по
// границе pivot: yy < pivot означает 2000+yy, иначе 1900+yy. Неполная
// форма, месяц в другом регистре и несуществующий календарный день
// отвергаются.
func ParseDate(s string, pivot int) (time.Time, error) {
	if len(s) != len("01-Jan-17") || s[2] != '-' || s[6] != '-' {
		return time.Time{}, fmt.Errorf("date %q does not match form DD-Mon-YY", s)
	}

	day, ok := twoDigits(s[0:2])
	if !ok || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q has invalid day", s)
	}

	month, ok := months[s[3:6]]
	if !ok {
		return time.Time{}, fmt.Errorf("date %q has invalid month", s)
	}

	yy, ok := twoDigits(s[7:9])
	if !ok {
		return time.Time{}, fmt.Errorf("date %q has invalid year", s)
	}

	year := 1900 + yy
	if yy < pivot {
		year = 2000 + yy
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date нормализует несуществующие дни (31-Feb становится 3-Mar),
	// поэтому несовпадение после нормализации означает невалидную дату.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("date %q is not a valid calendar date", s)
	}

	return t, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// FormatDate форматирует дату обратно в форму DD-Mon-YY.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ValidName проверяет, что имя и фамилия клиента непустые.
func ValidName(first, last string) bool {
	return first != "" && last != ""
}

// ValidAddress проверяет, что все составляющие адреса доставки непустые.
func ValidAddress(a model.Address) bool {
	return a.House != "" && a.Street != "" && a.City != ""
}

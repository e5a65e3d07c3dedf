package calendar

import (
	"fmt"
	"time"
)

// Language selects date wording and the day/month order.
type Language uint8

const (
	English Language = iota
	French
	German
	Spanish
	numLanguages
)

var languageCodes = [numLanguages]string{"en", "fr", "de", "es"}

func (l Language) String() string {
	if l < numLanguages {
		return languageCodes[l]
	}
	return fmt.Sprintf("lang(%d)", uint8(l))
}

// ParseLanguage is the inverse of Language.String.
func ParseLanguage(s string) (Language, error) {
	for i, c := range languageCodes {
		if c == s {
			return Language(i), nil
		}
	}
	return English, fmt.Errorf("calendar: unknown language %q", s)
}

// Next cycles through the languages.
func (l Language) Next(step int) Language {
	n := int(numLanguages)
	return Language(((int(l)+step)%n + n) % n)
}

// DayFirst reports whether dates are written day before month.
func (l Language) DayFirst() bool { return l != English }

var weekdayNames = [numLanguages][7]string{
	{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
	{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
	{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
}

var monthNames = [numLanguages][12]string{
	{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
}

// WeekdayName returns the localized weekday name.
func (l Language) WeekdayName(wd time.Weekday) string {
	if l >= numLanguages {
		l = English
	}
	return weekdayNames[l][wd%7]
}

// MonthName returns the localized month name.
func (l Language) MonthName(m time.Month) string {
	if l >= numLanguages {
		l = English
	}
	if m < time.January || m > time.December {
		return "?"
	}
	return monthNames[l][m-1]
}

// DateLine formats a long date the way the language states it.
func (l Language) DateLine(year int, month time.Month, day int) string {
	wd := l.WeekdayName(DayOfWeek(year, month, day))
	switch l {
	case French:
		return fmt.Sprintf("%s %d %s %d", wd, day, l.MonthName(month), year)
	case German:
		return fmt.Sprintf("%s, %d. %s %d", wd, day, l.MonthName(month), year)
	case Spanish:
		return fmt.Sprintf("%s %d de %s de %d", wd, day, l.MonthName(month), year)
	default:
		return fmt.Sprintf("%s, %s %d, %d", wd, l.MonthName(month), day, year)
	}
}

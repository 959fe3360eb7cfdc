package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Sale represents a recorded sale. Once created it is never edited or
// deleted; id, date and seller are assigned at creation time.
type Sale struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	ClientCPF   string    `json:"client_cpf"`
	Value       float64   `json:"value"`
	Date        time.Time `json:"date"`
	SellerEmail string    `json:"seller_email"`
}

// SaleDraft holds the user-entered fields of a sale before the backend
// assigns id, date and owner.
type SaleDraft struct {
	ClientName string  `json:"client_name"`
	ClientCPF  string  `json:"client_cpf"`
	Value      float64 `json:"value"`
}

// Theme is the display theme, persisted process-wide.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of the two known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// DisplayValue renders the monetary value as Brazilian reais, e.g.
// "R$ 1.500,50".
func (s *Sale) DisplayValue() string {
	return ptBR.Sprintf("R$ %v", number.Decimal(s.Value,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// DisplayDate renders the creation timestamp as dd/mm/yyyy hh:mm.
func (s *Sale) DisplayDate() string {
	return s.Date.Format("02/01/2006 15:04")
}

// FormatCPF coerces free-form input into the 000.000.000-00 display
// format: non-digits are stripped and anything past eleven digits is
// dropped. This mirrors the mask the entry form applies; it does not
// validate check digits.
func FormatCPF(raw string) string {
	digits := make([]byte, 0, 11)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
		if len(digits) == 11 {
			break
		}
	}

	var b strings.Builder
	for i, d := range digits {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteByte(d)
	}
	return b.String()
}

// ParseAmount parses a user-entered monetary value. A comma decimal
// separator is accepted ("150,5") since pt-BR forms use it. Negative
// values are rejected.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("value must not be negative")
	}
	return v, nil
}

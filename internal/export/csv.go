// Package export renders connection lists into downloadable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iliyamo/connection-monitor/internal/model"
)

// Header is the fixed first row of every CSV export.
var Header = []string{"Client", "Address", "Office", "ConnectionType", "Status", "Speed", "Price", "Contact"}

const (
	LabelActive   = "Активне"
	LabelInactive = "Неактивне"
	UnitSpeed     = "Мбіт/с"
	UnitCurrency  = "грн"
)

// StatusLabel renders a status the way the table shows it.  Unknown values
// fall back to the inactive label.
func StatusLabel(s model.Status) string {
	if s == model.StatusActive {
		return LabelActive
	}
	return LabelInactive
}

// FormatSpeed renders "100 Мбіт/с".
func FormatSpeed(s model.Speed) string { return string(s) + " " + UnitSpeed }

// FormatPrice renders "400 грн"; fractional prices keep only the digits they need.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + " " + UnitCurrency
}

// Row returns the CSV fields of one connection in header order.
func Row(c model.Connection) []string {
	return []string{
		c.ClientName,
		c.Address,
		c.Office,
		string(c.ConnectionType),
		StatusLabel(c.Status),
		FormatSpeed(c.Speed),
		FormatPrice(c.Price),
		c.Contact,
	}
}

// WriteCSV writes the header and one row per connection, in the order given.
func WriteCSV(w io.Writer, conns []model.Connection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range conns {
		if err := cw.Write(Row(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV is WriteCSV into a byte slice.
func CSV(conns []model.Connection) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, conns); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package export

import (
	"strings"
	"testing"

	"github.com/iliyamo/connection-monitor/internal/model"
)

func TestCSVSingleConnection(t *testing.T) {
	out, err := CSV([]model.Connection{{
		ClientName:     "Test",
		Address:        "вул. Шевченка 25",
		Office:         "101",
		ConnectionType: model.ConnectionFiber,
		Status:         model.StatusActive,
		Speed:          model.Speed100,
		Price:          400,
		Contact:        "+380501234567",
	}})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}
	if lines[0] != "Client,Address,Office,ConnectionType,Status,Speed,Price,Contact" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := "Test,вул. Шевченка 25,101,Fiber,Активне,100 Мбіт/с,400 грн,+380501234567"
	if lines[1] != want {
		t.Fatalf("expected %q, got %q", want, lines[1])
	}
}

func TestCSVQuotesCommas(t *testing.T) {
	out, err := CSV([]model.Connection{{
		ClientName: "Іван Петренко",
		Address:    "вул. Шевченка 25, кв. 12",
		Status:     model.StatusInactive,
		Speed:      model.Speed1000,
		Price:      399.5,
	}})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	row := strings.Split(strings.TrimRight(string(out), "\n"), "\n")[1]
	for _, part := range []string{`"вул. Шевченка 25, кв. 12"`, LabelInactive, "1000 Мбіт/с", "399.5 грн"} {
		if !strings.Contains(row, part) {
			t.Fatalf("expected row %q to contain %q", row, part)
		}
	}
}

func TestCSVEmptyList(t *testing.T) {
	out, err := CSV(nil)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if strings.TrimRight(string(out), "\n") != strings.Join(Header, ",") {
		t.Fatalf("expected header only, got %q", out)
	}
}

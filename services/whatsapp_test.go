package services

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildWhatsAppMessage(t *testing.T) {
	got := BuildWhatsAppMessage("Ferreteria El Tornillo", 1042, "$160.650", 5)
	want := "Hola Ferreteria El Tornillo, te enviamos la cotización #1042 por un valor de $160.650. Válida por 5 días."
	if got != want {
		t.Errorf("BuildWhatsAppMessage() = %q, want %q", got, want)
	}
}

func TestBuildWhatsAppLink(t *testing.T) {
	link, err := BuildWhatsAppLink("573001234567", "Hola, cotización #7")
	if err != nil {
		t.Fatalf("BuildWhatsAppLink() error = %v", err)
	}

	if !strings.HasPrefix(link, "https://wa.me/573001234567?text=") {
		t.Errorf("link = %q, want wa.me prefix with phone", link)
	}

	// The message must survive a URL round trip intact
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if got := u.Query().Get("text"); got != "Hola, cotización #7" {
		t.Errorf("decoded text = %q, want original message", got)
	}
}

func TestBuildWhatsAppLink_NoPhone(t *testing.T) {
	tests := []string{"", "   "}
	for _, phone := range tests {
		if _, err := BuildWhatsAppLink(phone, "mensaje"); err != ErrNoCustomerPhone {
			t.Errorf("BuildWhatsAppLink(%q) error = %v, want ErrNoCustomerPhone", phone, err)
		}
	}
}

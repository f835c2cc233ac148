package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoCustomerPhone reports the handoff precondition failure: the customer
// has no phone number on file, so no chat link can be built.
var ErrNoCustomerPhone = errors.New("customer has no phone number registered")

// BuildWhatsAppMessage renders the templated quotation message sent to a
// customer. totalDisplay must already be formatted (FormatCOP).
func BuildWhatsAppMessage(clienteNombre string, numero int, totalDisplay string, validezDias int) string {
	return fmt.Sprintf("Hola %s, te enviamos la cotización #%d por un valor de %s. Válida por %d días.",
		clienteNombre, numero, totalDisplay, validezDias)
}

// BuildWhatsAppLink builds the wa.me deep link carrying the prefilled message.
// The phone is used as stored (country code included, digits only expected);
// an empty phone is ErrNoCustomerPhone, never a silent no-op.
func BuildWhatsAppLink(telefono, mensaje string) (string, error) {
	telefono = strings.TrimSpace(telefono)
	if telefono == "" {
		return "", ErrNoCustomerPhone
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", telefono, url.QueryEscape(mensaje)), nil
}

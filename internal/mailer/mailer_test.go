package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectAndBody(t *testing.T) {
	e := InvoiceEmail{To: "ion@example.com", Series: "FA", Number: "0042"}

	assert.Equal(t, "Factura FA-0042 · FitActive Vitan", Subject(e, "FitActive Vitan"))
	assert.Equal(t, "Factura FA-0042", Subject(e, ""))
	assert.Contains(t, Body(e), "FA-0042")
	assert.Equal(t, "Factura-FA-0042.pdf", AttachmentName(e))

	e.PDF = []byte("%PDF")
	assert.Contains(t, Body(e), "Atașat")
}

func TestBuild(t *testing.T) {
	s := NewSMTP(Config{From: "no-reply@fitactive.ro", Brand: "FitActive Vitan"})

	msg, err := s.build(InvoiceEmail{To: "ion@example.com", Series: "FA", Number: "1", PDF: []byte("%PDF-1.4")})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "ion@example.com")
	assert.Contains(t, raw, "Factura-FA-1.pdf")

	_, err = s.build(InvoiceEmail{Series: "FA", Number: "1"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	_, err = s.build(InvoiceEmail{To: "not an address", Series: "FA", Number: "1"})
	assert.Error(t, err)
}

func TestSendInvoice_NotConfigured(t *testing.T) {
	err := NewSMTP(Config{}).SendInvoice(context.Background(), InvoiceEmail{To: "ion@example.com"})
	assert.Error(t, err)
}

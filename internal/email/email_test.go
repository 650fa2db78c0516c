package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBody(t *testing.T) {
	body, err := renderBody(DocumentEmail{
		To:          "billing@acme.test",
		DocType:     "estimate",
		Number:      "EST-004",
		CompanyName: "Handy Co",
		URL:         "https://app.invozy.test/share/tok-123",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "an estimate")
	assert.Contains(t, body, "EST-004")
	assert.Contains(t, body, "https://app.invozy.test/share/tok-123")

	body, err = renderBody(DocumentEmail{DocType: "invoice", Number: "INV-001", CompanyName: "Handy Co"})
	require.NoError(t, err)
	assert.Contains(t, body, "an invoice")
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("Handy Co <no-reply@handy.test>", "billing@acme.test", "Invoice from Handy Co (INV-001)", "<p>hi</p>")
	assert.Contains(t, msg, "From: Handy Co <no-reply@handy.test>\r\n")
	assert.Contains(t, msg, "To: billing@acme.test\r\n")
	assert.Contains(t, msg, "Subject: Invoice from Handy Co (INV-001)\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	assert.Contains(t, msg, "\r\n\r\n<p>hi</p>")
}

func TestParseAddress(t *testing.T) {
	assert.Equal(t, "no-reply@handy.test", parseAddress("Handy Co <no-reply@handy.test>"))
	assert.Equal(t, "no-reply@handy.test", parseAddress("no-reply@handy.test"))
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "Estimate", titleFor("estimate"))
	assert.Equal(t, "Invoice", titleFor("invoice"))
}

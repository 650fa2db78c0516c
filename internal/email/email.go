package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers document share links over SMTP.
type Sender struct {
	Config Config
}

// DocumentEmail is the payload for one outgoing document link.
type DocumentEmail struct {
	To          string
	DocType     string
	Number      string
	CompanyName string
	URL         string
}

var bodyTemplate = template.Must(template.New("document").Parse(`<!doctype html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>{{.CompanyName}} sent you {{if eq .DocType "estimate"}}an estimate{{else}}an invoice{{end}}</h2>
    <p>{{.CompanyName}} has shared document <strong>{{.Number}}</strong> with you.</p>
    <p><a href="{{.URL}}">View {{.Number}}</a></p>
    <p style="color: #888; font-size: 12px;">If the link does not open, copy this address into your browser:<br>{{.URL}}</p>
  </body>
</html>`))

func (s Sender) SendDocument(in DocumentEmail) error {
	subject := fmt.Sprintf("%s from %s (%s)", titleFor(in.DocType), in.CompanyName, in.Number)
	body, err := renderBody(in)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	message := buildMessage(s.Config.From, in.To, subject, body)

	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	auth := smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.Host)

	client, err := smtpClient(addr, s.Config.Host, s.Config.Port)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(parseAddress(s.Config.From)); err != nil {
		return err
	}
	if err := client.Rcpt(in.To); err != nil {
		return err
	}
	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write([]byte(message)); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func renderBody(in DocumentEmail) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func titleFor(docType string) string {
	if docType == "estimate" {
		return "Estimate"
	}
	return "Invoice"
}

func smtpClient(addr string, host string, port int) (*smtp.Client, error) {
	if port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, host)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return nil, err
	}
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

func parseAddress(from string) string {
	if start := strings.Index(from, "<"); start >= 0 {
		if end := strings.Index(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return from
}

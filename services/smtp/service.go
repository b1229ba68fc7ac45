package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/dto"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/tracing"
	"github.com/warmuphero/warmstack/internal/utils"
)

const implicitTLSPort = 465

type smtpService struct {
	warmupConfig *config.WarmupConfig
}

func NewSMTPService(warmupConfig *config.WarmupConfig) interfaces.SMTPService {
	return &smtpService{
		warmupConfig: warmupConfig,
	}
}

func (s *smtpService) Send(ctx context.Context, mail dto.OutboundMail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPService.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("smtp.host", mail.Host)
	span.SetTag("smtp.port", mail.Port)

	err := s.validateMail(&mail)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	buffer := s.prepareMessage(&mail)

	err = s.sendToServer(ctx, &mail, buffer)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

func (s *smtpService) validateMail(mail *dto.OutboundMail) error {
	if mail.From == "" {
		return fmt.Errorf("from address is required")
	}
	if mail.To == "" {
		return fmt.Errorf("recipient is required")
	}
	if mail.Subject == "" {
		return fmt.Errorf("mail must have a subject")
	}
	if mail.Body == "" {
		return fmt.Errorf("mail must have text content")
	}

	fromValidation := mailvalidate.ValidateEmailSyntax(mail.From)
	if !fromValidation.IsValid {
		return fmt.Errorf("from address is not valid")
	}
	toValidation := mailvalidate.ValidateEmailSyntax(mail.To)
	if !toValidation.IsValid {
		return fmt.Errorf("recipient address is not valid")
	}

	return nil
}

// prepareMessage builds the wire-format message: headers, marker header
// included, then the plain text body.
func (s *smtpService) prepareMessage(mail *dto.OutboundMail) *bytes.Buffer {
	headers := map[string]string{
		"From":         mail.From,
		"To":           mail.To,
		"Subject":      mail.Subject,
		"Date":         time.Now().Format(time.RFC1123Z),
		"Message-ID":   utils.GenerateMessageID(utils.ExtractDomainFromEmail(mail.From)),
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	for k, v := range mail.Headers {
		headers[k] = v
	}

	buffer := bytes.NewBuffer(nil)
	for k, v := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buffer.WriteString("\r\n")
	buffer.WriteString(mail.Body)

	return buffer
}

func (s *smtpService) sendToServer(ctx context.Context, mail *dto.OutboundMail, buffer *bytes.Buffer) error {
	addr := fmt.Sprintf("%s:%d", mail.Host, mail.Port)
	auth := smtp.PlainAuth("", mail.Username, mail.Password, mail.Host)

	// Verification skip is the legacy-compatible default; see WarmupConfig.
	tlsConfig := &tls.Config{
		ServerName:         mail.Host,
		InsecureSkipVerify: s.warmupConfig.SkipTLSVerify,
	}

	if mail.Port == implicitTLSPort {
		return s.sendWithImplicitTLS(ctx, addr, auth, mail, tlsConfig, buffer)
	}
	return s.sendWithSTARTTLS(ctx, addr, auth, mail, tlsConfig, buffer)
}

// sendWithImplicitTLS dials an already-encrypted connection (port 465).
func (s *smtpService) sendWithImplicitTLS(ctx context.Context, addr string, auth smtp.Auth, mail *dto.OutboundMail, tlsConfig *tls.Config, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SMTPService.sendWithImplicitTLS")
	defer span.Finish()

	dialer := s.dialer()
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	s.applyDeadline(ctx, conn)

	client, err := smtp.NewClient(conn, mail.Host)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		err = errors.Wrap(err, "SMTP authentication failed")
		tracing.TraceErr(span, err)
		return err
	}

	return s.transmit(span, client, mail, buffer)
}

// sendWithSTARTTLS connects in plaintext and upgrades opportunistically.
func (s *smtpService) sendWithSTARTTLS(ctx context.Context, addr string, auth smtp.Auth, mail *dto.OutboundMail, tlsConfig *tls.Config, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SMTPService.sendWithSTARTTLS")
	defer span.Finish()

	conn, err := s.dialer().Dial("tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	s.applyDeadline(ctx, conn)

	client, err := smtp.NewClient(conn, mail.Host)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(tlsConfig); err != nil {
			err = fmt.Errorf("failed to start TLS: %w", err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	if err = client.Auth(auth); err != nil {
		err = errors.Wrap(err, "SMTP authentication failed")
		tracing.TraceErr(span, err)
		return err
	}

	return s.transmit(span, client, mail, buffer)
}

func (s *smtpService) transmit(span opentracing.Span, client *smtp.Client, mail *dto.OutboundMail, buffer *bytes.Buffer) error {
	if err := client.Mail(mail.From); err != nil {
		err = fmt.Errorf("SMTP MAIL command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err := client.Rcpt(mail.To); err != nil {
		err = fmt.Errorf("SMTP RCPT command failed for %s: %w", mail.To, err)
		tracing.TraceErr(span, err)
		return err
	}

	dataWriter, err := client.Data()
	if err != nil {
		err = fmt.Errorf("SMTP DATA command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if _, err = dataWriter.Write(buffer.Bytes()); err != nil {
		err = fmt.Errorf("failed to write mail data: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err = dataWriter.Close(); err != nil {
		err = fmt.Errorf("failed to close data writer: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return client.Quit()
}

func (s *smtpService) dialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   time.Duration(s.warmupConfig.AuthTimeoutSeconds) * time.Second,
		KeepAlive: 30 * time.Second,
	}
}

// applyDeadline bounds the whole exchange by the caller's context deadline,
// so a hung provider cannot stall the cycle worker.
func (s *smtpService) applyDeadline(ctx context.Context, conn net.Conn) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
}

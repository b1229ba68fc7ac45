package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/warmuphero/warmstack/config"
	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/logger"
	"github.com/warmuphero/warmstack/internal/tracing"
)

const (
	operationTimeout = 30 * time.Second
	logoutTimeout    = 5 * time.Second
)

type mailboxService struct {
	log          logger.Logger
	warmupConfig *config.WarmupConfig
}

func NewMailboxService(log logger.Logger, warmupConfig *config.WarmupConfig) interfaces.MailboxService {
	return &mailboxService{
		log:          log,
		warmupConfig: warmupConfig,
	}
}

// mailboxSession wraps a single logged-in IMAP connection. It is owned by one
// cycle worker and is not safe for concurrent use.
type mailboxSession struct {
	log      logger.Logger
	client   *client.Client
	username string
}

func (s *mailboxService) Connect(ctx context.Context, cfg interfaces.MailboxConfig) (interfaces.MailboxSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxService.Connect")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", cfg.Host)
	span.SetTag("port", cfg.Port)
	span.SetTag("tls", cfg.TLS)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	dialer := &net.Dialer{
		Timeout:   cfg.AuthTimeout,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error

	if cfg.TLS {
		tlsConfig := &tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: s.warmupConfig.SkipTLSVerify,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
	}

	loginSpan := opentracing.StartSpan(
		"MailboxService.login",
		opentracing.ChildOf(span.Context()),
	)
	loginSpan.SetTag("username", cfg.Username)

	c.Timeout = cfg.AuthTimeout
	err = c.Login(cfg.Username, cfg.Password)
	if err != nil {
		c.Logout()

		tracing.TraceErr(loginSpan, err)
		loginSpan.Finish()
		return nil, errors.Wrapf(err, "failed to login as %s", cfg.Username)
	}
	loginSpan.Finish()

	// Reset the dial/login timeout; per-operation methods set their own.
	c.Timeout = 0

	s.log.Infof("connected and logged in to %s as %s", serverAddr, cfg.Username)

	return &mailboxSession{
		log:      s.log,
		client:   c,
		username: cfg.Username,
	}, nil
}

func (s *mailboxSession) ListFolders(ctx context.Context) ([]interfaces.FolderInfo, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.ListFolders")
	defer span.Finish()

	s.client.Timeout = operationTimeout
	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)

	go func() {
		done <- s.client.List("", "*", mailboxes)
	}()

	var folders []interfaces.FolderInfo
	for m := range mailboxes {
		folders = append(folders, interfaces.FolderInfo{
			Name:      m.Name,
			Delimiter: m.Delimiter,
		})
	}

	s.client.Timeout = 0
	err := <-done
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "error listing folders")
	}

	span.SetTag("folders.count", len(folders))
	return folders, nil
}

func (s *mailboxSession) Select(ctx context.Context, folder string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.Select")
	defer span.Finish()
	span.SetTag("folder.name", folder)

	s.client.Timeout = operationTimeout
	mbox, err := s.client.Select(folder, false)
	s.client.Timeout = 0

	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "error selecting folder %s", folder)
	}

	span.SetTag("messages.total", mbox.Messages)
	span.SetTag("messages.unseen", mbox.Unseen)
	return nil
}

func (s *mailboxSession) SearchUnseenWithHeader(ctx context.Context, header, value string) ([]uint32, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.SearchUnseenWithHeader")
	defer span.Finish()

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	criteria.Header = textproto.MIMEHeader{}
	criteria.Header.Set(header, value)

	s.client.Timeout = operationTimeout
	uids, err := s.client.UidSearch(criteria)
	s.client.Timeout = 0

	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "error searching for unseen messages")
	}

	span.SetTag("matches", len(uids))
	return uids, nil
}

func (s *mailboxSession) FetchMessage(ctx context.Context, uid uint32) (*interfaces.SpamMessage, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.FetchMessage")
	defer span.Finish()
	span.SetTag("uid", uid)

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)

	s.client.Timeout = operationTimeout
	go func() {
		done <- s.client.UidFetch(seqSet, items, messages)
	}()

	var raw *imap.Message
	for msg := range messages {
		raw = msg
	}

	s.client.Timeout = 0
	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "error fetching message %d", uid)
	}
	if raw == nil {
		err := fmt.Errorf("message %d not found", uid)
		tracing.TraceErr(span, err)
		return nil, err
	}

	body := raw.GetBody(section)
	if body == nil {
		err := fmt.Errorf("message %d has no body section", uid)
		tracing.TraceErr(span, err)
		return nil, err
	}

	envelope, err := enmime.ReadEnvelope(body)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "error parsing message %d", uid)
	}

	headers := make(map[string]string)
	for _, key := range envelope.GetHeaderKeys() {
		headers[strings.ToLower(key)] = envelope.GetHeader(key)
	}

	return &interfaces.SpamMessage{
		UID:     uid,
		From:    envelope.GetHeader("From"),
		Subject: envelope.GetHeader("Subject"),
		Body:    envelope.Text,
		Headers: headers,
	}, nil
}

func (s *mailboxSession) MarkSeenAndFlagged(ctx context.Context, uid uint32) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.MarkSeenAndFlagged")
	defer span.Finish()
	span.SetTag("uid", uid)

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag, imap.FlaggedFlag}

	s.client.Timeout = operationTimeout
	err := s.client.UidStore(seqSet, item, flags, nil)
	s.client.Timeout = 0

	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "error flagging message %d", uid)
	}
	return nil
}

func (s *mailboxSession) MoveToInbox(ctx context.Context, uid uint32) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxSession.MoveToInbox")
	defer span.Finish()
	span.SetTag("uid", uid)

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	s.client.Timeout = operationTimeout
	err := s.client.UidMove(seqSet, "INBOX")
	s.client.Timeout = 0

	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "error moving message %d to inbox", uid)
	}
	return nil
}

// Close logs out with a bounded wait so a dead connection cannot hang the
// worker that owns this session.
func (s *mailboxSession) Close() {
	span := opentracing.StartSpan("MailboxSession.Close")
	defer span.Finish()

	logoutCtx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()

	s.client.Timeout = logoutTimeout
	done := make(chan error, 1)
	go func() {
		done <- s.client.Logout()
		close(done)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Warnf("error during logout for %s: %v", s.username, err)
			tracing.TraceErr(span, err)
		}
	case <-logoutCtx.Done():
		s.log.Warnf("logout timed out for %s", s.username)
		span.SetTag("timeout", true)
	}
}

package interfaces

import (
	"context"
	"time"
)

type MailboxConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	TLS         bool
	AuthTimeout time.Duration
}

type FolderInfo struct {
	Name      string
	Delimiter string
}

// SpamMessage is one spam-folder message matched by the rescue search.
// Headers carries the raw header values needed for the exact-match marker
// check; IMAP HEADER search is substring-based, so callers re-verify.
type SpamMessage struct {
	UID     uint32
	From    string
	Subject string
	Body    string
	Headers map[string]string
}

// MailboxService opens one IMAP session per account per cycle.
type MailboxService interface {
	Connect(ctx context.Context, config MailboxConfig) (MailboxSession, error)
}

// MailboxSession is owned by a single worker; it is never shared and must be
// closed on every exit path.
type MailboxSession interface {
	ListFolders(ctx context.Context) ([]FolderInfo, error)
	Select(ctx context.Context, folder string) error
	SearchUnseenWithHeader(ctx context.Context, header, value string) ([]uint32, error)
	FetchMessage(ctx context.Context, uid uint32) (*SpamMessage, error)
	MarkSeenAndFlagged(ctx context.Context, uid uint32) error
	MoveToInbox(ctx context.Context, uid uint32) error
	Close()
}

package errors

import (
	"net/textproto"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrConnectionTimeout = errors.New("connection timeout")
	ErrNotEnoughAccounts = errors.New("not enough active accounts to warm up")
)

// authFailureSignatures are the credential-rejection phrases seen across SMTP
// and IMAP providers. A generic IMAP "NO" response is deliberately absent:
// it can also mean "folder not found" and must not escalate account status.
var authFailureSignatures = []string{
	"invalid login",
	"invalid credentials",
	"authentication failed",
	"authenticationfailed",
	"username and password not accepted",
	"login failed",
	"auth rejected",
}

// smtpAuthCodePattern matches a 535 SMTP reply code as a token ("535 " or
// "535-" for multiline replies). Incidental digits such as a port in
// "host:5353: i/o timeout" must not match.
var smtpAuthCodePattern = regexp.MustCompile(`(?:^|[\s:])535[ -]`)

// IsAuthenticationError reports whether err is an explicit credential
// rejection, as opposed to a transient transport or protocol failure.
func IsAuthenticationError(err error) bool {
	if err == nil {
		return false
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && protoErr.Code == 535 {
		return true
	}

	msg := strings.ToLower(err.Error())
	if smtpAuthCodePattern.MatchString(msg) {
		return true
	}
	for _, signature := range authFailureSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}
	return false
}

package errors

import (
	"net/textproto"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsAuthenticationError_CredentialRejections(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"smtp 535 code", &textproto.Error{Code: 535, Msg: "5.7.8 Error: authentication failed"}},
		{"535 in message", errors.New("535 5.7.8 Username and Password not accepted")},
		{"invalid login", errors.New("Invalid login: 535-5.7.8 rejected")},
		{"invalid credentials", errors.New("LOGIN failed: invalid credentials (Failure)")},
		{"authenticationfailed", errors.New("NO [AUTHENTICATIONFAILED] Authentication failed.")},
		{"wrapped", errors.Wrap(errors.New("login failed"), "failed to login as a@b.com")},
		{"wrapped 535 reply", errors.New("failed to send: 535 5.7.8 authentication rejected")},
		{"multiline 535 reply", errors.New("server said: 535-5.7.8 not accepted")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, IsAuthenticationError(tc.err))
		})
	}
}

func TestIsAuthenticationError_TransientFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"timeout", errors.New("dial tcp: i/o timeout")},
		{"connection refused", errors.New("connection refused")},
		{"generic imap no", errors.New("NO mailbox unavailable")},
		{"tls failure", errors.New("tls: handshake failure")},
		{"port digits", errors.New("failed to connect to smtp.example.com:5353: i/o timeout")},
		{"message id digits", errors.New("queue rejected message 153553")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, IsAuthenticationError(tc.err))
		})
	}
}

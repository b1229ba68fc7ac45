package imap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmuphero/warmstack/interfaces"
)

func folder(name, delimiter string) interfaces.FolderInfo {
	return interfaces.FolderInfo{Name: name, Delimiter: delimiter}
}

func TestResolveSpamFolder_GmailNested(t *testing.T) {
	folders := []interfaces.FolderInfo{
		folder("INBOX", "/"),
		folder("[Gmail]", "/"),
		folder("[Gmail]/Spam", "/"),
		folder("[Gmail]/Trash", "/"),
	}

	name, found := ResolveSpamFolder(folders)
	require.True(t, found)
	assert.Equal(t, "[Gmail]/Spam", name)
}

func TestResolveSpamFolder_GoogleMailNamespace(t *testing.T) {
	folders := []interfaces.FolderInfo{
		folder("INBOX", "/"),
		folder("[Google Mail]/Junk", "/"),
	}

	name, found := ResolveSpamFolder(folders)
	require.True(t, found)
	assert.Equal(t, "[Google Mail]/Junk", name)
}

func TestResolveSpamFolder_TopLevelSynonyms(t *testing.T) {
	cases := []struct {
		folderName string
	}{
		{"Spam"},
		{"JUNK"},
		{"Bulk"},
		{"Junk E-mail"},
		{"junk email"},
	}

	for _, tc := range cases {
		t.Run(tc.folderName, func(t *testing.T) {
			folders := []interfaces.FolderInfo{
				folder("INBOX", "."),
				folder(tc.folderName, "."),
			}

			name, found := ResolveSpamFolder(folders)
			require.True(t, found)
			assert.Equal(t, tc.folderName, name)
		})
	}
}

func TestResolveSpamFolder_NestedLastSegment(t *testing.T) {
	folders := []interfaces.FolderInfo{
		folder("INBOX", "."),
		folder("INBOX.Sent", "."),
		folder("INBOX.Junk", "."),
	}

	name, found := ResolveSpamFolder(folders)
	require.True(t, found)
	assert.Equal(t, "INBOX.Junk", name)
}

func TestResolveSpamFolder_GmailPreferredOverSynonym(t *testing.T) {
	folders := []interfaces.FolderInfo{
		folder("Spam", "/"),
		folder("[Gmail]/Spam", "/"),
	}

	name, found := ResolveSpamFolder(folders)
	require.True(t, found)
	assert.Equal(t, "[Gmail]/Spam", name)
}

func TestResolveSpamFolder_NotFound(t *testing.T) {
	folders := []interfaces.FolderInfo{
		folder("INBOX", "/"),
		folder("Sent", "/"),
		folder("Drafts", "/"),
		folder("Archive/2024", "/"),
	}

	name, found := ResolveSpamFolder(folders)
	assert.False(t, found)
	assert.Empty(t, name)
}

func TestResolveSpamFolder_EmptyList(t *testing.T) {
	name, found := ResolveSpamFolder(nil)
	assert.False(t, found)
	assert.Empty(t, name)
}

func TestResolveSpamFolder_SubstringDoesNotMatch(t *testing.T) {
	folders := []interfaces.FolderInfo{
		folder("Spamalot", "/"),
		folder("Junkyard", "/"),
	}

	_, found := ResolveSpamFolder(folders)
	assert.False(t, found)
}

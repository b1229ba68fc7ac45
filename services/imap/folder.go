package imap

import (
	"strings"

	"github.com/warmuphero/warmstack/interfaces"
	"github.com/warmuphero/warmstack/internal/utils"
)

// spamFolderSynonyms are the top-level folder names providers use for the
// spam box, matched case-insensitively.
var spamFolderSynonyms = []string{
	"spam",
	"junk",
	"bulk",
	"junk e-mail",
	"junk email",
}

// gmailNamespaces are the parent folders Gmail-style servers nest special
// folders under. Children keep their canonical capitalization.
var gmailNamespaces = []string{"[Gmail]", "[Google Mail]"}

var gmailSpamChildren = []string{"Spam", "Junk"}

// ResolveSpamFolder picks the account's spam folder from the server's folder
// list. Strategies run in order: Gmail-style nested folders, then top-level
// synonyms, then a last-path-segment match for providers that nest the spam
// box under a custom parent. Returns false when no candidate is found.
func ResolveSpamFolder(folders []interfaces.FolderInfo) (string, bool) {
	if name, ok := knownProviderNested(folders); ok {
		return name, true
	}
	if name, ok := topLevelSynonymMatch(folders); ok {
		return name, true
	}
	return nestedSynonymMatch(folders)
}

func knownProviderNested(folders []interfaces.FolderInfo) (string, bool) {
	for _, folder := range folders {
		delimiter := folder.Delimiter
		if delimiter == "" {
			continue
		}
		for _, namespace := range gmailNamespaces {
			for _, child := range gmailSpamChildren {
				if folder.Name == namespace+delimiter+child {
					return folder.Name, true
				}
			}
		}
	}
	return "", false
}

func topLevelSynonymMatch(folders []interfaces.FolderInfo) (string, bool) {
	for _, folder := range folders {
		if isSpamSynonym(folder.Name) {
			return folder.Name, true
		}
	}
	return "", false
}

// nestedSynonymMatch is best effort: it matches the last path segment so
// folders like "INBOX.Junk" resolve without provider-specific knowledge.
func nestedSynonymMatch(folders []interfaces.FolderInfo) (string, bool) {
	for _, folder := range folders {
		if folder.Delimiter == "" {
			continue
		}
		segments := strings.Split(folder.Name, folder.Delimiter)
		if len(segments) < 2 {
			continue
		}
		if isSpamSynonym(segments[len(segments)-1]) {
			return folder.Name, true
		}
	}
	return "", false
}

func isSpamSynonym(name string) bool {
	return utils.IsStringInSlice(strings.ToLower(name), spamFolderSynonyms)
}

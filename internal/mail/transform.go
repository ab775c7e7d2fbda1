package mail

import (
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/google/uuid"
)

// FormatAddress renders a name/address pair the way it appears in a
// header. An empty name yields the bare address.
func FormatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}

// ParseAddressList splits a comma separated header value into
// addresses. Entries that fail to parse are kept verbatim so a sloppy
// header does not lose recipients.
func ParseAddressList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := netmail.ParseAddressList(value)
	if err == nil {
		out := make([]string, 0, len(parsed))
		for _, a := range parsed {
			out = append(out, FormatAddress(a.Name, a.Address))
		}
		return out
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// addrOf extracts the bare address from a formatted entry.
func addrOf(entry string) string {
	if a, err := netmail.ParseAddress(entry); err == nil {
		return strings.ToLower(a.Address)
	}
	return strings.ToLower(strings.TrimSpace(entry))
}

// MatchOwnAddress returns the first of own that occurs in the address
// list, or "" when none does.
func MatchOwnAddress(list []string, own []string) string {
	for _, entry := range list {
		a := addrOf(entry)
		for _, o := range own {
			if a == strings.ToLower(o) {
				return o
			}
		}
	}
	return ""
}

// ClearOwnAddresses drops the caller's own addresses from an address
// list, so group replies do not echo back to the sender.
func ClearOwnAddresses(list []string, own []string) []string {
	ownSet := make(map[string]struct{}, len(own))
	for _, o := range own {
		ownSet[strings.ToLower(o)] = struct{}{}
	}
	var out []string
	for _, entry := range list {
		if _, ok := ownSet[addrOf(entry)]; !ok {
			out = append(out, entry)
		}
	}
	return out
}

// ReplySubject prefixes "Re: " unless the subject already carries it.
func ReplySubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if len(trimmed) >= 3 && strings.EqualFold(trimmed[:3], "re:") {
		return trimmed
	}
	return "Re: " + trimmed
}

// ForwardSubject prefixes "Fwd: " unless the subject already carries it.
func ForwardSubject(subject string) string {
	trimmed := strings.TrimSpace(subject)
	if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "fwd:") {
		return trimmed
	}
	return "Fwd: " + trimmed
}

// QuoteReply prepends an attribution line and quotes every line of the
// original body.
func QuoteReply(fromName, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quoting %s:\n", fromName)
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// QuoteForward wraps the original body in forward markers.
func QuoteForward(fromName, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Forwarded message from %s:\n", fromName)
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// maxReferences caps the References header on replies. When the
// original chain is longer, the first entry and the most recent eight
// are kept.
const maxReferences = 8

// NextReferences builds the References value for a reply to a message
// with the given References header and message id.
func NextReferences(oldRefs, messageID string) string {
	refs := strings.Fields(oldRefs)
	if len(refs) > maxReferences {
		refs = append(refs[:1], refs[len(refs)-maxReferences:]...)
	}
	refs = append(refs, "<"+messageID+">")
	return strings.Join(refs, " ")
}

// NewMessageID produces a fresh RFC 5322 message id scoped to the
// sender's domain.
func NewMessageID(fromAddr string) string {
	domain := "localhost"
	if _, d, ok := strings.Cut(fromAddr, "@"); ok && d != "" {
		domain = d
	}
	return fmt.Sprintf("%s@%s", uuid.NewString(), domain)
}

package notifications

import "fmt"

type Kind int

const (
	KindShareReceived Kind = iota
	KindShareAccepted
	KindShareDeclined
	KindShareUpdated
)

func (k Kind) String() string {
	switch k {
	case KindShareReceived:
		return "share_received"
	case KindShareAccepted:
		return "share_accepted"
	case KindShareDeclined:
		return "share_declined"
	case KindShareUpdated:
		return "share_updated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// toSender reports whether the notification goes to the share's sender
// rather than its recipient.
func (k Kind) toSender() bool {
	return k == KindShareAccepted || k == KindShareDeclined
}

func (k Kind) text(actor, title string) (string, string) {
	switch k {
	case KindShareReceived:
		return "New shared event", fmt.Sprintf("%s shared %q with you", actor, title)
	case KindShareAccepted:
		return "Share accepted", fmt.Sprintf("%s accepted %q", actor, title)
	case KindShareDeclined:
		return "Share declined", fmt.Sprintf("%s declined %q", actor, title)
	case KindShareUpdated:
		return "Shared event changed", fmt.Sprintf("%s updated %q", actor, title)
	default:
		return "", ""
	}
}

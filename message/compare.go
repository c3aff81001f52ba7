package message

import (
	"slices"
	"strings"
)

// Compare totally orders two messages for timeline reconstruction: first by
// timestamp at second resolution, then byte-wise by sender identifier.
// Sender identifiers are unique per contact, so distinct senders never tie;
// two messages from the same sender within the same second compare equal,
// which is an accepted limitation of the order.
func Compare(a, b Message) int {
	at, bt := a.Timestamp().Unix(), b.Timestamp().Unix()
	switch {
	case at < bt:
		return -1
	case at > bt:
		return 1
	}

	return strings.Compare(a.SenderID(), b.SenderID())
}

// SortTimeline sorts messages in place into conversation display order,
// merging out-of-order arrivals. The sort is stable so same-sender,
// same-second messages keep their arrival order.
func SortTimeline(messages []Message) {
	slices.SortStableFunc(messages, Compare)
}

package message

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// Delimiter separates wire fields. U+001D, the ASCII group separator,
	// is reserved and may never appear in identifiers or content.
	Delimiter = '\x1d'

	// MinHeaderLen is the shortest possible header: two leading delimiters,
	// one-character timestamp, conversation and sender identifiers, the flag
	// and three inner delimiters.
	MinHeaderLen = 9

	// wireFieldCount is the logical field count of a wire line: timestamp,
	// conversation id, sender id, command flag and content.
	wireFieldCount = 5
)

const delimiterString = string(Delimiter)

var (
	headerPattern  = regexp.MustCompile(`^\x1d\x1d[0-9a-f]{1,16}\x1d[^\x1d\r\n]+\x1d[^\x1d\r\n]+\x1d[01]$`)
	contentPattern = regexp.MustCompile(`^[^\x1d\r\n]+$`)
	idPattern      = regexp.MustCompile(`^[^\x1d\r\n]+$`)
)

// Limits carries the collaborator-supplied validation bounds. The
// configuration subsystem owns their defaulting and persistence; the codec
// only reads them.
type Limits struct {
	// MaxContentLen bounds content length in characters.
	MaxContentLen int
	// MaxHeaderLen bounds the serialized header length in characters.
	MaxHeaderLen int
}

// DefaultLimits returns the stock validation bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxContentLen: 4096,
		MaxHeaderLen:  256,
	}
}

func encodeWire(timestamp time.Time, conversationID, senderID string, command bool, content string) string {
	flag := "0"
	if command {
		flag = "1"
	}

	return delimiterString + delimiterString + strings.Join([]string{
		strconv.FormatInt(timestamp.Unix(), 16),
		conversationID,
		senderID,
		flag,
		content,
	}, delimiterString)
}

func validateContent(content string, limits Limits) error {
	length := utf8.RuneCountInString(content)
	if length == 0 {
		return formatErrorf("content is empty")
	}
	if length > limits.MaxContentLen {
		return formatErrorf("content length %d exceeds limit %d", length, limits.MaxContentLen)
	}
	if !contentPattern.MatchString(content) {
		return formatErrorf("content contains reserved characters")
	}
	return nil
}

func validateHeader(header string, limits Limits) error {
	length := utf8.RuneCountInString(header)
	if length < MinHeaderLen {
		return formatErrorf("header length %d below minimum %d", length, MinHeaderLen)
	}
	if length > limits.MaxHeaderLen {
		return formatErrorf("header length %d exceeds limit %d", length, limits.MaxHeaderLen)
	}
	if !headerPattern.MatchString(header) {
		return formatErrorf("header is malformed")
	}
	return nil
}

func validateID(name, id string) error {
	if id == "" {
		return formatErrorf("%s is empty", name)
	}
	if !idPattern.MatchString(id) {
		return formatErrorf("%s contains reserved characters", name)
	}
	return nil
}

// Decode parses and validates a canonical wire line into a plaintext message.
// The line is either fully valid or rejected with a FormatError naming the
// first violated bound; no partially decoded message is ever returned.
func Decode(line string, limits Limits) (*Plain, error) {
	split := strings.LastIndexByte(line, Delimiter)
	if split < 0 {
		return nil, formatErrorf("missing field delimiter")
	}

	header := line[:split]
	content := line[split+1:]

	if err := validateHeader(header, limits); err != nil {
		return nil, err
	}
	if err := validateContent(content, limits); err != nil {
		return nil, err
	}

	// The two leading delimiters split into two empty segments ahead of the
	// five logical fields.
	parts := strings.Split(line, delimiterString)
	if len(parts) != wireFieldCount+2 || parts[0] != "" || parts[1] != "" {
		return nil, formatErrorf("expected %d fields, got %d", wireFieldCount, len(parts)-2)
	}

	seconds, err := strconv.ParseInt(parts[2], 16, 64)
	if err != nil {
		return nil, formatErrorf("timestamp %q is not valid hexadecimal", parts[2])
	}

	return &Plain{
		content:        content,
		conversationID: parts[3],
		senderID:       parts[4],
		command:        parts[5] == "1",
		timestamp:      time.Unix(seconds, 0),
		databaseID:     UnassignedDatabaseID,
		limits:         limits,
	}, nil
}

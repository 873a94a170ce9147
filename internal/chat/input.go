package chat

import (
	"strconv"
	"strings"
)

// Kind is the class of a user message.
type Kind int

const (
	KindEmpty Kind = iota
	KindReset
	KindGreeting
	KindPincode
	KindNumber
	KindKeyword
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindReset:
		return "reset"
	case KindGreeting:
		return "greeting"
	case KindPincode:
		return "pincode"
	case KindNumber:
		return "number"
	case KindKeyword:
		return "keyword"
	}
	return "text"
}

// Keywords understood outside the numbered menus.
const (
	KeywordNearby  = "nearby"
	KeywordAppoint = "appoint"
)

var (
	resetTokens    = map[string]bool{"menu": true, "main menu": true, "back": true, "home": true, "0": true}
	greetingTokens = map[string]bool{"hi": true, "hello": true, "namaste": true, "start": true, "hey": true}
	keywordTokens  = map[string]bool{KeywordNearby: true, KeywordAppoint: true}
)

// Input is a classified user message.
type Input struct {
	Kind Kind
	// Raw is the trimmed message with its original casing.
	Raw string
	// Text is Raw lower-cased.
	Text string
	// Number is set for KindNumber and KindPincode.
	Number int
}

// Numeric reports whether the message is made of digits only.
func (in Input) Numeric() bool {
	return in.Kind == KindNumber || in.Kind == KindPincode
}

// Classify normalizes a raw message and decides its class. It has no side
// effects and does not depend on session state.
func Classify(raw string) Input {
	trimmed := strings.TrimSpace(raw)
	in := Input{Raw: trimmed, Text: strings.ToLower(trimmed)}

	switch {
	case in.Text == "":
		in.Kind = KindEmpty
	case resetTokens[in.Text]:
		in.Kind = KindReset
	case greetingTokens[in.Text]:
		in.Kind = KindGreeting
	case keywordTokens[in.Text]:
		in.Kind = KindKeyword
	case allDigits(in.Text):
		in.Kind = KindNumber
		if IsPincode(in.Text) {
			in.Kind = KindPincode
		}
		n, err := strconv.Atoi(in.Text)
		if err != nil {
			// Too many digits to be a menu choice
			n = -1
		}
		in.Number = n
	default:
		in.Kind = KindText
	}
	return in
}

// IsPincode reports whether s is exactly six ASCII digits.
func IsPincode(s string) bool {
	return len(s) == 6 && allDigits(s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

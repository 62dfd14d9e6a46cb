package message

import "unicode/utf8"

// Message is a post authored by an account. PostedBy references an account
// that existed at creation time; the text is the only mutable field.
type Message struct {
	ID          int64  `json:"message_id"`
	PostedBy    int64  `json:"posted_by"`
	Text        string `json:"message_text"`
	PostedEpoch int64  `json:"time_posted_epoch"`
}

// MaxTextLength bounds the message text in characters; the empty string is
// also rejected.
const MaxTextLength = 255

// TextValid reports whether text satisfies the length contract [1,255],
// counted in characters to match the VARCHAR(255) column.
func TextValid(text string) bool {
	n := utf8.RuneCountInString(text)
	return n >= 1 && n <= MaxTextLength
}

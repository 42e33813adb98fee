package conversation

import "errors"

var (
	ErrUnknownPayload = errors.New("unknown conversation payload")
	ErrNoConversation = errors.New("no active conversation")
)

package heroproto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var waitHintRe = regexp.MustCompile(`Please wait (\d+) seconds?`)

// ParseMessageType returns the "type" field of a frame, empty when the frame has none.
func ParseMessageType(msg []byte) (string, error) {
	var r struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &r); err != nil {
		return "", fmt.Errorf("%w: %v", ErrorMalformedFrame, err)
	}
	return r.Type, nil
}

func ParseMessage[T any](msg []byte) (*T, error) {
	var r T
	if err := json.Unmarshal(msg, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorMalformedFrame, err)
	}
	return &r, nil
}

// NewMessage encodes an outbound frame. Frames without a "type" are rejected.
func NewMessage(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	msgType, err := ParseMessageType(data)
	if err != nil {
		return nil, err
	}
	if msgType == "" {
		return nil, ErrorMissingType
	}
	return data, nil
}

// NewChatMessage builds a chat_message request. An empty username is left off the wire.
func NewChatMessage(username, text string) *ChatMessageRequest {
	return &ChatMessageRequest{
		Type:     MSG_CHAT,
		Username: username,
		Message:  text,
	}
}

// ServerResponse is a server frame kept opaque, only its type is looked at.
type ServerResponse struct {
	Raw  json.RawMessage
	Type string
}

func ParseServerResponse(msg []byte) (*ServerResponse, error) {
	if !json.Valid(msg) {
		return nil, ErrorMalformedFrame
	}
	r := &ServerResponse{
		Raw: append(json.RawMessage(nil), msg...),
	}
	// Non-object frames are valid json but carry no type.
	if t, err := ParseMessageType(msg); err == nil {
		r.Type = t
	}
	return r, nil
}

// String returns the frame as compact json.
func (r *ServerResponse) String() string {
	var b bytes.Buffer
	if err := json.Compact(&b, r.Raw); err != nil {
		return string(r.Raw)
	}
	return b.String()
}

// ParseWaitSeconds extracts N from a rate limit error like "Please wait N seconds before ...".
func ParseWaitSeconds(text string) (int, error) {
	m := waitHintRe.FindStringSubmatch(text)
	if m == nil {
		return 0, ErrorNoWaitHint
	}
	return strconv.Atoi(m[1])
}

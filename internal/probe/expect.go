package probe

import (
	"fmt"

	"heroprobe/heroproto"
)

// Expectation describes the reply a step should get.
type Expectation struct {
	Name  string
	check func(resp *heroproto.ServerResponse) error
}

// Check returns nil when resp matches.
func (e Expectation) Check(resp *heroproto.ServerResponse) error {
	if e.check == nil {
		return nil
	}
	return e.check(resp)
}

func expectType(resp *heroproto.ServerResponse, want string) error {
	if resp.Type != want {
		return fmt.Errorf("expected %q reply, got %q", want, resp.Type)
	}
	return nil
}

func ExpectInit() Expectation {
	return Expectation{
		Name: "init snapshot",
		check: func(resp *heroproto.ServerResponse) error {
			return expectType(resp, heroproto.MSG_INIT)
		},
	}
}

// ExpectAccepted matches the broadcast of the chat message just sent.
func ExpectAccepted(username, text string) Expectation {
	return Expectation{
		Name:  "accepted",
		check: acceptedAs(username, text),
	}
}

// ExpectAnonymous matches a chat broadcast attributed to the placeholder sender.
func ExpectAnonymous(text string) Expectation {
	return Expectation{
		Name:  "anonymous accepted",
		check: acceptedAs(heroproto.AnonymousUsername, text),
	}
}

func acceptedAs(username, text string) func(*heroproto.ServerResponse) error {
	return func(resp *heroproto.ServerResponse) error {
		if err := expectType(resp, heroproto.MSG_NEW_CHAT); err != nil {
			return err
		}
		msg, err := heroproto.ParseMessage[heroproto.ChatMessageBroadcast](resp.Raw)
		if err != nil {
			return err
		}
		if msg.Message.Username != username {
			return fmt.Errorf("expected username %q, got %q", username, msg.Message.Username)
		}
		if msg.Message.Message != text {
			return fmt.Errorf("expected message %q, got %q", text, msg.Message.Message)
		}
		return nil
	}
}

func ExpectRateLimited() Expectation {
	return Expectation{
		Name: "rate limited",
		check: func(resp *heroproto.ServerResponse) error {
			return expectType(resp, heroproto.MSG_ERROR)
		},
	}
}

// ExpectBroadcast matches any frame of the given type.
func ExpectBroadcast(msgType string) Expectation {
	return Expectation{
		Name: msgType,
		check: func(resp *heroproto.ServerResponse) error {
			return expectType(resp, msgType)
		},
	}
}

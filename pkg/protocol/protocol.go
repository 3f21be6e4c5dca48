// Package protocol implements the hub line format
//
//	TO:VERB:NOUN[:ARG...]:FROM
//
// and reports fatigue verdicts to the hub over a websocket.
package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const Broadcast = "ALL"

var (
	tokenRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	hexIDRe = regexp.MustCompile(`^[0-9A-F]{2}$`)
)

func isToken(s string) bool {
	return tokenRe.MatchString(s)
}

func isHexID(s string) bool {
	return hexIDRe.MatchString(strings.ToUpper(s))
}

type Message struct {
	To   string
	Verb string
	Noun string
	Args []string
	From string
}

func (m *Message) String() string {
	parts := make([]string, 0, 4+len(m.Args))
	parts = append(parts, m.To, m.Verb, m.Noun)
	parts = append(parts, m.Args...)
	parts = append(parts, m.From)
	return strings.Join(parts, ":")
}

// Validate checks that every field is a legal token.
func (m *Message) Validate() error {
	if !isToken(m.To) && !isHexID(m.To) && m.To != Broadcast {
		return fmt.Errorf("invalid TO token: %q", m.To)
	}
	if !isToken(m.From) && !isHexID(m.From) {
		return fmt.Errorf("invalid FROM token: %q", m.From)
	}
	if !isToken(m.Noun) || !isToken(m.Verb) {
		return fmt.Errorf("invalid NOUN/VERB: %q %q", m.Noun, m.Verb)
	}
	for i, a := range m.Args {
		if !isToken(a) {
			return fmt.Errorf("invalid ARG[%d]: %q", i, a)
		}
	}
	return nil
}

func Parse(line string) (*Message, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return nil, errors.New("empty message")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		// frames are single-line
		return nil, fmt.Errorf("invalid whitespace present")
	}
	parts := strings.Split(s, ":")
	if len(parts) < 4 {
		return nil, fmt.Errorf("too few fields: got %d, want >= 4", len(parts))
	}

	msg := &Message{
		To:   parts[0],
		Verb: strings.ToUpper(parts[1]),
		Noun: strings.ToUpper(parts[2]),
		Args: append([]string(nil), parts[3:len(parts)-1]...),
		From: parts[len(parts)-1],
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

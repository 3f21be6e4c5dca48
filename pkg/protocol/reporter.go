package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fatigue/internal/fatigue"
)

// Reporter broadcasts each verdict to the hub as
// ALL:SET:FATIGUE:<LEVEL>:<SCORE>:<SHARD>.
type Reporter struct {
	URL     string
	Shard   string
	Timeout time.Duration
}

var _ fatigue.Notifier = (*Reporter)(nil)

func VerdictMessage(shard string, v fatigue.Verdict) *Message {
	return &Message{
		To:   Broadcast,
		Verb: "SET",
		Noun: "FATIGUE",
		Args: []string{strings.ToUpper(v.Level.String()), strconv.Itoa(v.Score)},
		From: shard,
	}
}

func (r *Reporter) Notify(ctx context.Context, v fatigue.Verdict) error {
	msg := VerdictMessage(r.Shard, v)
	if err := msg.Validate(); err != nil {
		return err
	}

	web, err := DialWebSocket(ctx, r.URL, r.Timeout)
	if err != nil {
		return fmt.Errorf("dial hub %s: %w", r.URL, err)
	}
	defer web.Close()

	if err := web.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("report verdict: %w", err)
	}
	return nil
}

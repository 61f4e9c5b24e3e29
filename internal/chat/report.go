package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/lu-zhengda/aliases/internal/domain"
)

// TimeLayout formats name-change timestamps: full month, day, year and
// 24-hour time.
const TimeLayout = "January 02 2006 15:04:05"

// Fixed player-facing messages.
const (
	MsgInvalidUsername = "Invalid username"
	MsgIdentityFailure = "Something went wrong while looking up that username"
	MsgHistoryFailure  = "Something went wrong while parsing username history"
	MsgNoPrevious      = "No previous usernames"
	MsgOriginal        = "Original username"
	msgHeader          = "Username history for "
)

// Order controls how previous names are listed under the current one.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// ParseOrder accepts "oldest-first" and "newest-first".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "oldest-first":
		return OldestFirst, nil
	case "newest-first":
		return NewestFirst, nil
	}
	return OldestFirst, fmt.Errorf("unknown order %q (use oldest-first or newest-first)", s)
}

func (o Order) String() string {
	if o == NewestFirst {
		return "newest-first"
	}
	return "oldest-first"
}

// ReportOptions tunes how a report is rendered.
type ReportOptions struct {
	Location *time.Location
	Order    Order
}

// FormatTime renders t with TimeLayout in loc (UTC when nil).
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimeLayout)
}

// ProviderErrorMessage is the text shown when the identity service answers
// with an unexpected status.
func ProviderErrorMessage(code int) string {
	return fmt.Sprintf("Could not fetch username history; HTTP %d", code)
}

// Report turns a lookup result into the message shown to the player.
func Report(res domain.LookupResult, opts ReportOptions) Component {
	switch res.Outcome {
	case domain.OutcomeReport:
		return History(res.History, opts)
	case domain.OutcomeInvalidUsername:
		return Text(MsgInvalidUsername).WithColor(Red)
	case domain.OutcomeProviderError:
		return Text(ProviderErrorMessage(res.StatusCode)).WithColor(DarkRed)
	case domain.OutcomeIdentityFailure:
		return Text(MsgIdentityFailure).WithColor(DarkRed).WithBold(true)
	default:
		return Text(MsgHistoryFailure).WithColor(DarkRed).WithBold(true)
	}
}

// History renders the header, separator and previous names. Every previous
// name ends with a newline.
func History(h domain.History, opts ReportOptions) Component {
	current := h.Current.Name
	separator := Text("\n" + strings.Repeat("-", domain.SeparatorWidth(current)) + "\n").WithColor(Yellow)

	msg := Text(msgHeader).WithColor(White).Append(
		nameEntry(h.Current, opts.Location).WithColor(Gold),
		separator,
	)

	if !h.HasPrevious() {
		return msg.Append(Text(MsgNoPrevious).WithColor(DarkGray))
	}

	previous := h.Previous
	if opts.Order == NewestFirst {
		previous = h.NewestFirst()
	}

	entries := make([]Component, 0, 2*len(previous))
	for _, rec := range previous {
		entries = append(entries, nameEntry(rec, opts.Location), Text("\n"))
	}
	return msg.Append(entries...)
}

// nameEntry styles one name with its change time, or the original-name
// notice, as hover text.
func nameEntry(rec domain.NameRecord, loc *time.Location) Component {
	if rec.IsOriginal() {
		return Text(rec.Name).
			WithColor(Gray).
			WithHover(Text(MsgOriginal).WithColor(Gray))
	}
	return Text(rec.Name).
		WithColor(White).
		WithHover(Text(FormatTime(*rec.ChangedAt, loc)).WithColor(DarkPurple))
}

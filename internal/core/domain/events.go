package domain

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// Event names, one per emitted engine event.
const (
	EventTypeRFQCommitted      = "RFQ_COMMITTED"
	EventTypeRFQRevealed       = "RFQ_REVEALED"
	EventTypeQuoteCommitted    = "QUOTE_COMMITTED"
	EventTypeQuoteRevealed     = "QUOTE_REVEALED"
	EventTypeBestQuoteSelected = "BEST_QUOTE_SELECTED"
	EventTypeFunded            = "FUNDED"
	EventTypeWithdrawn         = "WITHDRAWN"
	EventTypeFillCommitted     = "FILL_COMMITTED"
)

// Event is the closed set of engine event variants. Each carries a fixed,
// typed payload so that consumers pattern-match exhaustively instead of
// probing untyped fields.
type Event interface {
	EventType() string
}

// RFQCommittedEvent is emitted when a taker commits a new intent.
type RFQCommittedEvent struct {
	Id       uint64 `json:"rfq_id"`
	Owner    string `json:"owner"`
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	Status   int    `json:"status"`
	Expiry   int64  `json:"expiry"`
}

// RFQRevealedEvent is emitted when a taker discloses the trade parameters.
type RFQRevealedEvent struct {
	Id             uint64       `json:"rfq_id"`
	AmountIn       *uint256.Int `json:"amount_in"`
	MaxSlippageBps uint64       `json:"max_slippage_bps"`
}

// QuoteCommittedEvent is emitted when a maker commits a sealed quote.
type QuoteCommittedEvent struct {
	RFQId      uint64 `json:"rfq_id"`
	Maker      string `json:"maker"`
	Commitment string `json:"commitment"`
	Index      int    `json:"index"`
}

// QuoteRevealedEvent is emitted when a maker discloses a quote.
type QuoteRevealedEvent struct {
	RFQId    uint64       `json:"rfq_id"`
	Maker    string       `json:"maker"`
	QuoteOut *uint256.Int `json:"quote_out"`
}

// BestQuoteSelectedEvent is emitted when the winner draw completes. The index
// refers to the position within the valid subset.
type BestQuoteSelectedEvent struct {
	RFQId       uint64       `json:"rfq_id"`
	Maker       string       `json:"maker"`
	QuoteOut    *uint256.Int `json:"quote_out"`
	WinnerIndex int          `json:"winner_index"`
}

// FundedEvent is emitted when custody of an external asset is taken.
type FundedEvent struct {
	Account string       `json:"account"`
	Token   string       `json:"token"`
	Amount  *uint256.Int `json:"amount"`
}

// WithdrawnEvent is emitted when custody of an external asset is released.
type WithdrawnEvent struct {
	Account string       `json:"account"`
	Token   string       `json:"token"`
	Amount  *uint256.Int `json:"amount"`
}

// FillCommittedEvent is emitted when the atomic swap settles an RFQ.
type FillCommittedEvent struct {
	RFQId    uint64       `json:"rfq_id"`
	Taker    string       `json:"taker"`
	Maker    string       `json:"maker"`
	AmountIn *uint256.Int `json:"amount_in"`
	QuoteOut *uint256.Int `json:"quote_out"`
}

func (e RFQCommittedEvent) EventType() string      { return EventTypeRFQCommitted }
func (e RFQRevealedEvent) EventType() string       { return EventTypeRFQRevealed }
func (e QuoteCommittedEvent) EventType() string    { return EventTypeQuoteCommitted }
func (e QuoteRevealedEvent) EventType() string     { return EventTypeQuoteRevealed }
func (e BestQuoteSelectedEvent) EventType() string { return EventTypeBestQuoteSelected }
func (e FundedEvent) EventType() string            { return EventTypeFunded }
func (e WithdrawnEvent) EventType() string         { return EventTypeWithdrawn }
func (e FillCommittedEvent) EventType() string     { return EventTypeFillCommitted }

// EventRecord is the persisted form of an event. The sequence number is
// assigned by the repository and is strictly monotonic, which is what makes
// the event log resumable from a caller-held cursor.
type EventRecord struct {
	Seq       uint64
	Type      string
	Payload   []byte
	Timestamp int64
}

// NewEventRecord serializes a typed event into its persisted form.
func NewEventRecord(event Event, timestamp int64) (*EventRecord, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &EventRecord{
		Type:      event.EventType(),
		Payload:   payload,
		Timestamp: timestamp,
	}, nil
}

// DecodeEvent turns a persisted record back into its typed variant.
func DecodeEvent(record *EventRecord) (Event, error) {
	var (
		event Event
		err   error
	)
	switch record.Type {
	case EventTypeRFQCommitted:
		e := RFQCommittedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeRFQRevealed:
		e := RFQRevealedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeQuoteCommitted:
		e := QuoteCommittedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeQuoteRevealed:
		e := QuoteRevealedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeBestQuoteSelected:
		e := BestQuoteSelectedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeFunded:
		e := FundedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeWithdrawn:
		e := WithdrawnEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	case EventTypeFillCommitted:
		e := FillCommittedEvent{}
		err = json.Unmarshal(record.Payload, &e)
		event = e
	default:
		return nil, fmt.Errorf("unknown event type %s", record.Type)
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

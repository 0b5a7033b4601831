package health

import (
	"encoding/json"
	"time"
)

// Outcome is the result of querying one tracker. It is a success when Err is
// empty and a failure otherwise.
type Outcome struct {
	Tracker string

	// Success fields.
	Seeds        int
	Peers        int
	Downloads    int
	ResponseTime time.Duration

	// Err is the failure message: the scrape error, or MessageTimedOut.
	Err string
}

// OK reports whether the tracker answered.
func (o Outcome) OK() bool {
	return o.Err == ""
}

// TimedOut reports whether the tracker failed by timing out.
func (o Outcome) TimedOut() bool {
	return o.Err == MessageTimedOut
}

// outcomeJSON is the wire form. A success carries all four numeric fields
// (zeros included); a failure carries only tracker and error.
type outcomeJSON struct {
	Tracker      string `json:"tracker"`
	Seeds        *int   `json:"seeds,omitempty"`
	Peers        *int   `json:"peers,omitempty"`
	Downloads    *int   `json:"downloads,omitempty"`
	ResponseTime *int64 `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.OK() {
		return json.Marshal(outcomeJSON{Tracker: o.Tracker, Error: o.Err})
	}
	ms := o.ResponseTime.Milliseconds()
	return json.Marshal(outcomeJSON{
		Tracker:      o.Tracker,
		Seeds:        &o.Seeds,
		Peers:        &o.Peers,
		Downloads:    &o.Downloads,
		ResponseTime: &ms,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var w outcomeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*o = Outcome{Tracker: w.Tracker, Err: w.Error}
	if w.Error != "" {
		return nil
	}
	if w.Seeds != nil {
		o.Seeds = *w.Seeds
	}
	if w.Peers != nil {
		o.Peers = *w.Peers
	}
	if w.Downloads != nil {
		o.Downloads = *w.Downloads
	}
	if w.ResponseTime != nil {
		o.ResponseTime = time.Duration(*w.ResponseTime) * time.Millisecond
	}
	return nil
}

// Report is the result of one health check. It is shared by every consumer
// of the check and must be treated as read-only.
type Report struct {
	// Seeds is the rounded mean seeder count over successful trackers.
	Seeds int `json:"seeds"`

	// Peers is the rounded mean leecher count over successful trackers.
	Peers int `json:"peers"`

	// Extra has one Outcome per tracker, in completion order.
	Extra []Outcome `json:"extra"`
}

// Successes returns the number of trackers that answered.
func (r Report) Successes() int {
	n := 0
	for _, o := range r.Extra {
		if o.OK() {
			n++
		}
	}
	return n
}

// Timeouts returns the number of trackers that timed out.
func (r Report) Timeouts() int {
	n := 0
	for _, o := range r.Extra {
		if o.TimedOut() {
			n++
		}
	}
	return n
}

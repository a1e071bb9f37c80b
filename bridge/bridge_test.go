package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// captureNotifier records every notification it receives.
type captureNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (c *captureNotifier) Notify(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, n)
	return nil
}

func (c *captureNotifier) all() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notes))
	copy(out, c.notes)
	return out
}

func TestParse_TextChange(t *testing.T) {
	n := Notification{Channel: ChanTextChange, Payload: []byte(`{"html":"<p>x</p>"}`)}
	v, err := Parse(n)
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := v.(TextChange)
	if !ok {
		t.Fatalf("Parse: got %T, want TextChange", v)
	}
	if tc.HTML != "<p>x</p>" {
		t.Errorf("HTML: got %q", tc.HTML)
	}
}

func TestParse_DecorationState_BothShapes(t *testing.T) {
	structured := Notification{Channel: ChanDecorationState,
		Payload: []byte(`{"formats":["bold","italic"],"formatBlock":"blockquote"}`)}
	v, err := Parse(structured)
	if err != nil {
		t.Fatal(err)
	}
	ds := v.(DecorationState)
	if len(ds.Formats) != 2 || ds.FormatBlock != "blockquote" {
		t.Errorf("structured: got %+v", ds)
	}

	joined := Notification{Channel: ChanDecorationState, Payload: []byte(`"bold, italic,underline"`)}
	v, err = Parse(joined)
	if err != nil {
		t.Fatal(err)
	}
	ds = v.(DecorationState)
	if len(ds.Formats) != 3 || ds.Formats[2] != "underline" {
		t.Errorf("comma-joined: got %+v", ds)
	}
}

func TestParse_MalformedAndUnknown(t *testing.T) {
	if _, err := Parse(Notification{Channel: ChanTextChange, Payload: []byte(`{broken`)}); err == nil {
		t.Error("Parse: malformed payload should fail")
	}
	if _, err := Parse(Notification{Channel: "mystery", Payload: []byte(`{}`)}); err == nil {
		t.Error("Parse: unknown channel should fail")
	}
}

func TestCoalescer_CollapsesBurst(t *testing.T) {
	sink := &captureNotifier{}
	c := NewCoalescer(sink, nil, WithWindow(ChanTextChange, 30*time.Millisecond))

	for _, h := range []string{"a", "ab", "abc", "abcd", "abcde"} {
		c.Publish(ChanTextChange, MarshalPayload(TextChange{HTML: h}))
	}

	time.Sleep(80 * time.Millisecond)

	notes := sink.all()
	if len(notes) != 1 {
		t.Fatalf("notifications: got %d, want 1", len(notes))
	}
	var tc TextChange
	if err := json.Unmarshal(notes[0].Payload, &tc); err != nil {
		t.Fatal(err)
	}
	if tc.HTML != "abcde" {
		t.Errorf("delivered value: got %q, want the final one", tc.HTML)
	}
}

func TestCoalescer_SuppressesUnchangedValue(t *testing.T) {
	sink := &captureNotifier{}
	c := NewCoalescer(sink, nil, WithWindow(ChanDecorationState, 20*time.Millisecond))

	payload := MarshalPayload(DecorationState{Formats: []string{"bold"}})
	c.Publish(ChanDecorationState, payload)
	time.Sleep(50 * time.Millisecond)
	c.Publish(ChanDecorationState, payload)
	time.Sleep(50 * time.Millisecond)

	if got := len(sink.all()); got != 1 {
		t.Fatalf("notifications: got %d, want 1 (unchanged value suppressed)", got)
	}
}

func TestCoalescer_ImmediateChannelNeverDeduped(t *testing.T) {
	sink := &captureNotifier{}
	c := NewCoalescer(sink, nil)

	payload := MarshalPayload(TextChange{HTML: "same"})
	c.Publish(ChanHTML, payload)
	c.Publish(ChanHTML, payload)

	if got := len(sink.all()); got != 2 {
		t.Fatalf("notifications: got %d, want 2 (read results always answer)", got)
	}
}

func TestCoalescer_SeqMonotonic(t *testing.T) {
	sink := &captureNotifier{}
	c := NewCoalescer(sink, nil)

	c.Publish(ChanMentionHide, nil)
	c.Publish(ChanMentionHide, nil)
	c.Publish(ChanMentionHide, nil)

	notes := sink.all()
	for i := 1; i < len(notes); i++ {
		if notes[i].Seq <= notes[i-1].Seq {
			t.Fatalf("seq not monotonic: %d then %d", notes[i-1].Seq, notes[i].Seq)
		}
	}
}

func TestRouter_FansOut(t *testing.T) {
	var got []string
	mk := func(name string) Listener {
		return listenerFunc(func(_ context.Context, n Notification) {
			got = append(got, name+":"+n.Channel)
		})
	}
	r := NewRouter(nil, mk("a"))
	r.Attach(mk("b"))

	if err := r.Notify(context.Background(), Notification{Channel: ChanMentionHide}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a:onMentionHide" || got[1] != "b:onMentionHide" {
		t.Fatalf("fan-out: got %v", got)
	}
}

type listenerFunc func(context.Context, Notification)

func (f listenerFunc) HandleNotification(ctx context.Context, n Notification) { f(ctx, n) }

// flakyInvoker fails with ErrUnavailable a fixed number of times.
type flakyInvoker struct {
	failures int
	calls    int
}

func (f *flakyInvoker) Invoke(context.Context, Command) error {
	f.calls++
	if f.calls <= f.failures {
		return ErrUnavailable
	}
	return nil
}

func TestRetryInvoker_RecoversFromUnavailable(t *testing.T) {
	flaky := &flakyInvoker{failures: 2}
	ri := NewRetryInvoker(flaky, 5, time.Millisecond, nil)

	if err := ri.Invoke(context.Background(), Command{Name: "setBold"}); err != nil {
		t.Fatalf("Invoke: got %v, want recovery", err)
	}
	if flaky.calls != 3 {
		t.Errorf("calls: got %d, want 3", flaky.calls)
	}
}

func TestRetryInvoker_BudgetExhausted(t *testing.T) {
	flaky := &flakyInvoker{failures: 100}
	ri := NewRetryInvoker(flaky, 3, time.Millisecond, nil)

	err := ri.Invoke(context.Background(), Command{Name: "setBold"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Invoke: got %v, want wrapped ErrUnavailable", err)
	}
}

type failingInvoker struct{ err error }

func (f failingInvoker) Invoke(context.Context, Command) error { return f.err }

func TestRetryInvoker_PermanentErrorNotRetried(t *testing.T) {
	perm := errors.New("boom")
	ri := NewRetryInvoker(failingInvoker{err: perm}, 5, time.Millisecond, nil)

	if err := ri.Invoke(context.Background(), Command{Name: "undo"}); !errors.Is(err, perm) {
		t.Fatalf("Invoke: got %v, want the permanent error unretried", err)
	}
}

func TestCommandArg(t *testing.T) {
	cmd := Command{Name: "setHeading", Args: []any{3, "x"}}
	var level int
	if err := cmd.Arg(0, &level); err != nil {
		t.Fatal(err)
	}
	if level != 3 {
		t.Errorf("Arg: got %d, want 3", level)
	}
	var missing string
	if err := cmd.Arg(5, &missing); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Arg out of range: got %v", err)
	}
}

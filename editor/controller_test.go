package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"editbridge/bridge"
	"editbridge/entity"
)

// fakeSurface implements bridge.Invoker and answers read commands the way
// the real surface does: by notifying the controller on the result channel.
type fakeSurface struct {
	mu       sync.Mutex
	commands []bridge.Command
	ctrl     *Controller
	html     string
	mentions []entity.Mention
	silent   bool // swallow read commands without answering
}

func (f *fakeSurface) Invoke(ctx context.Context, cmd bridge.Command) error {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	html := f.html
	mentions := f.mentions
	silent := f.silent
	f.mu.Unlock()

	if silent {
		return nil
	}
	switch cmd.Name {
	case "setHtml":
		var h string
		if err := cmd.Arg(0, &h); err != nil {
			return err
		}
		f.mu.Lock()
		f.html = h
		f.mu.Unlock()
	case "getHtml":
		go f.ctrl.HandleNotification(ctx, bridge.Notification{
			Channel: bridge.ChanHTML,
			Payload: bridge.MarshalPayload(bridge.TextChange{HTML: html}),
		})
	case "getAllMentions":
		go f.ctrl.HandleNotification(ctx, bridge.Notification{
			Channel: bridge.ChanAllMentions,
			Payload: bridge.MarshalPayload(mentions),
		})
	case "getMentionAtCursor":
		go f.ctrl.HandleNotification(ctx, bridge.Notification{
			Channel: bridge.ChanMentionAtCursor,
			Payload: bridge.MarshalPayload(bridge.EntityAtCursor{Kind: "none"}),
		})
	}
	return nil
}

func (f *fakeSurface) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, c := range f.commands {
		out[i] = c.Name
	}
	return out
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeSurface) {
	t.Helper()
	f := &fakeSurface{html: "<p>start</p>"}
	cfg.Invoker = f
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = time.Second
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = time.Second
	}
	c := New(cfg)
	f.ctrl = c
	return c, f
}

func TestCommandBeforeReadyWaits(t *testing.T) {
	c, f := newTestController(t, Config{ReadyTimeout: 30 * time.Millisecond})

	err := c.SetBold(context.Background())
	if !errors.Is(err, bridge.ErrNotReady) {
		t.Fatalf("SetBold before ready: got %v, want ErrNotReady", err)
	}
	if len(f.names()) != 0 {
		t.Errorf("command dispatched before ready: %v", f.names())
	}
}

func TestCommandReleasedOnReady(t *testing.T) {
	c, f := newTestController(t, Config{})

	done := make(chan error, 1)
	go func() { done <- c.SetItalic(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	c.SetReady()

	if err := <-done; err != nil {
		t.Fatalf("SetItalic: %v", err)
	}
	if got := f.names(); len(got) != 1 || got[0] != "setItalic" {
		t.Errorf("commands: got %v, want [setItalic]", got)
	}
}

func TestHeadingValidation(t *testing.T) {
	c, f := newTestController(t, Config{})
	c.SetReady()

	for _, level := range []int{0, 7, -1} {
		if err := c.SetHeading(context.Background(), level); !errors.Is(err, bridge.ErrInvalidArgument) {
			t.Errorf("SetHeading(%d): got %v, want ErrInvalidArgument", level, err)
		}
	}
	if len(f.names()) != 0 {
		t.Errorf("invalid heading reached the surface: %v", f.names())
	}

	if err := c.SetHeading(context.Background(), 3); err != nil {
		t.Fatalf("SetHeading(3): %v", err)
	}
	if got := f.names(); len(got) != 1 || got[0] != "setHeading" {
		t.Errorf("commands: got %v", got)
	}
}

func TestFontSizeValidation(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()

	if err := c.SetFontSize(context.Background(), 8); !errors.Is(err, bridge.ErrInvalidArgument) {
		t.Errorf("SetFontSize(8): got %v, want ErrInvalidArgument", err)
	}
	if err := c.SetFontSize(context.Background(), 7); err != nil {
		t.Errorf("SetFontSize(7): %v", err)
	}
}

func TestGetHTMLRoundTrip(t *testing.T) {
	c, f := newTestController(t, Config{})
	c.SetReady()
	f.html = "<p>hello</p>"

	html, err := c.GetHTML(context.Background())
	if err != nil {
		t.Fatalf("GetHTML: %v", err)
	}
	if html != "<p>hello</p>" {
		t.Errorf("GetHTML: got %q, want %q", html, "<p>hello</p>")
	}
}

func TestGetHTMLTimesOut(t *testing.T) {
	c, f := newTestController(t, Config{ReadTimeout: 30 * time.Millisecond})
	c.SetReady()
	f.silent = true

	_, err := c.GetHTML(context.Background())
	if !errors.Is(err, bridge.ErrTimeout) {
		t.Fatalf("GetHTML with silent surface: got %v, want ErrTimeout", err)
	}
}

func TestSetHTMLSanitises(t *testing.T) {
	c, f := newTestController(t, Config{})
	c.SetReady()

	if err := c.SetHTML(context.Background(), `<p onclick="evil()">hi</p><script>x</script>`); err != nil {
		t.Fatal(err)
	}
	f.mu.Lock()
	cmd := f.commands[0]
	f.mu.Unlock()
	var sent string
	if err := cmd.Arg(0, &sent); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sent, "onclick") || strings.Contains(sent, "<script") {
		t.Errorf("unsanitised markup crossed the bridge: %q", sent)
	}
	if !strings.Contains(sent, "hi") {
		t.Errorf("content lost in sanitisation: %q", sent)
	}
}

func TestContentNotificationUpdatesCacheAndObservers(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()

	var seen []string
	var mu sync.Mutex
	c.OnContentChange(func(html string) {
		mu.Lock()
		seen = append(seen, html)
		mu.Unlock()
	})

	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanTextChange,
		Seq:     1,
		Payload: bridge.MarshalPayload(bridge.TextChange{HTML: "<p>a</p>"}),
	})

	if got := c.HTML(); got != "<p>a</p>" {
		t.Errorf("cache: got %q, want %q", got, "<p>a</p>")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "<p>a</p>" {
		t.Errorf("observer: got %v", seen)
	}
}

func TestStaleNotificationDropped(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()

	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanTextChange,
		Seq:     5,
		Payload: bridge.MarshalPayload(bridge.TextChange{HTML: "<p>new</p>"}),
	})
	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanTextChange,
		Seq:     3,
		Payload: bridge.MarshalPayload(bridge.TextChange{HTML: "<p>old</p>"}),
	})

	if got := c.HTML(); got != "<p>new</p>" {
		t.Errorf("stale notification applied: got %q", got)
	}
}

func TestDecorationStateCached(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()

	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanDecorationState,
		Seq:     1,
		Payload: bridge.MarshalPayload(bridge.DecorationState{
			Formats:     []string{"italic", "bold"},
			FormatBlock: "blockquote",
		}),
	})

	got := c.ActiveFormats()
	if len(got) != 2 || got[0] != "bold" || got[1] != "italic" {
		t.Errorf("ActiveFormats: got %v, want sorted [bold italic]", got)
	}
	if c.BlockFormat() != "blockquote" {
		t.Errorf("BlockFormat: got %q, want blockquote", c.BlockFormat())
	}
}

func TestMalformedNotificationIgnored(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()
	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanTextChange,
		Seq:     1,
		Payload: []byte(`{broken`),
	})
	if got := c.HTML(); got != "" {
		t.Errorf("malformed payload mutated cache: %q", got)
	}
}

func TestMentionTriggerObserver(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()

	var gotQuery, gotTrigger string
	c.OnMentionTrigger(func(query, trigger string) {
		gotQuery, gotTrigger = query, trigger
	})

	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanMentionTrigger,
		Seq:     1,
		Payload: bridge.MarshalPayload(bridge.MentionTrigger{Query: "ali", Trigger: "@"}),
	})

	if gotQuery != "ali" || gotTrigger != "@" {
		t.Errorf("trigger observer: got (%q, %q)", gotQuery, gotTrigger)
	}
}

func TestEmojiSelectedObserver(t *testing.T) {
	c, _ := newTestController(t, Config{})
	c.SetReady()

	var got entity.Emoji
	c.OnEmojiSelected(func(e entity.Emoji) { got = e })

	c.HandleNotification(context.Background(), bridge.Notification{
		Channel: bridge.ChanEmojiSelected,
		Seq:     1,
		Payload: bridge.MarshalPayload(entity.Emoji{ID: "smile", Unicode: "\U0001F604"}),
	})

	if got.ID != "smile" {
		t.Errorf("emoji observer: got %+v", got)
	}
}

func TestInsertMentionRequiresUserID(t *testing.T) {
	c, f := newTestController(t, Config{})
	c.SetReady()

	err := c.InsertMention(context.Background(), entity.Mention{Trigger: "@"})
	if !errors.Is(err, bridge.ErrInvalidArgument) {
		t.Fatalf("InsertMention without user: got %v", err)
	}
	if len(f.names()) != 0 {
		t.Errorf("invalid mention dispatched: %v", f.names())
	}
}

func TestGetAllMentions(t *testing.T) {
	c, f := newTestController(t, Config{})
	c.SetReady()
	f.mentions = []entity.Mention{
		{User: entity.User{ID: "u1", Username: "alice"}, Trigger: "@"},
		{User: entity.User{ID: "u2", Username: "bob"}, Trigger: "@"},
	}

	mentions, err := c.GetAllMentions(context.Background())
	if err != nil {
		t.Fatalf("GetAllMentions: %v", err)
	}
	if len(mentions) != 2 || mentions[0].User.ID != "u1" || mentions[1].User.Username != "bob" {
		t.Errorf("mentions: got %+v", mentions)
	}
}

func TestConvertToMarkdown(t *testing.T) {
	md, err := ConvertToMarkdown(`<h1>Title</h1><p>hello <strong>world</strong></p>`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "# Title") {
		t.Errorf("heading lost: %q", md)
	}
	if !strings.Contains(md, "**world**") {
		t.Errorf("bold lost: %q", md)
	}
}

func TestConvertToMarkdownEmpty(t *testing.T) {
	md, err := ConvertToMarkdown("   ")
	if err != nil || md != "" {
		t.Errorf("empty input: got (%q, %v)", md, err)
	}
}

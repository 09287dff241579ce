package contact

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_Valid(t *testing.T) {
	t.Parallel()

	sub, err := Decode(strings.NewReader(`{"message":"Hello <script>","reply_to":"a@b.com","extra":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.Message != "Hello <script>" {
		t.Errorf("Message: got %q", sub.Message)
	}
	if sub.ReplyTo != "a@b.com" {
		t.Errorf("ReplyTo: got %q", sub.ReplyTo)
	}
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantField string
		wantMsg   string
	}{
		{"empty body", ``, "message", MsgMissingMessage},
		{"malformed json", `{"message":`, "message", MsgMissingMessage},
		{"json null", `null`, "message", MsgMissingMessage},
		{"json array", `["message"]`, "message", MsgMissingMessage},
		{"missing message", `{"reply_to":"a@b.com"}`, "message", MsgMissingMessage},
		{"empty message", `{"message":"","reply_to":"a@b.com"}`, "message", MsgMissingMessage},
		{"non-string message", `{"message":5,"reply_to":"a@b.com"}`, "message", MsgMissingMessage},
		{"missing reply_to", `{"message":"hi"}`, "reply_to", MsgMissingReplyTo},
		{"empty reply_to", `{"message":"hi","reply_to":""}`, "reply_to", MsgMissingReplyTo},
		{"reply_to without at", `{"message":"hi","reply_to":"foo"}`, "reply_to", MsgInvalidReplyTo},
		{"reply_to without dot", `{"message":"hi","reply_to":"foo@bar"}`, "reply_to", MsgInvalidReplyTo},
		{"dot only before at", `{"message":"hi","reply_to":"f.o@bar"}`, "reply_to", MsgInvalidReplyTo},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tt.body))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field: got %q, want %q", ve.Field, tt.wantField)
			}
			if ve.Error() != tt.wantMsg {
				t.Errorf("Error(): got %q, want %q", ve.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDecode_NilReader(t *testing.T) {
	t.Parallel()

	if _, err := Decode(nil); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidReplyTo(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"a@b.com":           true,
		"first.last@x.co":   true,
		"a@b@c.com":         true,
		"@b.com":            true,
		"foo":               false,
		"foo@bar":           false,
		"foo.bar@localhost": false,
		"":                  false,
	}
	for addr, want := range tests {
		if got := ValidReplyTo(addr); got != want {
			t.Errorf("ValidReplyTo(%q): got %v, want %v", addr, got, want)
		}
	}
}

func TestRenderBody_EscapesThenBreaksLines(t *testing.T) {
	t.Parallel()

	body := RenderBody("a@b.com", "Hello <script>\nline two\r\n<b>end</b>")

	if strings.Contains(body, "<script>") || strings.Contains(body, "<b>") {
		t.Errorf("body contains unescaped markup: %s", body)
	}
	want := "Hello &lt;script&gt;<br>line two<br>&lt;b&gt;end&lt;/b&gt;"
	if !strings.Contains(body, want) {
		t.Errorf("body: got %q, want it to contain %q", body, want)
	}
	if !strings.Contains(body, "<p><strong>From:</strong> a@b.com</p>") {
		t.Errorf("body missing From line: %s", body)
	}
	if !strings.HasPrefix(body, "<h3>New message from your website</h3>") {
		t.Errorf("body missing heading: %s", body)
	}
}

func TestRenderBody_EscapesReplyTo(t *testing.T) {
	t.Parallel()

	body := RenderBody("<x>@b.com", "hi")
	if !strings.Contains(body, "&lt;x&gt;@b.com") {
		t.Errorf("reply_to not escaped in body: %s", body)
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	env := Envelope{
		From:    "noreply@yourdomain.com",
		To:      []string{"contact@yourdomain.com"},
		Subject: "New Contact Form Message",
	}
	sub := &Submission{Message: "Hello <script>", ReplyTo: "a@b.com"}

	msg, err := Compose(env, sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.From != env.From || msg.Subject != env.Subject {
		t.Errorf("envelope not copied: %+v", msg)
	}
	if len(msg.To) != 1 || msg.To[0] != "contact@yourdomain.com" {
		t.Errorf("To: got %v", msg.To)
	}
	if msg.ReplyTo != "a@b.com" {
		t.Errorf("ReplyTo: got %q, want verbatim %q", msg.ReplyTo, "a@b.com")
	}
	if !strings.Contains(msg.HTMLBody, "Hello &lt;script&gt;") {
		t.Errorf("HTMLBody not escaped: %s", msg.HTMLBody)
	}

	msg.To[0] = "changed@example.com"
	if env.To[0] != "contact@yourdomain.com" {
		t.Error("Compose must not alias the envelope recipient slice")
	}
}

func TestCompose_RejectsInvalidSubmission(t *testing.T) {
	t.Parallel()

	_, err := Compose(Envelope{}, &Submission{Message: "hi", ReplyTo: "foo@bar"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

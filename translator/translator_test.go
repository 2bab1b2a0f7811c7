package translator

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/uilingo/uilingo/modelapi"
)

// fakeInvoker replays a scripted sequence of replies/faults and records
// every message list it was sent.
type fakeInvoker struct {
	t      *testing.T
	script []fakeResult
	calls  [][]modelapi.Message
	closed int
}

type fakeResult struct {
	text string
	err  error
}

func (f *fakeInvoker) Invoke(_ context.Context, _ string, msgs []modelapi.Message, _ modelapi.Params) (modelapi.Message, error) {
	recorded := make([]modelapi.Message, len(msgs))
	copy(recorded, msgs)
	f.calls = append(f.calls, recorded)

	if len(f.script) == 0 {
		f.t.Fatalf("unexpected Invoke call #%d", len(f.calls))
	}
	next := f.script[0]
	f.script = f.script[1:]
	if next.err != nil {
		return modelapi.Message{}, next.err
	}
	return modelapi.Message{Role: modelapi.RoleAssistant, Text: next.text}, nil
}

func (f *fakeInvoker) Close() error {
	f.closed++
	return nil
}

func newTestSession(t *testing.T, script ...fakeResult) (*Session, *fakeInvoker) {
	inv := &fakeInvoker{t: t, script: script}
	return newSession(inv, "test-model"), inv
}

// ---------------------------------------------------------------------------
// Translate
// ---------------------------------------------------------------------------

func TestTranslateEmptyInputSkipsRemoteCall(t *testing.T) {
	s, inv := newTestSession(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		got, err := s.Translate(context.Background(), text, "fr", "")
		if err != nil {
			t.Fatalf("Translate(%q) error: %v", text, err)
		}
		if got != text {
			t.Fatalf("Translate(%q) = %q, want input unchanged", text, got)
		}
	}
	if len(inv.calls) != 0 {
		t.Fatalf("empty input should not hit the remote service, got %d calls", len(inv.calls))
	}
}

func TestTranslateTranscriptGrowth(t *testing.T) {
	s, inv := newTestSession(t,
		fakeResult{text: "OK"},          // seeding acknowledgment
		fakeResult{text: "Enregistrer"}, // first translation
		fakeResult{text: "Annuler"},     // second translation
	)

	got, err := s.Translate(context.Background(), "Save", "fr", "")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got != "Enregistrer" {
		t.Fatalf("Translate() = %q, want Enregistrer", got)
	}
	// Seed instruction, seed acknowledgment, user turn, assistant turn.
	if len(s.translation) != 4 {
		t.Fatalf("transcript length = %d after first call, want 4", len(s.translation))
	}
	if s.translation[0].Text != translationSeedPrompt || s.translation[0].Role != modelapi.RoleUser {
		t.Fatalf("first turn is not the seed instruction: %#v", s.translation[0])
	}

	if _, err := s.Translate(context.Background(), "Cancel", "fr", ""); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if len(s.translation) != 6 {
		t.Fatalf("transcript length = %d after second call, want 6", len(s.translation))
	}

	// The whole transcript-to-date is replayed each call.
	if len(inv.calls) != 3 {
		t.Fatalf("got %d remote calls, want 3", len(inv.calls))
	}
	if len(inv.calls[1]) != 3 {
		t.Fatalf("first translation sent %d turns, want 3", len(inv.calls[1]))
	}
	if len(inv.calls[2]) != 5 {
		t.Fatalf("second translation sent %d turns, want 5", len(inv.calls[2]))
	}
}

func TestSeedingFailureRollsBackAndRetries(t *testing.T) {
	transportErr := &url.Error{Op: "Post", URL: "https://api.example", Err: errors.New("connection refused")}
	s, inv := newTestSession(t,
		fakeResult{err: transportErr},   // seeding fails
		fakeResult{text: "Enregistrer"}, // translation proceeds unseeded
		fakeResult{text: "OK"},          // seeding retried on next call
		fakeResult{text: "Annuler"},
	)

	got, err := s.Translate(context.Background(), "Save", "fr", "")
	if err != nil {
		t.Fatalf("Translate() must proceed past a failed seeding, got: %v", err)
	}
	if got != "Enregistrer" {
		t.Fatalf("Translate() = %q, want Enregistrer", got)
	}
	if s.translationSeeded {
		t.Fatalf("session must stay unseeded after a failed seeding")
	}
	// No turns from the failed attempt may remain: only the user turn
	// and reply of the translation itself.
	if len(s.translation) != 2 {
		t.Fatalf("transcript length = %d, want 2 (failed seed rolled back)", len(s.translation))
	}
	if len(inv.calls[1]) != 1 {
		t.Fatalf("unseeded translation sent %d turns, want 1", len(inv.calls[1]))
	}

	// The next call re-attempts seeding.
	if _, err := s.Translate(context.Background(), "Cancel", "fr", ""); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if !s.translationSeeded {
		t.Fatalf("seeding retry should have succeeded")
	}
	if last := inv.calls[2][len(inv.calls[2])-1]; last.Text != translationSeedPrompt {
		t.Fatalf("third call should be the seeding retry, sent %q", last.Text)
	}
}

func TestTranslateEmptyReplyReturnsInputUnchanged(t *testing.T) {
	s, _ := newTestSession(t, fakeResult{text: "   "})
	s.translationSeeded = true

	got, err := s.Translate(context.Background(), "Save", "fr", "")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got != "Save" {
		t.Fatalf("Translate() = %q, want the input back", got)
	}
}

func TestTranslatePrompts(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		target string
		source string
		want   string
	}{
		{
			name:   "target only",
			text:   "Save",
			target: "fr",
			want:   `Translate to French: "Save"`,
		},
		{
			name:   "source and target",
			text:   "Save",
			target: "es",
			source: "en",
			want:   `Translate from English to Spanish: "Save"`,
		},
		{
			name:   "auto source means unspecified",
			text:   "Save",
			target: "fr",
			source: "auto",
			want:   `Translate to French: "Save"`,
		},
		{
			name:   "unknown code falls back to raw code",
			text:   "Save",
			target: "xx",
			want:   `Translate to xx: "Save"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translatePrompt(tc.text, tc.target, tc.source); got != tc.want {
				t.Fatalf("translatePrompt() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTranslatePromptIsSentAsFinalUserTurn(t *testing.T) {
	s, inv := newTestSession(t, fakeResult{text: "Enregistrer"})
	s.translationSeeded = true

	if _, err := s.Translate(context.Background(), "Save", "fr", ""); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	sent := inv.calls[0]
	last := sent[len(sent)-1]
	if last.Role != modelapi.RoleUser || last.Text != `Translate to French: "Save"` {
		t.Fatalf("final turn = %#v, want the translate prompt as a user turn", last)
	}
}

// ---------------------------------------------------------------------------
// Detect language
// ---------------------------------------------------------------------------

func TestDetectEmptyInputSkipsRemoteCall(t *testing.T) {
	s, inv := newTestSession(t)

	if got := s.DetectLanguage(context.Background(), ""); got != DefaultLanguage {
		t.Fatalf("DetectLanguage(\"\") = %q, want %q", got, DefaultLanguage)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("empty input should not hit the remote service")
	}
}

func TestDetectIsOneShotAndNotAccumulated(t *testing.T) {
	s, inv := newTestSession(t,
		fakeResult{text: "fr"},
		fakeResult{text: "de"},
	)

	if got := s.DetectLanguage(context.Background(), "Enregistrer"); got != "fr" {
		t.Fatalf("DetectLanguage() = %q, want fr", got)
	}
	if got := s.DetectLanguage(context.Background(), "Speichern"); got != "de" {
		t.Fatalf("DetectLanguage() = %q, want de", got)
	}

	// Each request carries only the instruction turn plus the new text.
	for i, call := range inv.calls {
		if len(call) != 2 {
			t.Fatalf("detect call %d sent %d turns, want 2", i, len(call))
		}
		if call[0].Text != detectionSeedPrompt {
			t.Fatalf("detect call %d missing instruction turn", i)
		}
	}
	// The stored detection transcript holds only the instruction turn.
	if len(s.detection) != 1 {
		t.Fatalf("detection transcript length = %d, want 1", len(s.detection))
	}
}

func TestDetectNeverReturnsAnErrorPath(t *testing.T) {
	faults := []error{
		&modelapi.APIError{StatusCode: 400, Code: "invalid_request_error", Message: "bad model"},
		&modelapi.APIError{StatusCode: 403, Code: "permission_error", Message: "denied"},
		&modelapi.APIError{StatusCode: 429, Code: "rate_limit_error", Message: "throttled"},
		&modelapi.APIError{StatusCode: 500, Code: "api_error", Message: "internal"},
		&modelapi.APIError{StatusCode: 503, Code: "overloaded_error", Message: "unavailable"},
		&url.Error{Op: "Post", URL: "https://api.example", Err: errors.New("no route to host")},
		errors.New("something unanticipated"),
	}

	for _, fault := range faults {
		s, _ := newTestSession(t, fakeResult{err: fault})
		if got := s.DetectLanguage(context.Background(), "Guardar"); got != DefaultLanguage {
			t.Fatalf("DetectLanguage() under %v = %q, want %q", fault, got, DefaultLanguage)
		}
	}
}

func TestNormalizeLanguageCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "fr", want: "fr"},
		{in: " FR \n", want: "fr"},
		{in: `"es"`, want: "es"},
		{in: "de.", want: "de"},
		{in: "", want: DefaultLanguage},
		{in: "french", want: DefaultLanguage},
		{in: "I think it is Spanish", want: DefaultLanguage},
		{in: "12", want: DefaultLanguage},
	}

	for _, tc := range cases {
		if got := normalizeLanguageCode(tc.in); got != tc.want {
			t.Fatalf("normalizeLanguageCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------------------

func TestNewFailsFastWithoutCredentials(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("UILINGO_API_KEY", "")

	_, err := New(Options{Profile: "missing"})
	if err == nil {
		t.Fatalf("New() should fail without credentials")
	}
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error is %T, want *Error", err)
	}
	if terr.Kind != KindConfiguration {
		t.Fatalf("kind = %v, want %v", terr.Kind, KindConfiguration)
	}
	if errors.Unwrap(terr) == nil {
		t.Fatalf("configuration error must carry its cause")
	}
}

func TestCloseReleasesExactlyOnce(t *testing.T) {
	s, inv := newTestSession(t)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if inv.closed != 1 {
		t.Fatalf("invoker closed %d times, want exactly 1", inv.closed)
	}
}

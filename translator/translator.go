// Package translator implements the UI-string translation client: a
// per-run session that sends strings to a cloud model service for
// translation and language detection.
//
// A Session keeps two independent conversation transcripts, one for
// translation and one for detection, so the model can use prior turns
// as context without mixing the two task types. The remote service is
// stateless per request, so the translation transcript is replayed
// verbatim on every call and grows by two turns per translation. It is
// never trimmed: latency and cost per call increase over a long
// session, and callers that translate very large batches should start
// a fresh session periodically.
//
// A Session is not safe for concurrent use. Callers needing concurrency
// must serialize calls per session or use one session per worker.
package translator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/uilingo/uilingo/credentials"
	"github.com/uilingo/uilingo/langtable"
	"github.com/uilingo/uilingo/modelapi"
)

const (
	// DefaultModel is used when the caller does not name a model.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultLanguage is the code returned when detection is skipped
	// or fails.
	DefaultLanguage = "en"
)

// Inference parameters per task. Detection gets a small output budget
// tuned for a two-letter code.
const (
	translateMaxTokens   = 1024
	translateTemperature = 0.3
	translateTopP        = 0.9
	seedMaxTokens        = 16
	detectMaxTokens      = 10
)

// translationSeedPrompt frames the translation transcript. It is sent
// as the first user turn, once per session, and the model's
// acknowledgment is recorded as the first assistant turn.
const translationSeedPrompt = `You are a professional translator specializing in software UI strings. Translate exactly what is asked. Preserve placeholders, punctuation, and capitalization style, and reply with the translation only, without explanations. Reply "OK" if you understand.`

// detectionSeedPrompt frames the detection exchanges. No acknowledgment
// round trip is performed for it.
const detectionSeedPrompt = `You are a language identification assistant. When asked to detect the language of a text, reply with only the two-letter ISO 639-1 code of that language and nothing else.`

// Invoker is the remote model-invocation transport consumed by a
// Session. *modelapi.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, model string, msgs []modelapi.Message, p modelapi.Params) (modelapi.Message, error)
	Close() error
}

// Options configures a Session.
type Options struct {
	// Profile is the credential profile name ("" = "default").
	Profile string
	// APIKey overrides the profile's stored key.
	APIKey string
	// Model is the model identifier ("" = DefaultModel).
	Model string
	// BaseURL overrides the service endpoint (highest priority; the
	// profile's stored endpoint is used otherwise).
	BaseURL string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Verbose enables transport debug logging.
	Verbose bool
}

// Session is the per-run translation client. Create one per batch of
// strings and Close it when done.
type Session struct {
	model string
	inv   Invoker

	translation       []modelapi.Message
	translationSeeded bool

	detection       []modelapi.Message
	detectionSeeded bool

	closeOnce sync.Once
	closeErr  error
}

// New resolves credentials for the named profile and creates a session.
// Credential resolution failure is fatal here, not per call: the
// returned error is a *Error of the configuration kind.
func New(opts Options) (*Session, error) {
	prof, err := credentials.Resolve(opts.Profile, opts.APIKey)
	if err != nil {
		return nil, configError("cannot resolve credentials", err)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = prof.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	inv := modelapi.New(modelapi.Options{
		APIKey:  prof.Key,
		BaseURL: baseURL,
		Proxy:   opts.Proxy,
		Verbose: opts.Verbose,
	})
	return newSession(inv, model), nil
}

func newSession(inv Invoker, model string) *Session {
	return &Session{model: model, inv: inv}
}

// Model returns the model identifier used by this session.
func (s *Session) Model() string {
	return s.model
}

// Close releases the remote connection. It is safe to call more than
// once and after failed operations; the release happens exactly once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.inv.Close()
	})
	return s.closeErr
}

// ---------------------------------------------------------------------------
// Context seeding
// ---------------------------------------------------------------------------

// ensureTranslationContext lazily seeds the translation transcript with
// the instruction turn and the model's acknowledgment, costing one
// round trip on the first translation of a session.
//
// On failure the just-appended instruction turn is rolled back and the
// session stays unseeded, so a later call retries the seeding. Note
// this means a persistently failing seed adds one extra round trip to
// every translation; translation itself still proceeds unseeded.
func (s *Session) ensureTranslationContext(ctx context.Context) {
	if s.translationSeeded {
		return
	}

	s.translation = append(s.translation, modelapi.Message{
		Role: modelapi.RoleUser,
		Text: translationSeedPrompt,
	})

	reply, err := s.inv.Invoke(ctx, s.model, s.translation, modelapi.Params{
		MaxTokens:   seedMaxTokens,
		Temperature: translateTemperature,
	})
	if err != nil {
		s.translation = s.translation[:len(s.translation)-1]
		return
	}

	ack := strings.TrimSpace(reply.Text)
	if ack == "" {
		ack = "OK"
	}
	s.translation = append(s.translation, modelapi.Message{
		Role: modelapi.RoleAssistant,
		Text: ack,
	})
	s.translationSeeded = true
}

// ensureDetectionContext lazily appends the detection instruction turn.
// Unlike translation seeding, no confirmation round trip is performed.
func (s *Session) ensureDetectionContext() {
	if s.detectionSeeded {
		return
	}
	s.detection = append(s.detection, modelapi.Message{
		Role: modelapi.RoleUser,
		Text: detectionSeedPrompt,
	})
	s.detectionSeeded = true
}

// ---------------------------------------------------------------------------
// Translate
// ---------------------------------------------------------------------------

// translatePrompt renders the per-request prompt from the language
// table. Unknown codes fall back to the raw code string.
func translatePrompt(text, target, source string) string {
	targetName := langtable.Resolve(target)
	if source == "" || source == "auto" {
		return fmt.Sprintf(`Translate to %s: "%s"`, targetName, text)
	}
	return fmt.Sprintf(`Translate from %s to %s: "%s"`, langtable.Resolve(source), targetName, text)
}

// Translate sends text to the model for translation into the target
// language. source may be empty or "auto" when the source language is
// unknown.
//
// Empty or whitespace-only text is returned unchanged without a remote
// call. Faults are returned as *Error, classified per the taxonomy in
// this package, with the original fault as the wrapped cause.
func (s *Session) Translate(ctx context.Context, text, target, source string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	s.ensureTranslationContext(ctx)

	s.translation = append(s.translation, modelapi.Message{
		Role: modelapi.RoleUser,
		Text: translatePrompt(text, target, source),
	})

	reply, err := s.inv.Invoke(ctx, s.model, s.translation, modelapi.Params{
		MaxTokens:   translateMaxTokens,
		Temperature: translateTemperature,
		TopP:        translateTopP,
	})
	if err != nil {
		return "", classify(err, s.model)
	}

	translated := strings.TrimSpace(reply.Text)
	if translated == "" {
		// Never fabricate output from an empty reply.
		return text, nil
	}

	s.translation = append(s.translation, modelapi.Message{
		Role: modelapi.RoleAssistant,
		Text: translated,
	})
	return translated, nil
}

// ---------------------------------------------------------------------------
// Detect language
// ---------------------------------------------------------------------------

// DetectLanguage asks the model for the language of text and returns a
// lower-case two-letter code.
//
// Detection is a best-effort hint, not the primary deliverable: it
// never returns an error. Empty text, any remote fault, and an
// unusable reply all yield DefaultLanguage. The detection exchange is
// sent one-shot (instruction turn plus the new request) and is not
// accumulated in the transcript.
func (s *Session) DetectLanguage(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return DefaultLanguage
	}

	s.ensureDetectionContext()

	msgs := make([]modelapi.Message, len(s.detection), len(s.detection)+1)
	copy(msgs, s.detection)
	msgs = append(msgs, modelapi.Message{
		Role: modelapi.RoleUser,
		Text: fmt.Sprintf(`Detect the language: "%s"`, text),
	})

	reply, err := s.inv.Invoke(ctx, s.model, msgs, modelapi.Params{
		MaxTokens: detectMaxTokens,
	})
	if err != nil {
		return DefaultLanguage
	}
	return normalizeLanguageCode(reply.Text)
}

// normalizeLanguageCode reduces a model reply to a bare two-letter
// code, falling back to DefaultLanguage when the reply is anything
// else.
func normalizeLanguageCode(raw string) string {
	code := strings.ToLower(strings.TrimSpace(raw))
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return DefaultLanguage
	}
	code = strings.Trim(fields[0], `"'.`)
	if len(code) != 2 {
		return DefaultLanguage
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return DefaultLanguage
		}
	}
	return code
}

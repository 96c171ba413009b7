package otpflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avasar/portal/internal/services/web/platform/sessioncookie"
)

var testSecret = []byte(strings.Repeat("s", 32))

type countingSender struct {
	calls int
	err   error
}

func (c *countingSender) SendOTP(context.Context, string) error {
	c.calls++
	return c.err
}

func newManager(t *testing.T, now *time.Time) *Manager {
	t.Helper()
	m, err := New(testSecret, sessioncookie.Jar{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m.WithClock(func() time.Time { return *now })
}

func roundTrip(t *testing.T, m *Manager, state State) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := m.Write(rr, httptest.NewRequest(http.MethodGet, "/otp", nil), state); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/otp", nil)
	for _, cookie := range rr.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestNewRejectsShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := New([]byte("short"), sessioncookie.Jar{}); err == nil {
		t.Fatal("New() error = nil, want error")
	}
}

func TestStateSurvivesReload(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newManager(t, &now)
	sentAt := now.Add(-10 * time.Second)
	req := roundTrip(t, m, State{Email: "a@x.com", Step: StepVerify, Purpose: PurposeRegister, SentAt: sentAt})

	state, ok := m.Read(req, PurposeRegister)
	if !ok {
		t.Fatal("Read() ok = false, want true")
	}
	if state.Email != "a@x.com" || state.Step != StepVerify || !state.SentAt.Equal(sentAt) {
		t.Fatalf("Read() = %+v", state)
	}
	if got := state.CooldownSeconds(now); got != 20 {
		t.Fatalf("CooldownSeconds() = %d, want 20", got)
	}
}

func TestReadRejectsOtherPurposeTamperingAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newManager(t, &now)
	req := roundTrip(t, m, State{Email: "a@x.com", Step: StepVerify, Purpose: PurposeRegister})

	if _, ok := m.Read(req, PurposeReset); ok {
		t.Fatal("Read(reset) ok = true for register state")
	}

	other, err := New([]byte(strings.Repeat("o", 32)), sessioncookie.Jar{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := other.WithClock(func() time.Time { return now }).Read(req, PurposeRegister); ok {
		t.Fatal("Read() accepted a cookie signed with another secret")
	}

	now = now.Add(DefaultTTL + time.Minute)
	if _, ok := m.Read(req, PurposeRegister); ok {
		t.Fatal("Read() accepted an expired cookie")
	}
}

func TestSendWithinCooldownMakesNoCall(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newManager(t, &now)
	sender := &countingSender{}

	state, err := m.Send(context.Background(), sender, State{Email: "a@x.com", Step: StepRequest, Purpose: PurposeRegister})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sender.calls != 1 || state.Step != StepVerify || !state.SentAt.Equal(now) {
		t.Fatalf("after first send calls=%d state=%+v", sender.calls, state)
	}

	now = now.Add(29 * time.Second)
	if _, err := m.Send(context.Background(), sender, state); !errors.Is(err, ErrCooldown) {
		t.Fatalf("Send() within cooldown error = %v, want ErrCooldown", err)
	}
	if sender.calls != 1 {
		t.Fatalf("calls = %d, want 1 after refused resend", sender.calls)
	}

	now = now.Add(time.Second)
	state, err = m.Send(context.Background(), sender, state)
	if err != nil {
		t.Fatalf("Send() after cooldown error = %v", err)
	}
	if sender.calls != 2 || !state.SentAt.Equal(now) {
		t.Fatalf("after cooldown calls=%d sentAt=%v, want restart", sender.calls, state.SentAt)
	}
}

func TestSendFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newManager(t, &now)
	sender := &countingSender{err: errors.New("Failed to send OTP")}
	before := State{Email: "a@x.com", Step: StepRequest, Purpose: PurposeRegister}

	after, err := m.Send(context.Background(), sender, before)
	if err == nil {
		t.Fatal("Send() error = nil, want sender error")
	}
	if after != before {
		t.Fatalf("state = %+v, want unchanged %+v", after, before)
	}
}

func TestSentTo(t *testing.T) {
	t.Parallel()

	state := State{Email: "A@x.com", SentAt: time.Now()}
	if !state.SentTo("a@x.com ") {
		t.Fatal("SentTo() = false, want case-insensitive match")
	}
	if (State{Email: "a@x.com"}).SentTo("a@x.com") {
		t.Fatal("SentTo() = true without SentAt")
	}
}

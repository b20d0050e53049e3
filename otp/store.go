// Package otp keeps one-time passwords with an expiry and a bounded number
// of verification attempts. Entries are keyed by the caller, codes are
// delivered to a separate recipient such as a phone number.
package otp

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"
)

var (
	ErrNotFound        = errors.New("otp not found")
	ErrExpired         = errors.New("otp expired")
	ErrTooManyAttempts = errors.New("otp attempts exhausted")
	ErrMismatch        = errors.New("otp mismatch")
)

// Sender delivers a freshly issued code to its recipient.
type Sender interface {
	Send(recipient, code string) error
}

// LogSender writes codes to the log instead of an SMS gateway.
type LogSender struct{}

func (LogSender) Send(recipient, code string) error {
	logger.WithField("phone", recipient).Infof("otp issued: %s", code)
	return nil
}

type Config struct {
	TTL         time.Duration
	MaxAttempts int
	Length      int
}

type entry struct {
	code     string
	expires  time.Time
	attempts int
}

type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     Config
	sender  Sender
	now     func() time.Time
}

func NewStore(cfg Config, sender Sender) *Store {
	if sender == nil {
		sender = LogSender{}
	}
	return &Store{
		entries: make(map[string]*entry),
		cfg:     cfg,
		sender:  sender,
		now:     time.Now,
	}
}

// Issue generates a new code for key, replacing any pending one, and hands
// it to the sender for recipient.
func (s *Store) Issue(key, recipient string) error {
	key, recipient = strings.TrimSpace(key), strings.TrimSpace(recipient)
	if key == "" || recipient == "" {
		return errors.New("otp key and recipient are required")
	}
	code, err := generate(s.cfg.Length)
	if err != nil {
		return errors.Wrap(err, "generate otp")
	}

	s.mu.Lock()
	s.entries[key] = &entry{code: code, expires: s.now().Add(s.cfg.TTL)}
	s.mu.Unlock()

	if err = s.sender.Send(recipient, code); err != nil {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return errors.Wrap(err, "send otp")
	}
	return nil
}

// Verify consumes the pending code for key when it matches. A wrong code
// counts as an attempt; once attempts are exhausted the entry is dropped.
func (s *Store) Verify(key, code string) error {
	key, code = strings.TrimSpace(key), strings.TrimSpace(code)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return ErrNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, key)
		return ErrExpired
	}
	if e.code != code {
		e.attempts++
		if e.attempts >= s.cfg.MaxAttempts {
			delete(s.entries, key)
			return ErrTooManyAttempts
		}
		return ErrMismatch
	}
	delete(s.entries, key)
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (s *Store) Purge() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run purges expired entries every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Purge(); n > 0 {
				logger.Debugf("purged %d expired otp", n)
			}
		}
	}
}

func generate(length int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

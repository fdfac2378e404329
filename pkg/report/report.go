package report

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter delivers errors to the operator beyond the log
type Reporter interface {
	Report(err error, tags map[string]string)
}

type Nop struct{}

func (Nop) Report(error, map[string]string) {}

// Sentry sends every reported error as an exception event to the hub
type Sentry struct {
	Hub *sentry.Hub
}

func NewSentry(dsn, release string) (*Sentry, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, err
	}

	return &Sentry{Hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sentry) Report(err error, tags map[string]string) {
	if err == nil {
		return
	}

	s.Hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.Hub.CaptureException(err)
	})
}

func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.Hub.Flush(timeout)
}

package pipeline

import (
	"time"
)

// Service runs the lot pipeline: assignments, production records, leftovers,
// rewash, dispatch and the status report.
type Service struct {
	store         Store
	classifier    Classifier
	reportWorkers int
	now           func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReportWorkers bounds how many lots the PIC report loads in parallel.
func WithReportWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reportWorkers = n
		}
	}
}

func NewService(store Store, classifier Classifier, opts ...Option) *Service {
	s := &Service{
		store:         store,
		classifier:    classifier,
		reportWorkers: 8,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsDenim exposes the chain classification used by the service.
func (s *Service) IsDenim(lotNo string) bool {
	return s.classifier.IsDenim(lotNo)
}

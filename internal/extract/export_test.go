package extract

import (
	"time"

	"github.com/sirupsen/logrus"

	"ordercheck/internal/domain"
)

// NewBlocking returns an Extractor whose format readers wait for release.
func NewBlocking(timeout time.Duration, release <-chan struct{}, log *logrus.Logger) *Extractor {
	e := New(timeout, 0, log)
	e.reader = func(domain.Format, []byte) (*pageSet, error) {
		<-release
		return &pageSet{}, nil
	}
	return e
}

package services

import (
	"errors"

	"go.uber.org/zap"
)

// SmartLoggerService hands out component loggers derived from one base logger.
type SmartLoggerService struct {
	base *zap.Logger
}

// NewSmartLogger wraps base. A nil base logs nothing.
func NewSmartLogger(base *zap.Logger) *SmartLoggerService {
	if base == nil {
		base = zap.NewNop()
	}
	return &SmartLoggerService{base: base}
}

func (s *SmartLoggerService) Logger() *zap.Logger { return s.base }

// Component returns a logger named after a service.
func (s *SmartLoggerService) Component(name string) *zap.Logger {
	return s.base.Named(name)
}

func (s *SmartLoggerService) SelfTest() error {
	if s.base == nil {
		return errors.New("smart logger has no base logger")
	}
	return nil
}

package notify

import (
	"context"
	"errors"

	"PulseWatch/internal/domain/models"
	drepo "PulseWatch/internal/domain/repository"
	applogger "PulseWatch/pkg/logger"
)

// Fanout delivers to every configured channel. A failed channel does
// not block the others; errors are joined for the caller to log.
type Fanout struct {
	channels []drepo.Notifier
}

// NewFanout creates a fanout over the given channels.
func NewFanout(channels ...drepo.Notifier) *Fanout {
	return &Fanout{channels: channels}
}

func (f *Fanout) Notify(ctx context.Context, s *models.Signal) error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Close() error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes signals to the structured log. Always configured,
// so an instance with no external channels still surfaces signals.
type LogNotifier struct {
	logger *applogger.Logger
}

func NewLogNotifier(l *applogger.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Notify(ctx context.Context, s *models.Signal) error {
	n.logger.Info("signal",
		applogger.String("symbol", s.Symbol),
		applogger.String("type", string(s.Type)),
		applogger.String("direction", string(s.Direction)),
		applogger.Int("confidence", s.Confidence.Score),
		applogger.String("level", string(s.Confidence.Level)),
		applogger.Float64("price", s.Price),
		applogger.Float64("tp1", s.Levels.TP1),
		applogger.Float64("stop", s.Levels.StopLoss),
		applogger.Strings("factors", s.Confidence.Factors),
	)
	return nil
}

func (n *LogNotifier) Close() error { return nil }

package services

import (
	"context"

	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/logging"
	"github.com/dmitrijs2005/charkeeper/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// observer logs and reports unexpected errors of one service.
type observer struct {
	logger   logging.Logger
	reporter telemetry.Reporter
}

func newObserver(logger logging.Logger, reporter telemetry.Reporter) observer {
	if logger == nil {
		logger = logging.Nop()
	}
	if reporter == nil {
		reporter = telemetry.Nop()
	}
	return observer{logger: logger, reporter: reporter}
}

// done passes err through, recording it first unless it is a domain outcome.
func (o observer) done(ctx context.Context, op, collection string, err error) error {
	if err == nil || common.IsExpected(err) {
		return err
	}
	o.logger.Error(ctx, "operation failed", "op", op, "collection", collection, "error", err)
	o.reporter.Report(ctx, op, err, attribute.String("collection", collection))
	return err
}

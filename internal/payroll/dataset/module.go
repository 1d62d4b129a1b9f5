package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/paydash/internal/config"
	"github.com/smallbiznis/paydash/internal/observability/logger"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("dataset",
	fx.Provide(NewTable),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// NewTable loads the configured source once. A failure aborts startup.
func NewTable(p Params) (*domain.Table, error) {
	log := p.Log.Named("dataset")
	src := p.Config.Dataset
	start := time.Now()

	var (
		table *domain.Table
		err   error
	)
	switch src.Driver {
	case config.DriverCSV:
		table, err = Load(src.Path, WithDelimiter([]rune(src.Delimiter)[0]))
	default:
		table, err = loadSQL(p.Log, src)
	}
	if err != nil {
		log.Error("dataset load failed", zap.String("driver", src.Driver), zap.Error(err))
		return nil, err
	}

	log.Info("dataset loaded",
		zap.String("driver", src.Driver),
		zap.Int("rows", table.Len()),
		zap.Int("entities", len(table.Entities())),
		zap.Ints("periods", table.Periods()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

func loadSQL(log *zap.Logger, src config.DatasetConfig) (*domain.Table, error) {
	conn, err := db.Open(src.DB(), logger.NewGormLogger(log, logger.DefaultGormLoggerConfig()))
	if err != nil {
		return nil, &domain.DataLoadError{Source: src.Table, Err: fmt.Errorf("connect: %w", err)}
	}
	defer func() { _ = db.Close(conn) }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if src.SeedFrom != "" {
		seed, err := Load(src.SeedFrom, WithDelimiter([]rune(src.Delimiter)[0]))
		if err != nil {
			return nil, err
		}
		n, err := Seed(ctx, conn, src.Table, seed)
		if err != nil {
			return nil, &domain.DataLoadError{Source: src.Table, Err: fmt.Errorf("seed: %w", err)}
		}
		log.Named("dataset").Info("dataset seeded",
			zap.String("table", src.Table),
			zap.String("from", src.SeedFrom),
			zap.Int("rows", n),
		)
	}
	return LoadFromDB(ctx, conn, src.Table)
}

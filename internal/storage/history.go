package storage

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/guesswho/internal/room"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RoundResult is one finished round.
type RoundResult struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Mode            string    `json:"mode" gorm:"size:64;not null"`
	WinnerName      string    `json:"winnerName" gorm:"size:64;not null"`
	LoserName       string    `json:"loserName" gorm:"size:64;not null"`
	WinnerCharacter string    `json:"winnerCharacter" gorm:"size:128"`
	LoserCharacter  string    `json:"loserCharacter" gorm:"size:128"`
	Correct         bool      `json:"correct" gorm:"not null"`
	PlayedAt        time.Time `json:"playedAt" gorm:"index;not null"`
}

// History records round results in Postgres.
type History struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func OpenHistory(dsn string, log *zap.Logger) (*History, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RoundResult{}); err != nil {
		return nil, err
	}
	return &History{db: db, log: log, now: time.Now}, nil
}

func (h *History) Record(ctx context.Context, res room.Result) error {
	row := RoundResult{
		Mode:            res.Mode,
		WinnerName:      res.WinnerName,
		LoserName:       res.LoserName,
		WinnerCharacter: res.WinnerCharacter.Name,
		LoserCharacter:  res.LoserCharacter.Name,
		Correct:         res.Correct,
		PlayedAt:        h.now().UTC(),
	}
	return h.db.WithContext(ctx).Create(&row).Error
}

// Recent returns up to limit results, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]RoundResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []RoundResult
	err := h.db.WithContext(ctx).Order("played_at desc, id desc").Limit(limit).Find(&rows).Error
	return rows, err
}

// Drain records results until ch is closed or ctx is done. Write failures
// are logged and do not stop the worker.
func (h *History) Drain(ctx context.Context, ch <-chan room.Result) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-ch:
			if !ok {
				return nil
			}
			if err := h.Record(ctx, res); err != nil && !errors.Is(err, context.Canceled) {
				h.log.Error("record round", zap.Error(err))
				continue
			}
			h.log.Debug("round recorded", zap.String("winner", res.WinnerName), zap.String("mode", res.Mode))
		}
	}
}

func (h *History) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

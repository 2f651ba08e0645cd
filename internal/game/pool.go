package game

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

func (s *Service) saveRound(ctx context.Context, item PoolItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}

	row := PoolRow{
		Day:     item.Day,
		RoundID: item.RoundID,
		Payload: string(payload),
		Theme:   item.Theme,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

// roundsForDay loads every pool item stored for a day, optionally restricted
// to a theme tag. Rows whose payload no longer parses are skipped.
func (s *Service) roundsForDay(ctx context.Context, day, theme string) ([]PoolItem, error) {
	query := s.db.WithContext(ctx).Where("date = ?", day)
	if theme != "" {
		query = query.Where("theme = ?", theme)
	}

	var rows []PoolRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]PoolItem, 0, len(rows))
	for _, row := range rows {
		var item PoolItem
		if err := json.Unmarshal([]byte(row.Payload), &item); err != nil {
			s.logger.Warn("skipping unreadable pool row",
				zap.String("round_id", row.RoundID),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) countForDay(ctx context.Context, day string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&PoolRow{}).
		Where("date = ?", day).
		Count(&count).Error
	return count, err
}

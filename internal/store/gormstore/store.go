// Package gormstore persists engine state in sqlite via gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gander/internal/config"
	"gander/internal/store"
	storemodel "gander/internal/store/model"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const singletonID = 1

type GormStore struct {
	db *gorm.DB
}

// New opens (and migrates) the sqlite database at path.
func New(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&storemodel.PositionModel{},
		&storemodel.TradeModel{},
		&storemodel.EquityModel{},
		&storemodel.SettingsModel{},
		&storemodel.StatusModel{},
	); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep write contention low while HTTP reads run alongside
	// the engine cycles.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --------------------------- positions ---------------------------

func (s *GormStore) CreatePosition(ctx context.Context, p store.Position) error {
	return s.db.WithContext(ctx).Create(positionModel(p)).Error
}

func (s *GormStore) UpdatePosition(ctx context.Context, p store.Position) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(positionModel(p)).Error
}

func (s *GormStore) DeletePosition(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&storemodel.PositionModel{}, "id = ?", id).Error
}

func (s *GormStore) ListPositions(ctx context.Context) ([]store.Position, error) {
	var models []storemodel.PositionModel
	if err := s.db.WithContext(ctx).Order("open_time asc").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.Position, 0, len(models))
	for _, m := range models {
		out = append(out, positionRecord(m))
	}
	return out, nil
}

// ----------------------------- trades ----------------------------

func (s *GormStore) CreateTrade(ctx context.Context, t store.Trade) error {
	return s.db.WithContext(ctx).Create(tradeModel(t)).Error
}

func (s *GormStore) ListTrades(ctx context.Context, f store.TradeFilter) ([]store.Trade, error) {
	q := s.db.WithContext(ctx).Model(&storemodel.TradeModel{}).Order("ts desc")
	if f.Symbol != "" {
		q = q.Where("symbol = ?", f.Symbol)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var models []storemodel.TradeModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.Trade, 0, len(models))
	for _, m := range models {
		out = append(out, tradeRecord(m))
	}
	return out, nil
}

// ----------------------------- equity ----------------------------

func (s *GormStore) CreateEquitySample(ctx context.Context, e store.EquitySample) error {
	return s.db.WithContext(ctx).Create(&storemodel.EquityModel{ID: e.ID, TS: e.TS, Equity: e.Equity}).Error
}

func (s *GormStore) ListEquity(ctx context.Context, limit int) ([]store.EquitySample, error) {
	q := s.db.WithContext(ctx).Model(&storemodel.EquityModel{}).Order("ts asc")
	if limit > 0 {
		// Most recent N, served oldest-first.
		sub := s.db.Model(&storemodel.EquityModel{}).Order("ts desc").Limit(limit).Select("id")
		q = q.Where("id IN (?)", sub)
	}
	var models []storemodel.EquityModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]store.EquitySample, 0, len(models))
	for _, m := range models {
		out = append(out, store.EquitySample{ID: m.ID, TS: m.TS, Equity: m.Equity})
	}
	return out, nil
}

func (s *GormStore) LatestEquity(ctx context.Context) (store.EquitySample, bool, error) {
	var m storemodel.EquityModel
	err := s.db.WithContext(ctx).Order("ts desc").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.EquitySample{}, false, nil
	}
	if err != nil {
		return store.EquitySample{}, false, err
	}
	return store.EquitySample{ID: m.ID, TS: m.TS, Equity: m.Equity}, true, nil
}

// ------------------------ settings / status ----------------------

func (s *GormStore) GetSettings(ctx context.Context) (config.Settings, bool, error) {
	var m storemodel.SettingsModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return config.Settings{}, false, nil
	}
	if err != nil {
		return config.Settings{}, false, err
	}
	return settingsRecord(m), true, nil
}

func (s *GormStore) SaveSettings(ctx context.Context, set config.Settings) error {
	m := settingsModel(set)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&m).Error
}

func (s *GormStore) GetStatus(ctx context.Context) (store.BotStatus, bool, error) {
	var m storemodel.StatusModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.BotStatus{}, false, nil
	}
	if err != nil {
		return store.BotStatus{}, false, err
	}
	return store.BotStatus{
		IsRunning:  m.IsRunning,
		LastUpdate: m.LastUpdate,
		Exchange:   m.Exchange,
		Symbols:    m.Symbols,
		Timeframe:  m.Timeframe,
		DryRun:     m.DryRun,
	}, true, nil
}

func (s *GormStore) SetStatus(ctx context.Context, st store.BotStatus) error {
	m := storemodel.StatusModel{
		ID:         singletonID,
		IsRunning:  st.IsRunning,
		LastUpdate: st.LastUpdate,
		Exchange:   st.Exchange,
		Symbols:    st.Symbols,
		Timeframe:  st.Timeframe,
		DryRun:     st.DryRun,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&m).Error
}

// --------------------------- converters --------------------------

func positionModel(p store.Position) *storemodel.PositionModel {
	return &storemodel.PositionModel{
		ID:             p.ID,
		Symbol:         p.Symbol,
		Side:           p.Side,
		Qty:            p.Qty,
		Entry:          p.Entry,
		CurrentPrice:   p.CurrentPrice,
		StopLoss:       p.StopLoss,
		InitialStop:    p.InitialStop,
		TrailingActive: p.TrailingActive,
		UnrealizedPnl:  p.UnrealizedPnl,
		OpenTime:       p.OpenTime,
	}
}

func positionRecord(m storemodel.PositionModel) store.Position {
	return store.Position{
		ID:             m.ID,
		Symbol:         m.Symbol,
		Side:           m.Side,
		Qty:            m.Qty,
		Entry:          m.Entry,
		CurrentPrice:   m.CurrentPrice,
		StopLoss:       m.StopLoss,
		InitialStop:    m.InitialStop,
		TrailingActive: m.TrailingActive,
		UnrealizedPnl:  m.UnrealizedPnl,
		OpenTime:       m.OpenTime,
	}
}

func tradeModel(t store.Trade) *storemodel.TradeModel {
	return &storemodel.TradeModel{
		ID:        t.ID,
		TS:        t.TS,
		Symbol:    t.Symbol,
		Side:      t.Side,
		Qty:       t.Qty,
		Entry:     t.Entry,
		StopLoss:  t.StopLoss,
		Status:    t.Status,
		Pnl:       t.Pnl,
		ExitPrice: t.ExitPrice,
		ExitTime:  t.ExitTime,
		Reason:    t.Reason,
		Signal:    datatypes.JSON(t.Signal),
	}
}

func tradeRecord(m storemodel.TradeModel) store.Trade {
	return store.Trade{
		ID:        m.ID,
		TS:        m.TS,
		Symbol:    m.Symbol,
		Side:      m.Side,
		Qty:       m.Qty,
		Entry:     m.Entry,
		StopLoss:  m.StopLoss,
		Status:    m.Status,
		Pnl:       m.Pnl,
		ExitPrice: m.ExitPrice,
		ExitTime:  m.ExitTime,
		Reason:    m.Reason,
		Signal:    []byte(m.Signal),
	}
}

func settingsModel(s config.Settings) storemodel.SettingsModel {
	return storemodel.SettingsModel{
		ID:               singletonID,
		Exchange:         s.Exchange,
		Symbols:          s.Symbols,
		Timeframe:        s.Timeframe,
		RiskPerTrade:     s.RiskPerTrade,
		DailyMaxDrawdown: s.DailyMaxDrawdown,
		MaxConcurrentPos: s.MaxConcurrentPos,
		HHVLen:           s.HHVLen,
		ATRLen:           s.ATRLen,
		VolZLookback:     s.VolZLookback,
		ATRMultSL:        s.ATRMultSL,
		ATRMultTrail:     s.ATRMultTrail,
		VolZMin:          s.VolZMin,
		DryRun:           s.DryRun,
	}
}

func settingsRecord(m storemodel.SettingsModel) config.Settings {
	return config.Settings{
		Exchange:         m.Exchange,
		Symbols:          m.Symbols,
		Timeframe:        m.Timeframe,
		RiskPerTrade:     m.RiskPerTrade,
		DailyMaxDrawdown: m.DailyMaxDrawdown,
		MaxConcurrentPos: m.MaxConcurrentPos,
		HHVLen:           m.HHVLen,
		ATRLen:           m.ATRLen,
		VolZLookback:     m.VolZLookback,
		ATRMultSL:        m.ATRMultSL,
		ATRMultTrail:     m.ATRMultTrail,
		VolZMin:          m.VolZMin,
		DryRun:           m.DryRun,
	}
}

var _ store.Store = (*GormStore)(nil)

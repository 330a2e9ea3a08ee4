package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/swadeshika/storefront/internal/cache"
	"github.com/swadeshika/storefront/internal/config"
	"github.com/swadeshika/storefront/internal/constants"
	"github.com/swadeshika/storefront/internal/models"
	"github.com/swadeshika/storefront/internal/repository"

	"github.com/shopspring/decimal"
)

const storeSettingsCacheKey = "settings:store"
const storeSettingsCacheTTL = 5 * time.Minute

// SettingService resolves runtime store settings: config supplies the
// defaults, the settings table overrides them, Redis caches the merged
// result.
type SettingService struct {
	repo     repository.SettingRepository
	cfg      *config.Config
	defaults StoreSettings
}

// NewSettingService creates a setting service. Bad config values fall
// back to safe defaults rather than failing startup.
func NewSettingService(repo repository.SettingRepository, cfg *config.Config) *SettingService {
	return &SettingService{
		repo:     repo,
		cfg:      cfg,
		defaults: storeDefaultsFromConfig(cfg),
	}
}

func storeDefaultsFromConfig(cfg *config.Config) StoreSettings {
	settings := StoreSettings{
		FreeShippingThreshold: mustMoney("999.00"),
		FlatShippingRate:      mustMoney("49.00"),
		TaxPercent:            decimal.NewFromInt(18),
		TaxOnDiscounted:       false,
		Currency:              constants.SiteCurrencyDefault,
		PaymentExpireMinutes:  15,
	}
	if cfg == nil {
		return settings
	}
	if m, err := models.NewMoneyFromString(cfg.Store.FreeShippingThreshold); err == nil {
		settings.FreeShippingThreshold = m
	}
	if m, err := models.NewMoneyFromString(cfg.Store.FlatShippingRate); err == nil {
		settings.FlatShippingRate = m
	}
	if d, err := decimal.NewFromString(cfg.Store.TaxPercent); err == nil && !d.IsNegative() {
		settings.TaxPercent = d
	}
	settings.TaxOnDiscounted = cfg.Store.TaxOnDiscounted
	if c := strings.ToUpper(strings.TrimSpace(cfg.Order.Currency)); c != "" {
		settings.Currency = c
	}
	if cfg.Order.PaymentExpireMinutes > 0 {
		settings.PaymentExpireMinutes = cfg.Order.PaymentExpireMinutes
	}
	return settings
}

func mustMoney(s string) models.Money {
	m, _ := models.NewMoneyFromString(s)
	return m
}

// storeSettingsSnapshot is the cacheable wire form of StoreSettings.
type storeSettingsSnapshot struct {
	FreeShippingThreshold string `json:"free_shipping_threshold"`
	FlatShippingRate      string `json:"flat_shipping_rate"`
	TaxPercent            string `json:"tax_percent"`
	TaxOnDiscounted       bool   `json:"tax_on_discounted"`
	Currency              string `json:"currency"`
	PaymentExpireMinutes  int    `json:"payment_expire_minutes"`
}

// GetStoreSettings merges table overrides onto config defaults.
func (s *SettingService) GetStoreSettings(ctx context.Context) (StoreSettings, error) {
	var snapshot storeSettingsSnapshot
	if hit, err := cache.GetJSON(ctx, storeSettingsCacheKey, &snapshot); err == nil && hit {
		return snapshotToSettings(snapshot, s.defaults), nil
	}

	settings := s.defaults
	if s.repo != nil {
		settings = s.applyOverrides(settings)
	}

	_ = cache.SetJSON(ctx, storeSettingsCacheKey, settingsToSnapshot(settings), storeSettingsCacheTTL)
	return settings, nil
}

func (s *SettingService) applyOverrides(settings StoreSettings) StoreSettings {
	if raw := s.lookupString(constants.SettingKeyFreeShippingThreshold); raw != "" {
		if m, err := models.NewMoneyFromString(raw); err == nil {
			settings.FreeShippingThreshold = m
		}
	}
	if raw := s.lookupString(constants.SettingKeyFlatShippingRate); raw != "" {
		if m, err := models.NewMoneyFromString(raw); err == nil {
			settings.FlatShippingRate = m
		}
	}
	if raw := s.lookupString(constants.SettingKeyTaxPercent); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil && !d.IsNegative() {
			settings.TaxPercent = d
		}
	}
	if raw := s.lookupValue(constants.SettingKeyTaxOnDiscounted); raw != nil {
		if b, ok := raw.(bool); ok {
			settings.TaxOnDiscounted = b
		}
	}
	if raw := s.lookupValue(constants.SettingKeyPaymentExpireMinutes); raw != nil {
		if minutes, err := parseSettingInt(raw); err == nil && minutes > 0 {
			settings.PaymentExpireMinutes = minutes
		}
	}
	if raw := s.lookupString(constants.SettingKeyStoreCurrency); raw != "" {
		settings.Currency = strings.ToUpper(strings.TrimSpace(raw))
	}
	return settings
}

// Update writes one setting and drops the cache.
func (s *SettingService) Update(ctx context.Context, key string, value interface{}) error {
	setting := &models.Setting{
		Key:       key,
		ValueJSON: models.JSON{"value": value},
	}
	if err := s.repo.Upsert(setting); err != nil {
		return err
	}
	return cache.Del(ctx, storeSettingsCacheKey)
}

// GetByKey returns one raw setting value.
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

func (s *SettingService) lookupValue(key string) interface{} {
	setting, err := s.repo.GetByKey(key)
	if err != nil || setting == nil {
		return nil
	}
	return setting.ValueJSON["value"]
}

func (s *SettingService) lookupString(key string) string {
	raw := s.lookupValue(key)
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func settingsToSnapshot(settings StoreSettings) storeSettingsSnapshot {
	return storeSettingsSnapshot{
		FreeShippingThreshold: settings.FreeShippingThreshold.String(),
		FlatShippingRate:      settings.FlatShippingRate.String(),
		TaxPercent:            settings.TaxPercent.String(),
		TaxOnDiscounted:       settings.TaxOnDiscounted,
		Currency:              settings.Currency,
		PaymentExpireMinutes:  settings.PaymentExpireMinutes,
	}
}

func snapshotToSettings(snapshot storeSettingsSnapshot, fallback StoreSettings) StoreSettings {
	settings := fallback
	if m, err := models.NewMoneyFromString(snapshot.FreeShippingThreshold); err == nil {
		settings.FreeShippingThreshold = m
	}
	if m, err := models.NewMoneyFromString(snapshot.FlatShippingRate); err == nil {
		settings.FlatShippingRate = m
	}
	if d, err := decimal.NewFromString(snapshot.TaxPercent); err == nil {
		settings.TaxPercent = d
	}
	settings.TaxOnDiscounted = snapshot.TaxOnDiscounted
	if snapshot.Currency != "" {
		settings.Currency = snapshot.Currency
	}
	if snapshot.PaymentExpireMinutes > 0 {
		settings.PaymentExpireMinutes = snapshot.PaymentExpireMinutes
	}
	return settings
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		return strconv.Atoi(trimmed)
	default:
		return 0, fmt.Errorf("unsupported setting type %T", value)
	}
}

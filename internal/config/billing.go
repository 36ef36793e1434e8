package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig is the operator-tunable billing policy. It is loaded from
// billing.yml and hot-reloaded on change; invalid updates are ignored.
type BillingConfig struct {
	// DefaultDueDay is the day of month used for invoice due dates when
	// the compose request does not carry one.
	DefaultDueDay int `mapstructure:"defaultDueDay"`

	Discount DiscountDefaults `mapstructure:"discount"`
	Overdue  OverdueSweep     `mapstructure:"overdue"`
}

// DiscountDefaults configures the early-payment discount applied to
// composed invoices when the request does not override it.
type DiscountDefaults struct {
	Enabled       bool    `mapstructure:"enabled"`
	Type          string  `mapstructure:"type"` // fixed | percentage
	Value         float64 `mapstructure:"value"`
	DaysBeforeDue int     `mapstructure:"daysBeforeDue"`
}

// OverdueSweep configures the periodic pending-to-overdue transition.
type OverdueSweep struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"intervalMinutes"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultDueDay: 10,
		Discount: DiscountDefaults{
			Enabled:       false,
			Type:          "percentage",
			Value:         0,
			DaysBeforeDue: 5,
		},
		Overdue: OverdueSweep{
			Enabled:         true,
			IntervalMinutes: 60,
		},
	}
}

func (c OverdueSweep) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/predialis/config")
	v.AddConfigPath("/etc/predialis")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PREDIALIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.defaultDueDay", defaults.DefaultDueDay)
		v.SetDefault("billing.discount", defaults.Discount)
		v.SetDefault("billing.overdue", defaults.Overdue)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed policy with no file watch.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DefaultDueDay < 1 || cfg.DefaultDueDay > 28 {
		return errors.New("billing.defaultDueDay must be between 1 and 28")
	}
	switch cfg.Discount.Type {
	case "fixed", "percentage":
	default:
		return errors.New("billing.discount.type must be fixed or percentage")
	}
	if cfg.Discount.Value < 0 {
		return errors.New("billing.discount.value must not be negative")
	}
	if cfg.Discount.Type == "percentage" && cfg.Discount.Value > 100 {
		return errors.New("billing.discount.value must not exceed 100 percent")
	}
	if cfg.Overdue.IntervalMinutes < 0 {
		return errors.New("billing.overdue.intervalMinutes must not be negative")
	}
	return nil
}

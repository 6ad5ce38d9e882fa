package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SLAPolicy maps an order status to its hour budget. Statuses without an
// entry carry no SLA. Budgets are calendar hours; no business-day
// adjustment is applied.
type SLAPolicy struct {
	Hours                   map[string]int `mapstructure:"hours"`
	EngravingSurchargeHours int            `mapstructure:"engravingSurchargeHours"`
}

func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{
		Hours: map[string]int{
			"pending":       24,
			"confirmed":     48,
			"processing":    72,
			"ready_to_pack": 24,
			"packed":        24,
			"shipped":       168,
		},
		EngravingSurchargeHours: 24,
	}
}

// SLAPolicyHolder serves the current policy and hot-reloads it when
// sla.yml changes on disk.
type SLAPolicyHolder struct {
	current atomic.Value // holds SLAPolicy
}

func NewSLAPolicyHolder() (*SLAPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("sla")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/opshub")
	v.AddConfigPath(".")

	v.SetEnvPrefix("OPSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSLAPolicy()
		v.SetDefault("sla.hours", defaults.Hours)
		v.SetDefault("sla.engravingSurchargeHours", defaults.EngravingSurchargeHours)
	}

	var policy SLAPolicy
	if err := v.UnmarshalKey("sla", &policy); err != nil {
		return nil, err
	}
	if err := validateSLAPolicy(policy); err != nil {
		return nil, err
	}

	holder := &SLAPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SLAPolicy
		if err := v.UnmarshalKey("sla", &updated); err != nil {
			log.Printf("[sla-config] reload failed: %v", err)
			return
		}
		if err := validateSLAPolicy(updated); err != nil {
			log.Printf("[sla-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[sla-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSLAPolicyHolder wraps a fixed policy, used by tests.
func NewStaticSLAPolicyHolder(policy SLAPolicy) *SLAPolicyHolder {
	holder := &SLAPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *SLAPolicyHolder) Get() SLAPolicy {
	return h.current.Load().(SLAPolicy)
}

func validateSLAPolicy(policy SLAPolicy) error {
	if len(policy.Hours) == 0 {
		return errors.New("sla.hours cannot be empty")
	}
	for status, hours := range policy.Hours {
		if hours <= 0 {
			return errors.New("sla.hours." + status + " must be positive")
		}
	}
	if policy.EngravingSurchargeHours < 0 {
		return errors.New("sla.engravingSurchargeHours cannot be negative")
	}
	return nil
}

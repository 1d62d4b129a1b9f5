package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DashboardConfig holds the presentation defaults for the dashboard page.
type DashboardConfig struct {
	DefaultEntities []string
	DefaultMetric   string
	TableMaxRows    int
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		DefaultEntities: []string{"POLICE DEPARTMENT", "FIRE DEPARTMENT"},
		DefaultMetric:   "Total Pay",
		TableMaxRows:    10,
	}
}

type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

// NewStaticDashboardConfigHolder returns a holder that never reloads.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewDashboardConfigHolder(log *zap.Logger) (*DashboardConfigHolder, error) {
	return newDashboardConfigHolder(log, "/etc/paydash", ".")
}

func newDashboardConfigHolder(log *zap.Logger, paths ...string) (*DashboardConfigHolder, error) {
	log = log.Named("dashboard-config")
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	v.SetDefault("dashboard.defaultEntities", defaults.DefaultEntities)
	v.SetDefault("dashboard.defaultMetric", defaults.DefaultMetric)
	v.SetDefault("dashboard.tableMaxRows", defaults.TableMaxRows)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	cfg := readDashboardConfig(v)
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDashboardConfigHolder(cfg)
	if !found {
		log.Info("dashboard config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := readDashboardConfig(v)
		if err := validateDashboardConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	cfg := h.current.Load().(DashboardConfig)
	cfg.DefaultEntities = append([]string(nil), cfg.DefaultEntities...)
	return cfg
}

// readDashboardConfig resolves each key on its own so a partial file keeps
// the defaults for missing keys.
func readDashboardConfig(v *viper.Viper) DashboardConfig {
	return DashboardConfig{
		DefaultEntities: v.GetStringSlice("dashboard.defaultEntities"),
		DefaultMetric:   strings.TrimSpace(v.GetString("dashboard.defaultMetric")),
		TableMaxRows:    v.GetInt("dashboard.tableMaxRows"),
	}
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if strings.TrimSpace(cfg.DefaultMetric) == "" {
		return errors.New("dashboard.defaultMetric cannot be empty")
	}
	if cfg.TableMaxRows <= 0 {
		return errors.New("dashboard.tableMaxRows must be positive")
	}
	return nil
}

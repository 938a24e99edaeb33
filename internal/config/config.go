package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Database  DatabaseConfig  `toml:"database"`
	Storage   StorageConfig   `toml:"storage"`
	Redis     RedisConfig     `toml:"redis"`
	Holidays  HolidaysConfig  `toml:"holidays"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Booking   BookingConfig   `toml:"booking"`
	Generator GeneratorConfig `toml:"generator"`
	Sweeper   SweeperConfig   `toml:"sweeper"`
	Calendar  CalendarConfig  `toml:"calendar"`
	Seed      SeedConfig      `toml:"seed"`
}

// ServerConfig служебный HTTP сервер (health, метрики, ручной запуск задач)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// StorageConfig выбор хранилища: postgres или memory
type StorageConfig struct {
	Driver string `toml:"driver"`
}

type RedisConfig struct {
	Address  string `toml:"address"` // пусто - кэш праздников выключен
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	CacheTTL int    `toml:"cache_ttl"` // секунды
}

func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.CacheTTL) * time.Second
}

type HolidaysConfig struct {
	URL     string `toml:"url"`     // пусто - используются только static
	Timeout int    `toml:"timeout"` // секунды
	// Static праздники по странам, формат YYYY-MM-DD
	Static map[string][]string `toml:"static"`
}

type KafkaConfig struct {
	Brokers string `toml:"brokers"` // через запятую, пусто - события только логируются
	Topic   string `toml:"topic"`
}

type BookingConfig struct {
	CheckInGraceMinutes int `toml:"check_in_grace_minutes"`
	OCCMaxAttempts      int `toml:"occ_max_attempts"`
	OCCBackoffMillis    int `toml:"occ_backoff_millis"`
}

func (b BookingConfig) Backoff() time.Duration {
	return time.Duration(b.OCCBackoffMillis) * time.Millisecond
}

type GeneratorConfig struct {
	WindowDays         int `toml:"window_days"`
	DistributionFactor int `toml:"distribution_factor"`
	Interval           int `toml:"interval"` // секунды, 0 - только ручной запуск
}

type SweeperConfig struct {
	GraceDays      int `toml:"grace_days"`
	PageSize       int `toml:"page_size"`
	Interval       int `toml:"interval"`        // секунды, 0 - только ручной запуск
	ExpireInterval int `toml:"expire_interval"` // секунды, 0 - только ручной запуск
}

type CalendarConfig struct {
	DefaultCountry string   `toml:"default_country"`
	WeekendDays    []string `toml:"weekend_days"` // saturday, sunday, ...
}

// Weekend выходные дни недели. Неизвестные названия отсекает Validate.
func (c CalendarConfig) Weekend() []time.Weekday {
	out := make([]time.Weekday, 0, len(c.WeekendDays))
	for _, d := range c.WeekendDays {
		if wd, ok := ParseWeekday(d); ok {
			out = append(out, wd)
		}
	}
	return out
}

// SeedConfig начальные данные для драйвера memory
type SeedConfig struct {
	Branches []SeedBranch `toml:"branches"`
}

type SeedBranch struct {
	ID          string         `toml:"id"`
	Name        string         `toml:"name"`
	CountryCode string         `toml:"country_code"`
	Hours       []SeedHours    `toml:"hours"`
	Capacity    []SeedCapacity `toml:"capacity"`
}

type SeedHours struct {
	Weekday  string `toml:"weekday"` // monday..sunday
	Date     string `toml:"date"`    // YYYY-MM-DD, переопределяет weekday
	Open     string `toml:"open"`
	Close    string `toml:"close"`
	IsClosed bool   `toml:"is_closed"`
}

type SeedCapacity struct {
	DayType             string  `toml:"day_type"`
	StaffCount          int     `toml:"staff_count"`
	SlotDurationMinutes int     `toml:"slot_duration_minutes"`
	UtilizationFactor   float64 `toml:"utilization_factor"`
	MaxBookingCapacity  int     `toml:"max_booking_capacity"`
}

// Load читает TOML файл, подставляет ${ENV} переменные, применяет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(os.ExpandEnv(string(raw)))
}

// Parse разбирает TOML из строки
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 15)

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "branch-appointments"
	}

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}

	setDefault(&c.Redis.CacheTTL, 24*60*60)
	setDefault(&c.Holidays.Timeout, 5)
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "appointments.lifecycle"
	}

	setDefault(&c.Booking.CheckInGraceMinutes, 5)
	setDefault(&c.Booking.OCCMaxAttempts, 3)
	setDefault(&c.Booking.OCCBackoffMillis, 50)
	setDefault(&c.Generator.WindowDays, 14)
	setDefault(&c.Generator.DistributionFactor, 2)
	setDefault(&c.Sweeper.GraceDays, 3)
	setDefault(&c.Sweeper.PageSize, 500)

	if c.Calendar.DefaultCountry == "" {
		c.Calendar.DefaultCountry = "RU"
	}
	if len(c.Calendar.WeekendDays) == 0 {
		c.Calendar.WeekendDays = []string{"saturday", "sunday"}
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Booking.OCCMaxAttempts < 1 {
		errs = append(errs, errors.New("booking.occ_max_attempts must be positive"))
	}
	if c.Booking.CheckInGraceMinutes < 0 {
		errs = append(errs, errors.New("booking.check_in_grace_minutes must not be negative"))
	}
	if c.Generator.WindowDays < 1 || c.Generator.WindowDays > 90 {
		errs = append(errs, errors.New("generator.window_days must be in [1, 90]"))
	}
	if c.Generator.DistributionFactor < 1 {
		errs = append(errs, errors.New("generator.distribution_factor must be positive"))
	}
	if c.Sweeper.PageSize < 1 || c.Sweeper.PageSize > 5000 {
		errs = append(errs, errors.New("sweeper.page_size must be in [1, 5000]"))
	}
	if c.Sweeper.GraceDays < 0 {
		errs = append(errs, errors.New("sweeper.grace_days must not be negative"))
	}
	for _, d := range c.Calendar.WeekendDays {
		if _, ok := ParseWeekday(d); !ok {
			errs = append(errs, fmt.Errorf("calendar.weekend_days: unknown day %q", d))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// KafkaBrokers список брокеров без пустых элементов
func (k KafkaConfig) KafkaBrokers() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// ParseWeekday разбирает название дня недели на английском
func ParseWeekday(s string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, true
		}
	}
	return 0, false
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

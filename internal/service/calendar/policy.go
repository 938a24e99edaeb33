package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

// DegradedTTL сколько держится в кэше список праздников, полученный без провайдера
const DegradedTTL = 5 * time.Minute

type yearKey struct {
	country string
	year    int
}

// yearEntry праздники страны за год. Нулевой expiresAt - запись не устаревает.
type yearEntry struct {
	days      map[time.Time]bool
	expiresAt time.Time
}

func (e yearEntry) fresh(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// Policy классифицирует дату: праздник, выходной или будний день.
// Праздник имеет приоритет над выходным. Праздники кэшируются в процессе по (страна, год),
// список без ответа провайдера - только на degradedTTL.
type Policy struct {
	lookup         HolidayLookup
	weekend        map[time.Weekday]bool
	defaultCountry string
	logger         Logger
	now            func() time.Time
	degradedTTL    time.Duration

	mu     sync.RWMutex
	years  map[yearKey]yearEntry
	flight singleflight.Group
}

// NewPolicy создает политику календаря. Пустой список weekend означает субботу и воскресенье.
func NewPolicy(lookup HolidayLookup, weekend []time.Weekday, defaultCountry string, logger Logger) *Policy {
	if len(weekend) == 0 {
		weekend = []time.Weekday{time.Saturday, time.Sunday}
	}
	days := make(map[time.Weekday]bool, len(weekend))
	for _, d := range weekend {
		days[d] = true
	}
	return &Policy{
		lookup:         lookup,
		weekend:        days,
		defaultCountry: strings.ToUpper(defaultCountry),
		logger:         logger,
		now:            time.Now,
		degradedTTL:    DegradedTTL,
		years:          make(map[yearKey]yearEntry),
	}
}

// Classify возвращает тип дня для даты в календаре страны (пусто - страна по умолчанию)
func (p *Policy) Classify(ctx context.Context, date time.Time, countryCode string) (domain.DayType, error) {
	if date.IsZero() {
		return "", ErrInvalidDate
	}
	day := domain.CivilDay(date)

	holidays, err := p.holidaysFor(ctx, p.country(countryCode), day.Year())
	if err != nil {
		return "", err
	}

	switch {
	case holidays[day]:
		return domain.DayTypeHoliday, nil
	case p.weekend[day.Weekday()]:
		return domain.DayTypeWeekend, nil
	default:
		return domain.DayTypeWeekDay, nil
	}
}

// IsHoliday true, если дата является праздником в календаре страны
func (p *Policy) IsHoliday(ctx context.Context, date time.Time, countryCode string) (bool, error) {
	dayType, err := p.Classify(ctx, date, countryCode)
	if err != nil {
		return false, err
	}
	return dayType == domain.DayTypeHoliday, nil
}

// Invalidate сбрасывает кэш праздников процесса
func (p *Policy) Invalidate() {
	p.mu.Lock()
	p.years = make(map[yearKey]yearEntry)
	p.mu.Unlock()
}

func (p *Policy) country(countryCode string) string {
	if c := strings.ToUpper(strings.TrimSpace(countryCode)); c != "" {
		return c
	}
	return p.defaultCountry
}

func (p *Policy) holidaysFor(ctx context.Context, country string, year int) (map[time.Time]bool, error) {
	key := yearKey{country: country, year: year}

	p.mu.RLock()
	cached, ok := p.years[key]
	p.mu.RUnlock()
	if ok && cached.fresh(p.now()) {
		return cached.days, nil
	}

	// параллельные генерации по одной стране ходят к провайдеру один раз
	v, err, _ := p.flight.Do(fmt.Sprintf("%s:%d", country, year), func() (interface{}, error) {
		result, err := p.lookup.Holidays(ctx, country, year)
		if err != nil {
			return nil, err
		}
		entry := yearEntry{days: make(map[time.Time]bool, len(result.Holidays))}
		for _, h := range result.Holidays {
			entry.days[domain.CivilDay(h.Date)] = true
		}
		if result.Degraded {
			entry.expiresAt = p.now().Add(p.degradedTTL)
			p.logger.Warn("CalendarPolicy: %d fallback holidays for %s/%d, provider will be asked again after %s",
				len(entry.days), country, year, p.degradedTTL)
		} else {
			p.logger.Info("CalendarPolicy: loaded %d holidays for %s/%d", len(entry.days), country, year)
		}

		p.mu.Lock()
		p.years[key] = entry
		p.mu.Unlock()
		return entry.days, nil
	})
	if err != nil {
		p.logger.Error("CalendarPolicy: failed to load holidays for %s/%d: %v", country, year, err)
		return nil, fmt.Errorf("%w: %s/%d: %v", ErrLookupFailed, country, year, err)
	}
	return v.(map[time.Time]bool), nil
}

package profile

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrygo/tourdesk/server/service/tour"
	"github.com/hrygo/tourdesk/server/timezone"
)

// Profile is the configuration to start the tour desk.
type Profile struct {
	// Mode can be "prod" or "dev".
	Mode string
	// Addr is the binding address for server.
	Addr string
	// Port is the binding port for server.
	Port int
	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string
	// Version is the current version of server.
	Version string

	// Scheduling policy
	VisitDurationMinutes int    // TOUR_VISIT_DURATION_MINUTES (default: 60)
	TravelBufferMinutes  int    // TOUR_TRAVEL_BUFFER_MINUTES (default: 30)
	WorkStartHour        int    // TOUR_WORKING_HOURS_START (default: 10)
	WorkEndHour          int    // TOUR_WORKING_HOURS_END (default: 18)
	WorkingDays          string // TOUR_WORKING_DAYS (default: mon,tue,wed,thu,fri)

	// Google Calendar
	CalendarID               string // GOOGLE_CALENDAR_ID (default: primary)
	Timezone                 string // GOOGLE_CALENDAR_TIMEZONE (default: Asia/Kolkata)
	ServiceAccountEmail      string // GOOGLE_SERVICE_ACCOUNT_EMAIL
	ServiceAccountPrivateKey string // GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY

	// ListingsPath is the listings JSON file; empty uses the bundled sample.
	ListingsPath string

	// LLM
	OpenAIAPIKey  string // OPENAI_API_KEY
	OpenAIBaseURL string // OPENAI_BASE_URL
	OpenAIModel   string // OPENAI_MODEL (default: gpt-4o)

	// DBPath is the booking ledger sqlite DSN.
	DBPath string
}

// setting binds one viper key to its environment names.
type setting struct {
	key  string
	env  string
	dflt any
}

var settings = []setting{
	{"mode", "MODE", "dev"},
	{"host", "HOST", "0.0.0.0"},
	{"port", "PORT", 8000},
	{"cors-origins", "CORS_ORIGINS", "*"},
	{"visit-duration-minutes", "TOUR_VISIT_DURATION_MINUTES", int(tour.DefaultVisitDuration / time.Minute)},
	{"travel-buffer-minutes", "TOUR_TRAVEL_BUFFER_MINUTES", int(tour.DefaultTravelBuffer / time.Minute)},
	{"working-hours-start", "TOUR_WORKING_HOURS_START", tour.DefaultWorkStartHour},
	{"working-hours-end", "TOUR_WORKING_HOURS_END", tour.DefaultWorkEndHour},
	{"working-days", "TOUR_WORKING_DAYS", "mon,tue,wed,thu,fri"},
	{"calendar-id", "GOOGLE_CALENDAR_ID", "primary"},
	{"timezone", "GOOGLE_CALENDAR_TIMEZONE", timezone.DefaultTimezone},
	{"service-account-email", "GOOGLE_SERVICE_ACCOUNT_EMAIL", ""},
	{"service-account-private-key", "GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY", ""},
	{"listings-path", "LISTINGS_PATH", ""},
	{"openai-api-key", "OPENAI_API_KEY", ""},
	{"openai-base-url", "OPENAI_BASE_URL", ""},
	{"openai-model", "OPENAI_MODEL", "gpt-4o"},
	{"db-path", "AGENT_DB_PATH", ":memory:"},
}

// NewViper returns a viper instance with defaults and environment bindings.
// Every setting is read from TOURDESK_<NAME> first, then the bare <NAME>.
func NewViper() *viper.Viper {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.dflt)
		_ = v.BindEnv(s.key, "TOURDESK_"+s.env, s.env)
	}
	return v
}

// BindFlags binds command-line flags that share a setting's key.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, s := range settings {
		if f := flags.Lookup(s.key); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return errors.Wrapf(err, "failed to bind flag %s", s.key)
			}
		}
	}
	return nil
}

// Load reads a Profile from v.
func Load(v *viper.Viper) *Profile {
	return &Profile{
		Mode:                     strings.ToLower(strings.TrimSpace(v.GetString("mode"))),
		Addr:                     v.GetString("host"),
		Port:                     v.GetInt("port"),
		CORSOrigins:              splitList(v.GetString("cors-origins")),
		VisitDurationMinutes:     v.GetInt("visit-duration-minutes"),
		TravelBufferMinutes:      v.GetInt("travel-buffer-minutes"),
		WorkStartHour:            v.GetInt("working-hours-start"),
		WorkEndHour:              v.GetInt("working-hours-end"),
		WorkingDays:              v.GetString("working-days"),
		CalendarID:               v.GetString("calendar-id"),
		Timezone:                 v.GetString("timezone"),
		ServiceAccountEmail:      v.GetString("service-account-email"),
		ServiceAccountPrivateKey: v.GetString("service-account-private-key"),
		ListingsPath:             v.GetString("listings-path"),
		OpenAIAPIKey:             v.GetString("openai-api-key"),
		OpenAIBaseURL:            v.GetString("openai-base-url"),
		OpenAIModel:              v.GetString("openai-model"),
		DBPath:                   v.GetString("db-path"),
	}
}

// FromEnv loads a Profile from environment variables and defaults only.
func FromEnv() *Profile {
	return Load(NewViper())
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled reports whether an LLM API key is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.OpenAIAPIKey != ""
}

// HasCalendarCredentials reports whether a service account is configured.
func (p *Profile) HasCalendarCredentials() bool {
	return p.ServiceAccountEmail != "" && p.ServiceAccountPrivateKey != ""
}

// ListenAddr returns host:port.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

// Validate normalizes the profile and checks the scheduling policy.
// Missing calendar credentials are not an error; calendar calls fail individually.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	if p.CalendarID == "" {
		p.CalendarID = "primary"
	}
	if _, err := p.TourConfig(); err != nil {
		return err
	}
	if !p.HasCalendarCredentials() {
		slog.Warn("google service account is not configured; calendar operations will fail")
	}
	return nil
}

// TourConfig builds and validates the scheduling policy.
func (p *Profile) TourConfig() (tour.Config, error) {
	loc, err := timezone.ParseTimezone(p.Timezone)
	if err != nil {
		return tour.Config{}, errors.Wrap(err, "invalid calendar time zone")
	}
	days, err := parseWorkingDays(p.WorkingDays)
	if err != nil {
		return tour.Config{}, err
	}
	cfg := tour.Config{
		VisitDuration: time.Duration(p.VisitDurationMinutes) * time.Minute,
		TravelBuffer:  time.Duration(p.TravelBufferMinutes) * time.Minute,
		WorkStartHour: p.WorkStartHour,
		WorkEndHour:   p.WorkEndHour,
		WorkingDays:   days,
		Location:      loc,
	}
	if err := cfg.Validate(); err != nil {
		return tour.Config{}, errors.Wrap(err, "invalid scheduling policy")
	}
	return cfg, nil
}

// PrivateKey returns the service account key with literal "\n" escapes expanded.
func (p *Profile) PrivateKey() string {
	return strings.ReplaceAll(p.ServiceAccountPrivateKey, `\n`, "\n")
}

func parseWorkingDays(value string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, name := range splitList(value) {
		d, err := timezone.ParseWeekday(name)
		if err != nil {
			return nil, errors.Wrap(err, "invalid working days")
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, errors.New("at least one working day is required")
	}
	return days, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

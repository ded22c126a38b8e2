package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"` // dev|prod, selects the logger profile
	} `yaml:"server"`
	Auth struct {
		Secret string `yaml:"secret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz QuizConfig `yaml:"quiz"`
}

// QuizConfig carries the quiz rule constants. Zero values fall back to the
// defaults applied by Rules().
type QuizConfig struct {
	Type             string `yaml:"type"`
	TimePerQuestion  int    `yaml:"time_per_question"`
	PassingScore     int    `yaml:"passing_score"`
	MaxDailyAttempts int    `yaml:"max_daily_attempts"`
	TotalQuestions   int    `yaml:"total_questions"`
	CacheTTL         string `yaml:"cache_ttl"`
}

// Rules is the resolved, defaulted form of QuizConfig handed to the engine.
type Rules struct {
	QuizType         string
	TimePerQuestion  int
	PassingScore     int
	MaxDailyAttempts int
	TotalQuestions   int
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Rules applies defaults for any unset quiz constant.
func (q QuizConfig) Rules() Rules {
	r := Rules{
		QuizType:         q.Type,
		TimePerQuestion:  q.TimePerQuestion,
		PassingScore:     q.PassingScore,
		MaxDailyAttempts: q.MaxDailyAttempts,
		TotalQuestions:   q.TotalQuestions,
	}
	if r.QuizType == "" {
		r.QuizType = "contributor"
	}
	if r.TimePerQuestion <= 0 {
		r.TimePerQuestion = 45
	}
	if r.PassingScore <= 0 {
		r.PassingScore = 70
	}
	if r.MaxDailyAttempts <= 0 {
		r.MaxDailyAttempts = 3
	}
	if r.TotalQuestions <= 0 {
		r.TotalQuestions = 10
	}
	return r
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

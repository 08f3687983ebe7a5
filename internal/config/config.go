package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "CURATOR_CONFIG"

	openRouterKeyEnv = "OPENROUTER_API_KEY"

	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChannelEnv   = "TELEGRAM_CHANNEL_ID"
	telegramErrorChatEnv = "TELEGRAM_ERROR_CHAT_ID"

	twitterAPIKeyEnv       = "TWITTER_API_KEY"
	twitterAPISecretEnv    = "TWITTER_API_SECRET"
	twitterAccessTokenEnv  = "TWITTER_ACCESS_TOKEN"
	twitterAccessSecretEnv = "TWITTER_ACCESS_SECRET"
	twitterMonitorEnv      = "TWITTER_MONITOR_USERS"

	schedulePapersEnv  = "SCHEDULE_PAPERS_CRON"
	scheduleBlogsEnv   = "SCHEDULE_BLOGS_CRON"
	scheduleTwitterEnv = "SCHEDULE_TWITTER_CRON"
	timezoneEnv        = "TIMEZONE"

	minScoreEnv     = "ORACLE_MIN_SCORE"
	maxPapersEnv    = "ORACLE_MAX_PAPERS_PER_RUN"
	maxBlogsEnv     = "ORACLE_MAX_BLOGS_PER_RUN"
	dbPathEnv       = "DB_PATH"
	pdfDirEnv       = "PDF_DIR"
	imageDirEnv     = "IMG_DIR"
	loggingLevelEnv = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Oracle    OracleConfig    `yaml:"oracle"`
	LLM       LLMConfig       `yaml:"llm"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Twitter   TwitterConfig   `yaml:"twitter"`
	Sources   SourceConfig    `yaml:"sources"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig points at the local SQLite ledger file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig holds on-disk directories for downloaded artifacts.
type StorageConfig struct {
	PDFDir   string `yaml:"pdfDir"`
	ImageDir string `yaml:"imageDir"`
}

// SchedulerConfig defines when each category pipeline runs.
type SchedulerConfig struct {
	PapersCron  string         `yaml:"papersCron"`
	BlogsCron   string         `yaml:"blogsCron"`
	TwitterCron string         `yaml:"twitterCron"`
	Timezone    string         `yaml:"timezone"`
	location    *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// OracleConfig tunes the judge gating.
type OracleConfig struct {
	MinScore        int `yaml:"minScore"`
	MaxPapersPerRun int `yaml:"maxPapersPerRun"`
	MaxBlogsPerRun  int `yaml:"maxBlogsPerRun"`
}

// LLMConfig describes the OpenRouter endpoint and the per-role models.
type LLMConfig struct {
	APIKey         string `yaml:"apiKey"`
	BaseURL        string `yaml:"baseUrl"`
	OracleModel    string `yaml:"oracleModel"`
	FactCheckModel string `yaml:"factCheckModel"`
	PostRUModel    string `yaml:"postRuModel"`
	PostENModel    string `yaml:"postEnModel"`
	VisionModel    string `yaml:"visionModel"`
}

// TelegramConfig wires the publishing channel and the operator error chat.
type TelegramConfig struct {
	BotToken    string `yaml:"botToken"`
	ChannelID   string `yaml:"channelId"`
	ErrorChatID string `yaml:"errorChatId"`
}

// TwitterConfig carries OAuth1 credentials plus monitored account handles.
type TwitterConfig struct {
	APIKey       string   `yaml:"apiKey"`
	APISecret    string   `yaml:"apiSecret"`
	AccessToken  string   `yaml:"accessToken"`
	AccessSecret string   `yaml:"accessSecret"`
	MonitorUsers []string `yaml:"monitorUsers"`
}

// Configured reports whether real credentials are present.
func (t TwitterConfig) Configured() bool {
	return t.APIKey != "" && !strings.HasPrefix(t.APIKey, "placeholder")
}

// SourceConfig describes upstream content providers.
type SourceConfig struct {
	AlphaXivHotURL   string            `yaml:"alphaxivHotUrl"`
	AlphaXivLikesURL string            `yaml:"alphaxivLikesUrl"`
	ArxivPDFBase     string            `yaml:"arxivPdfBase"`
	BlogFeeds        map[string]string `yaml:"blogFeeds"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources.BlogFeeds) == 0 {
		cfg.Sources.BlogFeeds = defaultConfig().Sources.BlogFeeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	setInt := func(env string, dst *int) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			} else {
				log.Printf("config: %s=%q is not an integer, ignored", env, v)
			}
		}
	}

	setString(loggingLevelEnv, &c.Logging.Level)
	setString(dbPathEnv, &c.Database.Path)
	setString(pdfDirEnv, &c.Storage.PDFDir)
	setString(imageDirEnv, &c.Storage.ImageDir)

	setString(schedulePapersEnv, &c.Scheduler.PapersCron)
	setString(scheduleBlogsEnv, &c.Scheduler.BlogsCron)
	setString(scheduleTwitterEnv, &c.Scheduler.TwitterCron)
	setString(timezoneEnv, &c.Scheduler.Timezone)

	setInt(minScoreEnv, &c.Oracle.MinScore)
	setInt(maxPapersEnv, &c.Oracle.MaxPapersPerRun)
	setInt(maxBlogsEnv, &c.Oracle.MaxBlogsPerRun)

	setString(openRouterKeyEnv, &c.LLM.APIKey)

	setString(telegramTokenEnv, &c.Telegram.BotToken)
	setString(telegramChannelEnv, &c.Telegram.ChannelID)
	setString(telegramErrorChatEnv, &c.Telegram.ErrorChatID)

	setString(twitterAPIKeyEnv, &c.Twitter.APIKey)
	setString(twitterAPISecretEnv, &c.Twitter.APISecret)
	setString(twitterAccessTokenEnv, &c.Twitter.AccessToken)
	setString(twitterAccessSecretEnv, &c.Twitter.AccessSecret)

	if v := os.Getenv(twitterMonitorEnv); v != "" {
		c.Twitter.MonitorUsers = splitCommaList(v)
	}
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Database.Path != "" {
		base.Database = override.Database
	}
	if override.Storage.PDFDir != "" {
		base.Storage.PDFDir = override.Storage.PDFDir
	}
	if override.Storage.ImageDir != "" {
		base.Storage.ImageDir = override.Storage.ImageDir
	}

	if override.Scheduler.PapersCron != "" {
		base.Scheduler.PapersCron = override.Scheduler.PapersCron
	}
	if override.Scheduler.BlogsCron != "" {
		base.Scheduler.BlogsCron = override.Scheduler.BlogsCron
	}
	if override.Scheduler.TwitterCron != "" {
		base.Scheduler.TwitterCron = override.Scheduler.TwitterCron
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Oracle.MinScore != 0 {
		base.Oracle.MinScore = override.Oracle.MinScore
	}
	if override.Oracle.MaxPapersPerRun != 0 {
		base.Oracle.MaxPapersPerRun = override.Oracle.MaxPapersPerRun
	}
	if override.Oracle.MaxBlogsPerRun != 0 {
		base.Oracle.MaxBlogsPerRun = override.Oracle.MaxBlogsPerRun
	}

	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.BaseURL != "" {
		base.LLM.BaseURL = override.LLM.BaseURL
	}
	if override.LLM.OracleModel != "" {
		base.LLM.OracleModel = override.LLM.OracleModel
	}
	if override.LLM.FactCheckModel != "" {
		base.LLM.FactCheckModel = override.LLM.FactCheckModel
	}
	if override.LLM.PostRUModel != "" {
		base.LLM.PostRUModel = override.LLM.PostRUModel
	}
	if override.LLM.PostENModel != "" {
		base.LLM.PostENModel = override.LLM.PostENModel
	}
	if override.LLM.VisionModel != "" {
		base.LLM.VisionModel = override.LLM.VisionModel
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChannelID != "" {
		base.Telegram.ChannelID = override.Telegram.ChannelID
	}
	if override.Telegram.ErrorChatID != "" {
		base.Telegram.ErrorChatID = override.Telegram.ErrorChatID
	}

	if override.Twitter.APIKey != "" {
		base.Twitter.APIKey = override.Twitter.APIKey
	}
	if override.Twitter.APISecret != "" {
		base.Twitter.APISecret = override.Twitter.APISecret
	}
	if override.Twitter.AccessToken != "" {
		base.Twitter.AccessToken = override.Twitter.AccessToken
	}
	if override.Twitter.AccessSecret != "" {
		base.Twitter.AccessSecret = override.Twitter.AccessSecret
	}
	if len(override.Twitter.MonitorUsers) > 0 {
		base.Twitter.MonitorUsers = override.Twitter.MonitorUsers
	}

	if override.Sources.AlphaXivHotURL != "" {
		base.Sources.AlphaXivHotURL = override.Sources.AlphaXivHotURL
	}
	if override.Sources.AlphaXivLikesURL != "" {
		base.Sources.AlphaXivLikesURL = override.Sources.AlphaXivLikesURL
	}
	if override.Sources.ArxivPDFBase != "" {
		base.Sources.ArxivPDFBase = override.Sources.ArxivPDFBase
	}
	if len(override.Sources.BlogFeeds) > 0 {
		base.Sources.BlogFeeds = override.Sources.BlogFeeds
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "state.db"},
		Storage:  StorageConfig{PDFDir: "pdfs", ImageDir: "images"},
		Scheduler: SchedulerConfig{
			PapersCron:  "0 10 * * *",
			BlogsCron:   "0 12 * * *",
			TwitterCron: "0 14 * * *",
			Timezone:    defaultTimezone,
			location:    tz,
		},
		Oracle: OracleConfig{MinScore: 7, MaxPapersPerRun: 5, MaxBlogsPerRun: 3},
		LLM: LLMConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			OracleModel:    "deepseek/deepseek-chat-v3-0324",
			FactCheckModel: "deepseek/deepseek-chat-v3-0324",
			PostRUModel:    "anthropic/claude-sonnet-4.6",
			PostENModel:    "anthropic/claude-sonnet-4.6",
			VisionModel:    "google/gemini-2.5-flash",
		},
		Twitter: TwitterConfig{
			MonitorUsers: []string{"sama", "ylecun", "karpathy"},
		},
		Sources: SourceConfig{
			AlphaXivHotURL:   "https://www.alphaxiv.org/?sort=Hot",
			AlphaXivLikesURL: "https://www.alphaxiv.org/?sort=Likes",
			ArxivPDFBase:     "https://arxiv.org/pdf/",
			BlogFeeds: map[string]string{
				"openai":        "https://openai.com/news/rss.xml",
				"anthropic":     "https://anthropic.com/news/feed_anthropic.xml",
				"google_gemini": "https://blog.google/products/gemini/rss/",
			},
		},
	}
}

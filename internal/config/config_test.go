package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Oracle.MinScore != 7 {
		t.Fatalf("default min score: %d", cfg.Oracle.MinScore)
	}
	if cfg.Oracle.MaxPapersPerRun != 5 || cfg.Oracle.MaxBlogsPerRun != 3 {
		t.Fatalf("default caps: %d/%d", cfg.Oracle.MaxPapersPerRun, cfg.Oracle.MaxBlogsPerRun)
	}
	if len(cfg.Sources.BlogFeeds) == 0 {
		t.Fatal("default blog feeds missing")
	}
	if cfg.Scheduler.Location() == nil {
		t.Fatal("scheduler location must always resolve")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(minScoreEnv, "8")
	t.Setenv(maxBlogsEnv, "not-a-number")
	t.Setenv(telegramChannelEnv, "@curated_ai")
	t.Setenv(twitterMonitorEnv, "sama, ylecun , ,karpathy")
	t.Setenv(timezoneEnv, "Europe/Berlin")

	cfg := Load()

	if cfg.Oracle.MinScore != 8 {
		t.Fatalf("min score override: %d", cfg.Oracle.MinScore)
	}
	if cfg.Oracle.MaxBlogsPerRun != 3 {
		t.Fatalf("invalid integer must keep the default, got %d", cfg.Oracle.MaxBlogsPerRun)
	}
	if cfg.Telegram.ChannelID != "@curated_ai" {
		t.Fatalf("channel override: %s", cfg.Telegram.ChannelID)
	}

	want := []string{"sama", "ylecun", "karpathy"}
	if len(cfg.Twitter.MonitorUsers) != len(want) {
		t.Fatalf("monitor users: %v", cfg.Twitter.MonitorUsers)
	}
	for i, u := range want {
		if cfg.Twitter.MonitorUsers[i] != u {
			t.Fatalf("monitor users: %v", cfg.Twitter.MonitorUsers)
		}
	}

	if cfg.Scheduler.Location().String() != "Europe/Berlin" {
		t.Fatalf("timezone: %s", cfg.Scheduler.Location())
	}
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	t.Setenv(timezoneEnv, "Not/AZone")

	cfg := Load()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", cfg.Scheduler.Location())
	}
}

func TestTwitterConfigured(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"placeholder_key", false},
		{"real-api-key", true},
	}
	for _, tc := range cases {
		cfg := TwitterConfig{APIKey: tc.key}
		if cfg.Configured() != tc.want {
			t.Fatalf("Configured(%q) = %v, want %v", tc.key, cfg.Configured(), tc.want)
		}
	}
}

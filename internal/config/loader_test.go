package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pable/go-football-metrics/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.FocusPlayerID, convey.ShouldEqual, int64(5503))
			convey.So(cfg.FocusTeam, convey.ShouldEqual, "Argentina")
			convey.So(cfg.FinalThirdX, convey.ShouldEqual, 80.0)
			convey.So(cfg.MinMinutes, convey.ShouldEqual, 300.0)
			convey.So(cfg.MatchesPath(), convey.ShouldEqual, filepath.Join("data", "statsbomb_wc2022", "matches", "wc2022_matches.json"))
			convey.So(cfg.EventsPath(), convey.ShouldEqual, filepath.Join("data", "statsbomb_wc2022", "events"))
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.Addr, convey.ShouldEqual, ":8090")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FBMETRICS_MIN_MINUTES", "450")
			_ = os.Setenv("FBMETRICS_FOCUS_PLAYER_ID", "3009")
			_ = os.Setenv("FBMETRICS_DATA_DIR", "/srv/wc")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinMinutes, convey.ShouldEqual, 450.0)
				convey.So(cfg.FocusPlayerID, convey.ShouldEqual, int64(3009))
				convey.So(cfg.EventsPath(), convey.ShouldEqual, filepath.Join("/srv/wc", "events"))
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := filepath.Join(t.TempDir(), "fbmetrics.yaml")
			yamlBody := "focus_team: France\nfinal_third_x: 70\nmatches_file: /tmp/m.json\nlog_format: json\n"
			convey.So(os.WriteFile(path, []byte(yamlBody), 0o644), convey.ShouldBeNil)

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it should use the file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FocusTeam, convey.ShouldEqual, "France")
				convey.So(cfg.FinalThirdX, convey.ShouldEqual, 70.0)
				convey.So(cfg.MatchesPath(), convey.ShouldEqual, "/tmp/m.json")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})

			convey.Convey("And env vars should take precedence over the file", func() {
				_ = os.Setenv("FBMETRICS_FOCUS_TEAM", "Croatia")
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx, path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FocusTeam, convey.ShouldEqual, "Croatia")
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("FBMETRICS_FINAL_THIRD_X", "150")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx, "")

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"FBMETRICS_CONFIG", "FBMETRICS_MIN_MINUTES", "FBMETRICS_FOCUS_PLAYER_ID",
		"FBMETRICS_DATA_DIR", "FBMETRICS_FOCUS_TEAM", "FBMETRICS_FINAL_THIRD_X",
	} {
		_ = os.Unsetenv(k)
	}
}

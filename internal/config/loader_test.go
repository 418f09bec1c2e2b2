package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AMASPC-Org/olybars-sub000/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given the config loader", t, func() {
		ctx := context.Background()

		clearEnv := func() {
			for _, key := range []string{
				"OLYBARS_CONFIG", "OLYBARS_ADDR", "OLYBARS_LOG_LEVEL",
				"OLYBARS_GEOFENCE_RADIUS_M", "OLYBARS_COMPLIANCE_CAP",
				"OLYBARS_BUZZING_THRESHOLD", "OLYBARS_LIVELY_THRESHOLD",
			} {
				So(os.Unsetenv(key), ShouldBeNil)
			}
		}
		clearEnv()
		Reset(clearEnv)

		Convey("When nothing is configured", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.GeofenceRadiusM, ShouldEqual, 100)
				So(cfg.GlobalCooldownMin, ShouldEqual, 120)
				So(cfg.VenueCooldownMin, ShouldEqual, 360)
				So(cfg.ComplianceWindowH, ShouldEqual, 12)
				So(cfg.ComplianceCap, ShouldEqual, 2)
				So(cfg.HalfLifeMin, ShouldEqual, 60)
				So(cfg.SignalWindowH, ShouldEqual, 12)
				So(cfg.LivelyThreshold, ShouldEqual, 20)
				So(cfg.BuzzingThreshold, ShouldEqual, 60)
				So(cfg.RotationBucketMS, ShouldEqual, 300_000)
				So(cfg.ProximityThresholdMi, ShouldEqual, 15)
				So(cfg.BuzzWindowSize, ShouldEqual, 3)
			})
		})

		Convey("When environment variables are set", func() {
			So(os.Setenv("OLYBARS_ADDR", ":9999"), ShouldBeNil)
			So(os.Setenv("OLYBARS_GEOFENCE_RADIUS_M", "250"), ShouldBeNil)

			cfg, err := config.Load(ctx)

			Convey("Then they should override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9999")
				So(cfg.GeofenceRadiusM, ShouldEqual, 250)
			})
		})

		Convey("When a config file is provided", func() {
			path := filepath.Join(t.TempDir(), "olybars.yaml")
			content := []byte("addr: \":7070\"\nlog_level: debug\ncompliance_cap: 5\n")
			So(os.WriteFile(path, content, 0600), ShouldBeNil)
			So(os.Setenv("OLYBARS_CONFIG", path), ShouldBeNil)

			Convey("Then file values should override the defaults", func() {
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.ComplianceCap, ShouldEqual, 5)
			})

			Convey("And env values should override the file", func() {
				So(os.Setenv("OLYBARS_ADDR", ":6060"), ShouldBeNil)
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.LogLevel, ShouldEqual, "debug")
			})
		})

		Convey("When the config file does not exist", func() {
			So(os.Setenv("OLYBARS_CONFIG", "/nonexistent/olybars.yaml"), ShouldBeNil)
			_, err := config.Load(ctx)

			Convey("Then a load error should come back", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
			})
		})

		Convey("When the configuration is invalid", func() {
			Convey("Then a zero geofence should be rejected", func() {
				So(os.Setenv("OLYBARS_GEOFENCE_RADIUS_M", "0"), ShouldBeNil)
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})

			Convey("And a compliance cap below one should be rejected", func() {
				So(os.Setenv("OLYBARS_COMPLIANCE_CAP", "0"), ShouldBeNil)
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})

			Convey("And inverted status thresholds should be rejected", func() {
				So(os.Setenv("OLYBARS_BUZZING_THRESHOLD", "10"), ShouldBeNil)
				_, err := config.Load(ctx)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given the default constructor", t, func() {
		cfg := config.New()

		Convey("Then worker and queue defaults should be sane", func() {
			So(cfg.RefreshWorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.RefreshQueueSize, ShouldEqual, 10_000)
			So(cfg.RefreshIntervalS, ShouldEqual, 60)
		})
	})
}

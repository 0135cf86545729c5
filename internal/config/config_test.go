package config_test

import (
	"context"
	"testing"

	"github.com/leviathan-hq/larry/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":8090")
			convey.So(cfg.DataFile, convey.ShouldEqual, "data.json")
			convey.So(cfg.AnnounceQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.DispatchWorkerCount, convey.ShouldEqual, 2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.AutocompleteLimit, convey.ShouldEqual, 25)
		})
	})
}

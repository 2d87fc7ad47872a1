package storage

import (
	"context"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRange(t *testing.T) {
	Convey("Given an empty uint8 range", t, func() {
		r := EmptyRange[uint8]()

		So(r.Empty(), ShouldBeTrue)
		So(r.Min, ShouldEqual, uint8(math.MaxUint8))
		So(r.Avg, ShouldEqual, uint8(0))
		So(r.Max, ShouldEqual, uint8(0))

		Convey("When the first sample is added", func() {
			r = r.Update(100)

			Convey("Then min, avg and max are set to the sample", func() {
				So(r, ShouldResemble, Range[uint8]{Min: 100, Avg: 100, Max: 100})
			})

			Convey("When a larger sample is added", func() {
				r = r.Update(200)

				Convey("Then the max and the average are updated", func() {
					So(r, ShouldResemble, Range[uint8]{Min: 100, Avg: 150, Max: 200})
				})
			})

			Convey("When the largest value is added twice", func() {
				r = r.Update(255).Update(255)

				Convey("Then the average does not overflow", func() {
					So(r.Avg, ShouldEqual, uint8(216))
					So(r.Max, ShouldEqual, uint8(255))
				})
			})
		})
	})

	Convey("Given an empty int16 range", t, func() {
		r := EmptyRange[int16]()
		So(r.Min, ShouldEqual, int16(math.MaxInt16))
		So(r.Max, ShouldEqual, int16(math.MinInt16))

		Convey("When negative samples are added", func() {
			r = r.Update(-100).Update(-300)

			Convey("Then the range holds the negative values", func() {
				So(r, ShouldResemble, Range[int16]{Min: -300, Avg: -200, Max: -100})
			})
		})
	})

	Convey("Given an empty int8 range", t, func() {
		r := EmptyRange[int8]()
		So(r.Min, ShouldEqual, int8(math.MaxInt8))
		So(r.Max, ShouldEqual, int8(math.MinInt8))
		So(r.Update(-128), ShouldResemble, Range[int8]{Min: -128, Avg: -128, Max: -128})
	})
}

func TestStats(t *testing.T) {
	Convey("Given a wiped EEPROM", t, func() {
		ctx := context.Background()
		e := NewEEPROM(NewMemoryStore(EEPROMSize), testDefaults)
		So(e.Wipe(ctx), ShouldBeNil)

		Convey("Then all stats are empty", func() {
			s, err := e.Stats(ctx)
			So(err, ShouldBeNil)
			So(s.ChargingVoltage.Empty(), ShouldBeTrue)
			So(s.ChargingCurrent.Empty(), ShouldBeTrue)
			So(s.BatteryVoltage.Empty(), ShouldBeTrue)
			So(s.CellAVoltage.Empty(), ShouldBeTrue)
			So(s.CellBVoltage.Empty(), ShouldBeTrue)
			So(s.CellCVoltage.Empty(), ShouldBeTrue)
			So(s.BatteryTemperature.Empty(), ShouldBeTrue)
			So(s.BoardTemperature.Empty(), ShouldBeTrue)
			So(s.MCUTemperature.Empty(), ShouldBeTrue)
		})

		Convey("When two samples are recorded", func() {
			So(e.UpdateStats(ctx, Sample{
				ChargingVoltage:    200,
				ChargingCurrent:    -10,
				BatteryVoltage:     190,
				CellAVoltage:       10,
				CellBVoltage:       20,
				CellCVoltage:       30,
				BatteryTemperature: 2000,
				BoardTemperature:   2500,
				MCUTemperature:     30,
			}), ShouldBeNil)
			So(e.UpdateStats(ctx, Sample{
				ChargingVoltage:    210,
				ChargingCurrent:    30,
				BatteryVoltage:     180,
				CellAVoltage:       12,
				CellBVoltage:       22,
				CellCVoltage:       32,
				BatteryTemperature: -2000,
				BoardTemperature:   2700,
				MCUTemperature:     -10,
			}), ShouldBeNil)

			Convey("Then the stats hold min, avg and max", func() {
				s, err := e.Stats(ctx)
				So(err, ShouldBeNil)
				So(s, ShouldResemble, Stats{
					ChargingVoltage:    Range[uint8]{200, 205, 210},
					ChargingCurrent:    Range[int16]{-10, 10, 30},
					BatteryVoltage:     Range[uint8]{180, 185, 190},
					CellAVoltage:       Range[uint8]{10, 11, 12},
					CellBVoltage:       Range[uint8]{20, 21, 22},
					CellCVoltage:       Range[uint8]{30, 31, 32},
					BatteryTemperature: Range[int16]{-2000, 0, 2000},
					BoardTemperature:   Range[int16]{2500, 2600, 2700},
					MCUTemperature:     Range[int8]{-10, 10, 30},
				})
			})

			Convey("Then the records are stored at their addresses", func() {
				b := make([]byte, 6)
				So(e.Store().ReadAt(ctx, b, ChargingCurrentStatsAddr), ShouldBeNil)
				So(b, ShouldResemble, []byte{0xf6, 0xff, 0x0a, 0x00, 0x1e, 0x00})
			})

			Convey("When the stats are reset", func() {
				So(e.ResetStats(ctx), ShouldBeNil)

				Convey("Then the stats are empty again", func() {
					s, err := e.Stats(ctx)
					So(err, ShouldBeNil)
					So(s.BoardTemperature.Empty(), ShouldBeTrue)
				})
			})
		})
	})
}

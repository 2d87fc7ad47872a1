package storage

import (
	"context"
	"encoding/binary"
)

// Statistics address map. Each record is stored as min, avg, max.
const (
	ChargingVoltageStatsAddr    Address = 0x0040 // 3 x uint8
	ChargingCurrentStatsAddr    Address = 0x0043 // 3 x int16
	BatteryVoltageStatsAddr     Address = 0x0049 // 3 x uint8
	CellAVoltageStatsAddr       Address = 0x004C // 3 x uint8
	CellBVoltageStatsAddr       Address = 0x004F // 3 x uint8
	CellCVoltageStatsAddr       Address = 0x0052 // 3 x uint8
	BatteryTemperatureStatsAddr Address = 0x0055 // 3 x int16
	BoardTemperatureStatsAddr   Address = 0x005B // 3 x int16
	MCUTemperatureStatsAddr     Address = 0x0061 // 3 x int8
)

// Range holds the running minimum, average and maximum of a value.
type Range[T Value] struct {
	Min T
	Avg T
	Max T
}

// Empty returns true when the range holds no sample yet.
func (r Range[T]) Empty() bool {
	return r.Min > r.Max
}

// Update returns the range with v accounted for.
func (r Range[T]) Update(v T) Range[T] {
	if r.Empty() {
		return Range[T]{Min: v, Avg: v, Max: v}
	}

	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	r.Avg = T((int64(r.Avg) + int64(v)) / 2)
	return r
}

// EmptyRange returns a range that holds no sample.
func EmptyRange[T Value]() Range[T] {
	lo, hi := limits[T]()
	return Range[T]{Min: hi, Max: lo}
}

func limits[T Value]() (lo T, hi T) {
	bits := binary.Size(lo) * 8
	var zero T
	one := zero + 1
	if zero-one < zero {
		hi = T(int64(1)<<(bits-1) - 1)
		lo = T(-(int64(1) << (bits - 1)))
		return
	}
	hi = T(uint64(1)<<bits - 1)
	return
}

// Stats holds the running telemetry statistics, in scaled units.
type Stats struct {
	ChargingVoltage    Range[uint8]
	ChargingCurrent    Range[int16]
	BatteryVoltage     Range[uint8]
	CellAVoltage       Range[uint8]
	CellBVoltage       Range[uint8]
	CellCVoltage       Range[uint8]
	BatteryTemperature Range[int16]
	BoardTemperature   Range[int16]
	MCUTemperature     Range[int8]
}

// Sample holds one telemetry reading, in scaled units.
type Sample struct {
	ChargingVoltage    uint8
	ChargingCurrent    int16
	BatteryVoltage     uint8
	CellAVoltage       uint8
	CellBVoltage       uint8
	CellCVoltage       uint8
	BatteryTemperature int16
	BoardTemperature   int16
	MCUTemperature     int8
}

// Stats returns the stored statistics.
func (e *EEPROM) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var err error

	if s.ChargingVoltage, err = readRange[uint8](ctx, e.store, ChargingVoltageStatsAddr); err != nil {
		return s, err
	}
	if s.ChargingCurrent, err = readRange[int16](ctx, e.store, ChargingCurrentStatsAddr); err != nil {
		return s, err
	}
	if s.BatteryVoltage, err = readRange[uint8](ctx, e.store, BatteryVoltageStatsAddr); err != nil {
		return s, err
	}
	if s.CellAVoltage, err = readRange[uint8](ctx, e.store, CellAVoltageStatsAddr); err != nil {
		return s, err
	}
	if s.CellBVoltage, err = readRange[uint8](ctx, e.store, CellBVoltageStatsAddr); err != nil {
		return s, err
	}
	if s.CellCVoltage, err = readRange[uint8](ctx, e.store, CellCVoltageStatsAddr); err != nil {
		return s, err
	}
	if s.BatteryTemperature, err = readRange[int16](ctx, e.store, BatteryTemperatureStatsAddr); err != nil {
		return s, err
	}
	if s.BoardTemperature, err = readRange[int16](ctx, e.store, BoardTemperatureStatsAddr); err != nil {
		return s, err
	}
	if s.MCUTemperature, err = readRange[int8](ctx, e.store, MCUTemperatureStatsAddr); err != nil {
		return s, err
	}
	return s, nil
}

// UpdateStats accounts for the given sample in the stored statistics.
func (e *EEPROM) UpdateStats(ctx context.Context, smp Sample) error {
	s, err := e.Stats(ctx)
	if err != nil {
		return err
	}

	s.ChargingVoltage = s.ChargingVoltage.Update(smp.ChargingVoltage)
	s.ChargingCurrent = s.ChargingCurrent.Update(smp.ChargingCurrent)
	s.BatteryVoltage = s.BatteryVoltage.Update(smp.BatteryVoltage)
	s.CellAVoltage = s.CellAVoltage.Update(smp.CellAVoltage)
	s.CellBVoltage = s.CellBVoltage.Update(smp.CellBVoltage)
	s.CellCVoltage = s.CellCVoltage.Update(smp.CellCVoltage)
	s.BatteryTemperature = s.BatteryTemperature.Update(smp.BatteryTemperature)
	s.BoardTemperature = s.BoardTemperature.Update(smp.BoardTemperature)
	s.MCUTemperature = s.MCUTemperature.Update(smp.MCUTemperature)

	return e.writeStats(ctx, s)
}

// ResetStats empties all statistics records.
func (e *EEPROM) ResetStats(ctx context.Context) error {
	return e.writeStats(ctx, Stats{
		ChargingVoltage:    EmptyRange[uint8](),
		ChargingCurrent:    EmptyRange[int16](),
		BatteryVoltage:     EmptyRange[uint8](),
		CellAVoltage:       EmptyRange[uint8](),
		CellBVoltage:       EmptyRange[uint8](),
		CellCVoltage:       EmptyRange[uint8](),
		BatteryTemperature: EmptyRange[int16](),
		BoardTemperature:   EmptyRange[int16](),
		MCUTemperature:     EmptyRange[int8](),
	})
}

func (e *EEPROM) writeStats(ctx context.Context, s Stats) error {
	if err := writeRange(ctx, e.store, ChargingVoltageStatsAddr, s.ChargingVoltage); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, ChargingCurrentStatsAddr, s.ChargingCurrent); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, BatteryVoltageStatsAddr, s.BatteryVoltage); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, CellAVoltageStatsAddr, s.CellAVoltage); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, CellBVoltageStatsAddr, s.CellBVoltage); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, CellCVoltageStatsAddr, s.CellCVoltage); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, BatteryTemperatureStatsAddr, s.BatteryTemperature); err != nil {
		return err
	}
	if err := writeRange(ctx, e.store, BoardTemperatureStatsAddr, s.BoardTemperature); err != nil {
		return err
	}
	return writeRange(ctx, e.store, MCUTemperatureStatsAddr, s.MCUTemperature)
}

func readRange[T Value](ctx context.Context, s Store, addr Address) (Range[T], error) {
	var r Range[T]
	var err error
	size := Address(binary.Size(r.Min))

	if r.Min, err = Read[T](ctx, s, addr); err != nil {
		return r, err
	}
	if r.Avg, err = Read[T](ctx, s, addr+size); err != nil {
		return r, err
	}
	if r.Max, err = Read[T](ctx, s, addr+2*size); err != nil {
		return r, err
	}
	return r, nil
}

func writeRange[T Value](ctx context.Context, s Store, addr Address, r Range[T]) error {
	size := Address(binary.Size(r.Min))

	if err := Write(ctx, s, addr, r.Min); err != nil {
		return err
	}
	if err := Write(ctx, s, addr+size, r.Avg); err != nil {
		return err
	}
	return Write(ctx, s, addr+2*size, r.Max)
}

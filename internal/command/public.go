package command

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/fcp"
	"github.com/fossasystems/fossasat-fcp/internal/logging"
	"github.com/fossasystems/fossasat-fcp/internal/platform"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
	"github.com/fossasystems/fossasat-fcp/internal/response"
	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

// customConfigLength holds the length of the modem configuration record
// prefixing the retransmit-custom payload.
const customConfigLength = 7

// Response lengths.
const (
	systemInfoLength = 6*1 + 3*2 + 2 + 1
	packetInfoLength = 1 + 1 + 4*2
	statisticsLength = 1 + 3 + 3*2 + 3 + 9 + 3*2 + 3*2 + 3
)

// Statistics flags.
const (
	StatsChargingVoltage uint8 = 1 << iota
	StatsChargingCurrent
	StatsBatteryVoltage
	StatsSolarCellsVoltage
	StatsBatteryTemperature
	StatsBoardTemperature
	StatsMCUTemperature
)

func (d *Dispatcher) handlePing(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 0); err != nil {
		return err
	}
	return d.sender.Send(ctx, fcp.RespPong, nil, false, false)
}

func (d *Dispatcher) handleRetransmit(ctx context.Context, optData []byte) error {
	if err := expectLengthRange(optData, 0, fcp.MaxStringLength); err != nil {
		return err
	}
	return d.sender.Send(ctx, fcp.RespRepeatedMessage, optData, false, false)
}

// handleRetransmitCustom echoes the message following the configuration
// record using the requested LoRa settings:
//
//	[0] bandwidth index  [1] spreading factor  [2] coding rate
//	[3:5] preamble length (LE)  [5] CRC  [6] output power
func (d *Dispatcher) handleRetransmitCustom(ctx context.Context, optData []byte) error {
	if err := expectLengthRange(optData, customConfigLength+1, customConfigLength+fcp.MaxStringLength); err != nil {
		return err
	}

	if int(optData[0]) >= len(radio.Bandwidths) {
		return errors.Wrapf(ErrConfiguration, "bandwidth index %d", optData[0])
	}

	lora := d.radio.LoRa()
	lora.Bandwidth = radio.Bandwidths[optData[0]]
	lora.SpreadingFactor = optData[1]
	lora.CodingRate = optData[2]
	lora.PreambleLength = binary.LittleEndian.Uint16(optData[3:5])
	lora.CRC = optData[5] != 0
	lora.Power = int8(optData[6])

	err := d.sender.SendCustom(ctx, lora, fcp.RespRepeatedMessageCustom, optData[customConfigLength:])
	if errors.Cause(err) == radio.ErrInvalidConfiguration {
		return errors.Wrap(ErrConfiguration, err.Error())
	}
	return err
}

func (d *Dispatcher) readSample() storage.Sample {
	return storage.Sample{
		ChargingVoltage:    response.Voltage(d.sensors.ChargingVoltage()),
		ChargingCurrent:    response.Current(d.sensors.ChargingCurrent()),
		BatteryVoltage:     response.Voltage(d.sensors.BatteryVoltage()),
		CellAVoltage:       response.Voltage(d.sensors.SolarCellVoltage(platform.CellA)),
		CellBVoltage:       response.Voltage(d.sensors.SolarCellVoltage(platform.CellB)),
		CellCVoltage:       response.Voltage(d.sensors.SolarCellVoltage(platform.CellC)),
		BatteryTemperature: response.Temperature(d.sensors.BatteryTemperature()),
		BoardTemperature:   response.Temperature(d.sensors.BoardTemperature()),
		MCUTemperature:     response.MCUTemperature(d.sensors.MCUTemperature()),
	}
}

func (d *Dispatcher) handleTransmitSystemInfo(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 0); err != nil {
		return err
	}

	smp := d.readSample()
	restarts, err := d.eeprom.RestartCounter(ctx)
	if err != nil {
		return errors.Wrap(err, "get restart counter error")
	}
	pc, err := d.eeprom.PowerConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "get power config error")
	}

	if err := d.eeprom.UpdateStats(ctx, smp); err != nil {
		return errors.Wrap(err, "update stats error")
	}

	b := response.NewBuilder(systemInfoLength)
	if err := firstError(
		response.Add(b, smp.ChargingVoltage),
		response.Add(b, smp.ChargingCurrent),
		response.Add(b, smp.BatteryVoltage),
		response.AddAll(b, smp.CellAVoltage, smp.CellBVoltage, smp.CellCVoltage),
		response.Add(b, smp.BatteryTemperature),
		response.Add(b, smp.BoardTemperature),
		response.Add(b, smp.MCUTemperature),
		response.Add(b, restarts),
		response.Add(b, pc.Byte()),
	); err != nil {
		return errors.Wrap(err, "build system info error")
	}

	log.WithFields(log.Fields{
		"battery_voltage": smp.BatteryVoltage,
		"reset_counter":   restarts,
		"power_config":    pc.Byte(),
		"ctx_id":          ctx.Value(logging.ContextIDKey),
	}).Debug("command: system info")

	return d.sender.Send(ctx, fcp.RespSystemInfo, b.Bytes(), false, false)
}

func (d *Dispatcher) handleGetPacketInfo(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 0); err != nil {
		return err
	}

	info := d.radio.PacketInfo()
	fc, err := d.eeprom.FrameCounters(ctx)
	if err != nil {
		return errors.Wrap(err, "get frame counters error")
	}

	b := response.NewBuilder(packetInfoLength)
	if err := firstError(
		response.Add(b, response.SNR(info.SNR)),
		response.Add(b, response.RSSI(info.RSSI)),
		response.AddAll(b, fc.LoRaValid, fc.LoRaInvalid, fc.FSKValid, fc.FSKInvalid),
	); err != nil {
		return errors.Wrap(err, "build packet info error")
	}

	return d.sender.Send(ctx, fcp.RespPacketInfo, b.Bytes(), false, false)
}

func (d *Dispatcher) handleGetStatistics(ctx context.Context, optData []byte) error {
	if err := expectLength(optData, 1); err != nil {
		return err
	}
	flags := optData[0]

	s, err := d.eeprom.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "get stats error")
	}

	b := response.NewBuilder(statisticsLength)
	errs := []error{response.Add(b, flags)}
	if flags&StatsChargingVoltage != 0 {
		errs = append(errs, addRange(b, s.ChargingVoltage))
	}
	if flags&StatsChargingCurrent != 0 {
		errs = append(errs, addRange(b, s.ChargingCurrent))
	}
	if flags&StatsBatteryVoltage != 0 {
		errs = append(errs, addRange(b, s.BatteryVoltage))
	}
	if flags&StatsSolarCellsVoltage != 0 {
		errs = append(errs, addRange(b, s.CellAVoltage), addRange(b, s.CellBVoltage), addRange(b, s.CellCVoltage))
	}
	if flags&StatsBatteryTemperature != 0 {
		errs = append(errs, addRange(b, s.BatteryTemperature))
	}
	if flags&StatsBoardTemperature != 0 {
		errs = append(errs, addRange(b, s.BoardTemperature))
	}
	if flags&StatsMCUTemperature != 0 {
		errs = append(errs, addRange(b, s.MCUTemperature))
	}
	if err := firstError(errs...); err != nil {
		return errors.Wrap(err, "build statistics error")
	}

	return d.sender.Send(ctx, fcp.RespStatistics, b.Bytes(), false, false)
}

func addRange[T storage.Value](b *response.Builder, r storage.Range[T]) error {
	return response.AddAll(b, r.Min, r.Avg, r.Max)
}

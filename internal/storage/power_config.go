package storage

// Power configuration bits.
const (
	lowPowerModeActiveBit uint8 = 1 << iota
	lowPowerModeEnabledBit
	mpptTempSwitchEnabledBit
	mpptKeepAliveEnabledBit
	transmitEnabledBit
)

// PowerConfig holds the power configuration flags, stored as a single byte.
type PowerConfig struct {
	LowPowerModeActive    bool
	LowPowerModeEnabled   bool
	MPPTTempSwitchEnabled bool
	MPPTKeepAliveEnabled  bool
	TransmitEnabled       bool
}

// DefaultPowerConfig returns the power configuration written on wipe.
func DefaultPowerConfig() PowerConfig {
	return PowerConfig{
		LowPowerModeEnabled:   true,
		MPPTTempSwitchEnabled: true,
		TransmitEnabled:       true,
	}
}

// ParsePowerConfig decodes the stored byte.
func ParsePowerConfig(b uint8) PowerConfig {
	return PowerConfig{
		LowPowerModeActive:    b&lowPowerModeActiveBit != 0,
		LowPowerModeEnabled:   b&lowPowerModeEnabledBit != 0,
		MPPTTempSwitchEnabled: b&mpptTempSwitchEnabledBit != 0,
		MPPTKeepAliveEnabled:  b&mpptKeepAliveEnabledBit != 0,
		TransmitEnabled:       b&transmitEnabledBit != 0,
	}
}

// Byte encodes the power configuration.
func (pc PowerConfig) Byte() uint8 {
	var b uint8
	for _, f := range []struct {
		set bool
		bit uint8
	}{
		{pc.LowPowerModeActive, lowPowerModeActiveBit},
		{pc.LowPowerModeEnabled, lowPowerModeEnabledBit},
		{pc.MPPTTempSwitchEnabled, mpptTempSwitchEnabledBit},
		{pc.MPPTKeepAliveEnabled, mpptKeepAliveEnabledBit},
		{pc.TransmitEnabled, transmitEnabledBit},
	} {
		if f.set {
			b |= f.bit
		}
	}
	return b
}

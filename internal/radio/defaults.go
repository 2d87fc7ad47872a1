package radio

// DefaultLoRaConfiguration returns the LoRa settings of the satellite.
func DefaultLoRaConfiguration() LoRaConfiguration {
	return LoRaConfiguration{
		Frequency:       436.7,
		Bandwidth:       125.0,
		SpreadingFactor: 11,
		CodingRate:      8,
		SyncWord:        0x12,
		Power:           20,
		CurrentLimit:    160,
		PreambleLength:  8,
		CRC:             true,
	}
}

// DefaultAlternativeSpreadingFactor holds the spreading factor of the
// alternative mode.
const DefaultAlternativeSpreadingFactor = 10

// DefaultFSKConfiguration returns the FSK settings of the satellite.
func DefaultFSKConfiguration() FSKConfiguration {
	return FSKConfiguration{
		Frequency:          436.7,
		BitRate:            9.6,
		FrequencyDeviation: 5.0,
		RXBandwidth:        19.5,
		Power:              20,
		CurrentLimit:       160,
		PreambleLength:     16,
		DataShaping:        0.5,
	}
}

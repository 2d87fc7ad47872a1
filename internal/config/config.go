package config

import (
	"time"

	"github.com/brocaar/lorawan"
)

// Version defines the fossasat-fcp version.
var Version string

// Config defines the configuration structure.
type Config struct {
	General struct {
		LogLevel    int  `mapstructure:"log_level"`
		LogToSyslog bool `mapstructure:"log_to_syslog"`
	} `mapstructure:"general"`

	Satellite struct {
		ID                string            `mapstructure:"id"`
		Callsign          string            `mapstructure:"callsign"`
		KeyString         string            `mapstructure:"key"`
		Key               lorawan.AES128Key `mapstructure:"-"`
		Password          string            `mapstructure:"password"`
		ResponseDelay     time.Duration     `mapstructure:"response_delay"`
		WatchdogHeartbeat time.Duration     `mapstructure:"watchdog_heartbeat"`
		FSKReceiveWindow  uint8             `mapstructure:"fsk_receive_window"`
		LoRaReceiveWindow uint8             `mapstructure:"lora_receive_window"`

		LoRa struct {
			Frequency                  float64 `mapstructure:"frequency"`
			Bandwidth                  float64 `mapstructure:"bandwidth"`
			SpreadingFactor            uint8   `mapstructure:"spreading_factor"`
			AlternativeSpreadingFactor uint8   `mapstructure:"alternative_spreading_factor"`
			CodingRate                 uint8   `mapstructure:"coding_rate"`
			SyncWord                   uint8   `mapstructure:"sync_word"`
			Power                      int8    `mapstructure:"power"`
			CurrentLimit               uint8   `mapstructure:"current_limit"`
			PreambleLength             uint16  `mapstructure:"preamble_length"`
		} `mapstructure:"lora"`

		FSK struct {
			Frequency          float64 `mapstructure:"frequency"`
			BitRate            float64 `mapstructure:"bit_rate"`
			FrequencyDeviation float64 `mapstructure:"frequency_deviation"`
			RXBandwidth        float64 `mapstructure:"rx_bandwidth"`
			Power              int8    `mapstructure:"power"`
			CurrentLimit       uint8   `mapstructure:"current_limit"`
			PreambleLength     uint16  `mapstructure:"preamble_length"`
			DataShaping        float64 `mapstructure:"data_shaping"`
		} `mapstructure:"fsk"`

		Simulator struct {
			ChargingVoltage    float64       `mapstructure:"charging_voltage"`
			ChargingCurrent    float64       `mapstructure:"charging_current"`
			BatteryVoltage     float64       `mapstructure:"battery_voltage"`
			CellAVoltage       float64       `mapstructure:"cell_a_voltage"`
			CellBVoltage       float64       `mapstructure:"cell_b_voltage"`
			CellCVoltage       float64       `mapstructure:"cell_c_voltage"`
			BatteryTemperature float64       `mapstructure:"battery_temperature"`
			BoardTemperature   float64       `mapstructure:"board_temperature"`
			MCUTemperature     float64       `mapstructure:"mcu_temperature"`
			Noise              float64       `mapstructure:"noise"`
			DeploymentDuration time.Duration `mapstructure:"deployment_duration"`
		} `mapstructure:"simulator"`
	} `mapstructure:"satellite"`

	Storage struct {
		Type string `mapstructure:"type"`

		Redis struct {
			URL        string   `mapstructure:"url"` // deprecated
			Servers    []string `mapstructure:"servers"`
			Cluster    bool     `mapstructure:"cluster"`
			MasterName string   `mapstructure:"master_name"`
			PoolSize   int      `mapstructure:"pool_size"`
			Password   string   `mapstructure:"password"`
			Database   int      `mapstructure:"database"`
			TLSEnabled bool     `mapstructure:"tls_enabled"`
			KeyPrefix  string   `mapstructure:"key_prefix"`
		} `mapstructure:"redis"`
	} `mapstructure:"storage"`

	Radio struct {
		Backend struct {
			Type            string        `mapstructure:"type"`
			ModemIDString   string        `mapstructure:"modem_id"`
			ModemID         lorawan.EUI64 `mapstructure:"-"`
			Marshaler       string        `mapstructure:"marshaler"`
			DownlinkTimeout time.Duration `mapstructure:"downlink_timeout"`

			MQTT struct {
				Server               string        `mapstructure:"server"`
				Username             string        `mapstructure:"username"`
				Password             string        `mapstructure:"password"`
				MaxReconnectInterval time.Duration `mapstructure:"max_reconnect_interval"`
				QOS                  uint8         `mapstructure:"qos"`
				CleanSession         bool          `mapstructure:"clean_session"`
				ClientID             string        `mapstructure:"client_id"`
				CACert               string        `mapstructure:"ca_cert"`
				TLSCert              string        `mapstructure:"tls_cert"`
				TLSKey               string        `mapstructure:"tls_key"`
				EventTopic           string        `mapstructure:"event_topic"`
				CommandTopicTemplate string        `mapstructure:"command_topic_template"`
			} `mapstructure:"mqtt"`

			AMQP struct {
				URL                       string `mapstructure:"url"`
				EventQueueName            string `mapstructure:"event_queue_name"`
				EventRoutingKey           string `mapstructure:"event_routing_key"`
				CommandRoutingKeyTemplate string `mapstructure:"command_routing_key_template"`
			} `mapstructure:"amqp"`
		} `mapstructure:"backend"`
	} `mapstructure:"radio"`

	Monitoring struct {
		Bind                string `mapstructure:"bind"`
		PrometheusEndpoint  bool   `mapstructure:"prometheus_endpoint"`
		HealthcheckEndpoint bool   `mapstructure:"healthcheck_endpoint"`
	} `mapstructure:"monitoring"`
}

// C holds the global configuration.
var C Config

package cmd

import (
	"os"
	"text/template"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fossasystems/fossasat-fcp/internal/config"
)

const configTemplate = `[general]
# Log level
#
# debug=5, info=4, warning=3, error=2, fatal=1, panic=0
log_level={{ .General.LogLevel }}

# Log to syslog.
#
# When set to true, log messages are being written to syslog.
log_to_syslog={{ .General.LogToSyslog }}


# Satellite settings.
[satellite]
# Identifier used in the log output.
id="{{ .Satellite.ID }}"

# Callsign written to the EEPROM on first run and on wipe.
#
# Frames are only accepted when they start with the stored callsign.
callsign="{{ .Satellite.Callsign }}"

# AES-128 key (HEX encoded) of the encrypted commands.
key="{{ .Satellite.KeyString }}"

# Password prefixing the decrypted optional data of the encrypted commands.
password="{{ .Satellite.Password }}"

# Delay between the reception of a frame and the execution of the command.
response_delay="{{ .Satellite.ResponseDelay }}"

# Watchdog heartbeat interval.
#
# The watchdog is petted with this interval while waiting.
watchdog_heartbeat="{{ .Satellite.WatchdogHeartbeat }}"

# Receive window lengths (seconds) written on first run and on wipe.
fsk_receive_window={{ .Satellite.FSKReceiveWindow }}
lora_receive_window={{ .Satellite.LoRaReceiveWindow }}

  # LoRa modem settings.
  [satellite.lora]
  # Carrier frequency (MHz).
  frequency={{ .Satellite.LoRa.Frequency }}

  # Bandwidth (kHz).
  bandwidth={{ .Satellite.LoRa.Bandwidth }}

  # Spreading factor of the standard and the alternative mode.
  spreading_factor={{ .Satellite.LoRa.SpreadingFactor }}
  alternative_spreading_factor={{ .Satellite.LoRa.AlternativeSpreadingFactor }}

  # Coding rate (4/x).
  coding_rate={{ .Satellite.LoRa.CodingRate }}

  # Sync word.
  sync_word={{ .Satellite.LoRa.SyncWord }}

  # Output power (dBm).
  power={{ .Satellite.LoRa.Power }}

  # Over current protection limit (mA).
  current_limit={{ .Satellite.LoRa.CurrentLimit }}

  # Preamble length (symbols).
  preamble_length={{ .Satellite.LoRa.PreambleLength }}

  # FSK modem settings.
  [satellite.fsk]
  # Carrier frequency (MHz).
  frequency={{ .Satellite.FSK.Frequency }}

  # Bit rate (kbps).
  bit_rate={{ .Satellite.FSK.BitRate }}

  # Frequency deviation (kHz).
  frequency_deviation={{ .Satellite.FSK.FrequencyDeviation }}

  # Receiver bandwidth (kHz).
  rx_bandwidth={{ .Satellite.FSK.RXBandwidth }}

  # Output power (dBm).
  power={{ .Satellite.FSK.Power }}

  # Over current protection limit (mA).
  current_limit={{ .Satellite.FSK.CurrentLimit }}

  # Preamble length (bits).
  preamble_length={{ .Satellite.FSK.PreambleLength }}

  # Gaussian filter BT product.
  data_shaping={{ .Satellite.FSK.DataShaping }}

  # Simulated platform.
  #
  # The sensors return the values below, with uniform noise of the given
  # amplitude.
  [satellite.simulator]
  charging_voltage={{ .Satellite.Simulator.ChargingVoltage }}
  charging_current={{ .Satellite.Simulator.ChargingCurrent }}
  battery_voltage={{ .Satellite.Simulator.BatteryVoltage }}
  cell_a_voltage={{ .Satellite.Simulator.CellAVoltage }}
  cell_b_voltage={{ .Satellite.Simulator.CellBVoltage }}
  cell_c_voltage={{ .Satellite.Simulator.CellCVoltage }}
  battery_temperature={{ .Satellite.Simulator.BatteryTemperature }}
  board_temperature={{ .Satellite.Simulator.BoardTemperature }}
  mcu_temperature={{ .Satellite.Simulator.MCUTemperature }}
  noise={{ .Satellite.Simulator.Noise }}

  # Duration of the deployment sequence.
  deployment_duration="{{ .Satellite.Simulator.DeploymentDuration }}"


# EEPROM storage.
[storage]
# Storage type.
#
# Valid options are:
#  * memory
#  * redis
type="{{ .Storage.Type }}"

  # Redis settings.
  #
  # The EEPROM image is stored as a single string value.
  [storage.redis]
  # Server address or addresses.
  #
  # Set multiple addresses when connecting to a cluster.
  servers=[{{ range $index, $element := .Storage.Redis.Servers }}{{ if $index }}, {{ end }}"{{ $element }}"{{ end }}]

  # Redis Cluster.
  cluster={{ .Storage.Redis.Cluster }}

  # Master name.
  #
  # Set the master name when using Redis Sentinel.
  master_name="{{ .Storage.Redis.MasterName }}"

  # Connection pool size.
  #
  # Default (when set to 0) is 10 connections per every CPU.
  pool_size={{ .Storage.Redis.PoolSize }}

  # Password.
  password="{{ .Storage.Redis.Password }}"

  # Database index.
  #
  # By default, this can be a number between 0-15.
  database={{ .Storage.Redis.Database }}

  # Redis over TLS.
  tls_enabled={{ .Storage.Redis.TLSEnabled }}

  # Key prefix.
  key_prefix="{{ .Storage.Redis.KeyPrefix }}"


# Radio bridge.
[radio.backend]
# Backend type.
#
# Valid options are:
#  * mqtt
#  * amqp
type="{{ .Radio.Backend.Type }}"

# Modem ID (HEX encoded) of the transceiver.
modem_id="{{ .Radio.Backend.ModemIDString }}"

# Payload marshaler.
#
# The marshaler is updated to the encoding of the received events. Valid
# options are:
#  * protobuf
#  * json
marshaler="{{ .Radio.Backend.Marshaler }}"

# Publish timeout of the commands.
downlink_timeout="{{ .Radio.Backend.DownlinkTimeout }}"

  # MQTT backend.
  [radio.backend.mqtt]
  # MQTT server (e.g. scheme://host:port where scheme is tcp, ssl or ws)
  server="{{ .Radio.Backend.MQTT.Server }}"

  # Connect with the given username (optional)
  username="{{ .Radio.Backend.MQTT.Username }}"

  # Connect with the given password (optional)
  password="{{ .Radio.Backend.MQTT.Password }}"

  # Maximum interval that will be waited between reconnection attempts.
  max_reconnect_interval="{{ .Radio.Backend.MQTT.MaxReconnectInterval }}"

  # Quality of service level
  qos={{ .Radio.Backend.MQTT.QOS }}

  # Clean session
  clean_session={{ .Radio.Backend.MQTT.CleanSession }}

  # Client ID
  client_id="{{ .Radio.Backend.MQTT.ClientID }}"

  # CA certificate file (optional)
  ca_cert="{{ .Radio.Backend.MQTT.CACert }}"

  # TLS certificate file (optional)
  tls_cert="{{ .Radio.Backend.MQTT.TLSCert }}"

  # TLS key file (optional)
  tls_key="{{ .Radio.Backend.MQTT.TLSKey }}"

  # Event topic.
  event_topic="{{ .Radio.Backend.MQTT.EventTopic }}"

  # Command topic template.
  command_topic_template="{{ .Radio.Backend.MQTT.CommandTopicTemplate }}"

  # AMQP / RabbitMQ backend.
  [radio.backend.amqp]
  # Server URL.
  url="{{ .Radio.Backend.AMQP.URL }}"

  # Event queue name.
  #
  # The queue is declared when it does not exist and bound to the amq.topic
  # exchange.
  event_queue_name="{{ .Radio.Backend.AMQP.EventQueueName }}"

  # Event routing key.
  event_routing_key="{{ .Radio.Backend.AMQP.EventRoutingKey }}"

  # Command routing-key template.
  command_routing_key_template="{{ .Radio.Backend.AMQP.CommandRoutingKeyTemplate }}"


# Monitoring settings.
[monitoring]
# IP:port to bind the monitoring endpoint to.
#
# When left blank, the monitoring endpoint will be disabled.
bind="{{ .Monitoring.Bind }}"

# Prometheus metrics endpoint.
#
# When set to true, Prometheus metrics will be served at '/metrics'.
prometheus_endpoint={{ .Monitoring.PrometheusEndpoint }}

# Healthcheck endpoint.
#
# When set to true, the healthcheck endpoint will be served at '/health'.
# It returns 200 when the storage is reachable.
healthcheck_endpoint={{ .Monitoring.HealthcheckEndpoint }}
`

var configCmd = &cobra.Command{
	Use:   "configfile",
	Short: "Print the fossasat-fcp configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := template.Must(template.New("config").Parse(configTemplate))
		err := t.Execute(os.Stdout, &config.C)
		if err != nil {
			return errors.Wrap(err, "execute config template error")
		}
		return nil
	},
}

package cmd

import (
	"bytes"
	"testing"
	"text/template"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/fossasystems/fossasat-fcp/internal/config"
	"github.com/fossasystems/fossasat-fcp/internal/radio"
)

func TestConfigTemplate(t *testing.T) {
	assert := require.New(t)

	var c config.Config
	c.General.LogLevel = 4
	c.Satellite.Callsign = "FOSSASAT-1B"
	c.Satellite.KeyString = "0102030405060708090a0b0c0d0e0f00"
	c.Satellite.ResponseDelay = time.Second
	c.Satellite.FSKReceiveWindow = 20
	c.Satellite.LoRaReceiveWindow = 40
	c.Satellite.LoRa.Frequency = radio.DefaultLoRaConfiguration().Frequency
	c.Satellite.LoRa.Power = -9
	c.Satellite.FSK.DataShaping = 0.5
	c.Storage.Type = "redis"
	c.Storage.Redis.Servers = []string{"localhost:6379", "localhost:6380"}
	c.Radio.Backend.Type = "mqtt"
	c.Radio.Backend.MQTT.CommandTopicTemplate = "fcp/{{ .ModemID }}/command/{{ .CommandType }}"

	var out bytes.Buffer
	assert.NoError(template.Must(template.New("config").Parse(configTemplate)).Execute(&out, &c))

	var decoded map[string]interface{}
	_, err := toml.Decode(out.String(), &decoded)
	assert.NoError(err)

	satellite := decoded["satellite"].(map[string]interface{})
	assert.Equal("FOSSASAT-1B", satellite["callsign"])
	assert.Equal("1s", satellite["response_delay"])
	assert.EqualValues(40, satellite["lora_receive_window"])

	lora := satellite["lora"].(map[string]interface{})
	assert.Equal(436.7, lora["frequency"])
	assert.EqualValues(-9, lora["power"])

	redis := decoded["storage"].(map[string]interface{})["redis"].(map[string]interface{})
	assert.Equal([]interface{}{"localhost:6379", "localhost:6380"}, redis["servers"])

	mqtt := decoded["radio"].(map[string]interface{})["backend"].(map[string]interface{})["mqtt"].(map[string]interface{})
	assert.Equal("fcp/{{ .ModemID }}/command/{{ .CommandType }}", mqtt["command_topic_template"])
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		Name          string
		Key           string
		ModemID       string
		RedisURL      string
		ExpectedError bool
	}{
		{
			Name:    "valid",
			Key:     "0102030405060708090a0b0c0d0e0f00",
			ModemID: "0102030405060708",
		},
		{
			Name:          "invalid key",
			Key:           "0102",
			ModemID:       "0102030405060708",
			ExpectedError: true,
		},
		{
			Name:          "invalid modem id",
			Key:           "0102030405060708090a0b0c0d0e0f00",
			ModemID:       "modem",
			ExpectedError: true,
		},
		{
			Name:     "redis url",
			Key:      "0102030405060708090a0b0c0d0e0f00",
			ModemID:  "0102030405060708",
			RedisURL: "redis://:secret@redis.local:6379/3",
		},
	}

	for _, tst := range tests {
		t.Run(tst.Name, func(t *testing.T) {
			assert := require.New(t)

			var c config.Config
			c.Satellite.KeyString = tst.Key
			c.Radio.Backend.ModemIDString = tst.ModemID
			c.Storage.Redis.URL = tst.RedisURL

			err := decodeConfig(&c)
			if tst.ExpectedError {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.EqualValues(0x01, c.Satellite.Key[0])
			assert.EqualValues(0x08, c.Radio.Backend.ModemID[7])

			if tst.RedisURL != "" {
				assert.Equal([]string{"redis.local:6379"}, c.Storage.Redis.Servers)
				assert.Equal(3, c.Storage.Redis.Database)
				assert.Equal("secret", c.Storage.Redis.Password)
			}
		})
	}
}

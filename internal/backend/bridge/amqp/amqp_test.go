package amqp

import (
	"testing"
	"time"

	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/brocaar/lorawan"
	"github.com/golang/protobuf/proto"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fossasystems/fossasat-fcp/internal/config"
	"github.com/fossasystems/fossasat-fcp/internal/test"
)

type BackendTestSuite struct {
	suite.Suite

	modemID lorawan.EUI64
	backend *Backend

	amqpConn        *amqp.Connection
	amqpChannel     *amqp.Channel
	amqpCommandChan <-chan amqp.Delivery
}

func (ts *BackendTestSuite) SetupSuite() {
	assert := require.New(ts.T())

	url := test.GetConfig().AMQPURL
	if url == "" {
		ts.T().Skip("TEST_AMQP_URL not set")
	}

	ts.modemID = lorawan.EUI64{1, 2, 3, 4, 5, 6, 7, 8}

	var conf config.Config
	conf.Radio.Backend.ModemID = ts.modemID
	conf.Radio.Backend.Marshaler = "protobuf"
	conf.Radio.Backend.AMQP.URL = url
	conf.Radio.Backend.AMQP.EventQueueName = "fcp-test-events"
	conf.Radio.Backend.AMQP.EventRoutingKey = "fcp.*.event.*"
	conf.Radio.Backend.AMQP.CommandRoutingKeyTemplate = "fcp.{{ .ModemID }}.command.{{ .CommandType }}"

	var err error
	ts.backend, err = NewBackend(conf)
	assert.NoError(err)

	ts.amqpConn, err = amqp.Dial(url)
	assert.NoError(err)

	ts.amqpChannel, err = ts.amqpConn.Channel()
	assert.NoError(err)

	_, err = ts.amqpChannel.QueueDeclare("fcp-test-commands", true, false, false, false, nil)
	assert.NoError(err)
	assert.NoError(ts.amqpChannel.QueueBind("fcp-test-commands", "fcp.*.command.*", exchange, false, nil))

	ts.amqpCommandChan, err = ts.amqpChannel.Consume("fcp-test-commands", "", true, false, false, false, nil)
	assert.NoError(err)
}

func (ts *BackendTestSuite) TearDownSuite() {
	if ts.backend == nil {
		return
	}
	assert := require.New(ts.T())
	assert.NoError(ts.amqpConn.Close())
	assert.NoError(ts.backend.Close())
}

func (ts *BackendTestSuite) TestSendDownlinkFrame() {
	assert := require.New(ts.T())

	df := gw.DownlinkFrame{
		GatewayId:  ts.modemID[:],
		DownlinkId: []byte{1, 2, 3, 4},
		Items: []*gw.DownlinkFrameItem{
			{
				PhyPayload: []byte("FOSSASAT-1B\x10"),
				TxInfo:     &gw.DownlinkTXInfo{},
			},
		},
	}
	assert.NoError(ts.backend.SendDownlinkFrame(&df))

	select {
	case received := <-ts.amqpCommandChan:
		assert.Equal("fcp.0102030405060708.command.down", received.RoutingKey)
		assert.Equal("application/octet-stream", received.ContentType)

		var receivedDF gw.DownlinkFrame
		assert.NoError(proto.Unmarshal(received.Body, &receivedDF))
		assert.True(proto.Equal(&df, &receivedDF))
	case <-time.After(time.Second):
		assert.Fail("timeout")
	}
}

func (ts *BackendTestSuite) TestSendConfiguration() {
	assert := require.New(ts.T())

	gc := gw.GatewayConfiguration{
		GatewayId: ts.modemID[:],
		Version:   "F-3",
	}
	assert.NoError(ts.backend.SendConfiguration(&gc))

	select {
	case received := <-ts.amqpCommandChan:
		assert.Equal("fcp.0102030405060708.command.config", received.RoutingKey)

		var receivedGC gw.GatewayConfiguration
		assert.NoError(proto.Unmarshal(received.Body, &receivedGC))
		assert.Equal("F-3", receivedGC.Version)
	case <-time.After(time.Second):
		assert.Fail("timeout")
	}
}

func (ts *BackendTestSuite) TestUplinkFrame() {
	assert := require.New(ts.T())

	up := gw.UplinkFrame{
		PhyPayload: []byte("FOSSASAT-1B\x00"),
		RxInfo: &gw.UplinkRXInfo{
			GatewayId: ts.modemID[:],
		},
		TxInfo: &gw.UplinkTXInfo{
			Frequency: 436700000,
		},
	}
	b, err := proto.Marshal(&up)
	assert.NoError(err)

	err = ts.amqpChannel.Publish(exchange, "fcp.0102030405060708.event.up", false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		Body:        b,
	})
	assert.NoError(err)

	select {
	case received := <-ts.backend.UplinkFrameChan():
		assert.True(proto.Equal(&up, received))
	case <-time.After(time.Second):
		assert.Fail("timeout")
	}
}

func TestBackend(t *testing.T) {
	suite.Run(t, new(BackendTestSuite))
}

func TestValidateModemID(t *testing.T) {
	assert := require.New(t)

	assert.NoError(validateModemID("fcp.0102030405060708.event.up", []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Error(validateModemID("fcp.0807060504030201.event.up", []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Error(validateModemID("fcp.modem.event.up", nil))
}

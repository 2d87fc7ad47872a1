// Package mqtt implements a radio bridge backend using MQTT.
package mqtt

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"os"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/brocaar/lorawan"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fossasystems/fossasat-fcp/internal/backend/bridge/marshaler"
	"github.com/fossasystems/fossasat-fcp/internal/config"
)

var modemIDRegexp = regexp.MustCompile(`([0-9a-fA-F]{16})`)

// Backend implements a MQTT bridge backend.
type Backend struct {
	sync.RWMutex

	wg sync.WaitGroup

	conn                 paho.Client
	uplinkFrameChan      chan *gw.UplinkFrame
	commandTopicTemplate *template.Template
	eventTopic           string
	qos                  uint8
	modemID              lorawan.EUI64
	downlinkTimeout      time.Duration
	marshaler            marshaler.Type
}

// NewBackend creates a new Backend.
func NewBackend(c config.Config) (*Backend, error) {
	conf := c.Radio.Backend.MQTT

	t, err := marshaler.ParseType(c.Radio.Backend.Marshaler)
	if err != nil {
		return nil, errors.Wrap(err, "bridge/mqtt: parse marshaler error")
	}

	b := Backend{
		uplinkFrameChan: make(chan *gw.UplinkFrame),
		eventTopic:      conf.EventTopic,
		qos:             conf.QOS,
		modemID:         c.Radio.Backend.ModemID,
		downlinkTimeout: c.Radio.Backend.DownlinkTimeout,
		marshaler:       t,
	}

	b.commandTopicTemplate, err = template.New("command").Parse(conf.CommandTopicTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "bridge/mqtt: parse command topic template error")
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(conf.Server)
	opts.SetUsername(conf.Username)
	opts.SetPassword(conf.Password)
	opts.SetCleanSession(conf.CleanSession)
	opts.SetClientID(conf.ClientID)
	opts.SetOnConnectHandler(b.onConnected)
	opts.SetConnectionLostHandler(b.onConnectionLost)
	if conf.MaxReconnectInterval > 0 {
		opts.SetMaxReconnectInterval(conf.MaxReconnectInterval)
	}

	tlsconfig, err := newTLSConfig(conf.CACert, conf.TLSCert, conf.TLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "bridge/mqtt: load tls configuration error")
	}
	if tlsconfig != nil {
		opts.SetTLSConfig(tlsconfig)
	}

	log.WithField("server", conf.Server).Info("bridge/mqtt: connecting to mqtt broker")
	b.conn = paho.NewClient(opts)
	for {
		if token := b.conn.Connect(); token.Wait() && token.Error() != nil {
			log.Errorf("bridge/mqtt: connecting to mqtt broker failed, will retry in 2s: %s", token.Error())
			time.Sleep(2 * time.Second)
		} else {
			break
		}
	}

	return &b, nil
}

// Close closes the backend. Frames being handled are delivered before the
// uplink channel is closed.
func (b *Backend) Close() error {
	log.Info("bridge/mqtt: closing backend")

	log.WithField("topic", b.eventTopic).Info("bridge/mqtt: unsubscribing from event topic")
	if token := b.conn.Unsubscribe(b.eventTopic); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "bridge/mqtt: unsubscribe from %s error", b.eventTopic)
	}

	log.Info("bridge/mqtt: handling last messages")
	b.wg.Wait()
	close(b.uplinkFrameChan)
	b.conn.Disconnect(250)
	return nil
}

// UplinkFrameChan returns the uplink-frame channel.
func (b *Backend) UplinkFrameChan() chan *gw.UplinkFrame {
	return b.uplinkFrameChan
}

// SendDownlinkFrame publishes the given downlink frame.
func (b *Backend) SendDownlinkFrame(df *gw.DownlinkFrame) error {
	t := b.getMarshaler()
	bb, err := marshaler.MarshalDownlinkFrame(t, df)
	if err != nil {
		return errors.Wrap(err, "bridge/mqtt: marshal downlink frame error")
	}

	return b.publishCommand(log.Fields{
		"downlink_id": df.GetDownlinkId(),
	}, "down", bb)
}

// SendConfiguration publishes the given modem configuration.
func (b *Backend) SendConfiguration(gc *gw.GatewayConfiguration) error {
	t := b.getMarshaler()
	bb, err := marshaler.MarshalGatewayConfiguration(t, gc)
	if err != nil {
		return errors.Wrap(err, "bridge/mqtt: marshal modem configuration error")
	}

	return b.publishCommand(log.Fields{
		"version": gc.GetVersion(),
	}, "config", bb)
}

func (b *Backend) publishCommand(fields log.Fields, command string, data []byte) error {
	templateCtx := struct {
		ModemID     lorawan.EUI64
		CommandType string
	}{b.modemID, command}
	topic := bytes.NewBuffer(nil)
	if err := b.commandTopicTemplate.Execute(topic, templateCtx); err != nil {
		return errors.Wrap(err, "execute command topic template error")
	}

	fields["modem_id"] = b.modemID
	fields["command"] = command
	fields["topic"] = topic.String()
	fields["qos"] = b.qos
	log.WithFields(fields).Info("bridge/mqtt: publishing command")

	mqttCommandCounter(command).Inc()

	token := b.conn.Publish(topic.String(), b.qos, false, data)
	if b.downlinkTimeout > 0 {
		if !token.WaitTimeout(b.downlinkTimeout) {
			return errors.Errorf("bridge/mqtt: publish %s command timeout", command)
		}
	} else {
		token.Wait()
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "bridge/mqtt: publish %s command error", command)
	}
	return nil
}

func (b *Backend) eventHandler(c paho.Client, msg paho.Message) {
	b.wg.Add(1)
	defer b.wg.Done()

	parts := strings.Split(msg.Topic(), "/")
	typ := parts[len(parts)-1]
	mqttEventCounter(typ).Inc()

	switch typ {
	case "up":
		if err := b.handleUplinkFrame(msg); err != nil {
			log.WithFields(log.Fields{
				"topic":       msg.Topic(),
				"data_base64": base64.StdEncoding.EncodeToString(msg.Payload()),
			}).WithError(err).Error("bridge/mqtt: handle uplink frame error")
		}
	default:
		log.WithFields(log.Fields{
			"topic": msg.Topic(),
			"type":  typ,
		}).Warning("bridge/mqtt: unexpected event type")
	}
}

func (b *Backend) handleUplinkFrame(msg paho.Message) error {
	var uplinkFrame gw.UplinkFrame
	t, err := marshaler.UnmarshalUplinkFrame(msg.Payload(), &uplinkFrame)
	if err != nil {
		return errors.Wrap(err, "unmarshal error")
	}

	if uplinkFrame.RxInfo == nil {
		return errors.New("rx_info must not be nil")
	}

	if uplinkFrame.TxInfo == nil {
		return errors.New("tx_info must not be nil")
	}

	if err := validateModemID(msg.Topic(), uplinkFrame.RxInfo.GatewayId); err != nil {
		return errors.Wrap(err, "validate modem id error")
	}

	b.setMarshaler(t)

	log.WithFields(log.Fields{
		"modem_id": b.modemID,
		"length":   len(uplinkFrame.PhyPayload),
	}).Info("bridge/mqtt: uplink frame received")

	b.uplinkFrameChan <- &uplinkFrame
	return nil
}

func (b *Backend) onConnected(c paho.Client) {
	mqttConnectCounter().Inc()
	log.Info("bridge/mqtt: connected to mqtt broker")

	for {
		log.WithFields(log.Fields{
			"topic": b.eventTopic,
			"qos":   b.qos,
		}).Info("bridge/mqtt: subscribing to event topic")
		if token := c.Subscribe(b.eventTopic, b.qos, b.eventHandler); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).WithFields(log.Fields{
				"topic": b.eventTopic,
				"qos":   b.qos,
			}).Error("bridge/mqtt: subscribe error")
			time.Sleep(time.Second)
			continue
		}
		return
	}
}

func (b *Backend) onConnectionLost(c paho.Client, err error) {
	mqttDisconnectCounter().Inc()
	log.WithError(err).Error("bridge/mqtt: mqtt connection error")
}

// setMarshaler stores the encoding used by the transceiver, commands are
// published using the same encoding.
func (b *Backend) setMarshaler(t marshaler.Type) {
	b.Lock()
	defer b.Unlock()
	b.marshaler = t
}

func (b *Backend) getMarshaler() marshaler.Type {
	b.RLock()
	defer b.RUnlock()
	return b.marshaler
}

func validateModemID(topic string, id []byte) error {
	var topicID lorawan.EUI64
	if err := topicID.UnmarshalText([]byte(modemIDRegexp.FindString(topic))); err != nil {
		return errors.Wrap(err, "unmarshal modem id error")
	}

	if !bytes.Equal(topicID[:], id) {
		return errors.New("message modem id does not match topic modem id")
	}
	return nil
}

func newTLSConfig(cafile, certFile, certKeyFile string) (*tls.Config, error) {
	if cafile == "" && certFile == "" && certKeyFile == "" {
		return nil, nil
	}

	tlsConfig := &tls.Config{}

	if cafile != "" {
		cacert, err := os.ReadFile(cafile)
		if err != nil {
			return nil, errors.Wrap(err, "read ca certificate error")
		}
		certpool := x509.NewCertPool()
		certpool.AppendCertsFromPEM(cacert)

		tlsConfig.RootCAs = certpool
	}

	if certFile != "" && certKeyFile != "" {
		kp, err := tls.LoadX509KeyPair(certFile, certKeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "load tls key-pair error")
		}
		tlsConfig.Certificates = []tls.Certificate{kp}
	}

	return tlsConfig, nil
}

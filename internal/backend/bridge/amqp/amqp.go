// Package amqp implements a radio bridge backend using AMQP.
package amqp

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/brocaar/chirpstack-api/go/v3/gw"
	"github.com/brocaar/lorawan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/fossasystems/fossasat-fcp/internal/backend/bridge/marshaler"
	"github.com/fossasystems/fossasat-fcp/internal/config"
)

const exchange = "amq.topic"

var modemIDRegexp = regexp.MustCompile(`([0-9a-fA-F]{16})`)

// Backend implements an AMQP bridge backend.
type Backend struct {
	mu sync.RWMutex

	chPool *pool
	done   chan struct{}

	eventQueueName    string
	eventRoutingKey   string
	commandRoutingKey *template.Template
	modemID           lorawan.EUI64
	marshaler         marshaler.Type

	uplinkFrameChan chan *gw.UplinkFrame
}

// NewBackend creates a new Backend.
func NewBackend(c config.Config) (*Backend, error) {
	conf := c.Radio.Backend.AMQP

	t, err := marshaler.ParseType(c.Radio.Backend.Marshaler)
	if err != nil {
		return nil, errors.Wrap(err, "bridge/amqp: parse marshaler error")
	}

	b := Backend{
		done:            make(chan struct{}),
		eventQueueName:  conf.EventQueueName,
		eventRoutingKey: conf.EventRoutingKey,
		modemID:         c.Radio.Backend.ModemID,
		marshaler:       t,
		uplinkFrameChan: make(chan *gw.UplinkFrame),
	}

	b.commandRoutingKey, err = template.New("command").Parse(conf.CommandRoutingKeyTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "bridge/amqp: parse command routing-key template error")
	}

	log.Info("bridge/amqp: connecting to amqp server")
	b.chPool, err = newPool(10, conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "bridge/amqp: new channel pool error")
	}

	if err := b.setupQueue(); err != nil {
		b.chPool.close()
		return nil, errors.Wrap(err, "bridge/amqp: setup queue error")
	}

	go b.eventLoop()

	return &b, nil
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
		return errors.Wrap(err, "bridge/amqp: marshal downlink frame error")
	}

	return b.publishCommand(log.Fields{
		"downlink_id": df.GetDownlinkId(),
	}, "down", t, bb)
}

// SendConfiguration publishes the given modem configuration.
func (b *Backend) SendConfiguration(gc *gw.GatewayConfiguration) error {
	t := b.getMarshaler()
	bb, err := marshaler.MarshalGatewayConfiguration(t, gc)
	if err != nil {
		return errors.Wrap(err, "bridge/amqp: marshal modem configuration error")
	}

	return b.publishCommand(log.Fields{
		"version": gc.GetVersion(),
	}, "config", t, bb)
}

// Close closes the backend. The uplink channel is closed once the event
// loop returned.
func (b *Backend) Close() error {
	log.Info("bridge/amqp: closing backend")
	err := b.chPool.close()
	<-b.done
	close(b.uplinkFrameChan)
	return err
}

func (b *Backend) publishCommand(fields log.Fields, command string, t marshaler.Type, data []byte) error {
	ch, err := b.chPool.get()
	if err != nil {
		return errors.Wrap(err, "bridge/amqp: get channel from pool error")
	}
	defer ch.close()

	templateCtx := struct {
		ModemID     lorawan.EUI64
		CommandType string
	}{b.modemID, command}
	key := bytes.NewBuffer(nil)
	if err := b.commandRoutingKey.Execute(key, templateCtx); err != nil {
		return errors.Wrap(err, "execute command routing-key template error")
	}

	fields["modem_id"] = b.modemID
	fields["command"] = command
	fields["routing_key"] = key.String()
	log.WithFields(fields).Info("bridge/amqp: publishing command")

	amqpCommandCounter(command).Inc()

	err = ch.ch.Publish(
		exchange,
		key.String(),
		false,
		false,
		amqp.Publishing{
			ContentType: t.ContentType(),
			Body:        data,
		},
	)
	if err != nil {
		ch.markUnusable()
		return errors.Wrapf(err, "bridge/amqp: publish %s command error", command)
	}
	return nil
}

func (b *Backend) setupQueue() error {
	ch, err := b.chPool.get()
	if err != nil {
		return errors.Wrap(err, "get channel from pool error")
	}
	defer ch.close()

	_, err = ch.ch.QueueDeclare(
		b.eventQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.markUnusable()
		return errors.Wrap(err, "declare queue error")
	}

	err = ch.ch.QueueBind(
		b.eventQueueName,
		b.eventRoutingKey,
		exchange,
		false,
		nil,
	)
	if err != nil {
		ch.markUnusable()
		return errors.Wrap(err, "bind queue error")
	}

	return nil
}

func (b *Backend) eventLoop() {
	defer close(b.done)

	for {
		err := b.consume()
		if errors.Cause(err) == errClosed {
			return
		}
		if err != nil {
			log.WithError(err).Error("bridge/amqp: event loop error")
		}

		// the delivery channel is closed on connection loss and on close
		if b.chPool.isClosed() {
			return
		}
		time.Sleep(time.Second)
	}
}

func (b *Backend) consume() error {
	ch, err := b.chPool.get()
	if err != nil {
		return errors.Wrap(err, "get channel from pool error")
	}
	defer ch.close()

	log.WithField("queue", b.eventQueueName).Info("bridge/amqp: start consuming modem events")

	msgs, err := ch.ch.Consume(
		b.eventQueueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.markUnusable()
		return errors.Wrap(err, "register consumer error")
	}

	for msg := range msgs {
		b.handleEvent(msg)
	}

	ch.markUnusable()
	return nil
}

func (b *Backend) handleEvent(msg amqp.Delivery) {
	routing := strings.Split(msg.RoutingKey, ".")
	typ := routing[len(routing)-1]
	amqpEventCounter(typ).Inc()

	switch typ {
	case "up":
		if err := b.handleUplinkFrame(msg); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"routing_key": msg.RoutingKey,
			}).Error("bridge/amqp: handle uplink frame error")
		}
	default:
		log.WithFields(log.Fields{
			"routing_key": msg.RoutingKey,
			"type":        typ,
		}).Warning("bridge/amqp: unexpected event type")
	}
}

func (b *Backend) handleUplinkFrame(msg amqp.Delivery) error {
	var uplinkFrame gw.UplinkFrame
	t, err := marshaler.UnmarshalUplinkFrame(msg.Body, &uplinkFrame)
	if err != nil {
		return errors.Wrap(err, "unmarshal error")
	}

	if uplinkFrame.RxInfo == nil {
		return errors.New("rx_info must not be nil")
	}

	if uplinkFrame.TxInfo == nil {
		return errors.New("tx_info must not be nil")
	}

	if err := validateModemID(msg.RoutingKey, uplinkFrame.RxInfo.GatewayId); err != nil {
		return errors.Wrap(err, "validate modem id error")
	}

	b.setMarshaler(t)

	log.WithFields(log.Fields{
		"modem_id": b.modemID,
		"length":   len(uplinkFrame.PhyPayload),
	}).Info("bridge/amqp: uplink frame received")

	b.uplinkFrameChan <- &uplinkFrame
	return nil
}

func (b *Backend) setMarshaler(t marshaler.Type) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.marshaler = t
}

func (b *Backend) getMarshaler() marshaler.Type {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.marshaler
}

func validateModemID(routingKey string, id []byte) error {
	var keyID lorawan.EUI64
	if err := keyID.UnmarshalText([]byte(modemIDRegexp.FindString(routingKey))); err != nil {
		return errors.Wrap(err, "unmarshal modem id error")
	}

	if !bytes.Equal(keyID[:], id) {
		return errors.New("message modem id does not match routing-key modem id")
	}
	return nil
}

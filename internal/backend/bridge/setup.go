package bridge

import (
	"github.com/pkg/errors"

	"github.com/fossasystems/fossasat-fcp/internal/backend/bridge/amqp"
	"github.com/fossasystems/fossasat-fcp/internal/backend/bridge/mqtt"
	"github.com/fossasystems/fossasat-fcp/internal/config"
)

// Setup returns the bridge backend for the configured backend type.
func Setup(c config.Config) (Bridge, error) {
	switch c.Radio.Backend.Type {
	case "mqtt":
		b, err := mqtt.NewBackend(c)
		if err != nil {
			return nil, errors.Wrap(err, "new mqtt bridge backend error")
		}
		return b, nil
	case "amqp":
		b, err := amqp.NewBackend(c)
		if err != nil {
			return nil, errors.Wrap(err, "new amqp bridge backend error")
		}
		return b, nil
	default:
		return nil, errors.Errorf("unexpected bridge backend type: %s", c.Radio.Backend.Type)
	}
}

package monitoring

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/fossasystems/fossasat-fcp/internal/storage"
)

func healthCheckHandler(s storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(errors.Wrap(err, "storage ping error").Error()))
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

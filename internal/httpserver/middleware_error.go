package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	apierrors "github.com/arklabs/arkgw/internal/httpserver/errors"
	"github.com/arklabs/arkgw/internal/httpserver/handlers"
)

func errorHandlerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ew := &errorResponseWriter{
			ResponseWriter: w,
			request:        r,
		}

		next.ServeHTTP(ew, r)
	})
}

type errorResponseWriter struct {
	http.ResponseWriter
	request *http.Request
}

var _ handlers.ErrorResponseWriter = &errorResponseWriter{}

var _ http.Flusher = &errorResponseWriter{}

func (w *errorResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *errorResponseWriter) RespondWithError(err error) {
	log := ctrllog.FromContext(w.request.Context())

	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	if err == nil {
		err = errors.New("unknown error")
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		statusCode = apiErr.Code
		message = apiErr.Message

		if apiErr.Err != nil {
			err = apiErr.Err
		}
	}

	if k8serrors.IsNotFound(err) {
		log.Info(message)
	} else {
		log.Error(err, message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message + ": " + err.Error()}) //nolint:errcheck
}

package middleware

import (
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

var discardLogger = logger.Discard()

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

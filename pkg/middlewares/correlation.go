package middlewares

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
)

var correlationIDRegexp = regexp.MustCompile(`^[\w-_]{3,25}$`)

// CorrelationMw copies a client supplied correlation ID header to the
// response, so Smartthings can match responses to its own requests
type CorrelationMw struct {
	headerName string
	next       http.Handler
}

func NewCorrelationMw(headerName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return &CorrelationMw{headerName: headerName, next: next}
	}
}

func (mw *CorrelationMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if id, ok := mw.validateID(r); ok {
		rw.Header().Set(mw.headerName, id)
	}

	mw.next.ServeHTTP(rw, r)
}

func (mw *CorrelationMw) validateID(r *http.Request) (string, bool) {
	hn := http.CanonicalHeaderKey(mw.headerName)
	ids, ok := r.Header[hn]
	if !ok {
		return "", false
	}

	if !correlationIDRegexp.MatchString(ids[0]) {
		return "<Bad_Correlation_Id>", true
	}

	return ids[0], true
}
